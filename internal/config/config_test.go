package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

// validTestConfig fills in the fields Defaults leaves empty.
func validTestConfig() *Config {
	cfg := Defaults()
	cfg.Channel.ID = "chan-1"
	cfg.Channel.Secret = "secret"
	cfg.Channel.AccessToken = "token"
	cfg.Engine.URL = "https://engine.example.com"
	return cfg
}

func TestValidate_ValidConfig(t *testing.T) {
	if err := Validate(validTestConfig()); err != nil {
		t.Fatalf("expected valid config, got: %v", err)
	}
}

func TestValidate_MissingRequiredFields(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"channel id", func(c *Config) { c.Channel.ID = "" }},
		{"channel secret", func(c *Config) { c.Channel.Secret = "" }},
		{"access token", func(c *Config) { c.Channel.AccessToken = "" }},
		{"engine url", func(c *Config) { c.Engine.URL = "" }},
	}
	for _, tc := range cases {
		cfg := validTestConfig()
		tc.mutate(cfg)
		if err := Validate(cfg); err == nil {
			t.Errorf("expected error for missing %s", tc.name)
		}
	}
}

func TestValidate_RelativeEngineURL(t *testing.T) {
	cfg := validTestConfig()
	cfg.Engine.URL = "engine.example.com/messages"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for non-absolute engine url")
	}
}

func TestValidate_InvalidResponseShape(t *testing.T) {
	cfg := validTestConfig()
	cfg.Engine.ResponseShape = "auto"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown response shape")
	}
}

func TestValidate_ValidResponseShapes(t *testing.T) {
	for _, shape := range []string{"messages", "content"} {
		cfg := validTestConfig()
		cfg.Engine.ResponseShape = shape
		if err := Validate(cfg); err != nil {
			t.Errorf("shape %q should be valid: %v", shape, err)
		}
	}
}

func TestValidate_InvalidConversationScope(t *testing.T) {
	cfg := validTestConfig()
	cfg.Relay.ConversationScope = "message"
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for unknown conversation scope")
	}
}

func TestValidate_InvalidPort(t *testing.T) {
	cfg := validTestConfig()
	cfg.Server.Port = 0
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for port 0")
	}

	cfg.Server.Port = 70000
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for port > 65535")
	}
}

func TestValidate_NegativeQuota(t *testing.T) {
	cfg := validTestConfig()
	cfg.Relay.MaxReplyMessages = -1
	if err := Validate(cfg); err == nil {
		t.Fatal("expected error for negative quota")
	}
}

func TestValidate_CollectsAllErrors(t *testing.T) {
	cfg := Defaults() // missing channel identity and engine url
	err := Validate(cfg)
	if err == nil {
		t.Fatal("expected validation errors")
	}
	for _, want := range []string{"channel.id", "channel.secret", "engine.url"} {
		if !strings.Contains(err.Error(), want) {
			t.Errorf("expected %s in error, got: %v", want, err)
		}
	}
}

// --- ExpandEnvVars ---

func TestExpandEnvVars_Set(t *testing.T) {
	t.Setenv("RELAY_TEST_VAR", "hello")
	got := ExpandEnvVars("value: ${RELAY_TEST_VAR}")
	if got != "value: hello" {
		t.Errorf("expected expansion, got %q", got)
	}
}

func TestExpandEnvVars_Default(t *testing.T) {
	got := ExpandEnvVars("${RELAY_TEST_UNSET:-fallback}")
	if got != "fallback" {
		t.Errorf("expected fallback, got %q", got)
	}
}

func TestExpandEnvVars_UnsetWithoutDefault(t *testing.T) {
	got := ExpandEnvVars("${RELAY_TEST_UNSET}")
	if got != "${RELAY_TEST_UNSET}" {
		t.Errorf("expected original text kept, got %q", got)
	}
}

// --- Load ---

func TestLoad_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"channel": {"id": "chan-1", "secret": "s", "accessToken": "t"},
		"engine": {"url": "https://engine.example.com"},
		"relay": {"wakeWord": "봇"}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Channel.ID != "chan-1" {
		t.Errorf("expected chan-1, got %q", cfg.Channel.ID)
	}
	if cfg.Relay.WakeWord != "봇" {
		t.Errorf("expected wake-word override, got %q", cfg.Relay.WakeWord)
	}
	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port kept, got %d", cfg.Server.Port)
	}
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := `
channel:
  id: chan-1
  secret: s
  accessToken: t
engine:
  url: https://engine.example.com
  responseShape: content
`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Engine.ResponseShape != "content" {
		t.Errorf("expected content shape, got %q", cfg.Engine.ResponseShape)
	}
}

func TestLoad_EnvExpansionInFile(t *testing.T) {
	t.Setenv("RELAY_TEST_SECRET", "from-env")
	path := filepath.Join(t.TempDir(), "config.json")
	data := `{
		"channel": {"id": "chan-1", "secret": "${RELAY_TEST_SECRET}", "accessToken": "t"},
		"engine": {"url": "https://engine.example.com"}
	}`
	if err := os.WriteFile(path, []byte(data), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Channel.Secret != "from-env" {
		t.Errorf("expected env expansion, got %q", cfg.Channel.Secret)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestLoad_InvalidConfigFails(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte(`{"engine": {"url": "https://e.example.com"}}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := Load(path); err == nil {
		t.Fatal("expected validation failure for missing channel identity")
	}
}

// --- FromEnv ---

func TestFromEnv(t *testing.T) {
	t.Setenv("CHANNEL_ID", "chan-env")
	t.Setenv("CHANNEL_SECRET", "s")
	t.Setenv("CHANNEL_ACCESS_TOKEN", "t")
	t.Setenv("ENGINE_URL", "https://engine.example.com")
	t.Setenv("PORT", "9000")
	t.Setenv("WAKE_WORD", "봇")

	cfg, err := FromEnv()
	if err != nil {
		t.Fatal(err)
	}
	if cfg.Channel.ID != "chan-env" {
		t.Errorf("expected chan-env, got %q", cfg.Channel.ID)
	}
	if cfg.Server.Port != 9000 {
		t.Errorf("expected port 9000, got %d", cfg.Server.Port)
	}
	if cfg.Relay.WakeWord != "봇" {
		t.Errorf("expected wake-word 봇, got %q", cfg.Relay.WakeWord)
	}
}

func TestFromEnv_MissingRequired(t *testing.T) {
	t.Setenv("CHANNEL_ID", "")
	t.Setenv("CHANNEL_SECRET", "")
	t.Setenv("CHANNEL_ACCESS_TOKEN", "")
	t.Setenv("ENGINE_URL", "")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected startup-fatal error without credentials")
	}
}

func TestFromEnv_InvalidPort(t *testing.T) {
	t.Setenv("CHANNEL_ID", "c")
	t.Setenv("CHANNEL_SECRET", "s")
	t.Setenv("CHANNEL_ACCESS_TOKEN", "t")
	t.Setenv("ENGINE_URL", "https://engine.example.com")
	t.Setenv("PORT", "eighty")
	if _, err := FromEnv(); err == nil {
		t.Fatal("expected error for non-numeric PORT")
	}
}
