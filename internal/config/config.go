package config

import (
	"encoding/json"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration for the relay.
type Config struct {
	LogLevel string        `json:"logLevel" yaml:"logLevel"`
	Server   ServerConfig  `json:"server" yaml:"server"`
	Channel  ChannelConfig `json:"channel" yaml:"channel"`
	Engine   EngineConfig  `json:"engine" yaml:"engine"`
	Relay    RelayConfig   `json:"relay" yaml:"relay"`
	Metrics  MetricsConfig `json:"metrics" yaml:"metrics"`
}

type ServerConfig struct {
	Port int    `json:"port" yaml:"port"`
	Path string `json:"path" yaml:"path"` // webhook path
}

// ChannelConfig carries the bot's LINE channel identity. All three
// fields are required at startup.
type ChannelConfig struct {
	ID          string `json:"id" yaml:"id"`
	Secret      string `json:"secret" yaml:"secret"`
	AccessToken string `json:"accessToken" yaml:"accessToken"`
}

type EngineConfig struct {
	URL            string `json:"url" yaml:"url"`
	ResponseShape  string `json:"responseShape" yaml:"responseShape"`   // "messages" | "content"
	TimeoutSeconds int    `json:"timeoutSeconds" yaml:"timeoutSeconds"` // engine call timeout
}

type RelayConfig struct {
	MaxReplyMessages  int    `json:"maxReplyMessages" yaml:"maxReplyMessages"`
	WakeWord          string `json:"wakeWord" yaml:"wakeWord"`
	ConversationScope string `json:"conversationScope" yaml:"conversationScope"` // "channel" | "user"
}

type MetricsConfig struct {
	Enabled bool `json:"enabled" yaml:"enabled"`
}

// DefaultConfigDir returns the default config directory (~/.linebot).
func DefaultConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".linebot"
	}
	return filepath.Join(home, ".linebot")
}

func DefaultConfigPath() string {
	return filepath.Join(DefaultConfigDir(), "config.json")
}

// Load reads a config file, expands environment references, and
// validates the result. The format is chosen by extension: .yaml/.yml
// parse as YAML, anything else as JSON.
func Load(path string) (*Config, error) {
	if strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("cannot resolve home directory: %w", err)
		}
		path = filepath.Join(home, path[2:])
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %w", path, err)
	}

	// Substitute environment variables: ${VAR} and ${VAR:-default}
	data = []byte(ExpandEnvVars(string(data)))

	cfg := Defaults()
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, cfg)
	default:
		err = json.Unmarshal(data, cfg)
	}
	if err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %w", path, err)
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// FromEnv builds a validated config from environment variables, the
// original deployment style of the relay. Only the variables that are
// set override the defaults.
func FromEnv() (*Config, error) {
	cfg := Defaults()

	setEnv := func(dst *string, key string) {
		if v, ok := os.LookupEnv(key); ok {
			*dst = v
		}
	}
	setEnv(&cfg.Channel.ID, "CHANNEL_ID")
	setEnv(&cfg.Channel.Secret, "CHANNEL_SECRET")
	setEnv(&cfg.Channel.AccessToken, "CHANNEL_ACCESS_TOKEN")
	setEnv(&cfg.Engine.URL, "ENGINE_URL")
	setEnv(&cfg.Engine.ResponseShape, "ENGINE_RESPONSE_SHAPE")
	setEnv(&cfg.Relay.WakeWord, "WAKE_WORD")
	setEnv(&cfg.Relay.ConversationScope, "CONVERSATION_SCOPE")

	if v, ok := os.LookupEnv("PORT"); ok {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid PORT %q: %w", v, err)
		}
		cfg.Server.Port = port
	}
	if v, ok := os.LookupEnv("MAX_REPLY_MESSAGES"); ok {
		n, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MAX_REPLY_MESSAGES %q: %w", v, err)
		}
		cfg.Relay.MaxReplyMessages = n
	}

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}
	return cfg, nil
}

// envVarPattern matches ${VAR} and ${VAR:-default} patterns in config strings.
var envVarPattern = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-(.*?))?\}`)

// ExpandEnvVars replaces ${VAR} with the environment variable value.
// Supports default values: ${VAR:-default} uses "default" when VAR is unset or empty.
func ExpandEnvVars(input string) string {
	return envVarPattern.ReplaceAllStringFunc(input, func(match string) string {
		groups := envVarPattern.FindStringSubmatch(match)
		if len(groups) < 2 {
			return match
		}
		varName := groups[1]
		defaultVal := ""
		hasDefault := len(groups) >= 3 && groups[2] != ""
		if hasDefault {
			defaultVal = groups[2]
		}

		val, exists := os.LookupEnv(varName)
		if !exists || val == "" {
			if hasDefault {
				return defaultVal
			}
			return match // keep original if no env var and no default
		}
		return val
	})
}

// Validate checks the config and collects every violation. Missing
// channel credentials or engine URL must fail startup, not a later
// request.
func Validate(cfg *Config) error {
	var errs []string

	if cfg.Channel.ID == "" {
		errs = append(errs, "channel.id is required")
	}
	if cfg.Channel.Secret == "" {
		errs = append(errs, "channel.secret is required")
	}
	if cfg.Channel.AccessToken == "" {
		errs = append(errs, "channel.accessToken is required")
	}

	if cfg.Engine.URL == "" {
		errs = append(errs, "engine.url is required")
	} else if u, err := url.Parse(cfg.Engine.URL); err != nil || !u.IsAbs() {
		errs = append(errs, fmt.Sprintf("engine.url must be an absolute URL, got %q", cfg.Engine.URL))
	}
	switch cfg.Engine.ResponseShape {
	case "messages", "content":
		// valid
	default:
		errs = append(errs, "engine.responseShape must be one of: messages, content")
	}
	if cfg.Engine.TimeoutSeconds < 1 {
		errs = append(errs, "engine.timeoutSeconds must be >= 1")
	}

	if cfg.Server.Port < 1 || cfg.Server.Port > 65535 {
		errs = append(errs, "server.port must be between 1 and 65535")
	}
	if !strings.HasPrefix(cfg.Server.Path, "/") {
		errs = append(errs, "server.path must start with /")
	}

	if cfg.Relay.MaxReplyMessages < 0 {
		errs = append(errs, "relay.maxReplyMessages must be >= 0")
	}
	switch cfg.Relay.ConversationScope {
	case "channel", "user":
		// valid
	default:
		errs = append(errs, "relay.conversationScope must be one of: channel, user")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation errors:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
