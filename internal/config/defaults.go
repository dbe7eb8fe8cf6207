package config

// Defaults returns the observed production defaults. Channel identity
// and engine URL have no defaults; they must come from the config file
// or the environment.
func Defaults() *Config {
	return &Config{
		LogLevel: "info",
		Server: ServerConfig{
			Port: 8080,
			Path: "/callback",
		},
		Engine: EngineConfig{
			ResponseShape:  "messages",
			TimeoutSeconds: 30,
		},
		Relay: RelayConfig{
			MaxReplyMessages:  5,
			WakeWord:          "다빈",
			ConversationScope: "channel",
		},
		Metrics: MetricsConfig{
			Enabled: false,
		},
	}
}
