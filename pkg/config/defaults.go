package config

const (
	defaultAPITarget = "http://localhost:8000"

	defaultChatMode       = ModeStreaming
	defaultTimeoutSeconds = 300
)

// NewDefaultConfig returns a Config with sane defaults for all fields.
// This is the single source of truth for default values.
func NewDefaultConfig() *Config {
	return &Config{
		Version: CurrentV,
		Client: ClientConfig{
			APITarget: defaultAPITarget,
		},
		Chat: ChatConfig{
			Mode:           defaultChatMode,
			TimeoutSeconds: defaultTimeoutSeconds,
		},
	}
}
