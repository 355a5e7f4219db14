package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server ServerConfig `mapstructure:"server" validate:"required"`
	Task   TaskConfig   `mapstructure:"task"   validate:"required"`
}

// ServerConfig contains the control-surface HTTP settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port"      validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// TaskConfig contains the dispatch core settings.
type TaskConfig struct {
	// Name is the task kind handed to runner construction.
	Name string `mapstructure:"name" validate:"required"`

	// RetryDelaySeconds is the backoff before a retryable failure's
	// event is returned for redelivery.
	RetryDelaySeconds int `mapstructure:"retry_delay_seconds" validate:"required,gte=1"`

	// Distributed switches runners into the distributed commitment flow.
	Distributed bool `mapstructure:"distributed"`

	// QueueSize bounds the in-memory event queue.
	QueueSize int `mapstructure:"queue_size" validate:"required,gte=1"`

	// AckTimeoutSeconds bounds each queue settlement during shutdown.
	AckTimeoutSeconds int `mapstructure:"ack_timeout_seconds" validate:"required,gte=1"`

	// ShutdownGraceSeconds is how long to wait for in-flight handlers
	// after the dispatch loop exits.
	ShutdownGraceSeconds int `mapstructure:"shutdown_grace_seconds" validate:"required,gte=1"`
}
