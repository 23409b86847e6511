package config

// LoggerConfig configures the zap logger.
type LoggerConfig struct {
	Level            string   `json:"level" yaml:"level" mapstructure:"level"`                                  // debug/info/warn/error
	Encoding         string   `json:"encoding" yaml:"encoding" mapstructure:"encoding"`                         // json or console
	EnableColor      bool     `json:"enableColor" yaml:"enableColor" mapstructure:"enableColor"`                // colored levels, console only
	Development      bool     `json:"development" yaml:"development" mapstructure:"development"`                // stack traces on error level
	OutputPaths      []string `json:"outputPaths" yaml:"outputPaths" mapstructure:"outputPaths"`                // stdout/stderr or files
	ErrorOutputPaths []string `json:"errorOutputPaths" yaml:"errorOutputPaths" mapstructure:"errorOutputPaths"` // internal zap errors
}

// DefaultLoggerConfig returns local development defaults.
func DefaultLoggerConfig() LoggerConfig {
	return LoggerConfig{
		Level:            "info",
		Encoding:         "json",
		EnableColor:      false,
		Development:      false,
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}
}
