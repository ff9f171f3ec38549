package logger

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger wraps the zap logger with additional functionality
type Logger struct {
	*zap.Logger
}

type options struct {
	level       zapcore.Level
	development bool
}

// Option customises the logger built by NewLogger.
type Option func(*options)

// WithLevel sets the minimum enabled level. Unknown names fall back to info.
func WithLevel(level string) Option {
	return func(o *options) {
		parsed, err := zapcore.ParseLevel(level)
		if err != nil {
			parsed = zapcore.InfoLevel
		}

		o.level = parsed
	}
}

// WithDevelopment switches to zap's console-friendly development encoder.
func WithDevelopment(development bool) Option {
	return func(o *options) {
		o.development = development
	}
}

// NewLogger creates a new logger instance with production configuration
func NewLogger(opts ...Option) (*Logger, error) {
	o := &options{level: zapcore.InfoLevel, development: false}
	for _, opt := range opts {
		opt(o)
	}

	config := zap.NewProductionConfig()
	if o.development {
		config = zap.NewDevelopmentConfig()
	}

	// Set the output to stdout
	config.OutputPaths = []string{"stdout"}

	// Set the error output to stderr
	config.ErrorOutputPaths = []string{"stderr"}

	config.Level = zap.NewAtomicLevelAt(o.level)

	zapLogger, err := config.Build()
	if err != nil {
		return nil, err
	}

	return &Logger{
		Logger: zapLogger,
	}, nil
}

// NewNop returns a logger that discards everything. Used by tests and by
// components constructed without a logger.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// Sync flushes any buffered log entries
func (l *Logger) Sync() error {
	if l.Logger != nil {
		return l.Logger.Sync()
	}

	return nil
}
