package logger

import (
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New creates a structured logger. Production writes JSON with ISO8601
// timestamps; every other env gets a coloured console encoder. Every entry
// carries the service name.
func New(env, service string) (*zap.Logger, error) {
	return newConfig(env, service).Build(
		zap.AddCaller(),
		zap.AddStacktrace(zapcore.ErrorLevel),
	)
}

func newConfig(env, service string) zap.Config {
	var config zap.Config

	if env == "production" {
		config = zap.NewProductionConfig()
		config.Encoding = "json"
		config.EncoderConfig.TimeKey = "timestamp"
		config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	} else {
		config = zap.NewDevelopmentConfig()
		config.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	// Always log to stdout for container compatibility
	config.OutputPaths = []string{"stdout"}
	config.ErrorOutputPaths = []string{"stderr"}

	if service != "" {
		config.InitialFields = map[string]interface{}{"service": service}
	}

	return config
}

// NewWithDefaults creates a logger from SERVER_ENV, falling back to a plain
// production logger when the configured one cannot be built
func NewWithDefaults() *zap.Logger {
	env := os.Getenv("SERVER_ENV")
	if env == "" {
		env = "development"
	}

	logger, err := New(env, os.Getenv("OTEL_SERVICE_NAME"))
	if err != nil {
		logger, _ = zap.NewProduction()
	}

	return logger
}
