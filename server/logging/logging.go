package logging

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/Mohammad-Mahdi82/NexusCafe/server/config"
)

// New builds the process logger. Output "stderr" or "stdout" gets a coloured
// console encoder when attached to a terminal; anything else is treated as a
// file path and receives JSON lines.
func New(cfg config.LogConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}

	output := cfg.Output
	if output == "" {
		output = "stderr"
	}

	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	zc.OutputPaths = []string{output}
	zc.ErrorOutputPaths = []string{"stderr"}
	zc.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder

	if isTerminal(output) {
		zc.Encoding = "console"
		zc.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	}

	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}

func isTerminal(output string) bool {
	switch output {
	case "stderr":
		return isatty.IsTerminal(os.Stderr.Fd())
	case "stdout":
		return isatty.IsTerminal(os.Stdout.Fd())
	}
	return false
}
