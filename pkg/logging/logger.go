package logging

import (
	"fmt"

	"go.uber.org/zap"
)

// NewLogger builds the process root logger. Production environments get JSON
// output at INFO; everything else gets the human-readable development format
// at DEBUG.
func NewLogger(env string) (*zap.Logger, error) {
	var (
		logger *zap.Logger
		err    error
	)
	switch env {
	case "production", "staging":
		logger, err = zap.NewProduction()
	default:
		logger, err = zap.NewDevelopment()
	}
	if err != nil {
		return nil, fmt.Errorf("failed to build logger: %w", err)
	}
	return logger, nil
}
