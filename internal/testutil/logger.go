package testutil

import (
	"io"

	"github.com/dtroode/gatekeeper/internal/logger"
)

func MakeNoopLogger() *logger.Logger {
	return logger.NewWithFormat(io.Discard, 0, "text")
}
