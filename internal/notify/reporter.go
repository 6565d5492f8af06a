package notify

import (
	"restopos/internal/logger"

	"go.uber.org/zap"
)

// Reporter is the toast surface: transient success/error feedback for a
// user action. It is deliberately separate from Log, which only the
// realtime reconciler writes to.
type Reporter interface {
	Success(message string)
	Failure(message string)
}

// NewLogReporter returns a Reporter that writes to the application log,
// for headless runs and tests.
func NewLogReporter() Reporter {
	return logReporter{}
}

type logReporter struct{}

func (logReporter) Success(message string) {
	logger.L().Info("action succeeded", zap.String("toast", message))
}

func (logReporter) Failure(message string) {
	logger.L().Warn("action failed", zap.String("toast", message))
}
