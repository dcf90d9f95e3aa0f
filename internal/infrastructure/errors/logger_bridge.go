package errors

import (
	"picviewer/internal/infrastructure/logging"
)

// LoggerBridge writes retry events to a logging.Logger
type LoggerBridge struct {
	logger logging.Logger
}

// NewLoggerBridge creates a RetryLogger backed by logger
func NewLoggerBridge(logger logging.Logger) RetryLogger {
	return &LoggerBridge{logger: logger}
}

// LogRetry implements RetryLogger. A scheduled retry logs at WARN and an
// exhausted one at ERROR.
func (b *LoggerBridge) LogRetry(event RetryEvent) {
	if b.logger == nil {
		return
	}
	fields := []interface{}{
		"source", "retry",
		"operation", event.Operation,
		"attempt", event.Attempt,
		"max_attempts", event.MaxAttempts,
		"outcome", event.Outcome.String(),
	}
	if event.Err != nil {
		code, ok := codeOf(event.Err)
		if !ok {
			code = ClassifyError(event.Err)
		}
		fields = append(fields, "error", event.Err, "error_code", code.String())
	}

	switch event.Outcome {
	case RetryScheduled:
		b.logger.Warn("Store operation failed, retrying", append(fields, "delay_ms", event.Delay.Milliseconds())...)
	case RetryRecovered:
		b.logger.Info("Store operation recovered", fields...)
	case RetryExhausted:
		b.logger.Error("Store operation gave up", fields...)
	default:
		b.logger.Debug("Store operation stopped retrying", fields...)
	}
}

// UseLogger routes retry events to the given logger
func UseLogger(logger logging.Logger) {
	if logger == nil {
		logger = logging.NewDefaultLogger()
	}
	SetRetryLogger(NewLoggerBridge(logger))
}
