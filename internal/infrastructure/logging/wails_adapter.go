package logging

import "strings"

// WailsLoggerAdapter routes runtime messages from the window host into the
// application log. Each line carries source=wails and the host's own level
// name. Lines below minLevel are dropped before reaching the logger.
type WailsLoggerAdapter struct {
	logger   Logger
	minLevel Level
}

// NewWailsLoggerAdapter forwards every host message to logger
func NewWailsLoggerAdapter(logger Logger) *WailsLoggerAdapter {
	return NewWailsLoggerAdapterWithLevel(logger, LevelDebug)
}

// NewWailsLoggerAdapterWithLevel forwards host messages at or above minLevel
func NewWailsLoggerAdapterWithLevel(logger Logger, minLevel Level) *WailsLoggerAdapter {
	if logger == nil {
		logger = NewDefaultLogger()
	}
	return &WailsLoggerAdapter{logger: logger, minLevel: minLevel}
}

func (w *WailsLoggerAdapter) log(level Level, wailsLevel, message string) {
	if level < w.minLevel {
		return
	}
	message = strings.TrimSpace(message)
	if message == "" {
		return
	}
	fields := []interface{}{"source", "wails", "wails_level", wailsLevel}
	switch level {
	case LevelDebug:
		w.logger.Debug(message, fields...)
	case LevelInfo:
		w.logger.Info(message, fields...)
	case LevelWarn:
		w.logger.Warn(message, fields...)
	default:
		w.logger.Error(message, fields...)
	}
}

func (w *WailsLoggerAdapter) Print(message string)   { w.log(LevelInfo, "print", message) }
func (w *WailsLoggerAdapter) Trace(message string)   { w.log(LevelDebug, "trace", message) }
func (w *WailsLoggerAdapter) Debug(message string)   { w.log(LevelDebug, "debug", message) }
func (w *WailsLoggerAdapter) Info(message string)    { w.log(LevelInfo, "info", message) }
func (w *WailsLoggerAdapter) Warning(message string) { w.log(LevelWarn, "warning", message) }
func (w *WailsLoggerAdapter) Error(message string)   { w.log(LevelError, "error", message) }

// Fatal is logged as an error. The host must not exit the viewer.
func (w *WailsLoggerAdapter) Fatal(message string) { w.log(LevelError, "fatal", message) }
