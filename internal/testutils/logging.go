package testutils

import (
	"strings"
	"sync"
)

// TestingT is a minimal interface that matches the methods we need from testing.T
type TestingT interface {
	Errorf(format string, args ...any)
}

// FieldsToMap safely converts a slice of alternating key-value pairs to a map.
// Malformed entries are reported through t and skipped.
func FieldsToMap(t TestingT, fields []any) map[string]any {
	fieldsMap := make(map[string]any)

	for i := 0; i < len(fields); i += 2 {
		if i+1 >= len(fields) {
			t.Errorf("Malformed fields slice: missing value for key at index %d", i)
			continue
		}

		key, ok := fields[i].(string)
		if !ok {
			t.Errorf("Malformed fields slice: key at index %d is not a string, got %T", i, fields[i])
			continue
		}

		fieldsMap[key] = fields[i+1]
	}

	return fieldsMap
}

// LogCall is a single recorded logger invocation
type LogCall struct {
	Level  string
	Msg    string
	Fields []any
}

// RecordingLogger records every call and is safe for concurrent use.
// It satisfies logging.Logger without importing it.
type RecordingLogger struct {
	mu    sync.Mutex
	calls []LogCall
}

func (r *RecordingLogger) record(level, msg string, fields []any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, LogCall{Level: level, Msg: msg, Fields: fields})
}

func (r *RecordingLogger) Debug(msg string, fields ...any) { r.record("DEBUG", msg, fields) }
func (r *RecordingLogger) Info(msg string, fields ...any)  { r.record("INFO", msg, fields) }
func (r *RecordingLogger) Warn(msg string, fields ...any)  { r.record("WARN", msg, fields) }
func (r *RecordingLogger) Error(msg string, fields ...any) { r.record("ERROR", msg, fields) }

// Calls returns a copy of the recorded calls at the given level, or all calls
// when level is empty
func (r *RecordingLogger) Calls(level string) []LogCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []LogCall
	for _, c := range r.calls {
		if level == "" || c.Level == level {
			out = append(out, c)
		}
	}
	return out
}

// Contains reports whether any call at level has a message containing substr
func (r *RecordingLogger) Contains(level, substr string) bool {
	for _, c := range r.Calls(level) {
		if strings.Contains(c.Msg, substr) {
			return true
		}
	}
	return false
}
