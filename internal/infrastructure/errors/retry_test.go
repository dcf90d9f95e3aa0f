package errors

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"
)

func fastRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:     3,
		InitialDelay:    time.Millisecond,
		MaxDelay:        5 * time.Millisecond,
		BackoffFactor:   2.0,
		RetryableErrors: []ErrorCode{ErrCodeBusy, ErrCodeConnection},
	}
}

func TestDefaultRetryConfig(t *testing.T) {
	config := DefaultRetryConfig()

	if config.MaxAttempts != 4 {
		t.Errorf("Expected MaxAttempts to be 4, got %d", config.MaxAttempts)
	}
	if config.MaxDelay > time.Second {
		t.Errorf("Expected sub-second MaxDelay for a local store, got %v", config.MaxDelay)
	}
	found := false
	for _, code := range config.RetryableErrors {
		if code == ErrCodeBusy {
			found = true
		}
	}
	if !found {
		t.Error("Expected busy errors to be retried by default")
	}
}

func TestWithRetry_SuccessAfterRetries(t *testing.T) {
	callCount := 0
	err := WithRetry(context.Background(), fastRetryConfig(), func() error {
		callCount++
		if callCount < 3 {
			return NewRepositoryError("op", errors.New("database is locked"), ErrCodeBusy)
		}
		return nil
	})

	if err != nil {
		t.Errorf("Expected no error, got %v", err)
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestWithRetry_NonRetryableError(t *testing.T) {
	callCount := 0
	err := WithRetry(context.Background(), fastRetryConfig(), func() error {
		callCount++
		return NewRepositoryError("op", nil, ErrCodeValidation)
	})

	if !IsValidation(err) {
		t.Errorf("Expected validation error, got %v", err)
	}
	if callCount != 1 {
		t.Errorf("Expected 1 call, got %d", callCount)
	}
}

func TestWithRetry_MaxAttemptsExceeded(t *testing.T) {
	callCount := 0
	err := WithRetryContext(context.Background(), fastRetryConfig(), func() error {
		callCount++
		return NewRepositoryError("op", nil, ErrCodeBusy)
	}, "SaveHistory")

	if err == nil || !strings.Contains(err.Error(), "failed after 3 attempts") {
		t.Errorf("Expected attempts exhausted error, got %v", err)
	}
	if !IsBusy(err) {
		t.Error("Expected wrapped error to keep its code")
	}
	if callCount != 3 {
		t.Errorf("Expected 3 calls, got %d", callCount)
	}
}

func TestWithRetry_ContextCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	config := fastRetryConfig()
	config.InitialDelay = time.Second
	config.MaxDelay = time.Second

	err := WithRetry(ctx, config, func() error {
		cancel()
		return NewRepositoryError("op", nil, ErrCodeBusy)
	})

	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled, got %v", err)
	}
}

func TestWithRetry_SQLiteBusyIsRetried(t *testing.T) {
	callCount := 0
	err := WithRetry(context.Background(), fastRetryConfig(), func() error {
		callCount++
		if callCount == 1 {
			return WrapDatabaseError("SavePreferences", errors.New("database is locked"))
		}
		return nil
	})

	if err != nil {
		t.Errorf("Expected busy store to recover, got %v", err)
	}
	if callCount != 2 {
		t.Errorf("Expected 2 calls, got %d", callCount)
	}
}

func TestRetryConfig_DelayCapped(t *testing.T) {
	config := &RetryConfig{InitialDelay: 10 * time.Millisecond, MaxDelay: 25 * time.Millisecond, BackoffFactor: 2.0}

	tests := []struct {
		attempt  int
		expected time.Duration
	}{
		{1, 10 * time.Millisecond},
		{2, 20 * time.Millisecond},
		{3, 25 * time.Millisecond},
		{6, 25 * time.Millisecond},
	}
	for _, tt := range tests {
		if got := config.delay(tt.attempt); got != tt.expected {
			t.Errorf("delay(%d) = %v, expected %v", tt.attempt, got, tt.expected)
		}
	}

	config.Jitter = true
	for range 20 {
		if got := config.delay(1); got < 10*time.Millisecond || got > 13*time.Millisecond {
			t.Fatalf("Jittered delay %v out of range", got)
		}
	}
}

type mockRetryLogger struct {
	mu     sync.Mutex
	events []RetryEvent
}

func (m *mockRetryLogger) LogRetry(event RetryEvent) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, event)
}

func (m *mockRetryLogger) outcomes() []RetryOutcome {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]RetryOutcome, len(m.events))
	for i, e := range m.events {
		out[i] = e.Outcome
	}
	return out
}

func TestSetRetryLogger(t *testing.T) {
	tests := []struct {
		name     string
		failures int
		code     ErrorCode
		expected []RetryOutcome
	}{
		{"first try", 0, ErrCodeBusy, []RetryOutcome{}},
		{"recovered", 1, ErrCodeBusy, []RetryOutcome{RetryScheduled, RetryRecovered}},
		{"exhausted", 5, ErrCodeBusy, []RetryOutcome{RetryScheduled, RetryScheduled, RetryExhausted}},
		{"not retried", 5, ErrCodeValidation, []RetryOutcome{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			logger := &mockRetryLogger{}
			SetRetryLogger(logger)
			t.Cleanup(func() { SetRetryLogger(nil) })

			callCount := 0
			_ = WithRetryContext(context.Background(), fastRetryConfig(), func() error {
				callCount++
				if callCount <= tt.failures {
					return NewRepositoryError("op", nil, tt.code)
				}
				return nil
			}, "SaveWindowState")

			got := logger.outcomes()
			if len(got) != len(tt.expected) {
				t.Fatalf("Expected outcomes %v, got %v", tt.expected, got)
			}
			for i := range got {
				if got[i] != tt.expected[i] {
					t.Errorf("Outcome %d = %v, expected %v", i, got[i], tt.expected[i])
				}
			}
			for _, e := range logger.events {
				if e.Operation != "SaveWindowState" || e.MaxAttempts != 3 {
					t.Errorf("Unexpected event %+v", e)
				}
			}
		})
	}
}

func TestWithRetry_AbandonedAfterRetry(t *testing.T) {
	logger := &mockRetryLogger{}
	SetRetryLogger(logger)
	t.Cleanup(func() { SetRetryLogger(nil) })

	callCount := 0
	err := WithRetry(context.Background(), fastRetryConfig(), func() error {
		callCount++
		if callCount == 1 {
			return NewRepositoryError("op", nil, ErrCodeBusy)
		}
		return NewRepositoryError("op", nil, ErrCodeDuplicate)
	})

	if !HasCode(err, ErrCodeDuplicate) {
		t.Errorf("Expected duplicate error, got %v", err)
	}
	got := logger.outcomes()
	if len(got) != 2 || got[1] != RetryAbandoned {
		t.Errorf("Expected scheduled then abandoned, got %v", got)
	}
}
