package errors

import (
	"context"
	"fmt"
	"math/rand/v2"
	"slices"
	"sync"
	"time"
)

// RetryOutcome says what happened at one step of a retried operation
type RetryOutcome int

const (
	RetryScheduled RetryOutcome = iota // failed, another attempt follows
	RetryRecovered                     // succeeded after at least one failure
	RetryAbandoned                     // failed with an error that is not retried
	RetryExhausted                     // every attempt failed
)

func (o RetryOutcome) String() string {
	switch o {
	case RetryScheduled:
		return "scheduled"
	case RetryRecovered:
		return "recovered"
	case RetryAbandoned:
		return "abandoned"
	case RetryExhausted:
		return "exhausted"
	default:
		return "unknown"
	}
}

// RetryEvent describes one step of a retried store operation
type RetryEvent struct {
	Operation   string
	Attempt     int // 1-based
	MaxAttempts int
	Delay       time.Duration // wait before the next attempt
	Err         error
	Outcome     RetryOutcome
}

// RetryLogger receives retry events
type RetryLogger interface {
	LogRetry(event RetryEvent)
}

// RetryConfig holds configuration for retry logic
type RetryConfig struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	BackoffFactor   float64
	Jitter          bool        // add up to 25% to each delay
	RetryableErrors []ErrorCode // codes worth another attempt
}

// DefaultRetryConfig suits the local settings file. Lock contention between
// viewer windows clears within milliseconds, so delays stay short.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxAttempts:   4,
		InitialDelay:  20 * time.Millisecond,
		MaxDelay:      500 * time.Millisecond,
		BackoffFactor: 2.0,
		Jitter:        true,
		RetryableErrors: []ErrorCode{
			ErrCodeBusy,
			ErrCodeConnection,
			ErrCodeTransaction,
		},
	}
}

// RetryableOperation represents an operation that can be retried
type RetryableOperation func() error

var (
	retryLoggerMu sync.RWMutex
	retryLogger   RetryLogger
)

// SetRetryLogger sets the package-level retry logger. nil disables logging.
func SetRetryLogger(logger RetryLogger) {
	retryLoggerMu.Lock()
	defer retryLoggerMu.Unlock()
	retryLogger = logger
}

func emitRetry(event RetryEvent) {
	retryLoggerMu.RLock()
	logger := retryLogger
	retryLoggerMu.RUnlock()
	if logger != nil {
		logger.LogRetry(event)
	}
}

// WithRetry executes an operation with retry logic
func WithRetry(ctx context.Context, config *RetryConfig, operation RetryableOperation) error {
	return WithRetryContext(ctx, config, operation, "")
}

// WithRetryContext executes a named operation, retrying coded errors whose
// code the config lists. Waiting between attempts stops when ctx is done.
func WithRetryContext(ctx context.Context, config *RetryConfig, operation RetryableOperation, operationName string) error {
	if config == nil {
		config = DefaultRetryConfig()
	}
	attempts := max(config.MaxAttempts, 1)
	label := "operation"
	if operationName != "" {
		label = fmt.Sprintf("operation '%s'", operationName)
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		err := operation()
		event := RetryEvent{Operation: operationName, Attempt: attempt, MaxAttempts: attempts, Err: err}
		if err == nil {
			if attempt > 1 {
				event.Outcome = RetryRecovered
				emitRetry(event)
			}
			return nil
		}
		lastErr = err

		if !config.retries(err) {
			if attempt > 1 {
				event.Outcome = RetryAbandoned
				emitRetry(event)
			}
			return err
		}
		if attempt == attempts {
			break
		}

		event.Delay = config.delay(attempt)
		event.Outcome = RetryScheduled
		emitRetry(event)

		timer := time.NewTimer(event.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%s cancelled during retry: %w", label, ctx.Err())
		case <-timer.C:
		}
	}

	emitRetry(RetryEvent{Operation: operationName, Attempt: attempts, MaxAttempts: attempts, Err: lastErr, Outcome: RetryExhausted})
	return fmt.Errorf("%s failed after %d attempts: %w", label, attempts, lastErr)
}

// retries reports whether err carries a retryable code listed in the config
func (c *RetryConfig) retries(err error) bool {
	code, ok := codeOf(err)
	return ok && IsRetryable(err) && slices.Contains(c.RetryableErrors, code)
}

// delay returns the wait after the given 1-based attempt
func (c *RetryConfig) delay(attempt int) time.Duration {
	d := float64(c.InitialDelay)
	for range attempt - 1 {
		d *= c.BackoffFactor
	}
	delay := time.Duration(d)
	if c.Jitter && delay > 0 {
		delay += time.Duration(rand.Int64N(int64(delay)/4 + 1))
	}
	if c.MaxDelay > 0 {
		delay = min(delay, c.MaxDelay)
	}
	return delay
}
