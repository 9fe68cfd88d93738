// Package retry repeats operations that fail for transient reasons, such as
// fetching a remote schema from a briefly unavailable server. Attempts are
// tracked in a State; when the retries run out the last error is returned
// inside an ExhaustedError.
package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Policy bounds how often and how fast an operation is retried.
type Policy struct {
	// MaxRetries is the number of attempts after the first one. Zero
	// disables retrying.
	MaxRetries int
	// Backoff is the delay before the first retry; it doubles each time.
	Backoff time.Duration
	// MaxBackoff caps the delay. Zero means no cap.
	MaxBackoff time.Duration
}

// DefaultPolicy does not retry. Raising MaxRetries enables retries after
// 200ms, 400ms and so on, capped at 2s.
func DefaultPolicy() Policy {
	return Policy{Backoff: 200 * time.Millisecond, MaxBackoff: 2 * time.Second}
}

// State represents retry tracking for one operation
type State struct {
	Operation   string
	Count       int
	LastAttempt time.Time
	MaxRetries  int
}

// CanRetry returns true if more retries are allowed
func (s *State) CanRetry() bool {
	return s.Count < s.MaxRetries
}

// Increment increments the retry count and updates the timestamp
// Returns an error if max retries are exceeded
func (s *State) Increment() error {
	if !s.CanRetry() {
		return &ExhaustedError{
			Operation:  s.Operation,
			Count:      s.Count,
			MaxRetries: s.MaxRetries,
		}
	}
	s.Count++
	s.LastAttempt = time.Now()
	return nil
}

// ExhaustedError is returned when an operation still fails after the last
// retry. Err is the final failure.
type ExhaustedError struct {
	Operation  string
	Count      int
	MaxRetries int
	Err        error
}

func (e *ExhaustedError) Error() string {
	msg := fmt.Sprintf("%s failed after %d retries", e.Operation, e.Count)
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ExhaustedError) Unwrap() error { return e.Err }

type permanentError struct {
	err error
}

func (e *permanentError) Error() string { return e.err.Error() }
func (e *permanentError) Unwrap() error { return e.err }

// Permanent marks err as not worth retrying. Do returns the wrapped error
// immediately.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// Do calls fn until it succeeds, returns a Permanent error, the policy runs
// out of retries or ctx is done.
func Do(ctx context.Context, p Policy, operation string, fn func() error) error {
	state := &State{Operation: operation, MaxRetries: p.MaxRetries}
	delay := p.Backoff

	for {
		err := fn()
		if err == nil {
			return nil
		}
		var perm *permanentError
		if errors.As(err, &perm) {
			return perm.err
		}
		if p.MaxRetries <= 0 {
			return err
		}
		if incErr := state.Increment(); incErr != nil {
			var exhausted *ExhaustedError
			errors.As(incErr, &exhausted)
			exhausted.Err = err
			return exhausted
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return errors.Join(err, ctx.Err())
		case <-timer.C:
		}
		delay *= 2
		if p.MaxBackoff > 0 && delay > p.MaxBackoff {
			delay = p.MaxBackoff
		}
	}
}
