package translation

import (
	"context"
	"errors"
	"time"

	"github.com/sony/gobreaker"
)

// ErrBreakerOpen is what gobreaker returns while it rejects calls.
var ErrBreakerOpen = gobreaker.ErrOpenState

// Breaker stops calling a translator after a run of consecutive failures.
// While open, Translate waits for the timeout to elapse and then sends the
// call through in the half-open state, so every text still gets a real
// attempt. Only the attempt's own error is returned.
type Breaker struct {
	next    Translator
	cb      *gobreaker.CircuitBreaker
	timeout time.Duration
	sleep   func(ctx context.Context, d time.Duration) error
}

// NewBreaker wraps next. maxFailures consecutive errors open the breaker;
// zero or less disables it.
func NewBreaker(next Translator, maxFailures int, timeout time.Duration) *Breaker {
	b := &Breaker{next: next, timeout: timeout, sleep: sleepContext}
	if maxFailures <= 0 {
		return b
	}

	b.cb = gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "translation",
		Timeout: timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(maxFailures)
		},
		IsSuccessful: func(err error) bool {
			// A cancelled run says nothing about the service.
			return err == nil || errors.Is(err, context.Canceled)
		},
	})
	return b
}

// State reports the breaker state name, "disabled" when there is none.
func (b *Breaker) State() string {
	if b.cb == nil {
		return "disabled"
	}
	return b.cb.State().String()
}

// Translate implements Translator.
func (b *Breaker) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if b.cb == nil {
		return b.next.Translate(ctx, text, sourceLang, targetLang)
	}

	for {
		out, err := b.cb.Execute(func() (interface{}, error) {
			return b.next.Translate(ctx, text, sourceLang, targetLang)
		})
		if err == nil {
			return out.(string), nil
		}
		if !rejected(err) {
			return "", err
		}
		if err := b.sleep(ctx, b.wait()); err != nil {
			return "", err
		}
	}
}

func (b *Breaker) wait() time.Duration {
	if b.timeout <= 0 {
		// gobreaker falls back to 60s for a zero timeout.
		return 60 * time.Second
	}
	return b.timeout
}

// rejected reports whether the breaker refused the call without running it.
func rejected(err error) bool {
	return errors.Is(err, ErrBreakerOpen) || errors.Is(err, gobreaker.ErrTooManyRequests)
}
