package translation

import (
	"context"
	"time"
)

// Throttle pauses for a fixed delay before every call to the wrapped
// translator.
type Throttle struct {
	next  Translator
	delay time.Duration
	sleep func(ctx context.Context, d time.Duration) error
}

// NewThrottle wraps next. A non-positive delay disables the pause.
func NewThrottle(next Translator, delay time.Duration) *Throttle {
	return &Throttle{next: next, delay: delay, sleep: sleepContext}
}

// Translate implements Translator.
func (t *Throttle) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	if t.delay > 0 {
		if err := t.sleep(ctx, t.delay); err != nil {
			return "", err
		}
	}
	return t.next.Translate(ctx, text, sourceLang, targetLang)
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
