package translation

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// ErrUnavailable wraps the error from building a Lazy translator's
// provider. Callers abort on it instead of keeping the original text.
var ErrUnavailable = errors.New("translator unavailable")

// Lazy builds its translator on the first call, so runs that never need a
// translation work without credentials.
type Lazy struct {
	build func(ctx context.Context) (Translator, error)

	once sync.Once
	tr   Translator
	err  error
}

// NewLazy creates a Lazy that calls build once.
func NewLazy(build func(ctx context.Context) (Translator, error)) *Lazy {
	return &Lazy{build: build}
}

// Translate implements Translator.
func (l *Lazy) Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error) {
	l.once.Do(func() {
		l.tr, l.err = l.build(ctx)
	})
	if l.err != nil {
		return "", fmt.Errorf("%w: %w", ErrUnavailable, l.err)
	}
	return l.tr.Translate(ctx, text, sourceLang, targetLang)
}
