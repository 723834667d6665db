package translation

import (
	"context"
	"strings"

	"codeberg.org/snonux/foodsync/internal"
)

// Status is the outcome of resolving one text.
type Status int

const (
	// StatusOK means the service returned a translation.
	StatusOK Status = iota
	// StatusSkipped means no call was made because the text is already ASCII.
	StatusSkipped
	// StatusFailed means the call failed and Text holds the original input.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusOK:
		return "ok"
	case StatusSkipped:
		return "skipped"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// Result is the outcome of Resolve.
type Result struct {
	Text   string
	Status Status
	// Err is set when Status is StatusFailed.
	Err error
}

// Called reports whether the translator was invoked.
func (r Result) Called() bool {
	return r.Status != StatusSkipped
}

// Resolve translates text and never fails: ASCII text is returned as is
// without a call, and any error or empty answer yields the original text.
func Resolve(ctx context.Context, tr Translator, text, sourceLang, targetLang string) Result {
	if text == "" || internal.IsASCII(text) {
		return Result{Text: text, Status: StatusSkipped}
	}

	out, err := tr.Translate(ctx, text, sourceLang, targetLang)
	if err != nil {
		return Result{Text: text, Status: StatusFailed, Err: err}
	}

	out = strings.TrimSpace(out)
	if out == "" {
		return Result{Text: text, Status: StatusFailed, Err: errEmptyTranslation}
	}

	return Result{Text: out, Status: StatusOK}
}
