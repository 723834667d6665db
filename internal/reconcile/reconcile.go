package reconcile

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"codeberg.org/snonux/foodsync/internal/fooddb"
	"codeberg.org/snonux/foodsync/internal/source"
	"codeberg.org/snonux/foodsync/internal/translation"
)

// Options selects the translation locales.
type Options struct {
	SourceLang string
	TargetLang string
}

// Summary counts what a reconcile did.
type Summary struct {
	Rows                int // snapshot rows seen
	Reused              int // prior records emitted verbatim
	Updated             int // prior records with new cal or backfilled en
	Added               int // names not in the prior set
	Backfilled          int // updated records whose en had to be translated
	TranslationCalls    int
	TranslationFailures int
	SkippedRows         int // rows without a name
	Duplicates          int // repeated names, first occurrence kept
	Dropped             int // prior names absent from the snapshot
	Total               int
}

// Translated is the number of records whose en came from a translation
// attempt, successful or not.
func (s Summary) Translated() int {
	return s.Added + s.Backfilled
}

// Result is the new record set and what it took to build it.
type Result struct {
	Records []fooddb.Record
	Summary Summary
}

// Reconciler merges snapshots into a record set.
type Reconciler struct {
	translator translation.Translator
	opts       Options
	logger     *zap.Logger
}

// New creates a Reconciler. A nil logger discards output.
func New(tr translation.Translator, opts Options, logger *zap.Logger) *Reconciler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if opts.SourceLang == "" {
		opts.SourceLang = "zh-TW"
	}
	if opts.TargetLang == "" {
		opts.TargetLang = "en"
	}
	return &Reconciler{translator: tr, opts: opts, logger: logger}
}

// Reconcile builds the new record set from prior and rows. Rows are
// processed in order and the output keeps that order. A cancelled context
// or a translator that cannot be created aborts the run. Failed
// translations do not.
func (r *Reconciler) Reconcile(ctx context.Context, prior map[string]fooddb.Record, rows []source.Row) (*Result, error) {
	res := &Result{Records: make([]fooddb.Record, 0, len(rows))}
	sum := &res.Summary
	seen := make(map[string]struct{}, len(rows))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("reconcile aborted at line %d: %w", row.Line, err)
		}
		sum.Rows++

		name := strings.TrimSpace(row.Name)
		if name == "" {
			sum.SkippedRows++
			continue
		}
		if _, dup := seen[name]; dup {
			sum.Duplicates++
			r.logger.Debug("Duplicate name in snapshot", zap.String("zh", name), zap.Int("line", row.Line))
			continue
		}
		seen[name] = struct{}{}

		cal := CoerceCalories(row.Calories)

		old, found := prior[name]
		switch {
		case !found:
			en, err := r.translate(ctx, name, sum)
			if err != nil {
				return nil, err
			}
			res.Records = append(res.Records, fooddb.Record{Zh: name, En: en, Cal: cal})
			sum.Added++

		case CoerceCalories(old.Cal) == cal && old.En != "":
			res.Records = append(res.Records, old)
			sum.Reused++

		default:
			en := old.En
			if en == "" {
				var err error
				if en, err = r.translate(ctx, name, sum); err != nil {
					return nil, err
				}
				sum.Backfilled++
			}
			res.Records = append(res.Records, fooddb.Record{Zh: name, En: en, Cal: cal})
			sum.Updated++
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("reconcile aborted: %w", err)
	}

	for zh := range prior {
		if _, ok := seen[zh]; !ok {
			sum.Dropped++
		}
	}
	sum.Total = len(res.Records)

	return res, nil
}

func (r *Reconciler) translate(ctx context.Context, name string, sum *Summary) (string, error) {
	out := translation.Resolve(ctx, r.translator, name, r.opts.SourceLang, r.opts.TargetLang)
	if out.Status == translation.StatusFailed && errors.Is(out.Err, translation.ErrUnavailable) {
		return "", fmt.Errorf("cannot translate %q: %w", name, out.Err)
	}

	switch out.Status {
	case translation.StatusOK:
		sum.TranslationCalls++
		r.logger.Debug("Translated", zap.String("zh", name), zap.String("en", out.Text))
	case translation.StatusFailed:
		sum.TranslationCalls++
		sum.TranslationFailures++
		r.logger.Warn("Translation failed, keeping original name",
			zap.String("zh", name), zap.Error(out.Err))
	}

	return out.Text, nil
}
