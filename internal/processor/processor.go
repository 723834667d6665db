package processor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"sync"
	"time"

	"go.uber.org/zap"

	"codeberg.org/snonux/foodsync/internal"
	"codeberg.org/snonux/foodsync/internal/config"
	"codeberg.org/snonux/foodsync/internal/export"
	"codeberg.org/snonux/foodsync/internal/fooddb"
	"codeberg.org/snonux/foodsync/internal/metrics"
	"codeberg.org/snonux/foodsync/internal/reconcile"
	"codeberg.org/snonux/foodsync/internal/source"
	"codeberg.org/snonux/foodsync/internal/translation"
)

// Publisher uploads files after a successful save.
type Publisher interface {
	Publish(ctx context.Context, paths ...string) ([]string, error)
}

// Report describes a finished run.
type Report struct {
	RunID    string
	Summary  reconcile.Summary
	Output   string
	Backup   string
	BackedUp bool
	DryRun   bool
	// Exported is the SQLite path written, empty when skipped or failed.
	Exported  string
	Published []string
	Duration  time.Duration
}

// Processor handles the sync logic
type Processor struct {
	cfg        *config.Config
	translator translation.Translator
	store      *fooddb.Store
	publisher  Publisher
	metrics    *metrics.Metrics
	logger     *zap.Logger
	httpClient *http.Client
	out        io.Writer

	// Serializes runs so two syncs never write the database at once.
	mu sync.Mutex
}

// Option configures a Processor.
type Option func(*Processor)

// WithPublisher uploads output files after each saved run.
func WithPublisher(p Publisher) Option {
	return func(pr *Processor) { pr.publisher = p }
}

// WithMetrics records every run.
func WithMetrics(m *metrics.Metrics) Option {
	return func(pr *Processor) { pr.metrics = m }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(pr *Processor) { pr.logger = l }
}

// WithOutput sets where the run summary is printed. nil silences it.
func WithOutput(w io.Writer) Option {
	return func(pr *Processor) { pr.out = w }
}

// WithHTTPClient sets the client used to fetch remote snapshots.
func WithHTTPClient(c *http.Client) Option {
	return func(pr *Processor) { pr.httpClient = c }
}

// NewProcessor creates a new sync processor
func NewProcessor(cfg *config.Config, tr translation.Translator, opts ...Option) *Processor {
	p := &Processor{
		cfg:        cfg,
		translator: tr,
		store:      fooddb.NewStore(cfg.Database.Output, cfg.Database.Backup),
		logger:     zap.NewNop(),
		out:        os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run performs one sync. Source and database read errors abort the run
// before anything is written. Export and publish failures are logged and do
// not fail the run, since the JSON database is already saved by then.
func (p *Processor) Run(ctx context.Context) (*Report, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	start := time.Now()
	report := &Report{
		RunID:  internal.GenerateRunID(),
		Output: p.cfg.Database.Output,
		Backup: p.cfg.Database.Backup,
		DryRun: p.cfg.DryRun,
	}
	log := p.logger.With(zap.String("run_id", report.RunID))

	err := p.run(ctx, report, log)
	report.Duration = time.Since(start)
	p.metrics.ObserveRun(report.Summary, report.Duration, report.DryRun, err)
	if err != nil {
		return nil, err
	}

	log.Info("Sync finished",
		zap.Int("total", report.Summary.Total),
		zap.Int("reused", report.Summary.Reused),
		zap.Int("updated", report.Summary.Updated),
		zap.Int("added", report.Summary.Added),
		zap.Int("translation_failures", report.Summary.TranslationFailures),
		zap.Duration("duration", report.Duration))
	p.PrintSummary(report)

	return report, nil
}

func (p *Processor) run(ctx context.Context, report *Report, log *zap.Logger) error {
	log.Info("Reading snapshot", zap.String("source", p.cfg.Source.Location()))
	rows, err := source.Load(ctx, p.cfg.Source, p.httpClient)
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}

	prior, err := p.store.Load()
	if err != nil {
		return fmt.Errorf("failed to read previous database: %w", err)
	}
	priorIndex := fooddb.Index(prior)
	log.Info("Loaded previous database", zap.Int("records", len(priorIndex)), zap.Int("rows", len(rows)))

	rec := reconcile.New(p.translator, reconcile.Options{
		SourceLang: p.cfg.Translation.SourceLang,
		TargetLang: p.cfg.Translation.TargetLang,
	}, log)
	res, err := rec.Reconcile(ctx, priorIndex, rows)
	if err != nil {
		return err
	}
	report.Summary = res.Summary

	if p.cfg.DryRun {
		log.Info("Dry run, nothing written")
		return nil
	}

	backedUp, err := p.store.Save(res.Records)
	if err != nil {
		return fmt.Errorf("failed to save database: %w", err)
	}
	report.BackedUp = backedUp
	if backedUp {
		log.Info("Backed up previous database", zap.String("path", p.cfg.Database.Backup))
	}

	if path := p.cfg.Export.SQLite; path != "" {
		if err := export.WriteSQLite(ctx, path, res.Records); err != nil {
			log.Warn("SQLite export failed", zap.String("path", path), zap.Error(err))
		} else {
			report.Exported = path
		}
	}

	if p.publisher != nil {
		published, err := p.publisher.Publish(ctx, p.cfg.Database.Output, p.cfg.Database.Backup)
		if err != nil {
			log.Warn("Publish failed", zap.Error(err))
		}
		report.Published = published
	}

	return nil
}

// PrintSummary prints the counts of a run
func (p *Processor) PrintSummary(r *Report) {
	if p.out == nil {
		return
	}

	s := r.Summary
	fmt.Fprintf(p.out, "\n=== Sync Summary ===\n")
	if r.DryRun {
		fmt.Fprintf(p.out, "Dry run: nothing written\n")
	} else {
		fmt.Fprintf(p.out, "Written: %s\n", r.Output)
		if r.BackedUp {
			fmt.Fprintf(p.out, "Backup: %s\n", r.Backup)
		}
	}
	fmt.Fprintf(p.out, "Unchanged (reused translation): %d\n", s.Reused)
	fmt.Fprintf(p.out, "Updated or newly translated: %d\n", s.Updated+s.Added)
	fmt.Fprintf(p.out, "  new: %d, updated: %d, backfilled: %d\n", s.Added, s.Updated, s.Backfilled)
	fmt.Fprintf(p.out, "Translation calls: %d\n", s.TranslationCalls)
	if s.TranslationFailures > 0 {
		fmt.Fprintf(p.out, "Translation failures (kept original): %d\n", s.TranslationFailures)
	}
	if s.SkippedRows > 0 || s.Duplicates > 0 {
		fmt.Fprintf(p.out, "Skipped rows: %d, duplicates: %d\n", s.SkippedRows, s.Duplicates)
	}
	fmt.Fprintf(p.out, "Dropped: %d\n", s.Dropped)
	fmt.Fprintf(p.out, "Total records: %d\n", s.Total)
	if r.Exported != "" {
		fmt.Fprintf(p.out, "SQLite export: %s\n", r.Exported)
	}
	for _, name := range r.Published {
		fmt.Fprintf(p.out, "Published: %s\n", name)
	}
	fmt.Fprintf(p.out, "====================\n")
}
