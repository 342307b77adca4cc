package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/eshaffer321/tuition-reconciler/internal/adapters/ocr"
	"github.com/eshaffer321/tuition-reconciler/internal/domain/reconcile"
	"github.com/eshaffer321/tuition-reconciler/internal/infrastructure/storage"
)

var (
	// ErrNoExtractor is returned for image input when OCR is not configured.
	ErrNoExtractor = errors.New("no ocr provider configured")

	// ErrNotConfirmable is returned when confirming an outcome that is not a match.
	ErrNotConfirmable = errors.New("only match outcomes can be confirmed")

	// ErrEmptyBatch is returned for a batch without texts.
	ErrEmptyBatch = errors.New("batch contains no texts")

	// ErrExtraction wraps failures of the OCR backend.
	ErrExtraction = errors.New("text extraction failed")
)

// Options tune the service.
type Options struct {
	BatchConcurrency int  // parallel runs in ReconcileBatch
	UnpaidOnly       bool // exclude students already paid this month
}

// Request is one reconciliation to perform.
type Request struct {
	Source string // storage.SourceText, SourceImage or SourceBatch
	Text   string
	DryRun bool // run the engine without persisting
}

// BatchItem is the result of one text in a batch.
type BatchItem struct {
	Run *storage.Run
	Err error
}

// ReconcileService runs the engine against roster snapshots and records the
// runs it produces.
type ReconcileService struct {
	engine    *reconcile.Engine
	storage   storage.Repository
	extractor ocr.Extractor
	logger    *slog.Logger
	opts      Options
	now       func() time.Time
}

// NewReconcileService creates a new reconcile service.
// extractor may be nil, in which case image input is rejected.
func NewReconcileService(
	engine *reconcile.Engine,
	store storage.Repository,
	extractor ocr.Extractor,
	logger *slog.Logger,
	opts Options,
) *ReconcileService {
	if logger == nil {
		logger = slog.Default()
	}
	if opts.BatchConcurrency < 1 {
		opts.BatchConcurrency = 1
	}
	return &ReconcileService{
		engine:    engine,
		storage:   store,
		extractor: extractor,
		logger:    logger,
		opts:      opts,
		now:       time.Now,
	}
}

// HasExtractor reports whether image input is supported.
func (s *ReconcileService) HasExtractor() bool {
	return s.extractor != nil
}

// ReconcileText reconciles pasted text and stores the run.
func (s *ReconcileService) ReconcileText(ctx context.Context, text string) (*storage.Run, error) {
	return s.Reconcile(ctx, Request{Source: storage.SourceText, Text: text})
}

// ReconcileImage extracts text from a receipt image, then reconciles it.
// Extraction failures are returned as errors, never as outcomes.
func (s *ReconcileService) ReconcileImage(ctx context.Context, img ocr.Image) (*storage.Run, error) {
	if s.extractor == nil {
		return nil, ErrNoExtractor
	}

	start := s.now()
	res, err := s.extractor.Extract(ctx, img)
	if err != nil {
		return nil, fmt.Errorf("%w for %s: %w", ErrExtraction, img.Name, err)
	}
	s.logger.Debug("text extracted",
		"image", img.Name,
		"structured", res.Record != nil,
		"took", s.now().Sub(start),
	)

	return s.Reconcile(ctx, Request{Source: storage.SourceImage, Text: res.Text()})
}

// ReconcileBatch reconciles independent texts concurrently. Each text is
// matched against its own roster snapshot. A failing item does not abort
// the others; its error is reported in the corresponding BatchItem.
func (s *ReconcileService) ReconcileBatch(ctx context.Context, texts []string) ([]BatchItem, error) {
	if len(texts) == 0 {
		return nil, ErrEmptyBatch
	}

	items := make([]BatchItem, len(texts))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.opts.BatchConcurrency)

	for i, text := range texts {
		i, text := i, text
		g.Go(func() error {
			run, err := s.Reconcile(gctx, Request{Source: storage.SourceBatch, Text: text})
			items[i] = BatchItem{Run: run, Err: err}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("batch reconciliation: %w", err)
	}
	return items, nil
}

// Reconcile loads a roster snapshot, runs the engine and, unless DryRun is
// set, stores the run with its ordered outcomes.
func (s *ReconcileService) Reconcile(ctx context.Context, req Request) (*storage.Run, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	students, err := s.storage.ListStudents(s.rosterFilter())
	if err != nil {
		return nil, fmt.Errorf("failed to load roster: %w", err)
	}
	entries := storage.Entries(students)

	start := s.now()
	outcomes := s.engine.Reconcile(req.Text, entries)
	took := s.now().Sub(start)

	run := &storage.Run{
		ID:         uuid.NewString(),
		Source:     req.Source,
		InputText:  req.Text,
		CreatedAt:  start.UTC(),
		DurationMs: took.Milliseconds(),
		RosterSize: len(entries),
		Outcomes:   make([]*storage.OutcomeRow, len(outcomes)),
	}
	counts := make(map[reconcile.Kind]int)
	for i, o := range outcomes {
		run.Outcomes[i] = &storage.OutcomeRow{Seq: i, Record: o.ToRecord()}
		counts[o.Kind]++
		if o.Kind.IsMatch() {
			run.MatchedCount++
		}
	}

	if !req.DryRun {
		if err := s.storage.SaveRun(run); err != nil {
			return nil, fmt.Errorf("failed to save run: %w", err)
		}
	}

	s.logger.Info("reconciliation complete",
		"run_id", run.ID,
		"source", run.Source,
		"roster", run.RosterSize,
		"outcomes", len(outcomes),
		"matched", run.MatchedCount,
		"unmatched", counts[reconcile.KindUnmatched],
		"anomalies", counts[reconcile.KindParseAnomaly],
		"dry_run", req.DryRun,
		"took", took,
	)

	return run, nil
}

// rosterFilter selects the snapshot: everyone, or only students without a
// PAID payment since the start of the current month.
func (s *ReconcileService) rosterFilter() storage.StudentFilter {
	if !s.opts.UnpaidOnly {
		return storage.StudentFilter{}
	}
	now := s.now()
	return storage.StudentFilter{
		UnpaidSince: time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location()),
	}
}
