// Package audit orchestrates a full consistency run: read, build, detect,
// aggregate.
package audit

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/divij-pawar/relcheck/api/schemas"
	"github.com/divij-pawar/relcheck/internal/analysis/broader"
	"github.com/divij-pawar/relcheck/internal/analysis/hierarchy"
	"github.com/divij-pawar/relcheck/internal/config"
	"github.com/divij-pawar/relcheck/internal/graph"
	"github.com/divij-pawar/relcheck/internal/relation"
)

// Reporter persists a completed envelope as report artifacts.
type Reporter interface {
	Write(envelope *schemas.ResultEnvelope) ([]string, error)
}

// Sink persists a completed envelope to external storage.
type Sink interface {
	PersistRun(ctx context.Context, envelope *schemas.ResultEnvelope) error
}

// Options selects what a single run does.
type Options struct {
	Input string
	Mode  schemas.CheckMode
}

// Runner owns a run end to end. The reporter and sink collaborators are
// optional; a nil value skips that output.
type Runner struct {
	cfg      *config.Config
	log      *zap.Logger
	reporter Reporter
	sink     Sink
}

// NewRunner creates a runner.
func NewRunner(cfg *config.Config, logger *zap.Logger, reporter Reporter, sink Sink) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{
		cfg:      cfg,
		log:      logger.With(zap.String("component", "audit")),
		reporter: reporter,
		sink:     sink,
	}
}

// Run executes the pipeline: stream the input into the two graphs, freeze
// them, run the selected detectors (concurrently in "both" mode, as
// read-only passes over independent graphs) and assemble the envelope.
func (r *Runner) Run(ctx context.Context, opts Options) (*schemas.ResultEnvelope, error) {
	start := time.Now()
	logger := r.log.With(zap.String("mode", string(opts.Mode)))
	logger.Info("Starting relationship parsing", zap.String("input", opts.Input))

	builder := graph.NewBuilder(r.log)
	loader := relation.NewLoader(r.log, r.cfg.Audit.ProgressInterval, r.cfg.Audit.MaxLineBytes)
	summary, err := loader.Load(ctx, opts.Input, builder)
	if err != nil {
		return nil, err
	}
	snap := builder.Freeze()

	envelope := &schemas.ResultEnvelope{
		RunID:      uuid.NewString(),
		Mode:       opts.Mode,
		Input:      opts.Input,
		StartedAt:  start.UTC(),
		Duplicates: snap.Duplicates,
		Reflexives: snap.Reflexives,
	}

	stats := &envelope.Stats
	stats.Add("Total Child Links", snap.Hierarchy.EdgeCount())
	stats.Add("Total Broader Links", snap.Broader.EdgeCount())
	stats.Add("Unique Relationship Types", len(snap.RelationTypes))
	stats.Add("Reflexive Links Found", len(snap.Reflexives))
	stats.Add("Duplicate Links", len(snap.Duplicates))

	var (
		cycleElapsed   time.Duration
		broaderElapsed time.Duration
	)

	g, gctx := errgroup.WithContext(ctx)
	if opts.Mode.IncludesHierarchy() {
		g.Go(func() error {
			logger.Info("Checking for parent-child loops")
			t0 := time.Now()
			cycles, err := hierarchy.NewCycleDetector(snap, r.log).Run(gctx)
			if err != nil {
				return err
			}
			cycleElapsed = time.Since(t0)
			envelope.Cycles = cycles
			return nil
		})
	}
	if opts.Mode.IncludesBroader() {
		g.Go(func() error {
			logger.Info("Checking broader-than inconsistencies")
			t0 := time.Now()
			contradictions, err := broader.NewContradictionDetector(snap, r.cfg.Engine.WorkerConcurrency, r.log).Run(gctx)
			if err != nil {
				return err
			}
			broaderElapsed = time.Since(t0)
			envelope.Contradictions = contradictions
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	// Detector metrics keep a fixed order regardless of which goroutine
	// finished first, and only cover phases that ran.
	if opts.Mode.IncludesHierarchy() {
		stats.Add("Parent-Child Cycles Found", len(envelope.Cycles))
		stats.AddSeconds("Cycle Detection Time (s)", cycleElapsed)
	}
	if opts.Mode.IncludesBroader() {
		stats.Add("Broader-Than Violations Found", len(envelope.Contradictions))
		stats.AddSeconds("Broader Analysis Time (s)", broaderElapsed)
	}
	stats.AddSeconds("Total Run Time (s)", time.Since(start))

	logger.Info("Analysis complete",
		zap.String("run_id", envelope.RunID),
		zap.Int("lines", summary.Lines),
		zap.Int("skipped_lines", summary.Skipped),
		zap.Int("cycles", len(envelope.Cycles)),
		zap.Int("contradictions", len(envelope.Contradictions)),
	)

	if r.reporter != nil {
		written, err := r.reporter.Write(envelope)
		if err != nil {
			return nil, fmt.Errorf("failed to write reports: %w", err)
		}
		logger.Info("Reports saved", zap.Strings("files", written))
	}

	if r.sink != nil {
		if err := r.sink.PersistRun(ctx, envelope); err != nil {
			return nil, fmt.Errorf("failed to persist run: %w", err)
		}
		logger.Info("Run persisted", zap.String("run_id", envelope.RunID))
	}

	return envelope, nil
}
