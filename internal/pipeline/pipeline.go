// Package pipeline drives a refine run: it pulls batches from the loader,
// scores and filters them, and appends the survivors to the destination.
//
// Processing is strictly sequential. Only one batch is held in memory at a
// time, so memory use is bounded by the batch size whatever the size of the
// source. Any failure aborts the run; output already written stays on disk.
package pipeline

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/bimmerbailey/refinery/internal/analyzer"
	"github.com/bimmerbailey/refinery/internal/config"
	"github.com/bimmerbailey/refinery/internal/filter"
	"github.com/bimmerbailey/refinery/internal/loader"
	"github.com/bimmerbailey/refinery/internal/output"
	"github.com/google/uuid"
)

// CompactThreshold is the largest first batch (before filtering) for which
// annotated output is rendered as a grid table instead of CSV rows.
const CompactThreshold = 5000

// BatchReport describes one processed batch.
type BatchReport struct {
	Index    int
	Original int
	Retained int
	// Records holds the retained records when metadata is enabled.
	Records []config.Record
}

// Summary reports the totals of a finished run.
type Summary struct {
	RunID    string        `json:"run_id"`
	Read     int           `json:"read"`
	Retained int           `json:"retained"`
	Batches  int           `json:"batches"`
	Elapsed  time.Duration `json:"elapsed"`
	Mode     string        `json:"mode"`
}

// Pipeline runs refine jobs with a fixed configuration.
type Pipeline struct {
	cfg      config.RefineConfig
	logger   *slog.Logger
	progress func(BatchReport)
	now      func() time.Time
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithProgress registers a callback invoked after every batch.
func WithProgress(fn func(BatchReport)) Option {
	return func(p *Pipeline) {
		p.progress = fn
	}
}

// New creates a Pipeline after validating cfg.
func New(cfg config.RefineConfig, opts ...Option) (*Pipeline, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if _, err := loader.LookupEncoding(cfg.Encoding); err != nil {
		return nil, err
	}

	p := &Pipeline{
		cfg:    cfg,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p, nil
}

// run holds the state of a single run. mode is resolved once, on the first
// batch, and never changes afterwards.
type run struct {
	id       string
	logger   *slog.Logger
	writer   *output.RecordWriter
	mode     *output.Mode
	wrote    bool
	read     int
	retained int
	batches  int
}

// Run refines source into the file at dest. The source is opened before
// dest is touched, so a missing source leaves dest untouched.
func (p *Pipeline) Run(source, dest string) (Summary, error) {
	l, err := loader.Open(source, p.cfg.BatchSize, p.cfg.Encoding)
	if err != nil {
		return Summary{}, err
	}
	defer l.Close()

	f, err := os.Create(dest)
	if err != nil {
		return Summary{}, fmt.Errorf("%w: creating output: %v", loader.ErrIOFailure, err)
	}

	summary, runErr := p.process(l, f)
	if err := f.Close(); err != nil && runErr == nil {
		runErr = fmt.Errorf("%w: closing output: %v", loader.ErrIOFailure, err)
	}
	return summary, runErr
}

// batchSource is the pull side of the loader.
type batchSource interface {
	Next() (loader.Batch, error)
}

func (p *Pipeline) process(src batchSource, w io.Writer) (Summary, error) {
	start := p.now()
	r := &run{id: uuid.NewString()}
	r.logger = p.logger.With("run_id", r.id)
	r.logger.Info("refine started",
		"batch_size", p.cfg.BatchSize,
		"min_entropy", p.cfg.MinEntropy,
		"compliant", p.cfg.Compliant,
		"metadata", p.cfg.Metadata,
		"markdown", p.cfg.Markdown,
	)

	summarize := func() Summary {
		s := Summary{
			RunID:    r.id,
			Read:     r.read,
			Retained: r.retained,
			Batches:  r.batches,
			Elapsed:  p.now().Sub(start),
			Mode:     output.ModeRaw.String(),
		}
		if r.mode != nil {
			s.Mode = r.mode.String()
		}
		return s
	}

	for {
		batch, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			r.logger.Error("loading failed", "batch", r.batches, "error", err)
			return summarize(), err
		}
		if err := p.step(r, batch, w); err != nil {
			r.logger.Error("batch failed", "batch", r.batches, "error", err)
			return summarize(), err
		}
	}

	s := summarize()
	r.logger.Info("refine finished",
		"read", s.Read,
		"retained", s.Retained,
		"batches", s.Batches,
		"mode", s.Mode,
		"elapsed", s.Elapsed,
	)
	return s, nil
}

// step scores, filters, annotates and writes a single batch.
func (p *Pipeline) step(r *run, batch loader.Batch, w io.Writer) error {
	if len(batch) == 0 {
		return nil
	}

	index := r.batches
	original := len(batch)
	r.batches++
	r.read += original

	if r.mode == nil {
		mode := p.resolveMode(original)
		r.mode = &mode
		r.writer = output.NewRecordWriter(w, mode)
		r.logger.Debug("output mode resolved", "mode", mode.String(), "first_batch", original)
	}

	records := []config.Record(batch)
	analyzer.EntropyAll(records)

	if p.cfg.MinEntropy > 0 {
		records = filter.MinEntropy(records, p.cfg.MinEntropy)
		if len(records) == 0 {
			p.report(r, index, original, nil)
			return nil
		}
	}

	if p.cfg.Compliant {
		records = filter.Compliant(records)
		if len(records) == 0 {
			p.report(r, index, original, nil)
			return nil
		}
	}

	if p.cfg.Metadata {
		for i := range records {
			records[i].Classes = filter.ClassesOf(records[i].Text)
			records[i].Strength = analyzer.Classify(records[i].Entropy)
			records[i].Annotated = true
		}
	}

	if err := r.writer.WriteBatch(records, !r.wrote); err != nil {
		return fmt.Errorf("%w: writing batch %d: %v", loader.ErrIOFailure, index, err)
	}
	r.wrote = true

	r.retained += len(records)
	p.report(r, index, original, records)
	return nil
}

// resolveMode picks the rendering mode from the configuration and the size
// of the first batch.
func (p *Pipeline) resolveMode(firstBatch int) output.Mode {
	switch {
	case !p.cfg.Metadata:
		return output.ModeRaw
	case p.cfg.Markdown:
		return output.ModeMarkdown
	case firstBatch <= CompactThreshold:
		return output.ModeGrid
	default:
		return output.ModeCSV
	}
}

func (p *Pipeline) report(r *run, index, original int, records []config.Record) {
	r.logger.Debug("batch processed", "batch", index, "retained", len(records), "original", original)
	if p.progress == nil {
		return
	}
	rep := BatchReport{Index: index, Original: original, Retained: len(records)}
	if p.cfg.Metadata {
		rep.Records = records
	}
	p.progress(rep)
}

// Kind names the category of a run error for reporting.
func Kind(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, loader.ErrSourceNotFound):
		return "SourceNotFound"
	case errors.Is(err, loader.ErrIOFailure):
		return "IOFailure"
	default:
		return "Failure"
	}
}
