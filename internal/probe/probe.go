// Package probe runs the trigger-then-poll integration check: it asks the
// update function to process a window and waits for rows to show up.
package probe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/hourlyprobe/internal/adapters/supabase"
	"github.com/okian/hourlyprobe/internal/domain/model"
	"github.com/okian/hourlyprobe/pkg/logger"
	"github.com/okian/hourlyprobe/pkg/metrics"
	"github.com/okian/hourlyprobe/pkg/poll"
)

// Trigger starts background processing for a payload.
type Trigger interface {
	InvokeFunction(ctx context.Context, name string, payload any) (supabase.TriggerResult, error)
}

// RowReader reads the rows of a table that match a filter.
type RowReader interface {
	SelectRows(ctx context.Context, table string, filter model.RowFilter) ([]model.Row, error)
}

// Result describes a finished run.
type Result struct {
	Outcome  Outcome
	RunID    string
	Window   model.Window
	Trigger  supabase.TriggerResult
	Rows     []model.Row
	Attempts int
	Duration time.Duration
	Err      error
}

// ExitCode is a shortcut for r.Outcome.ExitCode().
func (r Result) ExitCode() int { return r.Outcome.ExitCode() }

// Probe wires a trigger and a reader into one run.
type Probe struct {
	cfg     Config
	trigger Trigger
	reader  RowReader
	log     logger.Logger
	metrics *metrics.Manager
	now     poll.Clock
	sleep   poll.Sleeper
	out     io.Writer
}

// New creates a Probe.
func New(cfg Config, trigger Trigger, reader RowReader, opts ...Option) *Probe {
	p := &Probe{
		cfg:     cfg.withDefaults(),
		trigger: trigger,
		reader:  reader,
		now:     time.Now,
		sleep:   poll.Sleep,
		out:     os.Stdout,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.log == nil {
		p.log = logger.Get()
	}
	if p.metrics == nil {
		p.metrics = metrics.NewManager()
	}
	if p.cfg.RunID != "" {
		p.log = p.log.With(logger.String("run_id", p.cfg.RunID))
	}
	return p
}

// Run triggers processing and polls for the resulting rows. It never
// returns an error; failures are classified in Result.
func (p *Probe) Run(ctx context.Context) Result {
	started := p.now()
	res := p.run(ctx)
	res.RunID = p.cfg.RunID
	res.Duration = p.now().Sub(started)
	p.metrics.RecordRun(res.Outcome.String(), res.Duration, p.now())
	return res
}

func (p *Probe) run(ctx context.Context) Result {
	window := p.cfg.Window
	if window.Start.IsZero() && window.End.IsZero() {
		window = model.LastHours(p.now(), p.cfg.WindowHours)
	}
	res := Result{Window: window}

	payload := model.NewTriggerPayload(window)
	payload.Source = p.cfg.Source
	payload.LocationID = p.cfg.LocationID
	payload.NOAAStationID = p.cfg.StationID

	// Step 1: trigger
	p.log.Info(ctx, "calling edge function",
		logger.String("function", p.cfg.FunctionName),
		logger.String("start", payload.Start),
		logger.String("end", payload.End))

	sent := p.now()
	tr, err := p.trigger.InvokeFunction(ctx, p.cfg.FunctionName, payload)
	if err != nil {
		p.log.Error(ctx, "edge function call failed", logger.Error(err))
		res.Err = fmt.Errorf("invoke %s: %w", p.cfg.FunctionName, err)
		return res
	}
	res.Trigger = tr
	p.metrics.RecordTrigger(tr.StatusCode, p.now().Sub(sent))

	p.log.Info(ctx, "edge function response",
		logger.Int("status", tr.StatusCode),
		logger.Any("body", tr.Body))
	if tr.DecodeErr != nil {
		p.log.Warn(ctx, "edge function response is not JSON; kept as raw text", logger.Error(tr.DecodeErr))
	}

	if !tr.Accepted() {
		p.log.Error(ctx, "edge function did not accept the request",
			logger.Int("status", tr.StatusCode))
		res.Outcome = OutcomeTriggerRejected
		res.Err = fmt.Errorf("%w: HTTP %d: %v", ErrTriggerRejected, tr.StatusCode, tr.Body)
		return res
	}

	// Step 2: poll
	filter := model.RowFilter{
		Window:    window,
		Latitude:  p.cfg.Latitude,
		Longitude: p.cfg.Longitude,
		Limit:     p.cfg.RowLimit,
	}
	p.log.Info(ctx, "polling for upserted rows",
		logger.String("table", p.cfg.Table),
		logger.Duration("budget", p.cfg.PollTimeout),
		logger.Duration("interval", p.cfg.PollInterval))

	rows, attempts, err := p.pollRows(ctx, filter)
	res.Attempts = attempts
	if err != nil {
		p.log.Error(ctx, "polling failed", logger.Error(err), logger.Int("attempts", attempts))
		res.Err = fmt.Errorf("poll %s: %w", p.cfg.Table, err)
		return res
	}

	if len(rows) == 0 {
		p.log.Warn(ctx, "no rows found within timeout; either the background job is still running or the upsert failed",
			logger.String("table", p.cfg.Table), logger.Int("attempts", attempts))
		res.Outcome = OutcomeTimeout
		res.Err = ErrNoRows
		return res
	}

	// Step 3: report
	res.Rows = rows
	res.Outcome = OutcomeSuccess
	p.log.Info(ctx, "found rows",
		logger.String("table", p.cfg.Table),
		logger.Int("rows", len(rows)),
		logger.Int("sample", minInt(len(rows), p.cfg.SampleSize)),
		logger.Int("attempts", attempts))

	if err := writeSample(p.out, rows, p.cfg.SampleSize); err != nil {
		p.log.Warn(ctx, "failed to print sample rows", logger.Error(err))
	}
	if p.cfg.OutputFile != "" {
		if err := saveRowsToFile(p.cfg.OutputFile, rows); err != nil {
			p.log.Warn(ctx, "failed to save rows to file", logger.Error(err))
		} else {
			p.log.Info(ctx, "rows saved to file", logger.String("filename", p.cfg.OutputFile))
		}
	}
	return res
}

// pollRows wraps PollRows with per-read metrics and an attempt hook for
// progress logging.
func (p *Probe) pollRows(ctx context.Context, filter model.RowFilter) ([]model.Row, int, error) {
	fetch := func(ctx context.Context) ([]model.Row, error) {
		begin := p.now()
		rows, err := p.reader.SelectRows(ctx, p.cfg.Table, filter)
		p.metrics.RecordPollAttempt(len(rows), p.now().Sub(begin), err)
		return rows, err
	}

	attempts := 0
	onAttempt := func(n int, elapsed time.Duration, err error) {
		attempts = n
		if err != nil {
			return
		}
		p.log.Debug(ctx, "poll attempt",
			logger.Int("attempt", n),
			logger.Duration("elapsed", elapsed))
	}

	rows, err := PollRows(ctx, fetch,
		poll.WithInterval(p.cfg.PollInterval),
		poll.WithTimeout(p.cfg.PollTimeout),
		poll.WithClock(p.now),
		poll.WithSleeper(p.sleep),
		poll.WithOnAttempt(onAttempt),
	)
	return rows, attempts, err
}

// PollRows repeats fetch until it returns at least one row. Running out of
// budget is not an error: the result is then empty.
func PollRows(ctx context.Context, fetch func(context.Context) ([]model.Row, error), opts ...poll.Option) ([]model.Row, error) {
	rows, err := poll.Until(ctx, fetch, poll.NonEmpty[model.Row], opts...)
	if errors.Is(err, poll.ErrTimeout) {
		return []model.Row{}, nil
	}
	return rows, err
}

// minInt returns the minimum of two integers.
func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
