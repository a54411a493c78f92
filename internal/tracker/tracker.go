package tracker

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"FareSentinel/internal/collector"
	"FareSentinel/internal/model"
	"FareSentinel/internal/notifier"
	"FareSentinel/internal/recorder"
	"FareSentinel/internal/snapshot"
	"FareSentinel/internal/state"
)

// ErrNoData is returned when every query of a run failed. The stored
// snapshot is left untouched so the next run diffs against real data.
var ErrNoData = errors.New("no offers collected")

// Result is the outcome of one run.
type Result struct {
	RunID    string
	Set      *model.SelectionSet
	Snapshot snapshot.Snapshot
	Previous *snapshot.Snapshot
	Diff     []snapshot.DiffEntry
	Report   string
	Notified bool
}

// Tracker runs one collect, diff and notify pass at a time.
type Tracker struct {
	Collector *collector.Collector
	Store     state.Store
	Notifier  notifier.Notifier
	Recorder  recorder.Recorder
	Report    notifier.ReportOptions
	Retries   int
	Tracer    trace.Tracer

	now func() time.Time

	mu   sync.Mutex
	last *snapshot.Snapshot
}

// New creates a Tracker. A nil store, notifier or recorder falls back to
// its no-op implementation.
func New(col *collector.Collector, store state.Store, n notifier.Notifier, rec recorder.Recorder, report notifier.ReportOptions) *Tracker {
	if store == nil {
		store = state.NewNoopStore()
	}
	if n == nil {
		n = notifier.LogNotifier{}
	}
	if rec == nil {
		rec = recorder.NewNoopRecorder()
	}
	return &Tracker{
		Collector: col,
		Store:     store,
		Notifier:  n,
		Recorder:  rec,
		Report:    report,
		Retries:   3,
		Tracer:    noop.NewTracerProvider().Tracer("tracker"),
		now:       time.Now,
	}
}

// Run performs one full pass. Notification and recording failures are
// logged; a failure to save the new snapshot is returned with the result.
func (t *Tracker) Run(ctx context.Context) (*Result, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	started := t.now()
	res := &Result{RunID: uuid.NewString()}
	ctx, span := t.Tracer.Start(ctx, "tracker.run", trace.WithAttributes(attribute.String("run_id", res.RunID)))
	defer span.End()
	if sc := span.SpanContext(); sc.HasTraceID() {
		log.Printf("[INFO] run %s started (trace %s)", res.RunID, sc.TraceID())
	} else {
		log.Printf("[INFO] run %s started", res.RunID)
	}

	prev, err := t.Store.Load(ctx)
	if err != nil {
		log.Printf("[WARN] load previous state from %s, treating as first run: %v", t.Store.Name(), err)
		prev = nil
	}
	res.Previous = prev

	plan := t.Collector.Trip.Plan()
	res.Set = t.Collector.Collect(ctx, plan)
	if len(plan) > 0 && len(res.Set.Errors) == len(plan) {
		span.SetStatus(codes.Error, ErrNoData.Error())
		return res, fmt.Errorf("run %s: %w", res.RunID, ErrNoData)
	}

	res.Snapshot = snapshot.Build(res.Set)
	res.Diff = snapshot.Diff(res.Snapshot, prev)

	opts := t.Report
	opts.Now = started
	res.Report = notifier.FormatReport(res.Set, res.Diff, opts)

	if err := notifier.SendWithRetry(ctx, t.Notifier, res.Report, t.Retries); err != nil {
		log.Printf("[ERROR] send report: %v", err)
		span.RecordError(err)
	} else {
		res.Notified = true
	}

	if err := t.Recorder.RecordRun(&recorder.RunRecord{
		RunID:     res.RunID,
		StartedAt: started,
		Trip:      res.Set.Trip,
		Snapshot:  res.Snapshot,
		Diff:      res.Diff,
		Offers:    recorder.OfferRows(res.Set),
		Errors:    len(res.Set.Errors),
		Notified:  res.Notified,
	}); err != nil {
		log.Printf("[ERROR] record run: %v", err)
	}

	if err := t.Store.Save(ctx, res.Snapshot); err != nil {
		span.SetStatus(codes.Error, "save state")
		return res, fmt.Errorf("save state to %s: %w", t.Store.Name(), err)
	}
	snap := res.Snapshot
	t.last = &snap

	span.SetAttributes(
		attribute.Int("metrics", res.Snapshot.Len()),
		attribute.Int("changes", changes(res.Diff)),
		attribute.Int("query_errors", len(res.Set.Errors)),
	)
	log.Printf("[INFO] run %s done in %v: %d metrics, %d changes, %d query errors",
		res.RunID, t.now().Sub(started).Round(time.Millisecond), res.Snapshot.Len(), changes(res.Diff), len(res.Set.Errors))
	return res, nil
}

// Last returns the snapshot of the latest run, loading it from the store
// if this process has not run yet.
func (t *Tracker) Last(ctx context.Context) (*snapshot.Snapshot, error) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.last != nil {
		return t.last, nil
	}
	return t.Store.Load(ctx)
}

func changes(diff []snapshot.DiffEntry) int {
	n := 0
	for _, e := range diff {
		if !e.IsSentinel() {
			n++
		}
	}
	return n
}
