package reconcile

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"

	"github.com/MikeSquared-Agency/loom/internal/artifact"
	"github.com/MikeSquared-Agency/loom/internal/history"
	"github.com/MikeSquared-Agency/loom/internal/metrics"
	"github.com/MikeSquared-Agency/loom/internal/timeline"
)

// Notifier receives the engine's outbound signals. TimelineChanged fires
// after every successful append, BatchSettled exactly once per batch,
// CitationChanged on every overwrite of the citation slot.
type Notifier interface {
	TimelineChanged(sessionID string, snapshot []timeline.Message)
	BatchSettled(sessionID string, result BatchResult)
	CitationChanged(sessionID string, citation history.SourceRef)
}

// BatchResult summarizes one settled reconciliation batch.
type BatchResult struct {
	BatchID        uuid.UUID `json:"batch_id"`
	SessionID      string    `json:"session_id"`
	Steps          int       `json:"steps"`
	TextAppended   int       `json:"text_appended"`
	TextDropped    int       `json:"text_dropped"`
	ImagesAppended int       `json:"images_appended"`
	FetchesStarted int       `json:"fetches_started"`
	FetchFailures  int       `json:"fetch_failures"`
	FileProcessing bool      `json:"file_processing"`
}

// Driver folds history batches for one session into the session's timeline.
// It is the timeline's single writer; all per-batch state (throttle counter,
// sub-index counters) lives in the Reconcile invocation, so re-running the
// same batch, or running two batches concurrently, is safe: the dedup key is
// the safety net against double insertion.
type Driver struct {
	sessionID string
	store     *timeline.Store
	coord     *artifact.Coordinator
	notifier  Notifier
	logger    *slog.Logger

	mu       sync.Mutex
	citation *history.SourceRef
}

func NewDriver(sessionID string, coord *artifact.Coordinator, notifier Notifier, logger *slog.Logger) *Driver {
	d := &Driver{
		sessionID: sessionID,
		store:     timeline.NewStore(),
		coord:     coord,
		notifier:  notifier,
		logger:    logger,
	}
	d.store.OnChange(func(snapshot []timeline.Message) {
		d.notifier.TimelineChanged(d.sessionID, snapshot)
	})
	return d
}

// Reconcile folds one ordered history batch into the timeline. Steps are
// normalized and their text messages appended strictly in input order; image
// fetches fan out concurrently and append in completion order, which may
// interleave arbitrarily with step order. Reconcile returns only once every
// started fetch has resolved or failed, after which the settled notification
// has fired exactly once.
func (d *Driver) Reconcile(ctx context.Context, steps []history.HistoryStep) (*BatchResult, error) {
	res := &BatchResult{
		BatchID:   uuid.New(),
		SessionID: d.sessionID,
		Steps:     len(steps),
	}
	if len(steps) == 0 {
		return res, nil
	}

	// Per-batch throttle: text messages are appended only while the count
	// of processed text items stays within the number of steps. The cap's
	// units are odd but deliberate; see DESIGN.md.
	limit := len(steps)
	processed := 0

	fetchBatch := d.coord.NewBatch()
	var wg sync.WaitGroup
	var imagesAppended, fetchFailures atomic.Int64

	for i, step := range steps {
		norm, err := history.Normalize(step, i)
		if err != nil {
			var malformed *history.MalformedStepError
			if errors.As(err, &malformed) {
				d.logger.Warn("skipping malformed history step",
					"session_id", d.sessionID,
					"step", malformed.Index,
					"reason", malformed.Reason,
				)
				continue
			}
			return nil, err
		}

		if norm.UserMessage != nil {
			d.store.Append(*norm.UserMessage)
		}

		for _, m := range norm.TextMessages {
			processed++
			if processed > limit {
				res.TextDropped++
				metrics.TextDropped.Inc()
				continue
			}
			if d.store.Append(m) {
				res.TextAppended++
			}
		}

		if norm.FileProcessing {
			res.FileProcessing = true
		}
		if norm.Citation != nil {
			d.setCitation(*norm.Citation)
		}

		for _, item := range norm.Images {
			res.FetchesStarted++
			wg.Add(1)
			go func(step history.HistoryStep, item history.ResponseItem) {
				defer wg.Done()
				msg, err := fetchBatch.Resolve(ctx, step, item)
				if err != nil {
					fetchFailures.Add(1)
					metrics.FetchFailures.Inc()
					d.logger.Error("artifact fetch failed",
						"session_id", step.SessionID,
						"message_id", step.MessageID,
						"path", item.Path,
						"error", err,
					)
					return
				}
				if msg == nil {
					return
				}
				if d.store.Append(*msg) {
					imagesAppended.Add(1)
				}
			}(step, item)
		}
	}

	// Barrier: the batch settles only once every started fetch has
	// terminated, success or failure.
	wg.Wait()

	res.ImagesAppended = int(imagesAppended.Load())
	res.FetchFailures = int(fetchFailures.Load())

	metrics.BatchesSettled.Inc()
	d.notifier.BatchSettled(d.sessionID, *res)
	d.logger.Info("batch settled",
		"session_id", d.sessionID,
		"batch_id", res.BatchID,
		"steps", res.Steps,
		"text_appended", res.TextAppended,
		"text_dropped", res.TextDropped,
		"images_appended", res.ImagesAppended,
		"fetch_failures", res.FetchFailures,
	)
	return res, nil
}

// Timeline returns a snapshot of the session's timeline in display order.
func (d *Driver) Timeline() []timeline.Message {
	return d.store.Snapshot()
}

// Citation returns the current value of the citation slot, or nil.
func (d *Driver) Citation() *history.SourceRef {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.citation == nil {
		return nil
	}
	c := *d.citation
	return &c
}

// setCitation overwrites the shared citation slot, last write wins.
func (d *Driver) setCitation(src history.SourceRef) {
	d.mu.Lock()
	d.citation = &src
	d.mu.Unlock()
	d.notifier.CitationChanged(d.sessionID, src)
}
