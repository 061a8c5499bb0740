package artifact

import (
	"context"
	"log/slog"
	"path"
	"sync"
	"time"

	"github.com/MikeSquared-Agency/loom/internal/history"
	"github.com/MikeSquared-Agency/loom/internal/timeline"
)

const sheetLookupTimeout = 30 * time.Second

// Coordinator resolves image response items into image messages. The fetcher
// does the actual retrieval; the optional sheet lookup is triggered as a
// fire-and-forget side effect after each resolution.
type Coordinator struct {
	fetcher   Fetcher
	sheets    SheetLookup
	contextID string
	logger    *slog.Logger
}

func NewCoordinator(fetcher Fetcher, sheets SheetLookup, contextID string, logger *slog.Logger) *Coordinator {
	return &Coordinator{
		fetcher:   fetcher,
		sheets:    sheets,
		contextID: contextID,
		logger:    logger,
	}
}

// Batch carries the per-step sub-index counters for one reconciliation pass.
// Counters start at 1 and increment per image resolved for that step, in
// completion order.
type Batch struct {
	c  *Coordinator
	mu sync.Mutex
	// keyed by step message id
	subIndex map[string]int
}

func (c *Coordinator) NewBatch() *Batch {
	return &Batch{c: c, subIndex: make(map[string]int)}
}

// Resolve fetches the artifact behind one image item and builds its image
// message. Returns (nil, nil) when the store has no data for the path; that
// image is skipped, not an error. A transport failure is returned as a
// *FetchError.
func (b *Batch) Resolve(ctx context.Context, step history.HistoryStep, item history.ResponseItem) (*timeline.Message, error) {
	art, err := b.c.fetcher.FetchArtifact(ctx, step.SessionID, b.c.contextID, item.Path)
	if err != nil {
		return nil, &FetchError{SessionID: step.SessionID, Path: item.Path, Err: err}
	}

	subIndex := b.take(step.MessageID)
	b.c.lookupSheet(step, subIndex)

	if art == nil {
		return nil, nil
	}

	return &timeline.Message{
		SubIndex:        subIndex,
		SentBy:          timeline.SentByBot,
		Kind:            timeline.KindImage,
		MessageID:       step.MessageID,
		SessionID:       step.SessionID,
		ArtifactHandle:  art.Ref + "#" + path.Base(item.Path),
		Description:     item.Description,
		ResponseComment: step.ResponseComment,
		ResponseRank:    step.ResponseRank,
		SourceComment:   step.SourceComment,
		SourceRank:      step.SourceRank,
		UpdatedAt:       step.UpdatedAt,
	}, nil
}

// take returns the next sub-index for the step, starting at 1.
func (b *Batch) take(messageID string) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subIndex[messageID]++
	return b.subIndex[messageID]
}

// lookupSheet fires the companion data-sheet lookup in the background. Its
// result is not part of the engine's guaranteed output; failures are logged
// and dropped.
func (c *Coordinator) lookupSheet(step history.HistoryStep, subIndex int) {
	if c.sheets == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), sheetLookupTimeout)
		defer cancel()
		if _, err := c.sheets.FetchDataSheet(ctx, step, subIndex); err != nil {
			c.logger.Warn("data-sheet lookup failed",
				"session_id", step.SessionID,
				"message_id", step.MessageID,
				"index_sub", subIndex,
				"error", err,
			)
		}
	}()
}
