package processor

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/MikeSquared-Agency/loom/internal/hermes"
	"github.com/MikeSquared-Agency/loom/internal/history"
	"github.com/MikeSquared-Agency/loom/internal/reconcile"
)

const reconcileTimeout = 5 * time.Minute

// HistorySource loads the full ordered history batch for a session.
type HistorySource interface {
	SessionHistory(ctx context.Context, sessionID string) ([]history.HistoryStep, error)
}

// Processor reacts to session-update events on the bus by running a
// reconciliation pass. Event payloads may carry the batch inline; otherwise
// the batch is pulled from the history source.
type Processor struct {
	source  HistorySource
	manager *reconcile.Manager
	logger  *slog.Logger
}

func New(source HistorySource, manager *reconcile.Manager, logger *slog.Logger) *Processor {
	return &Processor{
		source:  source,
		manager: manager,
		logger:  logger,
	}
}

// HandleSessionUpdated is the NATS handler for swarm.chronicle.session.updated.
func (p *Processor) HandleSessionUpdated(subject string, data []byte) {
	var evt hermes.SessionUpdatedEvent
	if err := json.Unmarshal(data, &evt); err != nil {
		p.logger.Error("failed to parse session update event", "error", err)
		return
	}
	if evt.SessionID == "" {
		p.logger.Error("session update event missing session_id")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), reconcileTimeout)
	defer cancel()

	steps := evt.Steps
	if len(steps) == 0 {
		var err error
		steps, err = p.source.SessionHistory(ctx, evt.SessionID)
		if err != nil {
			p.logger.Error("failed to load session history", "session_id", evt.SessionID, "error", err)
			return
		}
	}

	p.logger.Info("reconciling session", "session_id", evt.SessionID, "steps", len(steps))

	result, err := p.manager.Reconcile(ctx, evt.SessionID, steps)
	if err != nil {
		p.logger.Error("reconciliation failed", "session_id", evt.SessionID, "error", err)
		return
	}

	p.logger.Info("reconciliation settled",
		"session_id", evt.SessionID,
		"batch_id", result.BatchID,
		"text_appended", result.TextAppended,
		"images_appended", result.ImagesAppended,
		"fetch_failures", result.FetchFailures,
	)
}
