package hermes

import (
	"log/slog"

	"github.com/MikeSquared-Agency/loom/internal/history"
	"github.com/MikeSquared-Agency/loom/internal/reconcile"
	"github.com/MikeSquared-Agency/loom/internal/timeline"
)

type publisher interface {
	Publish(subject string, data any) error
}

// Sink publishes the reconciliation engine's outbound notifications onto the
// bus. Publish failures are advisory: they are logged and never propagate
// back into the engine.
type Sink struct {
	client publisher
	logger *slog.Logger
}

func NewSink(client *Client, logger *slog.Logger) *Sink {
	return &Sink{client: client, logger: logger}
}

func (s *Sink) TimelineChanged(sessionID string, snapshot []timeline.Message) {
	evt := TimelineChangedEvent{
		SessionID: sessionID,
		Length:    len(snapshot),
		Messages:  snapshot,
	}
	if err := s.client.Publish(SubjectTimelineChanged, evt); err != nil {
		s.logger.Warn("failed to publish timeline change", "session_id", sessionID, "error", err)
	}
}

func (s *Sink) BatchSettled(sessionID string, result reconcile.BatchResult) {
	// Session id as the final subject token, so consumers can filter with a
	// plain NATS subscription instead of inspecting payloads.
	if err := s.client.Publish(SubjectBatchSettled+"."+sessionID, result); err != nil {
		s.logger.Warn("failed to publish batch settlement",
			"session_id", sessionID,
			"batch_id", result.BatchID,
			"error", err,
		)
	}
}

func (s *Sink) CitationChanged(sessionID string, citation history.SourceRef) {
	evt := CitationChangedEvent{
		SessionID:  sessionID,
		SourcePath: citation.SourcePath,
		PageNumber: citation.PageNumber,
		PageLabel:  citation.PageLabel,
		Text:       citation.Text,
		Content:    citation.Content,
	}
	if err := s.client.Publish(SubjectCitationChanged, evt); err != nil {
		s.logger.Warn("failed to publish citation change", "session_id", sessionID, "error", err)
	}
}
