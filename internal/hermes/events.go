package hermes

import (
	"github.com/MikeSquared-Agency/loom/internal/history"
	"github.com/MikeSquared-Agency/loom/internal/timeline"
)

// Bus subjects. Chronicle announces session-history updates; loom reconciles
// and publishes the resulting timeline signals.
const (
	SubjectSessionUpdated  = "swarm.chronicle.session.updated"
	SubjectTimelineChanged = "swarm.loom.timeline.changed"
	SubjectBatchSettled    = "swarm.loom.batch.settled" // session id appended as final token
	SubjectCitationChanged = "swarm.loom.citation.changed"
)

// SessionUpdatedEvent triggers a reconciliation pass. When Steps is empty the
// batch is pulled from the history store instead.
type SessionUpdatedEvent struct {
	SessionID string                `json:"session_id"`
	Steps     []history.HistoryStep `json:"steps,omitempty"`
}

// TimelineChangedEvent carries a full timeline snapshot after an append.
type TimelineChangedEvent struct {
	SessionID string             `json:"session_id"`
	Length    int                `json:"length"`
	Messages  []timeline.Message `json:"messages"`
}

// CitationChangedEvent carries the new value of a session's citation slot.
type CitationChangedEvent struct {
	SessionID  string `json:"session_id"`
	SourcePath string `json:"source_path"`
	PageNumber string `json:"page_number"`
	PageLabel  string `json:"page_label"`
	Text       string `json:"text"`
	Content    string `json:"content"`
}
