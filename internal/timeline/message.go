package timeline

// SentBy identifies which side of the conversation produced a message.
type SentBy string

const (
	SentByUser SentBy = "user"
	SentByBot  SentBy = "bot"
)

// Kind identifies the payload shape of a message.
type Kind string

const (
	KindText  Kind = "text"
	KindImage Kind = "image"
)

// Message is the canonical, flattened, display-ready record held by the timeline.
type Message struct {
	SequenceIndex int    `json:"index"`
	SubIndex      int    `json:"index_sub,omitempty"` // per-step image counter, 1-based
	SentBy        SentBy `json:"sent_by"`
	Kind          Kind   `json:"kind"`
	MessageID     string `json:"message_id"`
	SessionID     string `json:"session_id"`
	RowID         string `json:"row_id,omitempty"`

	// Text payload.
	Role       string `json:"role,omitempty"`
	Text       string `json:"text,omitempty"`
	System     string `json:"system,omitempty"`
	Filename   string `json:"filename,omitempty"`
	PageLabel  string `json:"page_label,omitempty"`
	SourceText string `json:"source_text,omitempty"`

	// Image payload.
	ArtifactHandle string `json:"artifact_handle,omitempty"`
	Description    string `json:"description,omitempty"`

	// Shared provenance, copied verbatim from the originating history step.
	ResponseComment string `json:"response_comment,omitempty"`
	ResponseRank    int    `json:"response_rank,omitempty"`
	SourceComment   string `json:"source_comment,omitempty"`
	SourceRank      int    `json:"source_rank,omitempty"`
	UpdatedAt       string `json:"updated_at,omitempty"`
}

// Key is the identity tuple used for deduplication. It deliberately ignores
// kind, sequence index and payload: two records with the same key are the
// same logical message and only the first one inserted survives.
type Key struct {
	SentBy    SentBy
	MessageID string
	SessionID string
}

// Key returns the dedup identity of the message.
func (m Message) Key() Key {
	return Key{SentBy: m.SentBy, MessageID: m.MessageID, SessionID: m.SessionID}
}
