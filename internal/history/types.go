package history

import (
	"encoding/json"
	"fmt"
)

// Response item kinds as they appear on the wire.
const (
	TypeText  = "text"
	TypeImage = "image"
)

// HistoryStep is one turn of session history: a question plus its response
// items and optional citation sources. Steps are immutable once received.
type HistoryStep struct {
	MessageID       string         `json:"message_id"`
	SessionID       string         `json:"session_id"`
	RowID           string         `json:"row_id"`
	System          string         `json:"system"`
	Question        string         `json:"question"`
	UpdatedAt       string         `json:"updated_at"`
	Response        []ResponseItem `json:"response"`
	Source          []SourceRef    `json:"source,omitempty"`
	ResponseComment string         `json:"response_comment,omitempty"`
	ResponseRank    int            `json:"response_rank,omitempty"`
	SourceComment   string         `json:"source_comment,omitempty"`
	SourceRank      int            `json:"source_rank,omitempty"`
}

// SourceRef is an optional citation attached to a step. Only the first entry
// of a step's source list is considered authoritative; later entries are
// ignored.
type SourceRef struct {
	SourcePath string `json:"source_path"`
	PageNumber string `json:"page_number"`
	PageLabel  string `json:"page_label"`
	Text       string `json:"text"`
	Content    string `json:"content"`
}

// TextPart is one entry of a nested text payload list.
type TextPart struct {
	Text string `json:"response"`
}

// ResponseItem is a tagged union over text and image response shapes. The
// text payload on the wire is either a plain string or a nested list of
// {"response": ...} entries; both forms are accepted.
type ResponseItem struct {
	Type string

	// Text payload.
	Role  string
	Text  string
	Parts []TextPart

	// Image payload.
	Path        string
	Description string
}

func (r *ResponseItem) UnmarshalJSON(data []byte) error {
	var raw struct {
		Type        string          `json:"type"`
		Role        string          `json:"role"`
		Response    json.RawMessage `json:"response"`
		Path        string          `json:"path"`
		Description string          `json:"description"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("decode response item: %w", err)
	}

	r.Type = raw.Type
	r.Role = raw.Role
	r.Path = raw.Path
	r.Description = raw.Description
	r.Text = ""
	r.Parts = nil

	if len(raw.Response) == 0 || string(raw.Response) == "null" {
		return nil
	}
	switch raw.Response[0] {
	case '"':
		if err := json.Unmarshal(raw.Response, &r.Text); err != nil {
			return fmt.Errorf("decode text payload: %w", err)
		}
	case '[':
		if err := json.Unmarshal(raw.Response, &r.Parts); err != nil {
			return fmt.Errorf("decode nested text payload: %w", err)
		}
		if len(r.Parts) > 0 {
			r.Text = r.Parts[0].Text
		}
	default:
		r.Text = string(raw.Response)
	}
	return nil
}

func (r ResponseItem) MarshalJSON() ([]byte, error) {
	if r.Type == TypeImage {
		return json.Marshal(struct {
			Type        string `json:"type"`
			Path        string `json:"path"`
			Description string `json:"description,omitempty"`
		}{Type: r.Type, Path: r.Path, Description: r.Description})
	}
	if len(r.Parts) > 0 {
		return json.Marshal(struct {
			Type     string     `json:"type"`
			Role     string     `json:"role,omitempty"`
			Response []TextPart `json:"response"`
		}{Type: r.Type, Role: r.Role, Response: r.Parts})
	}
	return json.Marshal(struct {
		Type     string `json:"type"`
		Role     string `json:"role,omitempty"`
		Response string `json:"response"`
	}{Type: r.Type, Role: r.Role, Response: r.Text})
}

// MalformedStepError reports a step missing its identity fields. The step's
// message production is skipped; the rest of the batch continues.
type MalformedStepError struct {
	Index  int
	Reason string
}

func (e *MalformedStepError) Error() string {
	return fmt.Sprintf("malformed history step %d: %s", e.Index, e.Reason)
}
