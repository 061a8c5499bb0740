package history

import (
	"github.com/MikeSquared-Agency/loom/internal/timeline"
)

// FileProcessingSentinel is a recognized data value, not an error: upstream
// emits it as the sole nested text entry while knowledge-base ingestion is
// still running. It suppresses citation propagation for that item and raises
// the file-processing flag for the step.
const FileProcessingSentinel = "File(s) may be processing or unavailable. Please check your knowledge bases."

// Normalized is the output of normalizing one history step.
type Normalized struct {
	UserMessage    *timeline.Message  // only set for the batch's leading step
	TextMessages   []timeline.Message // one per text response item, in item order
	Images         []ResponseItem     // image items needing an out-of-band fetch
	Citation       *SourceRef         // update for the shared citation slot, last-write-wins
	FileProcessing bool
}

// Normalize converts one raw history step into canonical message records.
// index is the step's position in the batch; only step 0 synthesizes the
// user's question message. Pure and idempotent: no I/O, no shared state.
func Normalize(step HistoryStep, index int) (*Normalized, error) {
	if step.MessageID == "" || step.SessionID == "" {
		return nil, &MalformedStepError{Index: index, Reason: "missing message_id or session_id"}
	}

	n := &Normalized{}

	if index == 0 {
		n.UserMessage = &timeline.Message{
			SentBy:    timeline.SentByUser,
			Kind:      timeline.KindText,
			MessageID: step.MessageID,
			SessionID: step.SessionID,
			RowID:     step.MessageID,
			Text:      step.Question,
			System:    step.System,
		}
	}

	var src *SourceRef
	if len(step.Source) > 0 {
		src = &step.Source[0]
	}

	for _, item := range step.Response {
		switch item.Type {
		case TypeImage:
			n.Images = append(n.Images, item)

		case TypeText:
			m := timeline.Message{
				SentBy:          timeline.SentByBot,
				Kind:            timeline.KindText,
				MessageID:       step.MessageID,
				SessionID:       step.SessionID,
				RowID:           step.RowID,
				Role:            item.Role,
				Text:            item.Text,
				System:          step.System,
				UpdatedAt:       step.UpdatedAt,
				ResponseComment: step.ResponseComment,
				ResponseRank:    step.ResponseRank,
				SourceComment:   step.SourceComment,
				SourceRank:      step.SourceRank,
			}
			if src != nil {
				m.PageLabel = src.PageNumber
				m.SourceText = src.Text
			}

			if len(item.Parts) > 0 && item.Parts[0].Text == FileProcessingSentinel {
				// Message is still produced, but carries no citation.
				n.FileProcessing = true
			} else if src != nil && src.SourcePath != "" {
				m.Filename = src.SourcePath
				m.PageLabel = src.PageNumber
				m.SourceText = src.Content
				n.Citation = src
			}

			n.TextMessages = append(n.TextMessages, m)
		}
	}

	return n, nil
}
