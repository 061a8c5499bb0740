package hermes

import (
	"encoding/json"
	"testing"
)

func TestSessionUpdatedEventParsing(t *testing.T) {
	raw := `{
		"session_id": "sess-001",
		"steps": [{
			"message_id": "msg-1",
			"session_id": "sess-001",
			"question": "what moved revenue?",
			"response": [{"type":"text","role":"assistant","response":"seasonality"}]
		}]
	}`

	var event SessionUpdatedEvent
	err := json.Unmarshal([]byte(raw), &event)
	if err != nil {
		t.Fatalf("failed to parse SessionUpdatedEvent: %v", err)
	}

	if event.SessionID != "sess-001" {
		t.Errorf("expected session_id 'sess-001', got '%s'", event.SessionID)
	}
	if len(event.Steps) != 1 {
		t.Fatalf("expected 1 step, got %d", len(event.Steps))
	}
	if event.Steps[0].MessageID != "msg-1" {
		t.Errorf("expected message_id 'msg-1', got '%s'", event.Steps[0].MessageID)
	}
	if len(event.Steps[0].Response) != 1 || event.Steps[0].Response[0].Text != "seasonality" {
		t.Errorf("unexpected response payload: %+v", event.Steps[0].Response)
	}
}

func TestSessionUpdatedEventWithoutSteps(t *testing.T) {
	var event SessionUpdatedEvent
	err := json.Unmarshal([]byte(`{"session_id": "sess-002"}`), &event)
	if err != nil {
		t.Fatalf("failed to parse: %v", err)
	}
	if event.SessionID != "sess-002" {
		t.Errorf("expected session_id 'sess-002', got '%s'", event.SessionID)
	}
	if len(event.Steps) != 0 {
		t.Errorf("expected no steps, got %d", len(event.Steps))
	}
}

func TestCitationChangedEventRoundTrip(t *testing.T) {
	event := CitationChangedEvent{
		SessionID:  "sess-rt",
		SourcePath: "reports/q1.pdf",
		PageNumber: "7",
		PageLabel:  "7",
		Text:       "revenue grew",
		Content:    "revenue grew 4% quarter over quarter",
	}

	data, err := json.Marshal(event)
	if err != nil {
		t.Fatalf("failed to marshal: %v", err)
	}

	var parsed CitationChangedEvent
	err = json.Unmarshal(data, &parsed)
	if err != nil {
		t.Fatalf("failed to unmarshal: %v", err)
	}

	if parsed != event {
		t.Errorf("round-trip mismatch: got %+v, want %+v", parsed, event)
	}
}

func TestSubjectConstants(t *testing.T) {
	if SubjectSessionUpdated != "swarm.chronicle.session.updated" {
		t.Errorf("unexpected SubjectSessionUpdated '%s'", SubjectSessionUpdated)
	}
	if SubjectTimelineChanged != "swarm.loom.timeline.changed" {
		t.Errorf("unexpected SubjectTimelineChanged '%s'", SubjectTimelineChanged)
	}
	if SubjectBatchSettled != "swarm.loom.batch.settled" {
		t.Errorf("unexpected SubjectBatchSettled '%s'", SubjectBatchSettled)
	}
	if SubjectCitationChanged != "swarm.loom.citation.changed" {
		t.Errorf("unexpected SubjectCitationChanged '%s'", SubjectCitationChanged)
	}
}
