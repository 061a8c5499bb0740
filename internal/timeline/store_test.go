package timeline

import (
	"fmt"
	"sync"
	"testing"
)

func botText(messageID, text string) Message {
	return Message{
		SentBy:    SentByBot,
		Kind:      KindText,
		MessageID: messageID,
		SessionID: "sess-1",
		Text:      text,
	}
}

func TestAppend_InsertsAndAssignsSequence(t *testing.T) {
	s := NewStore()

	if !s.Append(botText("m1", "a")) {
		t.Fatal("expected first append to insert")
	}
	if !s.Append(botText("m2", "b")) {
		t.Fatal("expected second append to insert")
	}

	snap := s.Snapshot()
	if len(snap) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(snap))
	}
	if snap[0].SequenceIndex != 0 || snap[1].SequenceIndex != 1 {
		t.Errorf("unexpected sequence indices: %d, %d", snap[0].SequenceIndex, snap[1].SequenceIndex)
	}
	if snap[0].MessageID != "m1" || snap[1].MessageID != "m2" {
		t.Errorf("insertion order not preserved: %s, %s", snap[0].MessageID, snap[1].MessageID)
	}
}

func TestAppend_DedupsByIdentityKey(t *testing.T) {
	s := NewStore()

	s.Append(botText("m1", "original"))
	if s.Append(botText("m1", "different payload, same key")) {
		t.Error("expected duplicate key to be skipped")
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 message, got %d", s.Len())
	}
	if got := s.Snapshot()[0].Text; got != "original" {
		t.Errorf("expected the first message to survive, got %q", got)
	}
}

func TestAppend_KeyIgnoresKind(t *testing.T) {
	s := NewStore()

	s.Append(botText("m1", "text form"))
	img := Message{SentBy: SentByBot, Kind: KindImage, MessageID: "m1", SessionID: "sess-1"}
	if s.Append(img) {
		t.Error("expected image with same identity key to be deduped")
	}
}

func TestAppend_DifferentSenderIsDistinct(t *testing.T) {
	s := NewStore()

	s.Append(botText("m1", "bot"))
	user := Message{SentBy: SentByUser, Kind: KindText, MessageID: "m1", SessionID: "sess-1", Text: "user"}
	if !s.Append(user) {
		t.Error("expected same message id from the other sender to insert")
	}
	if s.Len() != 2 {
		t.Errorf("expected 2 messages, got %d", s.Len())
	}
}

func TestOnChange_FiresPerInsertOnly(t *testing.T) {
	s := NewStore()
	var calls int
	var lastLen int
	s.OnChange(func(snapshot []Message) {
		calls++
		lastLen = len(snapshot)
	})

	s.Append(botText("m1", "a"))
	s.Append(botText("m1", "dup"))
	s.Append(botText("m2", "b"))

	if calls != 2 {
		t.Errorf("expected 2 change notifications, got %d", calls)
	}
	if lastLen != 2 {
		t.Errorf("expected final snapshot length 2, got %d", lastLen)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := NewStore()
	s.Append(botText("m1", "a"))

	snap := s.Snapshot()
	snap[0].Text = "mutated"

	if s.Snapshot()[0].Text != "a" {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestOnChange_SnapshotsArriveInInsertionOrder(t *testing.T) {
	s := NewStore()

	// The callback runs under the store lock, so lengths must climb one at a
	// time even when appends race.
	var lengths []int
	s.OnChange(func(snapshot []Message) {
		lengths = append(lengths, len(snapshot))
	})

	const n = 32
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			s.Append(botText(fmt.Sprintf("m%d", i), "x"))
		}(i)
	}
	wg.Wait()

	if len(lengths) != n {
		t.Fatalf("expected %d notifications, got %d", n, len(lengths))
	}
	for i, got := range lengths {
		if got != i+1 {
			t.Fatalf("notification %d carried snapshot length %d, want %d", i, got, i+1)
		}
	}
}
