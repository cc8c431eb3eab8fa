package events

import (
	"encoding/json"
	"fmt"
	"testing"
)

func TestValidate(t *testing.T) {
	valid := []string{
		"publish.started", "publish.completed", "publish.failed",
		"build.warning",
		"publication.created", "publication.deleted",
		"viewer.served",
		"system.startup", "system.shutdown", "system.error",
	}
	for _, name := range valid {
		if err := Validate(name); err != nil {
			t.Errorf("Validate(%s) = %v, want nil", name, err)
		}
	}

	invalid := []string{"", "publish.finished", "node.started", "PUBLISH.STARTED"}
	for _, name := range invalid {
		if err := Validate(name); err == nil {
			t.Errorf("Validate(%s) = nil, want error", name)
		}
	}
}

func TestEmitRejectsUnknownEvent(t *testing.T) {
	Clear()
	if _, err := Emit("info", "publish.finished", "", nil); err == nil {
		t.Fatal("expected an error for an unknown event name")
	}
	if len(Snapshot()) != 0 {
		t.Error("rejected event must not be buffered")
	}
}

func TestEmitBuffersAndMarshals(t *testing.T) {
	Clear()
	b, err := Emit("info", "publish.completed", "done", map[string]interface{}{"template": "quiz"})
	if err != nil {
		t.Fatalf("Emit failed: %v", err)
	}

	var e Event
	if err := json.Unmarshal(b, &e); err != nil {
		t.Fatalf("Emit returned invalid JSON: %v", err)
	}
	if e.Name != "publish.completed" || e.Message != "done" {
		t.Errorf("event = %+v", e)
	}
	if e.Timestamp == "" {
		t.Error("event has no timestamp")
	}

	snap := Snapshot()
	if len(snap) != 1 || snap[0].Name != "publish.completed" {
		t.Errorf("snapshot = %+v", snap)
	}
}

func TestRingBufferWrapsOldestFirst(t *testing.T) {
	rb := NewRingBuffer(4)
	for i := 0; i < 6; i++ {
		rb.Add(Event{Message: fmt.Sprintf("e%d", i)})
	}
	snap := rb.Snapshot()
	if len(snap) != 4 {
		t.Fatalf("snapshot length = %d, want 4", len(snap))
	}
	for i, e := range snap {
		if want := fmt.Sprintf("e%d", i+2); e.Message != want {
			t.Errorf("snapshot[%d] = %q, want %q", i, e.Message, want)
		}
	}
}
