package sse

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/GTDGit/panel_api/internal/models"
)

func receive(t *testing.T, c *Client) TestEvent {
	t.Helper()
	select {
	case data := <-c.Events:
		var ev TestEvent
		if err := json.Unmarshal(data, &ev); err != nil {
			t.Fatalf("failed to decode event: %v", err)
		}
		return ev
	case <-time.After(time.Second):
		t.Fatal("expected an event")
	}
	return TestEvent{}
}

func TestHub_RegisterUnregister(t *testing.T) {
	hub := NewHub()
	c := hub.Register("a")
	hub.Register("b")
	if n := hub.ClientCount(); n != 2 {
		t.Fatalf("expected 2 clients, got %d", n)
	}

	hub.Unregister("a")
	if _, ok := <-c.Events; ok {
		t.Error("expected channel to be closed")
	}
	hub.Unregister("a")
	if n := hub.ClientCount(); n != 1 {
		t.Errorf("expected 1 client, got %d", n)
	}
}

func TestHub_DropsWhenBufferFull(t *testing.T) {
	hub := NewHub()
	c := hub.Register("slow")
	for i := 0; i < cap(c.Events)+10; i++ {
		hub.Broadcast(&TestEvent{Event: EventTestStarted})
	}
	if n := len(c.Events); n != cap(c.Events) {
		t.Errorf("expected full buffer of %d, got %d", cap(c.Events), n)
	}
}

func TestHubNotifier(t *testing.T) {
	hub := NewHub()
	c := hub.Register("admin")
	n := NewHubNotifier(hub)
	reason := "rash"

	test := &models.Test{ID: "t1", TesterID: "tr1", ProductID: "p1", ProductVariantID: "v1", Status: models.TestActive}
	n.NotifyTestStarted(test)
	if ev := receive(t, c); ev.Event != EventTestStarted || ev.TestID != "t1" || ev.VariantID != "v1" {
		t.Errorf("unexpected started event %+v", ev)
	}

	test.Status = models.TestDiscontinued
	test.DiscontinuedReason = &reason
	n.NotifyTestFinished(test)
	ev := receive(t, c)
	if ev.Event != EventTestDiscontinued || ev.Reason == nil || *ev.Reason != "rash" {
		t.Errorf("unexpected discontinued event %+v", ev)
	}

	test.Status = models.TestCompleted
	test.DiscontinuedReason = nil
	n.NotifyTestFinished(test)
	if ev := receive(t, c); ev.Event != EventTestCompleted {
		t.Errorf("expected completed event, got %s", ev.Event)
	}

	n.NotifyTestDeleted(test)
	if ev := receive(t, c); ev.Event != EventTestDeleted {
		t.Errorf("expected deleted event, got %s", ev.Event)
	}
}
