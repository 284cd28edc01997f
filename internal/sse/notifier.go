package sse

import (
	"time"

	"github.com/GTDGit/panel_api/internal/models"
)

// TestNotifier is the interface the lifecycle service uses to emit events.
type TestNotifier interface {
	NotifyTestStarted(t *models.Test)
	NotifyTestFinished(t *models.Test)
	NotifyTestDeleted(t *models.Test)
}

// HubNotifier implements TestNotifier using the SSE Hub.
type HubNotifier struct {
	hub *Hub
	now func() time.Time
}

// NewHubNotifier creates a notifier backed by the given Hub.
func NewHubNotifier(hub *Hub) *HubNotifier {
	return &HubNotifier{hub: hub, now: time.Now}
}

func (n *HubNotifier) NotifyTestStarted(t *models.Test) {
	n.emit(EventTestStarted, t)
}

// NotifyTestFinished picks the event from the test's final status.
func (n *HubNotifier) NotifyTestFinished(t *models.Test) {
	event := EventTestCompleted
	if t.Status == models.TestDiscontinued {
		event = EventTestDiscontinued
	}
	n.emit(event, t)
}

func (n *HubNotifier) NotifyTestDeleted(t *models.Test) {
	n.emit(EventTestDeleted, t)
}

func (n *HubNotifier) emit(eventType EventType, t *models.Test) {
	if n.hub.ClientCount() == 0 {
		return
	}
	n.hub.Broadcast(&TestEvent{
		Event:     eventType,
		TestID:    t.ID,
		TesterID:  t.TesterID,
		ProductID: t.ProductID,
		VariantID: t.ProductVariantID,
		Status:    string(t.Status),
		Reason:    t.DiscontinuedReason,
		Timestamp: n.now().UTC(),
	})
}

// NopNotifier is a no-op implementation for when SSE is not needed.
type NopNotifier struct{}

func (NopNotifier) NotifyTestStarted(*models.Test)  {}
func (NopNotifier) NotifyTestFinished(*models.Test) {}
func (NopNotifier) NotifyTestDeleted(*models.Test)  {}
