package handler

import (
	"io"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/GTDGit/panel_api/internal/sse"
)

// EventsHandler streams lifecycle events to the admin dashboard.
type EventsHandler struct {
	hub *sse.Hub
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(hub *sse.Hub) *EventsHandler {
	return &EventsHandler{hub: hub}
}

// Stream handles GET /v1/admin/events
// The session middleware has already checked the cookie, which EventSource
// sends on same-origin requests.
func (h *EventsHandler) Stream(c *gin.Context) {
	clientID := "admin-" + uuid.New().String()[:8]

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")

	client := h.hub.Register(clientID)
	defer h.hub.Unregister(clientID)

	c.SSEvent("connected", gin.H{
		"clientId":  clientID,
		"timestamp": time.Now().Format(time.RFC3339),
	})
	c.Writer.Flush()

	log.Debug().Str("client_id", clientID).Msg("Admin event stream started")

	c.Stream(func(w io.Writer) bool {
		select {
		case data, ok := <-client.Events:
			if !ok {
				return false
			}
			c.SSEvent("test", string(data))
			return true
		case <-time.After(30 * time.Second):
			c.SSEvent("ping", gin.H{"timestamp": time.Now().Format(time.RFC3339)})
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
