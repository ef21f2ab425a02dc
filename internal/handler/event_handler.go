package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	"github.com/noah-isme/sma-adp-counseling/internal/service"
)

var errSubscriberLagging = errors.New("event stream subscriber lagging, event dropped")

type eventSource interface {
	Subscribe(listener service.Listener) (unsubscribe func())
}

// EventHandler streams store events to dashboards over server-sent events.
type EventHandler struct {
	source    eventSource
	buffer    int
	heartbeat time.Duration
	logger    *zap.Logger
}

// NewEventHandler constructs EventHandler.
func NewEventHandler(source eventSource, heartbeat time.Duration, logger *zap.Logger) *EventHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	if heartbeat <= 0 {
		heartbeat = 30 * time.Second
	}
	return &EventHandler{source: source, buffer: 64, heartbeat: heartbeat, logger: logger}
}

// Stream subscribes for the lifetime of the request. The optional "collection" query
// parameter (comma separated) limits the stream to those collections. A slow client
// loses events instead of stalling store mutations.
func (h *EventHandler) Stream(c *gin.Context) {
	collections := map[string]struct{}{}
	for _, name := range strings.Split(c.Query("collection"), ",") {
		if name = strings.TrimSpace(name); name != "" {
			collections[name] = struct{}{}
		}
	}

	events := make(chan models.Event, h.buffer)
	unsubscribe := h.source.Subscribe(func(evt models.Event) error {
		if len(collections) > 0 {
			if _, ok := collections[evt.Kind.Collection()]; !ok {
				return nil
			}
		}
		select {
		case events <- evt:
			return nil
		default:
			return errSubscriberLagging
		}
	})
	defer unsubscribe()

	c.Header("Content-Type", "text/event-stream")
	c.Header("Cache-Control", "no-cache")
	c.Header("Connection", "keep-alive")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.Flush()

	ticker := time.NewTicker(h.heartbeat)
	defer ticker.Stop()

	ctx := c.Request.Context()
	h.logger.Debug("event stream opened", zap.String("user_id", callerID(c)))
	c.Stream(func(w io.Writer) bool {
		select {
		case <-ctx.Done():
			return false
		case evt := <-events:
			c.SSEvent(string(evt.Kind), evt)
			return true
		case <-ticker.C:
			c.SSEvent("ping", gin.H{"at": time.Now().UTC()})
			return true
		}
	})
	h.logger.Debug("event stream closed", zap.String("user_id", callerID(c)))
}
