package handler

import (
	"bufio"
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-counseling/internal/service"
)

type signallingSource struct {
	inner      eventSource
	subscribed chan struct{}
}

func (s *signallingSource) Subscribe(listener service.Listener) func() {
	unsubscribe := s.inner.Subscribe(listener)
	close(s.subscribed)
	return unsubscribe
}

func TestEventHandlerStreamsStoreEvents(t *testing.T) {
	store := newTestDomainStore(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	source := &signallingSource{inner: store, subscribed: make(chan struct{})}
	r.GET("/events", NewEventHandler(source, time.Hour, zap.NewNop()).Stream)
	srv := httptest.NewServer(r)
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, srv.URL+"/events?collection=cases", nil)
	require.NoError(t, err)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, "text/event-stream", resp.Header.Get("Content-Type"))

	select {
	case <-source.subscribed:
	case <-time.After(2 * time.Second):
		t.Fatal("event stream never subscribed")
	}
	_, err = store.CreateStudent(context.Background(), service.CreateStudentRequest{FullName: "ignored", Grade: "1"})
	require.NoError(t, err)
	created, err := store.CreateCase(context.Background(), service.CreateCaseRequest{StudentID: "s1", Title: "streamed"})
	require.NoError(t, err)

	reader := bufio.NewReader(resp.Body)
	var lines []string
	for len(lines) < 2 {
		line, err := reader.ReadString('\n')
		require.NoError(t, err)
		line = strings.TrimSpace(line)
		if line != "" {
			lines = append(lines, line)
		}
	}
	assert.Equal(t, "event:case.created", lines[0])
	assert.Contains(t, lines[1], `"entityId":"`+created.ID+`"`)
}
