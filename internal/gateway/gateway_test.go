package gateway

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	appErrors "github.com/noah-isme/sma-adp-counseling/pkg/errors"
)

type fakeSessions struct {
	session    *models.Session
	sessionErr error
	user       *models.AuthUser
	userErr    error
}

func (f *fakeSessions) Session(context.Context) (*models.Session, error) {
	return f.session, f.sessionErr
}

func (f *fakeSessions) CurrentUser(context.Context) (*models.AuthUser, error) {
	return f.user, f.userErr
}

func validSessions() *fakeSessions {
	return &fakeSessions{
		session: &models.Session{AccessToken: "token-abc", UserID: "user-1"},
		user:    &models.AuthUser{ID: "user-1", Role: models.RolePsychopedagogue},
	}
}

type recordedRequest struct {
	Method  string
	Path    string
	Headers http.Header
	Body    map[string]interface{}
}

type spyServer struct {
	*httptest.Server
	calls atomic.Int32
	last  recordedRequest
}

func newSpyServer(t *testing.T, status int, body string) *spyServer {
	t.Helper()
	spy := &spyServer{}
	spy.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		spy.calls.Add(1)
		raw, _ := io.ReadAll(r.Body)
		spy.last = recordedRequest{Method: r.Method, Path: r.URL.Path, Headers: r.Header.Clone()}
		_ = json.Unmarshal(raw, &spy.last.Body)
		w.WriteHeader(status)
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(spy.Close)
	return spy
}

type recordingGatewayObserver struct {
	endpoints []string
	outcomes  []string
}

func (o *recordingGatewayObserver) ObserveGatewayCall(endpoint string, outcome string, _ time.Duration) {
	o.endpoints = append(o.endpoints, endpoint)
	o.outcomes = append(o.outcomes, outcome)
}

func newTestGateway(t *testing.T, sessions SessionProvider, baseURL string) (*Gateway, *recordingGatewayObserver) {
	t.Helper()
	obs := &recordingGatewayObserver{}
	gw, err := New(sessions, Options{BaseURL: baseURL, Logger: zap.NewNop(), Observer: obs})
	require.NoError(t, err)
	return gw, obs
}

func requireCode(t *testing.T, err error, code string) *appErrors.Error {
	t.Helper()
	require.Error(t, err)
	var appErr *appErrors.Error
	require.True(t, errors.As(err, &appErr))
	assert.Equal(t, code, appErr.Code)
	return appErr
}

func TestNewRequiresBaseURLAndSessions(t *testing.T) {
	_, err := New(nil, Options{BaseURL: "http://x"})
	require.Error(t, err)
	_, err = New(validSessions(), Options{})
	require.Error(t, err)
}

func TestInvokeSuccessSendsShapedRequest(t *testing.T) {
	srv := newSpyServer(t, http.StatusOK, `{"plan":{"objectives":["focus"]}}`)
	gw, obs := newTestGateway(t, validSessions(), srv.URL+"/functions/v1/")

	resp, err := gw.Invoke(context.Background(), "analyze-emotions", Payload{"studentId": "s1", "role": "docente"})
	require.NoError(t, err)

	assert.Equal(t, int32(1), srv.calls.Load())
	assert.Equal(t, http.MethodPost, srv.last.Method)
	assert.Equal(t, "/functions/v1/analyze-emotions", srv.last.Path)
	assert.Equal(t, "Bearer token-abc", srv.last.Headers.Get("Authorization"))
	assert.Equal(t, "application/json", srv.last.Headers.Get("Content-Type"))
	assert.Equal(t, map[string]interface{}{"studentId": "s1", "role": "teacher", "analyzedBy": "user-1"}, srv.last.Body)

	assert.Equal(t, http.StatusOK, resp.Status)
	assert.Equal(t, map[string]interface{}{"plan": map[string]interface{}{"objectives": []interface{}{"focus"}}}, resp.Data)
	assert.Equal(t, []string{"success"}, obs.outcomes)
}

func TestInvokeWithoutSessionFailsClosed(t *testing.T) {
	srv := newSpyServer(t, http.StatusOK, `{}`)

	for name, sessions := range map[string]*fakeSessions{
		"session error": {sessionErr: errors.New("expired"), user: &models.AuthUser{ID: "u"}},
		"no session":    {user: &models.AuthUser{ID: "u"}},
		"empty token":   {session: &models.Session{}, user: &models.AuthUser{ID: "u"}},
		"no identity":   {session: &models.Session{AccessToken: "t"}, userErr: errors.New("lookup failed")},
		"nil identity":  {session: &models.Session{AccessToken: "t"}},
	} {
		t.Run(name, func(t *testing.T) {
			gw, _ := newTestGateway(t, sessions, srv.URL)
			resp, err := gw.Invoke(context.Background(), "student-report", Payload{"studentId": "s1"})
			assert.Nil(t, resp)
			requireCode(t, err, appErrors.ErrAuthentication.Code)
		})
	}
	assert.Equal(t, int32(0), srv.calls.Load())
}

func TestInvokeValidationErrorMakesNoNetworkCall(t *testing.T) {
	srv := newSpyServer(t, http.StatusOK, `{}`)
	gw, obs := newTestGateway(t, validSessions(), srv.URL)

	resp, err := gw.Invoke(context.Background(), "generate-ai-plan", Payload{})

	assert.Nil(t, resp)
	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "studentId", appErr.Field)
	assert.Equal(t, int32(0), srv.calls.Load())
	assert.Equal(t, []string{"validation_error"}, obs.outcomes)
}

func TestInvokeNonJSONErrorBodyKeepsRawTextAndStatus(t *testing.T) {
	srv := newSpyServer(t, http.StatusInternalServerError, "upstream exploded")
	gw, _ := newTestGateway(t, validSessions(), srv.URL)

	resp, err := gw.Invoke(context.Background(), "list-announcements", Payload{})

	assert.Nil(t, resp)
	appErr := requireCode(t, err, appErrors.ErrNetwork.Code)
	assert.Equal(t, "upstream exploded", appErr.Message)
	assert.Equal(t, http.StatusInternalServerError, appErr.UpstreamStatus)
}

func TestInvokeStructuredErrorBody(t *testing.T) {
	srv := newSpyServer(t, http.StatusUnprocessableEntity, `{"message":"student not enrolled","details":{"studentId":"s1"}}`)
	gw, _ := newTestGateway(t, validSessions(), srv.URL)

	_, err := gw.Invoke(context.Background(), "student-report", Payload{"studentId": "s1"})

	appErr := requireCode(t, err, appErrors.ErrNetwork.Code)
	assert.Equal(t, "student not enrolled", appErr.Message)
	assert.Equal(t, map[string]interface{}{"studentId": "s1"}, appErr.Details)
	assert.Equal(t, http.StatusUnprocessableEntity, appErr.UpstreamStatus)
}

func TestInvokeEmptyErrorBodyUsesStatusText(t *testing.T) {
	srv := newSpyServer(t, http.StatusServiceUnavailable, "")
	gw, _ := newTestGateway(t, validSessions(), srv.URL)

	_, err := gw.Invoke(context.Background(), "anything", Payload{})

	appErr := requireCode(t, err, appErrors.ErrNetwork.Code)
	assert.Equal(t, http.StatusText(http.StatusServiceUnavailable), appErr.Message)
}

func TestInvokeNonJSONSuccessIsParseError(t *testing.T) {
	srv := newSpyServer(t, http.StatusOK, "plain text")
	gw, obs := newTestGateway(t, validSessions(), srv.URL)

	resp, err := gw.Invoke(context.Background(), "student-report", Payload{"studentId": "s1"})

	assert.Nil(t, resp)
	requireCode(t, err, appErrors.ErrParse.Code)
	assert.Equal(t, []string{"parse_error"}, obs.outcomes)
}

func TestInvokeAIPlanToleratesRawText(t *testing.T) {
	srv := newSpyServer(t, http.StatusOK, "1. Weekly check-in\n2. Seating change")
	gw, _ := newTestGateway(t, validSessions(), srv.URL)

	resp, err := gw.Invoke(context.Background(), "generate-ai-plan", Payload{"studentId": "s1"})

	require.NoError(t, err)
	assert.Equal(t, "1. Weekly check-in\n2. Seating change", resp.Raw)
	assert.Equal(t, resp.Raw, resp.Data)
}

func TestInvokeAIPlanStillDecodesJSON(t *testing.T) {
	srv := newSpyServer(t, http.StatusOK, `{"objectives":[]}`)
	gw, _ := newTestGateway(t, validSessions(), srv.URL)

	resp, err := gw.Invoke(context.Background(), "generate-ai-plan", Payload{"studentId": "s1"})

	require.NoError(t, err)
	assert.Empty(t, resp.Raw)
	assert.Equal(t, map[string]interface{}{"objectives": []interface{}{}}, resp.Data)
}

func TestInvokeEmptySuccessBody(t *testing.T) {
	srv := newSpyServer(t, http.StatusNoContent, "")
	gw, _ := newTestGateway(t, validSessions(), srv.URL)

	resp, err := gw.Invoke(context.Background(), "assign-role", Payload{"role": "docente", "userId": "u2"})

	require.NoError(t, err)
	assert.Nil(t, resp.Data)
	assert.Equal(t, map[string]interface{}{"role": "teacher", "userId": "u2", "assignedBy": "user-1"}, srv.last.Body)
}

func TestInvokeTransportFailureIsNetworkError(t *testing.T) {
	srv := newSpyServer(t, http.StatusOK, `{}`)
	url := srv.URL
	srv.Close()
	gw, _ := newTestGateway(t, validSessions(), url)

	_, err := gw.Invoke(context.Background(), "anything", Payload{})

	requireCode(t, err, appErrors.ErrNetwork.Code)
}

func TestInvokeHonoursContextCancellation(t *testing.T) {
	srv := newSpyServer(t, http.StatusOK, `{}`)
	gw, _ := newTestGateway(t, validSessions(), srv.URL)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := gw.Invoke(ctx, "anything", Payload{})

	appErr := requireCode(t, err, appErrors.ErrNetwork.Code)
	assert.ErrorIs(t, appErr, context.Canceled)
}

func TestInvokeRejectsBlankEndpoint(t *testing.T) {
	gw, _ := newTestGateway(t, validSessions(), "http://127.0.0.1:1")

	_, err := gw.Invoke(context.Background(), " / ", Payload{})

	appErr := requireCode(t, err, appErrors.ErrValidation.Code)
	assert.Equal(t, "endpoint", appErr.Field)
}

func TestInvokeRejectsMalformedEndpointNames(t *testing.T) {
	srv := newSpyServer(t, http.StatusOK, `{}`)
	gw, obs := newTestGateway(t, validSessions(), srv.URL)

	for _, name := range []string{"generate-ai-plan?", "generate-ai-plan#x", "x/../generate-ai-plan", "generate-ai-plan%2F", "..", "a b"} {
		_, err := gw.Invoke(context.Background(), name, Payload{})
		appErr := requireCode(t, err, appErrors.ErrValidation.Code)
		assert.Equal(t, "endpoint", appErr.Field, name)
	}
	assert.Equal(t, int32(0), srv.calls.Load())
	for _, label := range obs.endpoints {
		assert.Equal(t, "other", label)
	}
}

func TestInvokeLabelsUnregisteredEndpointsAsOther(t *testing.T) {
	srv := newSpyServer(t, http.StatusOK, `{"ok":true}`)
	gw, obs := newTestGateway(t, validSessions(), srv.URL)

	_, err := gw.Invoke(context.Background(), "custom-report-1", Payload{})
	require.NoError(t, err)
	_, err = gw.Invoke(context.Background(), "dashboard-stats", Payload{"role": "docente"})
	require.NoError(t, err)

	assert.Equal(t, []string{"other", "dashboard-stats"}, obs.endpoints)
	assert.Equal(t, "/dashboard-stats", srv.last.Path)
}
