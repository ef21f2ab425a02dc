package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/sma-adp-counseling/internal/models"
	"github.com/noah-isme/sma-adp-counseling/internal/service"
)

func newProtectedRouter(sessions *service.SessionService, roles ...models.UserRole) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/alerts/:id", JWT(sessions), RequireRoles(roles...), func(c *gin.Context) {
		token, _ := service.TokenFromContext(c.Request.Context())
		c.String(http.StatusOK, token)
	})
	return r
}

func issue(t *testing.T, sessions *service.SessionService, role models.UserRole) string {
	t.Helper()
	token, _, err := sessions.IssueToken(models.AuthUser{ID: "u-1", Role: role}, time.Hour)
	require.NoError(t, err)
	return token
}

func TestJWTAttachesTokenToRequestContext(t *testing.T) {
	sessions := service.NewSessionService(service.SessionConfig{Secret: "s"}, zap.NewNop())
	r := newProtectedRouter(sessions, StaffRoles...)
	token := issue(t, sessions, models.RolePsychopedagogue)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/alerts/a1", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, token, rec.Body.String())
}

func TestJWTRejectsMissingOrMalformedHeader(t *testing.T) {
	sessions := service.NewSessionService(service.SessionConfig{Secret: "s"}, zap.NewNop())
	r := newProtectedRouter(sessions, StaffRoles...)

	for _, header := range []string{"", "Token abc", "Bearer not-a-jwt"} {
		rec := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/alerts/a1", nil)
		if header != "" {
			req.Header.Set("Authorization", header)
		}
		r.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code, header)
	}
}

func TestRequireRolesForbidsOtherRoles(t *testing.T) {
	sessions := service.NewSessionService(service.SessionConfig{Secret: "s"}, zap.NewNop())
	r := newProtectedRouter(sessions, StaffRoles...)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/alerts/a1", nil)
	req.Header.Set("Authorization", "Bearer "+issue(t, sessions, models.RoleParent))
	r.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusForbidden, rec.Code)
}

type recordingHTTPObserver struct {
	paths []string
}

func (o *recordingHTTPObserver) ObserveHTTPRequest(_ string, path string, _ int, _ time.Duration) {
	o.paths = append(o.paths, path)
}

func TestMetricsUsesRouteTemplate(t *testing.T) {
	gin.SetMode(gin.TestMode)
	obs := &recordingHTTPObserver{}
	r := gin.New()
	r.Use(Metrics(obs))
	r.GET("/cases/:id", func(c *gin.Context) { c.Status(http.StatusNoContent) })

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/cases/123", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/nowhere", nil))

	assert.Equal(t, []string{"/cases/:id", "unmatched"}, obs.paths)
}
