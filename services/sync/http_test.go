package sync

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/planner-api/planner/pkg/auth"
)

var _ Service = (*SyncService)(nil)

func newTestRouter(f *fixture, identity auth.Identity) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	api := r.Group("/api/v1")
	api.Use(func(c *gin.Context) {
		c.Set(auth.IdentityKey, identity)
		c.Next()
	})
	NewHTTPHandler(HTTPOptions{Service: f.service, Router: api, Logger: zap.NewNop()})
	return r
}

func serve(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

var premium = auth.Identity{Username: "maribelrb", Plan: auth.PlanPremium}

func TestLoginHandler(t *testing.T) {
	f := newFixture()
	r := newTestRouter(f, premium)

	w := serve(r, http.MethodPost, "/api/v1/events/sync", `{"refreshToken": "refreshToken"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	token, ok, err := f.registry.Lookup(context.Background(), "maribelrb")
	assert.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "refreshToken", token)
}

func TestLoginHandler_BadPayloads(t *testing.T) {
	r := newTestRouter(newFixture(), premium)

	for _, body := range []string{`{}`, `{"refreshToken": 213123}`, ``, `[1,2]`} {
		w := serve(r, http.MethodPost, "/api/v1/events/sync", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, "body %q", body)
	}
}

func TestLoginHandler_BasePlan(t *testing.T) {
	r := newTestRouter(newFixture(), auth.Identity{Username: "maribelrb", Plan: "base"})

	w := serve(r, http.MethodPost, "/api/v1/events/sync", `{"refreshToken": "refreshToken"}`)
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestLogoutHandler(t *testing.T) {
	f := newFixture()
	r := newTestRouter(f, premium)
	assert.NoError(t, f.registry.Login(context.Background(), "maribelrb", "refreshToken"))

	w := serve(r, http.MethodGet, "/api/v1/events/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)

	_, ok, err := f.registry.Lookup(context.Background(), "maribelrb")
	assert.NoError(t, err)
	assert.False(t, ok)

	w = serve(r, http.MethodGet, "/api/v1/events/logout", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
