package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storefront/server/internal/adapter/outbound/jwt"
	"github.com/storefront/server/internal/infra/config"
	"github.com/storefront/server/internal/model"
	"github.com/storefront/server/internal/port/outbound"
)

func memoryConfig() *config.Config {
	return &config.Config{
		Database: config.DatabaseConfig{Driver: "memory"},
		Log:      config.LogConfig{Level: "error", Format: "json"},
		Auth: config.AuthConfig{
			JWTSecret:         "test-secret",
			Issuer:            "storefront",
			AccessTokenExpiry: time.Minute,
		},
		Events: config.EventsConfig{
			HandlerTimeout: time.Second,
			Webhook:        config.WebhookConfig{Enabled: true, Secret: "hook"},
		},
		ActorQuery: config.ActorQueryConfig{Timeout: time.Second, FailureThreshold: 5, OpenTimeout: time.Second, HalfOpenRequests: 1},
		Metrics:    config.MetricsConfig{Enabled: true, Namespace: "test", Path: "/metrics"},
	}
}

func newTestApp(t *testing.T) *App {
	t.Helper()
	a, err := New(memoryConfig())
	require.NoError(t, err)
	require.NoError(t, a.Start(context.Background()))
	t.Cleanup(a.Stop)
	return a
}

func token(t *testing.T, claims *outbound.TokenClaims) string {
	t.Helper()
	cfg := memoryConfig()
	tok, _, err := jwt.NewManager(&jwt.Config{
		Secret:            cfg.Auth.JWTSecret,
		Issuer:            cfg.Auth.Issuer,
		AccessTokenExpiry: cfg.Auth.AccessTokenExpiry,
	}).IssueToken(claims)
	require.NoError(t, err)
	return tok
}

func TestApp_UnknownDriver(t *testing.T) {
	cfg := memoryConfig()
	cfg.Database.Driver = "cassandra"

	_, err := New(cfg)
	assert.ErrorContains(t, err, "unknown database driver")
}

func TestApp_Health(t *testing.T) {
	a := newTestApp(t)

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestApp_AdminRoutesRequireSession(t *testing.T) {
	a := newTestApp(t)

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/admin/me/role", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestApp_WebhookThenResolve(t *testing.T) {
	a := newTestApp(t)
	store := a.stores.Memory
	require.NotNil(t, store)

	store.PutUser(&model.User{ID: "u_1", Email: "ed@example.com", Metadata: model.Metadata{"theme": "dark"}})
	store.PutInvite(&model.Invite{ID: "inv_1", Email: "ed@example.com", Metadata: model.Metadata{"role": "blog_editor"}})

	req := httptest.NewRequest(http.MethodPost, "/hooks/invite-accepted",
		strings.NewReader(`{"name":"invite.accepted","data":{"invite_id":"inv_1","user_id":"u_1"}}`))
	req.Header.Set("X-Webhook-Secret", "hook")
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	require.Equal(t, http.StatusAccepted, w.Code, w.Body.String())

	u, ok := store.User("u_1")
	require.True(t, ok)
	assert.Equal(t, "blog_editor", u.Metadata["role"])
	assert.Equal(t, "dark", u.Metadata["theme"])

	req = httptest.NewRequest(http.MethodGet, "/api/v1/admin/me/role", nil)
	req.Header.Set("Authorization", "Bearer "+token(t, &outbound.TokenClaims{Subject: "u_1"}))
	w = httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"role":"blog_editor","source":"actor_query","actor_id":"u_1"}`, w.Body.String())
}

func TestApp_WebhookRejectsWrongSecret(t *testing.T) {
	a := newTestApp(t)

	req := httptest.NewRequest(http.MethodPost, "/hooks/invite-accepted", strings.NewReader(`{"user_id":"u_1"}`))
	req.Header.Set("X-Webhook-Secret", "nope")
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, 0, a.stores.Memory.MetadataWrites())
}

func TestApp_Metrics(t *testing.T) {
	a := newTestApp(t)

	a.Router().ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))

	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "test_http_requests_total")
}
