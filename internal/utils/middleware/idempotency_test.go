package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memStore is an in-memory IdempotencyStore.
type memStore struct {
	mu   sync.Mutex
	data map[string]string
	down bool
}

func newMemStore() *memStore {
	return &memStore{data: make(map[string]string)}
}

func (s *memStore) Get(_ context.Context, key string) *goredis.StringCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return goredis.NewStringResult("", assert.AnError)
	}
	v, ok := s.data[key]
	if !ok {
		return goredis.NewStringResult("", goredis.Nil)
	}
	return goredis.NewStringResult(v, nil)
}

func (s *memStore) Set(_ context.Context, key string, value any, _ time.Duration) *goredis.StatusCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch v := value.(type) {
	case []byte:
		s.data[key] = string(v)
	case string:
		s.data[key] = v
	}
	return goredis.NewStatusResult("OK", nil)
}

func (s *memStore) SetNX(_ context.Context, key string, value any, _ time.Duration) *goredis.BoolCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.down {
		return goredis.NewBoolResult(false, assert.AnError)
	}
	if _, ok := s.data[key]; ok {
		return goredis.NewBoolResult(false, nil)
	}
	s.data[key] = "1"
	return goredis.NewBoolResult(true, nil)
}

func (s *memStore) Del(_ context.Context, keys ...string) *goredis.IntCmd {
	s.mu.Lock()
	defer s.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := s.data[k]; ok {
			delete(s.data, k)
			n++
		}
	}
	return goredis.NewIntResult(n, nil)
}

func idempotentRouter(store IdempotencyStore, cfg IdempotencyConfig, status *int, calls *int) *gin.Engine {
	router := gin.New()
	router.Use(Idempotency(store, cfg))
	router.POST("/hooks", func(c *gin.Context) {
		*calls++
		c.JSON(*status, gin.H{"call": *calls})
	})
	return router
}

func post(router *gin.Engine, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/hooks", strings.NewReader(body))
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestIdempotency_ReplaysStoredResponse(t *testing.T) {
	status, calls := http.StatusAccepted, 0
	router := idempotentRouter(newMemStore(), DefaultIdempotencyConfig(), &status, &calls)
	headers := map[string]string{IdempotencyKeyHeader: "delivery-1"}

	first := post(router, `{}`, headers)
	second := post(router, `{}`, headers)

	assert.Equal(t, 1, calls)
	assert.Equal(t, http.StatusAccepted, first.Code)
	assert.Equal(t, http.StatusAccepted, second.Code)
	assert.JSONEq(t, first.Body.String(), second.Body.String())
}

func TestIdempotency_ServerErrorsAreRetried(t *testing.T) {
	status, calls := http.StatusInternalServerError, 0
	router := idempotentRouter(newMemStore(), DefaultIdempotencyConfig(), &status, &calls)
	headers := map[string]string{IdempotencyKeyHeader: "delivery-2"}

	post(router, `{}`, headers)
	status = http.StatusAccepted
	w := post(router, `{}`, headers)

	assert.Equal(t, 2, calls)
	assert.Equal(t, http.StatusAccepted, w.Code)
}

func TestIdempotency_NoKeyPassesThrough(t *testing.T) {
	status, calls := http.StatusAccepted, 0
	router := idempotentRouter(newMemStore(), DefaultIdempotencyConfig(), &status, &calls)

	post(router, `{}`, nil)
	post(router, `{}`, nil)

	assert.Equal(t, 2, calls)
}

func TestIdempotency_BodyHashKey(t *testing.T) {
	status, calls := http.StatusAccepted, 0
	cfg := DefaultIdempotencyConfig()
	cfg.KeyFunc = HeaderOrBodyKey
	router := idempotentRouter(newMemStore(), cfg, &status, &calls)

	post(router, `{"invite_id":"inv_1"}`, nil)
	post(router, `{"invite_id":"inv_1"}`, nil)
	post(router, `{"invite_id":"inv_2"}`, nil)

	assert.Equal(t, 2, calls)
}

func TestIdempotency_StoreUnavailable(t *testing.T) {
	store := newMemStore()
	store.down = true
	status, calls := http.StatusAccepted, 0
	router := idempotentRouter(store, DefaultIdempotencyConfig(), &status, &calls)

	w := post(router, `{}`, map[string]string{IdempotencyKeyHeader: "k"})

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, calls)
}

func TestIdempotency_InFlightConflict(t *testing.T) {
	store := newMemStore()
	status, calls := http.StatusAccepted, 0
	router := idempotentRouter(store, DefaultIdempotencyConfig(), &status, &calls)

	store.data[generateIdempotencyKey(http.MethodPost, "/hooks", "busy")+":lock"] = "1"

	w := post(router, `{}`, map[string]string{IdempotencyKeyHeader: "busy"})

	assert.Equal(t, http.StatusConflict, w.Code)
	assert.Equal(t, 0, calls)
}

func TestIdempotency_NilStore(t *testing.T) {
	status, calls := http.StatusAccepted, 0
	router := idempotentRouter(nil, DefaultIdempotencyConfig(), &status, &calls)

	w := post(router, `{}`, map[string]string{IdempotencyKeyHeader: "k"})

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, 1, calls)
}
