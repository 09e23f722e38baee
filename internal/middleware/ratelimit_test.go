package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

type fakeCounter struct {
	hits map[string]int64
	err  error
}

func (f *fakeCounter) Hit(_ context.Context, clientKey string, _ time.Duration) (int64, error) {
	if f.err != nil {
		return 0, f.err
	}
	f.hits[clientKey]++
	return f.hits[clientKey], nil
}

func rateLimitedRouter(counter HitCounter, max int) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RateLimit(counter, max, time.Minute))
	r.GET("/", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRateLimit(t *testing.T) {
	r := rateLimitedRouter(&fakeCounter{hits: map[string]int64{}}, 2)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "Muitas requisições. Tente novamente em instantes.", w.Body.String())

	// 其他客户端不受影响
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.1.1.1:4000"
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRateLimit_CounterFailureLetsRequestsThrough(t *testing.T) {
	r := rateLimitedRouter(&fakeCounter{err: errors.New("connection refused")}, 1)

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_InvalidArguments(t *testing.T) {
	assert.Panics(t, func() { RateLimit(nil, 1, time.Minute) })
	assert.Panics(t, func() { RateLimit(&fakeCounter{}, 0, time.Minute) })
	assert.Panics(t, func() { RateLimit(&fakeCounter{}, 1, 0) })
}
