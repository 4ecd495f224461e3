package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"

	"bankelig/internal/auth"
)

func doRequest(limiter *auth.FixedWindowLimiter, method, path string) *httptest.ResponseRecorder {
	e := echo.New()
	req := httptest.NewRequest(method, path, nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := RateLimit(limiter)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})
	_ = handler(c)
	return rec
}

func TestRateLimit_BlocksAfterLimitOnAuthPaths(t *testing.T) {
	limiter := auth.NewFixedWindowLimiter(2, time.Minute)

	for i := 0; i < 2; i++ {
		rec := doRequest(limiter, http.MethodPost, "/auth/login")
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	rec := doRequest(limiter, http.MethodPost, "/auth/login")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "RATE_LIMITED")
}

func TestRateLimit_GetRequestsAreNotCounted(t *testing.T) {
	limiter := auth.NewFixedWindowLimiter(1, time.Minute)

	for i := 0; i < 5; i++ {
		rec := doRequest(limiter, http.MethodGet, "/login")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_NonAuthPathsAreNotCounted(t *testing.T) {
	limiter := auth.NewFixedWindowLimiter(1, time.Minute)

	for i := 0; i < 5; i++ {
		rec := doRequest(limiter, http.MethodPost, "/api/banks")
		assert.Equal(t, http.StatusOK, rec.Code)
	}
}

func TestRateLimit_PathsCountSeparately(t *testing.T) {
	limiter := auth.NewFixedWindowLimiter(1, time.Minute)

	rec := doRequest(limiter, http.MethodPost, "/auth/login")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(limiter, http.MethodPost, "/auth/register")
	assert.Equal(t, http.StatusOK, rec.Code)
	rec = doRequest(limiter, http.MethodPost, "/auth/login")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
