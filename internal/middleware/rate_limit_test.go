package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLimiter(t *testing.T) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRateLimiterWithClient(client, NewLocalLimiter(1, time.Minute), nil), mr
}

func TestRateLimitByIP(t *testing.T) {
	rl, mr := newTestLimiter(t)
	r := gin.New()
	r.GET("/ping", rl.RateLimitByIP(2, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	first := doRequest(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, "2", first.Header().Get("X-RateLimit-Limit"))
	assert.Equal(t, "1", first.Header().Get("X-RateLimit-Remaining"))

	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/ping", "").Code)

	blocked := doRequest(r, http.MethodGet, "/ping", "")
	assert.Equal(t, http.StatusTooManyRequests, blocked.Code)
	assert.Equal(t, "60", blocked.Header().Get("Retry-After"))
	assert.Contains(t, blocked.Body.String(), "RATE_LIMIT_EXCEEDED")

	mr.FastForward(time.Minute + time.Second)
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/ping", "").Code)
}

func TestRateLimitFallsBackWhenRedisIsDown(t *testing.T) {
	rl, mr := newTestLimiter(t)
	r := gin.New()
	r.GET("/ping", rl.RateLimitByIP(5, time.Minute), func(c *gin.Context) { c.Status(http.StatusOK) })

	mr.Close()

	// the local limiter allows one request per minute
	assert.Equal(t, http.StatusOK, doRequest(r, http.MethodGet, "/ping", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, doRequest(r, http.MethodGet, "/ping", "").Code)
}

func TestRateLimitByEmailKeepsBodyForHandler(t *testing.T) {
	rl, _ := newTestLimiter(t)
	r := gin.New()
	r.POST("/login", rl.RateLimitByEmail(1, time.Minute, "email"), func(c *gin.Context) {
		var body struct {
			Email string `json:"email"`
		}
		require.NoError(t, c.ShouldBindBodyWith(&body, binding.JSON))
		c.String(http.StatusOK, body.Email)
	})

	post := func(body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w
	}

	ok := post(`{"email":"Ana@uni.pt"}`)
	assert.Equal(t, http.StatusOK, ok.Code)
	assert.Equal(t, "Ana@uni.pt", ok.Body.String())

	assert.Equal(t, http.StatusTooManyRequests, post(`{"email":"ana@uni.pt "}`).Code)
	assert.Equal(t, http.StatusOK, post(`{"email":"other@uni.pt"}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`{}`).Code)
	assert.Equal(t, http.StatusBadRequest, post(`not json`).Code)
}
