package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/heartmarshall/myenglish-exercises/pkg/ctxutil"
)

type fakeClock struct{ t time.Time }

func (c *fakeClock) now() time.Time          { return c.t }
func (c *fakeClock) advance(d time.Duration) { c.t = c.t.Add(d) }

func newTestLimiter(perMinute int) (*RateLimiter, *fakeClock) {
	clock := &fakeClock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	rl := NewRateLimiter(perMinute)
	rl.now = clock.now
	return rl, clock
}

func hit(h http.Handler, remote string, user uuid.UUID) int {
	req := httptest.NewRequest(http.MethodPost, "/api/exercises", nil)
	req.RemoteAddr = remote
	if user != uuid.Nil {
		req = req.WithContext(ctxutil.WithUserID(req.Context(), user))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec.Code
}

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusCreated) })
}

func TestRateLimiter_BurstThenBlock(t *testing.T) {
	t.Parallel()

	rl, clock := newTestLimiter(3)
	h := rl.Limit()(okHandler())

	for i := range 3 {
		assert.Equal(t, http.StatusCreated, hit(h, "1.2.3.4:1000", uuid.Nil), "request %d", i)
	}
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "1.2.3.4:1001", uuid.Nil), "same host, other port")

	clock.advance(21 * time.Second)
	assert.Equal(t, http.StatusCreated, hit(h, "1.2.3.4:1000", uuid.Nil), "one token refilled")
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "1.2.3.4:1000", uuid.Nil))
}

func TestRateLimiter_KeysByUserFirst(t *testing.T) {
	t.Parallel()

	rl, _ := newTestLimiter(1)
	h := rl.Limit()(okHandler())
	alice, bob := uuid.New(), uuid.New()

	assert.Equal(t, http.StatusCreated, hit(h, "10.0.0.1:1", alice))
	assert.Equal(t, http.StatusCreated, hit(h, "10.0.0.1:1", bob), "shared NAT, different users")
	assert.Equal(t, http.StatusTooManyRequests, hit(h, "10.0.0.2:1", alice), "same user, different IP")
}

func TestRateLimiter_RetryAfter(t *testing.T) {
	t.Parallel()

	rl, _ := newTestLimiter(1)
	h := rl.Limit()(okHandler())
	hit(h, "1.1.1.1:1", uuid.Nil)

	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "1.1.1.1:1"
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "61", rec.Header().Get("Retry-After"))
}

func TestRateLimiter_Prune(t *testing.T) {
	t.Parallel()

	rl, clock := newTestLimiter(5)
	h := rl.Limit()(okHandler())
	hit(h, "1.1.1.1:1", uuid.Nil)
	hit(h, "2.2.2.2:1", uuid.Nil)

	clock.advance(11 * time.Minute)
	hit(h, "2.2.2.2:1", uuid.Nil)
	rl.prune()

	assert.Len(t, rl.buckets, 1)
	assert.Contains(t, rl.buckets, "ip:2.2.2.2")
}
