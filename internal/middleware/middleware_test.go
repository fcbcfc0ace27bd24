package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/auth"
	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var ok = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

func do(h http.Handler, method, target string, mutate ...func(*http.Request)) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for _, m := range mutate {
		m(req)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestSecurityHeaders(t *testing.T) {
	rec := do(SecurityHeaders(ok), http.MethodGet, "/")
	assert.Equal(t, "nosniff", rec.Header().Get(headerXContentTypeOptions))
	assert.Equal(t, "DENY", rec.Header().Get(headerXFrameOptions))
	assert.NotEmpty(t, rec.Header().Get(headerStrictTransportSecurity))
}

func TestHostCheck(t *testing.T) {
	h := HostCheck("api.researchhive.org")(ok)

	rec := do(h, http.MethodGet, "http://api.researchhive.org:443/")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = do(h, http.MethodGet, "http://evil.example/")
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(HostCheck("")(ok), http.MethodGet, "http://anything/")
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestLoginLimiterOnlyAppliesToAuthPosts(t *testing.T) {
	l := NewLimiter(false)
	h := l.Login(ok)

	for i := 0; i < loginRateLimitBurst; i++ {
		assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/auth/login").Code)
	}
	rec := do(h, http.MethodPost, "/api/auth/login")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)

	// Other routes and methods are untouched.
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/auth/login").Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/forum").Code)
}

func TestLoginLimiterIsPerIP(t *testing.T) {
	l := NewLimiter(true)
	h := l.Login(ok)
	from := func(ip string) func(*http.Request) {
		return func(r *http.Request) { r.Header.Set("X-Forwarded-For", ip) }
	}
	for i := 0; i < loginRateLimitBurst; i++ {
		do(h, http.MethodPost, "/api/auth/register", from("10.0.0.1"))
	}
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodPost, "/api/auth/register", from("10.0.0.1")).Code)
	assert.Equal(t, http.StatusOK, do(h, http.MethodPost, "/api/auth/register", from("10.0.0.2")).Code)
}

func TestLimiterSweepDropsIdleEntries(t *testing.T) {
	set := newIPLimiters(1, 1)
	set.get("a")
	set.get("b")
	require.Equal(t, 2, set.size())

	set.sweep(time.Now().Add(time.Hour))
	assert.Equal(t, 0, set.size())
}

func TestSearchRateLimitAnonymous(t *testing.T) {
	l := NewLimiter(false)
	h := l.SearchRateLimit(ok)

	for i := 0; i < searchAnonBurst; i++ {
		require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/user/search?q=ada").Code)
	}
	rec := do(h, http.MethodGet, "/api/user/search?q=ada")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))

	// Listing without a query is not a search.
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/repository").Code)
}

func TestSearchRateLimitAuthenticatedBudget(t *testing.T) {
	l := NewLimiter(false)
	h := l.SearchRateLimit(ok)
	bearer := func(r *http.Request) { r.Header.Set("Authorization", "Bearer abc") }

	for i := 0; i < searchAuthBurst; i++ {
		require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/repository?q=graph", bearer).Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodGet, "/api/repository?q=graph", bearer).Code)
}

func TestRedisRateLimiterBlocksAfterBudget(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	l := NewRedisRateLimiter(rdb, false).WithLimits(time.Minute, 3, time.Hour)
	h := l.Handler(ok)

	for i := 0; i < 3; i++ {
		rec := do(h, http.MethodGet, "/api/forum")
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "3", rec.Header().Get("X-RateLimit-Limit"))
	}
	rec := do(h, http.MethodGet, "/api/forum")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "3600", rec.Header().Get("Retry-After"))

	assert.True(t, mr.Exists(BlockedIPKeyPrefix+"192.0.2.1"))
	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusTooManyRequests, do(h, http.MethodGet, "/api/forum").Code, "block outlasts the window")

	mr.Del(BlockedIPKeyPrefix + "192.0.2.1")
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/api/forum").Code)
}

func TestRedisRateLimiterCounterAlwaysExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := NewRedisRateLimiter(rdb, false).WithLimits(time.Minute, 10, time.Hour).Handler(ok)
	key := RateLimitKeyPrefix + "192.0.2.1"

	do(h, http.MethodGet, "/")
	assert.Equal(t, time.Minute, mr.TTL(key))
	mr.FastForward(30 * time.Second)
	do(h, http.MethodGet, "/")
	assert.Equal(t, 30*time.Second, mr.TTL(key), "later hits do not extend the window")

	// A counter stranded without a TTL picks one up on the next hit.
	mr.Del(key)
	require.NoError(t, mr.Set(key, "4"))
	do(h, http.MethodGet, "/")
	assert.Equal(t, time.Minute, mr.TTL(key))
	got, err := mr.Get(key)
	require.NoError(t, err)
	assert.Equal(t, "5", got)
}

func TestRedisRateLimiterWindowExpires(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := NewRedisRateLimiter(rdb, false).WithLimits(time.Minute, 1, time.Hour).Handler(ok)
	require.Equal(t, http.StatusOK, do(h, http.MethodGet, "/").Code)

	mr.FastForward(2 * time.Minute)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/").Code)
}

func TestRedisRateLimiterFailsOpen(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	t.Cleanup(func() { _ = rdb.Close() })
	mr.Close()

	h := NewRedisRateLimiter(rdb, false).Handler(ok)
	assert.Equal(t, http.StatusOK, do(h, http.MethodGet, "/").Code)
}

type fakeAuth struct {
	token string
	p     auth.Principal
	err   error
}

func (f fakeAuth) Authenticate(_ context.Context, token string) (auth.Principal, error) {
	if f.err != nil {
		return auth.Principal{}, f.err
	}
	if token != f.token {
		return auth.Principal{}, errors.New("bad token")
	}
	return f.p, nil
}

func TestRequireAuth(t *testing.T) {
	want := auth.Principal{UserID: primitive.NewObjectID(), Username: "ada", SessionID: "s1"}
	var got auth.Principal
	h := RequireAuth(fakeAuth{token: "good", p: want})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got, _ = auth.PrincipalFrom(r.Context())
	}))

	rec := do(h, http.MethodGet, "/api/auth/me")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodGet, "/api/auth/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer nope") })
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodGet, "/api/auth/me", func(r *http.Request) { r.Header.Set("Authorization", "Bearer good") })
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, got)

	got = auth.Principal{}
	rec = do(h, http.MethodGet, "/ws/notifications?token=good")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, want, got)
}

func TestRequireAuthStoreTimeout(t *testing.T) {
	h := RequireAuth(fakeAuth{err: context.DeadlineExceeded})(ok)
	rec := do(h, http.MethodGet, "/", func(r *http.Request) { r.Header.Set("Authorization", "Bearer x") })
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestBearerToken(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/?token=q", nil)
	assert.Equal(t, "q", bearerToken(r))

	r.Header.Set("Authorization", "bearer h")
	assert.Equal(t, "h", bearerToken(r))

	r.Header.Set("Authorization", "Basic abc")
	assert.Empty(t, bearerToken(r))
}

func TestCORSPreflight(t *testing.T) {
	h := CORS([]string{"http://localhost:3000"})(ok)

	rec := do(h, http.MethodOptions, "/api/forum", func(r *http.Request) {
		r.Header.Set("Origin", "http://localhost:3000")
		r.Header.Set("Access-Control-Request-Method", http.MethodPost)
	})
	assert.Equal(t, "http://localhost:3000", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))

	rec = do(h, http.MethodGet, "/api/forum", func(r *http.Request) { r.Header.Set("Origin", "http://evil.example") })
	assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
}

func TestRequestIDAndObserve(t *testing.T) {
	r := chi.NewRouter()
	r.Use(RequestID, Observe)
	r.Get("/api/forum/{id}", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/forum/{id}", routePattern(r))
		w.WriteHeader(http.StatusTeapot)
	})

	rec := do(r, http.MethodGet, "/api/forum/abc")
	assert.Equal(t, http.StatusTeapot, rec.Code)
	assert.NotEmpty(t, rec.Header().Get(requestIDHeader))

	rec = do(r, http.MethodGet, "/api/forum/abc", func(r *http.Request) { r.Header.Set(requestIDHeader, "fixed") })
	assert.Equal(t, "fixed", rec.Header().Get(requestIDHeader))
}
