package middleware

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/AnshRaj112/researchhive-backend/internal/metrics"
	"golang.org/x/time/rate"
)

// Search endpoints scan collections with regexes, so they get their own budget.
// Auth: 60 req/min, burst 20. Anonymous: 15 req/min, burst 5.
const (
	searchAuthRPS   = 1.0
	searchAuthBurst = 20
	searchAnonRPS   = 0.25
	searchAnonBurst = 5
)

type searchLimiters struct {
	auth *ipLimiters
	anon *ipLimiters
}

func newSearchLimiters() *searchLimiters {
	return &searchLimiters{
		auth: newIPLimiters(rate.Limit(searchAuthRPS), searchAuthBurst),
		anon: newIPLimiters(rate.Limit(searchAnonRPS), searchAnonBurst),
	}
}

func (s *searchLimiters) sweep(now time.Time) {
	s.auth.sweep(now)
	s.anon.sweep(now)
}

func isSearch(r *http.Request) bool {
	if r.Method != http.MethodGet {
		return false
	}
	if r.URL.Path == "/api/user/search" {
		return true
	}
	return r.URL.Path == "/api/repository" && r.URL.Query().Get("q") != ""
}

func hasBearer(r *http.Request) bool {
	h := r.Header.Get("Authorization")
	return strings.HasPrefix(h, "Bearer ") && len(strings.TrimPrefix(h, "Bearer ")) > 0
}

// SearchRateLimit throttles user and repository search per IP, more loosely for signed-in callers.
func (l *Limiter) SearchRateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !isSearch(r) {
			next.ServeHTTP(w, r)
			return
		}

		set, limit := l.search.anon, searchAnonBurst
		if hasBearer(r) {
			set, limit = l.search.auth, searchAuthBurst
		}
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))

		if !set.get(l.ip(r)).Allow() {
			metrics.RateLimited.WithLabelValues("search").Inc()
			w.Header().Set("X-RateLimit-Remaining", "0")
			writeError(w, http.StatusTooManyRequests, "Too many search requests. Please slow down.")
			return
		}
		next.ServeHTTP(w, r)
	})
}
