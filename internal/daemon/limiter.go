package daemon

import (
	"net"
	"net/http"
	"time"

	gocache "github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

const minLimiterIdle = time.Minute

// clientLimiter rate limits requests per client address. The actor header is
// caller supplied and unresolved at this point, so it never selects a bucket.
// Buckets idle longer than a full refill are evicted.
type clientLimiter struct {
	entries *gocache.Cache
	rate    rate.Limit
	burst   int
}

// newClientLimiter returns nil when requestsPerSecond is not positive, which
// disables limiting.
func newClientLimiter(requestsPerSecond float64, burst int) *clientLimiter {
	if requestsPerSecond <= 0 {
		return nil
	}
	if burst <= 0 {
		burst = 1
	}
	idle := time.Duration(float64(burst) / requestsPerSecond * float64(time.Second))
	if idle < minLimiterIdle {
		idle = minLimiterIdle
	}
	return &clientLimiter{
		entries: gocache.New(idle, 2*idle),
		rate:    rate.Limit(requestsPerSecond),
		burst:   burst,
	}
}

// Allow reports whether key may make another request now.
func (l *clientLimiter) Allow(key string) bool {
	if l == nil {
		return true
	}
	return l.get(key).Allow()
}

func (l *clientLimiter) get(key string) *rate.Limiter {
	if cached, ok := l.entries.Get(key); ok {
		limiter := cached.(*rate.Limiter)
		l.entries.SetDefault(key, limiter)
		return limiter
	}
	limiter := rate.NewLimiter(l.rate, l.burst)
	if err := l.entries.Add(key, limiter, gocache.DefaultExpiration); err != nil {
		if cached, ok := l.entries.Get(key); ok {
			return cached.(*rate.Limiter)
		}
	}
	return limiter
}

func (l *clientLimiter) size() int {
	if l == nil {
		return 0
	}
	return l.entries.ItemCount()
}

// middleware rejects requests over the limit with 429.
func (l *clientLimiter) middleware(next http.Handler) http.Handler {
	if l == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !l.Allow(clientHost(r.RemoteAddr)) {
			w.Header().Set("Retry-After", "1")
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}` + "\n"))
			return
		}
		next.ServeHTTP(w, r)
	})
}

func clientHost(remoteAddr string) string {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		return remoteAddr
	}
	return host
}
