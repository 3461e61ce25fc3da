package middleware

import (
	"net"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// 5 req/s with a burst of 30 is roomy for a single app client while blunting
// scripted hammering.
const (
	requestsPerSecond = 5
	burstSize         = 30
	visitorIdleEvict  = 3 * time.Minute
)

type visitor struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

var (
	visitorsMu sync.Mutex
	visitors   = make(map[string]*visitor)
)

// RateLimitMiddleware throttles by client IP before any routing happens.
func RateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !limiterFor(clientIP(r)).Allow() {
			w.Header().Set("Retry-After", "1")
			http.Error(w, "Too Many Requests", http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// clientIP prefers the first hop of X-Forwarded-For, which the proxy in
// front of the API sets; later entries are appended by intermediaries and
// can be spoofed.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if i := strings.IndexByte(fwd, ','); i >= 0 {
			return strings.TrimSpace(fwd[:i])
		}
		return strings.TrimSpace(fwd)
	}
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func limiterFor(ip string) *rate.Limiter {
	visitorsMu.Lock()
	defer visitorsMu.Unlock()

	v, ok := visitors[ip]
	if !ok {
		v = &visitor{limiter: rate.NewLimiter(requestsPerSecond, burstSize)}
		visitors[ip] = v
	}
	v.lastSeen = time.Now()
	return v.limiter
}

// CleanupVisitors evicts idle entries so the table does not grow with every
// IP ever seen. Run it in its own goroutine.
func CleanupVisitors() {
	for range time.Tick(time.Minute) {
		visitorsMu.Lock()
		for ip, v := range visitors {
			if time.Since(v.lastSeen) > visitorIdleEvict {
				delete(visitors, ip)
			}
		}
		visitorsMu.Unlock()
	}
}
