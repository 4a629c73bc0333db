package server

import (
	"net"
	"net/http"
	"sync"

	"github.com/juju/ratelimit"
)

// rateLimit returns a per-client token-bucket middleware.
func rateLimit(rps float64, burst int64) func(http.Handler) http.Handler {
	if burst <= 0 {
		burst = 20
	}

	var mu sync.Mutex
	buckets := make(map[string]*ratelimit.Bucket)

	bucketFor := func(clientIP string) *ratelimit.Bucket {
		mu.Lock()
		defer mu.Unlock()
		b, ok := buckets[clientIP]
		if !ok {
			b = ratelimit.NewBucketWithRate(rps, burst)
			buckets[clientIP] = b
		}
		return b
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ip, _, err := net.SplitHostPort(r.RemoteAddr)
			if err != nil {
				ip = r.RemoteAddr
			}
			if bucketFor(ip).TakeAvailable(1) == 0 {
				http.Error(w, `{"error":"rate limit exceeded"}`, http.StatusTooManyRequests)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
