package middleware

import (
	"encoding/json"
	"net"
	"net/http"

	"github.com/RoyceAzure/lab/laptop_store/pkg/ratelimit"
)

func clientKey(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// RateLimitMiddleware 以 client ip 為 key, limiter 為 nil 時不限流
// 需放在 chi middleware.RealIP 之後
func RateLimitMiddleware(limiter ratelimit.Limiter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		if limiter == nil {
			return next
		}
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !limiter.Allow(r.Context(), clientKey(r)) {
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(map[string]string{
					"error": "Too Many Requests",
				})
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
