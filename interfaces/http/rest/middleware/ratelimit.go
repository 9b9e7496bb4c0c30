package middleware

import (
	"net/http"
	"strings"

	"go.uber.org/zap"

	"flowcanvas/pkg/auth"
	"flowcanvas/pkg/common"
)

// RateLimit throttles mutating requests per client IP. Reads pass
// through untouched, as do gesture routes, which carry their own
// per-canvas limiter tuned for pointer-move frequency.
func RateLimit(limiter *auth.TokenBucketLimiter, logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet, http.MethodHead, http.MethodOptions:
				next.ServeHTTP(w, r)
				return
			}
			if strings.Contains(r.URL.Path, "/gestures/") {
				next.ServeHTTP(w, r)
				return
			}

			clientIP := getClientIP(r)
			allowed, err := limiter.Allow(r.Context(), clientIP)
			if err != nil {
				logger.Error("Rate limiter error", zap.Error(err))
				common.RespondError(w, http.StatusInternalServerError, "RATE_LIMITER_ERROR", "internal server error")
				return
			}
			if !allowed {
				logger.Debug("Request rate limited",
					zap.String("ip", clientIP),
					zap.String("path", r.URL.Path),
				)
				w.Header().Set("Retry-After", "1")
				common.RespondError(w, http.StatusTooManyRequests, "RATE_LIMITED", "too many requests")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
