package middleware

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"greenquest/internal/cache"
	"greenquest/internal/config"

	"go.uber.org/zap"
)

// CORS applies cross-origin settings from the security configuration
func CORS(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	allowedOrigins := cfg.CORSAllowedOrigins
	methods := strings.Join(cfg.CORSAllowedMethods, ", ")
	headers := strings.Join(cfg.CORSAllowedHeaders, ", ")

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if allowed := matchOrigin(allowedOrigins, origin); allowed != "" {
				w.Header().Set("Access-Control-Allow-Origin", allowed)
				if cfg.CORSAllowCredentials && allowed != "*" {
					w.Header().Set("Access-Control-Allow-Credentials", "true")
				}
			}
			w.Header().Set("Access-Control-Allow-Methods", methods)
			w.Header().Set("Access-Control-Allow-Headers", headers)
			w.Header().Set("Access-Control-Expose-Headers", HeaderXRequestID)

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusNoContent)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func matchOrigin(allowed []string, origin string) string {
	for _, candidate := range allowed {
		if candidate == "*" {
			return "*"
		}
		if candidate == origin {
			return origin
		}
	}
	return ""
}

// SecureHeaders sets standard security response headers
func SecureHeaders(cfg *config.SecurityConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if cfg.EnableSecurityHeaders {
				w.Header().Set("X-Content-Type-Options", "nosniff")
				w.Header().Set("X-Frame-Options", cfg.FrameOptions)
				w.Header().Set("Referrer-Policy", "same-origin")
			}
			if cfg.ForceHTTPS && r.Header.Get("X-Forwarded-Proto") == "http" {
				target := "https://" + r.Host + r.URL.RequestURI()
				http.Redirect(w, r, target, http.StatusPermanentRedirect)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RateLimit applies a fixed-window per-client limit backed by the cache
func RateLimit(c cache.Cache, cfg *config.SecurityConfig, logger *zap.Logger) func(http.Handler) http.Handler {
	limit := cfg.RateLimitRequests
	window := cfg.RateLimitWindow

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if limit <= 0 {
				next.ServeHTTP(w, r)
				return
			}

			windowStart := time.Now().Truncate(window).Unix()
			key := fmt.Sprintf("ratelimit:%s:%d", getClientIP(r), windowStart)

			count := 0
			if value, ok := c.Get(r.Context(), key); ok {
				if n, ok := value.(int); ok {
					count = n
				}
			}

			if count >= limit {
				w.Header().Set("Retry-After", strconv.Itoa(int(window.Seconds())))
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
				w.Header().Set("X-RateLimit-Remaining", "0")
				logger.Warn("Rate limit exceeded",
					zap.String("client_ip", getClientIP(r)),
					zap.String("path", r.URL.Path),
				)
				http.Error(w, http.StatusText(http.StatusTooManyRequests), http.StatusTooManyRequests)
				return
			}

			// Counter updates are best effort; a cache failure never
			// blocks the request.
			if err := c.Set(r.Context(), key, count+1, window); err != nil {
				logger.Warn("Failed to update rate limit counter", zap.Error(err))
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(limit-count-1))
			next.ServeHTTP(w, r)
		})
	}
}
