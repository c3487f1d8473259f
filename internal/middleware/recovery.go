package middleware

import (
	"net/http"
	"runtime/debug"

	"greenquest/internal/contextutils"

	"go.uber.org/zap"
)

// Recovery converts panics into 500 responses with a logged stack trace
func Recovery(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := recover(); err != nil {
					requestLogger := GetRequestLogger(r.Context())
					if requestLogger == nil {
						requestLogger = logger
					}
					requestLogger.Error("Panic recovered",
						zap.Any("panic", err),
						zap.String("request_id", contextutils.GetRequestID(r.Context())),
						zap.String("method", r.Method),
						zap.String("path", r.URL.Path),
						zap.ByteString("stack", debug.Stack()),
					)

					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}
