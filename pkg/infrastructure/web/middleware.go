package web

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/mateusmacedo/go-reservas/pkg/application"
)

// AccessLog registra cada requisição com status e duração. Deve vir depois de
// middleware.RequestID para que o requestID apareça no log.
func AccessLog(logger application.AppLogger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			fields := map[string]interface{}{
				"method":   r.Method,
				"path":     r.URL.Path,
				"status":   ww.Status(),
				"bytes":    ww.BytesWritten(),
				"duration": time.Since(start).String(),
			}
			if ww.Status() >= http.StatusInternalServerError {
				logger.Warn(r.Context(), "request served", fields)
				return
			}
			logger.Info(r.Context(), "request served", fields)
		})
	}
}
