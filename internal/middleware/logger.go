package middleware

import (
	"net/http"
	"time"

	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/cqle/dba-virtual/backend/internal/logging"
	"github.com/cqle/dba-virtual/backend/pkg/utils"
)

// RequestLogger attaches a request scoped logger to the context and logs one
// line per completed request. It expects chi's RequestID to run first.
func RequestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			child := logger.With().
				Str(logging.FieldRequestID, chimw.GetReqID(r.Context())).
				Str(logging.FieldMethod, r.Method).
				Str(logging.FieldPath, r.URL.Path).
				Str(logging.FieldClientIP, utils.ClientKey(r)).
				Logger()

			r = r.WithContext(logging.WithLogger(r.Context(), child))

			ww := chimw.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}

			event := child.Info()
			if status >= http.StatusInternalServerError {
				event = child.Warn()
			}
			event.
				Int(logging.FieldStatus, status).
				Float64(logging.FieldLatency, float64(time.Since(start).Milliseconds())).
				Msg("request completed")
		})
	}
}
