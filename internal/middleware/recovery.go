package middleware

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"
)

// IncidentHeader carries the id a recovered panic was logged under, so a
// user report can be matched to the stack trace.
const IncidentHeader = "X-Incident-ID"

// PanicHandler writes the error response for a recovered panic
type PanicHandler func(w http.ResponseWriter, r *http.Request, incident string)

// Recovery creates panic recovery middleware with a custom panic handler.
// The owner is included in the log record when one was resolved before the panic.
// http.ErrAbortHandler is re-raised so net/http can abort the connection quietly.
func Recovery(logger *slog.Logger, handler PanicHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r, info := withRequestInfo(r)
			defer func() {
				err := recover()
				if err == nil {
					return
				}
				if err == http.ErrAbortHandler {
					panic(err)
				}

				incident := uuid.NewString()
				attrs := []any{
					slog.Any("error", err),
					slog.String("incident_id", incident),
					slog.String("stack", string(debug.Stack())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
				}
				if info.owner != "" {
					attrs = append(attrs, slog.String("owner_id", string(info.owner)))
				}
				logger.Error("panic recovered", attrs...)

				w.Header().Set(IncidentHeader, incident)
				handler(w, r, incident)
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// DefaultPanicHandler returns a plain-text 500 naming the incident
func DefaultPanicHandler(w http.ResponseWriter, _ *http.Request, incident string) {
	http.Error(w, "Internal Server Error (incident "+incident+")", http.StatusInternalServerError)
}
