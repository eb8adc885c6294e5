// internal/middleware/recover.go
//
// Panic recovery for the request path.
//
// Context
// -------
// Mutating a committed core.Context panics with core.ErrDoubleCommit — a
// deliberate signal that two response paths fired for one request.  This
// wrapper is where that signal lands: it logs the panic with its stack,
// bumps the double-commit counter when applicable, and answers 500 if
// nothing was written yet.  Everything else about the process keeps
// running; one broken action must not take the server down.
package middleware

import (
	"errors"
	"net/http"
	"runtime/debug"

	"go.uber.org/zap"

	"github.com/yanizio/conduct/internal/core"
	"github.com/yanizio/conduct/internal/metrics"
)

// Recover converts request-path panics into logged 500 responses.
func Recover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}

			if err, ok := rec.(error); ok && errors.Is(err, core.ErrDoubleCommit) {
				metrics.DoubleCommitsTotal.Inc()
				zap.S().Errorw("mutation after commit",
					"method", r.Method, "path", r.URL.Path,
					"stack", string(debug.Stack()))
			} else {
				zap.S().Errorw("request panic",
					"method", r.Method, "path", r.URL.Path,
					"panic", rec,
					"stack", string(debug.Stack()))
			}

			// Best effort; the handler may have written already.
			http.Error(w, http.StatusText(http.StatusInternalServerError),
				http.StatusInternalServerError)
		}()
		next.ServeHTTP(w, r)
	})
}
