// internal/webserve/adapter.go
//
// Transport adapter: bridges net/http (routed by chi) to the controller
// pipeline.
//
// Request life-cycle
// ------------------
//
//  1. Build a *core.Context from the request (method, path, chi route
//     params, query, headers).
//  2. Hydrate the session through the configured session.Store.
//  3. Run Controller.Serve for the mounted action.
//  4. On commit: flush flash into the session, persist the session, copy
//     status/headers/body to the ResponseWriter.
//  5. On error: map the structured error taxonomy to an HTTP status.
//
// The adapter is the only place that touches http.ResponseWriter; the
// core below it deals purely in Context values.
//
// Notes
// -----
// • A pipeline that finishes without committing (halt, or no terminal
//   render stage) is answered with 204 and a warning log — it usually
//   means a misconfigured chain.
// • Client cancellation aborts without writing anything.
// • Oxford commas, two spaces after periods.
package webserve

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/yanizio/conduct/internal/controller"
	"github.com/yanizio/conduct/internal/core"
	"github.com/yanizio/conduct/internal/metrics"
	"github.com/yanizio/conduct/internal/render"
	"github.com/yanizio/conduct/internal/session"
)

// Adapter binds controllers to a session store.
type Adapter struct {
	store session.Store
}

// New returns an Adapter persisting sessions through store.
func New(store session.Store) *Adapter {
	if store == nil {
		panic("webserve: nil session store")
	}
	return &Adapter{store: store}
}

// Action returns the http.HandlerFunc for one (controller, action) pair.
// Mount it on the router:
//
//	r.Get("/pages/{slug}", h.Action(pages, "show"))
func (a *Adapter) Action(ct *controller.Controller, action string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		c := buildContext(r)

		sess, err := a.store.Load(r)
		if err != nil {
			zap.S().Errorw("session load failed", "err", err)
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		c.ReplaceSession(sess)

		if err := ct.Serve(c, action); err != nil {
			a.writeError(w, r, err)
			return
		}

		if !c.Committed() {
			zap.S().Warnw("pipeline finished without committing",
				"controller", ct.Name(), "action", action)
			a.saveSession(w, r, c)
			w.WriteHeader(http.StatusNoContent)
			return
		}

		a.saveSession(w, r, c)
		writeResponse(w, c)
	}
}

// buildContext lifts the request facts into a core.Context.
func buildContext(r *http.Request) *core.Context {
	c := core.New(r.Context(), r.Method, r.URL.Path)
	c.Query = r.URL.Query()
	c.ReqHeader = r.Header

	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		for i, key := range rctx.URLParams.Keys {
			if key == "*" {
				continue
			}
			c.Params[key] = rctx.URLParams.Values[i]
		}
	}
	return c
}

// saveSession flushes flash and persists the session map.  Persistence
// failures are logged, not fatal — the response itself is already
// decided.
func (a *Adapter) saveSession(w http.ResponseWriter, r *http.Request, c *core.Context) {
	if c.Flash != nil {
		c.Flash.Flush(c.Session())
	}
	if err := a.store.Save(w, r, c.Session()); err != nil {
		zap.S().Errorw("session save failed", "err", err)
	}
}

// writeResponse copies the committed Context onto the wire.
func writeResponse(w http.ResponseWriter, c *core.Context) {
	for key, vals := range c.Header() {
		for _, v := range vals {
			w.Header().Add(key, v)
		}
	}
	w.WriteHeader(c.Status())
	if body := c.Body(); len(body) > 0 {
		_, _ = w.Write(body)
	}
}

func plainError(w http.ResponseWriter, status int) {
	http.Error(w, http.StatusText(status), status)
}

// writeError maps the error taxonomy to HTTP statuses.
func (a *Adapter) writeError(w http.ResponseWriter, r *http.Request, err error) {
	// Client gone: nothing useful to write.
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		zap.S().Debugw("request cancelled", "path", r.URL.Path)
		return
	}

	var (
		unsupported *render.UnsupportedFormatError
		notFound    *render.TemplateNotFoundError
		unknownAct  *controller.UnknownActionError
		badRedirect *core.BadRedirectError
		badStatus   *core.InvalidStatusError
	)

	switch {
	case errors.As(err, &unsupported):
		plainError(w, http.StatusNotAcceptable)
	case errors.As(err, &unknownAct):
		plainError(w, http.StatusNotFound)
	case errors.As(err, &notFound):
		zap.S().Errorw("template not found", "key", notFound.Key.String())
		plainError(w, http.StatusInternalServerError)
	case errors.Is(err, core.ErrDoubleCommit):
		metrics.DoubleCommitsTotal.Inc()
		zap.S().Errorw("double commit", "path", r.URL.Path, "err", err)
		plainError(w, http.StatusInternalServerError)
	case errors.As(err, &badRedirect), errors.As(err, &badStatus):
		zap.S().Errorw("fatal response error", "path", r.URL.Path, "err", err)
		plainError(w, http.StatusInternalServerError)
	default:
		zap.S().Errorw("pipeline error", "path", r.URL.Path, "err", err)
		plainError(w, http.StatusInternalServerError)
	}
}
