// internal/core/context.go
//
// Central per-request context.
//
// Context
// -------
// Every request handled by Conduct flows through exactly one *core.Context.
// It bundles:
//
//   - Request facts — method, path, route params, query values, headers.
//   - Response state — status, headers, body, negotiated format.
//   - Assigns — values handed to templates at render time.
//   - Session — opaque map hydrated from, and flushed to, the session store.
//   - Flash — short-lived keyed messages layered on the session.
//
// Notes
// -----
// • A Context is owned by one goroutine for its whole life; no locking.
// • Once committed, every mutator panics with ErrDoubleCommit.  Two render
//   paths firing for one request is a programming error, and we want the
//   stack trace, not a silent overwrite.
// • Oxford commas, two spaces after periods.
package core

import (
	"context"
	"net/http"
	"net/url"

	"github.com/yanizio/conduct/internal/flash"
)

// Format names a response representation.  The well-known four are below;
// custom formats are ordinary non-empty strings.
type Format string

const (
	FormatHTML Format = "html"
	FormatJSON Format = "json"
	FormatText Format = "text"
	FormatXML  Format = "xml"
)

// ContentType returns the Content-Type header value for the format.
func (f Format) ContentType() string {
	switch f {
	case FormatHTML:
		return "text/html; charset=utf-8"
	case FormatJSON:
		return "application/json"
	case FormatText:
		return "text/plain; charset=utf-8"
	case FormatXML:
		return "text/xml; charset=utf-8"
	}
	return "application/octet-stream"
}

// Context carries one request/response exchange through the pipeline.
type Context struct {
	ctx context.Context // transport cancellation

	// Request facts, set once at construction.
	Method    string
	Path      string
	Params    map[string]string // route params ("id", etc.)
	Query     url.Values
	ReqHeader http.Header

	// Action is the resolved action name, set by the controller before the
	// pipeline runs.  Predicates and the auto-render stage read it.
	Action string

	// Flash is attached by the hydration stage; nil until then.
	Flash *flash.Store

	respHeader http.Header
	assigns    map[string]any
	session    map[string]any

	format         Format
	formatExplicit bool

	layout    string
	layoutOff bool

	status     int    // 0 = unset
	statusName string // symbolic, resolved at commit
	body       []byte

	halted    bool
	committed bool
}

// New builds a Context for one inbound exchange.  ctx is the transport's
// request context; cancellation is observed at stage boundaries.
func New(ctx context.Context, method, path string) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		ctx:        ctx,
		Method:     method,
		Path:       path,
		Params:     map[string]string{},
		Query:      url.Values{},
		ReqHeader:  http.Header{},
		respHeader: http.Header{},
		assigns:    map[string]any{},
		session:    map[string]any{},
	}
}

// Ctx exposes the transport context for cancellation checks.
func (c *Context) Ctx() context.Context { return c.ctx }

// mustMutable guards every setter.  Mutating a committed Context is fatal.
func (c *Context) mustMutable() {
	if c.committed {
		panic(ErrDoubleCommit)
	}
}

//
// assigns
//

// Assign stores a template value under key.
func (c *Context) Assign(key string, val any) {
	c.mustMutable()
	c.assigns[key] = val
}

// Assigns returns the live assigns map.  Callers must not retain it past
// the request.
func (c *Context) Assigns() map[string]any { return c.assigns }

//
// session
//

// Session returns the live session map.
func (c *Context) Session() map[string]any { return c.session }

// PutSession stores a value in the session map.
func (c *Context) PutSession(key string, val any) {
	c.mustMutable()
	c.session[key] = val
}

// ReplaceSession swaps in a freshly hydrated session map.
func (c *Context) ReplaceSession(s map[string]any) {
	c.mustMutable()
	if s == nil {
		s = map[string]any{}
	}
	c.session = s
}

//
// format
//

// PutFormat sets an explicit format override.  Overrides win over any
// negotiated value.
func (c *Context) PutFormat(f Format) {
	c.mustMutable()
	c.format = f
	c.formatExplicit = true
}

// SetNegotiatedFormat records the outcome of content negotiation.  It never
// replaces an explicit override.
func (c *Context) SetNegotiatedFormat(f Format) {
	c.mustMutable()
	if !c.formatExplicit {
		c.format = f
	}
}

// Format returns the effective format, or "" when none is set yet.
func (c *Context) Format() Format { return c.format }

// FormatExplicit reports whether the format was set by PutFormat.
func (c *Context) FormatExplicit() bool { return c.formatExplicit }

//
// layout
//

// PutLayout overrides the layout for this request.
func (c *Context) PutLayout(name string) {
	c.mustMutable()
	c.layout = name
	c.layoutOff = false
}

// DisableLayout renders templates bare for this request.
func (c *Context) DisableLayout() {
	c.mustMutable()
	c.layoutOff = true
}

// Layout returns (override, disabled).  An empty override means "use the
// dispatcher default".
func (c *Context) Layout() (string, bool) { return c.layout, c.layoutOff }

//
// status and headers
//

// PutStatus records a numeric status code.  Validity is checked at commit
// time only; setting is always accepted.
func (c *Context) PutStatus(code int) {
	c.mustMutable()
	c.status = code
	c.statusName = ""
}

// PutStatusName records a symbolic status such as "not_found".  Resolution
// and validation happen at commit time.
func (c *Context) PutStatusName(name string) {
	c.mustMutable()
	c.statusName = name
	c.status = 0
}

// Header returns the response header map.  Handlers should prefer PutHeader
// and AddHeader, which enforce the commit barrier.
func (c *Context) Header() http.Header { return c.respHeader }

// PutHeader sets (replaces) a response header.
func (c *Context) PutHeader(key, val string) {
	c.mustMutable()
	c.respHeader.Set(key, val)
}

// AddHeader appends a response header value.
func (c *Context) AddHeader(key, val string) {
	c.mustMutable()
	c.respHeader.Add(key, val)
}

//
// halt / commit state
//

// Halt stops the pipeline after the current stage without committing.
func (c *Context) Halt() {
	c.mustMutable()
	c.halted = true
}

// Halted reports whether Halt was called.
func (c *Context) Halted() bool { return c.halted }

// Committed reports whether a response has been finalized.
func (c *Context) Committed() bool { return c.committed }

// Status returns the committed status, or the pending numeric code before
// commit (0 when unset or symbolic).
func (c *Context) Status() int { return c.status }

// Body returns the committed body; nil before commit.
func (c *Context) Body() []byte { return c.body }
