// internal/render/format.go
//
// Format negotiation.
//
// Resolution order (first hit wins):
//
//  1. Explicit override set by the handler via Context.PutFormat.
//  2. The "_format" query parameter.
//  3. The request's Accept header.
//  4. The controller's default (html when accepted, else its first
//     declared format).
//
// The query parameter deliberately beats the Accept header: a link can
// force a representation regardless of what the browser advertises.
// Request-driven candidates (2 and 3) must sit inside the controller's
// accepted set or negotiation fails with UnsupportedFormatError — never a
// silent downgrade.  An explicit handler override is the author's own
// act and is trusted as such.
package render

import (
	"fmt"
	"strings"

	"github.com/yanizio/conduct/internal/core"
)

// FormatParam is the query parameter consulted during negotiation.
const FormatParam = "_format"

// UnsupportedFormatError is the 406-equivalent structured error.
type UnsupportedFormatError struct {
	Format   core.Format
	Accepted []core.Format
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("render: format %q not in accepted set %v", e.Format, e.Accepted)
}

// mimeFormats maps Accept-header media types to formats.
var mimeFormats = map[string]core.Format{
	"text/html":             core.FormatHTML,
	"application/xhtml+xml": core.FormatHTML,
	"application/json":      core.FormatJSON,
	"text/plain":            core.FormatText,
	"text/xml":              core.FormatXML,
	"application/xml":       core.FormatXML,
}

// Negotiate resolves the effective format for the request and records it
// on the Context.  It is exposed as a pipeline stage through
// NegotiateStage.
func (d *Dispatcher) Negotiate(c *core.Context) (core.Format, error) {
	if c.FormatExplicit() {
		return c.Format(), nil
	}

	if q := c.Query.Get(FormatParam); q != "" {
		f := core.Format(q)
		if !d.accepts(f) {
			return "", &UnsupportedFormatError{Format: f, Accepted: d.accepted}
		}
		c.SetNegotiatedFormat(f)
		return f, nil
	}

	if f, ok := d.fromAccept(c.ReqHeader.Get("Accept")); ok {
		if !d.accepts(f) {
			return "", &UnsupportedFormatError{Format: f, Accepted: d.accepted}
		}
		c.SetNegotiatedFormat(f)
		return f, nil
	}

	f := d.defaultFormat()
	c.SetNegotiatedFormat(f)
	return f, nil
}

// fromAccept scans a comma-separated Accept header for the first media
// type we can map.  Quality parameters are ignored; order expresses
// preference well enough for a controller core.
func (d *Dispatcher) fromAccept(accept string) (core.Format, bool) {
	for _, part := range strings.Split(accept, ",") {
		mt := strings.TrimSpace(part)
		if i := strings.IndexByte(mt, ';'); i != -1 {
			mt = strings.TrimSpace(mt[:i])
		}
		if mt == "" || mt == "*/*" {
			continue
		}
		if f, ok := mimeFormats[mt]; ok {
			return f, true
		}
	}
	return "", false
}

func (d *Dispatcher) accepts(f core.Format) bool {
	for _, a := range d.accepted {
		if a == f {
			return true
		}
	}
	return false
}

// defaultFormat prefers html, falling back to the first declared format
// for controllers that do not speak html at all.
func (d *Dispatcher) defaultFormat() core.Format {
	if d.accepts(core.FormatHTML) || len(d.accepted) == 0 {
		return core.FormatHTML
	}
	return d.accepted[0]
}
