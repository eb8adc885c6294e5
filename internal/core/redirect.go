// internal/core/redirect.go
//
// Redirect helpers with an explicit internal/external discriminator.
//
// Context
// -------
// Handlers say where a redirect goes by constructing a To with Internal()
// or External() — never by handing over a bare string for the core to
// sniff.  Internal destinations must be raw paths; a fully-qualified URL
// smuggled through the internal form is rejected with BadRedirectError
// rather than silently redirected, because the two forms carry different
// security weight (external redirects leave the site).
package core

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/yanizio/conduct/internal/metrics"
)

// To is a discriminated redirect destination.  Build with Internal or
// External; the zero value is invalid.
type To struct {
	dest     string
	external bool
	valid    bool
}

// Internal points a redirect at a path on this site, e.g. "/login".
func Internal(path string) To { return To{dest: path, valid: true} }

// External points a redirect at a fully-qualified http(s) URL.
func External(rawURL string) To { return To{dest: rawURL, external: true, valid: true} }

// BadRedirectError reports a destination that does not fit its declared
// form.
type BadRedirectError struct {
	Dest   string
	Reason string
}

func (e *BadRedirectError) Error() string {
	return fmt.Sprintf("core: bad redirect to %q: %s", e.Dest, e.Reason)
}

// Redirect sets the Location header and commits an empty body.  Status
// defaults to 302 unless the handler already put one.
func (c *Context) Redirect(to To) error {
	if c.committed {
		return ErrDoubleCommit
	}
	if !to.valid {
		return &BadRedirectError{Reason: "destination not built with Internal or External"}
	}

	if err := checkRedirect(to); err != nil {
		return err
	}

	if c.status == 0 && c.statusName == "" {
		c.status = http.StatusFound
	}
	c.respHeader.Set("Location", to.dest)
	if err := c.Commit(nil); err != nil {
		return err
	}
	metrics.RedirectsTotal.Inc()
	return nil
}

// checkRedirect enforces the form each constructor promises.
func checkRedirect(to To) error {
	u, err := url.Parse(to.dest)
	if err != nil {
		return &BadRedirectError{Dest: to.dest, Reason: "unparseable URL"}
	}

	if to.external {
		if u.Scheme != "http" && u.Scheme != "https" {
			return &BadRedirectError{Dest: to.dest, Reason: "external redirect requires an http(s) URL"}
		}
		if u.Host == "" {
			return &BadRedirectError{Dest: to.dest, Reason: "external redirect requires a host"}
		}
		return nil
	}

	if u.Scheme != "" || u.Host != "" {
		return &BadRedirectError{Dest: to.dest, Reason: "full URL passed to the internal-path form"}
	}
	if !strings.HasPrefix(to.dest, "/") {
		return &BadRedirectError{Dest: to.dest, Reason: "internal redirect requires a leading slash"}
	}
	return nil
}
