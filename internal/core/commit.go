// internal/core/commit.go
//
// Response Finalizer: the one-time, irreversible act of committing a
// response.
//
// Context
// -------
// Exactly one commit happens per request, no matter which path produced
// it — an explicit render, a redirect, or the auto-render stage.  Commit
// resolves and validates the pending status (defaulting to 200), freezes
// the Context, and records the body.  A second commit attempt returns
// ErrDoubleCommit; mutators on a committed Context panic with the same
// sentinel so the transport's recover middleware can surface a 500.
//
// Status validity is deliberately checked here rather than in PutStatus:
// setting is always accepted, and a bad code only becomes an error when
// the response is actually produced.
package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrDoubleCommit signals a second finalization, or any mutation after the
// first.  It is a programming error, never a client-visible condition.
var ErrDoubleCommit = errors.New("core: response already committed")

// InvalidStatusError reports a status outside the recognized table,
// detected at commit time.
type InvalidStatusError struct {
	Code int    // set when a numeric code was pending
	Name string // set when a symbolic name was pending
}

func (e *InvalidStatusError) Error() string {
	if e.Name != "" {
		return fmt.Sprintf("core: unknown status name %q", e.Name)
	}
	return fmt.Sprintf("core: unrecognized status code %d", e.Code)
}

// Commit finalizes the response with the given body.  On success the
// Context is frozen: Status, Header, and Body become read-only facts for
// the transport to write out.
func (c *Context) Commit(body []byte) error {
	if c.committed {
		return ErrDoubleCommit
	}

	code, err := c.resolveStatus()
	if err != nil {
		return err
	}

	c.status = code
	c.statusName = ""
	c.body = body
	c.committed = true
	return nil
}

// resolveStatus turns the pending status into a validated numeric code.
func (c *Context) resolveStatus() (int, error) {
	if c.statusName != "" {
		code, ok := StatusFromName(c.statusName)
		if !ok {
			return 0, &InvalidStatusError{Name: c.statusName}
		}
		return code, nil
	}
	if c.status == 0 {
		return http.StatusOK, nil
	}
	if !StatusRecognized(c.status) {
		return 0, &InvalidStatusError{Code: c.status}
	}
	return c.status, nil
}
