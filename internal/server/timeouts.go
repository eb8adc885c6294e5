// internal/server/timeouts.go
//
// HTTP server construction with hardened, config-driven timeouts.
//
// Production hardening recommends:
//
//   • ReadTimeout   – abort slow-loris headers
//   • WriteTimeout  – cap total response time
//   • IdleTimeout   – close keep-alives on idle clients
//
// The values come from the http section of conf/conduct.yaml; anything
// left unset falls back to the defaults below so a minimal config still
// gets a hardened server.

package server

import (
	"net/http"
	"time"
)

// Defaults applied to any Timeouts field left zero.
const (
	DefaultReadTimeout  = 10 * time.Second
	DefaultWriteTimeout = 15 * time.Second
	DefaultIdleTimeout  = 60 * time.Second
)

// Timeouts carries the per-connection deadlines.  The zero value means
// "use the defaults".
type Timeouts struct {
	Read  time.Duration
	Write time.Duration
	Idle  time.Duration
}

// withDefaults fills unset fields.
func (t Timeouts) withDefaults() Timeouts {
	if t.Read == 0 {
		t.Read = DefaultReadTimeout
	}
	if t.Write == 0 {
		t.Write = DefaultWriteTimeout
	}
	if t.Idle == 0 {
		t.Idle = DefaultIdleTimeout
	}
	return t
}

// New constructs an *http.Server with the given (or default) deadlines.
func New(addr string, handler http.Handler, t Timeouts) *http.Server {
	t = t.withDefaults()
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  t.Read,
		WriteTimeout: t.Write,
		IdleTimeout:  t.Idle,
	}
}
