// internal/render/render.go
//
// Render Dispatcher: resolves (controller, template-or-action, format) to
// a template through an injected Resolver, merges assigns, applies the
// layout, and commits the response.
//
// Context
// -------
// The dispatcher owns none of the templating language — it talks to a
// Resolver (see internal/view for the html/template-backed one) and to
// the core Finalizer.  Resolution is deterministic and total: a miss is a
// *TemplateNotFoundError naming the attempted key, never a silent
// fallback.
//
// Layouts wrap the inner body through the reserved "content" assign; the
// view engine's layout templates emit it with {{ raw .content }}.  By
// default only html responses are wrapped — a JSON body inside a chrome
// layout is never what anyone meant — but an explicit PutLayout override
// wraps whatever format is active.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package render

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/yanizio/conduct/internal/core"
	"github.com/yanizio/conduct/internal/metrics"
	"github.com/yanizio/conduct/internal/pipeline"
)

// LayoutScope is the pseudo-controller layouts resolve under.
const LayoutScope = "layouts"

// Key locates one template resource.
type Key struct {
	Controller string
	Template   string
	Format     core.Format
}

func (k Key) String() string {
	return fmt.Sprintf("%s/%s.%s", k.Controller, k.Template, k.Format)
}

// Template is one resolved, executable template.
type Template interface {
	Execute(w io.Writer, data map[string]any) error
}

// Resolver is the injected template-resolution collaborator.  A miss must
// be reported as an error (any error; the dispatcher wraps it).
type Resolver interface {
	Resolve(key Key) (Template, error)
}

// TemplateNotFoundError names the resolution key that missed.
type TemplateNotFoundError struct {
	Key Key
	Err error
}

func (e *TemplateNotFoundError) Error() string {
	return fmt.Sprintf("render: no template for %s: %v", e.Key, e.Err)
}

func (e *TemplateNotFoundError) Unwrap() error { return e.Err }

// Config declares a controller's rendering surface.
type Config struct {
	Controller    string        // template namespace, e.g. "pages"
	Accepted      []core.Format // declared capability set
	DefaultLayout string        // "" disables layouts entirely
}

// Dispatcher renders responses for one controller.  Built once, shared
// read-only across requests.
type Dispatcher struct {
	resolver      Resolver
	controller    string
	accepted      []core.Format
	defaultLayout string
}

// New builds a Dispatcher.  Panics on a missing resolver or controller
// name; those are wiring mistakes, not runtime conditions.
func New(resolver Resolver, cfg Config) *Dispatcher {
	if resolver == nil {
		panic("render: nil resolver")
	}
	if cfg.Controller == "" {
		panic("render: empty controller name")
	}
	return &Dispatcher{
		resolver:      resolver,
		controller:    cfg.Controller,
		accepted:      append([]core.Format(nil), cfg.Accepted...),
		defaultLayout: cfg.DefaultLayout,
	}
}

// Accepted returns the declared format set.
func (d *Dispatcher) Accepted() []core.Format {
	return append([]core.Format(nil), d.accepted...)
}

// Render resolves and executes the named template, wraps it in the active
// layout, and commits the response.
//
// name is either bare ("show", format comes from negotiation) or carries
// an explicit extension ("show.html") that fixes the format for this call.
func (d *Dispatcher) Render(c *core.Context, name string, assigns map[string]any) error {
	if c.Committed() {
		return core.ErrDoubleCommit
	}

	base, format, err := d.splitName(c, name)
	if err != nil {
		return err
	}

	data := make(map[string]any, len(c.Assigns())+len(assigns)+1)
	for k, v := range c.Assigns() {
		data[k] = v
	}
	for k, v := range assigns {
		data[k] = v
	}
	if c.Flash != nil {
		data["flash"] = c.Flash
	}

	key := Key{Controller: d.controller, Template: base, Format: format}
	tpl, err := d.resolver.Resolve(key)
	if err != nil {
		metrics.RenderErrorsTotal.Inc()
		return &TemplateNotFoundError{Key: key, Err: err}
	}

	var body bytes.Buffer
	if err := tpl.Execute(&body, data); err != nil {
		metrics.RenderErrorsTotal.Inc()
		return fmt.Errorf("render: execute %s: %w", key, err)
	}

	out, err := d.applyLayout(c, format, body.Bytes(), data)
	if err != nil {
		metrics.RenderErrorsTotal.Inc()
		return err
	}

	c.PutHeader("Content-Type", format.ContentType())
	if err := c.Commit(out); err != nil {
		return err
	}

	metrics.RendersTotal.WithLabelValues(string(format)).Inc()
	zap.S().Debugw("rendered", "key", key.String(), "layout", d.layoutFor(c, format), "bytes", len(out))
	return nil
}

// splitName separates an optional ".format" suffix and negotiates when
// the name is bare.  The unsupported-format check fires here, before any
// template lookup.
func (d *Dispatcher) splitName(c *core.Context, name string) (string, core.Format, error) {
	if i := strings.LastIndexByte(name, '.'); i > 0 && i < len(name)-1 {
		return name[:i], core.Format(name[i+1:]), nil
	}
	format, err := d.Negotiate(c)
	if err != nil {
		return "", "", err
	}
	return name, format, nil
}

// layoutFor returns the layout name in force, or "" for a bare render.
func (d *Dispatcher) layoutFor(c *core.Context, format core.Format) string {
	override, off := c.Layout()
	if off {
		return ""
	}
	if override != "" {
		return override
	}
	if format != core.FormatHTML {
		return ""
	}
	return d.defaultLayout
}

// applyLayout wraps body in the active layout, passing the inner markup
// through the reserved "content" assign.
func (d *Dispatcher) applyLayout(c *core.Context, format core.Format, body []byte, data map[string]any) ([]byte, error) {
	layout := d.layoutFor(c, format)
	if layout == "" {
		return body, nil
	}

	key := Key{Controller: LayoutScope, Template: layout, Format: format}
	tpl, err := d.resolver.Resolve(key)
	if err != nil {
		return nil, &TemplateNotFoundError{Key: key, Err: err}
	}

	wrapped := make(map[string]any, len(data)+1)
	for k, v := range data {
		wrapped[k] = v
	}
	wrapped["content"] = string(body)

	var out bytes.Buffer
	if err := tpl.Execute(&out, wrapped); err != nil {
		return nil, fmt.Errorf("render: execute layout %s: %w", key, err)
	}
	return out.Bytes(), nil
}

//
// pipeline stages
//

// NegotiateStage resolves the format early so every later stage sees it.
func (d *Dispatcher) NegotiateStage() pipeline.Func {
	return func(c *core.Context) error {
		_, err := d.Negotiate(c)
		return err
	}
}

// AutoRenderStage renders "<action>.<format>" for actions that did not
// commit a response themselves.  Register it with a predicate so actions
// needing manual control are skipped, not merely no-opped.
func (d *Dispatcher) AutoRenderStage() pipeline.Func {
	return func(c *core.Context) error {
		return d.Render(c, c.Action, nil)
	}
}
