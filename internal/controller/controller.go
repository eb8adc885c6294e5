// internal/controller/controller.go
//
// Controller registration: a named, enumerable action map plus the static
// stage pipeline every request to the controller runs through.
//
// Context
// -------
// A Controller is built exactly once from a Config and is read-only
// afterwards.  Construction validates everything that can fail fast —
// empty action maps, nil action funcs, and plug or auto-render lists that
// reference action names the controller does not define — so a typo in
// wiring dies at boot, not on the first unlucky request.
//
// The built-in chain is:
//
//	negotiate → flash → <declared plugs> → dispatch → auto_render
//
// Dispatch and auto-render are ordinary stages; auto_render carries an
// Only predicate over Config.AutoRender, so actions that render or
// redirect manually are skipped entirely.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package controller

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/yanizio/conduct/internal/core"
	"github.com/yanizio/conduct/internal/flash"
	"github.com/yanizio/conduct/internal/metrics"
	"github.com/yanizio/conduct/internal/pipeline"
	"github.com/yanizio/conduct/internal/render"
)

// ActionFunc is one handler bound to a (controller, action) pair.
type ActionFunc func(*core.Context) error

// Plug declares one extra pipeline stage, inserted between flash
// hydration and dispatch in declaration order.  Only and Except are
// mutually exclusive; both empty means the plug runs for every action.
type Plug struct {
	Name   string
	Func   pipeline.Func
	Only   []string
	Except []string
}

// Config declares a controller.  All fields are read at New time only.
type Config struct {
	Name       string
	Dispatcher *render.Dispatcher
	Actions    map[string]ActionFunc
	Plugs      []Plug

	// AutoRender lists the actions the terminal auto-render stage covers.
	// Empty disables the stage; every listed action must exist.
	AutoRender []string
}

// UnknownActionError reports a dispatch for an action the controller does
// not define.  Routers that only mount registered actions never see it.
type UnknownActionError struct {
	Controller string
	Action     string
}

func (e *UnknownActionError) Error() string {
	return fmt.Sprintf("controller %s: unknown action %q", e.Controller, e.Action)
}

// Controller is an immutable action map plus its pipeline.
type Controller struct {
	name    string
	actions map[string]ActionFunc
	pipe    *pipeline.Pipeline
}

// New validates cfg and freezes the pipeline.
func New(cfg Config) (*Controller, error) {
	if cfg.Name == "" {
		return nil, fmt.Errorf("controller: empty name")
	}
	if cfg.Dispatcher == nil {
		return nil, fmt.Errorf("controller %s: nil dispatcher", cfg.Name)
	}
	if len(cfg.Actions) == 0 {
		return nil, fmt.Errorf("controller %s: no actions", cfg.Name)
	}
	for name, fn := range cfg.Actions {
		if name == "" {
			return nil, fmt.Errorf("controller %s: empty action name", cfg.Name)
		}
		if fn == nil {
			return nil, fmt.Errorf("controller %s: action %q is nil", cfg.Name, name)
		}
	}
	for _, a := range cfg.AutoRender {
		if _, ok := cfg.Actions[a]; !ok {
			return nil, fmt.Errorf("controller %s: auto-render lists unknown action %q", cfg.Name, a)
		}
	}

	ct := &Controller{name: cfg.Name, actions: cfg.Actions}

	b := pipeline.NewBuilder()
	b.Register("negotiate", cfg.Dispatcher.NegotiateStage())
	b.Register("flash", hydrateFlash)

	for _, p := range cfg.Plugs {
		pred, err := plugPredicate(cfg, p)
		if err != nil {
			return nil, err
		}
		b.RegisterIf(p.Name, p.Func, pred)
	}

	b.Register("dispatch", ct.dispatch)

	if len(cfg.AutoRender) > 0 {
		b.RegisterIf("auto_render", cfg.Dispatcher.AutoRenderStage(), pipeline.Only(cfg.AutoRender...))
	}

	ct.pipe = b.Build()
	return ct, nil
}

// plugPredicate turns a Plug's Only/Except lists into a predicate,
// validating every referenced action.
func plugPredicate(cfg Config, p Plug) (pipeline.Predicate, error) {
	if p.Name == "" {
		return nil, fmt.Errorf("controller %s: plug with empty name", cfg.Name)
	}
	if p.Func == nil {
		return nil, fmt.Errorf("controller %s: plug %q has a nil func", cfg.Name, p.Name)
	}
	if len(p.Only) > 0 && len(p.Except) > 0 {
		return nil, fmt.Errorf("controller %s: plug %q sets both Only and Except", cfg.Name, p.Name)
	}
	for _, a := range append(append([]string{}, p.Only...), p.Except...) {
		if _, ok := cfg.Actions[a]; !ok {
			return nil, fmt.Errorf("controller %s: plug %q references unknown action %q", cfg.Name, p.Name, a)
		}
	}
	switch {
	case len(p.Only) > 0:
		return pipeline.Only(p.Only...), nil
	case len(p.Except) > 0:
		return pipeline.Except(p.Except...), nil
	}
	return nil, nil
}

// Name returns the controller name.
func (ct *Controller) Name() string { return ct.name }

// Actions returns the defined action names, for router mounting.
func (ct *Controller) Actions() []string {
	out := make([]string, 0, len(ct.actions))
	for a := range ct.actions {
		out = append(out, a)
	}
	return out
}

// Serve runs the pipeline for one request.  The Context's session must
// already be hydrated by the transport.
func (ct *Controller) Serve(c *core.Context, action string) error {
	if _, ok := ct.actions[action]; !ok {
		return &UnknownActionError{Controller: ct.name, Action: action}
	}

	c.Action = action
	metrics.RequestsTotal.WithLabelValues(ct.name, action).Inc()

	if err := ct.pipe.Run(c, action); err != nil {
		zap.S().Errorw("pipeline failed",
			"controller", ct.name, "action", action, "err", err)
		return err
	}
	return nil
}

// hydrateFlash builds the request's flash store from the session.
func hydrateFlash(c *core.Context) error {
	c.Flash = flash.Hydrate(c.Session())
	return nil
}

// dispatch invokes the resolved action.
func (ct *Controller) dispatch(c *core.Context) error {
	return ct.actions[c.Action](c)
}
