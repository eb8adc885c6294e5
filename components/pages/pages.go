// components/pages/pages.go
//
// Pages Component – the reference controller wiring.
//
// It exercises every pipeline path the core offers: an auto-rendered
// action, a manual render with an explicit template, flash put + persist
// across a redirect, internal and external redirects, and a guard plug
// that halts unauthenticated requests to the admin action.
package pages

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/yanizio/conduct/internal/controller"
	"github.com/yanizio/conduct/internal/core"
	"github.com/yanizio/conduct/internal/render"
	"github.com/yanizio/conduct/internal/requestinfo"
	"github.com/yanizio/conduct/internal/webserve"
)

// Component owns the pages controller and its dispatcher.
type Component struct {
	ctl  *controller.Controller
	disp *render.Dispatcher
}

// New builds the component against the given template resolver and view
// settings, and registers its controller.
func New(resolver render.Resolver, formats []core.Format, defaultLayout string) (*Component, error) {
	comp := &Component{}
	comp.disp = render.New(resolver, render.Config{
		Controller:    "pages",
		Accepted:      formats,
		DefaultLayout: defaultLayout,
	})

	ctl, err := controller.New(controller.Config{
		Name:       "pages",
		Dispatcher: comp.disp,
		Actions: map[string]controller.ActionFunc{
			"index":   comp.index,
			"show":    comp.show,
			"contact": comp.contact,
			"submit":  comp.submit,
			"away":    comp.away,
			"admin":   comp.admin,
		},
		Plugs: []controller.Plug{
			{Name: "client_info", Func: requestinfo.Stage()},
			{Name: "require_login", Func: requireLogin, Only: []string{"admin"}},
		},
		// index and admin rely on the terminal auto-render stage; the
		// rest commit for themselves.
		AutoRender: []string{"index", "admin"},
	})
	if err != nil {
		return nil, err
	}

	comp.ctl = ctl
	controller.Register(ctl)
	return comp, nil
}

// Routes mounts the controller's actions through the transport adapter.
func (comp *Component) Routes(a *webserve.Adapter) chi.Router {
	r := chi.NewRouter()
	r.Get("/", a.Action(comp.ctl, "index"))
	r.Get("/pages/{slug}", a.Action(comp.ctl, "show"))
	r.Get("/contact", a.Action(comp.ctl, "contact"))
	r.Post("/contact", a.Action(comp.ctl, "submit"))
	r.Get("/away", a.Action(comp.ctl, "away"))
	r.Get("/admin", a.Action(comp.ctl, "admin"))
	return r
}

//
// actions
//

// index leaves rendering to the auto-render stage.
func (comp *Component) index(c *core.Context) error {
	c.Assign("title", "Welcome")
	return nil
}

// show renders manually with an explicit template name, so the
// auto-render stage must be configured to skip it.
func (comp *Component) show(c *core.Context) error {
	c.Assign("slug", c.Params["slug"])
	return comp.disp.Render(c, "show", nil)
}

// contact renders the form, surfacing any flash left by submit.
func (comp *Component) contact(c *core.Context) error {
	return comp.disp.Render(c, "contact", map[string]any{
		"notices": c.Flash.GetAll("info"),
	})
}

// submit records a flash message, persists it across the redirect, and
// bounces back to the form.
func (comp *Component) submit(c *core.Context) error {
	c.Flash.Put("info", "Thanks, we got your message.")
	c.Flash.Persist("info")
	return c.Redirect(core.Internal("/contact"))
}

// away demonstrates the external redirect form.
func (comp *Component) away(c *core.Context) error {
	return c.Redirect(core.External("https://example.com/"))
}

// admin is auto-rendered; the require_login plug guards it.
func (comp *Component) admin(c *core.Context) error {
	user, _ := c.Session()["user"].(string)
	c.Assign("user", user)
	return nil
}

//
// plugs
//

// requireLogin halts anonymous requests with a redirect to the form.
func requireLogin(c *core.Context) error {
	if _, ok := c.Session()["user"].(string); ok {
		return nil
	}
	c.Flash.Put("info", "Please sign in first.")
	c.Flash.Persist("info")
	c.PutStatus(http.StatusSeeOther)
	return c.Redirect(core.Internal("/contact"))
}
