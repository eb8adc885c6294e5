// internal/controller/controller_test.go

package controller

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/yanizio/conduct/internal/core"
	"github.com/yanizio/conduct/internal/flash"
	"github.com/yanizio/conduct/internal/render"
)

// echoTemplate writes its own name so tests can see which template ran.
type echoTemplate struct{ name string }

func (e *echoTemplate) Execute(w io.Writer, _ map[string]any) error {
	_, err := io.WriteString(w, e.name)
	return err
}

type mapResolver map[string]render.Template

func (m mapResolver) Resolve(key render.Key) (render.Template, error) {
	if t, ok := m[key.String()]; ok {
		return t, nil
	}
	return nil, errors.New("no such template")
}

func testDispatcher(templates map[string]render.Template) *render.Dispatcher {
	return render.New(mapResolver(templates), render.Config{
		Controller: "widgets",
		Accepted:   []core.Format{core.FormatHTML},
	})
}

func noop(*core.Context) error { return nil }

func newCtx() *core.Context {
	return core.New(context.Background(), http.MethodGet, "/widgets")
}

func TestNewValidation(t *testing.T) {
	disp := testDispatcher(nil)

	cases := []struct {
		label string
		cfg   Config
		want  string
	}{
		{"empty name", Config{Dispatcher: disp, Actions: map[string]ActionFunc{"index": noop}}, "empty name"},
		{"nil dispatcher", Config{Name: "w", Actions: map[string]ActionFunc{"index": noop}}, "nil dispatcher"},
		{"no actions", Config{Name: "w", Dispatcher: disp}, "no actions"},
		{"nil action", Config{Name: "w", Dispatcher: disp, Actions: map[string]ActionFunc{"index": nil}}, "is nil"},
		{"unknown auto-render", Config{Name: "w", Dispatcher: disp,
			Actions: map[string]ActionFunc{"index": noop}, AutoRender: []string{"missing"}}, "unknown action"},
		{"plug only and except", Config{Name: "w", Dispatcher: disp,
			Actions: map[string]ActionFunc{"index": noop},
			Plugs:   []Plug{{Name: "p", Func: noop, Only: []string{"index"}, Except: []string{"index"}}}}, "both Only and Except"},
		{"plug unknown action", Config{Name: "w", Dispatcher: disp,
			Actions: map[string]ActionFunc{"index": noop},
			Plugs:   []Plug{{Name: "p", Func: noop, Only: []string{"missing"}}}}, "unknown action"},
	}
	for _, tc := range cases {
		_, err := New(tc.cfg)
		if err == nil || !strings.Contains(err.Error(), tc.want) {
			t.Fatalf("%s: err = %v, want substring %q", tc.label, err, tc.want)
		}
	}
}

func TestServeUnknownAction(t *testing.T) {
	ct, err := New(Config{
		Name:       "widgets",
		Dispatcher: testDispatcher(nil),
		Actions:    map[string]ActionFunc{"index": noop},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	err = ct.Serve(newCtx(), "destroy")
	var ua *UnknownActionError
	if !errors.As(err, &ua) || ua.Action != "destroy" {
		t.Fatalf("err = %v, want UnknownActionError{destroy}", err)
	}
}

func TestAutoRenderCoversListedActionsOnly(t *testing.T) {
	disp := testDispatcher(map[string]render.Template{
		"widgets/index.html": &echoTemplate{name: "auto-index"},
	})
	ct, err := New(Config{
		Name:       "widgets",
		Dispatcher: disp,
		Actions: map[string]ActionFunc{
			"index": noop,
			"ping": func(c *core.Context) error {
				c.PutHeader("Content-Type", "text/plain; charset=utf-8")
				return c.Commit([]byte("pong"))
			},
		},
		AutoRender: []string{"index"},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c := newCtx()
	if err := ct.Serve(c, "index"); err != nil {
		t.Fatalf("Serve(index): %v", err)
	}
	if got := string(c.Body()); got != "auto-index" {
		t.Fatalf("index body = %q", got)
	}

	c = newCtx()
	if err := ct.Serve(c, "ping"); err != nil {
		t.Fatalf("Serve(ping): %v", err)
	}
	if got := string(c.Body()); got != "pong" {
		t.Fatalf("ping body = %q, auto-render must not run for unlisted actions", got)
	}
}

func TestPlugOrderingAndPredicates(t *testing.T) {
	var ran []string
	// The unnamed return type satisfies both ActionFunc and pipeline.Func.
	mark := func(name string) func(*core.Context) error {
		return func(*core.Context) error {
			ran = append(ran, name)
			return nil
		}
	}
	ct, err := New(Config{
		Name:       "widgets",
		Dispatcher: testDispatcher(nil),
		Actions: map[string]ActionFunc{
			"index": mark("action:index"),
			"show":  mark("action:show"),
		},
		Plugs: []Plug{
			{Name: "first", Func: mark("first")},
			{Name: "only_show", Func: mark("only_show"), Only: []string{"show"}},
			{Name: "not_show", Func: mark("not_show"), Except: []string{"show"}},
		},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := ct.Serve(newCtx(), "show"); err != nil {
		t.Fatalf("Serve(show): %v", err)
	}
	want := []string{"first", "only_show", "action:show"}
	if len(ran) != len(want) {
		t.Fatalf("ran = %v, want %v", ran, want)
	}
	for i := range want {
		if ran[i] != want[i] {
			t.Fatalf("ran = %v, want %v", ran, want)
		}
	}

	ran = nil
	if err := ct.Serve(newCtx(), "index"); err != nil {
		t.Fatalf("Serve(index): %v", err)
	}
	want = []string{"first", "not_show", "action:index"}
	for i := range want {
		if i >= len(ran) || ran[i] != want[i] {
			t.Fatalf("ran = %v, want %v", ran, want)
		}
	}
}

func TestFlashHydratedBeforePlugs(t *testing.T) {
	var sawFlash bool
	ct, err := New(Config{
		Name:       "widgets",
		Dispatcher: testDispatcher(nil),
		Actions:    map[string]ActionFunc{"index": noop},
		Plugs: []Plug{{Name: "check", Func: func(c *core.Context) error {
			if c.Flash != nil {
				_, sawFlash = c.Flash.Get("info")
			}
			return nil
		}}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	c := newCtx()
	c.ReplaceSession(map[string]any{
		flash.SessionKey: map[string][]string{"info": {"saved"}},
	})
	if err := ct.Serve(c, "index"); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if !sawFlash {
		t.Fatalf("plug did not see a hydrated flash store")
	}
}

func TestHaltInPlugSkipsAction(t *testing.T) {
	var dispatched bool
	ct, err := New(Config{
		Name:       "widgets",
		Dispatcher: testDispatcher(nil),
		Actions: map[string]ActionFunc{
			"index": func(*core.Context) error {
				dispatched = true
				return nil
			},
		},
		Plugs: []Plug{{Name: "gate", Func: func(c *core.Context) error {
			c.Halt()
			return nil
		}}},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	if err := ct.Serve(newCtx(), "index"); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	if dispatched {
		t.Fatalf("action ran after a plug halted the pipeline")
	}
}

func TestRegistry(t *testing.T) {
	ct, err := New(Config{
		Name:       "registry_probe",
		Dispatcher: testDispatcher(nil),
		Actions:    map[string]ActionFunc{"index": noop},
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	Register(ct)
	if got := Lookup("registry_probe"); got != ct {
		t.Fatalf("Lookup after Register = %v", got)
	}
	if got := Lookup("never_registered"); got != nil {
		t.Fatalf("Lookup returned a controller that was never registered: %v", got)
	}
}
