// internal/render/render_test.go
//
// Unit-tests for the dispatcher, using an in-memory resolver so no disk
// or real templating engine is involved.

package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"net/http"
	"strings"
	"testing"

	"github.com/yanizio/conduct/internal/core"
	"github.com/yanizio/conduct/internal/flash"
)

// fakeTemplate renders "<name>{assign,…}" so tests can assert both which
// template ran and what data it saw.
type fakeTemplate struct {
	name string
	keys []string // assigns to echo, in order
}

func (f *fakeTemplate) Execute(w io.Writer, data map[string]any) error {
	parts := make([]string, 0, len(f.keys))
	for _, k := range f.keys {
		parts = append(parts, fmt.Sprintf("%v", data[k]))
	}
	_, err := fmt.Fprintf(w, "<%s>%s", f.name, strings.Join(parts, ","))
	return err
}

// fakeResolver records every lookup.
type fakeResolver struct {
	templates map[string]*fakeTemplate
	calls     []string
}

func (r *fakeResolver) Resolve(key Key) (Template, error) {
	r.calls = append(r.calls, key.String())
	if t, ok := r.templates[key.String()]; ok {
		return t, nil
	}
	return nil, fs.ErrNotExist
}

func newDispatcher(t *testing.T, res *fakeResolver, layout string) *Dispatcher {
	t.Helper()
	return New(res, Config{
		Controller:    "pages",
		Accepted:      []core.Format{core.FormatHTML, core.FormatText},
		DefaultLayout: layout,
	})
}

func newCtx() *core.Context {
	c := core.New(context.Background(), http.MethodGet, "/")
	c.Action = "index"
	return c
}

func TestRenderDefaultFormatWithLayout(t *testing.T) {
	res := &fakeResolver{templates: map[string]*fakeTemplate{
		"pages/index.html": {name: "index", keys: []string{"title"}},
		"layouts/app.html": {name: "layout", keys: []string{"content"}},
	}}
	d := newDispatcher(t, res, "app")

	c := newCtx()
	c.Assign("title", "Welcome")
	if err := d.Render(c, "index", nil); err != nil {
		t.Fatalf("Render: %v", err)
	}

	if got := string(c.Body()); got != "<layout><index>Welcome" {
		t.Fatalf("body = %q", got)
	}
	if c.Status() != http.StatusOK {
		t.Fatalf("status = %d, want 200", c.Status())
	}
	if ct := c.Header().Get("Content-Type"); ct != "text/html; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
	if !c.Committed() {
		t.Fatalf("render did not commit")
	}
}

func TestRenderMergesCallAssignsOverContext(t *testing.T) {
	res := &fakeResolver{templates: map[string]*fakeTemplate{
		"pages/index.html": {name: "index", keys: []string{"title"}},
	}}
	d := newDispatcher(t, res, "")

	c := newCtx()
	c.Assign("title", "from-context")
	if err := d.Render(c, "index", map[string]any{"title": "from-call"}); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := string(c.Body()); got != "<index>from-call" {
		t.Fatalf("body = %q, call assigns must win", got)
	}
}

func TestRenderExplicitNameAndFormat(t *testing.T) {
	res := &fakeResolver{templates: map[string]*fakeTemplate{
		"pages/show.html": {name: "show"},
	}}
	d := newDispatcher(t, res, "")

	c := newCtx()
	c.Action = "show"
	if err := d.Render(c, "show.html", nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := string(c.Body()); got != "<show>" {
		t.Fatalf("body = %q", got)
	}
}

func TestUnsupportedFormatFailsBeforeLookup(t *testing.T) {
	res := &fakeResolver{templates: map[string]*fakeTemplate{}}
	d := newDispatcher(t, res, "")

	c := newCtx()
	c.Query.Set(FormatParam, "xml")

	err := d.Render(c, "index", nil)
	var uf *UnsupportedFormatError
	if !errors.As(err, &uf) || uf.Format != core.FormatXML {
		t.Fatalf("err = %v, want UnsupportedFormatError{xml}", err)
	}
	if len(res.calls) != 0 {
		t.Fatalf("resolver consulted despite unsupported format: %v", res.calls)
	}
	if c.Committed() {
		t.Fatalf("failed render committed")
	}
}

func TestTemplateMissNamesKey(t *testing.T) {
	res := &fakeResolver{templates: map[string]*fakeTemplate{}}
	d := newDispatcher(t, res, "")

	c := newCtx()
	err := d.Render(c, "index", nil)
	var nf *TemplateNotFoundError
	if !errors.As(err, &nf) {
		t.Fatalf("err = %v, want TemplateNotFoundError", err)
	}
	if nf.Key.String() != "pages/index.html" {
		t.Fatalf("key = %s", nf.Key)
	}
}

func TestDoubleRender(t *testing.T) {
	res := &fakeResolver{templates: map[string]*fakeTemplate{
		"pages/index.html": {name: "index"},
	}}
	d := newDispatcher(t, res, "")

	c := newCtx()
	if err := d.Render(c, "index", nil); err != nil {
		t.Fatalf("first Render: %v", err)
	}
	if err := d.Render(c, "index", nil); !errors.Is(err, core.ErrDoubleCommit) {
		t.Fatalf("second Render = %v, want ErrDoubleCommit", err)
	}
}

func TestLayoutSkippedForNonHTML(t *testing.T) {
	res := &fakeResolver{templates: map[string]*fakeTemplate{
		"pages/index.text": {name: "index"},
		"layouts/app.text": {name: "layout"},
	}}
	d := newDispatcher(t, res, "app")

	c := newCtx()
	c.Query.Set(FormatParam, "text")
	if err := d.Render(c, "index", nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := string(c.Body()); got != "<index>" {
		t.Fatalf("body = %q, text must render bare", got)
	}
	if ct := c.Header().Get("Content-Type"); ct != "text/plain; charset=utf-8" {
		t.Fatalf("content type = %q", ct)
	}
}

func TestDisableLayout(t *testing.T) {
	res := &fakeResolver{templates: map[string]*fakeTemplate{
		"pages/index.html": {name: "index"},
	}}
	d := newDispatcher(t, res, "app")

	c := newCtx()
	c.DisableLayout()
	if err := d.Render(c, "index", nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if got := string(c.Body()); got != "<index>" {
		t.Fatalf("body = %q", got)
	}
}

func TestFlashExposedToTemplates(t *testing.T) {
	res := &fakeResolver{templates: map[string]*fakeTemplate{
		"pages/index.html": {name: "index", keys: []string{"flash"}},
	}}
	d := newDispatcher(t, res, "")

	c := newCtx()
	c.Flash = flash.New()
	c.Flash.Put("info", "hello")
	if err := d.Render(c, "index", nil); err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(string(c.Body()), "hello") {
		t.Fatalf("body = %q, want flash message rendered", c.Body())
	}
}
