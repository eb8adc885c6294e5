// internal/view/resolver.go
//
// Disk-backed template resolver: the concrete engine behind the render
// dispatcher's Resolver interface.
//
// Layout on disk
// --------------
//
//	templates/<controller>/<name>.<format>.tmpl
//	templates/layouts/<name>.<format>.tmpl
//
// All templates sharing a controller directory and format are parsed as
// one set, so {{ template "row" . }} sub-templates work out-of-the-box.
// Parsed sets live in an LRU keyed by (controller, name, format); tweak
// the capacity when perf-testing.
//
// html templates go through html/template for contextual escaping; every
// other format uses text/template.  Layout templates emit the wrapped
// body with {{ raw .content }}.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package view

import (
	"fmt"
	htmltpl "html/template"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	texttpl "text/template"

	"github.com/yanizio/conduct/internal/cache"
	"github.com/yanizio/conduct/internal/core"
	"github.com/yanizio/conduct/internal/render"
)

// Resolver loads templates from a root directory.  Safe for concurrent
// use; the LRU serializes internally.
type Resolver struct {
	root string
	lru  *cache.LRU
}

// New returns a Resolver rooted at dir (typically "templates").
func New(dir string) *Resolver {
	return &Resolver{root: dir, lru: cache.New(1024)}
}

// executable adapts both template flavors to render.Template.
type executable struct {
	exec func(w io.Writer, name string, data any) error
	name string
}

func (e *executable) Execute(w io.Writer, data map[string]any) error {
	return e.exec(w, e.name, data)
}

// Resolve loads (or fetches from cache) the template for key.  A missing
// file surfaces as fs.ErrNotExist, which the dispatcher wraps into its
// TemplateNotFoundError.
func (r *Resolver) Resolve(key render.Key) (render.Template, error) {
	cacheKey := key.String()
	if v, ok := r.lru.Get(cacheKey); ok {
		return v.(render.Template), nil
	}

	file := fmt.Sprintf("%s.%s.tmpl", key.Template, key.Format)
	base := filepath.Join(r.root, key.Controller, file)
	if _, err := os.Stat(base); err != nil {
		return nil, fmt.Errorf("view: %s: %w", base, fs.ErrNotExist)
	}

	// Parse every sibling of the same format as one set so sub-templates
	// resolve.
	pattern := filepath.Join(r.root, key.Controller, "*."+string(key.Format)+".tmpl")

	var t render.Template
	if key.Format == core.FormatHTML {
		set, err := htmltpl.New(file).Funcs(htmlFuncMap()).ParseGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", pattern, err)
		}
		t = &executable{name: file, exec: func(w io.Writer, name string, data any) error {
			return set.ExecuteTemplate(w, name, data)
		}}
	} else {
		set, err := texttpl.New(file).Funcs(textFuncMap()).ParseGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("view: parse %s: %w", pattern, err)
		}
		t = &executable{name: file, exec: func(w io.Writer, name string, data any) error {
			return set.ExecuteTemplate(w, name, data)
		}}
	}

	r.lru.Add(cacheKey, t)
	return t, nil
}

//
// func-map builders
//

func htmlFuncMap() htmltpl.FuncMap {
	return htmltpl.FuncMap{
		"dict": dict,
		// raw marks pre-rendered markup (the layout "content" assign) as
		// safe.  Never feed it user input.
		"raw": func(s string) htmltpl.HTML { return htmltpl.HTML(s) },
	}
}

func textFuncMap() texttpl.FuncMap {
	return texttpl.FuncMap{
		"dict": dict,
		"raw":  func(s string) string { return s },
	}
}

// dict builds a map in templates: {{ dict "k" 1 "k2" "v" }}.
func dict(kv ...any) map[string]any {
	m := make(map[string]any, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		m[key] = kv[i+1]
	}
	return m
}
