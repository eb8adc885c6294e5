// internal/render/format_test.go

package render

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/yanizio/conduct/internal/core"
)

func negotiator(accepted ...core.Format) *Dispatcher {
	return New(&fakeResolver{}, Config{Controller: "pages", Accepted: accepted})
}

func TestNegotiateQueryParamBeatsAccept(t *testing.T) {
	d := negotiator(core.FormatHTML, core.FormatJSON)
	c := core.New(context.Background(), http.MethodGet, "/")
	c.Query.Set(FormatParam, "json")
	c.ReqHeader.Set("Accept", "text/html")

	f, err := d.Negotiate(c)
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if f != core.FormatJSON {
		t.Fatalf("format = %s, want json", f)
	}
	if c.Format() != core.FormatJSON {
		t.Fatalf("format not recorded on context")
	}
}

func TestNegotiateAcceptHeader(t *testing.T) {
	cases := []struct {
		accept string
		want   core.Format
	}{
		{"text/html", core.FormatHTML},
		{"application/xhtml+xml,text/html;q=0.9", core.FormatHTML},
		{"application/json", core.FormatJSON},
		{"text/plain; charset=utf-8", core.FormatText},
		{"*/*, application/xml", core.FormatXML},
	}
	d := negotiator(core.FormatHTML, core.FormatJSON, core.FormatText, core.FormatXML)
	for _, tc := range cases {
		c := core.New(context.Background(), http.MethodGet, "/")
		c.ReqHeader.Set("Accept", tc.accept)
		f, err := d.Negotiate(c)
		if err != nil {
			t.Fatalf("Negotiate(%q): %v", tc.accept, err)
		}
		if f != tc.want {
			t.Fatalf("Negotiate(%q) = %s, want %s", tc.accept, f, tc.want)
		}
	}
}

func TestNegotiateAcceptedSetEnforced(t *testing.T) {
	d := negotiator(core.FormatHTML, core.FormatText)

	c := core.New(context.Background(), http.MethodGet, "/")
	c.Query.Set(FormatParam, "xml")
	_, err := d.Negotiate(c)
	var uf *UnsupportedFormatError
	if !errors.As(err, &uf) || uf.Format != core.FormatXML {
		t.Fatalf("query err = %v, want UnsupportedFormatError{xml}", err)
	}

	c = core.New(context.Background(), http.MethodGet, "/")
	c.ReqHeader.Set("Accept", "application/json")
	_, err = d.Negotiate(c)
	if !errors.As(err, &uf) || uf.Format != core.FormatJSON {
		t.Fatalf("accept err = %v, want UnsupportedFormatError{json}", err)
	}
}

func TestNegotiateExplicitOverrideTrusted(t *testing.T) {
	// PutFormat is the handler speaking, not the request; it bypasses the
	// accepted-set check.
	d := negotiator(core.FormatHTML)
	c := core.New(context.Background(), http.MethodGet, "/")
	c.PutFormat(core.FormatJSON)

	f, err := d.Negotiate(c)
	if err != nil {
		t.Fatalf("Negotiate: %v", err)
	}
	if f != core.FormatJSON {
		t.Fatalf("format = %s, want json", f)
	}
}

func TestNegotiateDefaults(t *testing.T) {
	c := core.New(context.Background(), http.MethodGet, "/")
	f, err := negotiator(core.FormatHTML, core.FormatJSON).Negotiate(c)
	if err != nil || f != core.FormatHTML {
		t.Fatalf("default = %s, %v, want html", f, err)
	}

	c = core.New(context.Background(), http.MethodGet, "/")
	f, err = negotiator(core.FormatJSON, core.FormatText).Negotiate(c)
	if err != nil || f != core.FormatJSON {
		t.Fatalf("non-html default = %s, %v, want first accepted", f, err)
	}
}

func TestNegotiateWildcardAcceptFallsThrough(t *testing.T) {
	d := negotiator(core.FormatHTML)
	c := core.New(context.Background(), http.MethodGet, "/")
	c.ReqHeader.Set("Accept", "*/*")
	f, err := d.Negotiate(c)
	if err != nil || f != core.FormatHTML {
		t.Fatalf("wildcard = %s, %v, want html default", f, err)
	}
}
