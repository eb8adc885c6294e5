// internal/requestinfo/requestinfo.go
//
// Per-request client metadata: parsed user agent and preferred language.
//
// Context
// -------
// The Stage below runs early in a controller pipeline and drops a *Info
// into the assigns under "client", so actions and templates can branch on
// device class or bot-ness without reparsing headers.  The structs are
// inert — no handles, no large buffers — and safe to log or JSON-encode.
package requestinfo

import (
	"fmt"
	"strings"
	"time"

	"github.com/avct/uasurfer"

	"github.com/yanizio/conduct/internal/core"
	"github.com/yanizio/conduct/internal/pipeline"
)

// Info holds the parsed request metadata.
type Info struct {
	Browser     string // "Chrome", "Firefox", "Safari", …
	Version     string // "124.0.6367"
	OS          string // "MacOSX", "Windows", "Android", …
	Device      string // "Computer", "Phone", "Tablet", "TV", …
	IsBot       bool
	PrimaryLang string    // first tag from Accept-Language ("en", "es", …)
	Timestamp   time.Time // request arrival, UTC
}

// Parse converts the User-Agent and Accept-Language headers into Info.
func Parse(rawUA, acceptLang string) *Info {
	ua := uasurfer.Parse(rawUA)

	return &Info{
		Browser: strings.TrimPrefix(ua.Browser.Name.String(), "Browser"),
		Version: fmt.Sprintf("%d.%d.%d",
			ua.Browser.Version.Major, ua.Browser.Version.Minor, ua.Browser.Version.Patch),
		OS:          strings.TrimPrefix(ua.OS.Name.String(), "OS"),
		Device:      strings.TrimPrefix(ua.DeviceType.String(), "Device"),
		IsBot:       ua.IsBot(),
		PrimaryLang: primaryLang(acceptLang),
		Timestamp:   time.Now().UTC(),
	}
}

// Stage assigns the parsed Info under "client".  Register it as a plug on
// controllers that want it.
func Stage() pipeline.Func {
	return func(c *core.Context) error {
		c.Assign("client", Parse(
			c.ReqHeader.Get("User-Agent"),
			c.ReqHeader.Get("Accept-Language"),
		))
		return nil
	}
}

// primaryLang extracts the first language tag, stripped of region and
// quality parameters: "en-US,en;q=0.9" → "en".
func primaryLang(header string) string {
	first, _, _ := strings.Cut(header, ",")
	first, _, _ = strings.Cut(strings.TrimSpace(first), ";")
	lang, _, _ := strings.Cut(first, "-")
	return strings.ToLower(strings.TrimSpace(lang))
}
