// internal/config/model.go
//
// Typed configuration model for Conduct.
//
// Context
// -------
// These structs define the shape of the configuration tree that
// `internal/config/loader.go` builds from three overlay layers:
//
//   • optional `.env`                           – dotenv values,
//   • `conf/conduct.yaml`                       – primary static file,
//   • `CONDUCT_`-prefixed environment overrides – highest precedence.
//
// Any value whose string begins with the prefix `vault:` is resolved
// through the Vault client after unmarshalling, so consumers only ever
// see plain strings.  Today that applies to `session.signing_key`.
//
// Validation happens immediately after unmarshal; the app fails fast if
// required fields are missing.
//
// Notes
// -----
//   • Struct tags use `koanf:"…"`, not `yaml:"…"`—Koanf ignores `yaml`
//     tags unless configured otherwise.
//   • The `Paths` block is filled at runtime; YAML must not try to set it.
//   • Oxford commas, two spaces after periods.  No em-dash.

package config

//
// HTTP section
//

// HTTP holds web-server tunables.  The timeout fields are seconds; zero
// means "use internal/server's hardened default".
type HTTP struct {
	ListenAddr       string `koanf:"listen_addr" validate:"required,hostname_port"`
	ForceHTTPS       bool   `koanf:"force_https"`
	ReadTimeoutSecs  int    `koanf:"read_timeout_secs"  validate:"omitempty,min=1"`
	WriteTimeoutSecs int    `koanf:"write_timeout_secs" validate:"omitempty,min=1"`
	IdleTimeoutSecs  int    `koanf:"idle_timeout_secs"  validate:"omitempty,min=1"`
}

//
// View section
//

// View configures the render dispatcher and the template resolver.
type View struct {
	TemplateDir   string   `koanf:"template_dir"   validate:"required"`
	DefaultLayout string   `koanf:"default_layout"`
	Formats       []string `koanf:"formats" validate:"required,min=1,dive,oneof=html json text xml"`
}

//
// Session section
//

// Session selects and configures the session store.  The signing key may
// be a `vault:` reference; the loader resolves it before anything reads
// it.
type Session struct {
	Backend    string `koanf:"backend" validate:"required,oneof=cookie sql"`
	CookieName string `koanf:"cookie_name"`
	SigningKey string `koanf:"signing_key" validate:"required_if=Backend cookie"`
	TTLHours   int    `koanf:"ttl_hours"`
	DSN        string `koanf:"dsn" validate:"required_if=Backend sql"`
}

//
// Log section
//

// Log holds logger tunables.
type Log struct {
	Level string `koanf:"level"`
}

//
// Paths section (runtime only)
//

// Paths is resolved at runtime—never set in YAML or env.  The loader
// discovers `Root` (repo root or CONDUCT_ROOT override) so later code can
// build absolute file paths.
type Paths struct {
	Root string // CONDUCT_ROOT or discovered parent
}

//
// Root aggregate
//

// Config is the immutable aggregate returned by Load() and cached in an
// atomic.Pointer for lock-free reads throughout the app lifetime.
type Config struct {
	HTTP    HTTP    `koanf:"http"`
	View    View    `koanf:"view"`
	Session Session `koanf:"session"`
	Log     Log     `koanf:"log"`
	Paths   Paths   `koanf:"-"` // not loaded from config files
}
