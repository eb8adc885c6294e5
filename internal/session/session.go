// internal/session/session.go
//
// Session store contract plus the signed-cookie implementation.
//
// Context
// -------
// The controller core never touches a cookie or a database itself; it
// reads and writes the per-request session map through this Store
// interface.  Two implementations ship: the HMAC-signed cookie store
// below, and the server-side SQL store in sqlstore.go for payloads that
// should not ride in a cookie.
//
// The cookie payload is base64url(JSON) + "." + hex(HMAC-SHA256).  A
// missing, malformed, or tampered cookie hydrates as an empty session —
// the client is never trusted to produce an error path.
//
// Notes
// -----
// • Oxford commas, two spaces after periods.
package session

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"
)

// Store hydrates and persists the opaque session map.
type Store interface {
	// Load returns the session for the request; never nil on success.
	Load(r *http.Request) (map[string]any, error)
	// Save persists the map.  An empty map clears the session.
	Save(w http.ResponseWriter, r *http.Request, data map[string]any) error
}

// CookieStore keeps the whole session in one signed cookie.
type CookieStore struct {
	Name   string        // cookie name, e.g. "conduct_session"
	Key    []byte        // HMAC-SHA256 signing key
	MaxAge time.Duration // cookie lifetime
}

// NewCookieStore builds a CookieStore.  An empty key is a wiring error.
func NewCookieStore(name string, key []byte, maxAge time.Duration) *CookieStore {
	if name == "" {
		name = "conduct_session"
	}
	if len(key) == 0 {
		panic("session: cookie store requires a signing key")
	}
	return &CookieStore{Name: name, Key: key, MaxAge: maxAge}
}

// Load decodes and verifies the session cookie.
func (s *CookieStore) Load(r *http.Request) (map[string]any, error) {
	c, err := r.Cookie(s.Name)
	if err != nil || c.Value == "" {
		return map[string]any{}, nil
	}

	payload, sig, ok := strings.Cut(c.Value, ".")
	if !ok || !s.verify(payload, sig) {
		return map[string]any{}, nil
	}

	raw, err := base64.RawURLEncoding.DecodeString(payload)
	if err != nil {
		return map[string]any{}, nil
	}
	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return map[string]any{}, nil
	}
	return data, nil
}

// Save serializes, signs, and sets the cookie.  Empty data clears it.
func (s *CookieStore) Save(w http.ResponseWriter, r *http.Request, data map[string]any) error {
	if len(data) == 0 {
		http.SetCookie(w, &http.Cookie{
			Name:     s.Name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
		})
		return nil
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}
	payload := base64.RawURLEncoding.EncodeToString(raw)

	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    payload + "." + s.sign(payload),
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil, // only send over HTTPS
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.MaxAge),
	})
	return nil
}

func (s *CookieStore) sign(payload string) string {
	mac := hmac.New(sha256.New, s.Key)
	mac.Write([]byte(payload))
	return hex.EncodeToString(mac.Sum(nil))
}

func (s *CookieStore) verify(payload, sig string) bool {
	want, err := hex.DecodeString(sig)
	if err != nil {
		return false
	}
	mac := hmac.New(sha256.New, s.Key)
	mac.Write([]byte(payload))
	return hmac.Equal(mac.Sum(nil), want)
}
