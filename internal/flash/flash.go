// internal/flash/flash.go
//
// Flash Store: short-lived, keyed, session-backed user-facing messages.
//
// Context
// -------
// A Store lives for one request.  The hydration stage builds it from the
// session map, the handler reads and writes it, and the transport flushes
// it back into the session at commit.  Only keys explicitly marked with
// Persist survive into the next request, and then for exactly one cycle:
// a hydrated message is dropped at the next flush unless the new request
// persists it again.
//
// Notes
// -----
// • An absent key behaves exactly like an empty sequence.  No operation
//   errors on a missing key.
// • Pop is the only consuming read; Get and GetAll are peeks.
// • One goroutine owns a Store for its whole life; no locking.
package flash

import "github.com/yanizio/conduct/internal/metrics"

// SessionKey is the reserved session entry the serialized store lives
// under.  Handlers must not touch it directly.
const SessionKey = "_conduct_flash"

// Store accumulates keyed message sequences for one request.
type Store struct {
	msgs    map[string][]string
	persist map[string]struct{}
}

// New returns an empty Store.
func New() *Store {
	return &Store{
		msgs:    map[string][]string{},
		persist: map[string]struct{}{},
	}
}

// Hydrate builds a Store from the session map.  Messages persisted by the
// previous request become readable now, but are not persisted again.
//
// Serialized flash data may have round-tripped through JSON, so both
// map[string][]string and the decoded-any shape are accepted; anything
// else is ignored and the store starts empty.
func Hydrate(session map[string]any) *Store {
	s := New()
	raw, ok := session[SessionKey]
	if !ok {
		return s
	}

	switch m := raw.(type) {
	case map[string][]string:
		for k, v := range m {
			if len(v) > 0 {
				s.msgs[k] = append([]string(nil), v...)
			}
		}
	case map[string]any:
		for k, v := range m {
			list, ok := v.([]any)
			if !ok {
				continue
			}
			for _, e := range list {
				if str, ok := e.(string); ok {
					s.msgs[k] = append(s.msgs[k], str)
				}
			}
		}
	}
	return s
}

// Put appends a message to key's sequence.
func (s *Store) Put(key, message string) {
	s.msgs[key] = append(s.msgs[key], message)
}

// Get returns the first message for key.  ok is false when the key holds
// no messages.
func (s *Store) Get(key string) (string, bool) {
	if m := s.msgs[key]; len(m) > 0 {
		return m[0], true
	}
	return "", false
}

// GetAll returns a copy of key's full sequence, empty (never nil-vs-absent
// observable) when the key was never written.
func (s *Store) GetAll(key string) []string {
	return append([]string{}, s.msgs[key]...)
}

// PopAll returns key's full sequence and removes the key.  Messages are
// consumed exactly once through this path.
func (s *Store) PopAll(key string) []string {
	out := append([]string{}, s.msgs[key]...)
	if len(out) > 0 {
		metrics.FlashPopsTotal.Inc()
	}
	delete(s.msgs, key)
	delete(s.persist, key)
	return out
}

// Persist marks key's current messages to survive into the next request
// cycle.  They expire after that cycle whether or not anyone reads them.
func (s *Store) Persist(key string) {
	if len(s.msgs[key]) > 0 {
		s.persist[key] = struct{}{}
	}
}

// Clear removes every key, persisted or not.
func (s *Store) Clear() {
	s.msgs = map[string][]string{}
	s.persist = map[string]struct{}{}
}

// Keys returns the keys currently holding messages, for template loops.
func (s *Store) Keys() []string {
	out := make([]string, 0, len(s.msgs))
	for k, v := range s.msgs {
		if len(v) > 0 {
			out = append(out, k)
		}
	}
	return out
}

// Flush writes the persisted subset into the session map.  Called once by
// the transport when the response commits; non-persisted entries are
// dropped here, which is what gives flash its one-request lifetime.
func (s *Store) Flush(session map[string]any) {
	if len(s.persist) == 0 {
		delete(session, SessionKey)
		return
	}
	keep := make(map[string][]string, len(s.persist))
	for k := range s.persist {
		if m := s.msgs[k]; len(m) > 0 {
			keep[k] = append([]string(nil), m...)
		}
	}
	session[SessionKey] = keep
}
