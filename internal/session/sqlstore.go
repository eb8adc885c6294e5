// internal/session/sqlstore.go
//
// Server-side session store backed by MySQL/MariaDB via sqlx.
//
// Context
// -------
// The browser carries only an opaque uuid in the cookie; the session map
// itself lives in the `session` table as JSON.  Use this store when the
// session payload is too large or too sensitive for a signed cookie.
//
// Schema
// ------
//
//	CREATE TABLE session (
//	    id         CHAR(36)  NOT NULL PRIMARY KEY,
//	    data       JSON      NOT NULL,
//	    updated_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
//	                         ON UPDATE CURRENT_TIMESTAMP
//	);
//
// Expired rows are swept opportunistically on Save; there is no separate
// reaper process.
package session

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

// SQLStore keeps session payloads server-side, keyed by a uuid cookie.
type SQLStore struct {
	DB     *sqlx.DB
	Name   string        // cookie name carrying the session id
	TTL    time.Duration // row lifetime
	sweepN int64         // Save calls between expiry sweeps
	saves  atomic.Int64
}

// NewSQLStore builds an SQLStore with the given cookie name and TTL.
func NewSQLStore(db *sqlx.DB, name string, ttl time.Duration) *SQLStore {
	if name == "" {
		name = "conduct_sid"
	}
	return &SQLStore{DB: db, Name: name, TTL: ttl, sweepN: 100}
}

// Load fetches the session row named by the cookie.  Unknown or expired
// ids hydrate as an empty session.
func (s *SQLStore) Load(r *http.Request) (map[string]any, error) {
	c, err := r.Cookie(s.Name)
	if err != nil || c.Value == "" {
		return map[string]any{}, nil
	}
	if _, err := uuid.Parse(c.Value); err != nil {
		return map[string]any{}, nil
	}

	var raw []byte
	err = s.DB.GetContext(r.Context(), &raw,
		`SELECT data FROM session WHERE id = ? AND updated_at > ?`,
		c.Value, time.Now().Add(-s.TTL))
	if errors.Is(err, sql.ErrNoRows) {
		return map[string]any{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("session: load %s: %w", c.Value, err)
	}

	var data map[string]any
	if err := json.Unmarshal(raw, &data); err != nil || data == nil {
		return map[string]any{}, nil
	}
	return data, nil
}

// Save upserts the session row and (re)issues the id cookie.  Empty data
// deletes the row and clears the cookie.
func (s *SQLStore) Save(w http.ResponseWriter, r *http.Request, data map[string]any) error {
	id := ""
	if c, err := r.Cookie(s.Name); err == nil {
		if _, err := uuid.Parse(c.Value); err == nil {
			id = c.Value
		}
	}

	if len(data) == 0 {
		if id != "" {
			if _, err := s.DB.ExecContext(r.Context(),
				`DELETE FROM session WHERE id = ?`, id); err != nil {
				return fmt.Errorf("session: delete %s: %w", id, err)
			}
		}
		http.SetCookie(w, &http.Cookie{
			Name: s.Name, Value: "", Path: "/", MaxAge: -1, HttpOnly: true,
		})
		return nil
	}

	if id == "" {
		id = uuid.NewString()
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	_, err = s.DB.ExecContext(r.Context(),
		`INSERT INTO session (id, data) VALUES (?, ?)
		 ON DUPLICATE KEY UPDATE data = VALUES(data)`, id, raw)
	if err != nil {
		return fmt.Errorf("session: upsert %s: %w", id, err)
	}

	http.SetCookie(w, &http.Cookie{
		Name:     s.Name,
		Value:    id,
		Path:     "/",
		HttpOnly: true,
		Secure:   r.TLS != nil,
		SameSite: http.SameSiteLaxMode,
		Expires:  time.Now().Add(s.TTL),
	})

	if s.saves.Add(1)%s.sweepN == 0 {
		s.sweep(r)
	}
	return nil
}

// sweep drops expired rows.  Failures are non-fatal; the next sweep will
// retry.
func (s *SQLStore) sweep(r *http.Request) {
	_, _ = s.DB.ExecContext(r.Context(),
		`DELETE FROM session WHERE updated_at <= ?`, time.Now().Add(-s.TTL))
}
