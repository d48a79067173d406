package store

import (
	"crypto/rand"
	"database/sql"
	"encoding/hex"
	"time"
)

// GateSessionTTL is how long a visitor stays past the passphrase gate.
const GateSessionTTL = 24 * time.Hour

// GateSession records a visitor who entered the passphrase.
type GateSession struct {
	ID        string
	CreatedAt time.Time
	ExpiresAt time.Time
}

// CreateGateSession creates a new gate session and returns its token.
func (s *Store) CreateGateSession() (string, error) {
	token, err := generateToken()
	if err != nil {
		return "", err
	}
	now := time.Now()
	_, err = s.db.Exec(
		`INSERT INTO gate_sessions (id, created_at, expires_at) VALUES (?, ?, ?)`,
		token, now, now.Add(GateSessionTTL),
	)
	if err != nil {
		return "", err
	}
	return token, nil
}

// GetGateSession returns the session for the given token, or nil if not found/expired.
func (s *Store) GetGateSession(token string) (*GateSession, error) {
	var sess GateSession
	err := s.db.QueryRow(
		`SELECT id, created_at, expires_at FROM gate_sessions WHERE id = ?`, token,
	).Scan(&sess.ID, &sess.CreatedAt, &sess.ExpiresAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if time.Now().After(sess.ExpiresAt) {
		_ = s.DeleteGateSession(token)
		return nil, nil
	}
	return &sess, nil
}

// DeleteGateSession removes a session token and its quiz state.
func (s *Store) DeleteGateSession(token string) error {
	_, err := s.db.Exec(`DELETE FROM gate_sessions WHERE id = ?`, token)
	return err
}

// CleanupExpiredSessions removes all expired gate sessions.
func (s *Store) CleanupExpiredSessions() (int64, error) {
	res, err := s.db.Exec(`DELETE FROM gate_sessions WHERE expires_at < ?`, time.Now())
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func generateToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
