package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ragam/ragam/internal/model"
)

// SaveQuestion makes q the visitor's current question, replacing any
// previous one together with its choice order.
func (s *Store) SaveQuestion(sessionID string, q model.Question) error {
	song, err := json.Marshal(q.Song)
	if err != nil {
		return fmt.Errorf("marshal song: %w", err)
	}
	choices, err := json.Marshal(q.Choices)
	if err != nil {
		return fmt.Errorf("marshal choices: %w", err)
	}
	_, err = s.db.Exec(
		`INSERT INTO quiz_states (session_id, question_id, song, choices, created_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT(session_id) DO UPDATE SET
		   question_id = excluded.question_id,
		   song = excluded.song,
		   choices = excluded.choices,
		   created_at = excluded.created_at`,
		sessionID, q.ID, string(song), string(choices), time.Now(),
	)
	return err
}

// CurrentQuestion returns the visitor's current question, or nil if none.
func (s *Store) CurrentQuestion(sessionID string) (*model.Question, error) {
	var q model.Question
	var song, choices string
	err := s.db.QueryRow(
		`SELECT question_id, song, choices FROM quiz_states WHERE session_id = ?`, sessionID,
	).Scan(&q.ID, &song, &choices)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(song), &q.Song); err != nil {
		return nil, fmt.Errorf("unmarshal song: %w", err)
	}
	if err := json.Unmarshal([]byte(choices), &q.Choices); err != nil {
		return nil, fmt.Errorf("unmarshal choices: %w", err)
	}
	return &q, nil
}

// ClearQuestion forgets the visitor's current question.
func (s *Store) ClearQuestion(sessionID string) error {
	_, err := s.db.Exec(`DELETE FROM quiz_states WHERE session_id = ?`, sessionID)
	return err
}
