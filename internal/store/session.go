package store

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// CollectionSession records one run of the sample recorder.
type CollectionSession struct {
	ID          string
	Label       string
	Target      int
	Saved       int
	Dropped     int
	DatasetPath string
	StartedAt   time.Time
	EndedAt     time.Time
}

// SessionRepository stores collection sessions.
type SessionRepository struct {
	db *sql.DB
}

// Sessions returns the collection session repository for this store.
func (s *Store) Sessions() *SessionRepository {
	return &SessionRepository{db: s.db}
}

// Create inserts cs, assigning an ID if it has none.
func (r *SessionRepository) Create(cs *CollectionSession) error {
	if cs.ID == "" {
		cs.ID = uuid.New().String()
	}
	_, err := r.db.Exec(
		`INSERT INTO collection_sessions
		 (id, label, target, saved, dropped, dataset_path, started_at, ended_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		cs.ID, cs.Label, cs.Target, cs.Saved, cs.Dropped, cs.DatasetPath,
		cs.StartedAt.UTC(), cs.EndedAt.UTC(),
	)
	return err
}

// List returns sessions newest first, optionally only those for label.
func (r *SessionRepository) List(label string) ([]*CollectionSession, error) {
	query := `SELECT id, label, target, saved, dropped, dataset_path, started_at, ended_at
		 FROM collection_sessions`
	var args []any
	if label != "" {
		query += ` WHERE label = ?`
		args = append(args, label)
	}
	query += ` ORDER BY started_at DESC, rowid DESC`

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sessions []*CollectionSession
	for rows.Next() {
		cs := &CollectionSession{}
		err := rows.Scan(&cs.ID, &cs.Label, &cs.Target, &cs.Saved, &cs.Dropped,
			&cs.DatasetPath, &cs.StartedAt, &cs.EndedAt)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, cs)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sessions, nil
}

// Totals returns the number of saved samples per label across sessions.
func (r *SessionRepository) Totals() (map[string]int, error) {
	rows, err := r.db.Query(`SELECT label, SUM(saved) FROM collection_sessions GROUP BY label`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	totals := make(map[string]int)
	for rows.Next() {
		var label string
		var n int
		if err := rows.Scan(&label, &n); err != nil {
			return nil, err
		}
		totals[label] = n
	}
	return totals, rows.Err()
}
