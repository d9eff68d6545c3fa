package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("not found")

// RunStatus is the outcome of a training run.
type RunStatus string

const (
	RunSucceeded RunStatus = "succeeded"
	RunFailed    RunStatus = "failed"
)

// TrainingRun records one invocation of the trainer.
type TrainingRun struct {
	ID           string
	Status       RunStatus
	DatasetPath  string
	ArtifactPath string
	Samples      int
	Classes      []string
	Accuracy     float64
	Error        string
	StartedAt    time.Time
	FinishedAt   time.Time
}

// RunRepository stores training runs.
type RunRepository struct {
	db *sql.DB
}

// Runs returns the training run repository for this store.
func (s *Store) Runs() *RunRepository {
	return &RunRepository{db: s.db}
}

// Create inserts r, assigning an ID if it has none.
func (r *RunRepository) Create(run *TrainingRun) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Classes == nil {
		run.Classes = []string{}
	}
	classes, err := json.Marshal(run.Classes)
	if err != nil {
		return err
	}

	_, err = r.db.Exec(
		`INSERT INTO training_runs
		 (id, status, dataset_path, artifact_path, samples, classes, accuracy, error, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, string(run.Status), run.DatasetPath, run.ArtifactPath, run.Samples,
		string(classes), run.Accuracy, run.Error, run.StartedAt.UTC(), run.FinishedAt.UTC(),
	)
	return err
}

const runColumns = `id, status, dataset_path, artifact_path, samples, classes, accuracy, error, started_at, finished_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*TrainingRun, error) {
	run := &TrainingRun{}
	var status, classes string
	err := row.Scan(&run.ID, &status, &run.DatasetPath, &run.ArtifactPath, &run.Samples,
		&classes, &run.Accuracy, &run.Error, &run.StartedAt, &run.FinishedAt)
	if err != nil {
		return nil, err
	}
	run.Status = RunStatus(status)
	if err := json.Unmarshal([]byte(classes), &run.Classes); err != nil {
		return nil, err
	}
	return run, nil
}

// List returns up to limit runs, newest first. limit <= 0 returns all.
func (r *RunRepository) List(limit int) ([]*TrainingRun, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := r.db.Query(
		`SELECT `+runColumns+` FROM training_runs ORDER BY started_at DESC, rowid DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*TrainingRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return runs, nil
}

// Latest returns the most recent successful run.
func (r *RunRepository) Latest() (*TrainingRun, error) {
	run, err := scanRun(r.db.QueryRow(
		`SELECT `+runColumns+` FROM training_runs WHERE status = ?
		 ORDER BY started_at DESC, rowid DESC LIMIT 1`,
		string(RunSucceeded),
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return run, nil
}
