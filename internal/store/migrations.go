package store

// runMigrations executes all database migrations.
func (s *Store) runMigrations() error {
	migrations := []string{
		// One row per trainer invocation, successful or not
		`CREATE TABLE IF NOT EXISTS training_runs (
			id TEXT PRIMARY KEY,
			status TEXT NOT NULL CHECK(status IN ('succeeded', 'failed')),
			dataset_path TEXT NOT NULL,
			artifact_path TEXT NOT NULL,
			samples INTEGER NOT NULL DEFAULT 0,
			classes TEXT NOT NULL DEFAULT '[]',
			accuracy REAL NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			started_at DATETIME NOT NULL,
			finished_at DATETIME NOT NULL
		)`,

		// One row per collection session
		`CREATE TABLE IF NOT EXISTS collection_sessions (
			id TEXT PRIMARY KEY,
			label TEXT NOT NULL,
			target INTEGER NOT NULL,
			saved INTEGER NOT NULL DEFAULT 0,
			dropped INTEGER NOT NULL DEFAULT 0,
			dataset_path TEXT NOT NULL,
			started_at DATETIME NOT NULL,
			ended_at DATETIME NOT NULL
		)`,

		`CREATE INDEX IF NOT EXISTS idx_training_runs_started_at ON training_runs(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_collection_sessions_label ON collection_sessions(label)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return err
		}
	}

	return nil
}
