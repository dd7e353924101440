package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"casa8_ingest/models"
)

// SQLiteStore keeps local run history: one row per import or sync
// invocation, for the operator audit trail.
type SQLiteStore struct {
	db *sql.DB
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		return nil, err
	}

	return store, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS import_runs (
		id INTEGER PRIMARY KEY,
		mode TEXT,
		source_market TEXT,
		file_path TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		total_processed INTEGER DEFAULT 0,
		new_properties INTEGER DEFAULT 0,
		updated_properties INTEGER DEFAULT 0,
		deactivated_properties INTEGER DEFAULT 0,
		image_uploads INTEGER DEFAULT 0,
		errors_count INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_runs_market ON import_runs(source_market, started_at);
	CREATE INDEX IF NOT EXISTS idx_runs_status ON import_runs(status, started_at);
	`
	_, err := s.db.Exec(schema)
	return err
}

// CreateRun opens a run record and returns its id.
func (s *SQLiteStore) CreateRun(run *models.ImportRun) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO import_runs (mode, source_market, file_path, started_at, status)
		VALUES (?, ?, ?, ?, ?)`,
		run.Mode, run.SourceMarket, run.FilePath, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// FinishRun records the final counts and status for a run.
func (s *SQLiteStore) FinishRun(id int64, result *models.ImportResult) error {
	status := models.RunStatusCompleted
	if !result.Success {
		status = models.RunStatusFailed
	}

	_, err := s.db.Exec(`
		UPDATE import_runs SET
			finished_at = ?, status = ?,
			total_processed = ?, new_properties = ?, updated_properties = ?,
			deactivated_properties = ?, image_uploads = ?, errors_count = ?
		WHERE id = ?`,
		time.Now(), status,
		result.TotalProcessed, result.NewProperties, result.UpdatedProperties,
		result.DeactivatedProperties, result.ImageUploads, len(result.Errors),
		id)
	return err
}

// LastRunTime returns when the given market was last processed.
func (s *SQLiteStore) LastRunTime(sourceMarket string) (time.Time, error) {
	var last sql.NullTime
	err := s.db.QueryRow(`
		SELECT MAX(started_at) FROM import_runs WHERE source_market = ?`,
		sourceMarket).Scan(&last)
	if err != nil || !last.Valid {
		return time.Time{}, err
	}
	return last.Time, nil
}

// RecentRuns lists the most recent runs, newest first.
func (s *SQLiteStore) RecentRuns(limit int) ([]models.ImportRun, error) {
	rows, err := s.db.Query(`
		SELECT id, mode, source_market, file_path, started_at, finished_at, status,
			total_processed, new_properties, updated_properties,
			deactivated_properties, image_uploads, errors_count
		FROM import_runs ORDER BY started_at DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.ImportRun
	for rows.Next() {
		var r models.ImportRun
		var finished sql.NullTime
		if err := rows.Scan(&r.ID, &r.Mode, &r.SourceMarket, &r.FilePath, &r.StartedAt,
			&finished, &r.Status, &r.TotalProcessed, &r.NewProperties, &r.UpdatedProperties,
			&r.DeactivatedProperties, &r.ImageUploads, &r.ErrorsCount); err != nil {
			return nil, err
		}
		if finished.Valid {
			r.FinishedAt = &finished.Time
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
