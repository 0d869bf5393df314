package storage

import (
	"database/sql"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"leadpipe/models"
)

// SQLiteStore is the local operational store: run bookkeeping and run-scoped
// logs. Lead data itself lives in Postgres.
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
	CREATE TABLE IF NOT EXISTS scrape_runs (
		id INTEGER PRIMARY KEY,
		source_id TEXT,
		started_at DATETIME,
		finished_at DATETIME,
		status TEXT,
		listings_found INTEGER,
		listings_new INTEGER,
		properties_new INTEGER,
		events_new INTEGER,
		errors_count INTEGER
	);

	CREATE TABLE IF NOT EXISTS backfill_runs (
		id INTEGER PRIMARY KEY,
		started_at DATETIME,
		finished_at DATETIME,
		dry_run BOOLEAN,
		status TEXT,
		legacy_rows INTEGER,
		properties INTEGER,
		events INTEGER,
		contacts INTEGER,
		pipeline_rows INTEGER,
		soft_errors INTEGER
	);

	CREATE TABLE IF NOT EXISTS run_logs (
		id INTEGER PRIMARY KEY,
		run_id INTEGER,
		timestamp DATETIME,
		level TEXT,
		message TEXT,
		source_id TEXT
	);

	CREATE INDEX IF NOT EXISTS idx_runs_status ON scrape_runs(status, started_at);
	CREATE INDEX IF NOT EXISTS idx_logs_run ON run_logs(run_id, timestamp);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateScrapeRun(run *models.ScrapeRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO scrape_runs (source_id, started_at, status, listings_found, listings_new,
			properties_new, events_new, errors_count)
		VALUES (?, ?, ?, 0, 0, 0, 0, 0)`,
		run.SourceID, run.StartedAt, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateScrapeRun(run *models.ScrapeRun) error {
	_, err := s.db.Exec(`
		UPDATE scrape_runs SET finished_at = ?, status = ?, listings_found = ?,
			listings_new = ?, properties_new = ?, events_new = ?, errors_count = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.ListingsFound, run.ListingsNew,
		run.PropertiesNew, run.EventsNew, run.ErrorsCount, run.ID)
	return err
}

func (s *SQLiteStore) GetLastScrapeRun(sourceID string) (*models.ScrapeRun, error) {
	row := s.db.QueryRow(`
		SELECT id, source_id, started_at, finished_at, status, listings_found,
			listings_new, properties_new, events_new, errors_count
		FROM scrape_runs WHERE source_id = ? ORDER BY started_at DESC LIMIT 1`, sourceID)

	var run models.ScrapeRun
	err := row.Scan(&run.ID, &run.SourceID, &run.StartedAt, &run.FinishedAt, &run.Status,
		&run.ListingsFound, &run.ListingsNew, &run.PropertiesNew, &run.EventsNew, &run.ErrorsCount)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &run, nil
}

func (s *SQLiteStore) CreateBackfillRun(run *models.BackfillRun) (int64, error) {
	result, err := s.db.Exec(`
		INSERT INTO backfill_runs (started_at, dry_run, status, legacy_rows, properties,
			events, contacts, pipeline_rows, soft_errors)
		VALUES (?, ?, ?, 0, 0, 0, 0, 0, 0)`,
		run.StartedAt, run.DryRun, run.Status)
	if err != nil {
		return 0, err
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) UpdateBackfillRun(run *models.BackfillRun) error {
	_, err := s.db.Exec(`
		UPDATE backfill_runs SET finished_at = ?, status = ?, legacy_rows = ?,
			properties = ?, events = ?, contacts = ?, pipeline_rows = ?, soft_errors = ?
		WHERE id = ?`,
		run.FinishedAt, run.Status, run.LegacyRows,
		run.Properties, run.Events, run.Contacts, run.PipelineRows, run.SoftErrors, run.ID)
	return err
}

func (s *SQLiteStore) Log(runID *int64, level models.LogLevel, message, sourceID string) error {
	_, err := s.db.Exec(`
		INSERT INTO run_logs (run_id, timestamp, level, message, source_id)
		VALUES (?, ?, ?, ?, ?)`,
		runID, time.Now(), level, message, sourceID)
	return err
}

func (s *SQLiteStore) GetRunLogs(runID int64) ([]models.RunLog, error) {
	rows, err := s.db.Query(`
		SELECT id, run_id, timestamp, level, message, source_id
		FROM run_logs WHERE run_id = ? ORDER BY timestamp`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var logs []models.RunLog
	for rows.Next() {
		var l models.RunLog
		if err := rows.Scan(&l.ID, &l.RunID, &l.Timestamp, &l.Level, &l.Message, &l.SourceID); err != nil {
			return nil, err
		}
		logs = append(logs, l)
	}
	return logs, rows.Err()
}
