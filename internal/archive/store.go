package archive

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Result is one archived extraction outcome.
type Result struct {
	FileID       string
	RunID        int64
	Name         string
	MimeType     string
	CreatedTime  time.Time
	ModifiedTime time.Time
	Status       string
	ErrorDetail  string
	Content      string
	CreatedBy    string
	ArchivedAt   time.Time
}

// Run records one collect invocation.
type Run struct {
	ID        int64
	StartedAt time.Time
	DateField string
	StartDate string
	EndDate   string
	FileCount int
}

// ArchiveStats contains statistics about the archive.
type ArchiveStats struct {
	TotalResults    int
	TotalRuns       int
	ResultsByStatus map[string]int
	ResultsByFolder map[string]int
	OldestCreated   time.Time
	NewestCreated   time.Time
}

// FTSResult holds a result matched by full-text search.
type FTSResult struct {
	FileID      string
	Name        string
	CreatedBy   string
	Status      string
	CreatedTime time.Time
}

// Store is a SQLite-backed archive of extraction results.
type Store struct {
	db *sql.DB
}

// NewStore opens or creates the archive database at dbPath, running
// migrations as needed.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open archive database: %w", err)
	}

	// Enable WAL mode for better concurrency.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
	}

	store := &Store{db: db}

	if err := store.createSchema(); err != nil {
		db.Close()

		return nil, fmt.Errorf("failed to create archive schema: %w", err)
	}

	return store, nil
}

func (s *Store) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS runs (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			started_at  DATETIME NOT NULL,
			date_field  TEXT NOT NULL DEFAULT '',
			start_date  TEXT NOT NULL DEFAULT '',
			end_date    TEXT NOT NULL DEFAULT '',
			file_count  INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS results (
			file_id        TEXT PRIMARY KEY,
			run_id         INTEGER NOT NULL DEFAULT 0,
			name           TEXT NOT NULL DEFAULT '',
			mime_type      TEXT NOT NULL DEFAULT '',
			created_time   DATETIME NOT NULL DEFAULT '',
			modified_time  DATETIME NOT NULL DEFAULT '',
			status         TEXT NOT NULL DEFAULT '',
			error_detail   TEXT NOT NULL DEFAULT '',
			content        TEXT NOT NULL DEFAULT '',
			created_by     TEXT NOT NULL DEFAULT '',
			archived_at    DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		);

		CREATE INDEX IF NOT EXISTS idx_results_run_id       ON results(run_id);
		CREATE INDEX IF NOT EXISTS idx_results_created_time ON results(created_time);
		CREATE INDEX IF NOT EXISTS idx_results_created_by   ON results(created_by);

		CREATE VIRTUAL TABLE IF NOT EXISTS results_fts USING fts4(
			name, content,
			tokenize=porter
		);
	`

	_, err := s.db.Exec(schema)

	return err
}

// StartRun records a new collect invocation and returns its ID.
func (s *Store) StartRun(startedAt time.Time, dateField, startDate, endDate string) (int64, error) {
	res, err := s.db.Exec(`
		INSERT INTO runs (started_at, date_field, start_date, end_date)
		VALUES (?, ?, ?, ?)
	`, toDBTime(startedAt), dateField, startDate, endDate)
	if err != nil {
		return 0, fmt.Errorf("failed to record run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get run ID: %w", err)
	}

	return runID, nil
}

// FinishRun records how many files the run archived.
func (s *Store) FinishRun(runID int64, fileCount int) error {
	if _, err := s.db.Exec("UPDATE runs SET file_count = ? WHERE id = ?", fileCount, runID); err != nil {
		return fmt.Errorf("failed to finish run %d: %w", runID, err)
	}

	return nil
}

// IndexResult upserts a result row and its FTS entry. Re-collecting a file
// replaces the stored content and points the row at the new run.
func (s *Store) IndexResult(result Result) error {
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	_, err = tx.Exec(`
		INSERT INTO results (
			file_id, run_id, name, mime_type, created_time, modified_time,
			status, error_detail, content, created_by, archived_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(file_id) DO UPDATE SET
			run_id        = excluded.run_id,
			name          = excluded.name,
			mime_type     = excluded.mime_type,
			created_time  = excluded.created_time,
			modified_time = excluded.modified_time,
			status        = excluded.status,
			error_detail  = excluded.error_detail,
			content       = excluded.content,
			created_by    = excluded.created_by,
			archived_at   = CURRENT_TIMESTAMP
	`,
		result.FileID, result.RunID, result.Name, result.MimeType,
		toDBTime(result.CreatedTime), toDBTime(result.ModifiedTime),
		result.Status, result.ErrorDetail, result.Content, result.CreatedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert result %s: %w", result.FileID, err)
	}

	// Upsert FTS index: delete old entry then insert fresh.
	deleteSQL := "DELETE FROM results_fts WHERE rowid = (SELECT rowid FROM results WHERE file_id = ?)"
	if _, err := tx.Exec(deleteSQL, result.FileID); err != nil {
		return fmt.Errorf("failed to delete fts row for %s: %w", result.FileID, err)
	}

	if _, err := tx.Exec(
		"INSERT INTO results_fts(rowid, name, content) SELECT rowid, ?, ? FROM results WHERE file_id = ?",
		result.Name, result.Content, result.FileID,
	); err != nil {
		return fmt.Errorf("failed to insert fts row for %s: %w", result.FileID, err)
	}

	return tx.Commit()
}

const resultColumns = `file_id, run_id, name, mime_type, created_time, modified_time,
	status, error_detail, created_by, archived_at`

// ListCreatedAfter returns archived results whose file creation time is
// after the given date, newest first. Content is not loaded.
func (s *Store) ListCreatedAfter(date time.Time) ([]Result, error) {
	rows, err := s.db.Query(`
		SELECT `+resultColumns+`
		FROM results
		WHERE created_time > ?
		ORDER BY created_time DESC
	`, toDBTime(date))
	if err != nil {
		return nil, fmt.Errorf("failed to list results: %w", err)
	}
	defer rows.Close()

	var results []Result

	for rows.Next() {
		result, err := scanResult(rows)
		if err != nil {
			return nil, err
		}

		results = append(results, result)
	}

	return results, rows.Err()
}

// GetContent returns the stored content for one file.
func (s *Store) GetContent(fileID string) (string, error) {
	var content string

	err := s.db.QueryRow("SELECT content FROM results WHERE file_id = ?", fileID).Scan(&content)
	if err != nil {
		return "", fmt.Errorf("failed to load content for %s: %w", fileID, err)
	}

	return content, nil
}

// PurgeCreatedAfter deletes archived results whose file creation time is
// after the given date, returning how many rows were removed.
func (s *Store) PurgeCreatedAfter(date time.Time) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	if _, err := tx.Exec(
		"DELETE FROM results_fts WHERE rowid IN (SELECT rowid FROM results WHERE created_time > ?)",
		toDBTime(date),
	); err != nil {
		return 0, fmt.Errorf("failed to purge fts rows: %w", err)
	}

	res, err := tx.Exec("DELETE FROM results WHERE created_time > ?", toDBTime(date))
	if err != nil {
		return 0, fmt.Errorf("failed to purge results: %w", err)
	}

	purged, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count purged results: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	return purged, nil
}

// Stats returns aggregate statistics about the archive.
func (s *Store) Stats() (*ArchiveStats, error) {
	stats := &ArchiveStats{
		ResultsByStatus: make(map[string]int),
		ResultsByFolder: make(map[string]int),
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM results").Scan(&stats.TotalResults); err != nil {
		return nil, fmt.Errorf("failed to get total results: %w", err)
	}

	if err := s.db.QueryRow("SELECT COUNT(*) FROM runs").Scan(&stats.TotalRuns); err != nil {
		return nil, fmt.Errorf("failed to get total runs: %w", err)
	}

	if err := s.groupCount("SELECT status, COUNT(*) FROM results GROUP BY status", stats.ResultsByStatus); err != nil {
		return nil, err
	}

	if err := s.groupCount("SELECT created_by, COUNT(*) FROM results GROUP BY created_by", stats.ResultsByFolder); err != nil {
		return nil, err
	}

	var oldestStr, newestStr sql.NullString

	dateRangeQuery := "SELECT MIN(created_time), MAX(created_time) FROM results WHERE created_time != ''"
	if err := s.db.QueryRow(dateRangeQuery).Scan(&oldestStr, &newestStr); err != nil {
		return nil, fmt.Errorf("failed to get date range: %w", err)
	}

	if oldestStr.Valid {
		stats.OldestCreated = fromDBTime(oldestStr.String)
	}

	if newestStr.Valid {
		stats.NewestCreated = fromDBTime(newestStr.String)
	}

	return stats, nil
}

func (s *Store) groupCount(query string, into map[string]int) error {
	rows, err := s.db.Query(query)
	if err != nil {
		return fmt.Errorf("failed to query group counts: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var (
			key   string
			count int
		)

		if err := rows.Scan(&key, &count); err != nil {
			return fmt.Errorf("failed to scan group count: %w", err)
		}

		into[key] = count
	}

	return rows.Err()
}

// Search performs a full-text search over file names and content.
func (s *Store) Search(query string, limit int) ([]FTSResult, error) {
	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(`
		SELECT r.file_id, r.name, r.created_by, r.status, r.created_time
		FROM results_fts f
		JOIN results r ON f.rowid = r.rowid
		WHERE results_fts MATCH ?
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to execute FTS search: %w", err)
	}
	defer rows.Close()

	var results []FTSResult

	for rows.Next() {
		var (
			r          FTSResult
			createdStr string
		)

		if err := rows.Scan(&r.FileID, &r.Name, &r.CreatedBy, &r.Status, &createdStr); err != nil {
			return nil, fmt.Errorf("failed to scan search result: %w", err)
		}

		r.CreatedTime = fromDBTime(createdStr)
		results = append(results, r)
	}

	return results, rows.Err()
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func scanResult(rows *sql.Rows) (Result, error) {
	var (
		result                             Result
		createdStr, modifiedStr, archvdStr string
	)

	if err := rows.Scan(
		&result.FileID, &result.RunID, &result.Name, &result.MimeType,
		&createdStr, &modifiedStr,
		&result.Status, &result.ErrorDetail, &result.CreatedBy, &archvdStr,
	); err != nil {
		return Result{}, fmt.Errorf("failed to scan result: %w", err)
	}

	result.CreatedTime = fromDBTime(createdStr)
	result.ModifiedTime = fromDBTime(modifiedStr)
	result.ArchivedAt = fromDBTime(archvdStr)

	return result, nil
}

// toDBTime renders a timestamp for storage; zero times are stored as the
// empty string so date comparisons never match them.
func toDBTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	return t.UTC().Format(time.RFC3339)
}

func fromDBTime(s string) time.Time {
	if s == "" {
		return time.Time{}
	}

	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t
	}

	// SQLite CURRENT_TIMESTAMP format.
	t, _ := time.Parse("2006-01-02 15:04:05", s)

	return t
}
