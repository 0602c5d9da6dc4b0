package iocache

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/huangsam/recon/internal/contract"
	"github.com/huangsam/recon/schema"
)

// Table names for scan-run tracking.
const (
	scanRunsTable  = "recon_scan_runs"
	scanFilesTable = "recon_scan_files"
)

// RunStoreImpl implements the RunStore interface on a SQL database.
type RunStoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
}

var _ contract.RunStore = &RunStoreImpl{} // Compile-time check

// NewRunStore creates a new RunStore with the specified backend.
func NewRunStore(backend schema.DatabaseBackend, connStr string) (contract.RunStore, error) {
	if backend == schema.NoneBackend {
		return &RunStoreImpl{backend: backend}, nil
	}
	if _, ok := schema.ValidRunBackends[backend]; !ok {
		return nil, fmt.Errorf("unsupported runs backend: %s", backend)
	}

	db, err := openSQL(backend, connStr, GetRunsDBFilePath())
	if err != nil {
		return nil, err
	}
	if err := createRunTables(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create run tables: %w", err)
	}
	return &RunStoreImpl{db: db, backend: backend}, nil
}

// createRunTables creates the run tracking tables when they are missing.
func createRunTables(db *sql.DB, backend schema.DatabaseBackend) error {
	tables := []struct {
		name  string
		query string
	}{
		{scanRunsTable, getCreateScanRunsQuery(backend)},
		{scanFilesTable, getCreateScanFilesQuery(backend)},
	}
	for _, table := range tables {
		if _, err := db.Exec(table.query); err != nil {
			return fmt.Errorf("failed to create table %s: %w", table.name, err)
		}
	}
	return nil
}

// getCreateScanRunsQuery returns the CREATE TABLE query for recon_scan_runs.
func getCreateScanRunsQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(scanRunsTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT AUTO_INCREMENT PRIMARY KEY,
				root VARCHAR(1024) NOT NULL,
				start_time DATETIME(6) NOT NULL,
				end_time DATETIME(6),
				run_duration_ms BIGINT,
				total_files INT,
				total_tokens BIGINT,
				git_available BOOLEAN NOT NULL DEFAULT FALSE,
				config_params TEXT
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGSERIAL PRIMARY KEY,
				root TEXT NOT NULL,
				start_time TIMESTAMPTZ NOT NULL,
				end_time TIMESTAMPTZ,
				run_duration_ms BIGINT,
				total_files INT,
				total_tokens BIGINT,
				git_available BOOLEAN NOT NULL DEFAULT FALSE,
				config_params TEXT
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER PRIMARY KEY AUTOINCREMENT,
				root TEXT NOT NULL,
				start_time TEXT NOT NULL,
				end_time TEXT,
				run_duration_ms INTEGER,
				total_files INTEGER,
				total_tokens INTEGER,
				git_available INTEGER NOT NULL DEFAULT 0,
				config_params TEXT
			);
		`, quoted)
	}
}

// getCreateScanFilesQuery returns the CREATE TABLE query for recon_scan_files.
func getCreateScanFilesQuery(backend schema.DatabaseBackend) string {
	quoted := quoteTableName(scanFilesTable, backend)
	switch backend {
	case schema.MySQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				file_path VARCHAR(512) NOT NULL,
				tokens INT NOT NULL,
				size_bytes BIGINT NOT NULL,
				content_hash VARCHAR(64) NOT NULL,
				is_generated BOOLEAN NOT NULL,
				todo_count INT NOT NULL,
				fixme_count INT NOT NULL,
				git_commits_90d INT NOT NULL,
				git_last_commit VARCHAR(64),
				PRIMARY KEY (run_id, file_path)
			);
		`, quoted)

	case schema.PostgreSQLBackend:
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id BIGINT NOT NULL,
				file_path TEXT NOT NULL,
				tokens INT NOT NULL,
				size_bytes BIGINT NOT NULL,
				content_hash TEXT NOT NULL,
				is_generated BOOLEAN NOT NULL,
				todo_count INT NOT NULL,
				fixme_count INT NOT NULL,
				git_commits_90d INT NOT NULL,
				git_last_commit TEXT,
				PRIMARY KEY (run_id, file_path)
			);
		`, quoted)

	default: // SQLite
		return fmt.Sprintf(`
			CREATE TABLE IF NOT EXISTS %s (
				run_id INTEGER NOT NULL,
				file_path TEXT NOT NULL,
				tokens INTEGER NOT NULL,
				size_bytes INTEGER NOT NULL,
				content_hash TEXT NOT NULL,
				is_generated INTEGER NOT NULL,
				todo_count INTEGER NOT NULL,
				fixme_count INTEGER NOT NULL,
				git_commits_90d INTEGER NOT NULL,
				git_last_commit TEXT,
				PRIMARY KEY (run_id, file_path)
			);
		`, quoted)
	}
}

// BeginRun creates a new scan run and returns its unique ID.
// The none backend returns 0, which callers treat as "not tracked".
func (rs *RunStoreImpl) BeginRun(root string, startTime time.Time, configParams map[string]any) (int64, error) {
	if rs.db == nil {
		return 0, nil
	}

	configJSON, err := json.Marshal(configParams)
	if err != nil {
		return 0, fmt.Errorf("failed to marshal config params: %w", err)
	}

	quoted := quoteTableName(scanRunsTable, rs.backend)
	var runID int64
	switch rs.backend {
	case schema.PostgreSQLBackend:
		query := fmt.Sprintf(`INSERT INTO %s (root, start_time, config_params) VALUES ($1, $2, $3) RETURNING run_id`, quoted)
		err = rs.db.QueryRow(query, root, startTime, string(configJSON)).Scan(&runID)
	default: // SQLite and MySQL
		query := fmt.Sprintf(`INSERT INTO %s (root, start_time, config_params) VALUES (?, ?, ?)`, quoted)
		var result sql.Result
		result, err = rs.db.Exec(query, root, formatTime(startTime, rs.backend), string(configJSON))
		if err == nil {
			runID, err = result.LastInsertId()
		}
	}
	if err != nil {
		return 0, fmt.Errorf("failed to insert scan run: %w", err)
	}
	return runID, nil
}

// EndRun updates the scan run with completion data.
func (rs *RunStoreImpl) EndRun(runID int64, endTime time.Time, totalFiles int, totalTokens int64, gitAvailable bool) error {
	if rs.db == nil {
		return nil
	}

	quoted := quoteTableName(scanRunsTable, rs.backend)
	ph := placeholders(rs.backend, 6)

	start := scanTime{backend: rs.backend}
	query := fmt.Sprintf(`SELECT start_time FROM %s WHERE run_id = %s`, quoted, ph[0])
	if err := rs.db.QueryRow(query, runID).Scan(start.dest()); err != nil {
		return fmt.Errorf("failed to get start_time for run %d: %w", runID, err)
	}
	startTime, err := start.value()
	if err != nil {
		return err
	}
	var durationMs int64
	if startTime != nil {
		durationMs = endTime.Sub(*startTime).Milliseconds()
	}

	update := fmt.Sprintf(`UPDATE %s SET end_time = %s, run_duration_ms = %s, total_files = %s, total_tokens = %s, git_available = %s WHERE run_id = %s`,
		append([]any{quoted}, ph...)...)
	if _, err := rs.db.Exec(update, formatTime(endTime, rs.backend), durationMs, totalFiles, totalTokens, gitAvailable, runID); err != nil {
		return fmt.Errorf("failed to update scan run: %w", err)
	}
	return nil
}

// RecordFiles stores the analyzed files of a run in one transaction.
func (rs *RunStoreImpl) RecordFiles(runID int64, files []schema.FileEntry) error {
	if rs.db == nil || len(files) == 0 {
		return nil
	}

	query := fmt.Sprintf(`
		INSERT INTO %s (run_id, file_path, tokens, size_bytes, content_hash, is_generated,
		                todo_count, fixme_count, git_commits_90d, git_last_commit)
		VALUES (%s, %s, %s, %s, %s, %s, %s, %s, %s, %s)
	`, append([]any{quoteTableName(scanFilesTable, rs.backend)}, placeholders(rs.backend, 10)...)...)

	tx, err := rs.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	stmt, err := tx.Prepare(query)
	if err != nil {
		return fmt.Errorf("failed to prepare file insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, f := range files {
		var lastCommit *string
		if f.GitLastCommit != "" {
			lastCommit = &f.GitLastCommit
		}
		if _, err := stmt.Exec(runID, f.Path, f.Tokens, f.SizeBytes, f.ContentHash, f.IsGenerated,
			f.TodoCount, f.FixmeCount, f.GitCommits90d, lastCommit); err != nil {
			return fmt.Errorf("failed to insert file %s: %w", f.Path, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit file records: %w", err)
	}
	return nil
}

// Close closes the underlying connection.
func (rs *RunStoreImpl) Close() error {
	if rs.db != nil {
		return rs.db.Close()
	}
	return nil
}

// GetStatus returns status information about the run store.
func (rs *RunStoreImpl) GetStatus() (schema.RunStatus, error) {
	status := schema.RunStatus{
		Backend:    string(rs.backend),
		Connected:  rs.db != nil,
		TableSizes: make(map[string]int64),
	}
	if rs.db == nil {
		return status, nil
	}

	runs := quoteTableName(scanRunsTable, rs.backend)
	query := fmt.Sprintf("SELECT COUNT(*), COALESCE(SUM(total_files), 0), COALESCE(SUM(total_tokens), 0) FROM %s", runs)
	if err := rs.db.QueryRow(query).Scan(&status.TotalRuns, &status.TotalFilesSeen, &status.TotalTokensSeen); err != nil {
		return status, fmt.Errorf("failed to get total runs: %w", err)
	}

	if status.TotalRuns > 0 {
		last := scanTime{backend: rs.backend}
		query = fmt.Sprintf("SELECT run_id, start_time FROM %s ORDER BY run_id DESC LIMIT 1", runs)
		if err := rs.db.QueryRow(query).Scan(&status.LastRunID, last.dest()); err != nil {
			return status, fmt.Errorf("failed to get last run info: %w", err)
		}
		oldest := scanTime{backend: rs.backend}
		query = fmt.Sprintf("SELECT start_time FROM %s ORDER BY run_id ASC LIMIT 1", runs)
		if err := rs.db.QueryRow(query).Scan(oldest.dest()); err != nil {
			return status, fmt.Errorf("failed to get oldest run time: %w", err)
		}
		var err error
		if status.LastRunTime, err = last.valueOrZero(); err != nil {
			return status, err
		}
		if status.OldestRunTime, err = oldest.valueOrZero(); err != nil {
			return status, err
		}
	}

	for _, table := range []string{scanRunsTable, scanFilesTable} {
		var count int64
		query := fmt.Sprintf("SELECT COUNT(*) FROM %s", quoteTableName(table, rs.backend))
		if err := rs.db.QueryRow(query).Scan(&count); err != nil {
			return status, fmt.Errorf("failed to get count for table %s: %w", table, err)
		}
		status.TableSizes[table] = count
	}
	return status, nil
}

// GetAllRuns retrieves all scan runs from the store.
func (rs *RunStoreImpl) GetAllRuns() ([]schema.ScanRunRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, root, start_time, end_time, run_duration_ms, total_files, total_tokens,
		git_available, config_params FROM %s ORDER BY run_id`, quoteTableName(scanRunsTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan runs: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScanRunRecord
	for rows.Next() {
		var record schema.ScanRunRecord
		start := scanTime{backend: rs.backend}
		end := scanTime{backend: rs.backend}
		if err := rows.Scan(&record.RunID, &record.Root, start.dest(), end.dest(), &record.RunDuration,
			&record.TotalFiles, &record.TotalTokens, &record.GitAvailable, &record.ConfigParams); err != nil {
			return nil, fmt.Errorf("failed to scan run row: %w", err)
		}
		var err error
		if record.StartTime, err = start.valueOrZero(); err != nil {
			return nil, err
		}
		if record.EndTime, err = end.value(); err != nil {
			return nil, err
		}
		results = append(results, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan runs: %w", err)
	}
	return results, nil
}

// GetAllFiles retrieves all recorded file rows from the store.
func (rs *RunStoreImpl) GetAllFiles() ([]schema.ScanFileRecord, error) {
	if rs.db == nil {
		return nil, nil
	}

	query := fmt.Sprintf(`SELECT run_id, file_path, tokens, size_bytes, content_hash, is_generated,
		todo_count, fixme_count, git_commits_90d, git_last_commit
		FROM %s ORDER BY run_id, file_path`, quoteTableName(scanFilesTable, rs.backend))
	rows, err := rs.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("failed to query scan files: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var results []schema.ScanFileRecord
	for rows.Next() {
		var r schema.ScanFileRecord
		if err := rows.Scan(&r.RunID, &r.FilePath, &r.Tokens, &r.SizeBytes, &r.ContentHash, &r.IsGenerated,
			&r.TodoCount, &r.FixmeCount, &r.GitCommits90d, &r.GitLastCommit); err != nil {
			return nil, fmt.Errorf("failed to scan file row: %w", err)
		}
		results = append(results, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scan files: %w", err)
	}
	return results, nil
}
