package models

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	sqlitecloud "github.com/sqlitecloud/sqlitecloud-go"
	"go.uber.org/zap"
)

// ErrHistoryDisabled is returned when export history is requested but no
// database is configured.
var ErrHistoryDisabled = errors.New("export history is disabled")

// Database represents the database connection and operations
type Database struct {
	db     *sqlitecloud.SQCloud
	logger *zap.SugaredLogger
}

// NewDatabase creates a new database connection
func NewDatabase(dbPath string, logger *zap.SugaredLogger) (*Database, error) {
	logger.Infof("Connecting to SQLite Cloud database: %s", MaskConnectionString(dbPath))

	db, err := sqlitecloud.Connect(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to SQLite Cloud: %w", err)
	}

	database := &Database{
		db:     db,
		logger: logger,
	}

	if err := database.createTables(); err != nil {
		database.Close()
		return nil, err
	}

	return database, nil
}

// MaskConnectionString hides the API key in logs for security
func MaskConnectionString(connStr string) string {
	if strings.Contains(connStr, "apikey=") {
		parts := strings.Split(connStr, "apikey=")
		if len(parts) > 1 {
			return parts[0] + "apikey=***"
		}
	}
	return connStr
}

func (d *Database) createTables() error {
	tables := []string{
		`CREATE TABLE IF NOT EXISTS export_runs (
			id TEXT PRIMARY KEY,
			handle TEXT NOT NULL,
			channel_id TEXT NOT NULL,
			video_count INTEGER NOT NULL,
			comment_count INTEGER NOT NULL,
			file_path TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL CHECK(status IN ('saved', 'failed')),
			created_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_export_runs_created_at ON export_runs(created_at)`,
	}

	for _, table := range tables {
		if err := d.db.Execute(table); err != nil {
			return fmt.Errorf("failed to create table: %w", err)
		}
	}
	return nil
}

// StoreRun inserts one export run
func (d *Database) StoreRun(run *ExportRun) error {
	d.logger.Debugf("Storing export run %s for channel %s", run.ID, run.ChannelID)

	sql := `INSERT INTO export_runs
			(id, handle, channel_id, video_count, comment_count, file_path, status, created_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	return d.db.ExecuteArray(sql, []interface{}{
		run.ID,
		run.Handle,
		run.ChannelID,
		run.VideoCount,
		run.CommentCount,
		run.FilePath,
		string(run.Status),
		run.CreatedAt.Format(time.RFC3339),
	})
}

// ListRuns returns the most recent export runs, newest first
func (d *Database) ListRuns(limit int) ([]ExportRun, error) {
	sql := `SELECT id, handle, channel_id, video_count, comment_count, file_path, status, created_at
			FROM export_runs
			ORDER BY created_at DESC LIMIT ?`

	result, err := d.db.SelectArray(sql, []interface{}{limit})
	if err != nil {
		return nil, err
	}

	runs := make([]ExportRun, 0, result.GetNumberOfRows())
	for row := uint64(0); row < result.GetNumberOfRows(); row++ {
		values := make([]string, 8)
		for col := range values {
			values[col], err = result.GetStringValue(row, uint64(col))
			if err != nil {
				return nil, fmt.Errorf("failed to read export run row %d: %w", row, err)
			}
		}

		run, err := parseRunRow(values)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, nil
}

func parseRunRow(values []string) (ExportRun, error) {
	videoCount, err := strconv.Atoi(values[3])
	if err != nil {
		return ExportRun{}, fmt.Errorf("invalid video_count %q: %w", values[3], err)
	}
	commentCount, err := strconv.Atoi(values[4])
	if err != nil {
		return ExportRun{}, fmt.Errorf("invalid comment_count %q: %w", values[4], err)
	}
	createdAt, err := time.Parse(time.RFC3339, values[7])
	if err != nil {
		return ExportRun{}, fmt.Errorf("invalid created_at %q: %w", values[7], err)
	}

	return ExportRun{
		ID:           values[0],
		Handle:       values[1],
		ChannelID:    values[2],
		VideoCount:   videoCount,
		CommentCount: commentCount,
		FilePath:     values[5],
		Status:       ExportStatus(values[6]),
		CreatedAt:    createdAt,
	}, nil
}

// Close closes the database connection
func (d *Database) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}
