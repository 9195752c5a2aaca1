package corpus

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"regexp"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/poiesic/coursematch/core"
)

const defaultTable = "courses"

var tableNamePattern = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// courseRow mirrors a row of the courses table. Nullable columns come back as
// sql.Null* so a NULL description becomes an empty string rather than an error.
type courseRow struct {
	Code        sql.NullString  `db:"code"`
	Title       sql.NullString  `db:"title"`
	Credits     sql.NullFloat64 `db:"credits"`
	Description sql.NullString  `db:"description"`
}

// SQLiteSource reads course records from a SQLite catalog.
// Rows are returned in insertion (rowid) order.
type SQLiteSource struct {
	db     *sqlx.DB
	table  string
	logger *slog.Logger
}

var _ Source = (*SQLiteSource)(nil)

// SQLiteOption configures a SQLiteSource.
type SQLiteOption func(*SQLiteSource) error

// WithTable sets the table to read from. Default is "courses".
func WithTable(table string) SQLiteOption {
	return func(s *SQLiteSource) error {
		if !tableNamePattern.MatchString(table) {
			return fmt.Errorf("invalid table name %q", table)
		}
		s.table = table
		return nil
	}
}

// WithSQLiteLogger sets a custom logger.
// Default is slog.Default().
func WithSQLiteLogger(logger *slog.Logger) SQLiteOption {
	return func(s *SQLiteSource) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// OpenSQLiteSource opens (creating if needed) the catalog at path and ensures
// the courses table exists.
func OpenSQLiteSource(path string, opts ...SQLiteOption) (*SQLiteSource, error) {
	db, err := sqlx.Connect("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open catalog: %w", err)
	}

	s := &SQLiteSource{
		db:     db,
		table:  defaultTable,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			db.Close()
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "sqlite-source", "table", s.table)

	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *SQLiteSource) initSchema() error {
	ddl := `CREATE TABLE IF NOT EXISTS ` + s.table + ` (
		code TEXT NOT NULL,
		title TEXT,
		credits REAL,
		description TEXT
	)`
	if _, err := s.db.Exec(ddl); err != nil {
		return fmt.Errorf("failed to create table %s: %w", s.table, err)
	}
	return nil
}

// Close closes the underlying database.
func (s *SQLiteSource) Close() error {
	return s.db.Close()
}

// Records returns every course in rowid order.
func (s *SQLiteSource) Records(ctx context.Context) ([]core.CourseRecord, error) {
	var rows []courseRow
	query := `SELECT code, title, credits, description FROM ` + s.table + ` ORDER BY rowid`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("failed to read courses: %w", err)
	}

	records := make([]core.CourseRecord, len(rows))
	for i, row := range rows {
		records[i] = core.CourseRecord{
			Code:        row.Code.String,
			Title:       row.Title.String,
			Credits:     row.Credits.Float64,
			Description: row.Description.String,
		}
	}
	s.logger.Debug("read courses", "count", len(records))
	return records, nil
}

// ReplaceAll swaps the table contents for records in a single transaction.
func (s *SQLiteSource) ReplaceAll(ctx context.Context, records []core.CourseRecord) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.table); err != nil {
		return fmt.Errorf("failed to clear courses: %w", err)
	}

	insert := `INSERT INTO ` + s.table + ` (code, title, credits, description) VALUES (?, ?, ?, ?)`
	for _, r := range records {
		if _, err := tx.ExecContext(ctx, insert, r.Code, r.Title, r.Credits, r.Description); err != nil {
			return fmt.Errorf("failed to insert course %q: %w", r.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit courses: %w", err)
	}
	s.logger.Info("replaced courses", "count", len(records))
	return nil
}
