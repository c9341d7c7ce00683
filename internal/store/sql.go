package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"github.com/i474232898/apod-api/internal/apod"
)

// Dialect selects the SQL flavour used for schema and conflict handling.
type Dialect string

const (
	DialectSQLite Dialect = "sqlite3"
	DialectMySQL  Dialect = "mysql"
)

const (
	sqliteSchema = `
		CREATE TABLE IF NOT EXISTS apod (
			id          TEXT PRIMARY KEY,
			date        TEXT NOT NULL UNIQUE,
			copyright   TEXT NOT NULL DEFAULT '',
			explanation TEXT NOT NULL DEFAULT '',
			hdurl       TEXT NOT NULL DEFAULT '',
			media_type  TEXT NOT NULL DEFAULT '',
			title       TEXT NOT NULL DEFAULT '',
			url         TEXT NOT NULL DEFAULT ''
		)`

	mysqlSchema = `
		CREATE TABLE IF NOT EXISTS apod (
			id          VARCHAR(36)   NOT NULL PRIMARY KEY,
			date        CHAR(10)      NOT NULL,
			copyright   VARCHAR(512)  NOT NULL DEFAULT '',
			explanation TEXT          NOT NULL,
			hdurl       VARCHAR(1024) NOT NULL DEFAULT '',
			media_type  VARCHAR(32)   NOT NULL DEFAULT '',
			title       VARCHAR(512)  NOT NULL DEFAULT '',
			url         VARCHAR(1024) NOT NULL DEFAULT '',
			UNIQUE KEY apod_date_unique (date)
		) CHARACTER SET utf8mb4`

	selectByDateSQL = `SELECT id, date, copyright, explanation, hdurl, media_type, title, url
		FROM apod
		WHERE date = ?
		LIMIT 1`

	selectRangeSQL = `SELECT id, date, copyright, explanation, hdurl, media_type, title, url
		FROM apod
		WHERE date >= ? AND date <= ?
		ORDER BY date DESC`

	insertColumns = `(id, date, copyright, explanation, hdurl, media_type, title, url)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	sqliteInsertSQL = `INSERT INTO apod ` + insertColumns + ` ON CONFLICT(date) DO NOTHING`
	mysqlInsertSQL  = `INSERT IGNORE INTO apod ` + insertColumns
)

type apodRow struct {
	ID          string `db:"id"`
	Copyright   string `db:"copyright"`
	Date        string `db:"date"`
	Explanation string `db:"explanation"`
	HDURL       string `db:"hdurl"`
	MediaType   string `db:"media_type"`
	Title       string `db:"title"`
	URL         string `db:"url"`
}

func (r apodRow) record() apod.Record {
	return apod.Record(r)
}

// SQLStore keeps records in a relational table with a UNIQUE date column.
type SQLStore struct {
	db      *sqlx.DB
	dialect Dialect
}

// OpenSQL opens a pool for the given dialect, pings it and applies the schema.
func OpenSQL(ctx context.Context, dialect Dialect, dsn string) (*SQLStore, error) {
	db, err := sqlx.Open(string(dialect), dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", dialect, err)
	}

	switch dialect {
	case DialectSQLite:
		// One writer at a time; WAL lets readers proceed meanwhile.
		db.SetMaxOpenConns(1)
		if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("pragma journal_mode: %w", err)
		}
	default:
		db.SetMaxOpenConns(15)
		db.SetMaxIdleConns(5)
		db.SetConnMaxLifetime(30 * time.Minute)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s: %w", dialect, err)
	}

	s := NewSQLStore(db, dialect)
	if err := s.Migrate(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an open pool.
func NewSQLStore(db *sqlx.DB, dialect Dialect) *SQLStore {
	return &SQLStore{db: db, dialect: dialect}
}

// Migrate creates the apod table if it is missing.
func (s *SQLStore) Migrate(ctx context.Context) error {
	schema := sqliteSchema
	if s.dialect == DialectMySQL {
		schema = mysqlSchema
	}
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}

func (s *SQLStore) FindByDate(ctx context.Context, date string) (apod.Record, error) {
	var row apodRow
	if err := s.db.GetContext(ctx, &row, selectByDateSQL, date); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return apod.Record{}, apod.ErrNotFound
		}
		return apod.Record{}, fmt.Errorf("scan by date: %w", err)
	}
	return row.record(), nil
}

func (s *SQLStore) FindRange(ctx context.Context, start, end string) ([]apod.Record, error) {
	var rows []apodRow
	if err := s.db.SelectContext(ctx, &rows, selectRangeSQL, start, end); err != nil {
		return nil, fmt.Errorf("select range: %w", err)
	}

	out := make([]apod.Record, 0, len(rows))
	for _, r := range rows {
		out = append(out, r.record())
	}
	return out, nil
}

// Insert writes rec unless its date already exists, in which case no row is
// affected and ErrDuplicate is returned.
func (s *SQLStore) Insert(ctx context.Context, rec apod.Record) (apod.Record, error) {
	q := sqliteInsertSQL
	if s.dialect == DialectMySQL {
		q = mysqlInsertSQL
	}

	rec.ID = uuid.NewString()
	res, err := s.db.ExecContext(ctx, q,
		rec.ID,
		rec.Date,
		rec.Copyright,
		rec.Explanation,
		rec.HDURL,
		rec.MediaType,
		rec.Title,
		rec.URL,
	)
	if err != nil {
		return apod.Record{}, fmt.Errorf("exec insert for %s: %w", rec.Date, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return apod.Record{}, fmt.Errorf("rows affected for %s: %w", rec.Date, err)
	}
	if n == 0 {
		return apod.Record{}, apod.ErrDuplicate
	}
	return rec, nil
}

func (s *SQLStore) Close(context.Context) error {
	return s.db.Close()
}
