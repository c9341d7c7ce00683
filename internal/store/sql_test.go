package store

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/i474232898/apod-api/internal/apod"
)

var apodColumns = []string{"id", "date", "copyright", "explanation", "hdurl", "media_type", "title", "url"}

func newMockStore(t *testing.T, dialect Dialect) (*SQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewSQLStore(sqlx.NewDb(db, "sqlmock"), dialect), mock
}

func TestSQLStoreFindByDate(t *testing.T) {
	s, mock := newMockStore(t, DialectSQLite)

	mock.ExpectQuery(regexp.QuoteMeta(selectByDateSQL)).
		WithArgs("2024-01-01").
		WillReturnRows(sqlmock.NewRows(apodColumns).
			AddRow("abc", "2024-01-01", "NASA", "A nebula.", "https://hd", "image", "Nebula", "https://sd"))

	rec, err := s.FindByDate(context.Background(), "2024-01-01")
	if err != nil {
		t.Fatalf("FindByDate error: %v", err)
	}
	want := apod.Record{
		ID:          "abc",
		Copyright:   "NASA",
		Date:        "2024-01-01",
		Explanation: "A nebula.",
		HDURL:       "https://hd",
		MediaType:   "image",
		Title:       "Nebula",
		URL:         "https://sd",
	}
	if rec != want {
		t.Fatalf("got %+v, want %+v", rec, want)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStoreFindByDateMiss(t *testing.T) {
	s, mock := newMockStore(t, DialectSQLite)

	mock.ExpectQuery(regexp.QuoteMeta(selectByDateSQL)).
		WithArgs("2024-01-01").
		WillReturnRows(sqlmock.NewRows(apodColumns))

	if _, err := s.FindByDate(context.Background(), "2024-01-01"); !errors.Is(err, apod.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStoreFindRange(t *testing.T) {
	s, mock := newMockStore(t, DialectMySQL)

	mock.ExpectQuery(regexp.QuoteMeta(selectRangeSQL)).
		WithArgs("2024-01-01", "2024-01-31").
		WillReturnRows(sqlmock.NewRows(apodColumns).
			AddRow("b", "2024-01-02", "", "", "", "image", "Two", "u2").
			AddRow("a", "2024-01-01", "", "", "", "video", "One", "u1"))

	recs, err := s.FindRange(context.Background(), "2024-01-01", "2024-01-31")
	if err != nil {
		t.Fatalf("FindRange error: %v", err)
	}
	if len(recs) != 2 || recs[0].Date != "2024-01-02" || recs[1].MediaType != "video" {
		t.Fatalf("unexpected result: %+v", recs)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStoreInsert(t *testing.T) {
	tests := []struct {
		name    string
		dialect Dialect
		query   string
	}{
		{"sqlite", DialectSQLite, sqliteInsertSQL},
		{"mysql", DialectMySQL, mysqlInsertSQL},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, mock := newMockStore(t, tt.dialect)

			mock.ExpectExec(regexp.QuoteMeta(tt.query)).
				WithArgs(sqlmock.AnyArg(), "2024-01-01", "NASA", "A nebula.", "", "image", "Nebula", "https://sd").
				WillReturnResult(sqlmock.NewResult(1, 1))

			rec, err := s.Insert(context.Background(), apod.Record{
				Copyright:   "NASA",
				Date:        "2024-01-01",
				Explanation: "A nebula.",
				MediaType:   "image",
				Title:       "Nebula",
				URL:         "https://sd",
			})
			if err != nil {
				t.Fatalf("Insert error: %v", err)
			}
			if rec.ID == "" {
				t.Error("expected id to be assigned")
			}
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unmet SQL expectations: %v", err)
			}
		})
	}
}

func TestSQLStoreInsertConflict(t *testing.T) {
	s, mock := newMockStore(t, DialectSQLite)

	mock.ExpectExec(regexp.QuoteMeta(sqliteInsertSQL)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err := s.Insert(context.Background(), apod.Record{Date: "2024-01-01"})
	if !errors.Is(err, apod.ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}

func TestSQLStoreMigrate(t *testing.T) {
	s, mock := newMockStore(t, DialectSQLite)

	mock.ExpectExec(regexp.QuoteMeta(sqliteSchema)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate error: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet SQL expectations: %v", err)
	}
}
