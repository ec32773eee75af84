package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
)

func newMockKV(t *testing.T) (*KVSQLite, sqlmock.Sqlmock, func()) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	repo := NewKVSQLite(db)
	cleanup := func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Fatalf("unmet sqlmock expectations: %v", err)
		}
		_ = db.Close()
	}
	return repo, mock, cleanup
}

// utcNow matches a time.Time argument written in UTC close to now.
type utcNow struct{}

func (utcNow) Match(v driver.Value) bool {
	tm, ok := v.(time.Time)
	if !ok || tm.Location() != time.UTC {
		return false
	}
	return time.Since(tm) < 5*time.Second
}

func TestKVSQLite_Get(t *testing.T) {
	tests := []struct {
		name           string
		mockExpect     func(sqlmock.Sqlmock)
		wantValue      string
		wantFound      bool
		wantErr        bool
		errContainsStr string
	}{
		{
			name: "found",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectKVSQL)).
					WithArgs("cart").
					WillReturnRows(sqlmock.NewRows([]string{"value"}).AddRow(`[{"productId":"a","quantity":2}]`))
			},
			wantValue: `[{"productId":"a","quantity":2}]`,
			wantFound: true,
		},
		{
			name: "missing key",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectKVSQL)).
					WithArgs("cart").
					WillReturnError(sql.ErrNoRows)
			},
			wantFound: false,
		},
		{
			name: "query error",
			mockExpect: func(m sqlmock.Sqlmock) {
				m.ExpectQuery(regexp.QuoteMeta(selectKVSQL)).
					WithArgs("cart").
					WillReturnError(errors.New("disk I/O error"))
			},
			wantErr:        true,
			errContainsStr: "select kv",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo, mock, cleanup := newMockKV(t)
			defer cleanup()

			tt.mockExpect(mock)

			v, found, err := repo.Get(context.Background(), "cart")
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got nil")
				}
				if !strings.Contains(err.Error(), tt.errContainsStr) {
					t.Fatalf("expected error to contain %q, got %q", tt.errContainsStr, err.Error())
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if found != tt.wantFound || v != tt.wantValue {
				t.Fatalf("got (%q, %v), want (%q, %v)", v, found, tt.wantValue, tt.wantFound)
			}
		})
	}
}

func TestKVSQLite_SetUpsertsWithUTCTimestamp(t *testing.T) {
	repo, mock, cleanup := newMockKV(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_store")).
		WithArgs("currentUser", `{"username":"admin","isAdmin":true}`, utcNow{}).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Set(context.Background(), "currentUser", `{"username":"admin","isAdmin":true}`); err != nil {
		t.Fatalf("Set() error = %v", err)
	}
}

func TestKVSQLite_SetError(t *testing.T) {
	repo, mock, cleanup := newMockKV(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO kv_store")).
		WillReturnError(errors.New("database is locked"))

	err := repo.Set(context.Background(), "users", "[]")
	if err == nil || !strings.Contains(err.Error(), `upsert kv "users"`) {
		t.Fatalf("expected wrapped upsert error, got %v", err)
	}
}

func TestKVSQLite_Delete(t *testing.T) {
	repo, mock, cleanup := newMockKV(t)
	defer cleanup()

	mock.ExpectExec(regexp.QuoteMeta(deleteKVSQL)).
		WithArgs("cart").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(deleteKVSQL)).
		WithArgs("cart").
		WillReturnError(errors.New("boom"))

	if err := repo.Delete(context.Background(), "cart"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if err := repo.Delete(context.Background(), "cart"); err == nil {
		t.Fatalf("expected error on second delete")
	}
}
