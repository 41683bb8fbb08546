package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func newMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()

	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	gdb, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      db,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("gorm.Open: %v", err)
	}
	return gdb, mock
}

func TestListByUserFiltersAndCounts(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewEnrollmentRepository(gdb)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users_policies`").
		WithArgs("user-1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(2))

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `users_policies` WHERE user_id = \\?").
		WithArgs("user-1").
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "policy_id", "status", "created_at", "updated_at"}).
			AddRow(1, "user-1", 10, "active", now, now).
			AddRow(2, "user-1", 11, "lapsed", now, now))

	// Joined catalog rows for the Policy preload
	mock.ExpectQuery("SELECT \\* FROM `policies`").
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "name", "policy_number", "type"}).
			AddRow(10, "Term Life", "LIFE-0001", "life").
			AddRow(11, "Comprehensive Auto", "AUTO-0001", "auto"))

	rows, total, err := repo.ListByUser(context.Background(), "user-1", 0, 10)
	if err != nil {
		t.Fatalf("ListByUser: %v", err)
	}
	if total != 2 {
		t.Fatalf("expected total 2, got %d", total)
	}
	if len(rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(rows))
	}
	if rows[0].Policy == nil || rows[0].Policy.Type != "life" {
		t.Fatalf("expected first row joined to the life policy, got %+v", rows[0].Policy)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestListByUserIDsUsesInClause(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewEnrollmentRepository(gdb)

	mock.ExpectQuery("SELECT count\\(\\*\\) FROM `users_policies`").
		WithArgs("client-1", "client-2").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	now := time.Now()
	mock.ExpectQuery("SELECT \\* FROM `users_policies` WHERE user_id IN \\(\\?,\\?\\)").
		WithArgs("client-1", "client-2").
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "user_id", "policy_id", "status", "created_at", "updated_at"}).
			AddRow(5, "client-2", 10, "active", now, now))

	mock.ExpectQuery("SELECT \\* FROM `policies`").
		WillReturnRows(sqlmock.
			NewRows([]string{"id", "name", "policy_number", "type"}).
			AddRow(10, "Term Life", "LIFE-0001", "life"))

	rows, total, err := repo.ListByUserIDs(context.Background(), []string{"client-1", "client-2"}, 0, 10)
	if err != nil {
		t.Fatalf("ListByUserIDs: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("expected 1 row / total 1, got %d / %d", len(rows), total)
	}
	if rows[0].UserID != "client-2" {
		t.Fatalf("unexpected row owner: %s", rows[0].UserID)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestGetByIDNotFound(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewEnrollmentRepository(gdb)

	mock.ExpectQuery("SELECT \\* FROM `users_policies`").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "policy_id", "status"}))

	_, err := repo.GetByID(context.Background(), 99)
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected gorm.ErrRecordNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestLapseExpiredUpdatesActiveRowsPastEndDate(t *testing.T) {
	gdb, mock := newMockDB(t)
	repo := NewEnrollmentRepository(gdb)

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `users_policies` SET").
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "active", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	affected, err := repo.LapseExpired(context.Background())
	if err != nil {
		t.Fatalf("LapseExpired: %v", err)
	}
	if affected != 3 {
		t.Fatalf("expected 3 rows lapsed, got %d", affected)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
