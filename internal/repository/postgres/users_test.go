package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	pgxmock "github.com/pashagolub/pgxmock/v2"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository"
)

func TestUserRepository_GetByIDNotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	mock.ExpectQuery(`SELECT .+ FROM access\.users`).
		WithArgs("ghost").
		WillReturnRows(pgxmock.NewRows(userColumns))

	if _, err := repo.GetByID(context.Background(), "ghost"); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_SetPromotionState(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	adminID := "admin-9"
	mock.ExpectExec(`UPDATE access\.users SET promotion_state`).
		WithArgs("credential_created", &adminID, pgxmock.AnyArg(), "staff-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.SetPromotionState(context.Background(), "staff-1", "credential_created", &adminID); err != nil {
		t.Fatalf("SetPromotionState returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_MarkPromoted(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	promotedAt := time.Now().UTC()
	mock.ExpectExec(`UPDATE access\.users SET has_admin_account`).
		WithArgs(true, "admin-9", "completed", promotedAt, "manager-2", promotedAt, "staff-1").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	if err := repo.MarkPromoted(context.Background(), "staff-1", "admin-9", "manager-2", promotedAt); err != nil {
		t.Fatalf("MarkPromoted returned error: %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}

func TestUserRepository_MarkPromotedMissing(t *testing.T) {
	mock, err := pgxmock.NewPool()
	if err != nil {
		t.Fatalf("pgxmock.NewPool: %v", err)
	}
	defer mock.Close()

	repo := NewUserRepository(mock)

	promotedAt := time.Now().UTC()
	mock.ExpectExec(`UPDATE access\.users SET has_admin_account`).
		WithArgs(true, "admin-9", "completed", promotedAt, "manager-2", promotedAt, "ghost").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	if err := repo.MarkPromoted(context.Background(), "ghost", "admin-9", "manager-2", promotedAt); !errors.Is(err, repository.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("unmet expectations: %v", err)
	}
}
