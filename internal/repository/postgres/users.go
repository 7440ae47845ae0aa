package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	squirrel "github.com/Masterminds/squirrel"
	uuid "github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/core/domain"
	"github.com/VeloF2025/Life-Arrow-V1-sub001/internal/repository"
)

// UserRepository implements user record persistence.
type UserRepository struct {
	exec    pgExecutor
	builder squirrel.StatementBuilderType
}

// NewUserRepository constructs a PostgreSQL-backed user repository.
func NewUserRepository(db pgExecutor) *UserRepository {
	return &UserRepository{
		exec:    db,
		builder: squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar),
	}
}

const (
	usersTable     = "access.users"
	userNotesTable = "access.user_notes"
)

var userColumns = []string{
	"id", "email", "first_name", "last_name", "phone", "role",
	"custom_permissions", "centre_ids", "primary_centre_id",
	"position", "department", "is_active",
	"has_admin_account", "admin_user_id", "promotion_state", "promoted_at", "promoted_by",
	"created_at", "updated_at",
}

// Create inserts a new user record.
func (r *UserRepository) Create(ctx context.Context, user domain.UserRecord) error {
	stmt, args, err := r.builder.Insert(usersTable).
		Columns(userColumns...).
		Values(
			user.ID, user.Email, user.FirstName, user.LastName, user.Phone, user.Role,
			permissionsToStrings(user.CustomPermissions), user.CentreIDs, user.PrimaryCentreID,
			user.Position, user.Department, user.IsActive,
			user.HasAdminAccount, user.AdminUserID, string(user.PromotionState), user.PromotedAt, user.PromotedBy,
			user.CreatedAt, user.UpdatedAt,
		).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert user sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		if isUniqueViolation(err) {
			return repository.ErrDuplicate
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// GetByID retrieves a user record by id.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.UserRecord, error) {
	stmt, args, err := r.builder.Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select user sql: %w", err)
	}

	row := r.exec.QueryRow(ctx, stmt, args...)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, fmt.Errorf("select user: %w", err)
	}

	return user, nil
}

// ListIDs enumerates every user record id.
func (r *UserRepository) ListIDs(ctx context.Context) ([]string, error) {
	stmt, args, err := r.builder.Select("id").
		From(usersTable).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list user ids sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query user ids: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan user id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate user ids: %w", err)
	}

	return ids, nil
}

// ListByRole retrieves all user records holding the given role.
func (r *UserRepository) ListByRole(ctx context.Context, role string) ([]domain.UserRecord, error) {
	stmt, args, err := r.builder.Select(userColumns...).
		From(usersTable).
		Where(squirrel.Eq{"role": role}).
		OrderBy("created_at ASC").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build list users by role sql: %w", err)
	}

	rows, err := r.exec.Query(ctx, stmt, args...)
	if err != nil {
		return nil, fmt.Errorf("query users by role: %w", err)
	}
	defer rows.Close()

	var users []domain.UserRecord
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate users: %w", err)
	}

	return users, nil
}

// Update overwrites the mutable columns of a user record.
func (r *UserRepository) Update(ctx context.Context, user domain.UserRecord) error {
	stmt, args, err := r.builder.Update(usersTable).
		Set("email", user.Email).
		Set("first_name", user.FirstName).
		Set("last_name", user.LastName).
		Set("phone", user.Phone).
		Set("role", user.Role).
		Set("custom_permissions", permissionsToStrings(user.CustomPermissions)).
		Set("centre_ids", user.CentreIDs).
		Set("primary_centre_id", user.PrimaryCentreID).
		Set("position", user.Position).
		Set("department", user.Department).
		Set("is_active", user.IsActive).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": user.ID}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build update user sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("update user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// SetPromotionState records promotion workflow progress on the staff record.
func (r *UserRepository) SetPromotionState(ctx context.Context, id string, state domain.PromotionState, adminUserID *string) error {
	stmt, args, err := r.builder.Update(usersTable).
		Set("promotion_state", string(state)).
		Set("admin_user_id", adminUserID).
		Set("updated_at", time.Now().UTC()).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build set promotion state sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("set promotion state: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// MarkPromoted stamps the staff record as promoted in a single write.
func (r *UserRepository) MarkPromoted(ctx context.Context, id, adminUserID, promotedBy string, promotedAt time.Time) error {
	stmt, args, err := r.builder.Update(usersTable).
		Set("has_admin_account", true).
		Set("admin_user_id", adminUserID).
		Set("promotion_state", string(domain.PromotionStateCompleted)).
		Set("promoted_at", promotedAt).
		Set("promoted_by", promotedBy).
		Set("updated_at", promotedAt).
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return fmt.Errorf("build mark promoted sql: %w", err)
	}

	tag, err := r.exec.Exec(ctx, stmt, args...)
	if err != nil {
		return fmt.Errorf("mark promoted: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrNotFound
	}

	return nil
}

// AppendNote stores an audit note against the user record.
func (r *UserRepository) AppendNote(ctx context.Context, userID, note string) error {
	stmt, args, err := r.builder.Insert(userNotesTable).
		Columns("id", "user_id", "note", "created_at").
		Values(uuid.NewString(), userID, note, time.Now().UTC()).
		ToSql()
	if err != nil {
		return fmt.Errorf("build insert note sql: %w", err)
	}

	if _, err := r.exec.Exec(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert note: %w", err)
	}

	return nil
}

func scanUser(row pgx.Row) (*domain.UserRecord, error) {
	var (
		user           domain.UserRecord
		permissions    []string
		promotionState string
	)
	if err := row.Scan(
		&user.ID,
		&user.Email,
		&user.FirstName,
		&user.LastName,
		&user.Phone,
		&user.Role,
		&permissions,
		&user.CentreIDs,
		&user.PrimaryCentreID,
		&user.Position,
		&user.Department,
		&user.IsActive,
		&user.HasAdminAccount,
		&user.AdminUserID,
		&promotionState,
		&user.PromotedAt,
		&user.PromotedBy,
		&user.CreatedAt,
		&user.UpdatedAt,
	); err != nil {
		return nil, err
	}
	user.CustomPermissions = stringsToPermissions(permissions)
	user.PromotionState = domain.PromotionState(promotionState)
	return &user, nil
}
