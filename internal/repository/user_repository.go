package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"medidocs/internal/models"
)

// UserRepository handles the staff directory: users and the heads of units
type UserRepository struct {
	db *sql.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *sql.DB) *UserRepository {
	return &UserRepository{db: db}
}

const userColumns = `id, display_name, email, role, department, unit, is_active, created_at`

// Upsert creates a directory user or updates an existing one
func (r *UserRepository) Upsert(ctx context.Context, user *models.DirectoryUser) error {
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO directory_users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (id) DO UPDATE
		SET display_name = EXCLUDED.display_name, email = EXCLUDED.email, role = EXCLUDED.role,
			department = EXCLUDED.department, unit = EXCLUDED.unit, is_active = EXCLUDED.is_active
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		user.ID,
		user.DisplayName,
		user.Email,
		user.Role,
		user.Department,
		user.Unit,
		user.IsActive,
		user.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert user: %w", err)
	}
	return nil
}

// GetUser retrieves a user by ID
func (r *UserRepository) GetUser(ctx context.Context, id string) (*models.DirectoryUser, error) {
	query := `SELECT ` + userColumns + ` FROM directory_users WHERE id = $1`

	user, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return user, nil
}

// GetUnitHead retrieves the user assigned as head of a unit
func (r *UserRepository) GetUnitHead(ctx context.Context, unit string) (*models.DirectoryUser, error) {
	query := `
		SELECT u.id, u.display_name, u.email, u.role, u.department, u.unit, u.is_active, u.created_at
		FROM units n
		JOIN directory_users u ON u.id = n.head_user_id
		WHERE n.name = $1
	`

	user, err := scanUser(conn(ctx, r.db).QueryRowContext(ctx, query, unit))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get unit head: %w", err)
	}
	return user, nil
}

// SetUnitHead assigns the head of a unit, creating the unit if needed. A nil head clears it.
func (r *UserRepository) SetUnitHead(ctx context.Context, unit string, headUserID *string) error {
	query := `
		INSERT INTO units (name, head_user_id)
		VALUES ($1, $2)
		ON CONFLICT (name) DO UPDATE SET head_user_id = EXCLUDED.head_user_id
	`

	if _, err := conn(ctx, r.db).ExecContext(ctx, query, unit, headUserID); err != nil {
		return fmt.Errorf("failed to set unit head: %w", err)
	}
	return nil
}

// ListByRole retrieves active users holding a role
func (r *UserRepository) ListByRole(ctx context.Context, role models.Role) ([]models.DirectoryUser, error) {
	query := `
		SELECT ` + userColumns + `
		FROM directory_users
		WHERE role = $1 AND is_active = true
		ORDER BY display_name
	`

	return r.listUsers(ctx, query, role)
}

// ListByDepartment retrieves active members of a department
func (r *UserRepository) ListByDepartment(ctx context.Context, department string) ([]models.DirectoryUser, error) {
	query := `
		SELECT ` + userColumns + `
		FROM directory_users
		WHERE department = $1 AND is_active = true
		ORDER BY display_name
	`
	return r.listUsers(ctx, query, department)
}

func (r *UserRepository) listUsers(ctx context.Context, query string, args ...interface{}) ([]models.DirectoryUser, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	users := []models.DirectoryUser{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, *user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}
	return users, nil
}

func scanUser(row rowScanner) (*models.DirectoryUser, error) {
	var user models.DirectoryUser
	err := row.Scan(
		&user.ID,
		&user.DisplayName,
		&user.Email,
		&user.Role,
		&user.Department,
		&user.Unit,
		&user.IsActive,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}
