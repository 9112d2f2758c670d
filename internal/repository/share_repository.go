package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"medidocs/internal/models"
)

// ShareRepository handles share database operations
type ShareRepository struct {
	db *sql.DB
}

// NewShareRepository creates a new share repository
func NewShareRepository(db *sql.DB) *ShareRepository {
	return &ShareRepository{db: db}
}

const shareColumns = `id, document_id, from_user_id, from_user_name, from_department, to_user_id, to_department,
		status, message, shared_at, received_at, seen_at, acknowledged_at`

// Create inserts a new share
func (r *ShareRepository) Create(ctx context.Context, share *models.Share) error {
	query := `
		INSERT INTO shares (` + shareColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		share.ID,
		share.DocumentID,
		share.FromUserID,
		share.FromUserName,
		share.FromDepartment,
		share.ToUserID,
		share.ToDepartment,
		share.Status,
		share.Message,
		share.SharedAt,
		share.ReceivedAt,
		share.SeenAt,
		share.AcknowledgedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create share: %w", err)
	}
	return nil
}

// GetByID retrieves a share by ID
func (r *ShareRepository) GetByID(ctx context.Context, id string) (*models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE id = $1`

	share, err := scanShare(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}
	return share, nil
}

// UpdateStatus writes the status and its stamps if the stored status still equals expected
func (r *ShareRepository) UpdateStatus(ctx context.Context, share *models.Share, expected models.ShareStatus) error {
	query := `
		UPDATE shares
		SET status = $2, received_at = $3, seen_at = $4, acknowledged_at = $5
		WHERE id = $1 AND status = $6
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		share.ID,
		share.Status,
		share.ReceivedAt,
		share.SeenAt,
		share.AcknowledgedAt,
		expected,
	)
	if err != nil {
		return fmt.Errorf("failed to update share: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStaleStatus
	}
	return nil
}

// List retrieves shares matching the filter, newest first
func (r *ShareRepository) List(ctx context.Context, filter ShareFilter) ([]models.Share, error) {
	query := `SELECT ` + shareColumns + ` FROM shares WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter.FromUserID != "" {
		query += ` AND from_user_id = $` + fmt.Sprintf("%d", argCount)
		args = append(args, filter.FromUserID)
		argCount++
	}
	switch {
	case filter.RecipientUserID != "" && filter.RecipientDepartment != "":
		query += ` AND (to_user_id = $` + fmt.Sprintf("%d", argCount) +
			` OR to_department = $` + fmt.Sprintf("%d", argCount+1) + `)`
		args = append(args, filter.RecipientUserID, filter.RecipientDepartment)
		argCount += 2
	case filter.RecipientUserID != "":
		query += ` AND to_user_id = $` + fmt.Sprintf("%d", argCount)
		args = append(args, filter.RecipientUserID)
		argCount++
	case filter.RecipientDepartment != "":
		query += ` AND to_department = $` + fmt.Sprintf("%d", argCount)
		args = append(args, filter.RecipientDepartment)
		argCount++
	}
	if filter.Status != "" {
		query += ` AND status = $` + fmt.Sprintf("%d", argCount)
		args = append(args, filter.Status)
	}
	query += ` ORDER BY shared_at DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}
	defer rows.Close()

	shares := []models.Share{}
	for rows.Next() {
		share, err := scanShare(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan share: %w", err)
		}
		shares = append(shares, *share)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate shares: %w", err)
	}
	return shares, nil
}

func scanShare(row rowScanner) (*models.Share, error) {
	var share models.Share
	err := row.Scan(
		&share.ID,
		&share.DocumentID,
		&share.FromUserID,
		&share.FromUserName,
		&share.FromDepartment,
		&share.ToUserID,
		&share.ToDepartment,
		&share.Status,
		&share.Message,
		&share.SharedAt,
		&share.ReceivedAt,
		&share.SeenAt,
		&share.AcknowledgedAt,
	)
	if err != nil {
		return nil, err
	}
	return &share, nil
}
