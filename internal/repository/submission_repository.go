package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"medidocs/internal/models"
)

// SubmissionRepository handles submission database operations
type SubmissionRepository struct {
	db *sql.DB
}

// NewSubmissionRepository creates a new submission repository
func NewSubmissionRepository(db *sql.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

const submissionColumns = `id, title, from_user_id, from_user_name, from_department, to_user_id, to_user_name,
		to_unit, submission_type, status, comments, feedback, signature, attachments, forward_chain,
		submitted_at, reviewed_at, acknowledged_at, approved_at, forwarded_at, updated_at, version`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

// Create inserts a new submission
func (r *SubmissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	attachments, chain, signature, err := encodeSubmissionJSON(sub)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO submissions (` + submissionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18, $19, $20, $21, $22)
	`

	_, err = conn(ctx, r.db).ExecContext(ctx, query,
		sub.ID,
		sub.Title,
		sub.FromUserID,
		sub.FromUserName,
		sub.FromDepartment,
		sub.ToUserID,
		sub.ToUserName,
		sub.ToUnit,
		sub.SubmissionType,
		sub.Status,
		sub.Comments,
		sub.Feedback,
		signature,
		attachments,
		chain,
		sub.SubmittedAt,
		sub.ReviewedAt,
		sub.AcknowledgedAt,
		sub.ApprovedAt,
		sub.ForwardedAt,
		sub.UpdatedAt,
		sub.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to create submission: %w", err)
	}
	return nil
}

// GetByID retrieves a submission by ID
func (r *SubmissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE id = $1`

	sub, err := scanSubmission(conn(ctx, r.db).QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	return sub, nil
}

// UpdateStatus writes the mutable fields of a submission if the stored version still
// equals sub.Version, then advances sub.Version
func (r *SubmissionRepository) UpdateStatus(ctx context.Context, sub *models.Submission) error {
	_, chain, signature, err := encodeSubmissionJSON(sub)
	if err != nil {
		return err
	}

	query := `
		UPDATE submissions
		SET to_user_id = $2, to_user_name = $3, submission_type = $4, status = $5, feedback = $6,
			signature = $7, forward_chain = $8, reviewed_at = $9, acknowledged_at = $10,
			approved_at = $11, forwarded_at = $12, updated_at = $13, version = version + 1
		WHERE id = $1 AND version = $14
	`

	result, err := conn(ctx, r.db).ExecContext(ctx, query,
		sub.ID,
		sub.ToUserID,
		sub.ToUserName,
		sub.SubmissionType,
		sub.Status,
		sub.Feedback,
		signature,
		chain,
		sub.ReviewedAt,
		sub.AcknowledgedAt,
		sub.ApprovedAt,
		sub.ForwardedAt,
		sub.UpdatedAt,
		sub.Version,
	)
	if err != nil {
		return fmt.Errorf("failed to update submission: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return ErrStaleStatus
	}
	sub.Version++
	return nil
}

// List retrieves submissions matching the filter, newest first
func (r *SubmissionRepository) List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	query := `SELECT ` + submissionColumns + ` FROM submissions WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter.FromUserID != "" {
		query += ` AND from_user_id = $` + fmt.Sprintf("%d", argCount)
		args = append(args, filter.FromUserID)
		argCount++
	}
	if filter.ToUserID != "" {
		query += ` AND to_user_id = $` + fmt.Sprintf("%d", argCount)
		args = append(args, filter.ToUserID)
		argCount++
	}
	if filter.Status != "" {
		query += ` AND status = $` + fmt.Sprintf("%d", argCount)
		args = append(args, filter.Status)
	}
	query += ` ORDER BY submitted_at DESC`

	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	defer rows.Close()

	subs := []models.Submission{}
	for rows.Next() {
		sub, err := scanSubmission(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan submission: %w", err)
		}
		subs = append(subs, *sub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate submissions: %w", err)
	}
	return subs, nil
}

func scanSubmission(row rowScanner) (*models.Submission, error) {
	var (
		sub         models.Submission
		signature   []byte
		attachments []byte
		chain       []byte
	)
	err := row.Scan(
		&sub.ID,
		&sub.Title,
		&sub.FromUserID,
		&sub.FromUserName,
		&sub.FromDepartment,
		&sub.ToUserID,
		&sub.ToUserName,
		&sub.ToUnit,
		&sub.SubmissionType,
		&sub.Status,
		&sub.Comments,
		&sub.Feedback,
		&signature,
		&attachments,
		&chain,
		&sub.SubmittedAt,
		&sub.ReviewedAt,
		&sub.AcknowledgedAt,
		&sub.ApprovedAt,
		&sub.ForwardedAt,
		&sub.UpdatedAt,
		&sub.Version,
	)
	if err != nil {
		return nil, err
	}

	if len(signature) > 0 {
		if err := json.Unmarshal(signature, &sub.Signature); err != nil {
			return nil, fmt.Errorf("failed to decode signature: %w", err)
		}
	}
	if len(attachments) > 0 {
		if err := json.Unmarshal(attachments, &sub.Attachments); err != nil {
			return nil, fmt.Errorf("failed to decode attachments: %w", err)
		}
	}
	if len(chain) > 0 {
		if err := json.Unmarshal(chain, &sub.ForwardChain); err != nil {
			return nil, fmt.Errorf("failed to decode forward chain: %w", err)
		}
	}
	return &sub, nil
}

func encodeSubmissionJSON(sub *models.Submission) (attachments, chain, signature []byte, err error) {
	list := sub.Attachments
	if list == nil {
		list = []models.Attachment{}
	}
	if attachments, err = json.Marshal(list); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode attachments: %w", err)
	}

	hops := sub.ForwardChain
	if hops == nil {
		hops = []models.ForwardHop{}
	}
	if chain, err = json.Marshal(hops); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to encode forward chain: %w", err)
	}

	if sub.Signature != nil {
		if signature, err = json.Marshal(sub.Signature); err != nil {
			return nil, nil, nil, fmt.Errorf("failed to encode signature: %w", err)
		}
	}
	return attachments, chain, signature, nil
}
