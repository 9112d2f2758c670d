package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"medidocs/internal/models"
)

// AuditRepository handles audit trail database operations.
// Rows are never updated or deleted.
type AuditRepository struct {
	db *sql.DB
}

// NewAuditRepository creates a new audit repository
func NewAuditRepository(db *sql.DB) *AuditRepository {
	return &AuditRepository{db: db}
}

const auditColumns = `id, document_id, user_id, user_name, action, details, from_role, to_role, occurred_at, prev_hash, hash`

// Append inserts a new audit entry
func (r *AuditRepository) Append(ctx context.Context, entry *models.AuditEntry) error {
	query := `
		INSERT INTO audit_entries (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := conn(ctx, r.db).ExecContext(ctx, query,
		entry.ID,
		entry.DocumentID,
		entry.UserID,
		entry.UserName,
		entry.Action,
		entry.Details,
		entry.FromRole,
		entry.ToRole,
		entry.Timestamp,
		entry.PrevHash,
		entry.Hash,
	)
	if err != nil {
		return fmt.Errorf("failed to create audit entry: %w", err)
	}
	return nil
}

// Last retrieves the most recent entry of a document chain
func (r *AuditRepository) Last(ctx context.Context, documentID string) (*models.AuditEntry, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_entries
		WHERE document_id = $1
		ORDER BY seq DESC
		LIMIT 1
	`

	entry, err := scanAuditEntry(conn(ctx, r.db).QueryRowContext(ctx, query, documentID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get last audit entry: %w", err)
	}
	return entry, nil
}

// List retrieves audit entries matching the filter, newest first
func (r *AuditRepository) List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, error) {
	query := `SELECT ` + auditColumns + ` FROM audit_entries WHERE 1=1`
	args := []interface{}{}
	argCount := 1

	if filter.DocumentID != "" {
		query += ` AND document_id = $` + fmt.Sprintf("%d", argCount)
		args = append(args, filter.DocumentID)
		argCount++
	}
	if filter.UserID != "" {
		query += ` AND user_id = $` + fmt.Sprintf("%d", argCount)
		args = append(args, filter.UserID)
		argCount++
	}
	if filter.Action != "" {
		query += ` AND action = $` + fmt.Sprintf("%d", argCount)
		args = append(args, filter.Action)
		argCount++
	}
	query += ` ORDER BY seq DESC LIMIT $` + fmt.Sprintf("%d", argCount) + ` OFFSET $` + fmt.Sprintf("%d", argCount+1)
	args = append(args, filter.Limit, filter.Offset)

	return r.query(ctx, query, args...)
}

// ListChain retrieves a document's entries in append order
func (r *AuditRepository) ListChain(ctx context.Context, documentID string) ([]models.AuditEntry, error) {
	query := `
		SELECT ` + auditColumns + `
		FROM audit_entries
		WHERE document_id = $1
		ORDER BY seq ASC
	`
	return r.query(ctx, query, documentID)
}

// DocumentIDs lists every document with at least one entry
func (r *AuditRepository) DocumentIDs(ctx context.Context) ([]string, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, `SELECT DISTINCT document_id FROM audit_entries ORDER BY document_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list audited documents: %w", err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan document id: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (r *AuditRepository) query(ctx context.Context, query string, args ...interface{}) ([]models.AuditEntry, error) {
	rows, err := conn(ctx, r.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get audit entries: %w", err)
	}
	defer rows.Close()

	entries := []models.AuditEntry{}
	for rows.Next() {
		entry, err := scanAuditEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		entries = append(entries, *entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate audit entries: %w", err)
	}
	return entries, nil
}

func scanAuditEntry(row rowScanner) (*models.AuditEntry, error) {
	var entry models.AuditEntry
	err := row.Scan(
		&entry.ID,
		&entry.DocumentID,
		&entry.UserID,
		&entry.UserName,
		&entry.Action,
		&entry.Details,
		&entry.FromRole,
		&entry.ToRole,
		&entry.Timestamp,
		&entry.PrevHash,
		&entry.Hash,
	)
	if err != nil {
		return nil, err
	}
	entry.Timestamp = entry.Timestamp.UTC()
	return &entry, nil
}
