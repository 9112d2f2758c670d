package repository

import "medidocs/internal/models"

// SubmissionFilter narrows submission queries; zero fields are ignored
type SubmissionFilter struct {
	FromUserID string
	ToUserID   string
	Status     models.SubmissionStatus
}

// ShareFilter narrows share queries; zero fields are ignored.
// RecipientUserID and RecipientDepartment match a share addressed to either.
type ShareFilter struct {
	FromUserID          string
	RecipientUserID     string
	RecipientDepartment string
	Status              models.ShareStatus
}

// AuditFilter narrows audit log queries; zero fields are ignored
type AuditFilter struct {
	DocumentID string
	UserID     string
	Action     models.AuditAction
	Limit      int
	Offset     int
}
