package service

import (
	"context"
	"time"

	"medidocs/internal/models"
	"medidocs/internal/repository"
)

type (
	SubmissionFilter = repository.SubmissionFilter
	ShareFilter      = repository.ShareFilter
	AuditFilter      = repository.AuditFilter
)

// SubmissionStore persists submissions.
// GetByID returns nil, nil for an unknown id. UpdateStatus applies the record only
// when the stored version still equals sub.Version and advances sub.Version; it
// returns repository.ErrStaleStatus otherwise.
type SubmissionStore interface {
	Create(ctx context.Context, sub *models.Submission) error
	GetByID(ctx context.Context, id string) (*models.Submission, error)
	UpdateStatus(ctx context.Context, sub *models.Submission) error
	List(ctx context.Context, filter SubmissionFilter) ([]models.Submission, error)
}

// ShareStore persists shares. UpdateStatus applies the record only when the stored
// status still equals expected. Share statuses only move forward, so the status
// itself identifies the version that was read.
type ShareStore interface {
	Create(ctx context.Context, share *models.Share) error
	GetByID(ctx context.Context, id string) (*models.Share, error)
	UpdateStatus(ctx context.Context, share *models.Share, expected models.ShareStatus) error
	List(ctx context.Context, filter ShareFilter) ([]models.Share, error)
}

// AuditStore persists audit entries. List returns newest first.
type AuditStore interface {
	Append(ctx context.Context, entry *models.AuditEntry) error
	Last(ctx context.Context, documentID string) (*models.AuditEntry, error)
	List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, error)
	ListChain(ctx context.Context, documentID string) ([]models.AuditEntry, error)
	DocumentIDs(ctx context.Context) ([]string, error)
}

// Transactor runs fn as one unit of work. Store calls made with the context
// passed to fn are kept only if fn returns nil.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
}

// Directory resolves users and unit heads. Lookups return nil, nil when absent.
type Directory interface {
	GetUser(ctx context.Context, id string) (*models.DirectoryUser, error)
	GetUnitHead(ctx context.Context, unit string) (*models.DirectoryUser, error)
	ListByRole(ctx context.Context, role models.Role) ([]models.DirectoryUser, error)
}

// Event describes an accepted transition for notification sinks
type Event struct {
	Kind                string             `json:"kind"`
	DocumentID          string             `json:"documentId"`
	Title               string             `json:"title,omitempty"`
	Action              models.AuditAction `json:"action"`
	Status              string             `json:"status"`
	ActorID             string             `json:"actorId"`
	ActorName           string             `json:"actorName"`
	RecipientID         string             `json:"recipientId,omitempty"`
	RecipientDepartment string             `json:"recipientDepartment,omitempty"`
	Message             string             `json:"message,omitempty"`
	OccurredAt          time.Time          `json:"occurredAt"`
}

// Event kinds
const (
	EventKindSubmission = "submission"
	EventKindShare      = "share"
)

// Notifier delivers a user-facing notification. Implementations must not block
// the caller on delivery; failures are theirs to log.
type Notifier interface {
	Notify(ctx context.Context, event Event)
}

// Signer produces and checks signature digests over canonical payloads
type Signer interface {
	Sign(ctx context.Context, signerID string, payload []byte) (digest string, keyRef string, err error)
	Verify(ctx context.Context, signerID string, payload []byte, digest string) (bool, error)
}

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock returns the wall clock in UTC
func SystemClock() Clock { return systemClock{} }

type nopNotifier struct{}

func (nopNotifier) Notify(context.Context, Event) {}
