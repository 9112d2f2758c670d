package service

import (
	"context"
	"fmt"

	"medidocs/internal/models"
)

// ShareBuckets groups shares addressed to an actor by reading state
type ShareBuckets struct {
	All          []models.Share `json:"all"`
	New          []models.Share `json:"new"`
	Viewed       []models.Share `json:"viewed"`
	Acknowledged []models.Share `json:"acknowledged"`
}

// SubmissionBuckets groups submissions addressed to an actor by status.
// Pending holds everything awaiting the actor's decision, forwarded submissions included.
type SubmissionBuckets struct {
	All               []models.Submission `json:"all"`
	Pending           []models.Submission `json:"pending"`
	Approved          []models.Submission `json:"approved"`
	Rejected          []models.Submission `json:"rejected"`
	RevisionRequested []models.Submission `json:"revisionRequested"`
}

// Inbox is the derived view of one actor's incoming work
type Inbox struct {
	ActorID      string            `json:"actorId"`
	PendingCount int               `json:"pendingCount"`
	NewCount     int               `json:"newCount"`
	Submissions  SubmissionBuckets `json:"submissions"`
	Shares       ShareBuckets      `json:"shares"`
}

// IsNew reports whether the addressee has not opened the share yet
func IsNew(share models.Share) bool {
	return share.SeenAt == nil && share.Status.Rank() < models.ShareSeen.Rank()
}

// AwaitsDecision reports whether a submission still needs its holder to act
func AwaitsDecision(sub models.Submission) bool {
	return sub.Status == models.SubmissionPending || sub.Status == models.SubmissionForwarded
}

// ProjectShares buckets shares without modifying them
func ProjectShares(shares []models.Share) ShareBuckets {
	b := ShareBuckets{
		All:          make([]models.Share, 0, len(shares)),
		New:          []models.Share{},
		Viewed:       []models.Share{},
		Acknowledged: []models.Share{},
	}
	for _, sh := range shares {
		b.All = append(b.All, sh)
		switch {
		case sh.Status == models.ShareAcknowledged:
			b.Acknowledged = append(b.Acknowledged, sh)
		case IsNew(sh):
			b.New = append(b.New, sh)
		default:
			b.Viewed = append(b.Viewed, sh)
		}
	}
	return b
}

// ProjectSubmissions buckets submissions without modifying them
func ProjectSubmissions(subs []models.Submission) SubmissionBuckets {
	b := SubmissionBuckets{
		All:               make([]models.Submission, 0, len(subs)),
		Pending:           []models.Submission{},
		Approved:          []models.Submission{},
		Rejected:          []models.Submission{},
		RevisionRequested: []models.Submission{},
	}
	for _, sub := range subs {
		b.All = append(b.All, sub)
		switch {
		case AwaitsDecision(sub):
			b.Pending = append(b.Pending, sub)
		case sub.Status == models.SubmissionApproved:
			b.Approved = append(b.Approved, sub)
		case sub.Status == models.SubmissionRejected:
			b.Rejected = append(b.Rejected, sub)
		case sub.Status == models.SubmissionRevisionRequested:
			b.RevisionRequested = append(b.RevisionRequested, sub)
		}
	}
	return b
}

// BuildInbox derives an actor's inbox from the submissions and shares addressed to them
func BuildInbox(actorID string, subs []models.Submission, shares []models.Share) Inbox {
	submissions := ProjectSubmissions(subs)
	shareBuckets := ProjectShares(shares)
	return Inbox{
		ActorID:      actorID,
		PendingCount: len(submissions.Pending),
		NewCount:     len(shareBuckets.New),
		Submissions:  submissions,
		Shares:       shareBuckets,
	}
}

// InboxService recomputes inboxes on demand from the two stores
type InboxService struct {
	submissions *SubmissionService
	shares      *ShareService
}

// NewInboxService creates a new inbox service
func NewInboxService(submissions *SubmissionService, shares *ShareService) *InboxService {
	return &InboxService{submissions: submissions, shares: shares}
}

// Get returns the actor's current inbox
func (s *InboxService) Get(ctx context.Context, actor models.Actor) (*Inbox, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}

	subs, err := s.submissions.ListToUser(ctx, actor.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list submissions: %w", err)
	}
	shares, err := s.shares.ListAddressedTo(ctx, actor, "")
	if err != nil {
		return nil, fmt.Errorf("failed to list shares: %w", err)
	}

	inbox := BuildInbox(actor.ID, subs, shares)
	return &inbox, nil
}
