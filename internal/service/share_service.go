package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"medidocs/internal/models"
	"medidocs/internal/repository"
)

// ShareRequest is the payload for sharing a document with a peer or a department.
// Exactly one of ToUserID and ToDepartment must be set.
type ShareRequest struct {
	DocumentID   string  `json:"documentId" validate:"required,max=255"`
	ToUserID     *string `json:"toUserId"`
	ToDepartment *string `json:"toDepartment" validate:"max=255"`
	Message      string  `json:"message" validate:"max=2000"`
}

// ShareService runs the sent -> received -> seen -> acknowledged chain of document shares
type ShareService struct {
	store     ShareStore
	directory Directory
	audit     *AuditService
	notifier  Notifier
	clock     Clock
}

// NewShareService creates a new share service
func NewShareService(store ShareStore, directory Directory, audit *AuditService, notifier Notifier, clock Clock) *ShareService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &ShareService{
		store:     store,
		directory: directory,
		audit:     audit,
		notifier:  notifier,
		clock:     clock,
	}
}

// Share creates a share in sent
func (s *ShareService) Share(ctx context.Context, sender models.Actor, req ShareRequest) (*models.Share, error) {
	if err := validateActor(sender); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	toUser := strings.TrimSpace(derefString(req.ToUserID))
	toDept := strings.TrimSpace(derefString(req.ToDepartment))
	if (toUser == "") == (toDept == "") {
		return nil, newValidationError("toUserId", "exactly one of toUserId and toDepartment is required")
	}

	share := &models.Share{
		ID:             uuid.NewString(),
		DocumentID:     strings.TrimSpace(req.DocumentID),
		FromUserID:     sender.ID,
		FromUserName:   sender.DisplayName,
		FromDepartment: sender.Department,
		Status:         models.ShareSent,
		Message:        req.Message,
	}

	var (
		recipientName string
		recipientRole *models.Role
	)
	if toUser != "" {
		recipient, err := s.directory.GetUser(ctx, toUser)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve recipient: %w", err)
		}
		if recipient == nil || !recipient.IsActive {
			return nil, newValidationError("toUserId", fmt.Sprintf("unknown or inactive recipient %s", toUser))
		}
		if recipient.ID == sender.ID {
			return nil, newValidationError("toUserId", "a document cannot be shared with its sender")
		}
		share.ToUserID = &recipient.ID
		recipientName = recipient.DisplayName
		role := recipient.Role
		recipientRole = &role
	} else {
		share.ToDepartment = &toDept
		recipientName = toDept
	}

	if !CanPerform(sender.Role, share.EdgeKind(), TransitionSubmit) {
		return nil, newAuthorizationError(string(TransitionSubmit), sender.Role, "may not share documents")
	}

	now := s.clock.Now()
	share.SharedAt = now

	entry := &models.AuditEntry{
		DocumentID: share.DocumentID,
		UserID:     sender.ID,
		UserName:   sender.DisplayName,
		Action:     models.ActionSent,
		Details:    fmt.Sprintf("Share %s: document shared with %s", share.ID, recipientName),
		FromRole:   sender.Role,
		ToRole:     recipientRole,
		Timestamp:  now,
	}
	if err := s.audit.RecordWith(ctx, entry, func(ctx context.Context) error {
		if err := s.store.Create(ctx, share); err != nil {
			return fmt.Errorf("failed to create share: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	slog.Info("Document shared",
		"share_id", share.ID,
		"document_id", share.DocumentID,
		"actor_id", sender.ID,
		"edge", share.EdgeKind(),
	)

	s.notifier.Notify(ctx, Event{
		Kind:                EventKindShare,
		DocumentID:          share.DocumentID,
		Action:              models.ActionSent,
		Status:              string(share.Status),
		ActorID:             sender.ID,
		ActorName:           sender.DisplayName,
		RecipientID:         toUser,
		RecipientDepartment: toDept,
		Message:             share.Message,
		OccurredAt:          now,
	})

	return share, nil
}

// MarkReceived records delivery to the addressee. Repeating it is a no-op.
func (s *ShareService) MarkReceived(ctx context.Context, id string, actor models.Actor) (*models.Share, error) {
	return s.advance(ctx, id, actor, models.ShareReceived)
}

// MarkSeen records that the addressee opened the document, stamping receivedAt
// as well when the received step was skipped. Repeating it is a no-op.
func (s *ShareService) MarkSeen(ctx context.Context, id string, actor models.Actor) (*models.Share, error) {
	return s.advance(ctx, id, actor, models.ShareSeen)
}

// Acknowledge closes the share. It is legal only once the share was seen.
func (s *ShareService) Acknowledge(ctx context.Context, id string, actor models.Actor) (*models.Share, error) {
	return s.advance(ctx, id, actor, models.ShareAcknowledged)
}

func (s *ShareService) advance(ctx context.Context, id string, actor models.Actor, target models.ShareStatus) (*models.Share, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}

	share, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	transition := shareTransitionFor(target)
	if !CanPerform(actor.Role, share.EdgeKind(), transition) || !share.AddressedTo(actor) || share.FromUserID == actor.ID {
		return nil, newAuthorizationError(string(transition), actor.Role, "only the addressee may update this share")
	}

	current := share.Status
	if current.Rank() >= target.Rank() {
		return share, nil
	}
	if target == models.ShareAcknowledged && current != models.ShareSeen {
		return nil, &IllegalTransitionError{
			From:   string(current),
			To:     string(target),
			Reason: "a share must be seen before it is acknowledged",
		}
	}

	now := s.clock.Now()
	action := applyShareStatus(share, target, now)

	entry := &models.AuditEntry{
		DocumentID: share.DocumentID,
		UserID:     actor.ID,
		UserName:   actor.DisplayName,
		Action:     action,
		Details:    fmt.Sprintf("Share %s: document %s by %s", share.ID, strings.ReplaceAll(string(target), "_", " "), actor.DisplayName),
		FromRole:   actor.Role,
		Timestamp:  now,
	}
	err = s.audit.RecordWith(ctx, entry, func(ctx context.Context) error {
		if err := s.store.UpdateStatus(ctx, share, current); err != nil {
			if errors.Is(err, repository.ErrStaleStatus) {
				return err
			}
			return fmt.Errorf("failed to update share: %w", err)
		}
		return nil
	})
	if errors.Is(err, repository.ErrStaleStatus) {
		return s.resolveStale(ctx, id, current, target)
	}
	if err != nil {
		return nil, err
	}

	slog.Info("Share advanced",
		"share_id", share.ID,
		"actor_id", actor.ID,
		"from", current,
		"to", share.Status,
	)

	s.notifier.Notify(ctx, Event{
		Kind:        EventKindShare,
		DocumentID:  share.DocumentID,
		Action:      action,
		Status:      string(share.Status),
		ActorID:     actor.ID,
		ActorName:   actor.DisplayName,
		RecipientID: share.FromUserID,
		OccurredAt:  now,
	})

	return share, nil
}

// resolveStale turns a lost compare-and-set into a no-op when a concurrent caller
// already moved the share at least as far
func (s *ShareService) resolveStale(ctx context.Context, id string, from, target models.ShareStatus) (*models.Share, error) {
	latest, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if latest.Status.Rank() >= target.Rank() {
		return latest, nil
	}
	return nil, &IllegalTransitionError{From: string(from), To: string(target), Reason: "status changed concurrently, refetch and retry"}
}

// applyShareStatus stamps the share for the target status and returns the audit action.
// Stamps never precede the previous stage.
func applyShareStatus(share *models.Share, target models.ShareStatus, now time.Time) models.AuditAction {
	now = laterOf(now, &share.SharedAt)
	switch target {
	case models.ShareReceived:
		share.ReceivedAt = &now
		share.Status = models.ShareReceived
		return models.ActionReceived
	case models.ShareSeen:
		if share.ReceivedAt == nil {
			share.ReceivedAt = &now
		}
		seen := laterOf(now, share.ReceivedAt)
		share.SeenAt = &seen
		share.Status = models.ShareSeen
		return models.ActionViewed
	default:
		ack := laterOf(now, share.SeenAt)
		share.AcknowledgedAt = &ack
		share.Status = models.ShareAcknowledged
		return models.ActionAcknowledged
	}
}

func shareTransitionFor(target models.ShareStatus) Transition {
	switch target {
	case models.ShareReceived:
		return TransitionReceive
	case models.ShareSeen:
		return TransitionView
	default:
		return TransitionAcknowledge
	}
}

// Get returns a share visible to its sender, its addressee or an oversight role
func (s *ShareService) Get(ctx context.Context, id string, actor models.Actor) (*models.Share, error) {
	share, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if share.FromUserID != actor.ID && !share.AddressedTo(actor) && !isOversightRole(actor.Role) {
		return nil, newAuthorizationError("view", actor.Role, "not a participant of this share")
	}
	return share, nil
}

// ListSentBy returns shares created by the user, optionally filtered by status
func (s *ShareService) ListSentBy(ctx context.Context, userID string, status models.ShareStatus) ([]models.Share, error) {
	if status != "" && status.Rank() < 0 {
		return nil, newValidationError("status", fmt.Sprintf("unknown share status %q", status))
	}
	return s.store.List(ctx, ShareFilter{FromUserID: userID, Status: status})
}

// ListAddressedTo returns shares addressed to the actor directly or to the actor's
// department, optionally filtered by status
func (s *ShareService) ListAddressedTo(ctx context.Context, actor models.Actor, status models.ShareStatus) ([]models.Share, error) {
	if status != "" && status.Rank() < 0 {
		return nil, newValidationError("status", fmt.Sprintf("unknown share status %q", status))
	}
	shares, err := s.store.List(ctx, ShareFilter{
		RecipientUserID:     actor.ID,
		RecipientDepartment: actor.Department,
		Status:              status,
	})
	if err != nil {
		return nil, err
	}

	// a department share never reaches its own sender
	filtered := shares[:0]
	for _, sh := range shares {
		if sh.FromUserID == actor.ID {
			continue
		}
		filtered = append(filtered, sh)
	}
	return filtered, nil
}

func (s *ShareService) getExisting(ctx context.Context, id string) (*models.Share, error) {
	if strings.TrimSpace(id) == "" {
		return nil, newValidationError("id", "is required")
	}
	share, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get share: %w", err)
	}
	if share == nil {
		return nil, &NotFoundError{Resource: "share", ID: id}
	}
	return share, nil
}
