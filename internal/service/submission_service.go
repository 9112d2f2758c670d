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
	"medidocs/pkg/validator"
)

// SubmitRequest is the payload for creating a submission.
// Exactly one of ToUserID or ToUnit routes it; with ToUnit the unit head is resolved.
type SubmitRequest struct {
	Title          string              `json:"title" validate:"required,max=255"`
	ToUserID       string              `json:"toUserId"`
	ToUnit         string              `json:"toUnit"`
	SubmissionType models.EdgeKind     `json:"submissionType"`
	Comments       string              `json:"comments" validate:"max=5000"`
	Attachments    []models.Attachment `json:"attachments"`
}

// TransitionRequest is the payload for a reviewer decision
type TransitionRequest struct {
	Status   models.SubmissionStatus `json:"status" validate:"required"`
	Feedback *string                 `json:"feedback" validate:"max=5000"`
	Sign     bool                    `json:"sign"`
}

// ForwardRequest is the payload for forwarding a submission to a new holder
type ForwardRequest struct {
	ToUserID string `json:"toUserId" validate:"required"`
	Note     string `json:"note" validate:"max=2000"`
}

// SubmissionService owns creation and transition of document submissions
type SubmissionService struct {
	store     SubmissionStore
	directory Directory
	audit     *AuditService
	notifier  Notifier
	signer    Signer
	clock     Clock
}

// NewSubmissionService creates a new submission service.
// notifier, signer and clock may be nil.
func NewSubmissionService(
	store SubmissionStore,
	directory Directory,
	audit *AuditService,
	notifier Notifier,
	signer Signer,
	clock Clock,
) *SubmissionService {
	if notifier == nil {
		notifier = nopNotifier{}
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &SubmissionService{
		store:     store,
		directory: directory,
		audit:     audit,
		notifier:  notifier,
		signer:    signer,
		clock:     clock,
	}
}

// Submit creates a new submission in pending
func (s *SubmissionService) Submit(ctx context.Context, originator models.Actor, req SubmitRequest) (*models.Submission, error) {
	if err := validateActor(originator); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.Title) == "" {
		return nil, newValidationError("title", "is required")
	}
	if err := validateAttachments(req.Attachments); err != nil {
		return nil, err
	}

	target, err := s.resolveTarget(ctx, req)
	if err != nil {
		return nil, err
	}
	if target.ID == originator.ID {
		return nil, newValidationError("toUserId", "a submission cannot be addressed to its originator")
	}

	edge, err := resolveEdge(originator.Role, target.Role, req.SubmissionType)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	sub := &models.Submission{
		ID:             uuid.NewString(),
		Title:          validator.SanitizeString(req.Title),
		FromUserID:     originator.ID,
		FromUserName:   originator.DisplayName,
		FromDepartment: originator.Department,
		ToUserID:       target.ID,
		ToUserName:     target.DisplayName,
		SubmissionType: edge,
		Status:         models.SubmissionPending,
		Comments:       req.Comments,
		Attachments:    req.Attachments,
		SubmittedAt:    now,
		UpdatedAt:      now,
		Version:        1,
	}
	if unit := strings.TrimSpace(req.ToUnit); unit != "" {
		sub.ToUnit = &unit
	}

	targetRole := target.Role
	entry := &models.AuditEntry{
		DocumentID: sub.ID,
		UserID:     originator.ID,
		UserName:   originator.DisplayName,
		Action:     models.ActionSent,
		Details:    fmt.Sprintf("Submission %q sent to %s (%s)", sub.Title, target.DisplayName, edge),
		FromRole:   originator.Role,
		ToRole:     &targetRole,
		Timestamp:  now,
	}
	if err := s.audit.RecordWith(ctx, entry, func(ctx context.Context) error {
		if err := s.store.Create(ctx, sub); err != nil {
			return fmt.Errorf("failed to create submission: %w", err)
		}
		return nil
	}); err != nil {
		return nil, err
	}

	slog.Info("Submission created",
		"submission_id", sub.ID,
		"actor_id", originator.ID,
		"role", originator.Role,
		"to_user_id", target.ID,
		"submission_type", edge,
	)

	s.notifier.Notify(ctx, Event{
		Kind:        EventKindSubmission,
		DocumentID:  sub.ID,
		Title:       sub.Title,
		Action:      models.ActionSent,
		Status:      string(sub.Status),
		ActorID:     originator.ID,
		ActorName:   originator.DisplayName,
		RecipientID: target.ID,
		Message:     sub.Comments,
		OccurredAt:  now,
	})

	return sub, nil
}

// Transition applies a reviewer decision to a submission
func (s *SubmissionService) Transition(ctx context.Context, id string, actor models.Actor, req TransitionRequest) (*models.Submission, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}
	if req.Status == models.SubmissionForwarded {
		return nil, newValidationError("status", "forwarding requires a target, use forward")
	}
	if _, known := allowedSubmissionTransitions[req.Status]; !known {
		return nil, newValidationError("status", fmt.Sprintf("unknown status %q", req.Status))
	}

	sub, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	current := sub.Status
	if !CanTransition(current, req.Status) {
		slog.Warn("Rejected submission transition",
			"submission_id", id, "actor_id", actor.ID, "from", current, "to", req.Status)
		return nil, &IllegalTransitionError{From: string(current), To: string(req.Status)}
	}

	transition, _ := transitionFor(req.Status)
	if !CanPerform(actor.Role, sub.SubmissionType, transition) {
		slog.Warn("Denied submission transition",
			"submission_id", id, "actor_id", actor.ID, "role", actor.Role, "transition", transition)
		return nil, newAuthorizationError(string(transition), actor.Role,
			fmt.Sprintf("not the designated reviewer of a %s submission", sub.SubmissionType))
	}
	if sub.ToUserID != actor.ID {
		return nil, newAuthorizationError(string(transition), actor.Role, "only the current holder may act on this submission")
	}

	if req.Sign && !signable(req.Status) {
		return nil, newValidationError("sign", "only approve, reject and acknowledge decisions can be signed")
	}

	now := s.clock.Now()
	sub.Status = req.Status
	if req.Feedback != nil {
		feedback := strings.TrimSpace(*req.Feedback)
		sub.Feedback = &feedback
	}
	// reviewedAt marks the first review decision and is never moved
	switch req.Status {
	case models.SubmissionApproved:
		if sub.ReviewedAt == nil {
			sub.ReviewedAt = &now
		}
		sub.ApprovedAt = &now
	case models.SubmissionRejected, models.SubmissionRevisionRequested:
		if sub.ReviewedAt == nil {
			sub.ReviewedAt = &now
		}
	case models.SubmissionAcknowledged:
		sub.AcknowledgedAt = &now
	}
	if req.Sign {
		sig, err := s.sign(ctx, sub, actor, now)
		if err != nil {
			return nil, err
		}
		sub.Signature = sig
	}
	sub.UpdatedAt = now

	action := auditActionFor(req.Status)
	details := fmt.Sprintf("Submission %q %s by %s", sub.Title, strings.ReplaceAll(string(req.Status), "_", " "), actor.DisplayName)
	if sub.Feedback != nil && *sub.Feedback != "" && req.Feedback != nil {
		details += ": " + *sub.Feedback
	}
	senderRole, _ := SenderRole(sub.SubmissionType)
	entry := &models.AuditEntry{
		DocumentID: sub.ID,
		UserID:     actor.ID,
		UserName:   actor.DisplayName,
		Action:     action,
		Details:    details,
		FromRole:   actor.Role,
		ToRole:     &senderRole,
		Timestamp:  now,
	}
	if err := s.audit.RecordWith(ctx, entry, func(ctx context.Context) error {
		return s.update(ctx, sub, current, req.Status)
	}); err != nil {
		return nil, err
	}

	slog.Info("Submission transitioned",
		"submission_id", sub.ID,
		"actor_id", actor.ID,
		"role", actor.Role,
		"from", current,
		"to", sub.Status,
	)

	s.notifier.Notify(ctx, Event{
		Kind:        EventKindSubmission,
		DocumentID:  sub.ID,
		Title:       sub.Title,
		Action:      action,
		Status:      string(sub.Status),
		ActorID:     actor.ID,
		ActorName:   actor.DisplayName,
		RecipientID: sub.FromUserID,
		Message:     derefString(sub.Feedback),
		OccurredAt:  now,
	})

	return sub, nil
}

// Forward hands a pending or revision-requested submission to a new holder
func (s *SubmissionService) Forward(ctx context.Context, id string, actor models.Actor, req ForwardRequest) (*models.Submission, error) {
	if err := validateActor(actor); err != nil {
		return nil, err
	}
	if err := validateRequest(&req); err != nil {
		return nil, err
	}

	sub, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}

	current := sub.Status
	if !CanTransition(current, models.SubmissionForwarded) {
		return nil, &IllegalTransitionError{From: string(current), To: string(models.SubmissionForwarded)}
	}
	if !CanPerform(actor.Role, sub.SubmissionType, TransitionForward) {
		return nil, newAuthorizationError(string(TransitionForward), actor.Role,
			fmt.Sprintf("not the designated reviewer of a %s submission", sub.SubmissionType))
	}
	if sub.ToUserID != actor.ID {
		return nil, newAuthorizationError(string(TransitionForward), actor.Role, "only the current holder may forward this submission")
	}

	target, err := s.directory.GetUser(ctx, req.ToUserID)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve forward target: %w", err)
	}
	if target == nil || !target.IsActive {
		return nil, newValidationError("toUserId", "unknown or inactive forward target")
	}
	if target.ID == actor.ID || target.ID == sub.FromUserID {
		return nil, newValidationError("toUserId", "cannot forward to yourself or back to the originator")
	}
	if !CanForwardTo(actor.Role, target.Role) {
		return nil, newAuthorizationError(string(TransitionForward), actor.Role,
			fmt.Sprintf("%s is outside the forwarding scope", target.Role))
	}
	edge, _ := EdgeFor(actor.Role, target.Role)

	now := s.clock.Now()
	sub.ForwardChain = append(sub.ForwardChain, models.ForwardHop{
		FromUserID:   actor.ID,
		FromUserName: actor.DisplayName,
		FromRole:     actor.Role,
		ToUserID:     target.ID,
		PrevType:     sub.SubmissionType,
		ForwardedAt:  now,
	})
	sub.ToUserID = target.ID
	sub.ToUserName = target.DisplayName
	sub.SubmissionType = edge
	sub.Status = models.SubmissionForwarded
	sub.ForwardedAt = &now
	sub.UpdatedAt = now

	details := fmt.Sprintf("Submission %q forwarded by %s to %s", sub.Title, actor.DisplayName, target.DisplayName)
	if note := strings.TrimSpace(req.Note); note != "" {
		details += ": " + note
	}
	targetRole := target.Role
	entry := &models.AuditEntry{
		DocumentID: sub.ID,
		UserID:     actor.ID,
		UserName:   actor.DisplayName,
		Action:     models.ActionForwarded,
		Details:    details,
		FromRole:   actor.Role,
		ToRole:     &targetRole,
		Timestamp:  now,
	}
	if err := s.audit.RecordWith(ctx, entry, func(ctx context.Context) error {
		return s.update(ctx, sub, current, models.SubmissionForwarded)
	}); err != nil {
		return nil, err
	}

	slog.Info("Submission forwarded",
		"submission_id", sub.ID,
		"actor_id", actor.ID,
		"role", actor.Role,
		"from", current,
		"to_user_id", target.ID,
	)

	s.notifier.Notify(ctx, Event{
		Kind:        EventKindSubmission,
		DocumentID:  sub.ID,
		Title:       sub.Title,
		Action:      models.ActionForwarded,
		Status:      string(sub.Status),
		ActorID:     actor.ID,
		ActorName:   actor.DisplayName,
		RecipientID: target.ID,
		Message:     req.Note,
		OccurredAt:  now,
	})

	return sub, nil
}

// Get returns a submission visible to the actor: its originator, its holder,
// a previous holder, or an oversight role
func (s *SubmissionService) Get(ctx context.Context, id string, actor models.Actor) (*models.Submission, error) {
	sub, err := s.getExisting(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canViewSubmission(sub, actor) {
		return nil, newAuthorizationError("view", actor.Role, "not a participant of this submission")
	}
	return sub, nil
}

// List returns all submissions
func (s *SubmissionService) List(ctx context.Context) ([]models.Submission, error) {
	return s.store.List(ctx, SubmissionFilter{})
}

// ListByUser returns submissions authored by the user
func (s *SubmissionService) ListByUser(ctx context.Context, userID string) ([]models.Submission, error) {
	return s.store.List(ctx, SubmissionFilter{FromUserID: userID})
}

// ListToUser returns submissions currently addressed to the user
func (s *SubmissionService) ListToUser(ctx context.Context, userID string) ([]models.Submission, error) {
	return s.store.List(ctx, SubmissionFilter{ToUserID: userID})
}

// ListPending returns submissions still in pending
func (s *SubmissionService) ListPending(ctx context.Context) ([]models.Submission, error) {
	return s.store.List(ctx, SubmissionFilter{Status: models.SubmissionPending})
}

// VerifySignature checks the signature stamped on a submission
func (s *SubmissionService) VerifySignature(ctx context.Context, id string, actor models.Actor) (bool, error) {
	sub, err := s.Get(ctx, id, actor)
	if err != nil {
		return false, err
	}
	if sub.Signature == nil {
		return false, newValidationError("signature", "submission is not signed")
	}
	if s.signer == nil {
		return false, newValidationError("signature", "signing is not configured")
	}
	payload := signaturePayload(sub.ID, sub.Status, sub.Signature.SignerID, sub.Signature.SignerRole, sub.Signature.SignedAt)
	return s.signer.Verify(ctx, sub.Signature.SignerID, payload, sub.Signature.Digest)
}

// update stores sub if nobody changed it since it was read
func (s *SubmissionService) update(ctx context.Context, sub *models.Submission, from, to models.SubmissionStatus) error {
	if err := s.store.UpdateStatus(ctx, sub); err != nil {
		if errors.Is(err, repository.ErrStaleStatus) {
			slog.Warn("Stale submission update", "submission_id", sub.ID, "from", from, "to", to, "version", sub.Version)
			return &IllegalTransitionError{From: string(from), To: string(to), Reason: "submission changed concurrently, refetch and retry"}
		}
		return fmt.Errorf("failed to update submission: %w", err)
	}
	return nil
}

func (s *SubmissionService) getExisting(ctx context.Context, id string) (*models.Submission, error) {
	if strings.TrimSpace(id) == "" {
		return nil, newValidationError("id", "is required")
	}
	sub, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get submission: %w", err)
	}
	if sub == nil {
		return nil, &NotFoundError{Resource: "submission", ID: id}
	}
	return sub, nil
}

func (s *SubmissionService) resolveTarget(ctx context.Context, req SubmitRequest) (*models.DirectoryUser, error) {
	userID := strings.TrimSpace(req.ToUserID)
	unit := strings.TrimSpace(req.ToUnit)

	var (
		target *models.DirectoryUser
		err    error
	)
	switch {
	case userID != "":
		target, err = s.directory.GetUser(ctx, userID)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve recipient: %w", err)
		}
		if target == nil {
			return nil, newValidationError("toUserId", fmt.Sprintf("unknown recipient %s", userID))
		}
	case unit != "":
		target, err = s.directory.GetUnitHead(ctx, unit)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve unit head: %w", err)
		}
		if target == nil {
			return nil, newValidationError("toUnit", fmt.Sprintf("unit %q has no assigned head", unit))
		}
	default:
		return nil, newValidationError("toUserId", "a recipient user or unit is required")
	}

	if !target.IsActive {
		return nil, newValidationError("toUserId", fmt.Sprintf("recipient %s is inactive", target.ID))
	}
	return target, nil
}

func (s *SubmissionService) sign(ctx context.Context, sub *models.Submission, actor models.Actor, at time.Time) (*models.SignatureRecord, error) {
	if s.signer == nil {
		return nil, newValidationError("sign", "signing is not configured")
	}
	payload := signaturePayload(sub.ID, sub.Status, actor.ID, actor.Role, at)
	digest, keyRef, err := s.signer.Sign(ctx, actor.ID, payload)
	if err != nil {
		return nil, fmt.Errorf("failed to sign decision: %w", err)
	}
	return &models.SignatureRecord{
		SignerID:   actor.ID,
		SignerName: actor.DisplayName,
		SignerRole: actor.Role,
		SignedAt:   at,
		Digest:     digest,
		KeyRef:     keyRef,
	}, nil
}

// resolveEdge checks an explicit edge against the two roles, or derives it
func resolveEdge(sender, reviewer models.Role, requested models.EdgeKind) (models.EdgeKind, error) {
	if requested == "" {
		edge, ok := EdgeFor(sender, reviewer)
		if !ok {
			return "", newValidationError("toUserId", fmt.Sprintf("no routing edge from %s to %s", sender, reviewer))
		}
		return edge, nil
	}

	if _, ok := submissionEdges[requested]; !ok {
		return "", newValidationError("submissionType", fmt.Sprintf("unknown submission type %q", requested))
	}
	if !CanPerform(sender, requested, TransitionSubmit) {
		return "", newValidationError("submissionType", fmt.Sprintf("role %s cannot originate a %s submission", sender, requested))
	}
	if expected, _ := ReviewerRole(requested); expected != reviewer {
		return "", newValidationError("toUserId", fmt.Sprintf("a %s submission must be addressed to a %s, not a %s", requested, expected, reviewer))
	}
	return requested, nil
}

func signaturePayload(submissionID string, status models.SubmissionStatus, signerID string, role models.Role, at time.Time) []byte {
	return []byte(strings.Join([]string{
		submissionID,
		string(status),
		signerID,
		string(role),
		at.UTC().Format(time.RFC3339Nano),
	}, "|"))
}

func signable(status models.SubmissionStatus) bool {
	return status == models.SubmissionApproved || status == models.SubmissionRejected || status == models.SubmissionAcknowledged
}

func auditActionFor(status models.SubmissionStatus) models.AuditAction {
	switch status {
	case models.SubmissionApproved:
		return models.ActionApproved
	case models.SubmissionRejected:
		return models.ActionRejected
	case models.SubmissionRevisionRequested:
		return models.ActionRevisionRequested
	case models.SubmissionAcknowledged:
		return models.ActionAcknowledged
	default:
		return models.ActionForwarded
	}
}

func canViewSubmission(sub *models.Submission, actor models.Actor) bool {
	if isOversightRole(actor.Role) {
		return true
	}
	if sub.FromUserID == actor.ID || sub.ToUserID == actor.ID {
		return true
	}
	for _, hop := range sub.ForwardChain {
		if hop.FromUserID == actor.ID {
			return true
		}
	}
	return false
}

func validateAttachments(attachments []models.Attachment) error {
	for i, a := range attachments {
		field := fmt.Sprintf("attachments[%d]", i)
		if strings.TrimSpace(a.Name) == "" {
			return newValidationError(field+".name", "is required")
		}
		if a.Size < 0 {
			return newValidationError(field+".size", "must not be negative")
		}
		if strings.TrimSpace(a.Location) == "" {
			return newValidationError(field+".location", "is required")
		}
	}
	return nil
}
