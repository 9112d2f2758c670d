package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medidocs/internal/models"
	"medidocs/internal/repository"
)

func TestLeaveRequestRevisionScenario(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	staff := env.fx.Staff.Actor()
	hod := env.fx.HOD.Actor()

	sub, err := env.submissions.Submit(ctx, staff, SubmitRequest{Title: "Leave Request", ToUserID: hod.ID})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionPending, sub.Status)
	assert.Equal(t, models.EdgeStaffToHOD, sub.SubmissionType)
	assert.Nil(t, sub.ReviewedAt)

	feedback := "add dates"
	updated, err := env.submissions.Transition(ctx, sub.ID, hod, TransitionRequest{
		Status:   models.SubmissionRevisionRequested,
		Feedback: &feedback,
	})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionRevisionRequested, updated.Status)
	require.NotNil(t, updated.ReviewedAt)
	require.NotNil(t, updated.Feedback)
	assert.Equal(t, "add dates", *updated.Feedback)

	trail := env.auditTrail(t, sub.ID)
	assert.Equal(t, []models.AuditAction{models.ActionSent, models.ActionRevisionRequested}, actions(trail))

	// the originator cannot move it back to pending; a fresh submit is the way forward
	_, err = env.submissions.Transition(ctx, sub.ID, staff, TransitionRequest{Status: models.SubmissionPending})
	var illegal *IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, "revision_requested", illegal.From)
	assert.Len(t, env.auditTrail(t, sub.ID), 2)

	resubmitted, err := env.submissions.Submit(ctx, staff, SubmitRequest{Title: "Leave Request (with dates)", ToUserID: hod.ID})
	require.NoError(t, err)
	assert.NotEqual(t, sub.ID, resubmitted.ID)
	assert.Equal(t, models.SubmissionPending, resubmitted.Status)
}

func TestApprovedIsTerminal(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hod := env.fx.HOD.Actor()
	cmd := env.fx.CMD.Actor()

	sub, err := env.submissions.Submit(ctx, hod, SubmitRequest{Title: "Equipment budget", ToUserID: cmd.ID})
	require.NoError(t, err)
	assert.Equal(t, models.EdgeHODToCMD, sub.SubmissionType)

	approved, err := env.submissions.Transition(ctx, sub.ID, cmd, TransitionRequest{Status: models.SubmissionApproved})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, approved.Status)
	assert.NotNil(t, approved.ApprovedAt)
	assert.NotNil(t, approved.ReviewedAt)

	_, err = env.submissions.Transition(ctx, sub.ID, cmd, TransitionRequest{Status: models.SubmissionRejected})
	var illegal *IllegalTransitionError
	require.ErrorAs(t, err, &illegal)
	assert.Equal(t, "approved", illegal.From)
	assert.Equal(t, "rejected", illegal.To)

	stored, err := env.submissions.Get(ctx, sub.ID, cmd)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, stored.Status)
	assert.Equal(t, []models.AuditAction{models.ActionSent, models.ActionApproved}, actions(env.auditTrail(t, sub.ID)))
}

func TestTransitionAuthorization(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sub, err := env.submissions.Submit(ctx, env.fx.HOD.Actor(), SubmitRequest{Title: "Theatre schedule", ToUserID: env.fx.CMD.ID})
	require.NoError(t, err)

	tests := []struct {
		name  string
		actor models.Actor
	}{
		{"staff cannot approve a hod_to_cmd submission", env.fx.Staff.Actor()},
		{"sender cannot approve its own submission", env.fx.HOD.Actor()},
		{"director cannot approve a hod_to_cmd submission", env.fx.Director.Actor()},
		{"admin oversight does not grant decisions", env.fx.Admin.Actor()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.submissions.Transition(ctx, sub.ID, tt.actor, TransitionRequest{Status: models.SubmissionApproved})
			var authErr *AuthorizationError
			require.ErrorAs(t, err, &authErr)
			assert.Equal(t, tt.actor.Role, authErr.Role)
			assert.Equal(t, string(TransitionApprove), authErr.Action)
			assert.Contains(t, err.Error(), string(tt.actor.Role))
		})
	}

	// a second CMD is the right role but not the holder
	otherCMD := models.Actor{ID: "u-cmd-2", DisplayName: "Deputy CMD", Role: models.RoleCMD}
	_, err = env.submissions.Transition(ctx, sub.ID, otherCMD, TransitionRequest{Status: models.SubmissionApproved})
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)

	assert.Len(t, env.auditTrail(t, sub.ID), 1)
}

func TestTransitionErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hod := env.fx.HOD.Actor()

	sub, err := env.submissions.Submit(ctx, env.fx.Staff.Actor(), SubmitRequest{Title: "Shift swap", ToUserID: hod.ID})
	require.NoError(t, err)

	t.Run("unknown id", func(t *testing.T) {
		_, err := env.submissions.Transition(ctx, "missing", hod, TransitionRequest{Status: models.SubmissionApproved})
		var nf *NotFoundError
		require.ErrorAs(t, err, &nf)
		assert.Equal(t, "missing", nf.ID)
	})

	t.Run("unknown status", func(t *testing.T) {
		_, err := env.submissions.Transition(ctx, sub.ID, hod, TransitionRequest{Status: "archived"})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("forward through transition", func(t *testing.T) {
		_, err := env.submissions.Transition(ctx, sub.ID, hod, TransitionRequest{Status: models.SubmissionForwarded})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "status", ve.Field)
	})

	t.Run("missing status", func(t *testing.T) {
		_, err := env.submissions.Transition(ctx, sub.ID, hod, TransitionRequest{})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("invalid actor", func(t *testing.T) {
		_, err := env.submissions.Transition(ctx, sub.ID, models.Actor{ID: "x", Role: "janitor"}, TransitionRequest{Status: models.SubmissionApproved})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("signing a revision request", func(t *testing.T) {
		_, err := env.submissions.Transition(ctx, sub.ID, hod, TransitionRequest{Status: models.SubmissionRevisionRequested, Sign: true})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
		assert.Equal(t, "sign", ve.Field)
	})

	stored, err := env.subStore.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionPending, stored.Status)
}

func TestSubmitValidation(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	staff := env.fx.Staff.Actor()

	tests := []struct {
		name  string
		actor models.Actor
		req   SubmitRequest
		field string
	}{
		{"empty title", staff, SubmitRequest{Title: "", ToUserID: env.fx.HOD.ID}, "title"},
		{"blank title", staff, SubmitRequest{Title: "   ", ToUserID: env.fx.HOD.ID}, "title"},
		{"no recipient", staff, SubmitRequest{Title: "Memo"}, "toUserId"},
		{"unknown recipient", staff, SubmitRequest{Title: "Memo", ToUserID: "nobody"}, "toUserId"},
		{"inactive recipient", staff, SubmitRequest{Title: "Memo", ToUserID: env.fx.Inactive.ID}, "toUserId"},
		{"unit without head", env.fx.Director.Actor(), SubmitRequest{Title: "Memo", ToUnit: env.fx.HeadlessUnit}, "toUnit"},
		{"self addressed", staff, SubmitRequest{Title: "Memo", ToUserID: staff.ID}, "toUserId"},
		{"no edge between roles", staff, SubmitRequest{Title: "Memo", ToUserID: env.fx.CMD.ID}, "toUserId"},
		{"unknown type", staff, SubmitRequest{Title: "Memo", ToUserID: env.fx.HOD.ID, SubmissionType: "staff_to_ceo"}, "submissionType"},
		{"type the sender cannot originate", staff, SubmitRequest{Title: "Memo", ToUserID: env.fx.CMD.ID, SubmissionType: models.EdgeHODToCMD}, "submissionType"},
		{"type with wrong reviewer", env.fx.HOD.Actor(), SubmitRequest{Title: "Memo", ToUserID: env.fx.Director.ID, SubmissionType: models.EdgeHODToCMD}, "toUserId"},
		{"attachment without location", staff, SubmitRequest{
			Title:       "Memo",
			ToUserID:    env.fx.HOD.ID,
			Attachments: []models.Attachment{{Name: "scan.pdf", Size: 10}},
		}, "attachments[0].location"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.submissions.Submit(ctx, tt.actor, tt.req)
			var ve *ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Equal(t, tt.field, ve.Field)
		})
	}

	all, err := env.submissions.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestSubmitToUnitResolvesHead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sub, err := env.submissions.Submit(ctx, env.fx.Director.Actor(), SubmitRequest{
		Title:       "Radiation safety directive",
		ToUnit:      env.fx.HeadedUnit,
		Attachments: []models.Attachment{{Name: "directive.pdf", Size: 2048, Type: "application/pdf", Location: "s3://docs/directive.pdf"}},
	})
	require.NoError(t, err)
	assert.Equal(t, env.fx.UnitHead.ID, sub.ToUserID)
	assert.Equal(t, models.EdgeDirectorToUnitHead, sub.SubmissionType)
	require.NotNil(t, sub.ToUnit)
	assert.Equal(t, env.fx.HeadedUnit, *sub.ToUnit)
	assert.Len(t, sub.Attachments, 1)

	events := env.notifier.Events()
	require.Len(t, events, 1)
	assert.Equal(t, env.fx.UnitHead.ID, events[0].RecipientID)
	assert.Equal(t, models.ActionSent, events[0].Action)
}

func TestUnitHeadDirectiveCanOnlyBeAcknowledged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	staff := env.fx.Staff.Actor()

	sub, err := env.submissions.Submit(ctx, env.fx.UnitHead.Actor(), SubmitRequest{Title: "Rota change", ToUserID: staff.ID})
	require.NoError(t, err)
	assert.Equal(t, models.EdgeUnitHeadToStaff, sub.SubmissionType)

	_, err = env.submissions.Transition(ctx, sub.ID, staff, TransitionRequest{Status: models.SubmissionApproved})
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)

	acked, err := env.submissions.Transition(ctx, sub.ID, staff, TransitionRequest{Status: models.SubmissionAcknowledged, Sign: true})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionAcknowledged, acked.Status)
	assert.NotNil(t, acked.AcknowledgedAt)
	assert.Nil(t, acked.ReviewedAt)
	require.NotNil(t, acked.Signature)
	assert.Equal(t, staff.ID, acked.Signature.SignerID)

	ok, err := env.submissions.VerifySignature(ctx, sub.ID, staff)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSignedDecisionVerification(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cmd := env.fx.CMD.Actor()

	sub, err := env.submissions.Submit(ctx, env.fx.HOD.Actor(), SubmitRequest{Title: "CT scanner procurement", ToUserID: cmd.ID})
	require.NoError(t, err)

	approved, err := env.submissions.Transition(ctx, sub.ID, cmd, TransitionRequest{Status: models.SubmissionApproved, Sign: true})
	require.NoError(t, err)
	require.NotNil(t, approved.Signature)
	assert.Equal(t, models.RoleCMD, approved.Signature.SignerRole)
	assert.Equal(t, *approved.ApprovedAt, approved.Signature.SignedAt)

	ok, err := env.submissions.VerifySignature(ctx, sub.ID, cmd)
	require.NoError(t, err)
	assert.True(t, ok)

	// tamper with the stored record behind the service's back
	stored, err := env.subStore.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	stored.Signature.SignerID = env.fx.HOD.ID
	require.NoError(t, env.subStore.UpdateStatus(ctx, stored))

	ok, err = env.submissions.VerifySignature(ctx, sub.ID, cmd)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestForward(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hod := env.fx.HOD.Actor()
	cmd := env.fx.CMD.Actor()
	director := env.fx.Director.Actor()

	sub, err := env.submissions.Submit(ctx, hod, SubmitRequest{Title: "Staffing plan", ToUserID: cmd.ID})
	require.NoError(t, err)

	forwarded, err := env.submissions.Forward(ctx, sub.ID, cmd, ForwardRequest{ToUserID: director.ID, Note: "please action"})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionForwarded, forwarded.Status)
	assert.Equal(t, director.ID, forwarded.ToUserID)
	assert.Equal(t, models.EdgeCMDToDirector, forwarded.SubmissionType)
	require.Len(t, forwarded.ForwardChain, 1)
	hop := forwarded.ForwardChain[0]
	assert.Equal(t, cmd.ID, hop.FromUserID)
	assert.Equal(t, director.ID, hop.ToUserID)
	assert.Equal(t, models.EdgeHODToCMD, hop.PrevType)
	assert.NotNil(t, forwarded.ForwardedAt)

	// the previous holder has lost the right to decide but can still read it
	_, err = env.submissions.Transition(ctx, sub.ID, cmd, TransitionRequest{Status: models.SubmissionApproved})
	var authErr *AuthorizationError
	require.ErrorAs(t, err, &authErr)
	_, err = env.submissions.Get(ctx, sub.ID, cmd)
	require.NoError(t, err)

	// forwarded -> forwarded is not an edge
	_, err = env.submissions.Forward(ctx, sub.ID, director, ForwardRequest{ToUserID: env.fx.UnitHead.ID})
	var illegal *IllegalTransitionError
	require.ErrorAs(t, err, &illegal)

	acked, err := env.submissions.Transition(ctx, sub.ID, director, TransitionRequest{Status: models.SubmissionAcknowledged})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionAcknowledged, acked.Status)

	trail := env.auditTrail(t, sub.ID)
	assert.Equal(t, []models.AuditAction{models.ActionSent, models.ActionForwarded, models.ActionAcknowledged}, actions(trail))
	require.NotNil(t, trail[1].ToRole)
	assert.Equal(t, models.RoleDirectorAdmin, *trail[1].ToRole)
}

func TestForwardScope(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	director := env.fx.Director.Actor()
	unitHead := env.fx.UnitHead.Actor()

	sub, err := env.submissions.Submit(ctx, director, SubmitRequest{Title: "Audit prep", ToUserID: unitHead.ID})
	require.NoError(t, err)

	t.Run("unit head cannot forward to cmd", func(t *testing.T) {
		_, err := env.submissions.Forward(ctx, sub.ID, unitHead, ForwardRequest{ToUserID: env.fx.CMD.ID})
		var authErr *AuthorizationError
		require.ErrorAs(t, err, &authErr)
		assert.Equal(t, models.RoleUnitHead, authErr.Role)
	})

	t.Run("not back to the originator", func(t *testing.T) {
		_, err := env.submissions.Forward(ctx, sub.ID, unitHead, ForwardRequest{ToUserID: director.ID})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("not to an inactive user", func(t *testing.T) {
		_, err := env.submissions.Forward(ctx, sub.ID, unitHead, ForwardRequest{ToUserID: env.fx.Inactive.ID})
		var ve *ValidationError
		require.ErrorAs(t, err, &ve)
	})

	t.Run("only the holder forwards", func(t *testing.T) {
		_, err := env.submissions.Forward(ctx, sub.ID, director, ForwardRequest{ToUserID: env.fx.Staff.ID})
		var authErr *AuthorizationError
		require.ErrorAs(t, err, &authErr)
	})

	forwarded, err := env.submissions.Forward(ctx, sub.ID, unitHead, ForwardRequest{ToUserID: env.fx.Staff.ID})
	require.NoError(t, err)
	assert.Equal(t, models.EdgeUnitHeadToStaff, forwarded.SubmissionType)
}

func TestForwardAfterRevisionRequest(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hod := env.fx.HOD.Actor()

	sub, err := env.submissions.Submit(ctx, env.fx.Staff.Actor(), SubmitRequest{Title: "Overtime claim", ToUserID: hod.ID})
	require.NoError(t, err)
	_, err = env.submissions.Transition(ctx, sub.ID, hod, TransitionRequest{Status: models.SubmissionRevisionRequested})
	require.NoError(t, err)

	forwarded, err := env.submissions.Forward(ctx, sub.ID, hod, ForwardRequest{ToUserID: env.fx.CMD.ID})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionForwarded, forwarded.Status)

	rejected, err := env.submissions.Transition(ctx, sub.ID, env.fx.CMD.Actor(), TransitionRequest{Status: models.SubmissionRejected})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionRejected, rejected.Status)
}

func TestSubmissionVisibility(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	sub, err := env.submissions.Submit(ctx, env.fx.Staff.Actor(), SubmitRequest{Title: "Private", ToUserID: env.fx.HOD.ID})
	require.NoError(t, err)

	for _, actor := range []models.Actor{env.fx.Staff.Actor(), env.fx.HOD.Actor(), env.fx.Admin.Actor(), env.fx.CMD.Actor()} {
		_, err := env.submissions.Get(ctx, sub.ID, actor)
		assert.NoError(t, err, "actor %s", actor.ID)
	}

	_, err = env.submissions.Get(ctx, sub.ID, env.fx.DentalStaff.Actor())
	var authErr *AuthorizationError
	assert.ErrorAs(t, err, &authErr)
}

func TestSubmissionQueries(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	staff := env.fx.Staff.Actor()
	hod := env.fx.HOD.Actor()

	first, err := env.submissions.Submit(ctx, staff, SubmitRequest{Title: "One", ToUserID: hod.ID})
	require.NoError(t, err)
	_, err = env.submissions.Submit(ctx, staff, SubmitRequest{Title: "Two", ToUserID: hod.ID})
	require.NoError(t, err)
	_, err = env.submissions.Submit(ctx, hod, SubmitRequest{Title: "Three", ToUserID: env.fx.CMD.ID})
	require.NoError(t, err)
	_, err = env.submissions.Transition(ctx, first.ID, hod, TransitionRequest{Status: models.SubmissionApproved})
	require.NoError(t, err)

	all, err := env.submissions.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
	assert.Equal(t, "Three", all[0].Title)

	byStaff, err := env.submissions.ListByUser(ctx, staff.ID)
	require.NoError(t, err)
	assert.Len(t, byStaff, 2)

	toHOD, err := env.submissions.ListToUser(ctx, hod.ID)
	require.NoError(t, err)
	assert.Len(t, toHOD, 2)

	pending, err := env.submissions.ListPending(ctx)
	require.NoError(t, err)
	assert.Len(t, pending, 2)
}

func TestConcurrentDecisionsOnlyOneWins(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	cmd := env.fx.CMD.Actor()

	sub, err := env.submissions.Submit(ctx, env.fx.HOD.Actor(), SubmitRequest{Title: "Contested", ToUserID: cmd.ID})
	require.NoError(t, err)

	statuses := []models.SubmissionStatus{models.SubmissionApproved, models.SubmissionRejected}
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = env.submissions.Transition(ctx, sub.ID, cmd, TransitionRequest{Status: statuses[i%2]})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		var illegal *IllegalTransitionError
		assert.True(t, errors.As(err, &illegal), "unexpected error: %v", err)
	}
	assert.Equal(t, 1, succeeded)
	assert.Len(t, env.auditTrail(t, sub.ID), 2)
}

// pausingSubmissionStore holds every read until all expected readers have read,
// so that they all act on the same snapshot
type pausingSubmissionStore struct {
	*repository.MemorySubmissionStore
	readers sync.WaitGroup
}

func (s *pausingSubmissionStore) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	sub, err := s.MemorySubmissionStore.GetByID(ctx, id)
	s.readers.Done()
	s.readers.Wait()
	return sub, err
}

func TestConcurrentRevisionRequestsDetectStaleRead(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hod := env.fx.HOD.Actor()

	sub, err := env.submissions.Submit(ctx, env.fx.Staff.Actor(), SubmitRequest{Title: "Leave Request", ToUserID: hod.ID})
	require.NoError(t, err)
	_, err = env.submissions.Transition(ctx, sub.ID, hod, TransitionRequest{Status: models.SubmissionRevisionRequested, Feedback: strPtr("add dates")})
	require.NoError(t, err)

	store := &pausingSubmissionStore{MemorySubmissionStore: env.subStore}
	store.readers.Add(2)
	racing := NewSubmissionService(store, env.directory, env.audit, nil, nil, env.clock)

	feedback := []string{"attach the roster", "name a cover"}
	results := make([]*models.Submission, len(feedback))
	errs := make([]error, len(feedback))
	var wg sync.WaitGroup
	for i := range feedback {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = racing.Transition(ctx, sub.ID, hod, TransitionRequest{
				Status:   models.SubmissionRevisionRequested,
				Feedback: &feedback[i],
			})
		}(i)
	}
	wg.Wait()

	winner := -1
	for i, err := range errs {
		if err == nil {
			require.Equal(t, -1, winner, "both writers succeeded on the same snapshot")
			winner = i
			continue
		}
		var illegal *IllegalTransitionError
		require.ErrorAs(t, err, &illegal)
		assert.Equal(t, "revision_requested", illegal.From)
	}
	require.NotEqual(t, -1, winner)

	stored, err := env.subStore.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, feedback[winner], *stored.Feedback)
	assert.Equal(t, results[winner].Version, stored.Version)
	assert.Equal(t, []models.AuditAction{
		models.ActionSent,
		models.ActionRevisionRequested,
		models.ActionRevisionRequested,
	}, actions(env.auditTrail(t, sub.ID)))
}

// failingAuditStore rejects appends while fail is set
type failingAuditStore struct {
	*repository.MemoryAuditStore
	fail atomic.Bool
}

func (s *failingAuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	if s.fail.Load() {
		return errors.New("audit volume unavailable")
	}
	return s.MemoryAuditStore.Append(ctx, entry)
}

func TestFailedAuditAppendKeepsSubmissionUnchanged(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	staff := env.fx.Staff.Actor()
	hod := env.fx.HOD.Actor()

	auditStore := &failingAuditStore{MemoryAuditStore: repository.NewMemoryAuditStore()}
	audit := NewAuditService(auditStore, nil, env.clock)
	submissions := NewSubmissionService(env.subStore, env.directory, audit, env.notifier, nil, env.clock)

	sub, err := submissions.Submit(ctx, staff, SubmitRequest{Title: "Leave Request", ToUserID: hod.ID})
	require.NoError(t, err)

	auditStore.fail.Store(true)
	_, err = submissions.Transition(ctx, sub.ID, hod, TransitionRequest{Status: models.SubmissionApproved})
	require.ErrorContains(t, err, "audit volume unavailable")

	stored, err := env.subStore.GetByID(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionPending, stored.Status)
	assert.Equal(t, int64(1), stored.Version)
	assert.Nil(t, stored.ReviewedAt)
	assert.Nil(t, stored.ApprovedAt)

	_, err = submissions.Submit(ctx, staff, SubmitRequest{Title: "Shift swap", ToUserID: hod.ID})
	require.Error(t, err)
	mine, err := submissions.ListByUser(ctx, staff.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
	assert.Len(t, env.notifier.Events(), 1)

	// the decision can be retried once the audit store recovers
	auditStore.fail.Store(false)
	approved, err := submissions.Transition(ctx, sub.ID, hod, TransitionRequest{Status: models.SubmissionApproved})
	require.NoError(t, err)
	assert.Equal(t, models.SubmissionApproved, approved.Status)

	chain, err := auditStore.ListChain(ctx, sub.ID)
	require.NoError(t, err)
	assert.Equal(t, []models.AuditAction{models.ActionSent, models.ActionApproved}, actions(chain))
}

func TestReviewedAtMarksFirstDecision(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hod := env.fx.HOD.Actor()

	sub, err := env.submissions.Submit(ctx, env.fx.Staff.Actor(), SubmitRequest{Title: "Leave Request", ToUserID: hod.ID})
	require.NoError(t, err)

	revised, err := env.submissions.Transition(ctx, sub.ID, hod, TransitionRequest{Status: models.SubmissionRevisionRequested})
	require.NoError(t, err)
	require.NotNil(t, revised.ReviewedAt)
	firstReview := *revised.ReviewedAt

	approved, err := env.submissions.Transition(ctx, sub.ID, hod, TransitionRequest{Status: models.SubmissionApproved})
	require.NoError(t, err)
	assert.Equal(t, firstReview, *approved.ReviewedAt)
	require.NotNil(t, approved.ApprovedAt)
	assert.True(t, approved.ApprovedAt.After(firstReview))
	assert.Equal(t, int64(3), approved.Version)
}
