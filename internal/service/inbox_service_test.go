package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medidocs/internal/models"
)

func TestProjectShares(t *testing.T) {
	now := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
	shares := []models.Share{
		{ID: "s1", Status: models.ShareSent},
		{ID: "s2", Status: models.ShareReceived, ReceivedAt: &now},
		{ID: "s3", Status: models.ShareSeen, ReceivedAt: &now, SeenAt: &now},
		{ID: "s4", Status: models.ShareAcknowledged, ReceivedAt: &now, SeenAt: &now, AcknowledgedAt: &now},
	}

	b := ProjectShares(shares)
	assert.Len(t, b.All, 4)
	assert.Equal(t, []string{"s1", "s2"}, shareIDs(b.New))
	assert.Equal(t, []string{"s3"}, shareIDs(b.Viewed))
	assert.Equal(t, []string{"s4"}, shareIDs(b.Acknowledged))

	// projection leaves its input untouched
	assert.Nil(t, shares[0].SeenAt)
}

func TestProjectSubmissions(t *testing.T) {
	subs := []models.Submission{
		{ID: "a", Status: models.SubmissionPending},
		{ID: "b", Status: models.SubmissionForwarded},
		{ID: "c", Status: models.SubmissionApproved},
		{ID: "d", Status: models.SubmissionRejected},
		{ID: "e", Status: models.SubmissionRevisionRequested},
		{ID: "f", Status: models.SubmissionAcknowledged},
	}

	b := ProjectSubmissions(subs)
	assert.Len(t, b.All, 6)
	assert.Len(t, b.Pending, 2)
	assert.Len(t, b.Approved, 1)
	assert.Len(t, b.Rejected, 1)
	assert.Len(t, b.RevisionRequested, 1)
}

func TestBuildInboxEmpty(t *testing.T) {
	inbox := BuildInbox("u-1", nil, nil)
	assert.Equal(t, 0, inbox.PendingCount)
	assert.Equal(t, 0, inbox.NewCount)
	assert.NotNil(t, inbox.Submissions.Pending)
	assert.NotNil(t, inbox.Shares.New)
	assert.NotNil(t, inbox.Shares.All)
}

func TestInboxReflectsStores(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	hod := env.fx.HOD.Actor()

	_, err := env.submissions.Submit(ctx, env.fx.Staff.Actor(), SubmitRequest{Title: "Leave Request", ToUserID: hod.ID})
	require.NoError(t, err)
	decided, err := env.submissions.Submit(ctx, env.fx.Staff.Actor(), SubmitRequest{Title: "Training", ToUserID: hod.ID})
	require.NoError(t, err)
	_, err = env.submissions.Transition(ctx, decided.ID, hod, TransitionRequest{Status: models.SubmissionRejected})
	require.NoError(t, err)

	share, err := env.shares.Share(ctx, env.fx.CMD.Actor(), ShareRequest{DocumentID: "circular", ToUserID: strPtr(hod.ID)})
	require.NoError(t, err)
	_, err = env.shares.Share(ctx, env.fx.Records.Actor(), ShareRequest{DocumentID: "policy", ToDepartment: strPtr("Radiology")})
	require.NoError(t, err)

	inbox, err := env.inbox.Get(ctx, hod)
	require.NoError(t, err)
	assert.Equal(t, hod.ID, inbox.ActorID)
	assert.Equal(t, 1, inbox.PendingCount)
	assert.Equal(t, 2, inbox.NewCount)
	assert.Len(t, inbox.Submissions.Rejected, 1)

	_, err = env.shares.MarkSeen(ctx, share.ID, hod)
	require.NoError(t, err)

	inbox, err = env.inbox.Get(ctx, hod)
	require.NoError(t, err)
	assert.Equal(t, 1, inbox.NewCount)
	assert.Len(t, inbox.Shares.Viewed, 1)

	_, err = env.inbox.Get(ctx, models.Actor{})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}

func shareIDs(shares []models.Share) []string {
	ids := make([]string, 0, len(shares))
	for _, s := range shares {
		ids = append(ids, s.ID)
	}
	return ids
}
