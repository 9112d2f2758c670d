package repository

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medidocs/internal/models"
)

func TestMemorySubmissionStoreCopiesRecords(t *testing.T) {
	store := NewMemorySubmissionStore()
	ctx := context.Background()

	sub := &models.Submission{ID: "sub-1", Status: models.SubmissionPending, Attachments: []models.Attachment{{Name: "a"}}}
	require.NoError(t, store.Create(ctx, sub))
	assert.Error(t, store.Create(ctx, sub))

	sub.Attachments[0].Name = "mutated"
	got, err := store.GetByID(ctx, "sub-1")
	require.NoError(t, err)
	assert.Equal(t, "a", got.Attachments[0].Name)

	got.Status = models.SubmissionApproved
	again, _ := store.GetByID(ctx, "sub-1")
	assert.Equal(t, models.SubmissionPending, again.Status)

	missing, err := store.GetByID(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMemorySubmissionStoreCompareAndSet(t *testing.T) {
	store := NewMemorySubmissionStore()
	ctx := context.Background()
	require.NoError(t, store.Create(ctx, &models.Submission{ID: "sub-1", Status: models.SubmissionRevisionRequested, Version: 1}))

	first, _ := store.GetByID(ctx, "sub-1")
	second, _ := store.GetByID(ctx, "sub-1")

	// same status on both sides, only the version tells them apart
	first.Feedback = strPtr("add dates")
	require.NoError(t, store.UpdateStatus(ctx, first))
	assert.Equal(t, int64(2), first.Version)

	second.Feedback = strPtr("add ward")
	assert.ErrorIs(t, store.UpdateStatus(ctx, second), ErrStaleStatus)
	assert.Equal(t, int64(1), second.Version)

	got, _ := store.GetByID(ctx, "sub-1")
	assert.Equal(t, "add dates", *got.Feedback)

	assert.ErrorIs(t, store.UpdateStatus(ctx, &models.Submission{ID: "ghost"}), ErrStaleStatus)
}

func TestMemoryTxUndoesFailedUnitOfWork(t *testing.T) {
	subs := NewMemorySubmissionStore()
	shares := NewMemoryShareStore()
	audit := NewMemoryAuditStore()
	tx := NewMemoryTx()
	ctx := context.Background()

	require.NoError(t, subs.Create(ctx, &models.Submission{ID: "sub-1", Status: models.SubmissionPending, Version: 1}))
	require.NoError(t, audit.Append(ctx, &models.AuditEntry{ID: "a-1", DocumentID: "sub-1"}))

	boom := errors.New("boom")
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, _ := subs.GetByID(ctx, "sub-1")
		sub.Status = models.SubmissionApproved
		require.NoError(t, subs.UpdateStatus(ctx, sub))
		require.NoError(t, subs.Create(ctx, &models.Submission{ID: "sub-2", Version: 1}))
		require.NoError(t, shares.Create(ctx, &models.Share{ID: "s-1", Status: models.ShareSent}))
		require.NoError(t, audit.Append(ctx, &models.AuditEntry{ID: "a-2", DocumentID: "sub-1"}))
		return boom
	})
	assert.ErrorIs(t, err, boom)

	sub, _ := subs.GetByID(ctx, "sub-1")
	assert.Equal(t, models.SubmissionPending, sub.Status)
	assert.Equal(t, int64(1), sub.Version)
	missing, _ := subs.GetByID(ctx, "sub-2")
	assert.Nil(t, missing)
	share, _ := shares.GetByID(ctx, "s-1")
	assert.Nil(t, share)
	chain, _ := audit.ListChain(ctx, "sub-1")
	require.Len(t, chain, 1)
	assert.Equal(t, "a-1", chain[0].ID)

	require.NoError(t, tx.WithinTx(ctx, func(ctx context.Context) error {
		sub, _ := subs.GetByID(ctx, "sub-1")
		sub.Status = models.SubmissionApproved
		return subs.UpdateStatus(ctx, sub)
	}))
	sub, _ = subs.GetByID(ctx, "sub-1")
	assert.Equal(t, models.SubmissionApproved, sub.Status)
}

func TestMemoryShareStoreRecipientFilter(t *testing.T) {
	store := NewMemoryShareStore()
	ctx := context.Background()
	hod := "u-hod"
	radiology := "Radiology"
	dental := "Dental"
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, store.Create(ctx, &models.Share{ID: "s1", ToUserID: &hod, Status: models.ShareSent, SharedAt: base}))
	require.NoError(t, store.Create(ctx, &models.Share{ID: "s2", ToDepartment: &radiology, Status: models.ShareSent, SharedAt: base.Add(time.Minute)}))
	require.NoError(t, store.Create(ctx, &models.Share{ID: "s3", ToDepartment: &dental, Status: models.ShareSent, SharedAt: base.Add(2 * time.Minute)}))

	shares, err := store.List(ctx, ShareFilter{RecipientUserID: hod, RecipientDepartment: radiology})
	require.NoError(t, err)
	require.Len(t, shares, 2)
	assert.Equal(t, "s2", shares[0].ID)
	assert.Equal(t, "s1", shares[1].ID)

	all, err := store.List(ctx, ShareFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestMemoryDirectory(t *testing.T) {
	ctx := context.Background()
	dir := NewMemoryDirectory(
		models.DirectoryUser{ID: "u-1", DisplayName: "Zed", Role: models.RoleAdmin, IsActive: true},
		models.DirectoryUser{ID: "u-2", DisplayName: "Amy", Role: models.RoleAdmin, IsActive: true},
		models.DirectoryUser{ID: "u-3", DisplayName: "Old", Role: models.RoleAdmin, IsActive: false},
	)

	admins, err := dir.ListByRole(ctx, models.RoleAdmin)
	require.NoError(t, err)
	require.Len(t, admins, 2)
	assert.Equal(t, "Amy", admins[0].DisplayName)

	head := "u-1"
	require.NoError(t, dir.SetUnitHead(ctx, "Imaging", &head))
	user, err := dir.GetUnitHead(ctx, "Imaging")
	require.NoError(t, err)
	assert.Equal(t, "u-1", user.ID)

	require.NoError(t, dir.SetUnitHead(ctx, "Imaging", nil))
	user, err = dir.GetUnitHead(ctx, "Imaging")
	require.NoError(t, err)
	assert.Nil(t, user)
}

func strPtr(s string) *string { return &s }
