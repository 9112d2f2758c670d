package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medidocs/internal/models"
	"medidocs/internal/repository"
)

func newAuditEntry(doc string, action models.AuditAction, at time.Time) *models.AuditEntry {
	return &models.AuditEntry{
		DocumentID: doc,
		UserID:     "u-hod",
		UserName:   "Dr. Adaeze Okafor",
		Action:     action,
		Details:    string(action),
		FromRole:   models.RoleHOD,
		Timestamp:  at,
	}
}

func TestAuditChainLinksEntries(t *testing.T) {
	store := repository.NewMemoryAuditStore()
	svc := NewAuditService(store, nil, nil)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	require.NoError(t, svc.Record(ctx, newAuditEntry("doc-1", models.ActionSent, base)))
	require.NoError(t, svc.Record(ctx, newAuditEntry("doc-2", models.ActionSent, base)))
	require.NoError(t, svc.Record(ctx, newAuditEntry("doc-1", models.ActionApproved, base.Add(time.Minute))))

	chain, err := store.ListChain(ctx, "doc-1")
	require.NoError(t, err)
	require.Len(t, chain, 2)
	assert.Equal(t, GenesisHash, chain[0].PrevHash)
	assert.Equal(t, chain[0].Hash, chain[1].PrevHash)
	assert.NotEmpty(t, chain[0].ID)

	other, err := store.ListChain(ctx, "doc-2")
	require.NoError(t, err)
	assert.Equal(t, GenesisHash, other[0].PrevHash)

	ok, problems, err := svc.VerifyChain(ctx, "doc-1")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Empty(t, problems)

	ids, err := svc.DocumentIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"doc-1", "doc-2"}, ids)
}

func TestAuditClampsBackwardsTimestamps(t *testing.T) {
	store := repository.NewMemoryAuditStore()
	svc := NewAuditService(store, nil, nil)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 123456789, time.UTC)

	require.NoError(t, svc.Record(ctx, newAuditEntry("doc", models.ActionSent, base)))
	late := newAuditEntry("doc", models.ActionViewed, base.Add(-time.Hour))
	require.NoError(t, svc.Record(ctx, late))

	chain, err := store.ListChain(ctx, "doc")
	require.NoError(t, err)
	assert.Equal(t, base.Truncate(time.Microsecond), chain[0].Timestamp)
	assert.Equal(t, chain[0].Timestamp, chain[1].Timestamp)
}

func TestAuditRejectsMalformedEntries(t *testing.T) {
	svc := NewAuditService(repository.NewMemoryAuditStore(), nil, nil)
	ctx := context.Background()
	now := time.Now()

	tests := []struct {
		name  string
		entry *models.AuditEntry
	}{
		{"nil", nil},
		{"missing document", &models.AuditEntry{UserID: "u", Action: models.ActionSent, Timestamp: now}},
		{"missing actor", &models.AuditEntry{DocumentID: "d", Action: models.ActionSent, Timestamp: now}},
		{"missing action", &models.AuditEntry{DocumentID: "d", UserID: "u", Timestamp: now}},
		{"missing timestamp", &models.AuditEntry{DocumentID: "d", UserID: "u", Action: models.ActionSent}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := svc.Record(ctx, tt.entry)
			assert.True(t, errors.Is(err, ErrMalformedAuditEntry), "got %v", err)
		})
	}
}

func TestVerifyChainDetectsTampering(t *testing.T) {
	store := repository.NewMemoryAuditStore()
	svc := NewAuditService(store, nil, nil)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for i, action := range []models.AuditAction{models.ActionSent, models.ActionReceived, models.ActionViewed} {
		require.NoError(t, svc.Record(ctx, newAuditEntry("doc", action, base.Add(time.Duration(i)*time.Minute))))
	}

	chain, err := store.ListChain(ctx, "doc")
	require.NoError(t, err)

	tampered := repository.NewMemoryAuditStore()
	for i, e := range chain {
		if i == 1 {
			e.Details = "rewritten"
		}
		require.NoError(t, tampered.Append(ctx, &e))
	}

	ok, problems, err := NewAuditService(tampered, nil, nil).VerifyChain(ctx, "doc")
	require.NoError(t, err)
	assert.False(t, ok)
	require.Len(t, problems, 1)
	assert.Contains(t, problems[0], chain[1].ID)
}

func TestAuditListPaging(t *testing.T) {
	store := repository.NewMemoryAuditStore()
	svc := NewAuditService(store, nil, nil)
	ctx := context.Background()
	base := time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		e := newAuditEntry("doc", models.ActionViewed, base.Add(time.Duration(i)*time.Second))
		e.Details = fmt.Sprintf("entry %d", i)
		require.NoError(t, svc.Record(ctx, e))
	}
	require.NoError(t, svc.Record(ctx, newAuditEntry("other", models.ActionSent, base)))

	page, err := svc.List(ctx, AuditFilter{DocumentID: "doc", Limit: 2, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 2)
	assert.Equal(t, "entry 3", page[0].Details)
	assert.Equal(t, "entry 2", page[1].Details)

	all, err := svc.List(ctx, AuditFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 6)
	assert.Equal(t, "other", all[0].DocumentID)
}

func TestAuditConcurrentAppendsKeepChain(t *testing.T) {
	store := repository.NewMemoryAuditStore()
	svc := NewAuditService(store, nil, nil)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, svc.Record(ctx, newAuditEntry("doc", models.ActionViewed, time.Now())))
		}()
	}
	wg.Wait()

	ok, problems, err := svc.VerifyChain(ctx, "doc")
	require.NoError(t, err)
	assert.True(t, ok, "problems: %v", problems)
}
