package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"medidocs/internal/models"
	"medidocs/internal/repository"
	"medidocs/internal/signing"
	"medidocs/internal/testutil"
)

// fakeClock advances by a fixed step on every reading
type fakeClock struct {
	mu   sync.Mutex
	now  time.Time
	step time.Duration
}

func newFakeClock() *fakeClock {
	return &fakeClock{now: time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC), step: time.Minute}
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now = c.now.Add(c.step)
	return t
}

// Set moves the clock to t without advancing afterwards
func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = t
}

// recordingNotifier keeps every event it receives
type recordingNotifier struct {
	mu     sync.Mutex
	events []Event
}

func (n *recordingNotifier) Notify(_ context.Context, event Event) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
}

func (n *recordingNotifier) Events() []Event {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Event(nil), n.events...)
}

type testEnv struct {
	fx          *testutil.Fixtures
	clock       *fakeClock
	notifier    *recordingNotifier
	directory   *repository.MemoryDirectory
	subStore    *repository.MemorySubmissionStore
	shareStore  *repository.MemoryShareStore
	auditStore  *repository.MemoryAuditStore
	audit       *AuditService
	submissions *SubmissionService
	shares      *ShareService
	inbox       *InboxService
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	fx := testutil.NewFixtures()
	directory := repository.NewMemoryDirectory(fx.Users()...)
	head := fx.UnitHead.ID
	require.NoError(t, directory.SetUnitHead(context.Background(), fx.HeadedUnit, &head))

	signer, err := signing.NewLocalSigner([]byte("0123456789abcdef0123456789abcdef"))
	require.NoError(t, err)

	env := &testEnv{
		fx:         fx,
		clock:      newFakeClock(),
		notifier:   &recordingNotifier{},
		directory:  directory,
		subStore:   repository.NewMemorySubmissionStore(),
		shareStore: repository.NewMemoryShareStore(),
		auditStore: repository.NewMemoryAuditStore(),
	}
	env.audit = NewAuditService(env.auditStore, nil, env.clock)
	env.submissions = NewSubmissionService(env.subStore, directory, env.audit, env.notifier, signer, env.clock)
	env.shares = NewShareService(env.shareStore, directory, env.audit, env.notifier, env.clock)
	env.inbox = NewInboxService(env.submissions, env.shares)
	return env
}

func (e *testEnv) auditTrail(t *testing.T, documentID string) []models.AuditEntry {
	t.Helper()
	entries, err := e.auditStore.ListChain(context.Background(), documentID)
	require.NoError(t, err)
	return entries
}

func actions(entries []models.AuditEntry) []models.AuditAction {
	out := make([]models.AuditAction, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.Action)
	}
	return out
}

func strPtr(s string) *string { return &s }
