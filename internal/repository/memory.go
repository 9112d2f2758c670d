package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"medidocs/internal/models"
)

// MemorySubmissionStore keeps submissions in process memory. Records are copied
// on the way in and out so callers never share state with the store.
type MemorySubmissionStore struct {
	mu   sync.RWMutex
	subs map[string]models.Submission
}

// NewMemorySubmissionStore creates an empty submission store
func NewMemorySubmissionStore() *MemorySubmissionStore {
	return &MemorySubmissionStore{subs: make(map[string]models.Submission)}
}

func (s *MemorySubmissionStore) Create(ctx context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.subs[sub.ID]; exists {
		return fmt.Errorf("failed to create submission: duplicate id %s", sub.ID)
	}
	s.subs[sub.ID] = cloneSubmission(*sub)
	recordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subs, sub.ID)
	})
	return nil
}

func (s *MemorySubmissionStore) GetByID(_ context.Context, id string) (*models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sub, ok := s.subs[id]
	if !ok {
		return nil, nil
	}
	c := cloneSubmission(sub)
	return &c, nil
}

func (s *MemorySubmissionStore) UpdateStatus(ctx context.Context, sub *models.Submission) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.subs[sub.ID]
	if !ok || stored.Version != sub.Version {
		return ErrStaleStatus
	}
	sub.Version++
	s.subs[sub.ID] = cloneSubmission(*sub)

	written := sub.Version
	recordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if current, ok := s.subs[stored.ID]; ok && current.Version == written {
			s.subs[stored.ID] = stored
		}
	})
	return nil
}

func (s *MemorySubmissionStore) List(_ context.Context, filter SubmissionFilter) ([]models.Submission, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Submission{}
	for _, sub := range s.subs {
		if filter.FromUserID != "" && sub.FromUserID != filter.FromUserID {
			continue
		}
		if filter.ToUserID != "" && sub.ToUserID != filter.ToUserID {
			continue
		}
		if filter.Status != "" && sub.Status != filter.Status {
			continue
		}
		out = append(out, cloneSubmission(sub))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, nil
}

// MemoryShareStore keeps shares in process memory
type MemoryShareStore struct {
	mu     sync.RWMutex
	shares map[string]models.Share
}

// NewMemoryShareStore creates an empty share store
func NewMemoryShareStore() *MemoryShareStore {
	return &MemoryShareStore{shares: make(map[string]models.Share)}
}

func (s *MemoryShareStore) Create(ctx context.Context, share *models.Share) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.shares[share.ID]; exists {
		return fmt.Errorf("failed to create share: duplicate id %s", share.ID)
	}
	s.shares[share.ID] = cloneShare(*share)
	recordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.shares, share.ID)
	})
	return nil
}

func (s *MemoryShareStore) GetByID(_ context.Context, id string) (*models.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	share, ok := s.shares[id]
	if !ok {
		return nil, nil
	}
	c := cloneShare(share)
	return &c, nil
}

func (s *MemoryShareStore) UpdateStatus(ctx context.Context, share *models.Share, expected models.ShareStatus) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored, ok := s.shares[share.ID]
	if !ok || stored.Status != expected {
		return ErrStaleStatus
	}
	s.shares[share.ID] = cloneShare(*share)

	written := share.Status
	recordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if current, ok := s.shares[stored.ID]; ok && current.Status == written {
			s.shares[stored.ID] = stored
		}
	})
	return nil
}

func (s *MemoryShareStore) List(_ context.Context, filter ShareFilter) ([]models.Share, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Share{}
	for _, share := range s.shares {
		if filter.FromUserID != "" && share.FromUserID != filter.FromUserID {
			continue
		}
		if !matchesRecipient(share, filter) {
			continue
		}
		if filter.Status != "" && share.Status != filter.Status {
			continue
		}
		out = append(out, cloneShare(share))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SharedAt.After(out[j].SharedAt) })
	return out, nil
}

func matchesRecipient(share models.Share, filter ShareFilter) bool {
	if filter.RecipientUserID == "" && filter.RecipientDepartment == "" {
		return true
	}
	if filter.RecipientUserID != "" && share.ToUserID != nil && *share.ToUserID == filter.RecipientUserID {
		return true
	}
	return filter.RecipientDepartment != "" && share.ToDepartment != nil && *share.ToDepartment == filter.RecipientDepartment
}

// MemoryAuditStore keeps audit entries in append order
type MemoryAuditStore struct {
	mu      sync.RWMutex
	entries []models.AuditEntry
}

// NewMemoryAuditStore creates an empty audit store
func NewMemoryAuditStore() *MemoryAuditStore {
	return &MemoryAuditStore{}
}

func (s *MemoryAuditStore) Append(ctx context.Context, entry *models.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, cloneAuditEntry(*entry))

	id := entry.ID
	recordUndo(ctx, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		for i := len(s.entries) - 1; i >= 0; i-- {
			if s.entries[i].ID == id {
				s.entries = append(s.entries[:i], s.entries[i+1:]...)
				return
			}
		}
	})
	return nil
}

func (s *MemoryAuditStore) Last(_ context.Context, documentID string) (*models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for i := len(s.entries) - 1; i >= 0; i-- {
		if s.entries[i].DocumentID == documentID {
			e := cloneAuditEntry(s.entries[i])
			return &e, nil
		}
	}
	return nil, nil
}

func (s *MemoryAuditStore) List(_ context.Context, filter AuditFilter) ([]models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.AuditEntry{}
	skipped := 0
	for i := len(s.entries) - 1; i >= 0; i-- {
		e := s.entries[i]
		if filter.DocumentID != "" && e.DocumentID != filter.DocumentID {
			continue
		}
		if filter.UserID != "" && e.UserID != filter.UserID {
			continue
		}
		if filter.Action != "" && e.Action != filter.Action {
			continue
		}
		if skipped < filter.Offset {
			skipped++
			continue
		}
		if filter.Limit > 0 && len(out) >= filter.Limit {
			break
		}
		out = append(out, cloneAuditEntry(e))
	}
	return out, nil
}

func (s *MemoryAuditStore) ListChain(_ context.Context, documentID string) ([]models.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.AuditEntry{}
	for _, e := range s.entries {
		if e.DocumentID == documentID {
			out = append(out, cloneAuditEntry(e))
		}
	}
	return out, nil
}

func (s *MemoryAuditStore) DocumentIDs(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	seen := make(map[string]struct{})
	var ids []string
	for _, e := range s.entries {
		if _, ok := seen[e.DocumentID]; ok {
			continue
		}
		seen[e.DocumentID] = struct{}{}
		ids = append(ids, e.DocumentID)
	}
	sort.Strings(ids)
	return ids, nil
}

// MemoryDirectory is an in-process staff directory
type MemoryDirectory struct {
	mu    sync.RWMutex
	users map[string]models.DirectoryUser
	units map[string]string
}

// NewMemoryDirectory creates a directory holding the given users
func NewMemoryDirectory(users ...models.DirectoryUser) *MemoryDirectory {
	d := &MemoryDirectory{
		users: make(map[string]models.DirectoryUser),
		units: make(map[string]string),
	}
	for i := range users {
		_ = d.Upsert(context.Background(), &users[i])
	}
	return d
}

func (d *MemoryDirectory) Upsert(_ context.Context, user *models.DirectoryUser) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.users[user.ID] = *user
	return nil
}

func (d *MemoryDirectory) SetUnitHead(_ context.Context, unit string, headUserID *string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	if headUserID == nil {
		delete(d.units, unit)
		return nil
	}
	d.units[unit] = *headUserID
	return nil
}

func (d *MemoryDirectory) GetUser(_ context.Context, id string) (*models.DirectoryUser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	user, ok := d.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (d *MemoryDirectory) GetUnitHead(ctx context.Context, unit string) (*models.DirectoryUser, error) {
	d.mu.RLock()
	headID, ok := d.units[unit]
	d.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return d.GetUser(ctx, headID)
}

func (d *MemoryDirectory) ListByRole(_ context.Context, role models.Role) ([]models.DirectoryUser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []models.DirectoryUser{}
	for _, u := range d.users {
		if u.Role == role && u.IsActive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func (d *MemoryDirectory) ListByDepartment(_ context.Context, department string) ([]models.DirectoryUser, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()
	out := []models.DirectoryUser{}
	for _, u := range d.users {
		if u.Department == department && u.IsActive {
			out = append(out, u)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].DisplayName < out[j].DisplayName })
	return out, nil
}

func cloneSubmission(sub models.Submission) models.Submission {
	sub.ToUnit = cloneString(sub.ToUnit)
	sub.Feedback = cloneString(sub.Feedback)
	if sub.Signature != nil {
		sig := *sub.Signature
		sub.Signature = &sig
	}
	sub.Attachments = append([]models.Attachment(nil), sub.Attachments...)
	sub.ForwardChain = append([]models.ForwardHop(nil), sub.ForwardChain...)
	sub.ReviewedAt = cloneTime(sub.ReviewedAt)
	sub.AcknowledgedAt = cloneTime(sub.AcknowledgedAt)
	sub.ApprovedAt = cloneTime(sub.ApprovedAt)
	sub.ForwardedAt = cloneTime(sub.ForwardedAt)
	return sub
}

func cloneShare(share models.Share) models.Share {
	share.ToUserID = cloneString(share.ToUserID)
	share.ToDepartment = cloneString(share.ToDepartment)
	share.ReceivedAt = cloneTime(share.ReceivedAt)
	share.SeenAt = cloneTime(share.SeenAt)
	share.AcknowledgedAt = cloneTime(share.AcknowledgedAt)
	return share
}

func cloneAuditEntry(e models.AuditEntry) models.AuditEntry {
	if e.ToRole != nil {
		r := *e.ToRole
		e.ToRole = &r
	}
	return e
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
