package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"medidocs/internal/models"
	"medidocs/internal/repository"
)

// GenesisHash is the previous-hash value of the first entry of every document chain
const GenesisHash = "0000000000000000000000000000000000000000000000000000000000000000"

const (
	defaultAuditLimit = 100
	maxAuditLimit     = 500
)

// AuditService appends and queries the hash-chained audit trail
type AuditService struct {
	store AuditStore
	tx    Transactor
	clock Clock

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewAuditService creates a new audit service.
// A nil tx runs units of work against the memory stores.
func NewAuditService(store AuditStore, tx Transactor, clock Clock) *AuditService {
	if tx == nil {
		tx = repository.NewMemoryTx()
	}
	if clock == nil {
		clock = SystemClock()
	}
	return &AuditService{
		store: store,
		tx:    tx,
		clock: clock,
		locks: make(map[string]*sync.Mutex),
	}
}

// Record appends an entry to its document's chain. Timestamps are clamped so that
// they never go backwards within one document.
func (s *AuditService) Record(ctx context.Context, entry *models.AuditEntry) error {
	return s.RecordWith(ctx, entry, nil)
}

// RecordWith runs mutate and appends entry in one unit of work. When either fails
// neither is kept. Errors from mutate are returned unchanged.
func (s *AuditService) RecordWith(ctx context.Context, entry *models.AuditEntry, mutate func(ctx context.Context) error) error {
	if err := validateAuditEntry(entry); err != nil {
		return err
	}

	lock := s.documentLock(entry.DocumentID)
	lock.Lock()
	defer lock.Unlock()

	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	entry.Timestamp = entry.Timestamp.UTC().Truncate(time.Microsecond)

	return s.tx.WithinTx(ctx, func(ctx context.Context) error {
		if mutate != nil {
			if err := mutate(ctx); err != nil {
				return err
			}
		}
		return s.appendLocked(ctx, entry)
	})
}

// appendLocked links entry to its chain head and stores it. The caller holds the document lock.
func (s *AuditService) appendLocked(ctx context.Context, entry *models.AuditEntry) error {
	last, err := s.store.Last(ctx, entry.DocumentID)
	if err != nil {
		return fmt.Errorf("failed to read audit chain head: %w", err)
	}

	entry.PrevHash = GenesisHash
	if last != nil {
		entry.PrevHash = last.Hash
		if entry.Timestamp.Before(last.Timestamp) {
			entry.Timestamp = last.Timestamp
		}
	}
	entry.Hash = computeEntryHash(entry)

	if err := s.store.Append(ctx, entry); err != nil {
		return fmt.Errorf("failed to append audit entry: %w", err)
	}
	return nil
}

// List returns entries newest first
func (s *AuditService) List(ctx context.Context, filter AuditFilter) ([]models.AuditEntry, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultAuditLimit
	}
	if filter.Limit > maxAuditLimit {
		filter.Limit = maxAuditLimit
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.store.List(ctx, filter)
}

// DocumentIDs lists every document with at least one audit entry
func (s *AuditService) DocumentIDs(ctx context.Context) ([]string, error) {
	return s.store.DocumentIDs(ctx)
}

// VerifyChain recomputes the hash chain of a document and reports every break
func (s *AuditService) VerifyChain(ctx context.Context, documentID string) (bool, []string, error) {
	entries, err := s.store.ListChain(ctx, documentID)
	if err != nil {
		return false, nil, fmt.Errorf("failed to load audit chain: %w", err)
	}

	prevHash := GenesisHash
	var prevTime time.Time
	var problems []string

	for i := range entries {
		e := &entries[i]
		if e.PrevHash != prevHash {
			problems = append(problems, fmt.Sprintf("chain broken at entry %s: expected prev_hash=%s, got=%s", e.ID, prevHash, e.PrevHash))
		}
		if expected := computeEntryHash(e); expected != e.Hash {
			problems = append(problems, fmt.Sprintf("entry %s: hash mismatch", e.ID))
		}
		if e.Timestamp.Before(prevTime) {
			problems = append(problems, fmt.Sprintf("entry %s: timestamp goes backwards", e.ID))
		}
		prevHash = e.Hash
		prevTime = e.Timestamp
	}

	if len(problems) > 0 {
		return false, problems, nil
	}
	return true, nil, nil
}

func (s *AuditService) documentLock(documentID string) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()
	l, ok := s.locks[documentID]
	if !ok {
		l = &sync.Mutex{}
		s.locks[documentID] = l
	}
	return l
}

func validateAuditEntry(entry *models.AuditEntry) error {
	if entry == nil {
		return fmt.Errorf("%w: nil entry", ErrMalformedAuditEntry)
	}
	var missing []string
	if entry.DocumentID == "" {
		missing = append(missing, "document id")
	}
	if entry.UserID == "" {
		missing = append(missing, "actor")
	}
	if entry.Action == "" {
		missing = append(missing, "action")
	}
	if entry.Timestamp.IsZero() {
		missing = append(missing, "timestamp")
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: missing %s", ErrMalformedAuditEntry, strings.Join(missing, ", "))
	}
	return nil
}

// computeEntryHash hashes the entry's content together with its predecessor's hash
func computeEntryHash(e *models.AuditEntry) string {
	toRole := ""
	if e.ToRole != nil {
		toRole = string(*e.ToRole)
	}
	input := strings.Join([]string{
		e.PrevHash,
		e.ID,
		e.DocumentID,
		e.UserID,
		string(e.Action),
		e.Details,
		string(e.FromRole),
		toRole,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
	}, "|")
	sum := sha256.Sum256([]byte(input))
	return hex.EncodeToString(sum[:])
}
