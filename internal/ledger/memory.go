package ledger

import (
	"context"
	"fmt"
	"sync"

	"fjacquet/statement-import/internal/dedup"
	"fjacquet/statement-import/internal/models"
	"fjacquet/statement-import/internal/parsererror"
)

// MemoryStore keeps rows in memory. It is safe for concurrent use.
type MemoryStore struct {
	mu    sync.RWMutex
	rows  []models.LedgerTransaction
	byID  map[string]int
	index map[string]int
}

// NewMemoryStore returns an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		byID:  make(map[string]int),
		index: make(map[string]int),
	}
}

func (s *MemoryStore) FindExisting(ctx context.Context, key dedup.Key) (*models.LedgerTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	if i, ok := s.index[key.Fingerprint()]; ok {
		tx := s.rows[i]
		return &tx, nil
	}
	return nil, nil
}

func (s *MemoryStore) Create(ctx context.Context, tx *models.LedgerTransaction) (*models.LedgerTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if tx == nil || tx.ID == "" || tx.TenantID == "" {
		return nil, fmt.Errorf("create transaction: id and tenant are required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.byID[tx.ID]; ok {
		return nil, fmt.Errorf("create transaction %s: id already used", tx.ID)
	}
	identity, hasIdentity := identityKey(tx)
	if hasIdentity {
		if _, ok := s.index[identity.Fingerprint()]; ok {
			return nil, fmt.Errorf("create transaction %s: %w", identity, parsererror.ErrDuplicateTransaction)
		}
	}

	stored := *tx
	s.rows = append(s.rows, stored)
	pos := len(s.rows) - 1
	s.byID[stored.ID] = pos
	if hasIdentity {
		s.index[identity.Fingerprint()] = pos
	}
	// the first row wins composite lookups
	if fp := compositeKey(&stored).Fingerprint(); !hasFingerprint(s.index, fp) {
		s.index[fp] = pos
	}
	return &stored, nil
}

func hasFingerprint(index map[string]int, fp string) bool {
	_, ok := index[fp]
	return ok
}

func (s *MemoryStore) ListUncategorized(ctx context.Context, tenantID string) ([]models.LedgerTransaction, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.LedgerTransaction
	for _, tx := range s.rows {
		if tx.TenantID == tenantID && !tx.Categorized() {
			out = append(out, tx)
		}
	}
	return out, nil
}

func (s *MemoryStore) SetCategory(ctx context.Context, tenantID, id, categoryID string, aiCategorized bool) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.byID[id]
	if !ok || s.rows[i].TenantID != tenantID {
		return fmt.Errorf("set category on %s: %w", id, ErrNotFound)
	}
	cid := categoryID
	s.rows[i].CategoryID = &cid
	s.rows[i].AICategorized = aiCategorized
	return nil
}

// List returns every row of tenant in insertion order.
func (s *MemoryStore) List(tenantID string) []models.LedgerTransaction {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []models.LedgerTransaction
	for _, tx := range s.rows {
		if tx.TenantID == tenantID {
			out = append(out, tx)
		}
	}
	return out
}

// Len is the number of rows across tenants.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.rows)
}
