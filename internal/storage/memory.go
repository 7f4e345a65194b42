package storage

import (
	"context"
	"sync"

	"github.com/kelsos/blend-actions/internal/models"
)

// MemoryStore is an in-memory Store and Writer. Failures can be injected per table and source.
type MemoryStore struct {
	mu          sync.RWMutex
	collaterals []models.CollateralRecord
	borrows     []models.BorrowRecord
	failures    map[string]map[string]error
}

// NewMemoryStore creates an empty in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		failures: map[string]map[string]error{
			TableCollateral: {},
			TableBorrowed:   {},
		},
	}
}

// AddCollateral appends collateral records
func (m *MemoryStore) AddCollateral(records ...models.CollateralRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.collaterals = append(m.collaterals, records...)
}

// AddBorrow appends borrow records
func (m *MemoryStore) AddBorrow(records ...models.BorrowRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.borrows = append(m.borrows, records...)
}

// FailCollaterals makes collateral reads for source return err
func (m *MemoryStore) FailCollaterals(source string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[TableCollateral][source] = err
}

// FailBorrows makes borrow reads for source return err
func (m *MemoryStore) FailBorrows(source string, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failures[TableBorrowed][source] = err
}

func (m *MemoryStore) Collaterals(ctx context.Context, source string) ([]models.CollateralRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failures[TableCollateral][source]; err != nil {
		return nil, err
	}

	var result []models.CollateralRecord
	for _, r := range m.collaterals {
		if r.Source == source {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *MemoryStore) Borrows(ctx context.Context, source string) ([]models.BorrowRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if err := m.failures[TableBorrowed][source]; err != nil {
		return nil, err
	}

	var result []models.BorrowRecord
	for _, r := range m.borrows {
		if r.Source == source {
			result = append(result, r)
		}
	}
	return result, nil
}

func (m *MemoryStore) InsertCollateral(_ context.Context, records []models.CollateralRecord) error {
	m.AddCollateral(records...)
	return nil
}

func (m *MemoryStore) InsertBorrow(_ context.Context, records []models.BorrowRecord) error {
	m.AddBorrow(records...)
	return nil
}
