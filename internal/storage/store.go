package storage

import (
	"context"
	"errors"

	"github.com/kelsos/blend-actions/internal/models"
)

// Indexer table names.
const (
	TableCollateral = "clateral"
	TableBorrowed   = "borrowed"
)

// ErrUnknownTable is returned for reads against a table or column the index does not have.
var ErrUnknownTable = errors.New("unknown table or column")

// Store reads ledger records filtered by their source address.
// Records come back in the order they were indexed.
type Store interface {
	Collaterals(ctx context.Context, source string) ([]models.CollateralRecord, error)
	Borrows(ctx context.Context, source string) ([]models.BorrowRecord, error)
}

// Writer appends ledger records to an index.
type Writer interface {
	InsertCollateral(ctx context.Context, records []models.CollateralRecord) error
	InsertBorrow(ctx context.Context, records []models.BorrowRecord) error
}
