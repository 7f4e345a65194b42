package importer

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/kelsos/blend-actions/internal/logger"
	"github.com/kelsos/blend-actions/internal/models"
	"github.com/kelsos/blend-actions/internal/storage"
)

// Dump is a records export keyed by indexer table name
type Dump struct {
	Collaterals []models.CollateralRecord `json:"clateral"`
	Borrows     []models.BorrowRecord     `json:"borrowed"`
}

// Result reports how many records were written per table
type Result struct {
	Collaterals int
	Borrows     int
	Skipped     int
}

// Load decodes a dump. Unknown fields are rejected so typos in column names do not import zeros.
func Load(r io.Reader) (*Dump, error) {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()

	var dump Dump
	if err := decoder.Decode(&dump); err != nil {
		return nil, fmt.Errorf("failed to decode records dump: %w", err)
	}
	return &dump, nil
}

// LoadFile decodes a dump from path, "-" reads stdin
func LoadFile(path string) (*Dump, error) {
	if path == "-" {
		return Load(os.Stdin)
	}

	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open records dump: %w", err)
	}
	defer file.Close()

	return Load(file)
}

// Apply writes the dump into w
func Apply(ctx context.Context, w storage.Writer, dump *Dump) (Result, error) {
	if err := w.InsertCollateral(ctx, dump.Collaterals); err != nil {
		return Result{}, fmt.Errorf("failed to import collateral records: %w", err)
	}
	if err := w.InsertBorrow(ctx, dump.Borrows); err != nil {
		return Result{}, fmt.Errorf("failed to import borrow records: %w", err)
	}

	result := Result{Collaterals: len(dump.Collaterals), Borrows: len(dump.Borrows)}
	logger.Info("Imported %d collateral and %d borrow records", result.Collaterals, result.Borrows)
	return result, nil
}

// ApplyIncremental writes only the records above the ledger checkpoints kept in dataDir
// and advances the checkpoints afterwards.
func ApplyIncremental(ctx context.Context, w storage.Writer, dump *Dump, dataDir string) (Result, error) {
	collateralFrom, err := storage.GetLastCheckpoint(dataDir, storage.TableCollateral)
	if err != nil {
		return Result{}, err
	}
	borrowFrom, err := storage.GetLastCheckpoint(dataDir, storage.TableBorrowed)
	if err != nil {
		return Result{}, err
	}

	logger.Debug("Importing collateral above ledger %d and borrows above ledger %d", collateralFrom, borrowFrom)

	filtered := &Dump{}
	skipped := 0
	collateralTo, borrowTo := collateralFrom, borrowFrom

	for _, c := range dump.Collaterals {
		if c.Ledger <= collateralFrom {
			skipped++
			continue
		}
		filtered.Collaterals = append(filtered.Collaterals, c)
		collateralTo = max(collateralTo, c.Ledger)
	}
	for _, b := range dump.Borrows {
		if b.Ledger <= borrowFrom {
			skipped++
			continue
		}
		filtered.Borrows = append(filtered.Borrows, b)
		borrowTo = max(borrowTo, b.Ledger)
	}

	result, err := Apply(ctx, w, filtered)
	if err != nil {
		return Result{}, err
	}
	result.Skipped = skipped

	if err := storage.SaveCheckpoint(dataDir, storage.TableCollateral, collateralTo); err != nil {
		logger.Warn("Failed to save checkpoint for %s: %v", storage.TableCollateral, err)
	}
	if err := storage.SaveCheckpoint(dataDir, storage.TableBorrowed, borrowTo); err != nil {
		logger.Warn("Failed to save checkpoint for %s: %v", storage.TableBorrowed, err)
	}

	return result, nil
}
