package actions

import (
	"fmt"

	"github.com/kelsos/blend-actions/internal/amount"
	"github.com/kelsos/blend-actions/internal/models"
)

// CollateralAction normalizes a collateral record. TVL is the collateral total.
func CollateralAction(r models.CollateralRecord, policy amount.Policy) (models.Action, error) {
	tvl, err := amount.Narrow("tvl", r.Collateral, policy)
	if err != nil {
		return models.Action{}, fmt.Errorf("collateral at ledger %d: %w", r.Ledger, err)
	}
	delta, err := amount.Narrow("delta", r.Delta, policy)
	if err != nil {
		return models.Action{}, fmt.Errorf("collateral at ledger %d: %w", r.Ledger, err)
	}

	return models.Action{
		Kind:      models.ActionCollateral,
		Timestamp: r.Timestamp,
		Ledger:    r.Ledger,
		Pool:      r.Pool,
		Asset:     r.Asset,
		TVL:       tvl,
		Delta:     delta,
		Source:    r.Source,
	}, nil
}

// BorrowAction normalizes a borrow record. TVL is the borrowed total.
func BorrowAction(r models.BorrowRecord, policy amount.Policy) (models.Action, error) {
	tvl, err := amount.Narrow("tvl", r.Borrowed, policy)
	if err != nil {
		return models.Action{}, fmt.Errorf("borrow at ledger %d: %w", r.Ledger, err)
	}
	delta, err := amount.Narrow("delta", r.Delta, policy)
	if err != nil {
		return models.Action{}, fmt.Errorf("borrow at ledger %d: %w", r.Ledger, err)
	}

	return models.Action{
		Kind:      models.ActionBorrow,
		Timestamp: r.Timestamp,
		Ledger:    r.Ledger,
		Pool:      r.Pool,
		Asset:     r.Asset,
		TVL:       tvl,
		Delta:     delta,
		Source:    r.Source,
	}, nil
}

// joinActions returns the collateral actions followed by the borrow actions, each in store order.
func joinActions(collaterals []models.CollateralRecord, borrows []models.BorrowRecord, policy amount.Policy) ([]models.Action, error) {
	joined := make([]models.Action, 0, len(collaterals)+len(borrows))

	for _, c := range collaterals {
		action, err := CollateralAction(c, policy)
		if err != nil {
			return nil, err
		}
		joined = append(joined, action)
	}

	for _, b := range borrows {
		action, err := BorrowAction(b, policy)
		if err != nil {
			return nil, err
		}
		joined = append(joined, action)
	}

	return joined, nil
}
