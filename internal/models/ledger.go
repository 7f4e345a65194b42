package models

import "github.com/kelsos/blend-actions/internal/amount"

// CollateralRecord is a collateral deposit or withdrawal indexed for an address.
// Collateral is the position total after the event, Delta the change it applied.
type CollateralRecord struct {
	Timestamp  uint64        `json:"timestamp"`
	Ledger     uint32        `json:"ledger"`
	Pool       string        `json:"pool"`
	Asset      string        `json:"asset"`
	Collateral amount.Int128 `json:"clateral"`
	Delta      amount.Int128 `json:"delta"`
	Source     string        `json:"source"`
}

// BorrowRecord is a borrow or repayment indexed for an address.
// Borrowed is the outstanding debt after the event.
type BorrowRecord struct {
	Timestamp uint64        `json:"timestamp"`
	Ledger    uint32        `json:"ledger"`
	Pool      string        `json:"pool"`
	Asset     string        `json:"asset"`
	Borrowed  amount.Int128 `json:"borrowed"`
	Delta     amount.Int128 `json:"delta"`
	Source    string        `json:"source"`
}
