package models

import (
	"encoding/json"
	"fmt"
)

// ActionKind tells which ledger an Action was read from.
type ActionKind int

const (
	ActionCollateral ActionKind = iota
	ActionBorrow
)

func (k ActionKind) String() string {
	switch k {
	case ActionCollateral:
		return "Collateral"
	case ActionBorrow:
		return "Borrow"
	default:
		return fmt.Sprintf("ActionKind(%d)", int(k))
	}
}

func (k ActionKind) MarshalText() ([]byte, error) {
	switch k {
	case ActionCollateral, ActionBorrow:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("unknown action kind %d", int(k))
	}
}

func (k *ActionKind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "Collateral":
		*k = ActionCollateral
	case "Borrow":
		*k = ActionBorrow
	default:
		return fmt.Errorf("unknown action kind %q", string(text))
	}
	return nil
}

// Action is the normalized view of a collateral or borrow record.
// TVL carries the record's total (collateral or borrowed) narrowed to int64.
type Action struct {
	Kind      ActionKind `json:"kind"`
	Timestamp uint64     `json:"timestamp"`
	Ledger    uint32     `json:"ledger"`
	Pool      string     `json:"pool"`
	Asset     string     `json:"asset"`
	TVL       int64      `json:"tvl"`
	Delta     int64      `json:"delta"`
	Source    string     `json:"source"`
}

// ActionsRequest is the body accepted by the actions endpoint.
type ActionsRequest struct {
	Addresses []string `json:"addresses"`
}

// ActionsByAddress maps every requested address to its actions,
// collateral actions first, then borrow actions.
type ActionsByAddress map[string][]Action

// ActionsResponse represents the API response for the actions endpoint
type ActionsResponse = APIResponse[ActionsByAddress]

// PingResponse represents the API response for the ping endpoint
type PingResponse = APIResponse[bool]

// ParseActionsRequest decodes a request body. A missing addresses field is an empty request.
func ParseActionsRequest(data []byte) (ActionsRequest, error) {
	var req ActionsRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return ActionsRequest{}, fmt.Errorf("invalid actions request: %w", err)
	}
	return req, nil
}
