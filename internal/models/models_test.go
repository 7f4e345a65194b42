package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kelsos/blend-actions/internal/amount"
)

func TestActionJSON(t *testing.T) {
	action := Action{
		Kind:      ActionCollateral,
		Timestamp: 100,
		Ledger:    5,
		Pool:      "P1",
		Asset:     "USDC",
		TVL:       1000,
		Delta:     1000,
		Source:    "addr1",
	}

	out, err := json.Marshal(action)
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"Collateral","timestamp":100,"ledger":5,"pool":"P1","asset":"USDC","tvl":1000,"delta":1000,"source":"addr1"}`, string(out))

	var decoded Action
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.Equal(t, action, decoded)
}

func TestActionKindText(t *testing.T) {
	out, err := json.Marshal([]ActionKind{ActionBorrow, ActionCollateral})
	require.NoError(t, err)
	assert.JSONEq(t, `["Borrow","Collateral"]`, string(out))

	var k ActionKind
	assert.Error(t, json.Unmarshal([]byte(`"Repay"`), &k))

	_, err = json.Marshal(ActionKind(7))
	assert.Error(t, err)
}

func TestParseActionsRequest(t *testing.T) {
	req, err := ParseActionsRequest([]byte(`{"addresses":["a","b","a"]}`))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b", "a"}, req.Addresses)

	req, err = ParseActionsRequest([]byte(`{}`))
	require.NoError(t, err)
	assert.Empty(t, req.Addresses)

	_, err = ParseActionsRequest([]byte(`{"addresses":`))
	assert.Error(t, err)
}

func TestRecordJSONUsesIndexerColumnNames(t *testing.T) {
	var rec CollateralRecord
	require.NoError(t, json.Unmarshal([]byte(`{"timestamp":1,"ledger":2,"pool":"P","asset":"A","clateral":"170141183460469231731687303715884105727","delta":-3,"source":"s"}`), &rec))
	assert.Equal(t, "170141183460469231731687303715884105727", rec.Collateral.String())
	assert.True(t, rec.Delta.Equal(amount.NewInt128(-3)))
}
