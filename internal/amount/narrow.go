package amount

import (
	"errors"
	"fmt"
	"math"
	"math/big"
	"strings"
)

// ErrOverflow is returned by Narrow under PolicyError when a value does not fit in int64.
var ErrOverflow = errors.New("amount overflows int64")

// Policy selects what Narrow does with values outside the int64 range.
type Policy string

const (
	// PolicyError rejects the value.
	PolicyError Policy = "error"
	// PolicySaturate clamps to math.MinInt64 / math.MaxInt64.
	PolicySaturate Policy = "saturate"
	// PolicyWrap keeps the low 64 bits in two's complement, like an unchecked cast.
	PolicyWrap Policy = "wrap"
)

// ParsePolicy parses a policy name. The empty string selects PolicyError.
func ParsePolicy(s string) (Policy, error) {
	switch p := Policy(strings.ToLower(strings.TrimSpace(s))); p {
	case "":
		return PolicyError, nil
	case PolicyError, PolicySaturate, PolicyWrap:
		return p, nil
	default:
		return "", fmt.Errorf("unknown overflow policy %q (want error, saturate or wrap)", s)
	}
}

// OverflowError describes a field that could not be narrowed to int64.
type OverflowError struct {
	Field string
	Value Int128
}

func (e *OverflowError) Error() string {
	return fmt.Sprintf("%s %s overflows int64", e.Field, e.Value.String())
}

func (e *OverflowError) Unwrap() error {
	return ErrOverflow
}

var mask64 = new(big.Int).SetUint64(math.MaxUint64)

// Narrow converts v to int64 according to p. field names the value in errors.
func Narrow(field string, v Int128, p Policy) (int64, error) {
	if v.IsInt64() {
		return v.d.IntPart(), nil
	}

	switch p {
	case PolicySaturate:
		if v.Sign() < 0 {
			return math.MinInt64, nil
		}
		return math.MaxInt64, nil
	case PolicyWrap:
		low := new(big.Int).And(v.d.BigInt(), mask64)
		return int64(low.Uint64()), nil
	default:
		return 0, &OverflowError{Field: field, Value: v}
	}
}
