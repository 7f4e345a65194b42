package amount

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"math/big"

	"github.com/shopspring/decimal"
)

var (
	// ErrOutOfRange is returned when a value does not fit in a signed 128-bit integer.
	ErrOutOfRange = errors.New("value out of int128 range")
	// ErrNotInteger is returned when a value has a fractional part.
	ErrNotInteger = errors.New("value is not an integer")
)

var (
	maxInt128 = decimal.NewFromBigInt(new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 127), big.NewInt(1)), 0)
	minInt128 = decimal.NewFromBigInt(new(big.Int).Neg(new(big.Int).Lsh(big.NewInt(1), 127)), 0)

	maxInt64 = decimal.NewFromInt(math.MaxInt64)
	minInt64 = decimal.NewFromInt(math.MinInt64)
)

// Int128 is a signed 128-bit ledger amount. The zero value is 0.
type Int128 struct {
	d decimal.Decimal
}

// NewInt128 returns the Int128 for v.
func NewInt128(v int64) Int128 {
	return canonical(big.NewInt(v))
}

// ParseInt128 parses a base-10 integer string.
func ParseInt128(s string) (Int128, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Int128{}, fmt.Errorf("failed to parse amount %q: %w", s, err)
	}
	return fromDecimal(d)
}

// MustParseInt128 is ParseInt128 for constants and tests; it panics on error.
func MustParseInt128(s string) Int128 {
	v, err := ParseInt128(s)
	if err != nil {
		panic(err)
	}
	return v
}

func fromDecimal(d decimal.Decimal) (Int128, error) {
	if !d.IsInteger() {
		return Int128{}, fmt.Errorf("%s: %w", d.String(), ErrNotInteger)
	}
	if d.GreaterThan(maxInt128) || d.LessThan(minInt128) {
		return Int128{}, fmt.Errorf("%s: %w", d.String(), ErrOutOfRange)
	}
	return canonical(d.BigInt()), nil
}

// canonical keeps equal values deep-equal: zero is always the zero Int128.
func canonical(b *big.Int) Int128 {
	if b.Sign() == 0 {
		return Int128{}
	}
	return Int128{d: decimal.NewFromBigInt(b, 0)}
}

// String returns the base-10 representation.
func (v Int128) String() string {
	return v.d.String()
}

// IsInt64 reports whether v can be represented as an int64 without loss.
func (v Int128) IsInt64() bool {
	return !v.d.GreaterThan(maxInt64) && !v.d.LessThan(minInt64)
}

func (v Int128) Equal(o Int128) bool {
	return v.d.Equal(o.d)
}

func (v Int128) Sign() int {
	return v.d.Sign()
}

// MarshalJSON encodes v as a JSON string so consumers do not lose precision.
func (v Int128) MarshalJSON() ([]byte, error) {
	return json.Marshal(v.d.String())
}

// UnmarshalJSON accepts both a quoted integer and a bare JSON number.
func (v *Int128) UnmarshalJSON(data []byte) error {
	var raw json.Number
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		raw = json.Number(s)
	} else {
		raw = json.Number(data)
	}

	parsed, err := ParseInt128(raw.String())
	if err != nil {
		return err
	}
	*v = parsed
	return nil
}

// Value stores v as TEXT.
func (v Int128) Value() (driver.Value, error) {
	return v.d.String(), nil
}

// Scan reads v from a TEXT, BLOB or INTEGER column.
func (v *Int128) Scan(src interface{}) error {
	switch s := src.(type) {
	case string:
		parsed, err := ParseInt128(s)
		if err != nil {
			return err
		}
		*v = parsed
	case []byte:
		parsed, err := ParseInt128(string(s))
		if err != nil {
			return err
		}
		*v = parsed
	case int64:
		*v = NewInt128(s)
	case nil:
		*v = Int128{}
	default:
		return fmt.Errorf("cannot scan %T into Int128", src)
	}
	return nil
}
