// Package normalize converts user-entered strings into on-chain values.
//
// All failures are *domain.Error with kind ErrInvalidInput so that malformed
// input is rejected before any network call.
package normalize

import (
	"math"
	"math/big"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Agileeo/nft-client/internal/core/domain"
)

var maxUint256 = new(big.Int).Sub(new(big.Int).Lsh(big.NewInt(1), 256), big.NewInt(1))

// maxUint256Digits is the decimal length of maxUint256.
const maxUint256Digits = 78

// timestampLayouts are tried in order. Layouts without a zone are read in the
// caller's location.
var timestampLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

func invalid(msg string, err error) error {
	return domain.NewError(domain.ErrInvalidInput, msg, err)
}

// TokenID strips an optional 0x prefix and parses the remaining digits as
// base 10, so "0x12" is 12.
func TokenID(raw string) (*big.Int, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		s = s[2:]
	}
	if s == "" {
		return nil, invalid("token id is empty", nil)
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return nil, invalid("token id must be a non-negative integer: "+raw, nil)
		}
	}

	id, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, invalid("token id must be a non-negative integer: "+raw, nil)
	}
	if id.Cmp(maxUint256) > 0 {
		return nil, invalid("token id exceeds uint256", nil)
	}
	return id, nil
}

// Amount parses a decimal amount and scales it by 10^decimals, truncating
// toward zero.
func Amount(raw string, decimals int) (*big.Int, error) {
	if decimals < 0 {
		return nil, invalid("decimals must not be negative", nil)
	}
	if decimals > math.MaxInt32 {
		return nil, invalid("decimals out of range", nil)
	}
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil, invalid("amount is empty", nil)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return nil, invalid("amount is not a number: "+raw, err)
	}
	if d.IsNegative() {
		return nil, invalid("amount must not be negative: "+raw, nil)
	}
	if d.IsZero() {
		return new(big.Int), nil
	}

	// Bound the scaled magnitude before building it, so exponent notation
	// like "1e100000000" is rejected instead of materialized.
	magnitude := int64(d.NumDigits()) + int64(d.Exponent()) + int64(decimals)
	if magnitude > maxUint256Digits {
		return nil, invalid("amount exceeds uint256", nil)
	}
	if magnitude <= 0 {
		return new(big.Int), nil
	}

	scaled := d.Mul(decimal.New(1, int32(decimals))).Truncate(0)
	out := scaled.BigInt()
	if out.Cmp(maxUint256) > 0 {
		return nil, invalid("amount exceeds uint256", nil)
	}
	return out, nil
}

// Timestamp converts a date or date-time to unix seconds in UTC. Empty input
// means "immediately" and yields 0.
func Timestamp(raw string) (int64, error) {
	return TimestampIn(raw, time.UTC)
}

// TimestampIn is Timestamp with zone-less layouts read in loc.
func TimestampIn(raw string, loc *time.Location) (int64, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	for _, layout := range timestampLayouts {
		t, err := time.ParseInLocation(layout, s, loc)
		if err != nil {
			continue
		}
		if t.Unix() < 0 {
			return 0, invalid("start date is before 1970: "+raw, nil)
		}
		return t.Unix(), nil
	}
	return 0, invalid("unrecognized date: "+raw, nil)
}
