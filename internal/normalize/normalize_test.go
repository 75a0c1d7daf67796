package normalize

import (
	"math"
	"math/big"
	"testing"
	"time"

	"github.com/Agileeo/nft-client/internal/core/domain"
)

func TestTokenID(t *testing.T) {
	tests := []struct {
		raw    string
		expect int64
	}{
		{"7", 7},
		{"0", 0},
		{"0x12", 12},
		{"0X12", 12},
		{"  42 ", 42},
		{"0x0009", 9},
	}

	for _, tt := range tests {
		got, err := TokenID(tt.raw)
		if err != nil {
			t.Errorf("TokenID(%q) unexpected error: %v", tt.raw, err)
			continue
		}
		if got.Cmp(big.NewInt(tt.expect)) != 0 {
			t.Errorf("TokenID(%q) = %s, want %d", tt.raw, got, tt.expect)
		}
	}
}

func TestTokenID_PrefixIsNotHex(t *testing.T) {
	for i := 0; i < 1000; i += 37 {
		digits := big.NewInt(int64(i)).String()
		got, err := TokenID("0x" + digits)
		if err != nil {
			t.Fatalf("TokenID(0x%s): %v", digits, err)
		}
		if got.Int64() != int64(i) {
			t.Errorf("TokenID(0x%s) = %s, want %d", digits, got, i)
		}
	}
}

func TestTokenID_Invalid(t *testing.T) {
	limit := "115792089237316195423570985008687907853269984665640564039457584007913129639935"
	if _, err := TokenID(limit); err != nil {
		t.Fatalf("max uint256 should be accepted: %v", err)
	}

	for _, raw := range []string{"", "   ", "0x", "abc", "-1", "1.5", "0x1f", "+3", "1e3", limit + "0"} {
		_, err := TokenID(raw)
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Errorf("TokenID(%q) error = %v, want invalid input", raw, err)
		}
	}
}

func TestAmount(t *testing.T) {
	tests := []struct {
		raw      string
		decimals int
		expect   string
	}{
		{"0.000000001", 9, "1"},
		{"1", 18, "1000000000000000000"},
		{"1.5", 18, "1500000000000000000"},
		{"0.0000000019", 9, "1"},
		{"0.0000000009", 9, "0"},
		{"123.456", 0, "123"},
		{"0", 18, "0"},
		{"1e3", 2, "100000"},
		{" 2.25 ", 2, "225"},
	}

	for _, tt := range tests {
		got, err := Amount(tt.raw, tt.decimals)
		if err != nil {
			t.Errorf("Amount(%q, %d) unexpected error: %v", tt.raw, tt.decimals, err)
			continue
		}
		if got.String() != tt.expect {
			t.Errorf("Amount(%q, %d) = %s, want %s", tt.raw, tt.decimals, got, tt.expect)
		}
	}
}

func TestAmount_Invalid(t *testing.T) {
	tests := []struct {
		raw      string
		decimals int
	}{
		{"", 18},
		{"   ", 18},
		{"abc", 18},
		{"1.2.3", 18},
		{"-1", 18},
		{"-0.5", 9},
		{"1", -1},
		{"1e100000000", 18},
		{"1e79", 0},
		{"1", math.MaxInt32 + 1},
	}

	for _, tt := range tests {
		_, err := Amount(tt.raw, tt.decimals)
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Errorf("Amount(%q, %d) error = %v, want invalid input", tt.raw, tt.decimals, err)
		}
	}
}

func TestAmount_ExponentBounds(t *testing.T) {
	limit := "115792089237316195423570985008687907853269984665640564039457584007913129639935"

	tests := []struct {
		raw      string
		decimals int
		expect   string
	}{
		{limit, 0, limit},
		{"1e77", 0, "100000000000000000000000000000000000000000000000000000000000000000000000000000"},
		{"1e-100000000", 18, "0"},
		{"0e100000000", 18, "0"},
		{"1e-30", 90, "1000000000000000000000000000000000000000000000000000000000000"},
	}

	for _, tt := range tests {
		got, err := Amount(tt.raw, tt.decimals)
		if err != nil {
			t.Errorf("Amount(%q, %d) unexpected error: %v", tt.raw, tt.decimals, err)
			continue
		}
		if got.String() != tt.expect {
			t.Errorf("Amount(%q, %d) = %s, want %s", tt.raw, tt.decimals, got, tt.expect)
		}
	}

	// max+1 has the same digit count, so it is caught by the value check.
	if _, err := Amount("115792089237316195423570985008687907853269984665640564039457584007913129639936", 0); !domain.IsKind(err, domain.ErrInvalidInput) {
		t.Errorf("expected invalid input above uint256, got %v", err)
	}
}

func TestAmount_Monotonic(t *testing.T) {
	inputs := []string{"0", "0.0000000001", "0.000000001", "0.0000000015", "0.5", "0.51", "1", "1.0000000001", "10", "99.999999999"}

	var prev *big.Int
	for _, raw := range inputs {
		got, err := Amount(raw, 9)
		if err != nil {
			t.Fatalf("Amount(%q): %v", raw, err)
		}
		if prev != nil && got.Cmp(prev) < 0 {
			t.Errorf("Amount(%q) = %s is smaller than previous %s", raw, got, prev)
		}
		prev = got
	}
}

func TestTimestamp(t *testing.T) {
	tests := []struct {
		raw    string
		expect int64
	}{
		{"", 0},
		{"  ", 0},
		{"2024-01-01", 1704067200},
		{"2024-01-01T00:00", 1704067200},
		{"2024-01-01T00:00:30", 1704067230},
		{"2024-01-01 01:00:00", 1704070800},
		{"2024-01-01T00:00:00Z", 1704067200},
		{"2024-01-01T02:00:00+02:00", 1704067200},
	}

	for _, tt := range tests {
		got, err := Timestamp(tt.raw)
		if err != nil {
			t.Errorf("Timestamp(%q) unexpected error: %v", tt.raw, err)
			continue
		}
		if got != tt.expect {
			t.Errorf("Timestamp(%q) = %d, want %d", tt.raw, got, tt.expect)
		}
	}
}

func TestTimestampIn_Location(t *testing.T) {
	loc := time.FixedZone("UTC+7", 7*3600)
	got, err := TimestampIn("2024-01-01T07:00", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 1704067200 {
		t.Errorf("expected 1704067200, got %d", got)
	}
}

func TestTimestamp_Invalid(t *testing.T) {
	for _, raw := range []string{"tomorrow", "2024-13-01", "1969-12-31", "01/02/2024"} {
		_, err := Timestamp(raw)
		if !domain.IsKind(err, domain.ErrInvalidInput) {
			t.Errorf("Timestamp(%q) error = %v, want invalid input", raw, err)
		}
	}
}
