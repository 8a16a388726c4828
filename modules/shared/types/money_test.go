package types_test

import (
	"errors"
	"math"
	"testing"

	"github.com/agrilink/marketplace/modules/shared/types"
)

func TestNewMoney_Validation(t *testing.T) {
	tests := []struct {
		name     string
		currency string
		wantErr  error
	}{
		{"valid", "USD", nil},
		{"lowercase is normalized", "usd", nil},
		{"empty", "", types.ErrCurrencyRequired},
		{"too long", "DOLLAR", types.ErrCurrencyInvalid},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := types.NewMoney(100, tt.currency)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("NewMoney(100, %q) error = %v, want %v", tt.currency, err, tt.wantErr)
			}
		})
	}
}

func TestMoney_Add(t *testing.T) {
	a := types.MustNewMoney(250, "USD")
	b := types.MustNewMoney(125, "USD")

	sum, err := a.Add(b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !sum.Equals(types.MustNewMoney(375, "USD")) {
		t.Errorf("expected 375 USD, got %s", sum)
	}

	_, err = a.Add(types.MustNewMoney(1, "EUR"))
	if !errors.Is(err, types.ErrCurrencyMismatch) {
		t.Errorf("expected ErrCurrencyMismatch, got %v", err)
	}
}

func TestMoney_Overflow(t *testing.T) {
	big := types.MustNewMoney(math.MaxInt64-10, "USD")

	if _, err := big.Add(types.MustNewMoney(11, "USD")); !errors.Is(err, types.ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow from Add, got %v", err)
	}
	if _, err := types.MustNewMoney(math.MinInt64+10, "USD").Subtract(types.MustNewMoney(11, "USD")); !errors.Is(err, types.ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow from Subtract, got %v", err)
	}
	if _, err := types.MustNewMoney(300, "USD").Multiply(math.MaxInt64 / 2); !errors.Is(err, types.ErrAmountOverflow) {
		t.Errorf("expected ErrAmountOverflow from Multiply, got %v", err)
	}

	product, err := types.MustNewMoney(450, "USD").Multiply(3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !product.Equals(types.MustNewMoney(1350, "USD")) {
		t.Errorf("expected 13.50 USD, got %s", product)
	}
	if zero, err := big.Multiply(0); err != nil || !zero.IsZero() {
		t.Errorf("expected zero, got %s, %v", zero, err)
	}
}

func TestMoney_String(t *testing.T) {
	if got := types.MustNewMoney(1205, "USD").String(); got != "12.05 USD" {
		t.Errorf("expected '12.05 USD', got %q", got)
	}
	if got := types.MustNewMoney(-50, "USD").String(); got != "-0.50 USD" {
		t.Errorf("expected '-0.50 USD', got %q", got)
	}
}

func TestOrderID_RoundTrip(t *testing.T) {
	id := types.NewOrderID()

	parsed, err := types.ParseOrderID(id.String())
	if err != nil {
		t.Fatalf("failed to parse generated order id %q: %v", id, err)
	}
	if parsed != id {
		t.Errorf("expected %s, got %s", id, parsed)
	}

	if _, err := types.ParseOrderID("ORD-123"); !errors.Is(err, types.ErrInvalidID) {
		t.Errorf("expected ErrInvalidID, got %v", err)
	}
}
