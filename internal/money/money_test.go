package money_test

import (
	"testing"

	"github.com/cgttools/taxcalc/internal/money"
)

func d(s string) money.Decimal {
	dec, err := money.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return dec
}

func TestRoundGBPHalfUp(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"1.005", "1.01"},
		{"1.004", "1"},
		{"42000", "42000"},
		{"0.001", "0"},
		{"0.005", "0.01"},
	}
	for _, tc := range tests {
		got := money.RoundGBP(d(tc.in)).String()
		if got != tc.want {
			t.Errorf("RoundGBP(%s) = %s, want %s", tc.in, got, tc.want)
		}
	}
}

func TestRoundQuantityEightDP(t *testing.T) {
	got := money.RoundQuantity(d("1.123456785")).String()
	want := "1.12345679"
	if got != want {
		t.Errorf("RoundQuantity = %s, want %s", got, want)
	}
}

func TestIsGBP(t *testing.T) {
	for _, sym := range []string{"GBP", "gbp", " Gbp ", "GBX"} {
		want := sym != "GBX"
		if money.IsGBP(sym) != want {
			t.Errorf("IsGBP(%q) = %v, want %v", sym, !want, want)
		}
	}
}

func TestSafeDivByZero(t *testing.T) {
	got := money.SafeDiv(d("10"), money.Zero)
	if !got.Equal(money.Zero) {
		t.Errorf("SafeDiv by zero = %s, want 0", got.String())
	}
}
