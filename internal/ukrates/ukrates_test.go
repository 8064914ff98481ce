package ukrates_test

import (
	"testing"

	"github.com/cgttools/taxcalc/internal/ukrates"
)

func TestCgtExemptAmount(t *testing.T) {
	tests := []struct {
		year int
		want string
	}{
		{2023, "12300"},
		{2024, "6000"},
		{2025, "3000"},
		{2026, "3000"},
	}
	for _, tc := range tests {
		got := ukrates.CgtExemptAmount(tc.year).String()
		if got != tc.want {
			t.Errorf("CgtExemptAmount(%d) = %s, want %s", tc.year, got, tc.want)
		}
	}
}

func TestCgtHigherRateChangesIn2026(t *testing.T) {
	if got := ukrates.CgtHigherRate(2025).String(); got != "0.2" {
		t.Errorf("CgtHigherRate(2025) = %s, want 0.2", got)
	}
	if got := ukrates.CgtHigherRate(2026).String(); got != "0.24" {
		t.Errorf("CgtHigherRate(2026) = %s, want 0.24", got)
	}
}

func TestParseBand(t *testing.T) {
	for _, name := range []string{"basic", "higher", "additional"} {
		if _, err := ukrates.ParseBand(name); err != nil {
			t.Errorf("ParseBand(%q) returned error: %s", name, err)
		}
	}
	if _, err := ukrates.ParseBand("nonsense"); err == nil {
		t.Error("ParseBand(\"nonsense\") expected error, got nil")
	}
}

func TestIncomeRateByBand(t *testing.T) {
	tests := []struct {
		band ukrates.Band
		want string
	}{
		{ukrates.BandBasic, "0.2"},
		{ukrates.BandHigher, "0.4"},
		{ukrates.BandAdditional, "0.45"},
	}
	for _, tc := range tests {
		got := ukrates.IncomeRate(tc.band).String()
		if got != tc.want {
			t.Errorf("IncomeRate(%s) = %s, want %s", tc.band, got, tc.want)
		}
	}
}
