// Copyright 2025 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package tax_test

import (
	"testing"
	"time"

	"github.com/cgttools/taxcalc/internal/tax"
)

func TestTaxYearFromDateBoundary(t *testing.T) {
	tests := []struct {
		date string
		want tax.TaxYear
	}{
		{"2024-04-05", tax.TaxYear(2024)},
		{"2024-04-06", tax.TaxYear(2025)},
		{"2024-04-07", tax.TaxYear(2025)},
		{"2024-01-15", tax.TaxYear(2024)},
		{"2024-12-31", tax.TaxYear(2025)},
	}
	for _, tc := range tests {
		d, err := time.Parse("2006-01-02", tc.date)
		if err != nil {
			t.Fatalf("parse %q: %v", tc.date, err)
		}
		if got := tax.TaxYearFromDate(d); got != tc.want {
			t.Errorf("TaxYearFromDate(%s) = %v, want %v", tc.date, got, tc.want)
		}
	}
}

func TestTaxYearDisplay(t *testing.T) {
	tests := map[tax.TaxYear]string{
		tax.TaxYear(2024): "2023/24",
		tax.TaxYear(2025): "2024/25",
		tax.TaxYear(2026): "2025/26",
	}
	for year, want := range tests {
		if got := year.String(); got != want {
			t.Errorf("%d.String() = %q, want %q", int(year), got, want)
		}
	}
}

func TestTaxYearStartEndDates(t *testing.T) {
	y := tax.TaxYear(2025)
	wantStart, _ := time.Parse("2006-01-02", "2024-04-06")
	wantEnd, _ := time.Parse("2006-01-02", "2025-04-05")
	if !y.StartDate().Equal(wantStart) {
		t.Errorf("StartDate = %v, want %v", y.StartDate(), wantStart)
	}
	if !y.EndDate().Equal(wantEnd) {
		t.Errorf("EndDate = %v, want %v", y.EndDate(), wantEnd)
	}
}
