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

	"github.com/cgttools/taxcalc/internal/assets"
	"github.com/cgttools/taxcalc/internal/money"
	"github.com/cgttools/taxcalc/internal/tax"
)

func mustDecimal(t *testing.T, s string) money.Decimal {
	t.Helper()
	d, err := money.NewFromString(s)
	if err != nil {
		t.Fatalf("NewFromString(%q): %v", s, err)
	}
	return d
}

func day(t *testing.T, s string) time.Time {
	t.Helper()
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		t.Fatalf("parse date %q: %v", s, err)
	}
	return d
}

func acq(t *testing.T, date, asset, qty, value string) tax.TaxableEvent {
	return tax.TaxableEvent{
		Datetime:   day(t, date),
		EventType:  tax.EventAcquisition,
		Tag:        tax.TagTrade,
		Asset:      asset,
		AssetClass: assets.ClassCrypto,
		Quantity:   mustDecimal(t, qty),
		ValueGBP:   mustDecimal(t, value),
	}
}

func disp(t *testing.T, date, asset, qty, value string) tax.TaxableEvent {
	return tax.TaxableEvent{
		Datetime:   day(t, date),
		EventType:  tax.EventDisposal,
		Tag:        tax.TagTrade,
		Asset:      asset,
		AssetClass: assets.ClassCrypto,
		Quantity:   mustDecimal(t, qty),
		ValueGBP:   mustDecimal(t, value),
	}
}

// Scenario 1 — Pooling.
func TestScenario1Pooling(t *testing.T) {
	events := []tax.TaxableEvent{
		acq(t, "2016-01-01", "BTC", "100", "1000"),
		acq(t, "2017-01-01", "BTC", "50", "125000"),
		disp(t, "2018-01-01", "BTC", "50", "300000"),
	}
	report := tax.CalculateCGT(events, nil)
	if len(report.Disposals) != 1 {
		t.Fatalf("got %d disposals, want 1", len(report.Disposals))
	}
	d := report.Disposals[0]
	wantCost := mustDecimal(t, "42000")
	if !d.AllowableCostGBP.Equal(wantCost) {
		t.Errorf("allowable cost = %s, want %s", d.AllowableCostGBP, wantCost)
	}
	wantGain := mustDecimal(t, "258000")
	if !d.GainGBP.Equal(wantGain) {
		t.Errorf("gain = %s, want %s", d.GainGBP, wantGain)
	}
	if len(d.MatchingComponents) != 1 || d.MatchingComponents[0].Rule != tax.RulePool {
		t.Errorf("expected a single Pool component, got %+v", d.MatchingComponents)
	}
}

// Scenario 2 — Out-of-order input must reproduce Scenario 1 exactly.
func TestScenario2OutOfOrder(t *testing.T) {
	events := []tax.TaxableEvent{
		disp(t, "2018-01-01", "BTC", "50", "300000"),
		acq(t, "2017-01-01", "BTC", "50", "125000"),
		acq(t, "2016-01-01", "BTC", "100", "1000"),
	}
	report := tax.CalculateCGT(events, nil)
	if len(report.Disposals) != 1 {
		t.Fatalf("got %d disposals, want 1", len(report.Disposals))
	}
	d := report.Disposals[0]
	if !d.AllowableCostGBP.Equal(mustDecimal(t, "42000")) {
		t.Errorf("allowable cost = %s, want 42000", d.AllowableCostGBP)
	}
	if !d.GainGBP.Equal(mustDecimal(t, "258000")) {
		t.Errorf("gain = %s, want 258000", d.GainGBP)
	}
}

// Scenario 3 — Bed-and-breakfast.
func TestScenario3BedAndBreakfast(t *testing.T) {
	events := []tax.TaxableEvent{
		acq(t, "2018-01-01", "BTC", "14000", "200000"),
		disp(t, "2018-08-30", "BTC", "4000", "160000"),
		acq(t, "2018-09-11", "BTC", "500", "17500"),
	}
	report := tax.CalculateCGT(events, nil)
	if len(report.Disposals) != 1 {
		t.Fatalf("got %d disposals, want 1", len(report.Disposals))
	}
	d := report.Disposals[0]
	if len(d.MatchingComponents) != 2 {
		t.Fatalf("got %d components, want 2", len(d.MatchingComponents))
	}
	bnb, pool := d.MatchingComponents[0], d.MatchingComponents[1]
	if bnb.Rule != tax.RuleBedAndBreakfast || !bnb.Quantity.Equal(mustDecimal(t, "500")) || !bnb.Cost.Equal(mustDecimal(t, "17500")) {
		t.Errorf("B&B component = %+v", bnb)
	}
	if pool.Rule != tax.RulePool || !pool.Quantity.Equal(mustDecimal(t, "3500")) || !pool.Cost.Equal(mustDecimal(t, "50000")) {
		t.Errorf("Pool component = %+v", pool)
	}
	if !d.AllowableCostGBP.Equal(mustDecimal(t, "67500")) {
		t.Errorf("allowable cost = %s, want 67500", d.AllowableCostGBP)
	}
	if !d.GainGBP.Equal(mustDecimal(t, "92500")) {
		t.Errorf("gain = %s, want 92500", d.GainGBP)
	}
	residual := report.Pools["BTC"]
	if !residual.Quantity.Equal(mustDecimal(t, "10500")) || !residual.CostGBP.Equal(mustDecimal(t, "150000")) {
		t.Errorf("pool residual = %+v", residual)
	}
}

// Scenario 4 — Same-day priority.
func TestScenario4SameDayPriority(t *testing.T) {
	events := []tax.TaxableEvent{
		acq(t, "2024-06-15", "BTC", "3", "45000"),
		disp(t, "2024-06-15", "BTC", "5", "75000"),
		acq(t, "2024-06-20", "BTC", "5", "60000"),
	}
	report := tax.CalculateCGT(events, nil)
	d := report.Disposals[0]
	if len(d.MatchingComponents) != 2 {
		t.Fatalf("got %d components, want 2", len(d.MatchingComponents))
	}
	sameDay, bnb := d.MatchingComponents[0], d.MatchingComponents[1]
	if sameDay.Rule != tax.RuleSameDay || !sameDay.Quantity.Equal(mustDecimal(t, "3")) || !sameDay.Cost.Equal(mustDecimal(t, "45000")) {
		t.Errorf("same-day component = %+v", sameDay)
	}
	if bnb.Rule != tax.RuleBedAndBreakfast || !bnb.Quantity.Equal(mustDecimal(t, "2")) || !bnb.Cost.Equal(mustDecimal(t, "24000")) {
		t.Errorf("B&B component = %+v", bnb)
	}
	if !d.AllowableCostGBP.Equal(mustDecimal(t, "69000")) {
		t.Errorf("allowable cost = %s, want 69000", d.AllowableCostGBP)
	}
}

// Scenario 5 — Tax year boundary.
func TestScenario5TaxYearBoundary(t *testing.T) {
	events := []tax.TaxableEvent{
		acq(t, "2024-01-01", "BTC", "10", "100000"),
		disp(t, "2024-04-05", "BTC", "2", "30000"),
		disp(t, "2024-04-06", "BTC", "2", "32000"),
	}
	report := tax.CalculateCGT(events, nil)
	if len(report.Disposals) != 2 {
		t.Fatalf("got %d disposals, want 2", len(report.Disposals))
	}
	if report.Disposals[0].TaxYear != tax.TaxYear(2024) {
		t.Errorf("first disposal tax year = %v, want 2024", report.Disposals[0].TaxYear)
	}
	if report.Disposals[1].TaxYear != tax.TaxYear(2025) {
		t.Errorf("second disposal tax year = %v, want 2025", report.Disposals[1].TaxYear)
	}
}

// Scenario 6 — Crypto-to-crypto trade, exercised via the conversion
// pipeline rather than directly building TaxableEvents, since this
// scenario is really about Price.ToGBP's quote/fx-rate path.
func TestScenario6CryptoToCryptoTrade(t *testing.T) {
	reg, err := assets.Build([]assets.Declared{
		{Symbol: "BTC", Class: assets.ClassCrypto},
		{Symbol: "ETH", Class: assets.ClassCrypto},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	quote := "USD"
	fxRate := mustDecimal(t, "0.79")
	txs := []tax.Transaction{
		{
			ID:       "t1",
			Datetime: day(t, "2024-01-01"),
			Tag:      tax.TagTrade,
			Kind:     tax.KindTrade,
			Trade: &tax.TradeDetails{
				Sold:   tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "0.01")},
				Bought: tax.Amount{Asset: "ETH", Quantity: mustDecimal(t, "0.5")},
			},
			Price: &tax.Price{
				Base:   "ETH",
				Quote:  &quote,
				Rate:   mustDecimal(t, "2000"),
				FXRate: &fxRate,
			},
		},
	}
	events, _, err := tax.ToEvents(txs, reg, tax.Options{})
	if err != nil {
		t.Fatalf("ToEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	want := mustDecimal(t, "790")
	for _, ev := range events {
		if !ev.ValueGBP.Equal(want) {
			t.Errorf("event %s value = %s, want %s", ev.EventType, ev.ValueGBP, want)
		}
	}
}

// Universal invariant: selling more than the pool holds yields a disposal
// with partial cost and an InsufficientCostBasis warning.
func TestInsufficientCostBasisWarning(t *testing.T) {
	events := []tax.TaxableEvent{
		acq(t, "2020-01-01", "BTC", "1", "1000"),
		disp(t, "2021-01-01", "BTC", "5", "10000"),
	}
	report := tax.CalculateCGT(events, nil)
	d := report.Disposals[0]
	if !d.AllowableCostGBP.Equal(mustDecimal(t, "1000")) {
		t.Errorf("allowable cost = %s, want 1000", d.AllowableCostGBP)
	}
	if len(d.Warnings) != 1 || d.Warnings[0].Kind != tax.WarnInsufficientCostBasis {
		t.Fatalf("expected one InsufficientCostBasis warning, got %+v", d.Warnings)
	}
	if !d.Warnings[0].Available.Equal(mustDecimal(t, "1")) || !d.Warnings[0].Required.Equal(mustDecimal(t, "5")) {
		t.Errorf("warning = %+v", d.Warnings[0])
	}
}

func TestEmptyEventsYieldEmptyReport(t *testing.T) {
	report := tax.CalculateCGT(nil, nil)
	if len(report.Disposals) != 0 {
		t.Errorf("got %d disposals, want 0", len(report.Disposals))
	}
	if len(report.Pools) != 0 {
		t.Errorf("got %d pools, want 0", len(report.Pools))
	}
}

// Invariant: component quantities and costs sum to the disposal totals.
func TestComponentsSumToDisposalTotals(t *testing.T) {
	events := []tax.TaxableEvent{
		acq(t, "2018-01-01", "BTC", "14000", "200000"),
		disp(t, "2018-08-30", "BTC", "4000", "160000"),
		acq(t, "2018-09-11", "BTC", "500", "17500"),
	}
	report := tax.CalculateCGT(events, nil)
	d := report.Disposals[0]
	qtySum, costSum := money.Zero, money.Zero
	for _, c := range d.MatchingComponents {
		qtySum = qtySum.Add(c.Quantity)
		costSum = costSum.Add(c.Cost)
	}
	if !qtySum.Equal(d.Quantity) {
		t.Errorf("component quantity sum = %s, want %s", qtySum, d.Quantity)
	}
	if !costSum.Equal(d.AllowableCostGBP) {
		t.Errorf("component cost sum = %s, want %s", costSum, d.AllowableCostGBP)
	}
}
