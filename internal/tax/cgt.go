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

package tax

import (
	"sort"
	"time"

	"github.com/cgttools/taxcalc/internal/money"
)

// MatchingRule identifies which HMRC share-identification rule produced a
// MatchingComponent.
type MatchingRule int

const (
	RuleSameDay MatchingRule = iota
	RuleBedAndBreakfast
	RulePool
)

func (r MatchingRule) String() string {
	switch r {
	case RuleSameDay:
		return "Same-Day"
	case RuleBedAndBreakfast:
		return "B&B"
	default:
		return "Pool"
	}
}

// MatchingComponent is one piece of a disposal's cost basis, attributed to
// a single rule.
type MatchingComponent struct {
	Rule        MatchingRule
	Quantity    money.Decimal
	Cost        money.Decimal
	MatchedDate *time.Time // set for SameDay and BedAndBreakfast, nil for Pool
}

// DisposalRecord is the CGT engine's per-disposal output.
type DisposalRecord struct {
	Date               time.Time
	TaxYear            TaxYear
	Asset              string
	Quantity           money.Decimal
	ProceedsGBP        money.Decimal
	AllowableCostGBP   money.Decimal
	FeesGBP            money.Decimal
	GainGBP            money.Decimal
	MatchingComponents []MatchingComponent
	PoolAfter          PoolSnapshot
	IsUnclassified     bool
	Description        *string
	Warnings           []Warning
}

// CgtReport is the complete output of one CalculateCGT run.
type CgtReport struct {
	Disposals []DisposalRecord
	Pools     map[string]*Pool
}

// TotalProceeds sums proceeds for the given tax year (all years if nil),
// over classified disposals only unless includeUnclassified is set.
func (r *CgtReport) TotalProceeds(year *TaxYear, includeUnclassified bool) money.Decimal {
	total := money.Zero
	for _, d := range r.filter(year, includeUnclassified) {
		total = total.Add(d.ProceedsGBP)
	}
	return total
}

// TotalAllowableCosts sums allowable cost plus fees for the given tax year.
func (r *CgtReport) TotalAllowableCosts(year *TaxYear, includeUnclassified bool) money.Decimal {
	total := money.Zero
	for _, d := range r.filter(year, includeUnclassified) {
		total = total.Add(d.AllowableCostGBP).Add(d.FeesGBP)
	}
	return total
}

// TotalGain sums gain/loss for the given tax year.
func (r *CgtReport) TotalGain(year *TaxYear, includeUnclassified bool) money.Decimal {
	total := money.Zero
	for _, d := range r.filter(year, includeUnclassified) {
		total = total.Add(d.GainGBP)
	}
	return total
}

func (r *CgtReport) filter(year *TaxYear, includeUnclassified bool) []DisposalRecord {
	out := make([]DisposalRecord, 0, len(r.Disposals))
	for _, d := range r.Disposals {
		if year != nil && d.TaxYear != *year {
			continue
		}
		if !includeUnclassified && d.IsUnclassified {
			continue
		}
		out = append(out, d)
	}
	return out
}

// dayAsset keys the acquisition index by calendar date and normalized
// asset symbol.
type dayAsset struct {
	date  time.Time
	asset string
}

// CalculateCGT applies the HMRC share-identification rules (same-day,
// 30-day bed-and-breakfast, Section 104 pool, in that strict precedence) to
// a taxable event stream, optionally seeded with opening pool balances from
// a prior period. It never mutates events and owns the pool map only for
// the duration of this call.
func CalculateCGT(events []TaxableEvent, openingPools []OpeningPool) *CgtReport {
	pools := make(map[string]*Pool)
	for _, op := range openingPools {
		pools[op.Asset] = &Pool{Asset: op.Asset, Quantity: op.Quantity, CostGBP: op.CostGBP}
	}

	sorted := make([]TaxableEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool {
		di, dj := sorted[i].Date(), sorted[j].Date()
		if !di.Equal(dj) {
			return di.Before(dj)
		}
		// Disposal-like events strictly precede acquisition-like events on
		// the same date, so same-day acquisitions are still visible to the
		// same-day rule before they are folded into the pool.
		return sorted[i].EventType.IsDisposalLike() && !sorted[j].EventType.IsDisposalLike()
	})

	remaining := make(map[dayAsset]money.Decimal)
	totalQty := make(map[dayAsset]money.Decimal)
	totalCost := make(map[dayAsset]money.Decimal)

	for _, ev := range sorted {
		if !ev.EventType.IsAcquisitionLike() {
			continue
		}
		key := dayAsset{ev.Date(), ev.Asset}
		remaining[key] = remaining[key].Add(ev.Quantity)
		totalQty[key] = totalQty[key].Add(ev.Quantity)
		totalCost[key] = totalCost[key].Add(ev.TotalCostGBP())
	}

	var disposals []DisposalRecord

	for i := range sorted {
		ev := sorted[i]
		switch {
		case ev.EventType.IsAcquisitionLike():
			foldAcquisitionIntoPool(ev, pools, remaining, totalQty, totalCost)
		case ev.EventType.IsDisposalLike():
			disposals = append(disposals, matchDisposal(ev, pools, remaining, totalQty, totalCost))
		}
	}

	return &CgtReport{Disposals: disposals, Pools: pools}
}

func foldAcquisitionIntoPool(
	ev TaxableEvent,
	pools map[string]*Pool,
	remaining, totalQty, totalCost map[dayAsset]money.Decimal,
) {
	key := dayAsset{ev.Date(), ev.Asset}
	total := totalQty[key]
	if total.IsZero() {
		return
	}
	share := money.SafeDiv(ev.Quantity, total)
	toAdd := money.RoundQuantity(remaining[key].Mul(share))
	if !toAdd.GreaterThan(money.Zero) {
		return
	}
	cost := money.RoundGBP(totalCost[key].Mul(toAdd).Div(total))
	pool, ok := pools[ev.Asset]
	if !ok {
		pool = NewPool(ev.Asset)
		pools[ev.Asset] = pool
	}
	pool.Add(toAdd, cost)
}

func matchDisposal(
	ev TaxableEvent,
	pools map[string]*Pool,
	remaining, totalQty, totalCost map[dayAsset]money.Decimal,
) DisposalRecord {
	feesGBP := money.Zero
	if ev.FeeGBP != nil {
		feesGBP = *ev.FeeGBP
	}
	taxYear := TaxYearFromDate(ev.Date())
	isUnclassified := ev.Tag == TagUnclassified

	remainingToMatch := ev.Quantity
	var allowableCost money.Decimal
	var components []MatchingComponent
	var warnings []Warning

	// 1. Same-day rule.
	sameDayKey := dayAsset{ev.Date(), ev.Asset}
	if avail := remaining[sameDayKey]; avail.GreaterThan(money.Zero) && remainingToMatch.GreaterThan(money.Zero) {
		matchQty := minDecimal(remainingToMatch, avail)
		cost := proportionalCost(totalCost[sameDayKey], matchQty, totalQty[sameDayKey])
		allowableCost = allowableCost.Add(cost)
		matchedDate := ev.Date()
		components = append(components, MatchingComponent{Rule: RuleSameDay, Quantity: matchQty, Cost: cost, MatchedDate: &matchedDate})
		remainingToMatch = remainingToMatch.Sub(matchQty)
		remaining[sameDayKey] = avail.Sub(matchQty)
	}

	// 2. Bed-and-breakfast rule: days +1 through +30 inclusive.
	for d := 1; d <= 30 && remainingToMatch.GreaterThan(money.Zero); d++ {
		future := ev.Date().AddDate(0, 0, d)
		key := dayAsset{future, ev.Asset}
		avail, ok := remaining[key]
		if !ok || !avail.GreaterThan(money.Zero) {
			continue
		}
		matchQty := minDecimal(remainingToMatch, avail)
		cost := proportionalCost(totalCost[key], matchQty, totalQty[key])
		allowableCost = allowableCost.Add(cost)
		matchedDate := future
		components = append(components, MatchingComponent{Rule: RuleBedAndBreakfast, Quantity: matchQty, Cost: cost, MatchedDate: &matchedDate})
		remainingToMatch = remainingToMatch.Sub(matchQty)
		remaining[key] = avail.Sub(matchQty)
	}

	// 3. Section 104 pool rule: whatever is left is matched from the pool,
	// which may not have enough to cover it.
	if remainingToMatch.GreaterThan(money.Zero) {
		pool, ok := pools[ev.Asset]
		if !ok {
			pool = NewPool(ev.Asset)
			pools[ev.Asset] = pool
		}
		available := pool.Quantity
		required := remainingToMatch
		cost := pool.Remove(remainingToMatch)
		allowableCost = allowableCost.Add(cost)
		components = append(components, MatchingComponent{Rule: RulePool, Quantity: required, Cost: cost})
		if required.GreaterThan(available) {
			warnings = append(warnings, Warning{Kind: WarnInsufficientCostBasis, Asset: ev.Asset, Available: available, Required: required})
		}
	}

	gain := ev.ValueGBP.Sub(allowableCost).Sub(feesGBP)

	poolAfter := PoolSnapshot{}
	if p, ok := pools[ev.Asset]; ok {
		poolAfter = p.Snapshot()
	}

	return DisposalRecord{
		Date:               ev.Date(),
		TaxYear:            taxYear,
		Asset:              ev.Asset,
		Quantity:           ev.Quantity,
		ProceedsGBP:        ev.ValueGBP,
		AllowableCostGBP:   money.RoundGBP(allowableCost),
		FeesGBP:            feesGBP,
		GainGBP:            money.RoundGBP(gain),
		MatchingComponents: components,
		PoolAfter:          poolAfter,
		IsUnclassified:     isUnclassified,
		Description:        ev.Description,
		Warnings:           warnings,
	}
}

func proportionalCost(totalCost, matchQty, totalQty money.Decimal) money.Decimal {
	return money.RoundGBP(totalCost.Mul(matchQty).Div(totalQty))
}

func minDecimal(a, b money.Decimal) money.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}
