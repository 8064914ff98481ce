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

import "github.com/cgttools/taxcalc/internal/money"

// IncomeEvent is one income-bearing acquisition, as carried into the income
// tax report. Summation and per-tag bucketing are a rendering concern, not
// the core's.
type IncomeEvent struct {
	TaxYear             TaxYear
	Tag                 Tag
	Asset               string
	ValueGBP            money.Decimal
	SourceTransactionID string
}

// IncomeReport is the complete output of one CalculateIncome run.
type IncomeReport struct {
	Events []IncomeEvent
}

// CalculateIncome walks events once and collects every acquisition whose
// tag is an income tag (staking, salary, other income, airdrop income,
// dividend, interest). It performs no aggregation; it is the caller's job
// to sum or bucket the resulting events.
func CalculateIncome(events []TaxableEvent) *IncomeReport {
	var out []IncomeEvent
	for _, ev := range events {
		if ev.EventType == EventAcquisition && ev.Tag.IsIncome() {
			out = append(out, IncomeEvent{
				TaxYear:             TaxYearFromDate(ev.Date()),
				Tag:                 ev.Tag,
				Asset:               ev.Asset,
				ValueGBP:            ev.ValueGBP,
				SourceTransactionID: ev.SourceTransactionID,
			})
		}
	}
	return &IncomeReport{Events: out}
}
