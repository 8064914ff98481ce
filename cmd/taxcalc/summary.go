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

package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"sort"
	"strings"

	"github.com/cgttools/taxcalc/internal/money"
	"github.com/cgttools/taxcalc/internal/tax"
	"github.com/cgttools/taxcalc/internal/ukrates"
)

type yearSummary struct {
	TaxYear        string `json:"tax_year"`
	Proceeds       string `json:"proceeds_gbp"`
	AllowableCosts string `json:"allowable_costs_gbp"`
	Gain           string `json:"gain_gbp"`
	ExemptAmount   string `json:"cgt_exempt_amount_gbp"`
	TaxableGain    string `json:"taxable_gain_gbp"`
	CgtDue         string `json:"cgt_due_gbp"`
	IncomeGBP      string `json:"income_gbp"`
	IncomeTaxDue   string `json:"income_tax_due_gbp"`
	Warnings       int    `json:"warnings"`
}

func runSummary(args []string) error {
	fs := flag.NewFlagSet("summary", flag.ExitOnError)
	eventsPath := fs.String("events", "-", "transaction envelope file (- for stdin)")
	poolsPath := fs.String("opening-pools", "", "opening pools file")
	year := fs.Int("year", 0, "restrict to a tax year (e.g. 2025 for 2024/25)")
	asset := fs.String("asset", "", "restrict to a single asset symbol")
	bandFlag := fs.String("tax-band", "basic", "tax band for rate lookups: basic, higher, additional")
	excludeUnlinked := fs.Bool("exclude-unlinked", false, "drop unlinked unclassified transfers")
	jsonOut := fs.Bool("json", false, "output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	band, err := ukrates.ParseBand(*bandFlag)
	if err != nil {
		return err
	}

	events, warnings, opening, err := loadEvents(*eventsPath, *poolsPath, tax.Options{ExcludeUnlinked: *excludeUnlinked})
	if err != nil {
		return err
	}
	cgtReport := tax.CalculateCGT(events, opening)
	incomeReport := tax.CalculateIncome(events)

	var onlyYear *tax.TaxYear
	if *year != 0 {
		y := tax.TaxYear(*year)
		onlyYear = &y
	}

	years := map[tax.TaxYear]bool{}
	for _, d := range cgtReport.Disposals {
		if *asset != "" && !strings.EqualFold(d.Asset, *asset) {
			continue
		}
		years[d.TaxYear] = true
	}
	for _, ev := range incomeReport.Events {
		if *asset != "" && !strings.EqualFold(ev.Asset, *asset) {
			continue
		}
		years[ev.TaxYear] = true
	}

	sorted := make([]tax.TaxYear, 0, len(years))
	for y := range years {
		if onlyYear != nil && y != *onlyYear {
			continue
		}
		sorted = append(sorted, y)
	}
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })

	warningCount := len(warnings)
	for _, d := range cgtReport.Disposals {
		warningCount += len(d.Warnings)
	}

	summaries := make([]yearSummary, 0, len(sorted))
	for _, y := range sorted {
		yCopy := y
		proceeds, costs, gain := money.Zero, money.Zero, money.Zero
		for _, d := range cgtReport.Disposals {
			if d.TaxYear != yCopy {
				continue
			}
			if *asset != "" && !strings.EqualFold(d.Asset, *asset) {
				continue
			}
			proceeds = proceeds.Add(d.ProceedsGBP)
			costs = costs.Add(d.AllowableCostGBP).Add(d.FeesGBP)
			gain = gain.Add(d.GainGBP)
		}

		income := money.Zero
		for _, ev := range incomeReport.Events {
			if ev.TaxYear != yCopy {
				continue
			}
			if *asset != "" && !strings.EqualFold(ev.Asset, *asset) {
				continue
			}
			income = income.Add(ev.ValueGBP)
		}

		exempt := ukrates.CgtExemptAmount(int(yCopy))
		taxableGain := gain.Sub(exempt)
		if taxableGain.IsNegative() {
			taxableGain = money.Zero
		}
		cgtRate := ukrates.CgtBasicRate(int(yCopy))
		if band == ukrates.BandHigher || band == ukrates.BandAdditional {
			cgtRate = ukrates.CgtHigherRate(int(yCopy))
		}
		cgtDue := taxableGain.Mul(cgtRate)

		allowance := ukrates.DividendAllowance(int(yCopy))
		taxableIncome := income.Sub(allowance)
		if taxableIncome.IsNegative() {
			taxableIncome = money.Zero
		}
		incomeDue := taxableIncome.Mul(ukrates.IncomeRate(band))

		summaries = append(summaries, yearSummary{
			TaxYear:        yCopy.String(),
			Proceeds:       fmtGBPPlain(proceeds),
			AllowableCosts: fmtGBPPlain(costs),
			Gain:           fmtGBPPlain(gain),
			ExemptAmount:   fmtGBPPlain(exempt),
			TaxableGain:    fmtGBPPlain(taxableGain),
			CgtDue:         fmtGBPPlain(cgtDue),
			IncomeGBP:      fmtGBPPlain(income),
			IncomeTaxDue:   fmtGBPPlain(incomeDue),
			Warnings:       warningCount,
		})
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summaries)
	}

	if warningCount > 0 {
		fmt.Printf("WARNINGS: %d issue(s) found; run `taxcalc validate` for details.\n\n", warningCount)
	}
	fmt.Printf("TAX SUMMARY (band: %s)\n\n", band.String())
	if len(summaries) == 0 {
		fmt.Println("no activity found matching filters")
		return nil
	}
	fmt.Printf("%-8s %12s %12s %12s %10s %12s %10s %12s %10s\n",
		"Year", "Proceeds", "Costs", "Gain", "Exempt", "Taxable", "CGT Due", "Income", "Inc. Tax")
	for _, s := range summaries {
		fmt.Printf("%-8s %12s %12s %12s %10s %12s %10s %12s %10s\n",
			s.TaxYear, s.Proceeds, s.AllowableCosts, s.Gain, s.ExemptAmount,
			s.TaxableGain, s.CgtDue, s.IncomeGBP, s.IncomeTaxDue)
	}
	return nil
}
