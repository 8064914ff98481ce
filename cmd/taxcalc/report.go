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
	"strings"

	"github.com/cgttools/taxcalc/internal/money"
	"github.com/cgttools/taxcalc/internal/reportfmt"
	"github.com/cgttools/taxcalc/internal/tax"
)

type disposalRow struct {
	Date          string `json:"date"`
	TaxYear       string `json:"tax_year"`
	Asset         string `json:"asset"`
	Quantity      string `json:"quantity"`
	Proceeds      string `json:"proceeds_gbp"`
	AllowableCost string `json:"allowable_cost_gbp"`
	Fees          string `json:"fees_gbp"`
	Gain          string `json:"gain_gbp"`
	Rules         string `json:"rules"`
	Unclassified  bool   `json:"unclassified"`
	Description   string `json:"description,omitempty"`
}

func runReport(args []string) error {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	eventsPath := fs.String("events", "-", "transaction envelope file (- for stdin)")
	poolsPath := fs.String("opening-pools", "", "opening pools file")
	year := fs.Int("year", 0, "restrict to a tax year (e.g. 2025 for 2024/25)")
	asset := fs.String("asset", "", "restrict to a single asset symbol")
	excludeUnlinked := fs.Bool("exclude-unlinked", false, "drop unlinked unclassified transfers")
	jsonOut := fs.Bool("json", false, "output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	events, _, opening, err := loadEvents(*eventsPath, *poolsPath, tax.Options{ExcludeUnlinked: *excludeUnlinked})
	if err != nil {
		return err
	}
	report := tax.CalculateCGT(events, opening)

	var taxYear *tax.TaxYear
	if *year != 0 {
		y := tax.TaxYear(*year)
		taxYear = &y
	}

	var disposals []tax.DisposalRecord
	for _, d := range report.Disposals {
		if taxYear != nil && d.TaxYear != *taxYear {
			continue
		}
		if *asset != "" && !strings.EqualFold(d.Asset, *asset) {
			continue
		}
		disposals = append(disposals, d)
	}

	if *jsonOut {
		rows := make([]disposalRow, 0, len(disposals))
		for _, d := range disposals {
			rows = append(rows, toDisposalRow(d))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	yearStr := "All Years"
	if taxYear != nil {
		yearStr = taxYear.String()
	}
	fmt.Printf("\nCAPITAL GAINS REPORT (%s)\n\n", yearStr)
	if len(disposals) == 0 {
		fmt.Println("no disposals found matching filters")
		return nil
	}
	fmt.Printf("%-10s %-8s %-10s %14s %12s %12s %10s %12s  %s\n",
		"Date", "Year", "Asset", "Quantity", "Proceeds", "Cost", "Fees", "Gain/Loss", "Rules")
	for _, d := range disposals {
		desc := ""
		if d.Description != nil {
			desc = *d.Description
		}
		fmt.Printf("%-10s %-8s %-10s %14s %12s %12s %10s %12s  %s  %s\n",
			d.Date.Format("2006-01-02"), d.TaxYear.String(), d.Asset,
			reportfmt.Quantity(d.Quantity), reportfmt.GBP(d.ProceedsGBP),
			reportfmt.GBP(d.AllowableCostGBP), reportfmt.GBP(d.FeesGBP),
			reportfmt.GBPSigned(d.GainGBP), describeRules(d.MatchingComponents), desc)
	}
	proceeds, costs, gain := money.Zero, money.Zero, money.Zero
	for _, d := range disposals {
		proceeds = proceeds.Add(d.ProceedsGBP)
		costs = costs.Add(d.AllowableCostGBP).Add(d.FeesGBP)
		gain = gain.Add(d.GainGBP)
	}
	fmt.Println()
	fmt.Printf("Total proceeds: %s | Total costs: %s | Total gain/loss: %s\n",
		reportfmt.GBP(proceeds), reportfmt.GBP(costs), reportfmt.GBPSigned(gain))
	return nil
}

func toDisposalRow(d tax.DisposalRecord) disposalRow {
	row := disposalRow{
		Date:          d.Date.Format("2006-01-02"),
		TaxYear:       d.TaxYear.String(),
		Asset:         d.Asset,
		Quantity:      fmtQty(d.Quantity),
		Proceeds:      fmtGBPPlain(d.ProceedsGBP),
		AllowableCost: fmtGBPPlain(d.AllowableCostGBP),
		Fees:          fmtGBPPlain(d.FeesGBP),
		Gain:          fmtGBPPlain(d.GainGBP),
		Rules:         describeRules(d.MatchingComponents),
		Unclassified:  d.IsUnclassified,
	}
	if d.Description != nil {
		row.Description = *d.Description
	}
	return row
}

func describeRules(components []tax.MatchingComponent) string {
	names := make([]string, 0, len(components))
	for _, c := range components {
		names = append(names, c.Rule.String())
	}
	return strings.Join(names, "+")
}
