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

	"github.com/cgttools/taxcalc/internal/reportfmt"
	"github.com/cgttools/taxcalc/internal/tax"
)

type eventRow struct {
	Num         int    `json:"num"`
	Date        string `json:"date"`
	TaxYear     string `json:"tax_year"`
	EventType   string `json:"event_type"`
	Tag         string `json:"tag"`
	Asset       string `json:"asset"`
	Quantity    string `json:"quantity"`
	ValueGBP    string `json:"value_gbp"`
	FeeGBP      string `json:"fee_gbp,omitempty"`
	Description string `json:"description,omitempty"`
}

func runEvents(args []string) error {
	fs := flag.NewFlagSet("events", flag.ExitOnError)
	eventsPath := fs.String("events", "-", "transaction envelope file (- for stdin)")
	poolsPath := fs.String("opening-pools", "", "opening pools file")
	year := fs.Int("year", 0, "restrict to a tax year (e.g. 2025 for 2024/25)")
	asset := fs.String("asset", "", "restrict to a single asset symbol")
	excludeUnlinked := fs.Bool("exclude-unlinked", false, "drop unlinked unclassified transfers")
	jsonOut := fs.Bool("json", false, "output as JSON")
	if err := fs.Parse(args); err != nil {
		return err
	}

	events, _, _, err := loadEvents(*eventsPath, *poolsPath, tax.Options{ExcludeUnlinked: *excludeUnlinked})
	if err != nil {
		return err
	}

	var taxYear *tax.TaxYear
	if *year != 0 {
		y := tax.TaxYear(*year)
		taxYear = &y
	}

	var filtered []tax.TaxableEvent
	for _, ev := range events {
		if taxYear != nil && tax.TaxYearFromDate(ev.Date()) != *taxYear {
			continue
		}
		if *asset != "" && !strings.EqualFold(ev.Asset, *asset) {
			continue
		}
		filtered = append(filtered, ev)
	}

	if len(filtered) == 0 {
		if *jsonOut {
			fmt.Println("[]")
		} else {
			fmt.Println("no events found matching filters")
		}
		return nil
	}

	if *jsonOut {
		rows := make([]eventRow, 0, len(filtered))
		for i, ev := range filtered {
			rows = append(rows, toEventRow(i+1, ev))
		}
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(rows)
	}

	fmt.Printf("%-4s %-10s %-8s %-12s %-14s %-8s %14s %10s %10s\n",
		"#", "Date", "Year", "Type", "Tag", "Asset", "Quantity", "Value", "Fee")
	for i, ev := range filtered {
		fee := "-"
		if ev.FeeGBP != nil {
			fee = reportfmt.GBP(*ev.FeeGBP)
		}
		desc := ""
		if ev.Description != nil {
			desc = *ev.Description
		}
		fmt.Printf("%-4d %-10s %-8s %-12s %-14s %-8s %14s %10s %10s  %s\n",
			i+1, ev.Date().Format("2006-01-02"), tax.TaxYearFromDate(ev.Date()).String(),
			ev.EventType.String(), ev.Tag.String(), ev.Asset,
			reportfmt.Quantity(ev.Quantity), reportfmt.GBP(ev.ValueGBP), fee, desc)
	}
	return nil
}

func toEventRow(num int, ev tax.TaxableEvent) eventRow {
	row := eventRow{
		Num:       num,
		Date:      ev.Date().Format("2006-01-02"),
		TaxYear:   tax.TaxYearFromDate(ev.Date()).String(),
		EventType: ev.EventType.String(),
		Tag:       ev.Tag.String(),
		Asset:     ev.Asset,
		Quantity:  fmtQty(ev.Quantity),
		ValueGBP:  fmtGBPPlain(ev.ValueGBP),
	}
	if ev.FeeGBP != nil {
		row.FeeGBP = fmtGBPPlain(*ev.FeeGBP)
	}
	if ev.Description != nil {
		row.Description = *ev.Description
	}
	return row
}
