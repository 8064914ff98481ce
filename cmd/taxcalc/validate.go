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

	"github.com/cgttools/taxcalc/internal/tax"
)

// validationIssue is one data-quality observation surfaced by the core:
// either an unclassified-event warning from conversion or a disposal
// warning attached by the matching engine.
type validationIssue struct {
	Type     string `json:"type"`
	Date     string `json:"date,omitempty"`
	Asset    string `json:"asset"`
	Quantity string `json:"quantity,omitempty"`
	Proceeds string `json:"proceeds_gbp,omitempty"`
	Message  string `json:"message"`
}

func runValidate(args []string) error {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	eventsPath := fs.String("events", "-", "transaction envelope file (- for stdin)")
	poolsPath := fs.String("opening-pools", "", "opening pools file")
	year := fs.Int("year", 0, "restrict to a tax year (e.g. 2025 for 2024/25)")
	jsonOut := fs.Bool("json", false, "output as JSON")
	excludeUnlinked := fs.Bool("exclude-unlinked", false, "drop unlinked unclassified transfers")
	if err := fs.Parse(args); err != nil {
		return err
	}

	events, warnings, opening, err := loadEvents(*eventsPath, *poolsPath, tax.Options{ExcludeUnlinked: *excludeUnlinked})
	if err != nil {
		return err
	}
	report := tax.CalculateCGT(events, opening)

	var taxYear *tax.TaxYear
	if *year != 0 {
		y := tax.TaxYear(*year)
		taxYear = &y
	}

	var issues []validationIssue
	for _, w := range warnings {
		issues = append(issues, validationIssue{Type: w.Kind.String(), Asset: w.Asset, Message: w.String()})
	}
	for _, d := range report.Disposals {
		if taxYear != nil && d.TaxYear != *taxYear {
			continue
		}
		for _, w := range d.Warnings {
			issues = append(issues, validationIssue{
				Type:     w.Kind.String(),
				Date:     d.Date.Format("2006-01-02"),
				Asset:    d.Asset,
				Quantity: fmtQty(d.Quantity),
				Proceeds: fmtGBPPlain(d.ProceedsGBP),
				Message:  w.String(),
			})
		}
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(struct {
			IssueCount int                `json:"issue_count"`
			Issues     []validationIssue `json:"issues"`
		}{len(issues), issues}); err != nil {
			return err
		}
	} else {
		fmt.Println()
		if len(issues) == 0 {
			fmt.Println("no issues found")
		} else {
			fmt.Printf("%d issue(s) found:\n\n", len(issues))
			for i, issue := range issues {
				fmt.Printf("  %d. [%s] %s\n     %s\n\n", i+1, issue.Type, issue.Asset, issue.Message)
			}
		}
	}

	if len(issues) > 0 {
		os.Exit(1)
	}
	return nil
}
