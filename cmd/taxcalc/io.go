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
	"fmt"
	"io"
	"os"

	"github.com/cgttools/taxcalc/internal/envelope"
	"github.com/cgttools/taxcalc/internal/money"
	"github.com/cgttools/taxcalc/internal/tax"
)

// openInput opens path for reading, treating "-" as stdin.
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" || path == "" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// readDocument loads and parses the transaction envelope at path.
func readDocument(path string) (*envelope.Document, error) {
	f, err := openInput(path)
	if err != nil {
		return nil, fmt.Errorf("opening %s: %w", path, err)
	}
	defer f.Close()
	doc, err := envelope.Parse(f)
	if err != nil {
		return nil, err
	}
	return doc, nil
}

// wireOpeningPool mirrors the opening-pools file's per-asset entry.
type wireOpeningPool struct {
	Quantity string `json:"quantity"`
	CostGBP  string `json:"cost_gbp"`
}

// wireOpeningPoolsFile is the opening-pools file: a mapping of asset to
// balance plus an advisory as-of date (ignored here; it documents when the
// balances were struck, it doesn't bound which events get folded in).
type wireOpeningPoolsFile struct {
	AsOf  string                     `json:"as_of,omitempty"`
	Pools map[string]wireOpeningPool `json:"pools"`
}

// loadOpeningPools reads the opening-pools file (asset symbol -> balance),
// returning nil if path is empty: most runs start from an empty pool.
func loadOpeningPools(path string) ([]tax.OpeningPool, error) {
	if path == "" {
		return nil, nil
	}
	buf, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading opening pools file: %w", err)
	}
	var wire wireOpeningPoolsFile
	if err := json.Unmarshal(buf, &wire); err != nil {
		return nil, fmt.Errorf("parsing opening pools file: %w", err)
	}
	out := make([]tax.OpeningPool, 0, len(wire.Pools))
	for asset, p := range wire.Pools {
		qty, err := money.NewFromString(p.Quantity)
		if err != nil {
			return nil, fmt.Errorf("opening pool %s quantity: %w", asset, err)
		}
		cost, err := money.NewFromString(p.CostGBP)
		if err != nil {
			return nil, fmt.Errorf("opening pool %s cost_gbp: %w", asset, err)
		}
		out = append(out, tax.OpeningPool{Asset: asset, Quantity: qty, CostGBP: cost})
	}
	return out, nil
}

// loadEvents reads the envelope at path and converts it to the taxable
// event stream, applying opts and any opening pools found at poolsPath.
func loadEvents(path, poolsPath string, opts tax.Options) ([]tax.TaxableEvent, []tax.Warning, []tax.OpeningPool, error) {
	doc, err := readDocument(path)
	if err != nil {
		return nil, nil, nil, err
	}
	opening, err := loadOpeningPools(poolsPath)
	if err != nil {
		return nil, nil, nil, err
	}
	events, warnings, err := tax.ToEvents(doc.Transactions, doc.Registry, opts)
	if err != nil {
		return nil, nil, nil, err
	}
	return events, warnings, opening, nil
}
