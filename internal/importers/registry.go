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

// Package importers dispatches by exchange name to the concrete importer
// that turns one exchange's raw export format into []tax.Transaction.
package importers

import (
	"fmt"
	"io"
	"sort"

	"github.com/cgttools/taxcalc/internal/importers/binance"
	"github.com/cgttools/taxcalc/internal/importers/cdc"
	"github.com/cgttools/taxcalc/internal/importers/kraken"
	"github.com/cgttools/taxcalc/internal/importers/nexo"
	"github.com/cgttools/taxcalc/internal/importers/uphold"
	"github.com/cgttools/taxcalc/internal/tax"
)

// Importer turns one exchange's raw export into the common transaction
// model.
type Importer interface {
	Name() string
	Import(r io.Reader, account string) ([]tax.Transaction, error)
}

var registry = map[string]Importer{
	"kraken":  kraken.New(),
	"nexo":    nexo.New(),
	"cdc":     cdc.New(),
	"binance": binance.New(),
	"uphold":  uphold.New(),
}

// Get looks up a registered importer by name.
func Get(name string) (Importer, error) {
	imp, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("no importer registered for %q", name)
	}
	return imp, nil
}

// Names lists every registered importer name, sorted for a stable CLI
// --help listing.
func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
