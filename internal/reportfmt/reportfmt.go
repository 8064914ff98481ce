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

// Package reportfmt renders core types (TaxableEvent, DisposalRecord, Pool)
// as the plain text and JSON the CLI prints. Formatting is a rendering
// concern, same as the summation internal/tax.IncomeReport's doc comment
// leaves to callers; nothing here feeds back into the core.
package reportfmt

import (
	"fmt"
	"strings"

	"github.com/cgttools/taxcalc/internal/money"
)

// GBP renders an unsigned GBP amount as "£1234.56".
func GBP(d money.Decimal) string {
	return fmt.Sprintf("£%s", money.RoundGBP(d).StringFixed(2))
}

// GBPSigned renders a GBP amount that may be negative (a loss) with a
// leading minus sign before the currency symbol.
func GBPSigned(d money.Decimal) string {
	d = money.RoundGBP(d)
	if d.IsNegative() {
		return fmt.Sprintf("-£%s", d.Abs().StringFixed(2))
	}
	return GBP(d)
}

// Quantity renders an asset quantity to 8dp with trailing zeros (and a
// trailing decimal point) trimmed.
func Quantity(d money.Decimal) string {
	s := d.StringFixed(8)
	s = strings.TrimRight(s, "0")
	return strings.TrimRight(s, ".")
}
