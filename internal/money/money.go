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

// Package money provides the fixed-point decimal primitives the tax core
// builds on: GBP values round half-up to 2 decimal places at every mutation,
// asset quantities preserve up to 8 fractional digits. Binary floating point
// never appears in a value-bearing calculation.
package money

import (
	"strings"

	"github.com/shopspring/decimal"
)

// GBPScale is the number of decimal places an allowable-cost, proceeds, fee
// or gain figure is rounded to.
const GBPScale = 2

// QuantityScale is the number of decimal places an asset quantity is
// rounded to when it is split proportionally.
const QuantityScale = 8

// Decimal is re-exported so callers don't need a direct shopspring import
// just to build literals.
type Decimal = decimal.Decimal

// Zero is the additive identity.
var Zero = decimal.Zero

// NewFromString parses a decimal literal (as found in JSON input or CSV
// cells). It never uses float64 as an intermediate representation.
func NewFromString(s string) (Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(s))
}

// RoundGBP rounds half-up to 2 decimal places. Every pool cost mutation and
// every per-component allowable cost goes through this before it is stored
// or summed, so drift never accumulates across a long event stream.
func RoundGBP(d Decimal) Decimal {
	return d.Round(GBPScale)
}

// RoundQuantity rounds half-up to 8 decimal places. Used only when a
// quantity is split proportionally (matching-engine acquisition shares);
// quantities that pass through unchanged keep their input precision.
func RoundQuantity(d Decimal) Decimal {
	return d.Round(QuantityScale)
}

// IsGBP reports whether sym identifies the fiat pound sterling, by
// case-insensitive, trimmed comparison. GBP is always a valid asset symbol
// without being declared in the registry.
func IsGBP(sym string) bool {
	return strings.EqualFold(strings.TrimSpace(sym), "GBP")
}

// SafeDiv divides n by d, returning zero instead of panicking/NaN-ing when d
// is zero. The matching engine relies on this at day boundaries where an
// acquisition total can legitimately be zero (e.g. a zero-cost airdrop with
// no other same-day acquisitions to share the divisor with).
func SafeDiv(n, d Decimal) Decimal {
	if d.IsZero() {
		return Zero
	}
	return n.Div(d)
}
