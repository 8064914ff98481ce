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
	"github.com/cgttools/taxcalc/internal/money"
	"github.com/cgttools/taxcalc/internal/reportfmt"
)

// fmtGBPPlain renders a GBP amount without the currency symbol, the form
// JSON output uses (text output goes through reportfmt.GBP instead).
func fmtGBPPlain(d money.Decimal) string {
	return money.RoundGBP(d).StringFixed(2)
}

func fmtQty(d money.Decimal) string {
	return reportfmt.Quantity(d)
}
