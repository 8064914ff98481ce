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

// Package ukrates is the income-tax and CGT rate/allowance lookup table:
// the external collaborator spec.md names but deliberately keeps out of the
// core, since which tax band a taxpayer falls into is never the core's
// decision. A caller (cmd/taxcalc summary) supplies both the tax year and
// an explicit band; this package only looks up the resulting rate.
package ukrates

import (
	"strings"

	"github.com/cgttools/taxcalc/internal/money"
)

// Band is the income tax band a caller has decided the taxpayer falls
// into, supplied explicitly rather than inferred.
type Band int

const (
	BandBasic Band = iota
	BandHigher
	BandAdditional
)

// ParseBand parses a case-insensitive band name.
func ParseBand(s string) (Band, error) {
	switch strings.ToLower(s) {
	case "basic":
		return BandBasic, nil
	case "higher":
		return BandHigher, nil
	case "additional":
		return BandAdditional, nil
	default:
		return BandBasic, &ErrUnknownBand{Raw: s}
	}
}

// ErrUnknownBand is returned by ParseBand for anything but
// basic/higher/additional.
type ErrUnknownBand struct{ Raw string }

func (e *ErrUnknownBand) Error() string {
	return "unknown tax band: " + e.Raw
}

func (b Band) String() string {
	switch b {
	case BandHigher:
		return "higher"
	case BandAdditional:
		return "additional"
	default:
		return "basic"
	}
}

func pct(s string) money.Decimal {
	d, _ := money.NewFromString(s)
	return d
}

// CgtExemptAmount is the annual CGT exempt amount for the tax year ending
// in endYear.
func CgtExemptAmount(endYear int) money.Decimal {
	switch {
	case endYear >= 2025:
		return pct("3000")
	case endYear == 2024:
		return pct("6000")
	default:
		return pct("12300")
	}
}

// CgtBasicRate and CgtHigherRate are the crypto/property CGT rates, which
// changed at the start of the 2025/26 tax year.
func CgtBasicRate(endYear int) money.Decimal {
	if endYear >= 2026 {
		return pct("0.18")
	}
	return pct("0.10")
}

func CgtHigherRate(endYear int) money.Decimal {
	if endYear >= 2026 {
		return pct("0.24")
	}
	return pct("0.20")
}

// DividendAllowance is the tax-free dividend allowance for the tax year
// ending in endYear.
func DividendAllowance(endYear int) money.Decimal {
	switch {
	case endYear >= 2025:
		return pct("500")
	case endYear == 2024:
		return pct("1000")
	default:
		return pct("2000")
	}
}

// DividendRate is the dividend tax rate for band, stable across recent
// tax years.
func DividendRate(band Band) money.Decimal {
	switch band {
	case BandHigher:
		return pct("0.3375")
	case BandAdditional:
		return pct("0.3935")
	default:
		return pct("0.0875")
	}
}

// IncomeRate is the miscellaneous-income tax rate (staking rewards, other
// income) for band.
func IncomeRate(band Band) money.Decimal {
	switch band {
	case BandHigher:
		return pct("0.40")
	case BandAdditional:
		return pct("0.45")
	default:
		return pct("0.20")
	}
}
