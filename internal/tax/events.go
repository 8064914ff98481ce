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

package tax

import (
	"time"

	"github.com/cgttools/taxcalc/internal/assets"
	"github.com/cgttools/taxcalc/internal/money"
)

// EventType discriminates the two kinds of taxable event.
type EventType int

const (
	EventAcquisition EventType = iota
	EventDisposal
)

func (e EventType) String() string {
	if e == EventDisposal {
		return "Disposal"
	}
	return "Acquisition"
}

// IsAcquisitionLike and IsDisposalLike classify by event type alone,
// regardless of tag: a zero-value Airdrop acquisition still enters the pool
// at zero cost, and an Unclassified disposal still consumes matching the
// same way a tagged one does.
func (e EventType) IsAcquisitionLike() bool { return e == EventAcquisition }
func (e EventType) IsDisposalLike() bool    { return e == EventDisposal }

// TaxableEvent is the output of conversion: one typed, GBP-valued economic
// event derived from a transaction. TaxableEvents are immutable once
// produced; the matching engine and income aggregator only read them.
type TaxableEvent struct {
	ID                   int
	SourceTransactionID  string
	Datetime             time.Time
	EventType            EventType
	Tag                  Tag
	Asset                string
	AssetClass           assets.Class
	Quantity             money.Decimal
	ValueGBP             money.Decimal
	FeeGBP               *money.Decimal
	Description          *string
}

// Date returns the event's calendar date (UTC midnight), the granularity
// the matching engine keys same-day and bed-and-breakfast matching by.
func (e TaxableEvent) Date() time.Time {
	return dateOnly(e.Datetime)
}

// TotalCostGBP is the acquisition's value plus its fee, the figure that
// flows into a pool or matched-acquisition cost. For a disposal this isn't
// meaningful and is never called.
func (e TaxableEvent) TotalCostGBP() money.Decimal {
	total := e.ValueGBP
	if e.FeeGBP != nil {
		total = total.Add(*e.FeeGBP)
	}
	return total
}

// WarningKind discriminates the four data-quality warning shapes.
type WarningKind int

const (
	WarnUnclassifiedEvent WarningKind = iota
	WarnInsufficientCostBasis
	WarnMissingAirdropPrice
	WarnIgnoredAirdropPrice
)

// Warning is a non-blocking data-quality observation attached to an event
// or a disposal. Available/Required are only meaningful for
// WarnInsufficientCostBasis.
type Warning struct {
	Kind      WarningKind
	Asset     string
	Available money.Decimal
	Required  money.Decimal
}

func (w Warning) String() string {
	switch w.Kind {
	case WarnInsufficientCostBasis:
		return "insufficient cost basis for " + w.Asset + ": available " + w.Available.String() + ", required " + w.Required.String()
	case WarnMissingAirdropPrice:
		return "missing airdrop price for " + w.Asset
	case WarnIgnoredAirdropPrice:
		return "ignored airdrop price for " + w.Asset
	default:
		return "unclassified event"
	}
}
