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

// Package tax implements the transaction-to-events conversion pipeline and
// the HMRC share-identification engine: classification of transactions into
// taxable events, deterministic event ordering, the three-rule matching
// algorithm (same-day, 30-day bed-and-breakfast, Section 104 pool), and the
// per-asset pool state machine. It is single-threaded and synchronous; it
// never opens a file or holds state across invocations.
package tax

import (
	"fmt"
	"time"

	"github.com/cgttools/taxcalc/internal/money"
)

// Tag classifies a transaction's (and, after conversion, an event's)
// economic nature. It is a closed sum type represented as a discriminated
// int since Go has no native sum types.
type Tag int

const (
	TagUnclassified Tag = iota
	TagTrade
	TagStakingReward
	TagSalary
	TagOtherIncome
	TagAirdrop
	TagAirdropIncome
	TagDividend
	TagInterest
	TagGift
)

func (t Tag) String() string {
	switch t {
	case TagUnclassified:
		return "Unclassified"
	case TagTrade:
		return "Trade"
	case TagStakingReward:
		return "StakingReward"
	case TagSalary:
		return "Salary"
	case TagOtherIncome:
		return "OtherIncome"
	case TagAirdrop:
		return "Airdrop"
	case TagAirdropIncome:
		return "AirdropIncome"
	case TagDividend:
		return "Dividend"
	case TagInterest:
		return "Interest"
	case TagGift:
		return "Gift"
	default:
		return fmt.Sprintf("Tag(%d)", int(t))
	}
}

// IsIncome reports whether an acquisition carrying this tag counts toward
// income tax (as opposed to CGT only). Dividend and Interest are income
// tags here even on a GBP-denominated deposit.
func (t Tag) IsIncome() bool {
	switch t {
	case TagStakingReward, TagSalary, TagOtherIncome, TagAirdropIncome, TagDividend, TagInterest:
		return true
	default:
		return false
	}
}

// ParseTag parses the exact (case-sensitive) tag names used in the input
// envelope.
func ParseTag(s string) (Tag, error) {
	switch s {
	case "Unclassified":
		return TagUnclassified, nil
	case "Trade":
		return TagTrade, nil
	case "StakingReward":
		return TagStakingReward, nil
	case "Salary":
		return TagSalary, nil
	case "OtherIncome":
		return TagOtherIncome, nil
	case "Airdrop":
		return TagAirdrop, nil
	case "AirdropIncome":
		return TagAirdropIncome, nil
	case "Dividend":
		return TagDividend, nil
	case "Interest":
		return TagInterest, nil
	case "Gift":
		return TagGift, nil
	default:
		return TagUnclassified, fmt.Errorf("unknown tag: %q", s)
	}
}

// Kind discriminates the Transaction variant: Trade, Deposit, or Withdrawal.
type Kind int

const (
	KindTrade Kind = iota
	KindDeposit
	KindWithdrawal
)

// Amount is a quantity of a single asset.
type Amount struct {
	Asset    string
	Quantity money.Decimal
}

// Price is a quotation for a base asset. When Quote and FXRate are both
// present, the GBP value of q units of Base is q*Rate*FXRate (Rate is
// denominated in Quote, which is itself converted to GBP by FXRate). When
// both are absent, the GBP value is q*Rate directly (Rate is already GBP).
// Exactly one of Quote/FXRate present is invalid.
type Price struct {
	Base   string
	Quote  *string
	Rate   money.Decimal
	FXRate *money.Decimal
	Source *string
}

// errInvalidPriceShape is the unadorned sentinel ToGBP returns; callers with
// transaction context wrap it as ErrInvalidPrice{TransactionID: ...}.
var errInvalidPriceShape = fmt.Errorf("price has an inconsistent quote/fx-rate pair")

// ToGBP converts a quantity of the priced Base asset to GBP.
func (p Price) ToGBP(quantity money.Decimal) (money.Decimal, error) {
	switch {
	case p.Quote == nil && p.FXRate == nil:
		return quantity.Mul(p.Rate), nil
	case p.Quote != nil && p.FXRate != nil:
		if *p.Quote == "" {
			return money.Zero, errInvalidPriceShape
		}
		return quantity.Mul(p.Rate).Mul(*p.FXRate), nil
	default:
		return money.Zero, errInvalidPriceShape
	}
}

// Fee is an amount of some asset paid as a transaction fee, optionally
// carrying its own Price when it isn't resolvable via the transaction's
// priced asset.
type Fee struct {
	Asset  string
	Amount money.Decimal
	Price  *Price
}

// ResolveGBP converts a Fee to GBP using, in order: (1) the fee asset is GBP
// itself; (2) the fee carries an explicit Price; (3) the fee asset equals
// pricedAsset, the transaction's own priced asset, so txPrice applies.
// Otherwise it fails: there is no way to value the fee.
func (f Fee) ResolveGBP(transactionID, pricedAsset string, txPrice *Price) (money.Decimal, error) {
	if money.IsGBP(f.Asset) {
		return money.RoundGBP(f.Amount), nil
	}
	if f.Price != nil {
		v, err := f.Price.ToGBP(f.Amount)
		if err != nil {
			return money.Zero, ErrInvalidPrice{TransactionID: transactionID}
		}
		return money.RoundGBP(v), nil
	}
	if pricedAsset != "" && f.Asset == pricedAsset && txPrice != nil {
		v, err := txPrice.ToGBP(f.Amount)
		if err != nil {
			return money.Zero, ErrInvalidPrice{TransactionID: transactionID}
		}
		return money.RoundGBP(v), nil
	}
	return money.Zero, ErrMissingFeePrice{TransactionID: transactionID}
}

// TradeDetails is the Trade variant's payload: the sold and bought sides.
type TradeDetails struct {
	Sold, Bought Amount
}

// TransferDetails is the Deposit/Withdrawal variant's payload: the moved
// amount and an optional reciprocal-link transaction id.
type TransferDetails struct {
	Amount   Amount
	LinkedID *string
}

// Transaction is one entry of the input envelope's transactions array.
type Transaction struct {
	ID          string
	Datetime    time.Time
	Account     string
	Description *string
	Price       *Price
	Fee         *Fee
	Tag         Tag
	Kind        Kind

	Trade      *TradeDetails    // set iff Kind == KindTrade
	Deposit    *TransferDetails // set iff Kind == KindDeposit
	Withdrawal *TransferDetails // set iff Kind == KindWithdrawal
}
