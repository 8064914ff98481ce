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
	"sort"

	"github.com/cgttools/taxcalc/internal/assets"
	"github.com/cgttools/taxcalc/internal/money"
)

// Options governs conversion behavior that isn't determined by the
// transaction data itself.
type Options struct {
	// ExcludeUnlinked drops unlinked Unclassified transfers instead of
	// conservatively counting them as a zero-or-priced event.
	ExcludeUnlinked bool
}

// ToEvents converts a validated transaction log into the taxable event
// stream. It is pure and deterministic: given the same transactions,
// registry and options it always returns the same events in the same order.
// Any input error aborts the whole conversion; warnings are collected and
// returned alongside a successful result.
func ToEvents(txs []Transaction, registry *assets.Registry, opts Options) ([]TaxableEvent, []Warning, error) {
	if err := ValidateLinks(txs); err != nil {
		return nil, nil, err
	}
	if err := ValidateAssets(registry, txs); err != nil {
		return nil, nil, err
	}

	var events []TaxableEvent
	var warnings []Warning

	for _, tx := range txs {
		var (
			evs  []TaxableEvent
			warn []Warning
			err  error
		)
		switch tx.Kind {
		case KindTrade:
			evs, err = convertTrade(tx, registry)
		case KindDeposit:
			evs, warn, err = convertDeposit(tx, registry, opts)
		case KindWithdrawal:
			evs, warn, err = convertWithdrawal(tx, registry, opts)
		}
		if err != nil {
			return nil, nil, err
		}
		events = append(events, evs...)
		warnings = append(warnings, warn...)
	}

	sort.SliceStable(events, func(i, j int) bool {
		return events[i].Datetime.Before(events[j].Datetime)
	})
	for i := range events {
		events[i].ID = i + 1
	}

	return events, warnings, nil
}

func classOf(registry *assets.Registry, sym string) assets.Class {
	c, ok := registry.ClassOf(sym)
	if !ok {
		return assets.ClassUnknown
	}
	return c
}

func convertTrade(tx Transaction, registry *assets.Registry) ([]TaxableEvent, error) {
	if tx.Tag != TagUnclassified && tx.Tag != TagTrade {
		return nil, ErrInvalidTagForType{TransactionID: tx.ID, Tag: tx.Tag}
	}
	sold, bought := tx.Trade.Sold, tx.Trade.Bought
	soldIsGBP, boughtIsGBP := money.IsGBP(sold.Asset), money.IsGBP(bought.Asset)

	if soldIsGBP && boughtIsGBP {
		// Both sides GBP is rejected upstream and never modeled here.
		return nil, nil
	}

	var valueGBP money.Decimal
	pricedAsset := bought.Asset

	switch {
	case soldIsGBP || boughtIsGBP:
		if tx.Price != nil {
			return nil, ErrGbpTradePriceNotAllowed{TransactionID: tx.ID}
		}
		if soldIsGBP {
			valueGBP = money.RoundGBP(sold.Quantity)
		} else {
			valueGBP = money.RoundGBP(bought.Quantity)
		}
	default:
		if tx.Price == nil {
			return nil, ErrMissingTradePrice{TransactionID: tx.ID}
		}
		if tx.Price.Base != bought.Asset {
			return nil, ErrPriceBaseMismatch{TransactionID: tx.ID, Expected: bought.Asset, Got: tx.Price.Base}
		}
		v, err := tx.Price.ToGBP(bought.Quantity)
		if err != nil {
			return nil, ErrInvalidPrice{TransactionID: tx.ID}
		}
		valueGBP = money.RoundGBP(v)
	}

	var feeGBP *money.Decimal
	if tx.Fee != nil {
		v, err := tx.Fee.ResolveGBP(tx.ID, pricedAsset, tx.Price)
		if err != nil {
			return nil, err
		}
		feeGBP = &v
	}

	var evs []TaxableEvent
	if !soldIsGBP {
		ev := TaxableEvent{
			SourceTransactionID: tx.ID,
			Datetime:            tx.Datetime,
			EventType:           EventDisposal,
			Tag:                 tx.Tag,
			Asset:               sold.Asset,
			AssetClass:          classOf(registry, sold.Asset),
			Quantity:            sold.Quantity,
			ValueGBP:            valueGBP,
			Description:         tx.Description,
		}
		if feeGBP != nil {
			ev.FeeGBP = feeGBP
			feeGBP = nil // attach to disposal only, never both
		}
		evs = append(evs, ev)
	}
	if !boughtIsGBP {
		ev := TaxableEvent{
			SourceTransactionID: tx.ID,
			Datetime:            tx.Datetime,
			EventType:           EventAcquisition,
			Tag:                 tx.Tag,
			Asset:               bought.Asset,
			AssetClass:          classOf(registry, bought.Asset),
			Quantity:            bought.Quantity,
			ValueGBP:            valueGBP,
			FeeGBP:              feeGBP,
			Description:         tx.Description,
		}
		evs = append(evs, ev)
	}
	return evs, nil
}

func convertDeposit(tx Transaction, registry *assets.Registry, opts Options) ([]TaxableEvent, []Warning, error) {
	d := tx.Deposit
	isGBP := money.IsGBP(d.Amount.Asset)

	if tx.Tag == TagUnclassified {
		if d.LinkedID != nil || isGBP {
			return nil, nil, nil
		}
		return unclassifiedTransfer(tx, registry, opts, d.Amount, EventAcquisition)
	}

	switch tx.Tag {
	case TagAirdrop:
		if tx.Price != nil {
			return nil, nil, ErrAirdropPriceNotAllowed{TransactionID: tx.ID}
		}
		fee, err := feeFor(tx, d.Amount.Asset)
		if err != nil {
			return nil, nil, err
		}
		return []TaxableEvent{acquisitionEvent(tx, registry, d.Amount, money.Zero, fee)}, nil, nil
	case TagGift:
		v, err := priceRequiredValue(tx, d.Amount)
		if err != nil {
			return nil, nil, err
		}
		fee, err := feeFor(tx, d.Amount.Asset)
		if err != nil {
			return nil, nil, err
		}
		return []TaxableEvent{acquisitionEvent(tx, registry, d.Amount, v, fee)}, nil, nil
	case TagStakingReward, TagSalary, TagOtherIncome, TagAirdropIncome, TagDividend, TagInterest:
		v, err := incomeValue(tx, d.Amount, isGBP)
		if err != nil {
			return nil, nil, err
		}
		fee, err := feeFor(tx, d.Amount.Asset)
		if err != nil {
			return nil, nil, err
		}
		return []TaxableEvent{acquisitionEvent(tx, registry, d.Amount, v, fee)}, nil, nil
	default:
		return nil, nil, ErrInvalidTagForType{TransactionID: tx.ID, Tag: tx.Tag}
	}
}

func convertWithdrawal(tx Transaction, registry *assets.Registry, opts Options) ([]TaxableEvent, []Warning, error) {
	w := tx.Withdrawal
	isGBP := money.IsGBP(w.Amount.Asset)

	if tx.Tag == TagUnclassified {
		if w.LinkedID != nil || isGBP {
			return nil, nil, nil
		}
		return unclassifiedTransfer(tx, registry, opts, w.Amount, EventDisposal)
	}

	if tx.Tag != TagGift {
		return nil, nil, ErrInvalidTagForType{TransactionID: tx.ID, Tag: tx.Tag}
	}
	v, err := priceRequiredValue(tx, w.Amount)
	if err != nil {
		return nil, nil, err
	}
	fee, err := feeFor(tx, w.Amount.Asset)
	if err != nil {
		return nil, nil, err
	}
	ev := TaxableEvent{
		SourceTransactionID: tx.ID,
		Datetime:            tx.Datetime,
		EventType:           EventDisposal,
		Tag:                 TagGift,
		Asset:               w.Amount.Asset,
		AssetClass:          classOf(registry, w.Amount.Asset),
		Quantity:            w.Amount.Quantity,
		ValueGBP:            v,
		FeeGBP:              fee,
		Description:         tx.Description,
	}
	return []TaxableEvent{ev}, nil, nil
}

// unclassifiedTransfer handles the shared Unclassified-deposit/withdrawal
// logic once the link/GBP short-circuits have been ruled out by the caller.
func unclassifiedTransfer(tx Transaction, registry *assets.Registry, opts Options, amount Amount, evType EventType) ([]TaxableEvent, []Warning, error) {
	if opts.ExcludeUnlinked {
		return nil, []Warning{{Kind: WarnUnclassifiedEvent, Asset: amount.Asset}}, nil
	}
	var value money.Decimal
	var warnings []Warning
	if tx.Price != nil {
		if tx.Price.Base != amount.Asset {
			return nil, nil, ErrPriceBaseMismatch{TransactionID: tx.ID, Expected: amount.Asset, Got: tx.Price.Base}
		}
		v, err := tx.Price.ToGBP(amount.Quantity)
		if err != nil {
			return nil, nil, ErrInvalidPrice{TransactionID: tx.ID}
		}
		value = money.RoundGBP(v)
	} else {
		value = money.Zero
		warnings = append(warnings, Warning{Kind: WarnUnclassifiedEvent, Asset: amount.Asset})
	}
	// An unlinked unclassified transfer's priced asset only exists if a
	// Price was actually given on the transaction.
	pricedAsset := ""
	if tx.Price != nil {
		pricedAsset = amount.Asset
	}
	fee, err := feeFor(tx, pricedAsset)
	if err != nil {
		return nil, nil, err
	}
	ev := TaxableEvent{
		SourceTransactionID: tx.ID,
		Datetime:            tx.Datetime,
		EventType:           evType,
		Tag:                 TagUnclassified,
		Asset:               amount.Asset,
		AssetClass:          classOf(registry, amount.Asset),
		Quantity:            amount.Quantity,
		ValueGBP:            value,
		FeeGBP:              fee,
		Description:         tx.Description,
	}
	return []TaxableEvent{ev}, warnings, nil
}

// priceRequiredValue resolves a Gift's GBP value: a Price is mandatory and
// its base must match the transacted asset.
func priceRequiredValue(tx Transaction, amount Amount) (money.Decimal, error) {
	if tx.Price == nil {
		return money.Zero, ErrMissingTaggedPrice{TransactionID: tx.ID}
	}
	if tx.Price.Base != amount.Asset {
		return money.Zero, ErrPriceBaseMismatch{TransactionID: tx.ID, Expected: amount.Asset, Got: tx.Price.Base}
	}
	v, err := tx.Price.ToGBP(amount.Quantity)
	if err != nil {
		return money.Zero, ErrInvalidPrice{TransactionID: tx.ID}
	}
	return money.RoundGBP(v), nil
}

// incomeValue resolves a StakingReward/Salary/OtherIncome/AirdropIncome/
// Dividend/Interest deposit's GBP value. On GBP itself no Price is allowed
// and the value is the quantity directly; on any other asset a Price
// matching the asset is required.
func incomeValue(tx Transaction, amount Amount, isGBP bool) (money.Decimal, error) {
	if isGBP {
		if tx.Price != nil {
			return money.Zero, ErrGbpIncomePriceNotAllowed{TransactionID: tx.ID}
		}
		return money.RoundGBP(amount.Quantity), nil
	}
	return priceRequiredValue(tx, amount)
}

func acquisitionEvent(tx Transaction, registry *assets.Registry, amount Amount, value money.Decimal, feeGBP *money.Decimal) TaxableEvent {
	return TaxableEvent{
		SourceTransactionID: tx.ID,
		Datetime:            tx.Datetime,
		EventType:           EventAcquisition,
		Tag:                 tx.Tag,
		Asset:               amount.Asset,
		AssetClass:          classOf(registry, amount.Asset),
		Quantity:            amount.Quantity,
		ValueGBP:            value,
		FeeGBP:              feeGBP,
		Description:         tx.Description,
	}
}

// feeFor resolves tx's fee to GBP against pricedAsset, the tagged
// transfer's transacted asset. A present-but-unresolvable fee is a hard
// error (ErrMissingFeePrice), returned to the caller rather than swallowed.
func feeFor(tx Transaction, pricedAsset string) (*money.Decimal, error) {
	if tx.Fee == nil {
		return nil, nil
	}
	v, err := tx.Fee.ResolveGBP(tx.ID, pricedAsset, tx.Price)
	if err != nil {
		return nil, err
	}
	return &v, nil
}
