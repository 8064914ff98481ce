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

// Package envelope parses the JSON input document every cmd/taxcalc
// subcommand reads: a declared-assets array plus a transaction log. It is a
// caller-side concern the core (internal/tax, internal/assets) knows
// nothing about; envelope only turns wire JSON into the core's types and
// otherwise gets out of the way.
package envelope

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/cgttools/taxcalc/internal/assets"
	"github.com/cgttools/taxcalc/internal/money"
	"github.com/cgttools/taxcalc/internal/tax"
)

// Document is the parsed input envelope: a built asset registry plus the
// transaction log in the core's own Transaction shape.
type Document struct {
	Registry     *assets.Registry
	Transactions []tax.Transaction
}

type wireDocument struct {
	Assets       []wireAsset       `json:"assets"`
	Transactions []wireTransaction `json:"transactions"`
}

type wireAsset struct {
	Symbol string `json:"symbol"`
	Class  string `json:"class"`
}

type wireAmount struct {
	Asset    string `json:"asset"`
	Quantity string `json:"quantity"`
}

type wirePrice struct {
	Base   string  `json:"base"`
	Quote  *string `json:"quote,omitempty"`
	Rate   string  `json:"rate"`
	FXRate *string `json:"fx_rate,omitempty"`
	Source *string `json:"source,omitempty"`
}

type wireFee struct {
	Asset  string     `json:"asset"`
	Amount string     `json:"amount"`
	Price  *wirePrice `json:"price,omitempty"`
}

type wireTradeDetails struct {
	Sold   wireAmount `json:"sold"`
	Bought wireAmount `json:"bought"`
}

type wireTransferDetails struct {
	Amount   wireAmount `json:"amount"`
	LinkedID *string    `json:"linked_id,omitempty"`
}

type wireTransaction struct {
	ID          string               `json:"id"`
	Datetime    string               `json:"datetime"`
	Account     string               `json:"account"`
	Description *string              `json:"description,omitempty"`
	Tag         string               `json:"tag"`
	Kind        string               `json:"kind"`
	Price       *wirePrice           `json:"price,omitempty"`
	Fee         *wireFee             `json:"fee,omitempty"`
	Trade       *wireTradeDetails    `json:"trade,omitempty"`
	Deposit     *wireTransferDetails `json:"deposit,omitempty"`
	Withdrawal  *wireTransferDetails `json:"withdrawal,omitempty"`
}

// Parse reads a full JSON envelope from r, building the declared-asset
// registry and converting every transaction to the core's Transaction type.
// It fails fast on the first malformed row: a bad decimal literal, an
// unrecognised tag/kind, or a kind/payload mismatch (e.g. kind "Trade" with
// no "trade" object). Cross-transaction checks (duplicate ids, unknown
// assets, broken links) are the core's job, run afterward by tax.ToEvents
// via tax.ValidateLinks / tax.ValidateAssets.
func Parse(r io.Reader) (*Document, error) {
	var wire wireDocument
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&wire); err != nil {
		return nil, fmt.Errorf("envelope: decoding json: %w", err)
	}

	declared := make([]assets.Declared, 0, len(wire.Assets))
	for i, a := range wire.Assets {
		class, err := assets.ParseClass(a.Class)
		if err != nil {
			return nil, fmt.Errorf("envelope: asset %d (%s): %w", i, a.Symbol, err)
		}
		declared = append(declared, assets.Declared{Symbol: a.Symbol, Class: class})
	}
	registry, err := assets.Build(declared)
	if err != nil {
		return nil, fmt.Errorf("envelope: %w", err)
	}

	txs := make([]tax.Transaction, 0, len(wire.Transactions))
	for i, wt := range wire.Transactions {
		txn, err := wt.toTransaction()
		if err != nil {
			return nil, fmt.Errorf("envelope: transaction %d (%s): %w", i, wt.ID, err)
		}
		txs = append(txs, txn)
	}

	return &Document{Registry: registry, Transactions: txs}, nil
}

func (wt wireTransaction) toTransaction() (tax.Transaction, error) {
	dt, err := tax.ParseDatetime(wt.Datetime)
	if err != nil {
		return tax.Transaction{}, err
	}
	tag, err := tax.ParseTag(wt.Tag)
	if err != nil {
		return tax.Transaction{}, err
	}

	txn := tax.Transaction{
		ID:          wt.ID,
		Datetime:    dt,
		Account:     wt.Account,
		Description: wt.Description,
		Tag:         tag,
	}

	if wt.Price != nil {
		price, err := wt.Price.toPrice()
		if err != nil {
			return tax.Transaction{}, fmt.Errorf("price: %w", err)
		}
		txn.Price = price
	}
	if wt.Fee != nil {
		fee, err := wt.Fee.toFee()
		if err != nil {
			return tax.Transaction{}, fmt.Errorf("fee: %w", err)
		}
		txn.Fee = fee
	}

	switch wt.Kind {
	case "Trade":
		if wt.Trade == nil {
			return tax.Transaction{}, fmt.Errorf("kind Trade requires a trade object")
		}
		sold, err := wt.Trade.Sold.toAmount()
		if err != nil {
			return tax.Transaction{}, fmt.Errorf("trade.sold: %w", err)
		}
		bought, err := wt.Trade.Bought.toAmount()
		if err != nil {
			return tax.Transaction{}, fmt.Errorf("trade.bought: %w", err)
		}
		if money.IsGBP(sold.Asset) && money.IsGBP(bought.Asset) {
			return tax.Transaction{}, fmt.Errorf("trade has GBP on both sides")
		}
		txn.Kind = tax.KindTrade
		txn.Trade = &tax.TradeDetails{Sold: sold, Bought: bought}
	case "Deposit":
		if wt.Deposit == nil {
			return tax.Transaction{}, fmt.Errorf("kind Deposit requires a deposit object")
		}
		details, err := wt.Deposit.toTransferDetails()
		if err != nil {
			return tax.Transaction{}, fmt.Errorf("deposit: %w", err)
		}
		txn.Kind = tax.KindDeposit
		txn.Deposit = details
	case "Withdrawal":
		if wt.Withdrawal == nil {
			return tax.Transaction{}, fmt.Errorf("kind Withdrawal requires a withdrawal object")
		}
		details, err := wt.Withdrawal.toTransferDetails()
		if err != nil {
			return tax.Transaction{}, fmt.Errorf("withdrawal: %w", err)
		}
		txn.Kind = tax.KindWithdrawal
		txn.Withdrawal = details
	default:
		return tax.Transaction{}, fmt.Errorf("unrecognised kind: %q", wt.Kind)
	}

	return txn, nil
}

func (wa wireAmount) toAmount() (tax.Amount, error) {
	qty, err := money.NewFromString(wa.Quantity)
	if err != nil {
		return tax.Amount{}, fmt.Errorf("quantity %q: %w", wa.Quantity, err)
	}
	return tax.Amount{Asset: wa.Asset, Quantity: qty}, nil
}

func (wp wirePrice) toPrice() (*tax.Price, error) {
	rate, err := money.NewFromString(wp.Rate)
	if err != nil {
		return nil, fmt.Errorf("rate %q: %w", wp.Rate, err)
	}
	price := &tax.Price{Base: wp.Base, Rate: rate, Quote: wp.Quote, Source: wp.Source}
	if wp.FXRate != nil {
		fx, err := money.NewFromString(*wp.FXRate)
		if err != nil {
			return nil, fmt.Errorf("fx_rate %q: %w", *wp.FXRate, err)
		}
		price.FXRate = &fx
	}
	return price, nil
}

func (wf wireFee) toFee() (*tax.Fee, error) {
	amt, err := money.NewFromString(wf.Amount)
	if err != nil {
		return nil, fmt.Errorf("amount %q: %w", wf.Amount, err)
	}
	fee := &tax.Fee{Asset: wf.Asset, Amount: amt}
	if wf.Price != nil {
		price, err := wf.Price.toPrice()
		if err != nil {
			return nil, fmt.Errorf("price: %w", err)
		}
		fee.Price = price
	}
	return fee, nil
}

func (wtd wireTransferDetails) toTransferDetails() (*tax.TransferDetails, error) {
	amt, err := wtd.Amount.toAmount()
	if err != nil {
		return nil, fmt.Errorf("amount: %w", err)
	}
	return &tax.TransferDetails{Amount: amt, LinkedID: wtd.LinkedID}, nil
}

// Write serialises txs back into the wire envelope shape, declaring every
// asset symbol referenced (other than GBP) as ClassCrypto: importers don't
// carry per-asset class information, so a caller piping `import` output
// into another subcommand that needs stock or fiat classes must edit the
// assets array by hand.
func Write(w io.Writer, txs []tax.Transaction) error {
	seen := make(map[string]bool)
	var symbols []string
	note := func(sym string) {
		sym = assets.Normalize(sym)
		if sym == "" || sym == "GBP" || seen[sym] {
			return
		}
		seen[sym] = true
		symbols = append(symbols, sym)
	}

	wire := wireDocument{Transactions: make([]wireTransaction, 0, len(txs))}
	for _, txn := range txs {
		wt, err := fromTransaction(txn, note)
		if err != nil {
			return fmt.Errorf("envelope: transaction %s: %w", txn.ID, err)
		}
		wire.Transactions = append(wire.Transactions, wt)
	}

	sort.Strings(symbols)
	wire.Assets = make([]wireAsset, 0, len(symbols))
	for _, sym := range symbols {
		wire.Assets = append(wire.Assets, wireAsset{Symbol: sym, Class: assets.ClassCrypto.String()})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(wire)
}

func fromTransaction(txn tax.Transaction, note func(string)) (wireTransaction, error) {
	wt := wireTransaction{
		ID:          txn.ID,
		Datetime:    txn.Datetime.Format(time.RFC3339),
		Account:     txn.Account,
		Description: txn.Description,
		Tag:         txn.Tag.String(),
	}
	if txn.Price != nil {
		wt.Price = fromPrice(*txn.Price)
	}
	if txn.Fee != nil {
		wt.Fee = fromFee(*txn.Fee, note)
	}

	switch txn.Kind {
	case tax.KindTrade:
		if txn.Trade == nil {
			return wireTransaction{}, fmt.Errorf("kind Trade missing trade details")
		}
		wt.Kind = "Trade"
		note(txn.Trade.Sold.Asset)
		note(txn.Trade.Bought.Asset)
		wt.Trade = &wireTradeDetails{
			Sold:   fromAmount(txn.Trade.Sold),
			Bought: fromAmount(txn.Trade.Bought),
		}
	case tax.KindDeposit:
		if txn.Deposit == nil {
			return wireTransaction{}, fmt.Errorf("kind Deposit missing deposit details")
		}
		wt.Kind = "Deposit"
		note(txn.Deposit.Amount.Asset)
		wt.Deposit = fromTransferDetails(*txn.Deposit)
	case tax.KindWithdrawal:
		if txn.Withdrawal == nil {
			return wireTransaction{}, fmt.Errorf("kind Withdrawal missing withdrawal details")
		}
		wt.Kind = "Withdrawal"
		note(txn.Withdrawal.Amount.Asset)
		wt.Withdrawal = fromTransferDetails(*txn.Withdrawal)
	default:
		return wireTransaction{}, fmt.Errorf("unrecognised kind: %d", txn.Kind)
	}
	return wt, nil
}

func fromAmount(a tax.Amount) wireAmount {
	return wireAmount{Asset: a.Asset, Quantity: a.Quantity.String()}
}

func fromPrice(p tax.Price) *wirePrice {
	wp := &wirePrice{Base: p.Base, Quote: p.Quote, Rate: p.Rate.String(), Source: p.Source}
	if p.FXRate != nil {
		fx := p.FXRate.String()
		wp.FXRate = &fx
	}
	return wp
}

func fromFee(f tax.Fee, note func(string)) *wireFee {
	note(f.Asset)
	wf := &wireFee{Asset: f.Asset, Amount: f.Amount.String()}
	if f.Price != nil {
		wf.Price = fromPrice(*f.Price)
	}
	return wf
}

func fromTransferDetails(td tax.TransferDetails) *wireTransferDetails {
	return &wireTransferDetails{Amount: fromAmount(td.Amount), LinkedID: td.LinkedID}
}
