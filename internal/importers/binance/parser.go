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

// Package binance turns a Binance trade-history CSV export
// ("Date(UTC),Market,Type,Price,Amount,Total,Fee,Fee Coin") into the
// exchange-independent internal.tax.Transaction model. Every row is a
// Trade; the base currency is always the first three characters of the
// Market column (e.g. "BTCUSDT" splits into base "BTC" and quote "USDT"),
// the same assumption the original importer makes.
package binance

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cgttools/taxcalc/internal/money"
	"github.com/cgttools/taxcalc/internal/tax"
)

var expectedHeader = []string{"Date(UTC)", "Market", "Type", "Price", "Amount", "Total", "Fee", "Fee Coin"}

// Importer parses Binance trade-history exports.
type Importer struct{}

// Name identifies this importer in the registry.
func (Importer) Name() string { return "binance" }

// Import reads a Binance trade-history CSV and returns one Trade
// transaction per row.
func (Importer) Import(r io.Reader, account string) ([]tax.Transaction, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("binance: reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("binance: empty export")
	}
	if !headerMatches(rows[0], expectedHeader) {
		return nil, fmt.Errorf("binance: unrecognised header %v", rows[0])
	}

	var out []tax.Transaction
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) < 8 {
			return nil, fmt.Errorf("binance: row %d has %d fields, want 8", rowNum, len(row))
		}
		txn, err := tradeTransaction(rowNum, row, account)
		if err != nil {
			return nil, err
		}
		out = append(out, txn)
	}
	return out, nil
}

func headerMatches(got, want []string) bool {
	if len(got) != len(want) {
		return false
	}
	for i := range got {
		if got[i] != want[i] {
			return false
		}
	}
	return true
}

func tradeTransaction(rowNum int, row []string, account string) (tax.Transaction, error) {
	date, market, orderType, _, amountStr, totalStr, feeStr, feeCoin := row[0], row[1], row[2], row[3], row[4], row[5], row[6], row[7]

	if len(market) < 4 {
		return tax.Transaction{}, fmt.Errorf("binance: row %d market %q too short to split", rowNum, market)
	}
	baseCurrency, quoteCurrency := market[:3], market[3:]

	dt, err := tax.ParseDatetime(date)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("binance: row %d: %w", rowNum, err)
	}
	baseQty, err := money.NewFromString(amountStr)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("binance: row %d amount: %w", rowNum, err)
	}
	quoteQty, err := money.NewFromString(totalStr)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("binance: row %d total: %w", rowNum, err)
	}

	base := tax.Amount{Asset: baseCurrency, Quantity: baseQty}
	quote := tax.Amount{Asset: quoteCurrency, Quantity: quoteQty}

	var sold, bought tax.Amount
	switch orderType {
	case "BUY":
		sold, bought = quote, base
	case "SELL":
		sold, bought = base, quote
	default:
		return tax.Transaction{}, fmt.Errorf("binance: row %d invalid order type %q", rowNum, orderType)
	}

	txn := tax.Transaction{
		ID:       fmt.Sprintf("binance-%d", rowNum),
		Datetime: dt,
		Account:  account,
		Tag:      tax.TagTrade,
		Kind:     tax.KindTrade,
		Trade:    &tax.TradeDetails{Sold: sold, Bought: bought},
	}

	// Price is only directly usable as a GBP rate when the quote currency
	// is itself GBP; a USDT/BTC-denominated quote needs an FX rate this
	// importer has no source for, so the transaction is left unpriced and
	// surfaces as ErrMissingTradePrice rather than silently mis-valued.
	if !money.IsGBP(bought.Asset) && money.IsGBP(quoteCurrency) {
		price, err := money.NewFromString(row[3])
		if err != nil {
			return tax.Transaction{}, fmt.Errorf("binance: row %d price: %w", rowNum, err)
		}
		txn.Price = &tax.Price{Base: bought.Asset, Rate: price}
	}

	if feeStr != "" && feeStr != "0" {
		feeQty, err := money.NewFromString(feeStr)
		if err != nil {
			return tax.Transaction{}, fmt.Errorf("binance: row %d fee: %w", rowNum, err)
		}
		if !feeQty.IsZero() {
			txn.Fee = &tax.Fee{Asset: feeCoin, Amount: feeQty}
		}
	}

	return txn, nil
}
