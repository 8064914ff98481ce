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

// Package uphold turns an Uphold transaction-history CSV export into the
// exchange-independent internal.tax.Transaction model. Each row already
// carries an explicit origin/destination currency pair plus a GBP value
// and commission, the closest analogue in the retrieved pack to this
// model's Trade{sold,bought} shape: "in"/"out" rows (crypto moving
// to/from an external wallet) become Deposit/Withdrawal transfers,
// "deposit"/"withdrawal" rows to the same currency settle against a
// linked bank account and carry no CGT relevance, and any row whose
// origin and destination currencies differ is a Trade, priced from the
// row's own value_in_GBP.
package uphold

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"github.com/cgttools/taxcalc/internal/money"
	"github.com/cgttools/taxcalc/internal/tax"
)

var expectedHeader = []string{
	"date", "id", "type", "value_in_GBP", "commission_in_GBP", "pair", "rate",
	"origin_currency", "origin_amount", "origin_commission",
	"destination_currency", "destination_amount", "destination_commission",
}

// Importer parses Uphold transaction-history exports.
type Importer struct{}

// Name identifies this importer in the registry.
func (Importer) Name() string { return "uphold" }

// Import reads an Uphold transaction-history CSV and returns its
// economic events as transactions.
func (Importer) Import(r io.Reader, account string) ([]tax.Transaction, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("uphold: reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("uphold: empty export")
	}
	if !headerMatches(rows[0], expectedHeader) {
		return nil, fmt.Errorf("uphold: unrecognised header %v", rows[0])
	}

	var out []tax.Transaction
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) < 13 {
			return nil, fmt.Errorf("uphold: row %d has %d fields, want 13", rowNum, len(row))
		}
		rec := record{
			date: row[0], id: row[1], txType: row[2],
			valueGBP: row[3], pair: row[5],
			originCurrency: row[7], originAmount: row[8],
			destCurrency: row[10], destAmount: row[11],
		}

		txn, skip, err := rec.toTransaction(rowNum, account)
		if err != nil {
			return nil, err
		}
		if skip {
			continue
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

type record struct {
	date, id, txType string
	valueGBP, pair   string
	originCurrency, originAmount string
	destCurrency, destAmount     string
}

// toTransaction converts one Uphold row.
func (rec record) toTransaction(rowNum int, account string) (tax.Transaction, bool, error) {
	dt, err := tax.ParseDatetime(rec.date)
	if err != nil {
		return tax.Transaction{}, false, fmt.Errorf("uphold: row %d: %w", rowNum, err)
	}

	switch rec.txType {
	case "in":
		amt, err := rec.amount(rec.originCurrency, rec.originAmount, rowNum)
		if err != nil {
			return tax.Transaction{}, false, err
		}
		return tax.Transaction{
			ID: fmt.Sprintf("uphold-%s", rec.id), Datetime: dt, Account: account,
			Tag: tax.TagUnclassified, Kind: tax.KindDeposit,
			Deposit: &tax.TransferDetails{Amount: amt},
		}, false, nil
	case "out":
		amt, err := rec.amount(rec.destCurrency, rec.destAmount, rowNum)
		if err != nil {
			return tax.Transaction{}, false, err
		}
		return tax.Transaction{
			ID: fmt.Sprintf("uphold-%s", rec.id), Datetime: dt, Account: account,
			Tag: tax.TagUnclassified, Kind: tax.KindWithdrawal,
			Withdrawal: &tax.TransferDetails{Amount: amt},
		}, false, nil
	case "deposit", "withdrawal":
		if rec.originCurrency == rec.destCurrency {
			// Straight fiat movement to/from the linked bank account.
			return tax.Transaction{}, true, nil
		}
		return rec.tradeTransaction(rowNum, dt, account)
	default:
		return rec.tradeTransaction(rowNum, dt, account)
	}
}

func (rec record) amount(currency, qtyStr string, rowNum int) (tax.Amount, error) {
	qty, err := money.NewFromString(qtyStr)
	if err != nil {
		return tax.Amount{}, fmt.Errorf("uphold: row %d amount: %w", rowNum, err)
	}
	return tax.Amount{Asset: currency, Quantity: qty.Abs()}, nil
}

// tradeTransaction builds a Trade from a row whose origin and destination
// currencies differ. A non-GBP destination (bought) side is priced at
// value_in_GBP divided by the bought quantity; the "pair" column is not
// consulted.
func (rec record) tradeTransaction(rowNum int, dt time.Time, account string) (tax.Transaction, bool, error) {
	if rec.originCurrency == rec.destCurrency {
		return tax.Transaction{}, true, nil
	}
	sold, err := rec.amount(rec.originCurrency, rec.originAmount, rowNum)
	if err != nil {
		return tax.Transaction{}, false, err
	}
	bought, err := rec.amount(rec.destCurrency, rec.destAmount, rowNum)
	if err != nil {
		return tax.Transaction{}, false, err
	}

	txn := tax.Transaction{
		ID: fmt.Sprintf("uphold-%s", rec.id), Datetime: dt, Account: account,
		Tag: tax.TagTrade, Kind: tax.KindTrade,
		Trade: &tax.TradeDetails{Sold: sold, Bought: bought},
	}

	if !money.IsGBP(bought.Asset) && rec.valueGBP != "" {
		valueGBP, err := money.NewFromString(rec.valueGBP)
		if err != nil {
			return tax.Transaction{}, false, fmt.Errorf("uphold: row %d value_in_GBP: %w", rowNum, err)
		}
		rate := money.SafeDiv(valueGBP, bought.Quantity)
		txn.Price = &tax.Price{Base: bought.Asset, Rate: rate}
	}
	return txn, false, nil
}
