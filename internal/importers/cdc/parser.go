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

// Package cdc turns a Crypto.com App transaction-history CSV export into
// the exchange-independent internal.tax.Transaction model. Classification
// goes by the "Transaction Description" column rather than the coarser
// "Transaction Kind" column, mirroring the original conversion script.
package cdc

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cgttools/taxcalc/internal/money"
	"github.com/cgttools/taxcalc/internal/tax"
)

var expectedHeader = []string{
	"Timestamp (UTC)", "Transaction Description", "Currency", "Amount",
	"To Currency", "To Amount", "Native Currency", "Native Amount",
	"Native Amount (in USD)", "Transaction Kind",
}

// Importer parses Crypto.com App transaction-history exports.
type Importer struct{}

// Name identifies this importer in the registry.
func (Importer) Name() string { return "cdc" }

// Import reads a Crypto.com App CSV export and returns its economic
// events as transactions. "Sign-up Bonus Unlocked" and "Card Cashback"
// rows become AirdropIncome deposits; "* Stake Rewards" rows become
// StakingReward deposits; a description ending in " Deposit" is a plain
// GBP-funded transfer; rows describing an internal currency conversion
// ("X -> Y") or a stake lock-up produce no transaction on their own, the
// same limitation the original conversion script notes.
func (Importer) Import(r io.Reader, account string) ([]tax.Transaction, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("cdc: reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("cdc: empty export")
	}
	if !headerMatches(rows[0], expectedHeader) {
		return nil, fmt.Errorf("cdc: unrecognised header %v", rows[0])
	}

	var out []tax.Transaction
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) < 10 {
			return nil, fmt.Errorf("cdc: row %d has %d fields, want 10", rowNum, len(row))
		}
		timestamp, description, currency, amount := row[0], row[1], row[2], row[3]
		nativeCurrency, nativeAmount := row[6], row[7]

		switch {
		case description == "Sign-up Bonus Unlocked" || description == "Card Cashback":
			txn, err := incomeTransaction(rowNum, timestamp, currency, amount, nativeCurrency, nativeAmount, tax.TagAirdropIncome, account)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		case strings.HasSuffix(description, " Stake Rewards"):
			txn, err := incomeTransaction(rowNum, timestamp, currency, amount, nativeCurrency, nativeAmount, tax.TagStakingReward, account)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		case strings.HasSuffix(description, " Deposit"):
			txn, err := transferTransaction(rowNum, timestamp, currency, amount, account, true)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		case strings.HasSuffix(description, " Withdrawal"):
			txn, err := transferTransaction(rowNum, timestamp, currency, amount, account, false)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		default:
			// Currency conversions ("X -> Y") and stake lock-ups: no
			// standalone transaction without a paired target-side row.
			continue
		}
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

func incomeTransaction(rowNum int, timestamp, currency, amount, nativeCurrency, nativeAmount string, tag tax.Tag, account string) (tax.Transaction, error) {
	dt, err := tax.ParseDatetime(timestamp)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("cdc: row %d: %w", rowNum, err)
	}
	qty, err := money.NewFromString(amount)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("cdc: row %d amount: %w", rowNum, err)
	}
	txn := tax.Transaction{
		ID:       fmt.Sprintf("cdc-%d", rowNum),
		Datetime: dt,
		Account:  account,
		Tag:      tag,
		Kind:     tax.KindDeposit,
		Deposit: &tax.TransferDetails{
			Amount: tax.Amount{Asset: currency, Quantity: qty},
		},
	}
	if !money.IsGBP(currency) && nativeCurrency == "GBP" && nativeAmount != "" {
		total, err := money.NewFromString(nativeAmount)
		if err != nil {
			return tax.Transaction{}, fmt.Errorf("cdc: row %d native amount: %w", rowNum, err)
		}
		rate := money.SafeDiv(total, qty)
		txn.Price = &tax.Price{Base: currency, Rate: rate}
	}
	return txn, nil
}

func transferTransaction(rowNum int, timestamp, currency, amount, account string, isDeposit bool) (tax.Transaction, error) {
	dt, err := tax.ParseDatetime(timestamp)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("cdc: row %d: %w", rowNum, err)
	}
	qty, err := money.NewFromString(amount)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("cdc: row %d amount: %w", rowNum, err)
	}
	amt := tax.Amount{Asset: currency, Quantity: qty.Abs()}
	txn := tax.Transaction{
		ID:       fmt.Sprintf("cdc-%d", rowNum),
		Datetime: dt,
		Account:  account,
		Tag:      tax.TagUnclassified,
	}
	if isDeposit {
		txn.Kind = tax.KindDeposit
		txn.Deposit = &tax.TransferDetails{Amount: amt}
	} else {
		txn.Kind = tax.KindWithdrawal
		txn.Withdrawal = &tax.TransferDetails{Amount: amt}
	}
	return txn, nil
}
