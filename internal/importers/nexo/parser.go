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

// Package nexo turns a nexo.io transaction-history CSV export into the
// exchange-independent internal.tax.Transaction model. Only the row types
// that represent a genuine economic event (interest, cashback, deposits
// and withdrawals) produce a transaction; GBPX conversion bookkeeping rows
// are discarded, the way the original conversion script treats them.
package nexo

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/cgttools/taxcalc/internal/money"
	"github.com/cgttools/taxcalc/internal/tax"
)

var expectedHeader = []string{
	"Transaction", "Type", "Currency", "Amount", "USD Equivalent", "Details", "Outstanding Loan", "Date / Time",
}

// Importer parses nexo.io transaction-history exports.
type Importer struct{}

// Name identifies this importer in the registry.
func (Importer) Name() string { return "nexo" }

// Import reads a nexo.io CSV export and returns its economic events as
// transactions. "Interest" rows (on the NEXONEXO loyalty token) and
// "Exchange Cashback" rows become StakingReward/AirdropIncome deposits
// carrying no Price; "DepositToExchange" and "Withdraw"-prefixed rows become
// Unclassified deposits/withdrawals in the row's currency; everything else
// (internal GBPX conversion bookkeeping) is discarded.
func (Importer) Import(r io.Reader, account string) ([]tax.Transaction, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("nexo: reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("nexo: empty export")
	}
	if !headerMatches(rows[0], expectedHeader) {
		return nil, fmt.Errorf("nexo: unrecognised header %v", rows[0])
	}

	var out []tax.Transaction
	for i, row := range rows[1:] {
		rowNum := i + 2
		if len(row) < 8 {
			return nil, fmt.Errorf("nexo: row %d has %d fields, want 8", rowNum, len(row))
		}
		txnID, kind, currency, amount := row[0], row[1], row[2], row[3]
		usdEquivalent, dateTime := row[4], row[7]

		switch {
		case kind == "Interest":
			txn, err := incomeTransaction(txnID, rowNum, dateTime, currency, amount, usdEquivalent, tax.TagStakingReward, account)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		case kind == "Exchange Cashback":
			txn, err := incomeTransaction(txnID, rowNum, dateTime, currency, amount, usdEquivalent, tax.TagAirdropIncome, account)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		case kind == "DepositToExchange":
			txn, err := transferTransaction(txnID, rowNum, dateTime, currency, amount, account, true)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		case strings.HasPrefix(kind, "Withdraw"):
			txn, err := transferTransaction(txnID, rowNum, dateTime, currency, amount, account, false)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		default:
			// GBPX<->target currency conversion bookkeeping and locking
			// transfers between Savings/Term wallets: no economic event.
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

// incomeTransaction builds a StakingReward/AirdropIncome deposit. The
// export's USD Equivalent column is left unused for pricing: it is a USD
// value, not GBP, and fabricating a GBP figure from it without a sourced
// FX rate would misstate the reward's value. An unpriced non-GBP reward
// surfaces as ErrMissingTaggedPrice rather than being silently mispriced;
// the caller is expected to attach a Price sourced from the price cache
// (internal/storage) before this transaction reaches the core.
func incomeTransaction(txnID string, rowNum int, dateTime, currency, amount, usdEquivalent string, tag tax.Tag, account string) (tax.Transaction, error) {
	dt, err := tax.ParseDatetime(dateTime)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("nexo: row %d: %w", rowNum, err)
	}
	qty, err := money.NewFromString(amount)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("nexo: row %d amount: %w", rowNum, err)
	}
	txn := tax.Transaction{
		ID:       fmt.Sprintf("nexo-%s-%d", txnID, rowNum),
		Datetime: dt,
		Account:  account,
		Tag:      tag,
		Kind:     tax.KindDeposit,
		Deposit: &tax.TransferDetails{
			Amount: tax.Amount{Asset: strings.TrimSuffix(currency, "NEXO"), Quantity: qty},
		},
	}
	return txn, nil
}

func transferTransaction(txnID string, rowNum int, dateTime, currency, amount, account string, isDeposit bool) (tax.Transaction, error) {
	dt, err := tax.ParseDatetime(dateTime)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("nexo: row %d: %w", rowNum, err)
	}
	qty, err := money.NewFromString(amount)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("nexo: row %d amount: %w", rowNum, err)
	}
	amt := tax.Amount{Asset: currency, Quantity: qty.Abs()}
	txn := tax.Transaction{
		ID:       fmt.Sprintf("nexo-%s-%d", txnID, rowNum),
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
