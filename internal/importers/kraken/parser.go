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

// Package kraken turns a Kraken "Ledgers" CSV export into the exchange
// -independent internal.tax.Transaction model. Row classification follows
// the ledger's documented "type" field plus the REF-A/REF-B linked-row
// convention Kraken uses to split one economic event across two rows.
package kraken

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/cgttools/taxcalc/internal/money"
	"github.com/cgttools/taxcalc/internal/tax"
)

var expectedHeader = []string{
	"txid", "refid", "time", "type", "subtype", "aclass", "asset", "amount", "fee", "balance",
}

// Importer parses Kraken ledger exports.
type Importer struct{}

// Name identifies this importer in the registry.
func (Importer) Name() string { return "kraken" }

// Import reads a Kraken ledger CSV and returns its economic events as
// transactions. "spend"/"receive" row pairs (sharing a refid) become a
// single Trade; "staking" rows become a StakingReward deposit; plain
// token "deposit"/"withdrawal" rows become Deposit/Withdrawal transfers.
// Fiat deposits, staking-pool transfer bookkeeping rows ("transfer") and
// the duplicate first half of a two-row token deposit produce no
// transaction, matching what the ledger actually represents.
func (Importer) Import(r io.Reader, account string) ([]tax.Transaction, error) {
	reader := csv.NewReader(r)
	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("kraken: reading csv: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("kraken: empty export")
	}
	if !headerMatches(rows[0], expectedHeader) {
		return nil, fmt.Errorf("kraken: unrecognised header %v", rows[0])
	}

	pendingSpends := make(map[string]ledgerRow)
	pendingTokenDeposits := make(map[string]ledgerRow)

	var out []tax.Transaction
	for i, raw := range rows[1:] {
		if len(raw) < 10 {
			return nil, fmt.Errorf("kraken: row %d has %d fields, want 10", i+2, len(raw))
		}
		entry := ledgerRow{
			row: i + 2, txid: raw[0], refid: raw[1], time: raw[2], kind: raw[3],
			subtype: raw[4], aclass: raw[5], asset: raw[6], amount: raw[7], fee: raw[8], balance: raw[9],
		}

		switch entry.kind {
		case "deposit":
			if isFiat(entry.asset) || isStakedAsset(entry.asset) {
				continue
			}
			if entry.txid == "" {
				pendingTokenDeposits[entry.refid] = entry
				continue
			}
			if _, found := pendingTokenDeposits[entry.refid]; !found {
				return nil, fmt.Errorf("kraken: row %d deposit has no preparatory row for refid %s", entry.row, entry.refid)
			}
			delete(pendingTokenDeposits, entry.refid)
			txn, err := depositTransaction(entry, account)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		case "withdrawal":
			txn, err := withdrawalTransaction(entry, account)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		case "spend":
			pendingSpends[entry.refid] = entry
		case "receive":
			spend, found := pendingSpends[entry.refid]
			if !found {
				return nil, fmt.Errorf("kraken: row %d receive has no matching spend for refid %s", entry.row, entry.refid)
			}
			delete(pendingSpends, entry.refid)
			txn, err := tradeTransaction(spend, entry, account)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		case "staking":
			txn, err := stakingTransaction(entry, account)
			if err != nil {
				return nil, err
			}
			out = append(out, txn)
		case "transfer":
			// Bookkeeping only: moves a balance into/out of the staking
			// pool. The "withdrawal" and "staking"/"deposit" rows either
			// side of it already produce the transactions that matter.
			continue
		default:
			return nil, fmt.Errorf("kraken: row %d has unhandled ledger type %q", entry.row, entry.kind)
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

func depositTransaction(entry ledgerRow, account string) (tax.Transaction, error) {
	dt, err := tax.ParseDatetime(entry.time)
	if err != nil {
		return tax.Transaction{}, err
	}
	qty, err := money.NewFromString(entry.amount)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("kraken: row %d amount: %w", entry.row, err)
	}
	asset := translateAsset(entry.asset)
	return tax.Transaction{
		ID:       fmt.Sprintf("kraken-%s-%d", entry.refid, entry.row),
		Datetime: dt,
		Account:  account,
		Tag:      tax.TagUnclassified,
		Kind:     tax.KindDeposit,
		Deposit: &tax.TransferDetails{
			Amount: tax.Amount{Asset: asset, Quantity: qty},
		},
	}, nil
}

func withdrawalTransaction(entry ledgerRow, account string) (tax.Transaction, error) {
	dt, err := tax.ParseDatetime(entry.time)
	if err != nil {
		return tax.Transaction{}, err
	}
	qty, err := money.NewFromString(entry.amount)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("kraken: row %d amount: %w", entry.row, err)
	}
	asset := translateAsset(entry.asset)
	return tax.Transaction{
		ID:       fmt.Sprintf("kraken-%s-%d", entry.refid, entry.row),
		Datetime: dt,
		Account:  account,
		Tag:      tax.TagUnclassified,
		Kind:     tax.KindWithdrawal,
		Withdrawal: &tax.TransferDetails{
			Amount: tax.Amount{Asset: asset, Quantity: qty.Abs()},
		},
	}, nil
}

// tradeTransaction combines a "spend" row (fiat paid, plus fee) and its
// matching "receive" row (token bought) into one Trade transaction.
func tradeTransaction(spend, receive ledgerRow, account string) (tax.Transaction, error) {
	dt, err := tax.ParseDatetime(receive.time)
	if err != nil {
		return tax.Transaction{}, err
	}
	soldQty, err := money.NewFromString(spend.amount)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("kraken: row %d spend amount: %w", spend.row, err)
	}
	boughtQty, err := money.NewFromString(receive.amount)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("kraken: row %d receive amount: %w", receive.row, err)
	}

	txn := tax.Transaction{
		ID:       fmt.Sprintf("kraken-%s", receive.refid),
		Datetime: dt,
		Account:  account,
		Tag:      tax.TagTrade,
		Kind:     tax.KindTrade,
		Trade: &tax.TradeDetails{
			Sold:   tax.Amount{Asset: translateAsset(spend.asset), Quantity: soldQty.Abs()},
			Bought: tax.Amount{Asset: translateAsset(receive.asset), Quantity: boughtQty},
		},
	}

	if spend.fee != "" && spend.fee != "0" {
		feeAmt, err := money.NewFromString(spend.fee)
		if err != nil {
			return tax.Transaction{}, fmt.Errorf("kraken: row %d fee: %w", spend.row, err)
		}
		if !feeAmt.IsZero() {
			txn.Fee = &tax.Fee{Asset: translateAsset(spend.asset), Amount: feeAmt}
		}
	}
	return txn, nil
}

func stakingTransaction(entry ledgerRow, account string) (tax.Transaction, error) {
	dt, err := tax.ParseDatetime(entry.time)
	if err != nil {
		return tax.Transaction{}, err
	}
	qty, err := money.NewFromString(entry.amount)
	if err != nil {
		return tax.Transaction{}, fmt.Errorf("kraken: row %d amount: %w", entry.row, err)
	}
	return tax.Transaction{
		ID:       fmt.Sprintf("kraken-%s-%d", entry.refid, entry.row),
		Datetime: dt,
		Account:  account,
		Tag:      tax.TagStakingReward,
		Kind:     tax.KindDeposit,
		Deposit: &tax.TransferDetails{
			Amount: tax.Amount{Asset: unstakedAsset(entry.asset), Quantity: qty},
		},
	}, nil
}
