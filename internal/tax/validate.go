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

import "github.com/cgttools/taxcalc/internal/assets"

// ValidateAssets walks every symbol occurrence in txs (trade sides, transfer
// amounts, fee assets, price bases, fee-price bases) against registry,
// failing on the first unknown non-GBP symbol. It lives here rather than in
// package assets because it needs Transaction's shape, and assets must not
// import tax (tax already imports assets for Class/Registry).
func ValidateAssets(registry *assets.Registry, txs []Transaction) error {
	check := func(sym string) error {
		if sym == "" {
			return nil
		}
		return registry.CheckSymbol(sym)
	}
	for _, tx := range txs {
		switch tx.Kind {
		case KindTrade:
			if err := check(tx.Trade.Sold.Asset); err != nil {
				return err
			}
			if err := check(tx.Trade.Bought.Asset); err != nil {
				return err
			}
		case KindDeposit:
			if err := check(tx.Deposit.Amount.Asset); err != nil {
				return err
			}
		case KindWithdrawal:
			if err := check(tx.Withdrawal.Amount.Asset); err != nil {
				return err
			}
		}
		if tx.Price != nil {
			if err := check(tx.Price.Base); err != nil {
				return err
			}
		}
		if tx.Fee != nil {
			if err := check(tx.Fee.Asset); err != nil {
				return err
			}
			if tx.Fee.Price != nil {
				if err := check(tx.Fee.Price.Base); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// ValidateLinks checks that every transaction id is unique, and that every
// unclassified deposit/withdrawal's link (if set) points at an existing
// transaction of the opposite transfer kind that reciprocates the link.
// Tagged (non-Unclassified) transfers may never set a link at all.
func ValidateLinks(txs []Transaction) error {
	byID := make(map[string]Transaction, len(txs))
	for _, tx := range txs {
		if _, exists := byID[tx.ID]; exists {
			return ErrDuplicateTransactionID{ID: tx.ID}
		}
		byID[tx.ID] = tx
	}

	for _, tx := range txs {
		switch tx.Kind {
		case KindDeposit:
			if tx.Tag != TagUnclassified {
				if tx.Deposit.LinkedID != nil {
					return ErrTaggedDepositLinked{TransactionID: tx.ID}
				}
				continue
			}
			if tx.Deposit.LinkedID == nil {
				continue
			}
			linked, ok := byID[*tx.Deposit.LinkedID]
			if !ok {
				return ErrLinkedTransactionNotFound{From: tx.ID, Linked: *tx.Deposit.LinkedID}
			}
			if linked.Kind != KindWithdrawal {
				return ErrLinkedTransactionTypeMismatch{From: tx.ID, Linked: linked.ID}
			}
			if linked.Withdrawal.LinkedID == nil || *linked.Withdrawal.LinkedID != tx.ID {
				return ErrLinkedTransactionNotReciprocal{From: tx.ID, Linked: linked.ID}
			}
		case KindWithdrawal:
			if tx.Tag != TagUnclassified {
				if tx.Withdrawal.LinkedID != nil {
					return ErrTaggedWithdrawalLinked{TransactionID: tx.ID}
				}
				continue
			}
			if tx.Withdrawal.LinkedID == nil {
				continue
			}
			linked, ok := byID[*tx.Withdrawal.LinkedID]
			if !ok {
				return ErrLinkedTransactionNotFound{From: tx.ID, Linked: *tx.Withdrawal.LinkedID}
			}
			if linked.Kind != KindDeposit {
				return ErrLinkedTransactionTypeMismatch{From: tx.ID, Linked: linked.ID}
			}
			if linked.Deposit.LinkedID == nil || *linked.Deposit.LinkedID != tx.ID {
				return ErrLinkedTransactionNotReciprocal{From: tx.ID, Linked: linked.ID}
			}
		}
	}
	return nil
}
