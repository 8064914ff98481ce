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

package tax_test

import (
	"errors"
	"testing"

	"github.com/cgttools/taxcalc/internal/assets"
	"github.com/cgttools/taxcalc/internal/tax"
)

func testRegistry(t *testing.T) *assets.Registry {
	t.Helper()
	reg, err := assets.Build([]assets.Declared{
		{Symbol: "BTC", Class: assets.ClassCrypto},
		{Symbol: "ETH", Class: assets.ClassCrypto},
	})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return reg
}

func gbpPrice(t *testing.T, base, rate string) *tax.Price {
	return &tax.Price{Base: base, Rate: mustDecimal(t, rate)}
}

func TestToEventsGbpTrade(t *testing.T) {
	txs := []tax.Transaction{
		{
			ID: "t1", Datetime: day(t, "2024-01-01"), Tag: tax.TagTrade, Kind: tax.KindTrade,
			Trade: &tax.TradeDetails{
				Sold:   tax.Amount{Asset: "GBP", Quantity: mustDecimal(t, "1000")},
				Bought: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "0.02")},
			},
		},
	}
	events, _, err := tax.ToEvents(txs, testRegistry(t), tax.Options{})
	if err != nil {
		t.Fatalf("ToEvents: %v", err)
	}
	if len(events) != 1 || events[0].EventType != tax.EventAcquisition {
		t.Fatalf("events = %+v", events)
	}
	if !events[0].ValueGBP.Equal(mustDecimal(t, "1000")) {
		t.Errorf("value = %s, want 1000", events[0].ValueGBP)
	}
}

func TestToEventsGbpTradeRejectsPrice(t *testing.T) {
	txs := []tax.Transaction{
		{
			ID: "t1", Datetime: day(t, "2024-01-01"), Tag: tax.TagTrade, Kind: tax.KindTrade,
			Trade: &tax.TradeDetails{
				Sold:   tax.Amount{Asset: "GBP", Quantity: mustDecimal(t, "1000")},
				Bought: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "0.02")},
			},
			Price: gbpPrice(t, "BTC", "50000"),
		},
	}
	_, _, err := tax.ToEvents(txs, testRegistry(t), tax.Options{})
	var want tax.ErrGbpTradePriceNotAllowed
	if !errors.As(err, &want) {
		t.Fatalf("err = %v, want ErrGbpTradePriceNotAllowed", err)
	}
}

func TestToEventsNonGbpTradeRequiresPrice(t *testing.T) {
	txs := []tax.Transaction{
		{
			ID: "t1", Datetime: day(t, "2024-01-01"), Tag: tax.TagTrade, Kind: tax.KindTrade,
			Trade: &tax.TradeDetails{
				Sold:   tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "0.01")},
				Bought: tax.Amount{Asset: "ETH", Quantity: mustDecimal(t, "0.5")},
			},
		},
	}
	_, _, err := tax.ToEvents(txs, testRegistry(t), tax.Options{})
	var want tax.ErrMissingTradePrice
	if !errors.As(err, &want) {
		t.Fatalf("err = %v, want ErrMissingTradePrice", err)
	}
}

func TestToEventsStakingRewardOnGbp(t *testing.T) {
	txs := []tax.Transaction{
		{
			ID: "t1", Datetime: day(t, "2024-01-01"), Tag: tax.TagStakingReward, Kind: tax.KindDeposit,
			Deposit: &tax.TransferDetails{Amount: tax.Amount{Asset: "GBP", Quantity: mustDecimal(t, "50")}},
		},
	}
	events, _, err := tax.ToEvents(txs, testRegistry(t), tax.Options{})
	if err != nil {
		t.Fatalf("ToEvents: %v", err)
	}
	if len(events) != 1 || !events[0].ValueGBP.Equal(mustDecimal(t, "50")) {
		t.Fatalf("events = %+v", events)
	}
}

func TestToEventsAirdropZeroCost(t *testing.T) {
	txs := []tax.Transaction{
		{
			ID: "t1", Datetime: day(t, "2024-01-01"), Tag: tax.TagAirdrop, Kind: tax.KindDeposit,
			Deposit: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}},
		},
	}
	events, _, err := tax.ToEvents(txs, testRegistry(t), tax.Options{})
	if err != nil {
		t.Fatalf("ToEvents: %v", err)
	}
	if len(events) != 1 || !events[0].ValueGBP.IsZero() {
		t.Fatalf("events = %+v", events)
	}
}

func TestToEventsUnlinkedUnclassifiedWarnsWhenExcluded(t *testing.T) {
	txs := []tax.Transaction{
		{
			ID: "t1", Datetime: day(t, "2024-01-01"), Tag: tax.TagUnclassified, Kind: tax.KindDeposit,
			Deposit: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}},
		},
	}
	events, warnings, err := tax.ToEvents(txs, testRegistry(t), tax.Options{ExcludeUnlinked: true})
	if err != nil {
		t.Fatalf("ToEvents: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %+v, want none", events)
	}
	if len(warnings) != 1 || warnings[0].Kind != tax.WarnUnclassifiedEvent {
		t.Fatalf("warnings = %+v", warnings)
	}
}

func TestToEventsUnlinkedUnclassifiedZeroValueByDefault(t *testing.T) {
	txs := []tax.Transaction{
		{
			ID: "t1", Datetime: day(t, "2024-01-01"), Tag: tax.TagUnclassified, Kind: tax.KindWithdrawal,
			Withdrawal: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}},
		},
	}
	events, warnings, err := tax.ToEvents(txs, testRegistry(t), tax.Options{})
	if err != nil {
		t.Fatalf("ToEvents: %v", err)
	}
	if len(events) != 1 || events[0].EventType != tax.EventDisposal || !events[0].ValueGBP.IsZero() {
		t.Fatalf("events = %+v", events)
	}
	if len(warnings) != 1 || warnings[0].Kind != tax.WarnUnclassifiedEvent {
		t.Fatalf("warnings = %+v", warnings)
	}
}

func TestToEventsLinkedUnclassifiedTransferEmitsNothing(t *testing.T) {
	wID := "w1"
	dID := "d1"
	txs := []tax.Transaction{
		{
			ID: dID, Datetime: day(t, "2024-01-01"), Tag: tax.TagUnclassified, Kind: tax.KindDeposit,
			Deposit: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}, LinkedID: &wID},
		},
		{
			ID: wID, Datetime: day(t, "2024-01-01"), Tag: tax.TagUnclassified, Kind: tax.KindWithdrawal,
			Withdrawal: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}, LinkedID: &dID},
		},
	}
	events, _, err := tax.ToEvents(txs, testRegistry(t), tax.Options{})
	if err != nil {
		t.Fatalf("ToEvents: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("events = %+v, want none", events)
	}
}

func TestValidateLinksRejectsDuplicateID(t *testing.T) {
	txs := []tax.Transaction{
		{ID: "dup", Datetime: day(t, "2024-01-01"), Tag: tax.TagGift, Kind: tax.KindWithdrawal,
			Withdrawal: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}},
			Price:      gbpPrice(t, "BTC", "50000")},
		{ID: "dup", Datetime: day(t, "2024-01-02"), Tag: tax.TagGift, Kind: tax.KindWithdrawal,
			Withdrawal: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}},
			Price:      gbpPrice(t, "BTC", "50000")},
	}
	err := tax.ValidateLinks(txs)
	var want tax.ErrDuplicateTransactionID
	if !errors.As(err, &want) {
		t.Fatalf("err = %v, want ErrDuplicateTransactionID", err)
	}
}

func TestValidateLinksRejectsNonReciprocal(t *testing.T) {
	wID := "w1"
	txs := []tax.Transaction{
		{ID: "d1", Datetime: day(t, "2024-01-01"), Tag: tax.TagUnclassified, Kind: tax.KindDeposit,
			Deposit: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}, LinkedID: &wID}},
		{ID: wID, Datetime: day(t, "2024-01-01"), Tag: tax.TagUnclassified, Kind: tax.KindWithdrawal,
			Withdrawal: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}}},
	}
	err := tax.ValidateLinks(txs)
	var want tax.ErrLinkedTransactionNotReciprocal
	if !errors.As(err, &want) {
		t.Fatalf("err = %v, want ErrLinkedTransactionNotReciprocal", err)
	}
}

func TestValidateLinksRejectsTaggedLink(t *testing.T) {
	wID := "w1"
	txs := []tax.Transaction{
		{ID: "d1", Datetime: day(t, "2024-01-01"), Tag: tax.TagGift, Kind: tax.KindDeposit,
			Deposit: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}, LinkedID: &wID}},
	}
	err := tax.ValidateLinks(txs)
	var want tax.ErrTaggedDepositLinked
	if !errors.As(err, &want) {
		t.Fatalf("err = %v, want ErrTaggedDepositLinked", err)
	}
}

func TestValidateAssetsRejectsUndeclaredSymbol(t *testing.T) {
	txs := []tax.Transaction{
		{ID: "t1", Datetime: day(t, "2024-01-01"), Tag: tax.TagGift, Kind: tax.KindWithdrawal,
			Withdrawal: &tax.TransferDetails{Amount: tax.Amount{Asset: "DOGE", Quantity: mustDecimal(t, "1")}},
			Price:      gbpPrice(t, "DOGE", "1")},
	}
	_, _, err := tax.ToEvents(txs, testRegistry(t), tax.Options{})
	var want assets.ErrUndefinedAsset
	if !errors.As(err, &want) {
		t.Fatalf("err = %v, want ErrUndefinedAsset", err)
	}
}

func TestToEventsGiftWithdrawalEmitsDisposal(t *testing.T) {
	txs := []tax.Transaction{
		{ID: "t1", Datetime: day(t, "2024-01-01"), Tag: tax.TagGift, Kind: tax.KindWithdrawal,
			Withdrawal: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}},
			Price:      gbpPrice(t, "BTC", "50000")},
	}
	events, _, err := tax.ToEvents(txs, testRegistry(t), tax.Options{})
	if err != nil {
		t.Fatalf("ToEvents: %v", err)
	}
	if len(events) != 1 || events[0].EventType != tax.EventDisposal || events[0].Tag != tax.TagGift {
		t.Fatalf("events = %+v", events)
	}
}

func TestToEventsInvalidTagForWithdrawal(t *testing.T) {
	txs := []tax.Transaction{
		{ID: "t1", Datetime: day(t, "2024-01-01"), Tag: tax.TagStakingReward, Kind: tax.KindWithdrawal,
			Withdrawal: &tax.TransferDetails{Amount: tax.Amount{Asset: "BTC", Quantity: mustDecimal(t, "1")}}},
	}
	_, _, err := tax.ToEvents(txs, testRegistry(t), tax.Options{})
	var want tax.ErrInvalidTagForType
	if !errors.As(err, &want) {
		t.Fatalf("err = %v, want ErrInvalidTagForType", err)
	}
}

func TestToEventsSortsByDatetimeAndAssignsIDs(t *testing.T) {
	txs := []tax.Transaction{
		{ID: "later", Datetime: day(t, "2024-02-01"), Tag: tax.TagStakingReward, Kind: tax.KindDeposit,
			Deposit: &tax.TransferDetails{Amount: tax.Amount{Asset: "GBP", Quantity: mustDecimal(t, "10")}}},
		{ID: "earlier", Datetime: day(t, "2024-01-01"), Tag: tax.TagStakingReward, Kind: tax.KindDeposit,
			Deposit: &tax.TransferDetails{Amount: tax.Amount{Asset: "GBP", Quantity: mustDecimal(t, "5")}}},
	}
	events, _, err := tax.ToEvents(txs, testRegistry(t), tax.Options{})
	if err != nil {
		t.Fatalf("ToEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].SourceTransactionID != "earlier" || events[0].ID != 1 {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].SourceTransactionID != "later" || events[1].ID != 2 {
		t.Errorf("second event = %+v", events[1])
	}
}
