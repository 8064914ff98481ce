package envelope_test

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cgttools/taxcalc/internal/envelope"
	"github.com/cgttools/taxcalc/internal/tax"
)

const sampleDocument = `{
  "assets": [
    {"symbol": "BTC", "class": "Crypto"}
  ],
  "transactions": [
    {
      "id": "t1",
      "datetime": "2024-06-01T00:00:00Z",
      "account": "exchange",
      "tag": "Trade",
      "kind": "Trade",
      "price": {"base": "BTC", "rate": "30000"},
      "trade": {
        "sold": {"asset": "GBP", "quantity": "30000"},
        "bought": {"asset": "BTC", "quantity": "1"}
      }
    },
    {
      "id": "t2",
      "datetime": "2024-06-02T00:00:00Z",
      "account": "exchange",
      "tag": "StakingReward",
      "kind": "Deposit",
      "price": {"base": "BTC", "rate": "31000"},
      "deposit": {"amount": {"asset": "BTC", "quantity": "0.01"}}
    }
  ]
}`

func TestParseBuildsRegistryAndTransactions(t *testing.T) {
	doc, err := envelope.Parse(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if len(doc.Transactions) != 2 {
		t.Fatalf("len(Transactions) = %d, want 2", len(doc.Transactions))
	}
	if !doc.Registry.Contains("BTC") {
		t.Error("registry does not contain declared asset BTC")
	}
	if doc.Transactions[0].Kind != tax.KindTrade {
		t.Errorf("transactions[0].Kind = %v, want KindTrade", doc.Transactions[0].Kind)
	}
	if doc.Transactions[1].Tag != tax.TagStakingReward {
		t.Errorf("transactions[1].Tag = %v, want TagStakingReward", doc.Transactions[1].Tag)
	}
}

func TestParseRejectsUnknownKind(t *testing.T) {
	bad := `{"assets":[],"transactions":[{"id":"t1","datetime":"2024-01-01T00:00:00Z","account":"a","tag":"Trade","kind":"Swap"}]}`
	if _, err := envelope.Parse(strings.NewReader(bad)); err == nil {
		t.Error("Parse() of unrecognised kind expected error, got nil")
	}
}

func TestParseRejectsBadDecimal(t *testing.T) {
	bad := `{"assets":[],"transactions":[{"id":"t1","datetime":"2024-01-01T00:00:00Z","account":"a","tag":"Trade","kind":"Trade",
		"trade":{"sold":{"asset":"GBP","quantity":"not-a-number"},"bought":{"asset":"BTC","quantity":"1"}}}]}`
	if _, err := envelope.Parse(strings.NewReader(bad)); err == nil {
		t.Error("Parse() of malformed quantity expected error, got nil")
	}
}

func TestWriteRoundTrips(t *testing.T) {
	doc, err := envelope.Parse(strings.NewReader(sampleDocument))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	var buf bytes.Buffer
	if err := envelope.Write(&buf, doc.Transactions); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	again, err := envelope.Parse(&buf)
	if err != nil {
		t.Fatalf("re-Parse() of written envelope error = %v", err)
	}
	if len(again.Transactions) != len(doc.Transactions) {
		t.Fatalf("round-tripped transaction count = %d, want %d", len(again.Transactions), len(doc.Transactions))
	}
	if !again.Registry.Contains("BTC") {
		t.Error("round-tripped registry does not declare BTC")
	}
}
