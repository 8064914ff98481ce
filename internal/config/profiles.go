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

package config

import "sort"

// ImporterProfile is one exchange's named import configuration: the
// timezone its export timestamps are naive in, the quote currency its
// trade rows are priced against when the row itself doesn't carry a GBP
// value, and the account label to attach when the export has none.
type ImporterProfile struct {
	Name          string
	Timezone      string
	QuoteCurrency string
	Account       string
}

// ExchangeProfiles is the registry of known importer configurations,
// keyed by exchange name.
var ExchangeProfiles = map[string]ImporterProfile{
	"kraken": {
		Name:          "kraken",
		Timezone:      "UTC",
		QuoteCurrency: "GBP",
		Account:       "kraken",
	},
	"nexo": {
		Name:          "nexo",
		Timezone:      "UTC",
		QuoteCurrency: "GBP",
		Account:       "nexo",
	},
	"cdc": {
		Name:          "cdc",
		Timezone:      "UTC",
		QuoteCurrency: "USD",
		Account:       "crypto.com",
	},
	"binance": {
		Name:          "binance",
		Timezone:      "UTC",
		QuoteCurrency: "USDT",
		Account:       "binance",
	},
	"uphold": {
		Name:          "uphold",
		Timezone:      "UTC",
		QuoteCurrency: "GBP",
		Account:       "uphold",
	},
}

// GetExchangeProfile looks up a named importer configuration.
func GetExchangeProfile(exchange string) (ImporterProfile, bool) {
	p, ok := ExchangeProfiles[exchange]
	return p, ok
}

// AvailableExchanges lists every configured exchange name, sorted for a
// stable listing.
func AvailableExchanges() []string {
	out := make([]string, 0, len(ExchangeProfiles))
	for name := range ExchangeProfiles {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
