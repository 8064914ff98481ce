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

package kraken

import "strings"

// ledgerRow is one row of a Kraken "Ledgers" CSV export.
type ledgerRow struct {
	row     int
	txid    string
	refid   string
	time    string
	kind    string
	subtype string
	aclass  string
	asset   string
	amount  string
	fee     string
	balance string
}

// currencyTranslation maps Kraken's internal asset codes to the symbols
// actually traded (BTC rather than XXBT, and so on).
var currencyTranslation = map[string]string{
	"XXBT": "BTC",
	"XETH": "ETH",
	"XXDG": "DOGE",
	"ZGBP": "GBP",
	"ZEUR": "EUR",
	"ZUSD": "USD",
}

func translateAsset(asset string) string {
	if replacement, ok := currencyTranslation[asset]; ok {
		return replacement
	}
	return asset
}

func isFiat(asset string) bool {
	switch asset {
	case "ZGBP", "ZEUR", "ZUSD", "EUR.HOLD":
		return true
	default:
		return false
	}
}

func isStakedAsset(asset string) bool {
	return strings.HasSuffix(asset, ".S")
}

func unstakedAsset(asset string) string {
	return strings.TrimSuffix(asset, ".S")
}
