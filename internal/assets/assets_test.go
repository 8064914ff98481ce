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

package assets_test

import (
	"errors"
	"testing"

	"github.com/cgttools/taxcalc/internal/assets"
)

func TestNormalize(t *testing.T) {
	tests := map[string]string{
		" btc ": "BTC",
		"Eth":   "ETH",
		"GBP":   "GBP",
	}
	for in, want := range tests {
		if got := assets.Normalize(in); got != want {
			t.Errorf("Normalize(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestBuildRejectsDuplicates(t *testing.T) {
	_, err := assets.Build([]assets.Declared{
		{Symbol: "BTC", Class: assets.ClassCrypto},
		{Symbol: " btc", Class: assets.ClassCrypto},
	})
	var dup assets.ErrDuplicateAsset
	if !errors.As(err, &dup) {
		t.Fatalf("expected ErrDuplicateAsset, got %v", err)
	}
}

func TestBuildIgnoresExplicitGBP(t *testing.T) {
	reg, err := assets.Build([]assets.Declared{{Symbol: "GBP", Class: assets.ClassFiat}})
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	if len(reg.Symbols()) != 0 {
		t.Errorf("expected no declared symbols, got %v", reg.Symbols())
	}
}

func TestClassOfGBPAlwaysFiat(t *testing.T) {
	reg, _ := assets.Build(nil)
	class, ok := reg.ClassOf("gbp")
	if !ok || class != assets.ClassFiat {
		t.Errorf("ClassOf(gbp) = %v, %v, want Fiat, true", class, ok)
	}
}

func TestCheckSymbolUndefined(t *testing.T) {
	reg, _ := assets.Build([]assets.Declared{{Symbol: "BTC", Class: assets.ClassCrypto}})
	if err := reg.CheckSymbol("BTC"); err != nil {
		t.Errorf("CheckSymbol(BTC) = %v, want nil", err)
	}
	err := reg.CheckSymbol("DOGE")
	var undef assets.ErrUndefinedAsset
	if !errors.As(err, &undef) || undef.Symbol != "DOGE" {
		t.Errorf("CheckSymbol(DOGE) = %v, want ErrUndefinedAsset{DOGE}", err)
	}
}

func TestSymbolsSorted(t *testing.T) {
	reg, _ := assets.Build([]assets.Declared{
		{Symbol: "ETH", Class: assets.ClassCrypto},
		{Symbol: "BTC", Class: assets.ClassCrypto},
	})
	got := reg.Symbols()
	if len(got) != 2 || got[0] != "BTC" || got[1] != "ETH" {
		t.Errorf("Symbols() = %v, want sorted [BTC ETH]", got)
	}
}

func TestParseClass(t *testing.T) {
	cases := map[string]assets.Class{
		"crypto": assets.ClassCrypto,
		"Stock":  assets.ClassStock,
		"FIAT":   assets.ClassFiat,
	}
	for in, want := range cases {
		got, err := assets.ParseClass(in)
		if err != nil || got != want {
			t.Errorf("ParseClass(%q) = %v, %v, want %v", in, got, err, want)
		}
	}
	if _, err := assets.ParseClass("bogus"); err == nil {
		t.Error("ParseClass(bogus) = nil error, want error")
	}
}
