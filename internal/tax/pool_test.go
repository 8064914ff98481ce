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
	"testing"

	"github.com/cgttools/taxcalc/internal/tax"
)

func TestPoolAddAndPartialRemove(t *testing.T) {
	p := tax.NewPool("BTC")
	p.Add(mustDecimal(t, "100"), mustDecimal(t, "1000"))
	p.Add(mustDecimal(t, "50"), mustDecimal(t, "125000"))

	cost := p.Remove(mustDecimal(t, "50"))
	if !cost.Equal(mustDecimal(t, "42000")) {
		t.Errorf("Remove(50) cost = %s, want 42000", cost)
	}
	if !p.Quantity.Equal(mustDecimal(t, "100")) {
		t.Errorf("residual quantity = %s, want 100", p.Quantity)
	}
	if !p.CostGBP.Equal(mustDecimal(t, "84000")) {
		t.Errorf("residual cost = %s, want 84000", p.CostGBP)
	}
}

func TestPoolRemoveAllClearsPool(t *testing.T) {
	p := tax.NewPool("BTC")
	p.Add(mustDecimal(t, "10"), mustDecimal(t, "1000"))
	cost := p.Remove(mustDecimal(t, "10"))
	if !cost.Equal(mustDecimal(t, "1000")) {
		t.Errorf("cost = %s, want 1000", cost)
	}
	if !p.Quantity.IsZero() || !p.CostGBP.IsZero() {
		t.Errorf("pool not cleared: %+v", p)
	}
}

func TestPoolRemoveMoreThanHeldEmptiesPool(t *testing.T) {
	p := tax.NewPool("BTC")
	p.Add(mustDecimal(t, "1"), mustDecimal(t, "1000"))
	cost := p.Remove(mustDecimal(t, "5"))
	if !cost.Equal(mustDecimal(t, "1000")) {
		t.Errorf("cost = %s, want 1000 (full pool cost)", cost)
	}
	if !p.Quantity.IsZero() || !p.CostGBP.IsZero() {
		t.Errorf("pool not cleared: %+v", p)
	}
}

func TestPoolCostBasis(t *testing.T) {
	p := tax.NewPool("BTC")
	if !p.CostBasis().IsZero() {
		t.Errorf("empty pool cost basis = %s, want 0", p.CostBasis())
	}
	p.Add(mustDecimal(t, "3"), mustDecimal(t, "1"))
	want := mustDecimal(t, "0.33333333")
	if !p.CostBasis().Equal(want) {
		t.Errorf("cost basis = %s, want %s", p.CostBasis(), want)
	}
}
