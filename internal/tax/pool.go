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

import "github.com/cgttools/taxcalc/internal/money"

// PoolSnapshot is a point-in-time copy of a Pool's quantity and cost,
// detached from the live pool so it can be embedded in a DisposalRecord
// without aliasing state the matching engine keeps mutating.
type PoolSnapshot struct {
	Asset    string
	Quantity money.Decimal
	CostGBP  money.Decimal
}

// Pool is a Section 104 share pool: one per asset, holding all unmatched
// acquisitions at a weighted-average cost basis. Invariants: Quantity >= 0,
// CostGBP >= 0, and Quantity == 0 iff CostGBP == 0 after a full Remove.
type Pool struct {
	Asset    string
	Quantity money.Decimal
	CostGBP  money.Decimal
}

// NewPool returns an empty pool for asset.
func NewPool(asset string) *Pool {
	return &Pool{Asset: asset, Quantity: money.Zero, CostGBP: money.Zero}
}

// Snapshot copies the pool's current state.
func (p *Pool) Snapshot() PoolSnapshot {
	return PoolSnapshot{Asset: p.Asset, Quantity: p.Quantity, CostGBP: p.CostGBP}
}

// Add folds an acquisition into the pool.
func (p *Pool) Add(quantity, costGBP money.Decimal) {
	p.Quantity = p.Quantity.Add(quantity)
	p.CostGBP = money.RoundGBP(p.CostGBP.Add(costGBP))
}

// Remove takes quantity out of the pool on a disposal and returns the
// allowable cost. Disposing of the whole pool (or more, which is a caller
// error the matching engine turns into a warning) empties it exactly;
// otherwise the cost removed is proportional to the quantity removed,
// rounded half-up to 2dp so drift never accumulates.
func (p *Pool) Remove(quantity money.Decimal) money.Decimal {
	if quantity.GreaterThanOrEqual(p.Quantity) {
		cost := p.CostGBP
		p.Quantity = money.Zero
		p.CostGBP = money.Zero
		return cost
	}
	proportion := money.SafeDiv(quantity, p.Quantity)
	cost := money.RoundGBP(p.CostGBP.Mul(proportion))
	p.Quantity = p.Quantity.Sub(quantity)
	p.CostGBP = p.CostGBP.Sub(cost)
	return cost
}

// CostBasis is the pool's current weighted-average cost per unit, rounded
// to 8dp. Zero when the pool is empty.
func (p *Pool) CostBasis() money.Decimal {
	if p.Quantity.IsZero() {
		return money.Zero
	}
	return money.RoundQuantity(money.SafeDiv(p.CostGBP, p.Quantity))
}

// OpeningPool is one entry of the caller-supplied opening-pool map: a
// balance inherited from a prior period, entered into the pool verbatim
// before the event stream is processed.
type OpeningPool struct {
	Asset    string
	Quantity money.Decimal
	CostGBP  money.Decimal
}
