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

// Package storage persists each asset's Section 104 pool snapshot across
// runs, and provides a date-keyed cache of historical GBP prices
// (CachePrice/GetCachedPrice). Transaction conversion does not fetch
// prices and does not read this cache.
package storage

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"go.uber.org/zap"

	"github.com/cgttools/taxcalc/internal/config"
	"github.com/cgttools/taxcalc/internal/logging"
	"github.com/cgttools/taxcalc/internal/tax"
)

const (
	poolKeyPrefix  = "pool_"
	priceKeyPrefix = "price_"
)

// Storage wraps a Badger database keyed by opening-pool and price-cache
// entries.
type Storage struct {
	db *badger.DB
}

var globalStorage = &Storage{}

// Load opens the Badger database at the configured directory.
func (s *Storage) Load() error {
	cfg := config.GetConfig()
	badgerOpts := badger.DefaultOptions(cfg.Storage.Directory).
		WithLogger(NewBadgerLogger()).
		// The default INFO logging is a bit verbose
		WithLoggingLevel(badger.WARNING)
	db, err := badger.Open(badgerOpts)
	if err != nil {
		return err
	}
	s.db = db
	return nil
}

// Close releases the underlying Badger database.
func (s *Storage) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func poolKey(asset string) []byte {
	return []byte(poolKeyPrefix + asset)
}

// SavePool persists an asset's Section 104 pool snapshot, to be loaded as
// the opening pool for a subsequent tax year's run.
func (s *Storage) SavePool(snapshot tax.PoolSnapshot) error {
	logger := logging.GetLogger()
	logger.Debugf("saving pool snapshot for %s", snapshot.Asset)
	buf, err := json.Marshal(snapshot)
	if err != nil {
		return fmt.Errorf("failed to marshal pool snapshot: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(poolKey(snapshot.Asset), buf)
	})
}

// GetPool loads a previously saved pool snapshot for an asset. The second
// return value is false when no snapshot has been saved.
func (s *Storage) GetPool(asset string) (tax.PoolSnapshot, bool, error) {
	var snapshot tax.PoolSnapshot
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(poolKey(asset))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &snapshot)
		})
	})
	if err != nil {
		return tax.PoolSnapshot{}, false, err
	}
	return snapshot, found, nil
}

// AllPools returns every saved pool snapshot, for rolling an entire
// portfolio's pools forward into a new tax year.
func (s *Storage) AllPools() ([]tax.PoolSnapshot, error) {
	var out []tax.PoolSnapshot
	prefix := []byte(poolKeyPrefix)
	err := s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var snapshot tax.PoolSnapshot
			err := it.Item().Value(func(v []byte) error {
				return json.Unmarshal(v, &snapshot)
			})
			if err != nil {
				return err
			}
			out = append(out, snapshot)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// cachedPrice is the value stored under a price cache key.
type cachedPrice struct {
	ValueGBP string `json:"value_gbp"`
}

func priceKey(asset string, date time.Time) []byte {
	return []byte(fmt.Sprintf("%s%s_%s", priceKeyPrefix, asset, date.Format("2006-01-02")))
}

// CachePrice records the GBP value looked up for an asset on a given
// date.
func (s *Storage) CachePrice(asset string, date time.Time, valueGBP string) error {
	buf, err := json.Marshal(cachedPrice{ValueGBP: valueGBP})
	if err != nil {
		return fmt.Errorf("failed to marshal cached price: %w", err)
	}
	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Set(priceKey(asset, date), buf)
	})
}

// GetCachedPrice looks up a previously cached GBP value for an asset on
// a date. The second return value is false on a cache miss.
func (s *Storage) GetCachedPrice(asset string, date time.Time) (string, bool, error) {
	var cached cachedPrice
	found := false
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(priceKey(asset, date))
		if err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		found = true
		return item.Value(func(v []byte) error {
			return json.Unmarshal(v, &cached)
		})
	})
	if err != nil {
		return "", false, err
	}
	return cached.ValueGBP, found, nil
}

// GetStorage returns the global storage instance.
func GetStorage() *Storage {
	return globalStorage
}

// BadgerLogger adapts the zap sugared logger to Badger's logger
// interface.
type BadgerLogger struct {
	logger *zap.SugaredLogger
}

// NewBadgerLogger builds a BadgerLogger backed by the global logger.
func NewBadgerLogger() *BadgerLogger {
	return &BadgerLogger{
		logger: logging.GetLogger(),
	}
}

func (b *BadgerLogger) Errorf(msg string, args ...any) {
	b.logger.Errorf(msg, args...)
}

func (b *BadgerLogger) Warningf(msg string, args ...any) {
	b.logger.Warnf(msg, args...)
}

func (b *BadgerLogger) Infof(msg string, args ...any) {
	b.logger.Infof(msg, args...)
}

func (b *BadgerLogger) Debugf(msg string, args ...any) {
	b.logger.Debugf(msg, args...)
}
