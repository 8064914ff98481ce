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

// rollover-pools reads the Section 104 pool balances a prior `taxcalc
// pools -save-pools` run persisted to storage and writes them out as an
// opening-pools file (the plain JSON `{asset: {quantity, cost_gbp}}`
// mapping `taxcalc`'s other subcommands accept via -opening-pools), so
// the next tax year's run can start from where the last one left off.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cgttools/taxcalc/internal/config"
	"github.com/cgttools/taxcalc/internal/logging"
	"github.com/cgttools/taxcalc/internal/storage"

	_ "go.uber.org/automaxprocs"
)

var cmdlineFlags struct {
	configFile string
	outputPath string
	asOf       string
}

type wireOpeningPool struct {
	Quantity string `json:"quantity"`
	CostGBP  string `json:"cost_gbp"`
}

func main() {
	flag.StringVar(&cmdlineFlags.configFile, "config", "", "path to config file to load")
	flag.StringVar(&cmdlineFlags.outputPath, "output", "-", "opening-pools file to write (- for stdout)")
	flag.StringVar(&cmdlineFlags.asOf, "as-of", "", "advisory as-of date for the emitted file (defaults to today)")
	flag.Parse()

	if _, err := config.Load(cmdlineFlags.configFile); err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}
	logging.Configure()
	logger := logging.GetLogger()

	asOf := cmdlineFlags.asOf
	if asOf == "" {
		asOf = time.Now().UTC().Format("2006-01-02")
	}

	s := storage.GetStorage()
	if err := s.Load(); err != nil {
		fmt.Printf("Failed to open storage: %s\n", err)
		os.Exit(1)
	}
	defer func() {
		if err := s.Close(); err != nil {
			logger.Warnf("closing storage: %s", err)
		}
	}()

	snapshots, err := s.AllPools()
	if err != nil {
		fmt.Printf("Failed to read pool snapshots: %s\n", err)
		os.Exit(1)
	}

	out := make(map[string]wireOpeningPool, len(snapshots))
	for _, snap := range snapshots {
		out[snap.Asset] = wireOpeningPool{
			Quantity: snap.Quantity.String(),
			CostGBP:  snap.CostGBP.String(),
		}
	}

	doc := struct {
		AsOf  string                     `json:"as_of"`
		Pools map[string]wireOpeningPool `json:"pools"`
	}{AsOf: asOf, Pools: out}

	w := os.Stdout
	if cmdlineFlags.outputPath != "-" && cmdlineFlags.outputPath != "" {
		f, err := os.Create(cmdlineFlags.outputPath)
		if err != nil {
			fmt.Printf("Failed to create %s: %s\n", cmdlineFlags.outputPath, err)
			os.Exit(1)
		}
		defer f.Close()
		w = f
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(doc); err != nil {
		fmt.Printf("Failed to write opening pools: %s\n", err)
		os.Exit(1)
	}
	logger.Infof("wrote %d pool balance(s) as of %s", len(snapshots), asOf)
}
