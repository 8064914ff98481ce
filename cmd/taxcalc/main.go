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

package main

import (
	"flag"
	"fmt"
	"net/http"
	"os"

	"github.com/cgttools/taxcalc/internal/config"
	"github.com/cgttools/taxcalc/internal/logging"

	_ "go.uber.org/automaxprocs"
)

const programName = "taxcalc"

var cmdlineFlags struct {
	configFile string
}

var subcommands = map[string]func([]string) error{
	"validate": runValidate,
	"events":   runEvents,
	"pools":    runPools,
	"report":   runReport,
	"summary":  runSummary,
	"import":   runImport,
}

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: %s <command> [flags]\n\n", programName)
	fmt.Fprintln(os.Stderr, "Commands:")
	fmt.Fprintln(os.Stderr, "  validate   check a transaction log for warnings and report issues")
	fmt.Fprintln(os.Stderr, "  events     list the taxable events derived from a transaction log")
	fmt.Fprintln(os.Stderr, "  pools      show Section 104 pool balances, optionally persisting them")
	fmt.Fprintln(os.Stderr, "  report     print the capital gains disposal report")
	fmt.Fprintln(os.Stderr, "  summary    print per-year gain/loss and income totals with tax due")
	fmt.Fprintln(os.Stderr, "  import     run an exchange importer and emit a transaction envelope")
	fmt.Fprintln(os.Stderr, "\nRun `taxcalc <command> -h` for a command's own flags.")
}

func main() {
	flag.StringVar(&cmdlineFlags.configFile, "config", "", "path to config file to load")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		usage()
		os.Exit(2)
	}
	cmd := args[0]
	run, ok := subcommands[cmd]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(2)
	}

	// Load config
	cfg, err := config.Load(cmdlineFlags.configFile)
	if err != nil {
		fmt.Printf("Failed to load config: %s\n", err)
		os.Exit(1)
	}

	// Configure logging
	logging.Configure()
	logger := logging.GetLogger()
	// Sync logger on exit
	defer func() {
		if err := logger.Sync(); err != nil {
			// We don't actually care about the error here, but we have to do something
			// to appease the linter
			return
		}
	}()

	// Start debug listener
	if cfg.Debug.ListenPort > 0 {
		logger.Infof("starting debug listener on %s:%d", cfg.Debug.ListenAddress, cfg.Debug.ListenPort)
		go func() {
			err := http.ListenAndServe(fmt.Sprintf("%s:%d", cfg.Debug.ListenAddress, cfg.Debug.ListenPort), nil)
			if err != nil {
				logger.Fatalf("failed to start debug listener: %s", err)
			}
		}()
	}

	if err := run(args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s %s: %s\n", programName, cmd, err)
		os.Exit(1)
	}
}
