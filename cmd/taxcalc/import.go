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
	"os"
	"strings"

	"github.com/cgttools/taxcalc/internal/envelope"
	"github.com/cgttools/taxcalc/internal/importers"
)

// runImport runs a named exchange importer over a raw export file and
// prints the resulting transaction envelope as JSON, for piping into the
// other subcommands (or redirecting to a file to pass back as their
// `-events` input).
func runImport(args []string) error {
	fs := flag.NewFlagSet("import", flag.ExitOnError)
	exchange := fs.String("exchange", "", fmt.Sprintf("exchange to import from: %s", strings.Join(importers.Names(), ", ")))
	inputPath := fs.String("input", "-", "exchange export file (- for stdin)")
	account := fs.String("account", "", "account label to attach to every imported transaction")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *exchange == "" {
		return fmt.Errorf("-exchange is required (one of: %s)", strings.Join(importers.Names(), ", "))
	}

	imp, err := importers.Get(*exchange)
	if err != nil {
		return err
	}

	f, err := openInput(*inputPath)
	if err != nil {
		return fmt.Errorf("opening %s: %w", *inputPath, err)
	}
	defer f.Close()

	txs, err := imp.Import(f, *account)
	if err != nil {
		return fmt.Errorf("importing from %s: %w", *exchange, err)
	}

	return envelope.Write(os.Stdout, txs)
}
