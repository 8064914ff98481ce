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

import (
	"fmt"
	"os"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// Config is the process-wide configuration, loaded once via Load. Sections
// mirror a CLI tool's natural seams: logging, the tax-year/rounding rules
// the core's callers need to supply, the storage location for opening
// pools and a price cache, per-exchange importer defaults, and an optional
// debug listener.
type Config struct {
	Logging LoggingConfig `yaml:"logging"`
	Debug   DebugConfig   `yaml:"debug"`
	Tax     TaxConfig     `yaml:"tax"`
	Storage StorageConfig `yaml:"storage"`
	Import  ImportConfig  `yaml:"import"`
}

// LoggingConfig governs the zap logger built by internal/logging.
type LoggingConfig struct {
	Level string `yaml:"level" envconfig:"LOGGING_LEVEL"`
}

// DebugConfig optionally starts a pprof listener for a running process.
type DebugConfig struct {
	ListenAddress string `yaml:"address" envconfig:"DEBUG_ADDRESS"`
	ListenPort    uint   `yaml:"port" envconfig:"DEBUG_PORT"`
}

// TaxConfig carries the caller-supplied tax policy settings. Load accepts
// only the 5 April tax year end (day 5, month 4) and rejects any other
// boundary. ExcludeUnlinked and RoundingMode are loaded but not read by
// cmd/taxcalc, which takes the -exclude-unlinked flag instead.
type TaxConfig struct {
	TaxYearEndDay   uint   `yaml:"taxYearEndDay"   envconfig:"TAX_YEAR_END_DAY"`
	TaxYearEndMonth uint   `yaml:"taxYearEndMonth" envconfig:"TAX_YEAR_END_MONTH"`
	ExcludeUnlinked bool   `yaml:"excludeUnlinked" envconfig:"EXCLUDE_UNLINKED"`
	RoundingMode    string `yaml:"roundingMode"    envconfig:"ROUNDING_MODE"`
}

// StorageConfig points at the Badger database backing opening pools and
// the historical-price cache (internal/storage).
type StorageConfig struct {
	Directory string `yaml:"dir" envconfig:"STORAGE_DIR"`
}

// ImportConfig holds an importer default account. The importers and
// `taxcalc import` do not read it; they attach the -account flag's value.
type ImportConfig struct {
	DefaultAccount string `yaml:"defaultAccount" envconfig:"IMPORT_DEFAULT_ACCOUNT"`
}

var globalConfig = &Config{
	Logging: LoggingConfig{Level: "info"},
	Debug: DebugConfig{
		ListenAddress: "localhost",
		ListenPort:    0,
	},
	Tax: TaxConfig{
		TaxYearEndDay:   5,
		TaxYearEndMonth: 4,
		ExcludeUnlinked: false,
		RoundingMode:    "half-up",
	},
	Storage: StorageConfig{
		Directory: "./.taxcalc",
	},
	Import: ImportConfig{
		DefaultAccount: "default",
	},
}

// Load reads an optional YAML file into the global config and then
// overrides it from environment variables, the same two-step shape the
// teacher uses: file first (if given), then envconfig.Process.
func Load(configFile string) (*Config, error) {
	if configFile != "" {
		buf, err := os.ReadFile(configFile)
		if err != nil {
			return nil, fmt.Errorf("error reading config file: %s", err)
		}
		if err := yaml.Unmarshal(buf, globalConfig); err != nil {
			return nil, fmt.Errorf("error parsing config file: %s", err)
		}
	}
	if err := envconfig.Process("taxcalc", globalConfig); err != nil {
		return nil, fmt.Errorf("error processing environment: %s", err)
	}
	if globalConfig.Tax.TaxYearEndMonth != 4 || globalConfig.Tax.TaxYearEndDay != 5 {
		return nil, fmt.Errorf("unsupported tax year boundary %d/%d: only 5 April is implemented",
			globalConfig.Tax.TaxYearEndDay, globalConfig.Tax.TaxYearEndMonth)
	}
	return globalConfig, nil
}

// GetConfig returns the global config instance.
func GetConfig() *Config {
	return globalConfig
}
