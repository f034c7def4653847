// Package ratesfile reads seed rate tables from YAML.
package ratesfile

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/iho/fxwallet/internal/domain"
)

//go:embed default_rates.yaml
var defaultRates []byte

// File is the YAML layout of a rate table.
type File struct {
	Rates   map[string]map[string]string `yaml:"rates"`
	Version int                          `yaml:"version"`
}

// Default returns the table shipped with the binary.
func Default() (*domain.RateTable, error) {
	return Parse(defaultRates)
}

// Load reads the table at path, or the default one when path is empty.
func Load(path string) (*domain.RateTable, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rates file: %w", err)
	}

	return Parse(data)
}

// Parse decodes a YAML rate table. Every rate must be a positive number.
func Parse(data []byte) (*domain.RateTable, error) {
	var f File
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parsing rates file: %w", err)
	}

	rates := make(map[string]map[string]decimal.Decimal, len(f.Rates))
	for from, row := range f.Rates {
		out := make(map[string]decimal.Decimal, len(row))
		for to, value := range row {
			rate, err := decimal.NewFromString(value)
			if err != nil || !rate.IsPositive() {
				return nil, fmt.Errorf("%w: %s->%s = %q", domain.ErrInvalidRate, from, to, value)
			}
			out[to] = rate
		}
		rates[from] = out
	}

	return domain.NewRateTable(f.Version, time.Time{}, rates), nil
}
