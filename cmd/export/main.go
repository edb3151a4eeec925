// Command export collects the CSV outputs of the configured strategy into one workbook,
// with a formatted and an unformatted sheet per step.
// Usage: go run ./cmd/export
package main

import (
	"fmt"
	"log"

	"paperlens/internal/config"
	"paperlens/internal/csvexport"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	if !cfg.Pipeline.Strategy.IsValid() {
		return fmt.Errorf("unknown pipeline strategy: %q", cfg.Pipeline.Strategy)
	}

	outputs := cfg.Outputs.ForStrategy(cfg.Pipeline.Strategy)
	if err := csvexport.WriteWorkbook(cfg.Outputs.Workbook, outputs); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	log.Printf("Workbook written to %s (%d steps)", cfg.Outputs.Workbook, len(outputs))
	return nil
}
