package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"golang-filing-scryper/internal/entity"
	"golang-filing-scryper/internal/filings/repository"
	"golang-filing-scryper/internal/filings/service"
	"golang-filing-scryper/pkg/utils"

	"github.com/spf13/cobra"
)

var (
	loadStart  string
	loadEnd    string
	loadTicker string
)

var loadCmd = &cobra.Command{
	Use:   "load",
	Short: "Prints stored filings as JSON",
	RunE:  runLoad,
}

func init() {
	loadCmd.Flags().StringVar(&loadStart, "start", "", "First date (YYYY-MM-DD), inclusive")
	loadCmd.Flags().StringVar(&loadEnd, "end", "", "Last date (YYYY-MM-DD), inclusive")
	loadCmd.Flags().StringVar(&loadTicker, "ticker", "", "Only this ticker")
}

func runLoad(cmd *cobra.Command, args []string) error {
	start, err := parseDateFlag(loadStart)
	if err != nil {
		return fmt.Errorf("invalid --start: %w", err)
	}
	end, err := parseDateFlag(loadEnd)
	if err != nil {
		return fmt.Errorf("invalid --end: %w", err)
	}

	cfg, appLogger, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = appLogger.Sync() }()

	ctx := context.Background()
	filings := service.NewFilingService(repository.NewCSVRecordStore(cfg.Storage.DataDir, appLogger), appLogger)

	var records []entity.FilingRecord
	if loadTicker != "" {
		records, err = filings.ByTicker(ctx, loadTicker, start, end)
	} else {
		records, err = filings.Load(ctx, start, end)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(records)
}

func parseDateFlag(raw string) (*time.Time, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := time.Parse(utils.DateLayout, raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
