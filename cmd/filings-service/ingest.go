package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"golang-filing-scryper/internal/filings/dto"
	"golang-filing-scryper/pkg/common"
	"golang-filing-scryper/pkg/logger"

	"github.com/spf13/cobra"
)

var (
	ingestTickers  []string
	ingestLookback int
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Runs one ingestion and exits",
	RunE:  runIngest,
}

func init() {
	ingestCmd.Flags().StringSliceVarP(&ingestTickers, "ticker", "t", nil, "Only ingest these tickers (name or exchange code)")
	ingestCmd.Flags().IntVar(&ingestLookback, "lookback-days", 0, "Override ingestion.lookback_days")
}

func runIngest(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, appLogger, err := loadConfig()
	if err != nil {
		log.Fatal(err)
	}
	defer func() { _ = appLogger.Sync() }()

	c, err := buildComponents(ctx, cfg, appLogger)
	if err != nil {
		return err
	}
	defer c.Close()

	observer := dto.ProgressFunc(func(p dto.Progress) {
		appLogger.Info("Ingestion progress", logger.Field("fraction", p.Fraction), logger.StringField("status", p.Status))
	})

	report, err := c.scheduler.Refresh(ctx, common.TriggerCLI, dto.IngestionRequest{
		LookbackDays: ingestLookback,
		Tickers:      ingestTickers,
	}, observer)
	if report != nil {
		fmt.Fprintln(cmd.OutOrStdout(), report.StatusMessage())
	}
	return err
}
