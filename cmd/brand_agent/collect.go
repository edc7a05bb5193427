package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/brand-intel/internal/observability"
	"github.com/jonathan/brand-intel/internal/types"
)

var (
	collectBrand      string
	collectCompetitor string
	collectArea       string
	collectSources    []string
	collectConfig     string
)

var collectCmd = &cobra.Command{
	Use:   "collect",
	Short: "Run one collection job to completion",
	Long:  `Start a single collection job for a brand and competitor, wait for it to finish, and print the collected data.`,
	RunE:  runCollect,
}

func init() {
	collectCmd.Flags().StringVar(&collectBrand, "brand", "", "Brand identifier (required)")
	collectCmd.Flags().StringVar(&collectCompetitor, "competitor", "", "Competitor identifier (required)")
	collectCmd.Flags().StringVar(&collectArea, "area", "", "Market area identifier (required)")
	collectCmd.Flags().StringSliceVar(&collectSources, "sources", nil, "Data sources to collect (default all)")
	collectCmd.Flags().StringVar(&collectConfig, "config", "", "Path to JSON config file")
	_ = collectCmd.MarkFlagRequired("brand")
	_ = collectCmd.MarkFlagRequired("competitor")
	_ = collectCmd.MarkFlagRequired("area")
	rootCmd.AddCommand(collectCmd)
}

func runCollect(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig(collectConfig)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	// One-shot runs keep everything local.
	cfg.DatabaseURL = ""

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	m, _, cleanup, err := buildManager(ctx, cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	sources := make([]types.DataSource, 0, len(collectSources))
	for _, s := range collectSources {
		sources = append(sources, types.DataSource(s))
	}

	job, err := m.Start(ctx, &types.CollectionRequest{
		BrandID:      collectBrand,
		CompetitorID: collectCompetitor,
		AreaID:       collectArea,
		Sources:      sources,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Job %s started, waiting...\n", job.ID)
	m.Wait(job.ID)

	final, err := m.Status(ctx, job.ID)
	if err != nil {
		return err
	}

	printer := observability.NewPrinter(os.Stdout)
	printer.PrintJob(final)
	if final.Data != nil {
		printer.PrintBrandData(&final.Data.Brand)
		printer.PrintBrandData(&final.Data.Competitor)
	}
	if final.Status != types.StatusCompleted {
		return fmt.Errorf("job ended %s: %s", final.Status, final.ErrorMessage)
	}
	if final.CompletedAt != nil {
		fmt.Printf("Completed in %s\n", final.CompletedAt.Sub(final.CreatedAt).Round(time.Millisecond))
	}
	return nil
}
