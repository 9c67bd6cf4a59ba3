package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"northflake/internal/config"
	"northflake/internal/replicate"
	"northflake/internal/source"
	"northflake/internal/ui"
	"northflake/internal/views"
	"northflake/internal/warehouse"
	"northflake/pkg/models"
)

var migrateSkipViews bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Copy the Northwind tables to Snowflake and build the views",
	Long: "Reads all eight Northwind tables from PostgreSQL, recreates them in the\n" +
		"Snowflake target and loads every row, then registers the two reporting\n" +
		"views. Safe to re-run; each run replaces the previous copy.",
	RunE: runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateSkipViews, "skip-views", false, "copy tables only, do not create the reporting views")
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadValidatedConfig()
	if err != nil {
		return err
	}

	ui.ShowHeader("Northwind Migration")

	src, tgt, err := connectBoth(cfg)
	if err != nil {
		return err
	}
	defer src.Close()
	defer tgt.Close()

	ctx := context.Background()
	if err := tgt.EnsureDatabase(ctx); err != nil {
		return err
	}

	ui.PrintSection("Copying tables")
	started := time.Now()
	results, err := replicate.New(src, tgt).Run(ctx)
	if err != nil {
		return err
	}

	var total int64
	for _, result := range results {
		total += result.RowsSent
	}

	if !migrateSkipViews {
		ui.PrintSection("Creating views")
		if err := views.Build(ctx, tgt); err != nil {
			ui.ShowStepResult("reporting views", false, err.Error())
			return err
		}
		ui.ShowStepResult("reporting views", true, "ORDER_DETAILS_VIEW, PRODUCT_VIEW")
	}

	fmt.Println()
	ui.PrintSuccess(fmt.Sprintf("Migrated %d tables, %d rows in %s",
		len(results), total, time.Since(started).Round(time.Millisecond)))
	ui.PrintInfo("Run 'northflake verify' to compare source and target")
	return nil
}

// loadValidatedConfig loads the config file and checks the connection
// settings both the migration and the verifier need.
func loadValidatedConfig() (*models.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("%w (run 'northflake setup' to configure)", err)
	}
	return cfg, nil
}

// connectBoth opens the source and target connections, reporting progress.
func connectBoth(cfg *models.Config) (*source.Service, *warehouse.Service, error) {
	spinner := ui.NewSpinner("Connecting to PostgreSQL...")
	spinner.Start()
	src := source.NewService(cfg.Source)
	if err := src.Connect(); err != nil {
		spinner.Stop(false, "PostgreSQL connection failed")
		return nil, nil, err
	}
	spinner.Stop(true, fmt.Sprintf("Connected to PostgreSQL (%s/%s)", cfg.Source.Host, cfg.Source.Database))

	spinner = ui.NewSpinner("Connecting to Snowflake...")
	spinner.Start()
	tgt := warehouse.NewService(cfg.Target)
	if err := tgt.Connect(); err != nil {
		spinner.Stop(false, "Snowflake connection failed")
		src.Close()
		return nil, nil, err
	}
	spinner.Stop(true, fmt.Sprintf("Connected to Snowflake (%s)", cfg.Target.Account))

	return src, tgt, nil
}
