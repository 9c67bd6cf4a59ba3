package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"northflake/internal/dashboard"
	"northflake/internal/ui"
	"northflake/internal/warehouse"
)

var dashboardListen string

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the Northwind BI dashboard",
	Long: "Starts the web dashboard over the migrated Snowflake views. All queries\n" +
		"are read-only aggregates; run 'northflake migrate' first.",
	RunE: runDashboard,
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardListen, "listen", "", "listen address (default from config, then :8080)")
	rootCmd.AddCommand(dashboardCmd)
}

func runDashboard(cmd *cobra.Command, args []string) error {
	cfg, err := loadValidatedConfig()
	if err != nil {
		return err
	}

	addr := dashboardListen
	if addr == "" {
		addr = viper.GetString("dashboard.listen_addr")
	}
	if addr == "" {
		addr = cfg.Dashboard.ListenAddr
	}

	spinner := ui.NewSpinner("Connecting to Snowflake...")
	spinner.Start()
	tgt := warehouse.NewService(cfg.Target)
	if err := tgt.Connect(); err != nil {
		spinner.Stop(false, "Snowflake connection failed")
		return err
	}
	spinner.Stop(true, fmt.Sprintf("Connected to Snowflake (%s)", cfg.Target.Account))
	defer tgt.Close()

	if err := tgt.UseDatabase(context.Background()); err != nil {
		return err
	}

	ui.PrintInfo("Dashboard listening on " + addr)
	return dashboard.NewServer(tgt).Run(addr)
}
