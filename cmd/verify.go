package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"northflake/internal/ui"
	"northflake/internal/verify"
)

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Compare the Snowflake copy against the PostgreSQL source",
	Long: "Re-counts every migrated table, checks ORDER_DETAILS_VIEW against the\n" +
		"order_details base table and compares the five aggregate revenue metrics.\n" +
		"Exits non-zero when any check fails.",
	RunE: runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadValidatedConfig()
	if err != nil {
		return err
	}

	ui.ShowHeader("Migration Verification")

	src, tgt, err := connectBoth(cfg)
	if err != nil {
		return err
	}
	defer src.Close()
	defer tgt.Close()

	ctx := context.Background()
	if err := tgt.UseDatabase(ctx); err != nil {
		return err
	}

	report, err := verify.New(src, tgt).Run(ctx)
	if err != nil {
		return err
	}

	fmt.Println()
	report.Render(os.Stdout)
	fmt.Println()

	if failed := report.Failed(); failed > 0 {
		return fmt.Errorf("verification failed: %d of %d checks mismatched", failed, len(report.Checks))
	}
	ui.PrintSuccess(fmt.Sprintf("All %d checks passed", len(report.Checks)))
	return nil
}
