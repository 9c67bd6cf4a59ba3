package cmd

import (
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"northflake/internal/ui"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "northflake",
	Short: "Migrate the Northwind database to Snowflake",
	Long: "Northflake - replicates the Northwind PostgreSQL database into a Snowflake\n" +
		"warehouse, builds the reporting views, verifies the copy and serves the\n" +
		"BI dashboard.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		ui.ShowError(err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.northflake/config.yaml)")
}

// initConfig mirrors the config file into viper so flags and NORTHFLAKE_*
// environment variables can override individual settings.
func initConfig() {
	if cfgFile != "" {
		os.Setenv("NORTHFLAKE_CONFIG", cfgFile)
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
		if home, err := os.UserHomeDir(); err == nil {
			viper.AddConfigPath(home + "/.northflake")
		}
		viper.AddConfigPath(".")
	}

	viper.SetEnvPrefix("NORTHFLAKE")
	viper.AutomaticEnv()

	// A missing config file is fine; setup creates it.
	_ = viper.ReadInConfig()
}
