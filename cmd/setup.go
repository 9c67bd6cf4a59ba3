package cmd

import (
	"fmt"
	"os"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"northflake/internal/config"
	"northflake/internal/ui"
	"northflake/pkg/models"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Interactive configuration setup",
	Run:   runSetup,
}

func init() {
	rootCmd.AddCommand(setupCmd)
}

func runSetup(cmd *cobra.Command, args []string) {
	ui.ShowHeader("Northflake Setup")

	if config.Exists() {
		overwrite, err := ui.Confirm("Configuration already exists. Overwrite it?", false)
		if err != nil || !overwrite {
			fmt.Println("Setup cancelled.")
			return
		}
	}

	cfg := &models.Config{}

	ui.PrintSection("Source PostgreSQL")
	sourceQs := []*survey.Question{
		{
			Name:     "host",
			Prompt:   &survey.Input{Message: "Host:", Default: "localhost"},
			Validate: survey.Required,
		},
		{
			Name:   "port",
			Prompt: &survey.Input{Message: "Port:", Default: "5432"},
		},
		{
			Name:     "database",
			Prompt:   &survey.Input{Message: "Database:", Default: "northwind"},
			Validate: survey.Required,
		},
		{
			Name:     "username",
			Prompt:   &survey.Input{Message: "Username:"},
			Validate: survey.Required,
		},
		{
			Name:   "password",
			Prompt: &survey.Password{Message: "Password:"},
		},
		{
			Name:   "sslmode",
			Prompt: &survey.Select{Message: "SSL mode:", Options: []string{"disable", "require", "verify-full"}, Default: "disable"},
		},
	}
	if err := survey.Ask(sourceQs, &cfg.Source); err != nil {
		ui.PrintError(err)
		os.Exit(1)
	}

	ui.PrintSection("Target Snowflake")
	targetQs := []*survey.Question{
		{
			Name:     "account",
			Prompt:   &survey.Input{Message: "Account (e.g. xy12345.us-east-1):"},
			Validate: survey.Required,
		},
		{
			Name:     "username",
			Prompt:   &survey.Input{Message: "Username:"},
			Validate: survey.Required,
		},
		{
			Name: "privatekeypath",
			Prompt: &survey.Input{
				Message: "Private key path (empty for password auth):",
				Help:    "Path to an unencrypted PEM-encoded RSA key registered for key-pair auth",
			},
		},
		{
			Name:   "role",
			Prompt: &survey.Input{Message: "Role:", Default: "SYSADMIN"},
		},
		{
			Name:     "warehouse",
			Prompt:   &survey.Input{Message: "Warehouse:", Default: "COMPUTE_WH"},
			Validate: survey.Required,
		},
		{
			Name:     "database",
			Prompt:   &survey.Input{Message: "Database:", Default: "NORTHWIND"},
			Validate: survey.Required,
		},
		{
			Name:   "schema",
			Prompt: &survey.Input{Message: "Schema:", Default: "PUBLIC"},
		},
	}
	if err := survey.Ask(targetQs, &cfg.Target); err != nil {
		ui.PrintError(err)
		os.Exit(1)
	}

	if cfg.Target.PrivateKeyPath == "" {
		password, err := ui.Password("Snowflake password:", "")
		if err != nil {
			ui.PrintError(err)
			os.Exit(1)
		}
		cfg.Target.Password = password
	}

	ui.PrintSection("Dashboard")
	listen, err := ui.Input("Listen address:", ":8080", "")
	if err != nil {
		ui.PrintError(err)
		os.Exit(1)
	}
	cfg.Dashboard.ListenAddr = listen

	// Offer to keep passwords out of the config file.
	useKeyring := false
	if cfg.Source.Password != "" || cfg.Target.Password != "" {
		useKeyring, _ = ui.Confirm("Store passwords in the OS keychain instead of the config file?", true)
	}
	if useKeyring {
		if cfg.Source.Password != "" {
			if err := config.StorePassword("source:"+cfg.Source.Username, cfg.Source.Password); err != nil {
				ui.PrintWarning(fmt.Sprintf("Could not store source password in keychain: %v", err))
			} else {
				cfg.Source.Password = ""
			}
		}
		if cfg.Target.Password != "" {
			if err := config.StorePassword("target:"+cfg.Target.Username, cfg.Target.Password); err != nil {
				ui.PrintWarning(fmt.Sprintf("Could not store target password in keychain: %v", err))
			} else {
				cfg.Target.Password = ""
			}
		}
	}

	if err := config.Save(cfg); err != nil {
		ui.PrintError(err)
		os.Exit(1)
	}

	fmt.Println()
	ui.PrintSuccess("Configuration saved to " + config.GetConfigFile())
	ui.PrintInfo("Run 'northflake migrate' to copy the data into Snowflake")
}
