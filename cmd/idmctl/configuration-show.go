package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"idm-in-go/pkg/config"
)

// configurationShowCmd represents the configuration show command
var configurationShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show IDM configuration attributes and their sources",
	Long: `Show IDM configuration attributes and their sources.

The values displayed by this command reflect the current state of the
configuration sources. For example, the environment variables and config
file. These may not reflect the current values used by the running IDM
server.

Config file location: /etc/idm/config/idm.yml (or IDM_CONFIG_PATH)

Example:
  idmctl configuration show
  idmctl configuration show --format json`,
	Run: func(cmd *cobra.Command, args []string) {
		format, _ := cmd.Flags().GetString("format")

		if err := showConfiguration(format); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to show configuration: %v\n", err)
			os.Exit(1)
		}
	},
}

func init() {
	configurationCmd.AddCommand(configurationShowCmd)
	configurationShowCmd.Flags().StringP("format", "f", "text", "Output format (text or json)")
}

func showConfiguration(format string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	switch format {
	case "json":
		jsonOutput, err := cfg.FormatJSON()
		if err != nil {
			return err
		}
		fmt.Println(jsonOutput)
	case "text":
		fmt.Print(cfg.FormatText())
	default:
		return fmt.Errorf("unknown format %q (expected text or json)", format)
	}
	return nil
}
