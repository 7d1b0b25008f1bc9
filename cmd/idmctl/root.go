package main

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "idmctl",
	Short: "Manage the IDM authentication server",
	Long:  `idmctl runs and manages the IDM authentication server and its database.`,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func main() {
	Execute()
}
