package main

import (
	"os"

	"github.com/campusmedia/gallery/cmd/gallery/cmd"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:          "gallery",
		Short:        "Maintenance tools for the campus gallery",
		SilenceUsage: true,
	}

	rootCmd.AddCommand(cmd.MigrateCmd())
	rootCmd.AddCommand(cmd.ImportCmd())
	rootCmd.AddCommand(cmd.QueryCmd())
	rootCmd.AddCommand(cmd.HashPasswordCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
