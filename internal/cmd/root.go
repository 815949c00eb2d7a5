// Package cmd implements the CLI entry points.
package cmd

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// BuildVersion is set at link time.
var BuildVersion = "master" //nolint:gochecknoglobals

var configFile string //nolint:gochecknoglobals

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:     "oltreweb",
		Short:   "oltreweb is the content service behind the association site",
		Version: BuildVersion,
	}

	root.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"path to the config file")

	root.AddCommand(serveCmd())
	root.AddCommand(migrateCmd())
	root.AddCommand(seedCmd())

	return root
}

func Execute() {
	if errCmd := rootCmd().Execute(); errCmd != nil {
		slog.Error("Command returned error", slog.String("error", errCmd.Error()))
		os.Exit(1)
	}
}
