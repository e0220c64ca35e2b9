package cmd

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okarpov/pack-forge/internal/service/upgrade"
)

// upgradeFolder overrides the upgrade folder URL from the project file.
var upgradeFolder string

// upgradeCmd replaces the running binary with the latest published release.
var upgradeCmd = &cobra.Command{
	Use:   "upgrade",
	Short: "Upgrade pack-forge to the latest published release",
	Long: `Fetches the release manifest from the configured upgrade folder,
compares the published version with the running one, and replaces the
binary in place after verifying its checksum.`,
	Args: cobra.NoArgs,
	RunE: func(_ *cobra.Command, _ []string) error {
		// Setup graceful shutdown handling.
		ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
		defer stop()

		options := &upgrade.Options{
			ConfigPath: configPath,
			Folder:     upgradeFolder,
		}

		return upgrade.Run(ctx, options)
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	upgradeCmd.Flags().StringVarP(&upgradeFolder, "folder", "f", "",
		"upgrade folder URL, overrides the project file setting")

	rootCmd.AddCommand(upgradeCmd)
}
