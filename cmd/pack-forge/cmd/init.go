package cmd

import (
	"github.com/spf13/cobra"

	"github.com/okarpov/pack-forge/internal/config"
)

// initCmd writes a starter project file into the working directory.
var initCmd = &cobra.Command{
	Use:   "init [app-id] [base-name] [version]",
	Short: "Create a starter project file",
	Long: `Writes a pack-forge.yaml project file with the provided application
identity and sensible defaults. Existing files are not overwritten.`,
	Args: cobra.ExactArgs(3),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := &config.Config{
			AppID:             args[0],
			AppBaseName:       args[1],
			AppFriendlyName:   args[1],
			AppVersionRelease: args[2],
			OutputDirectory:   config.DefaultOutputDirectory,
			AppendVersion:     true,
		}

		if err := config.SaveNew(configPath, cfg); err != nil {
			return err
		}

		cmd.Printf("Project file written to %s\n", configPath)

		return nil
	},
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	rootCmd.AddCommand(initCmd)
}
