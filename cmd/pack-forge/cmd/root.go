package cmd

import (
	"context"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/okarpov/pack-forge/internal/config"
	"github.com/okarpov/pack-forge/internal/domain/pack"
	"github.com/okarpov/pack-forge/internal/logger"
	"github.com/okarpov/pack-forge/internal/service/builder"
	"github.com/okarpov/pack-forge/internal/version"
)

var (
	// configPath to the project YAML file.
	configPath string
	// logLevel controls logging verbosity for the whole invocation.
	logLevel string
	// outputPath overrides the artifact destination.
	outputPath string
	// arch overrides the configured target architecture.
	arch string
	// runtimeName is bound to ${BUILD_TARGET} in templates.
	runtimeName string
	// globalRoot overrides the temp namespace for staging trees.
	globalRoot string
	// buildID distinguishes concurrent invocations sharing one global root.
	buildID string
	// noVersionName drops the version segment from artifact names.
	noVersionName bool

	// rootCmd represents the base command for building one package kind.
	rootCmd = &cobra.Command{
		Use:   "pack-forge [kind]",
		Short: "Build an installer package from a published application tree",
		Long: `Stages a published application tree into a format-specific layout,
expands desktop entry, metainfo and manifest templates, resolves icons,
and drives the external packaging tool to produce the final artifact.

Supported kinds: ` + strings.Join(pack.KindNames(), ", ") + `.`,
		Args:      cobra.ExactArgs(1),
		ValidArgs: pack.KindNames(),
		PersistentPreRun: func(_ *cobra.Command, _ []string) {
			if level, ok := logger.ParseLogLevel(logLevel); ok {
				logger.SetLevel(level)
			}
		},
		RunE: func(_ *cobra.Command, args []string) error {
			// Setup graceful shutdown handling.
			ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM, syscall.SIGINT)
			defer stop()

			options := &builder.Options{
				ConfigPath:    configPath,
				Kind:          args[0],
				Arch:          arch,
				Runtime:       runtimeName,
				Output:        outputPath,
				NoVersionName: noVersionName,
				GlobalRoot:    globalRoot,
				BuildID:       buildID,
			}

			return builder.Run(ctx, options)
		},
	}
)

// Execute runs the pack-forge CLI and exits with non-zero status on error.
func Execute() {
	version.AttachCobraVersionCommand(rootCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

//nolint:gochecknoinits // Required by Cobra CLI framework architecture.
func init() {
	// Setup command flags with consistent naming and descriptions.
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c",
		config.DefaultConfigFilename, "path to project file")
	rootCmd.PersistentFlags().StringVarP(&logLevel, "log-level", "l",
		"info", "log level (debug, info, warn, error)")

	rootCmd.Flags().StringVarP(&outputPath, "output", "o", "",
		"artifact path; absolute is used verbatim, relative resolves against the output directory")
	rootCmd.Flags().StringVar(&arch, "arch", "",
		"target architecture in packaging notation (x86_64, aarch64, ...)")
	rootCmd.Flags().StringVarP(&runtimeName, "runtime", "r", "",
		"runtime identifier for templates, defaults to <os>-<arch>")
	rootCmd.Flags().StringVar(&globalRoot, "global-root", "",
		"directory for staging trees, defaults to the system temp directory")
	rootCmd.Flags().StringVar(&buildID, "build-id", "",
		"build identifier separating concurrent staging trees")
	rootCmd.Flags().BoolVar(&noVersionName, "no-version-name", false,
		"name the artifact without the version-release segment")
}
