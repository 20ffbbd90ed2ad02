package cli

import (
	"github.com/spf13/cobra"

	"github.com/example/phishguard/internal/config"
)

// version is overridden at build time via -ldflags "-X".
var version = "dev"

// Execute builds the root command tree and runs the CLI.
func Execute() error {
	return newRootCmd(&config.Loader{ConfigPath: config.DefaultConfigPath}).Execute()
}

func newRootCmd(loader *config.Loader) *cobra.Command {
	rootOpts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:           "phishguard",
		Short:         "Classify URLs as phishing or safe",
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
	}
	rootCmd.SetVersionTemplate("phishguard version {{.Version}}\n")

	rootCmd.PersistentFlags().StringVar(&rootOpts.ConfigPath, "config", config.DefaultConfigPath, "Path to phishguard.yml (optional)")
	rootCmd.PersistentFlags().StringVar(&rootOpts.EnvFile, "env-file", config.DefaultEnvFile, "Path to a .env file (optional)")
	rootCmd.PersistentPreRun = func(cmd *cobra.Command, args []string) {
		if rootOpts.ConfigPath != "" {
			loader.ConfigPath = rootOpts.ConfigPath
		}
		if rootOpts.EnvFile != "" {
			loader.EnvFile = rootOpts.EnvFile
		}
	}

	rootCmd.AddCommand(
		newCheckCmd(loader),
		newScanCmd(loader),
		newLookupCmd(loader),
		newInitCmd(loader),
		newDoctorCmd(loader),
		newReportCmd(),
	)

	return rootCmd
}

type rootOptions struct {
	ConfigPath string
	EnvFile    string
}
