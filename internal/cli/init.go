package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/phishguard/internal/config"
)

func newInitCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var requireTargets bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Validate the configuration and prepare the output directory",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := loader.Load(overrides)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if requireTargets {
				if err := cfg.ValidateTargets(); err != nil {
					return err
				}
			}

			if err := ensureOutputDir(cfg.OutputDir); err != nil {
				return err
			}

			if _, err := buildChecker(cfg, newLogger(cmd.ErrOrStderr())); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Environment looks good. Policy %s, %d targets configured. Output will be stored in %s\n", cfg.Policy, len(cfg.Targets), cfg.OutputDir)
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().BoolVar(&requireTargets, "require-targets", false, "Fail when no scan targets are configured")

	return cmd
}
