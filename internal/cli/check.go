package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/example/phishguard/internal/config"
	"github.com/example/phishguard/internal/urlnorm"
)

func newCheckCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "check <url> [url...]",
		Short: "Classify one or more URLs",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader.Load(flags.toOverrides(cmd))
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			for _, raw := range args {
				if err := urlnorm.Validate(raw, cfg.RequireScheme); err != nil {
					return fmt.Errorf("%q: %w", raw, err)
				}
			}

			checker, err := buildChecker(cfg, newLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			for i, raw := range args {
				outcome := checker.Inspect(cmd.Context(), raw)
				if asJSON {
					if err := writeJSON(out, outcome); err != nil {
						return err
					}
					continue
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				renderOutcome(out, outcome.URL, outcome.Result)
			}

			return nil
		},
	}

	bindClassifierFlags(cmd, flags)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print results as JSON")

	return cmd
}
