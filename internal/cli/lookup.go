package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/phishguard/internal/config"
	"github.com/example/phishguard/internal/reputation"
	"github.com/example/phishguard/internal/urlnorm"
)

const lookupCacheTTL = 10 * time.Minute

type lookupFlags struct {
	appKey    string
	endpoint  string
	userAgent string
	timeout   time.Duration
	asJSON    bool
}

func (f lookupFlags) toOverrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{}
	if cmd.Flags().Changed("app-key") {
		ov.PhishTankAppKey = f.appKey
	}
	if cmd.Flags().Changed("endpoint") {
		ov.PhishTankEndpoint = f.endpoint
	}
	if cmd.Flags().Changed("user-agent") {
		ov.PhishTankUserAgent = f.userAgent
	}
	if cmd.Flags().Changed("timeout") {
		timeout := f.timeout
		ov.PhishTankTimeout = &timeout
	}
	return ov
}

func newLookupCmd(loader *config.Loader) *cobra.Command {
	flags := &lookupFlags{}

	cmd := &cobra.Command{
		Use:   "lookup <url> [url...]",
		Short: "Query PhishTank for one or more URLs",
		Long: `lookup asks the PhishTank checkurl API whether a URL is a known phish.
It is independent of check and scan, which never contact a remote service.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loader.Load(flags.toOverrides(cmd))
			if err != nil {
				return err
			}

			if cfg.PhishTank.Timeout < 0 {
				return fmt.Errorf("timeout cannot be negative (got %s)", cfg.PhishTank.Timeout)
			}

			for _, raw := range args {
				if err := urlnorm.Validate(raw, cfg.RequireScheme); err != nil {
					return fmt.Errorf("%q: %w", raw, err)
				}
			}

			logger := newLogger(cmd.ErrOrStderr())
			provider := reputation.NewCached(reputation.NewPhishTank(cfg.ProviderConfig()), lookupCacheTTL, logger)

			out := cmd.OutOrStdout()
			for i, raw := range args {
				resp, err := provider.Lookup(cmd.Context(), raw)
				if err != nil {
					return fmt.Errorf("analysis failed: %w; please try again", err)
				}

				if flags.asJSON {
					if err := writeJSON(out, resp); err != nil {
						return err
					}
					continue
				}
				if i > 0 {
					fmt.Fprintln(out)
				}
				renderOutcome(out, raw, resp.CheckResult())
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&flags.appKey, "app-key", "", "PhishTank application key (or PHISHTANK_APP_KEY)")
	cmd.Flags().StringVar(&flags.endpoint, "endpoint", "", "PhishTank checkurl endpoint (or PHISHTANK_ENDPOINT)")
	cmd.Flags().StringVar(&flags.userAgent, "user-agent", "", "User-Agent sent to PhishTank, conventionally phishtank/<username>")
	cmd.Flags().DurationVar(&flags.timeout, "timeout", 0, "HTTP timeout for the lookup")
	cmd.Flags().BoolVar(&flags.asJSON, "json", false, "Print the raw provider response as JSON")

	return cmd
}
