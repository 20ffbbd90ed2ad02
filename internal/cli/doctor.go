package cli

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"runtime"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/phishguard/internal/classify"
	"github.com/example/phishguard/internal/config"
)

type doctorCheck struct {
	Name   string
	Status string // "✓", "✗" or "⊘"
	Detail string
	Error  error
}

func newDoctorCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}
	var timeout int
	var offline bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Validate configuration, classifier policy, and provider reachability",
		Long: `The doctor subcommand performs validation of the phishguard environment:
- Go runtime version
- Configuration validity and output directory
- Classifier policy construction
- PhishTank endpoint reachability (skipped with --offline)`,
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := loader.Load(overrides)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Duration(timeout)*time.Second)
			defer cancel()

			checks := runDoctorChecks(ctx, &cfg, offline)
			printDoctorReport(cmd, checks)

			for _, check := range checks {
				if check.Error != nil {
					return fmt.Errorf("doctor checks failed")
				}
			}

			fmt.Fprintln(cmd.OutOrStdout(), "\n✓ All checks passed. System is ready.")
			return nil
		},
	}

	bindRuntimeFlags(cmd, flags)
	cmd.Flags().IntVar(&timeout, "timeout", 30, "Timeout in seconds for network checks")
	cmd.Flags().BoolVar(&offline, "offline", false, "Skip the PhishTank reachability check")

	return cmd
}

func runDoctorChecks(ctx context.Context, cfg *config.RuntimeConfig, offline bool) []doctorCheck {
	checks := []doctorCheck{checkGoVersion()}

	configCheck := checkConfiguration(cfg)
	checks = append(checks, configCheck)

	checks = append(checks, checkOutputDirectory(cfg.OutputDir))

	if configCheck.Error == nil {
		checks = append(checks, checkPolicy(cfg))
	}

	checks = append(checks, checkAppKey(cfg.PhishTank.AppKey))

	if offline {
		checks = append(checks, doctorCheck{
			Name:   "PhishTank Endpoint",
			Status: "⊘",
			Detail: "Skipped (offline)",
		})
	} else {
		checks = append(checks, checkProviderReachability(ctx, cfg.PhishTank.Endpoint))
	}

	return checks
}

func checkGoVersion() doctorCheck {
	return doctorCheck{
		Name:   "Go Runtime",
		Status: "✓",
		Detail: fmt.Sprintf("Version %s", runtime.Version()),
	}
}

func checkConfiguration(cfg *config.RuntimeConfig) doctorCheck {
	if err := cfg.Validate(); err != nil {
		return doctorCheck{
			Name:   "Configuration",
			Status: "✗",
			Detail: "Invalid configuration",
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "Configuration",
		Status: "✓",
		Detail: fmt.Sprintf("%d targets, policy=%s, delay=%s", len(cfg.Targets), cfg.Policy, cfg.Delay),
	}
}

// checkPolicy builds the configured policy and classifies the first allow-list entry.
func checkPolicy(cfg *config.RuntimeConfig) doctorCheck {
	policy, err := classify.DefaultRegistry.Build(cfg.Policy, cfg.Rules())
	if err != nil {
		return doctorCheck{Name: "Classifier Policy", Status: "✗", Detail: cfg.Policy, Error: err}
	}

	sample := classify.DefaultAllowList[0]
	if len(cfg.AllowList) > 0 {
		sample = cfg.AllowList[0]
	}
	result := policy.Classify(sample)

	detail := fmt.Sprintf("%s (%s -> %s, %d%%)", policy.Name(), sample, result.Verdict(), result.Confidence)
	if policy.Name() == classify.PolicyHeuristic {
		detail += ", demo mode"
	}
	return doctorCheck{Name: "Classifier Policy", Status: "✓", Detail: detail}
}

func checkAppKey(appKey string) doctorCheck {
	if appKey == "" {
		return doctorCheck{
			Name:   "PhishTank App Key",
			Status: "⊘",
			Detail: "Not set; anonymous lookups are rate limited",
		}
	}
	return doctorCheck{Name: "PhishTank App Key", Status: "✓", Detail: "Configured"}
}

// checkProviderReachability treats any HTTP answer as reachable; only
// transport failures fail the check.
func checkProviderReachability(ctx context.Context, endpoint string) doctorCheck {
	check := doctorCheck{Name: "PhishTank Endpoint"}

	client := &http.Client{
		Timeout: 5 * time.Second,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		},
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, endpoint, nil)
	if err != nil {
		check.Status = "✗"
		check.Detail = "Invalid URL"
		check.Error = err
		return check
	}

	resp, err := client.Do(req)
	if err != nil {
		check.Status = "✗"
		check.Detail = "Unreachable"
		check.Error = err
		return check
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	resp.Body.Close()

	check.Status = "✓"
	check.Detail = fmt.Sprintf("%s (HTTP %d)", endpoint, resp.StatusCode)
	return check
}

func checkOutputDirectory(outputDir string) doctorCheck {
	if err := ensureOutputDir(outputDir); err != nil {
		return doctorCheck{
			Name:   "Output Directory",
			Status: "✗",
			Detail: outputDir,
			Error:  err,
		}
	}

	return doctorCheck{
		Name:   "Output Directory",
		Status: "✓",
		Detail: outputDir,
	}
}

func printDoctorReport(cmd *cobra.Command, checks []doctorCheck) {
	fmt.Fprintln(cmd.OutOrStdout(), "Running environment diagnostics...")

	for _, check := range checks {
		fmt.Fprintf(cmd.OutOrStdout(), "%s %-30s %s\n", check.Status, check.Name+":", check.Detail)
		if check.Error != nil {
			fmt.Fprintf(cmd.ErrOrStderr(), "   Error: %v\n", check.Error)
		}
	}
}
