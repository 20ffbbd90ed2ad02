package cli

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/phishguard/internal/classify"
	"github.com/example/phishguard/internal/config"
)

// runtimeFlagSet tracks shared flags before they are converted into config overrides.
type runtimeFlagSet struct {
	targets            string
	targetsFile        string
	policy             string
	threads            int
	outputDir          string
	formats            string
	summaryFile        string
	delay              time.Duration
	seed               uint64
	requireScheme      bool
	allowList          string
	suspiciousPatterns string
}

// bindClassifierFlags registers the flags that shape a single check.
func bindClassifierFlags(cmd *cobra.Command, flags *runtimeFlagSet) {
	cmd.Flags().StringVar(&flags.policy, "policy", "", "Classifier policy: "+strings.Join(classify.DefaultRegistry.Names(), ", "))
	cmd.Flags().DurationVar(&flags.delay, "delay", 0, "Simulated analysis delay per URL (0 disables)")
	cmd.Flags().Uint64Var(&flags.seed, "seed", 0, "Seed for the heuristic-demo policy (reproducible output)")
	cmd.Flags().BoolVar(&flags.requireScheme, "require-scheme", false, "Reject input that is not an absolute http(s) URL")
	cmd.Flags().StringVar(&flags.allowList, "allow-list", "", "Comma-separated verified safe domains (overrides config)")
	cmd.Flags().StringVar(&flags.suspiciousPatterns, "suspicious-patterns", "", "Comma-separated suspicious substrings (overrides config)")
}

// bindRuntimeFlags registers the classifier flags plus batch scan flags.
func bindRuntimeFlags(cmd *cobra.Command, flags *runtimeFlagSet) {
	bindClassifierFlags(cmd, flags)
	cmd.Flags().StringVar(&flags.targets, "targets", "", "Comma-separated list of URLs (overrides config)")
	cmd.Flags().StringVar(&flags.targetsFile, "targets-file", "", "Path to a file with one URL per line")
	cmd.Flags().IntVar(&flags.threads, "threads", 0, fmt.Sprintf("Number of concurrent checks (1-%d)", config.MaxThreads))
	cmd.Flags().StringVar(&flags.outputDir, "output-dir", "", "Directory for scan artifacts")
	cmd.Flags().StringVar(&flags.formats, "formats", "", "Comma-separated output formats (json,csv)")
	cmd.Flags().StringVar(&flags.summaryFile, "summary-file", "", "Optional summary JSON output path")
}

func (f runtimeFlagSet) toOverrides(cmd *cobra.Command) config.Overrides {
	ov := config.Overrides{}
	if cmd.Flags().Changed("targets") {
		ov.Targets = config.ParseTargetsList(f.targets)
	}

	if cmd.Flags().Changed("targets-file") {
		ov.TargetsFile = f.targetsFile
	}

	if cmd.Flags().Changed("policy") {
		ov.Policy = f.policy
	}

	if cmd.Flags().Changed("threads") {
		ov.Threads = f.threads
		ov.ThreadsSet = true
	}

	if cmd.Flags().Changed("output-dir") {
		ov.OutputDir = f.outputDir
	}

	if cmd.Flags().Changed("formats") {
		ov.Formats = config.ParseFormats(f.formats)
	}

	if cmd.Flags().Changed("summary-file") {
		ov.SummaryFile = f.summaryFile
	}

	if cmd.Flags().Changed("delay") {
		delay := f.delay
		ov.Delay = &delay
	}

	if cmd.Flags().Changed("seed") {
		seed := f.seed
		ov.Seed = &seed
	}

	if cmd.Flags().Changed("require-scheme") {
		requireScheme := f.requireScheme
		ov.RequireScheme = &requireScheme
	}

	if cmd.Flags().Changed("allow-list") {
		ov.AllowList = config.ParseTargetsList(f.allowList)
	}

	if cmd.Flags().Changed("suspicious-patterns") {
		ov.SuspiciousPatterns = config.ParseTargetsList(f.suspiciousPatterns)
	}

	return ov
}
