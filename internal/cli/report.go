package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/example/phishguard/internal/dashboard"
	"github.com/example/phishguard/internal/events"
)

type reportSummary struct {
	Input       string            `json:"input"`
	RunID       string            `json:"runId,omitempty"`
	Policy      string            `json:"policy,omitempty"`
	GeneratedAt string            `json:"generatedAt"`
	Metrics     dashboard.Metrics `json:"metrics"`
}

func newReportCmd() *cobra.Command {
	var inputPath string
	var summaryPath string
	var recent int

	cmd := &cobra.Command{
		Use:   "report",
		Short: "Compute detection statistics from a scan artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			if inputPath == "" {
				return errors.New("--input is required")
			}

			artifact, err := readArtifact(inputPath)
			if err != nil {
				return err
			}

			summary := reportSummary{
				Input:       inputPath,
				RunID:       artifact.RunID,
				Policy:      artifact.Policy,
				GeneratedAt: time.Now().UTC().Format(time.RFC3339),
				Metrics:     dashboard.FromOutcomes(artifact.Outcomes, recent),
			}

			emitter := events.NewEmitter(cmd.OutOrStdout()).WithRunID(artifact.RunID)
			if err := emitter.Emit(events.Event{Type: events.TypeReport, Message: "Report generated", Fields: map[string]interface{}{
				"input":   summary.Input,
				"policy":  summary.Policy,
				"metrics": summary.Metrics,
			}}); err != nil {
				return err
			}

			if summaryPath != "" {
				if err := writeJSONFile(summaryPath, summary, 0o600); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Summary written to %s\n", summaryPath)
			}

			return nil
		},
	}

	cmd.Flags().StringVar(&inputPath, "input", "", "Path to a JSON scan artifact")
	cmd.Flags().StringVar(&summaryPath, "summary-file", "", "Optional path to store summary JSON")
	cmd.Flags().IntVar(&recent, "recent", dashboard.DefaultRecentLimit, "Number of recent detections to include")
	if err := cmd.MarkFlagRequired("input"); err != nil {
		panic(err)
	}

	return cmd
}
