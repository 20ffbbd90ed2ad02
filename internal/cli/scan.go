package cli

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/example/phishguard/internal/classify"
	"github.com/example/phishguard/internal/config"
	"github.com/example/phishguard/internal/dashboard"
	"github.com/example/phishguard/internal/events"
	"github.com/example/phishguard/internal/urlnorm"
)

// scanArtifact is the JSON artifact layout; report reads it back.
type scanArtifact struct {
	RunID       string             `json:"runId"`
	GeneratedAt time.Time          `json:"generatedAt"`
	Policy      string             `json:"policy"`
	Outcomes    []classify.Outcome `json:"outcomes"`
}

func newScanCmd(loader *config.Loader) *cobra.Command {
	flags := &runtimeFlagSet{}

	cmd := &cobra.Command{
		Use:   "scan",
		Short: "Classify a batch of URLs and write artifacts",
		RunE: func(cmd *cobra.Command, args []string) error {
			overrides := flags.toOverrides(cmd)
			cfg, err := loader.Load(overrides)
			if err != nil {
				return err
			}

			if err := cfg.Validate(); err != nil {
				return err
			}

			if err := cfg.ValidateTargets(); err != nil {
				return err
			}

			if err := ensureOutputDir(cfg.OutputDir); err != nil {
				return err
			}

			checker, err := buildChecker(cfg, newLogger(cmd.ErrOrStderr()))
			if err != nil {
				return err
			}

			runID := uuid.NewString()
			emitter := events.NewEmitter(cmd.OutOrStdout()).WithRunID(runID)

			targets := make([]string, 0, len(cfg.Targets))
			for _, target := range cfg.Targets {
				if err := urlnorm.Validate(target, cfg.RequireScheme); err != nil {
					if err := emitter.Emit(events.Event{Type: events.TypeWarning, Message: "Skipping target", Fields: map[string]interface{}{"url": target, "error": err.Error()}}); err != nil {
						return err
					}
					continue
				}
				targets = append(targets, target)
			}
			if len(targets) == 0 {
				return fmt.Errorf("no valid targets: %w", urlnorm.ErrInvalidURL)
			}

			if err := emitter.Emit(events.Event{Type: events.TypeScanStart, Message: "Starting scan", Fields: map[string]interface{}{"targets": len(targets), "policy": cfg.Policy, "threads": cfg.Threads}}); err != nil {
				return err
			}

			tracker := dashboard.NewTracker(dashboard.DefaultRecentLimit)
			var (
				emitMu  sync.Mutex
				emitErr error
			)
			outcomes, runErr := classify.Run(cmd.Context(), checker, targets, cfg.Threads, func(o classify.Outcome) {
				tracker.Record(o)
				if err := emitter.EmitOutcome(o); err != nil {
					emitMu.Lock()
					if emitErr == nil {
						emitErr = err
					}
					emitMu.Unlock()
				}
			})
			if emitErr != nil {
				return emitErr
			}
			if runErr != nil {
				return fmt.Errorf("scan interrupted after %d of %d checks: %w", len(outcomes), len(targets), runErr)
			}

			artifact := scanArtifact{
				RunID:       runID,
				GeneratedAt: time.Now().UTC(),
				Policy:      cfg.Policy,
				Outcomes:    outcomes,
			}

			timestamp := artifact.GeneratedAt.Format("20060102_150405")
			var outputs []string

			for _, format := range cfg.Formats {
				format = strings.ToLower(strings.TrimSpace(format))
				if format == "" {
					continue
				}

				outputPath := filepath.Join(cfg.OutputDir, fmt.Sprintf("scan_%s.%s", timestamp, format))
				if err := writeArtifact(outputPath, format, artifact); err != nil {
					return err
				}

				outputs = append(outputs, outputPath)
				if err := emitter.Emit(events.Event{Type: events.TypeArtifactWritten, Fields: map[string]interface{}{"path": outputPath, "format": format}}); err != nil {
					return err
				}
			}

			metrics := tracker.Snapshot()
			if cfg.SummaryFile != "" {
				if err := writeSummary(cfg.SummaryFile, cfg, runID, outputs, metrics); err != nil {
					return err
				}
			}

			return emitter.Emit(events.Event{Type: events.TypeScanFinished, Message: "Scan complete", Fields: map[string]interface{}{
				"artifacts": len(outputs),
				"checked":   metrics.TotalScans,
				"phishing":  metrics.PhishingDetected,
				"safe":      metrics.SafeURLs,
			}})
		},
	}

	bindRuntimeFlags(cmd, flags)

	return cmd
}

func writeArtifact(path, format string, artifact scanArtifact) error {
	if err := ensureOutputDir(filepath.Dir(path)); err != nil {
		return err
	}

	switch format {
	case "json":
		return writeJSONFile(path, artifact, 0o644)
	case "csv":
		return writeCSVArtifact(path, artifact.Outcomes)
	default:
		return fmt.Errorf("unsupported format %s", format)
	}
}

var csvHeader = []string{"url", "host", "domain", "policy", "verdict", "confidence", "verified", "target", "details", "checkedAt"}

func writeCSVArtifact(path string, outcomes []classify.Outcome) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, file.Close())
	}()

	w := csv.NewWriter(file)
	if err := w.Write(csvHeader); err != nil {
		return err
	}
	for _, o := range outcomes {
		record := []string{
			o.URL,
			o.Host,
			o.Domain,
			o.Policy,
			o.Result.Verdict(),
			strconv.Itoa(o.Result.Confidence),
			strconv.FormatBool(o.Result.Verified),
			o.Result.Target,
			o.Result.Details,
			o.CheckedAt.Format(time.RFC3339),
		}
		if err := w.Write(record); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}

func writeSummary(path string, cfg config.RuntimeConfig, runID string, artifacts []string, metrics dashboard.Metrics) error {
	summary := map[string]interface{}{
		"generatedAt": time.Now().UTC().Format(time.RFC3339),
		"runId":       runID,
		"targets":     cfg.Targets,
		"policy":      cfg.Policy,
		"artifacts":   artifacts,
		"metrics":     metrics,
	}
	return writeJSONFile(path, summary, 0o644)
}

func readArtifact(path string) (scanArtifact, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return scanArtifact{}, err
	}
	var artifact scanArtifact
	if err := json.Unmarshal(data, &artifact); err != nil {
		return scanArtifact{}, fmt.Errorf("parse artifact %s: %w", path, err)
	}
	return artifact, nil
}
