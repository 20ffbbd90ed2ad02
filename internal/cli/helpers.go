package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/example/phishguard/internal/classify"
	"github.com/example/phishguard/internal/config"
)

const demoWarning = "heuristic-demo policy is a demonstration: verdicts are partly random and must not be trusted"

func ensureOutputDir(path string) error {
	if path == "" {
		return fmt.Errorf("output directory cannot be empty")
	}
	return os.MkdirAll(path, 0o755)
}

func newLogger(w io.Writer) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// buildChecker constructs the configured policy and warns when it is the demo policy.
func buildChecker(cfg config.RuntimeConfig, logger *slog.Logger) (*classify.Checker, error) {
	policy, err := classify.DefaultRegistry.Build(cfg.Policy, cfg.Rules())
	if err != nil {
		return nil, err
	}
	if policy.Name() == classify.PolicyHeuristic {
		logger.Warn(demoWarning, "policy", policy.Name())
	}
	return classify.NewChecker(policy, cfg.Delay), nil
}

func writeJSONFile(path string, v interface{}, perm os.FileMode) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	if dir := filepath.Dir(path); dir != "." {
		if err := ensureOutputDir(dir); err != nil {
			return err
		}
	}

	return os.WriteFile(path, append(data, '\n'), perm)
}
