package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/example/phishguard/internal/classify"
	"github.com/example/phishguard/internal/reputation"
)

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestLoaderLoadWithFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	targetFile := filepath.Join(dir, "targets.txt")
	writeFile(t, targetFile, "https://one.test\n# comment\nhttps://two.test\n")

	configPath := filepath.Join(dir, "phishguard.yml")
	writeFile(t, configPath, "policy: heuristic-demo\nthreads: 6\noutputDir: out\ndelay: 250ms\nseed: 42\ntargetsFile: "+targetFile+"\nformats:\n  - json\n")

	t.Setenv(envThreads, "12")
	t.Setenv(envFormats, "csv")

	loader := Loader{ConfigPath: configPath, EnvFile: filepath.Join(dir, "missing.env")}
	cfg, err := loader.Load(Overrides{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate config: %v", err)
	}
	if err := cfg.ValidateTargets(); err != nil {
		t.Fatalf("validate targets: %v", err)
	}

	if len(cfg.Targets) != 2 {
		t.Fatalf("expected 2 targets, got %d", len(cfg.Targets))
	}

	if cfg.Policy != classify.PolicyHeuristic {
		t.Fatalf("expected policy %s, got %s", classify.PolicyHeuristic, cfg.Policy)
	}

	if cfg.Threads != 12 {
		t.Fatalf("env override should set threads to 12, got %d", cfg.Threads)
	}

	if cfg.OutputDir != "out" {
		t.Fatalf("expected output dir out, got %s", cfg.OutputDir)
	}

	if cfg.Delay != 250*time.Millisecond {
		t.Fatalf("expected delay 250ms, got %s", cfg.Delay)
	}

	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Fatalf("expected seed 42, got %v", cfg.Seed)
	}

	if len(cfg.Formats) != 1 || cfg.Formats[0] != "csv" {
		t.Fatalf("unexpected formats: %#v", cfg.Formats)
	}
}

func TestLoaderDefaults(t *testing.T) {
	dir := t.TempDir()
	loader := Loader{ConfigPath: filepath.Join(dir, "absent.yml"), EnvFile: filepath.Join(dir, "absent.env")}

	cfg, err := loader.Load(Overrides{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Policy != classify.PolicyAllowList {
		t.Fatalf("default policy should be %s, got %s", classify.PolicyAllowList, cfg.Policy)
	}
	if cfg.Delay != classify.DefaultDelay {
		t.Fatalf("default delay should be %s, got %s", classify.DefaultDelay, cfg.Delay)
	}
	if cfg.PhishTank.Endpoint != reputation.DefaultEndpoint {
		t.Fatalf("unexpected default endpoint %s", cfg.PhishTank.Endpoint)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults should validate: %v", err)
	}
	if !errors.Is(cfg.ValidateTargets(), ErrNoTargets) {
		t.Fatal("expected ErrNoTargets without targets")
	}
}

func TestLoaderPrecedence(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	writeFile(t, envFile, "PHISHGUARD_POLICY=heuristic-demo\nPHISHGUARD_OUTPUT_DIR=from-dotenv\nPHISHTANK_APP_KEY=dotenv-key\nPHISHGUARD_THREADS=3\n")

	configPath := filepath.Join(dir, "phishguard.yml")
	writeFile(t, configPath, "outputDir: from-yaml\nthreads: 4\n")

	t.Setenv(envThreads, "5")

	loader := Loader{ConfigPath: configPath, EnvFile: envFile}
	cfg, err := loader.Load(Overrides{Threads: 7, ThreadsSet: true})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Policy != classify.PolicyHeuristic {
		t.Fatalf(".env policy should survive, got %s", cfg.Policy)
	}
	if cfg.OutputDir != "from-yaml" {
		t.Fatalf("yaml should override .env, got %s", cfg.OutputDir)
	}
	if cfg.PhishTank.AppKey != "dotenv-key" {
		t.Fatalf("expected app key from .env, got %q", cfg.PhishTank.AppKey)
	}
	if cfg.Threads != 7 {
		t.Fatalf("flags should win, got %d", cfg.Threads)
	}
}

func TestLoaderPhishTankSection(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "phishguard.yml")
	writeFile(t, configPath, "phishtank:\n  endpoint: http://localhost:9999/check\n  appKey: yaml-key\n  userAgent: phishtank/tester\n  timeout: 3s\n")

	t.Setenv(envPhishTankKey, "env-key")

	cfg, err := Loader{ConfigPath: configPath, EnvFile: filepath.Join(dir, "none")}.Load(Overrides{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	pc := cfg.ProviderConfig()
	if pc.Endpoint != "http://localhost:9999/check" {
		t.Fatalf("unexpected endpoint %s", pc.Endpoint)
	}
	if pc.AppKey != "env-key" {
		t.Fatalf("env should override yaml app key, got %s", pc.AppKey)
	}
	if pc.UserAgent != "phishtank/tester" || pc.Timeout != 3*time.Second {
		t.Fatalf("unexpected provider config %#v", pc)
	}
}

func TestLoaderRulesFromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "phishguard.yml")
	writeFile(t, configPath, "allowList: example.com, www.trusted.test\nsuspiciousPatterns:\n  - evil\n  - phish\nrequireScheme: true\n")

	cfg, err := Loader{ConfigPath: configPath, EnvFile: filepath.Join(dir, "none")}.Load(Overrides{})
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	rules := cfg.Rules()
	if len(rules.AllowList) != 2 || len(rules.SuspiciousPatterns) != 2 {
		t.Fatalf("unexpected rules %#v", rules)
	}
	if !cfg.RequireScheme {
		t.Fatal("expected requireScheme to be true")
	}
}

func TestLoaderInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		yaml  string
		env   map[string]string
		match string
	}{
		{name: "bad yaml delay", yaml: "delay: soon\n", match: "delay"},
		{name: "bad env delay", env: map[string]string{envDelay: "later"}, match: envDelay},
		{name: "bad env seed", env: map[string]string{envSeed: "-1"}, match: envSeed},
		{name: "bad targets file", yaml: "targetsFile: /does/not/exist\n", match: "targets file"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			configPath := filepath.Join(dir, "phishguard.yml")
			writeFile(t, configPath, tt.yaml)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Loader{ConfigPath: configPath, EnvFile: filepath.Join(dir, "none")}.Load(Overrides{})
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.match) {
				t.Fatalf("expected error mentioning %q, got %v", tt.match, err)
			}
		})
	}
}

func TestValidate(t *testing.T) {
	negative := -time.Second
	tests := []struct {
		name   string
		mutate func(*RuntimeConfig)
		ok     bool
	}{
		{name: "defaults", mutate: func(*RuntimeConfig) {}, ok: true},
		{name: "zero threads", mutate: func(c *RuntimeConfig) { c.Threads = 0 }},
		{name: "too many threads", mutate: func(c *RuntimeConfig) { c.Threads = MaxThreads + 1 }},
		{name: "unknown policy", mutate: func(c *RuntimeConfig) { c.Policy = "ml" }},
		{name: "negative delay", mutate: func(c *RuntimeConfig) { c.Delay = negative }},
		{name: "zero delay", mutate: func(c *RuntimeConfig) { c.Delay = 0 }, ok: true},
		{name: "no formats", mutate: func(c *RuntimeConfig) { c.Formats = nil }},
		{name: "unknown format", mutate: func(c *RuntimeConfig) { c.Formats = []string{"xml"} }},
		{name: "empty output dir", mutate: func(c *RuntimeConfig) { c.OutputDir = "" }},
		{name: "negative provider timeout", mutate: func(c *RuntimeConfig) { c.PhishTank.Timeout = negative }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultRuntimeConfig()
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tt.ok && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateUnknownPolicyIsSentinel(t *testing.T) {
	cfg := DefaultRuntimeConfig()
	cfg.Policy = "neural"
	if err := cfg.Validate(); !errors.Is(err, classify.ErrUnknownPolicy) {
		t.Fatalf("expected ErrUnknownPolicy, got %v", err)
	}
}

func TestOverridesApplyTargetsList(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "phishguard.yml")
	writeFile(t, configPath, "targets:\n  - https://from-file.test\n")

	loader := Loader{ConfigPath: configPath, EnvFile: filepath.Join(dir, "none")}
	over := Overrides{Targets: []string{"https://override.test"}}
	cfg, err := loader.Load(over)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if len(cfg.Targets) != 1 || cfg.Targets[0] != "https://override.test" {
		t.Fatalf("expected overrides to replace targets, got %#v", cfg.Targets)
	}
}

func TestParseTargetsList(t *testing.T) {
	input := "https://one.test,https://two.test\nhttps://three.test"
	targets := ParseTargetsList(input)
	if len(targets) != 3 {
		t.Fatalf("expected 3 targets, got %d", len(targets))
	}
	if ParseTargetsList("   ") != nil {
		t.Fatal("blank input should yield nil")
	}
}

func TestParseFormats(t *testing.T) {
	formats := ParseFormats("json, csv")
	if len(formats) != 2 || formats[0] != "json" || formats[1] != "csv" {
		t.Fatalf("unexpected formats %#v", formats)
	}
}
