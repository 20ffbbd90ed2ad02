package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/example/phishguard/internal/classify"
	"github.com/example/phishguard/internal/reputation"
)

const (
	DefaultConfigPath = "phishguard.yml"
	DefaultEnvFile    = ".env"
	MaxThreads        = 64

	envTargets      = "PHISHGUARD_TARGETS"
	envTargetsFile  = "PHISHGUARD_TARGETS_FILE"
	envPolicy       = "PHISHGUARD_POLICY"
	envThreads      = "PHISHGUARD_THREADS"
	envOutputDir    = "PHISHGUARD_OUTPUT_DIR"
	envFormats      = "PHISHGUARD_FORMATS"
	envSummaryFile  = "PHISHGUARD_SUMMARY_FILE"
	envDelay        = "PHISHGUARD_DELAY"
	envSeed         = "PHISHGUARD_SEED"
	envPhishTankKey = "PHISHTANK_APP_KEY"
	envPhishTankURL = "PHISHTANK_ENDPOINT"
)

// SupportedFormats lists the artifact formats a scan can write.
var SupportedFormats = []string{"json", "csv"}

// ErrNoTargets is returned by ValidateTargets when nothing is configured to scan.
var ErrNoTargets = errors.New("no targets configured; provide --targets, --targets-file, or set " + envTargets)

// Loader merges configuration coming from .env, files, environment variables, and CLI flags.
type Loader struct {
	ConfigPath string
	// EnvFile is read before the YAML file; a missing file is ignored.
	EnvFile string
}

// PhishTankConfig holds the remote reputation provider settings.
type PhishTankConfig struct {
	Endpoint  string
	AppKey    string
	UserAgent string
	Timeout   time.Duration
}

// RuntimeConfig contains the fully merged settings required by phishguard sub-commands.
type RuntimeConfig struct {
	Targets            []string
	Policy             string
	Threads            int
	OutputDir          string
	Formats            []string
	SummaryFile        string
	Delay              time.Duration
	Seed               *uint64
	RequireScheme      bool
	AllowList          []string
	SuspiciousPatterns []string
	PhishTank          PhishTankConfig
}

// Overrides captures values coming from env vars or CLI flags.
type Overrides struct {
	Targets            []string
	TargetsFile        string
	Policy             string
	Threads            int
	ThreadsSet         bool
	OutputDir          string
	Formats            []string
	SummaryFile        string
	Delay              *time.Duration
	Seed               *uint64
	RequireScheme      *bool
	AllowList          []string
	SuspiciousPatterns []string
	PhishTankEndpoint  string
	PhishTankAppKey    string
	PhishTankUserAgent string
	PhishTankTimeout   *time.Duration
}

// DefaultRuntimeConfig returns the baseline configuration when no overrides are provided.
func DefaultRuntimeConfig() RuntimeConfig {
	return RuntimeConfig{
		Policy:    classify.PolicyAllowList,
		Threads:   10,
		OutputDir: "scan-results",
		Formats:   []string{"json", "csv"},
		Delay:     classify.DefaultDelay,
		PhishTank: PhishTankConfig{
			Endpoint:  reputation.DefaultEndpoint,
			UserAgent: reputation.DefaultUserAgent,
			Timeout:   reputation.DefaultTimeout,
		},
	}
}

// Load resolves the final runtime configuration.
func (l Loader) Load(override Overrides) (RuntimeConfig, error) {
	cfg := DefaultRuntimeConfig()

	envFile := l.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if fileExists(envFile) {
		values, err := godotenv.Read(envFile)
		if err != nil {
			return cfg, fmt.Errorf("read %s: %w", envFile, err)
		}
		dotenv, err := overridesFromLookup(func(key string) string { return values[key] })
		if err != nil {
			return cfg, fmt.Errorf("%s: %w", envFile, err)
		}
		if err := cfg.apply(dotenv); err != nil {
			return cfg, err
		}
	}

	path := l.ConfigPath
	if path == "" {
		path = DefaultConfigPath
	}

	if fileExists(path) {
		fileOv, err := loadFromFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config %s: %w", path, err)
		}
		if err := cfg.apply(fileOv); err != nil {
			return cfg, err
		}
	}

	envOv, err := overridesFromLookup(os.Getenv)
	if err != nil {
		return cfg, fmt.Errorf("environment: %w", err)
	}
	if err := cfg.apply(envOv); err != nil {
		return cfg, err
	}

	if err := cfg.apply(override); err != nil {
		return cfg, err
	}

	return cfg, nil
}

// Validate ensures the merged settings are usable. Targets are checked
// separately by ValidateTargets since only scan needs them.
func (c RuntimeConfig) Validate() error {
	if c.Threads < 1 || c.Threads > MaxThreads {
		return fmt.Errorf("threads must be between 1 and %d (got %d)", MaxThreads, c.Threads)
	}

	if c.Policy == "" {
		return errors.New("policy must be specified")
	}
	if !classify.DefaultRegistry.Has(c.Policy) {
		return fmt.Errorf("%w %q (available: %s)", classify.ErrUnknownPolicy, c.Policy, strings.Join(classify.DefaultRegistry.Names(), ", "))
	}

	if c.Delay < 0 {
		return fmt.Errorf("delay cannot be negative (got %s)", c.Delay)
	}

	if len(c.Formats) == 0 {
		return errors.New("at least one output format must be specified")
	}
	for _, format := range c.Formats {
		if !isSupportedFormat(format) {
			return fmt.Errorf("unsupported output format %q (supported: %s)", format, strings.Join(SupportedFormats, ", "))
		}
	}

	if c.OutputDir == "" {
		return errors.New("output directory cannot be empty")
	}

	if c.PhishTank.Timeout < 0 {
		return fmt.Errorf("phishtank timeout cannot be negative (got %s)", c.PhishTank.Timeout)
	}

	return nil
}

// ValidateTargets reports ErrNoTargets when the config has nothing to scan.
func (c RuntimeConfig) ValidateTargets() error {
	if len(c.Targets) == 0 {
		return ErrNoTargets
	}
	return nil
}

// Rules returns the classifier rules described by the config.
func (c RuntimeConfig) Rules() classify.Rules {
	return classify.Rules{
		AllowList:          c.AllowList,
		SuspiciousPatterns: c.SuspiciousPatterns,
		Seed:               c.Seed,
	}
}

// ProviderConfig returns the PhishTank client settings.
func (c RuntimeConfig) ProviderConfig() reputation.PhishTankConfig {
	return reputation.PhishTankConfig{
		Endpoint:  c.PhishTank.Endpoint,
		AppKey:    c.PhishTank.AppKey,
		UserAgent: c.PhishTank.UserAgent,
		Timeout:   c.PhishTank.Timeout,
	}
}

func isSupportedFormat(format string) bool {
	for _, f := range SupportedFormats {
		if strings.EqualFold(f, format) {
			return true
		}
	}
	return false
}

func (c *RuntimeConfig) apply(src Overrides) error {
	if len(src.Targets) > 0 {
		c.Targets = cleanList(src.Targets)
	}

	if src.TargetsFile != "" {
		values, err := readTargetsFile(src.TargetsFile)
		if err != nil {
			return fmt.Errorf("targets file: %w", err)
		}
		c.Targets = values
	}

	if src.Policy != "" {
		c.Policy = strings.ToLower(strings.TrimSpace(src.Policy))
	}

	if src.ThreadsSet {
		c.Threads = src.Threads
	}

	if src.OutputDir != "" {
		c.OutputDir = src.OutputDir
	}

	if len(src.Formats) > 0 {
		c.Formats = cleanList(src.Formats)
	}

	if src.SummaryFile != "" {
		c.SummaryFile = src.SummaryFile
	}

	if src.Delay != nil {
		c.Delay = *src.Delay
	}

	if src.Seed != nil {
		seed := *src.Seed
		c.Seed = &seed
	}

	if src.RequireScheme != nil {
		c.RequireScheme = *src.RequireScheme
	}

	if len(src.AllowList) > 0 {
		c.AllowList = cleanList(src.AllowList)
	}

	if len(src.SuspiciousPatterns) > 0 {
		c.SuspiciousPatterns = cleanList(src.SuspiciousPatterns)
	}

	if src.PhishTankEndpoint != "" {
		c.PhishTank.Endpoint = src.PhishTankEndpoint
	}

	if src.PhishTankAppKey != "" {
		c.PhishTank.AppKey = src.PhishTankAppKey
	}

	if src.PhishTankUserAgent != "" {
		c.PhishTank.UserAgent = src.PhishTankUserAgent
	}

	if src.PhishTankTimeout != nil {
		c.PhishTank.Timeout = *src.PhishTankTimeout
	}

	return nil
}

func loadFromFile(path string) (Overrides, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Overrides{}, err
	}

	type rawPhishTank struct {
		Endpoint  string `yaml:"endpoint"`
		AppKey    string `yaml:"appKey"`
		UserAgent string `yaml:"userAgent"`
		Timeout   string `yaml:"timeout"`
	}

	type rawConfig struct {
		Targets            targetList   `yaml:"targets"`
		TargetsFile        string       `yaml:"targetsFile"`
		Policy             string       `yaml:"policy"`
		Threads            *int         `yaml:"threads"`
		OutputDir          string       `yaml:"outputDir"`
		Formats            []string     `yaml:"formats"`
		SummaryFile        string       `yaml:"summaryFile"`
		Delay              string       `yaml:"delay"`
		Seed               *uint64      `yaml:"seed"`
		RequireScheme      *bool        `yaml:"requireScheme"`
		AllowList          targetList   `yaml:"allowList"`
		SuspiciousPatterns targetList   `yaml:"suspiciousPatterns"`
		PhishTank          rawPhishTank `yaml:"phishtank"`
	}

	var raw rawConfig
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return Overrides{}, err
	}

	over := Overrides{
		Targets:            raw.Targets,
		TargetsFile:        raw.TargetsFile,
		Policy:             raw.Policy,
		OutputDir:          raw.OutputDir,
		Formats:            raw.Formats,
		SummaryFile:        raw.SummaryFile,
		Seed:               raw.Seed,
		RequireScheme:      raw.RequireScheme,
		AllowList:          raw.AllowList,
		SuspiciousPatterns: raw.SuspiciousPatterns,
		PhishTankEndpoint:  raw.PhishTank.Endpoint,
		PhishTankAppKey:    raw.PhishTank.AppKey,
		PhishTankUserAgent: raw.PhishTank.UserAgent,
	}

	if raw.Threads != nil {
		over.Threads = *raw.Threads
		over.ThreadsSet = true
	}

	if raw.Delay != "" {
		d, err := time.ParseDuration(raw.Delay)
		if err != nil {
			return Overrides{}, fmt.Errorf("delay: %w", err)
		}
		over.Delay = &d
	}

	if raw.PhishTank.Timeout != "" {
		d, err := time.ParseDuration(raw.PhishTank.Timeout)
		if err != nil {
			return Overrides{}, fmt.Errorf("phishtank.timeout: %w", err)
		}
		over.PhishTankTimeout = &d
	}

	return over, nil
}

// overridesFromLookup reads the PHISHGUARD_* and PHISHTANK_* variables through
// lookup, which is os.Getenv or a parsed .env file.
func overridesFromLookup(lookup func(string) string) (Overrides, error) {
	ov := Overrides{}

	if value := lookup(envTargets); value != "" {
		ov.Targets = ParseTargetsList(value)
	}

	if value := lookup(envTargetsFile); value != "" {
		ov.TargetsFile = value
	}

	if value := lookup(envPolicy); value != "" {
		ov.Policy = value
	}

	if value := lookup(envThreads); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			ov.Threads = parsed
			ov.ThreadsSet = true
		}
	}

	if value := lookup(envOutputDir); value != "" {
		ov.OutputDir = value
	}

	if value := lookup(envFormats); value != "" {
		ov.Formats = ParseFormats(value)
	}

	if value := lookup(envSummaryFile); value != "" {
		ov.SummaryFile = value
	}

	if value := lookup(envDelay); value != "" {
		d, err := time.ParseDuration(value)
		if err != nil {
			return ov, fmt.Errorf("%s: %w", envDelay, err)
		}
		ov.Delay = &d
	}

	if value := lookup(envSeed); value != "" {
		seed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return ov, fmt.Errorf("%s: %w", envSeed, err)
		}
		ov.Seed = &seed
	}

	if value := lookup(envPhishTankKey); value != "" {
		ov.PhishTankAppKey = value
	}

	if value := lookup(envPhishTankURL); value != "" {
		ov.PhishTankEndpoint = value
	}

	return ov, nil
}

// ParseTargetsList turns comma or newline separated input into individual targets.
func ParseTargetsList(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r'})
}

// ParseFormats splits comma separated format strings.
func ParseFormats(input string) []string {
	return splitOnDelimiters(input, []rune{',', '\n', '\r', ' '})
}

func splitOnDelimiters(input string, delims []rune) []string {
	trimmed := strings.TrimSpace(input)
	if trimmed == "" {
		return nil
	}

	separator := func(r rune) bool {
		for _, d := range delims {
			if r == d {
				return true
			}
		}
		return false
	}

	return cleanList(strings.FieldsFunc(trimmed, separator))
}

func cleanList(values []string) []string {
	var out []string
	for _, v := range values {
		candidate := strings.TrimSpace(v)
		if candidate != "" {
			out = append(out, candidate)
		}
	}
	return out
}

func readTargetsFile(path string) ([]string, error) {
	file, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	var targets []string
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		targets = append(targets, line)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return targets, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// targetList enables YAML fields that can be specified as a scalar or sequence.
type targetList []string

func (t *targetList) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.SequenceNode:
		var out []string
		for _, node := range value.Content {
			out = append(out, strings.TrimSpace(node.Value))
		}
		*t = cleanList(out)
	case yaml.ScalarNode:
		*t = ParseTargetsList(value.Value)
	default:
		return fmt.Errorf("unsupported YAML type for list field")
	}
	return nil
}
