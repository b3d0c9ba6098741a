package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/internal/constants"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// Default check settings
const (
	// DefaultMaxConcurrency is the number of targets audited at once
	DefaultMaxConcurrency = 4

	// DefaultTimeoutSeconds bounds a whole check run
	DefaultTimeoutSeconds = 300

	// DefaultAxeScriptURL is used when no local axe-core build is configured
	DefaultAxeScriptURL = "https://cdn.jsdelivr.net/npm/axe-core@4.10.3/axe.min.js"
)

// Config represents the main configuration structure
type Config struct {
	// Audit holds scoring and rule selection
	Audit AuditConfig `json:"audit" mapstructure:"audit" yaml:"audit"`

	// Axe tells the browser auditor where to load axe-core from
	Axe AxeConfig `json:"axe" mapstructure:"axe" yaml:"axe"`

	// Browser configures headless Chrome
	Browser BrowserConfig `json:"browser" mapstructure:"browser" yaml:"browser"`

	// Output holds output formatting configuration
	Output OutputConfig `json:"output" mapstructure:"output" yaml:"output"`

	// Scan selects the files to audit
	Scan ScanConfig `json:"scan" mapstructure:"scan" yaml:"scan"`

	// Performance bounds concurrency and run time
	Performance PerformanceConfig `json:"performance" mapstructure:"performance" yaml:"performance"`

	// LogLevel is one of trace, debug, info, warn, error
	LogLevel string `json:"log_level" mapstructure:"log_level" yaml:"log_level"`
}

// AuditConfig holds the audit policy
type AuditConfig struct {
	// FailFast turns any violation into a run failure
	FailFast bool `json:"fail_fast" mapstructure:"fail_fast" yaml:"fail_fast"`

	// SeverityWeights maps impact names (critical, serious, moderate, minor, unknown) to weights
	SeverityWeights map[string]int `json:"severity_weights" mapstructure:"severity_weights" yaml:"severity_weights"`

	// DisabledRules lists axe rule IDs to switch off
	DisabledRules []string `json:"disabled_rules" mapstructure:"disabled_rules" yaml:"disabled_rules"`

	// Tags restricts the run to rules carrying one of these tags (e.g. wcag2aa)
	Tags []string `json:"tags" mapstructure:"tags" yaml:"tags"`

	// RunOptions is passed to axe.run as-is; disabled_rules and tags are applied on top
	RunOptions map[string]any `json:"run_options" mapstructure:"run_options" yaml:"run_options"`

	// PageStrategy is how URLs are audited: in-page or serialize
	PageStrategy string `json:"page_strategy" mapstructure:"page_strategy" yaml:"page_strategy"`
}

// AxeConfig locates axe-core
type AxeConfig struct {
	ScriptPath string `json:"script_path" mapstructure:"script_path" yaml:"script_path"`
	ScriptURL  string `json:"script_url" mapstructure:"script_url" yaml:"script_url"`
}

// BrowserConfig configures the browser process
type BrowserConfig struct {
	ExecPath     string `json:"exec_path" mapstructure:"exec_path" yaml:"exec_path"`
	Headful      bool   `json:"headful" mapstructure:"headful" yaml:"headful"`
	NoSandbox    bool   `json:"no_sandbox" mapstructure:"no_sandbox" yaml:"no_sandbox"`
	WindowWidth  int    `json:"window_width" mapstructure:"window_width" yaml:"window_width"`
	WindowHeight int    `json:"window_height" mapstructure:"window_height" yaml:"window_height"`
}

// OutputConfig holds configuration for output formatting
type OutputConfig struct {
	// Format specifies the output format: text, json, yaml, csv, html
	Format string `json:"format" mapstructure:"format" yaml:"format"`

	// ShowDetails lists affected nodes under each violation in text output
	ShowDetails bool `json:"show_details" mapstructure:"show_details" yaml:"show_details"`

	// Directory is where html reports are written when no output path is given
	Directory string `json:"directory" mapstructure:"directory" yaml:"directory"`
}

// ScanConfig holds file selection configuration
type ScanConfig struct {
	// IncludePatterns specifies file patterns to include
	IncludePatterns []string `json:"include_patterns" mapstructure:"include_patterns" yaml:"include_patterns"`

	// ExcludePatterns specifies file patterns to exclude
	ExcludePatterns []string `json:"exclude_patterns" mapstructure:"exclude_patterns" yaml:"exclude_patterns"`

	// Recursive controls whether to walk directories recursively
	Recursive bool `json:"recursive" mapstructure:"recursive" yaml:"recursive"`

	// RespectGitignore skips files ignored by the nearest .gitignore
	RespectGitignore bool `json:"respect_gitignore" mapstructure:"respect_gitignore" yaml:"respect_gitignore"`
}

// PerformanceConfig bounds resource use
type PerformanceConfig struct {
	MaxConcurrency int `json:"max_concurrency" mapstructure:"max_concurrency" yaml:"max_concurrency"`
	TimeoutSeconds int `json:"timeout_seconds" mapstructure:"timeout_seconds" yaml:"timeout_seconds"`
}

// DefaultConfig returns the default configuration
func DefaultConfig() *Config {
	weights := make(map[string]int)
	for impact, w := range domain.DefaultSeverityWeights() {
		weights[string(impact)] = w
	}

	return &Config{
		Audit: AuditConfig{
			FailFast:        false,
			SeverityWeights: weights,
			DisabledRules:   []string{},
			Tags:            []string{},
			RunOptions:      map[string]any{},
			PageStrategy:    string(domain.PageStrategyInPage),
		},
		Axe: AxeConfig{
			ScriptURL: DefaultAxeScriptURL,
		},
		Browser: BrowserConfig{
			NoSandbox:    false,
			WindowWidth:  1280,
			WindowHeight: 800,
		},
		Output: OutputConfig{
			Format:      "text",
			ShowDetails: false,
		},
		Scan: ScanConfig{
			IncludePatterns:  []string{"**/*.html", "**/*.htm"},
			ExcludePatterns:  []string{"node_modules", ".git"},
			Recursive:        true,
			RespectGitignore: true,
		},
		Performance: PerformanceConfig{
			MaxConcurrency: DefaultMaxConcurrency,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		LogLevel: "warn",
	}
}

// LoadConfig loads configuration from file or returns default config
func LoadConfig(configPath string) (*Config, error) {
	return LoadConfigWithTarget(configPath, "")
}

// LoadConfigWithTarget loads configuration with target path context.
// Environment variables prefixed with A11YSCAN_ override file values
// (e.g. A11YSCAN_AUDIT_FAIL_FAST=true).
func LoadConfigWithTarget(configPath string, targetPath string) (*Config, error) {
	if configPath == "" {
		configPath = findDefaultConfig(targetPath)
	}
	return loadConfigFromFile(configPath)
}

// loadConfigFromFile reads and parses a configuration file; an empty path yields defaults
// with environment overrides applied
func loadConfigFromFile(configPath string) (*Config, error) {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	config := DefaultConfig()
	setDefaults(v, config)

	v.SetEnvPrefix(constants.EnvVarPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
		}
	}

	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if configPath != "" {
		if err := restoreRunOptions(configPath, config); err != nil {
			return nil, err
		}
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// setDefaults registers every scalar key so environment overrides reach Unmarshal
func setDefaults(v *viper.Viper, c *Config) {
	v.SetDefault("audit.fail_fast", c.Audit.FailFast)
	v.SetDefault("audit.severity_weights", c.Audit.SeverityWeights)
	v.SetDefault("audit.disabled_rules", c.Audit.DisabledRules)
	v.SetDefault("audit.tags", c.Audit.Tags)
	v.SetDefault("audit.page_strategy", c.Audit.PageStrategy)
	v.SetDefault("axe.script_path", c.Axe.ScriptPath)
	v.SetDefault("axe.script_url", c.Axe.ScriptURL)
	v.SetDefault("browser.exec_path", c.Browser.ExecPath)
	v.SetDefault("browser.headful", c.Browser.Headful)
	v.SetDefault("browser.no_sandbox", c.Browser.NoSandbox)
	v.SetDefault("browser.window_width", c.Browser.WindowWidth)
	v.SetDefault("browser.window_height", c.Browser.WindowHeight)
	v.SetDefault("output.format", c.Output.Format)
	v.SetDefault("output.show_details", c.Output.ShowDetails)
	v.SetDefault("output.directory", c.Output.Directory)
	v.SetDefault("scan.include_patterns", c.Scan.IncludePatterns)
	v.SetDefault("scan.exclude_patterns", c.Scan.ExcludePatterns)
	v.SetDefault("scan.recursive", c.Scan.Recursive)
	v.SetDefault("scan.respect_gitignore", c.Scan.RespectGitignore)
	v.SetDefault("performance.max_concurrency", c.Performance.MaxConcurrency)
	v.SetDefault("performance.timeout_seconds", c.Performance.TimeoutSeconds)
	v.SetDefault("log_level", c.LogLevel)
}

// restoreRunOptions re-reads audit.run_options with its original key case.
// Viper lowercases keys, which axe option names (runOnly, resultTypes) cannot survive.
func restoreRunOptions(configPath string, c *Config) error {
	ext := strings.ToLower(filepath.Ext(configPath))
	var unmarshal func([]byte, any) error
	switch ext {
	case ".yaml", ".yml", ".json":
		unmarshal = yaml.Unmarshal
	case ".toml":
		unmarshal = toml.Unmarshal
	default:
		return nil
	}
	data, err := os.ReadFile(configPath)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}
	var raw struct {
		Audit struct {
			RunOptions map[string]any `yaml:"run_options" toml:"run_options"`
		} `yaml:"audit" toml:"audit"`
	}
	if err := unmarshal(data, &raw); err != nil {
		return fmt.Errorf("failed to parse audit.run_options: %w", err)
	}
	if raw.Audit.RunOptions != nil {
		c.Audit.RunOptions = raw.Audit.RunOptions
	}
	return nil
}

// searchConfigInDirectory searches for configuration files in a specific directory
func searchConfigInDirectory(dir string, candidates []string) string {
	for _, candidate := range candidates {
		path := filepath.Join(dir, candidate)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

// findDefaultConfig looks for default configuration files in common locations.
// targetPath is the file or directory being audited.
func findDefaultConfig(targetPath string) string {
	candidates := constants.ConfigFileNames

	if targetPath != "" {
		absPath, err := filepath.Abs(targetPath)
		if err == nil {
			// If it's a file, start from its directory
			info, err := os.Stat(absPath)
			if err == nil && !info.IsDir() {
				absPath = filepath.Dir(absPath)
			}

			volume := filepath.VolumeName(absPath)
			for dir := absPath; ; dir = filepath.Dir(dir) {
				if config := searchConfigInDirectory(dir, candidates); config != "" {
					return config
				}

				parent := filepath.Dir(dir)
				if parent == dir ||
					dir == volume ||
					(volume != "" && dir == volume+string(filepath.Separator)) {
					break
				}
			}
		}
	}

	// Fallback to current directory
	if config := searchConfigInDirectory(".", candidates); config != "" {
		return config
	}

	// Check XDG config directory (Linux/Mac standard)
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		if config := searchConfigInDirectory(filepath.Join(xdgConfig, constants.ToolName), candidates); config != "" {
			return config
		}
	}

	if home, err := os.UserHomeDir(); err == nil {
		configDir := filepath.Join(home, ".config", constants.ToolName)
		if config := searchConfigInDirectory(configDir, candidates); config != "" {
			return config
		}
	}

	if envConfig := os.Getenv(constants.EnvVarPrefix + "_CONFIG"); envConfig != "" {
		if _, err := os.Stat(envConfig); err == nil {
			return envConfig
		}
	}

	return ""
}

// Validate validates the configuration values
func (c *Config) Validate() error {
	for name, w := range c.Audit.SeverityWeights {
		if !isKnownImpact(name) {
			return fmt.Errorf("unknown impact '%s' in audit.severity_weights, must be one of: critical, serious, moderate, minor, unknown", name)
		}
		if w < 0 {
			return fmt.Errorf("audit.severity_weights.%s must be >= 0, got %d", name, w)
		}
	}

	switch domain.PageStrategy(c.Audit.PageStrategy) {
	case domain.PageStrategyInPage, domain.PageStrategySerialize:
	default:
		return fmt.Errorf("invalid audit.page_strategy '%s', must be one of: in-page, serialize", c.Audit.PageStrategy)
	}

	validFormats := map[string]bool{
		"text": true,
		"json": true,
		"yaml": true,
		"csv":  true,
		"html": true,
	}
	if !validFormats[c.Output.Format] {
		return fmt.Errorf("invalid output.format '%s', must be one of: text, json, yaml, csv, html", c.Output.Format)
	}

	if len(c.Scan.IncludePatterns) == 0 {
		return fmt.Errorf("scan.include_patterns cannot be empty")
	}

	if c.Performance.MaxConcurrency < 1 {
		return fmt.Errorf("performance.max_concurrency must be >= 1, got %d", c.Performance.MaxConcurrency)
	}
	if c.Performance.TimeoutSeconds < 0 {
		return fmt.Errorf("performance.timeout_seconds must be >= 0, got %d", c.Performance.TimeoutSeconds)
	}

	if c.Browser.WindowWidth < 0 || c.Browser.WindowHeight < 0 {
		return fmt.Errorf("browser window size must be >= 0, got %dx%d", c.Browser.WindowWidth, c.Browser.WindowHeight)
	}

	switch c.LogLevel {
	case "", "trace", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level '%s', must be one of: trace, debug, info, warn, error", c.LogLevel)
	}

	return nil
}

func isKnownImpact(name string) bool {
	for _, impact := range domain.KnownImpacts {
		if string(impact) == name {
			return true
		}
	}
	return false
}

// BuildRunOptions builds the axe run options: the configured bag with disabled rules and
// tag restrictions applied on top
func (c *AuditConfig) BuildRunOptions() domain.RunOptions {
	opts := domain.RunOptions(c.RunOptions).Clone()
	if len(c.DisabledRules) > 0 {
		rules := map[string]any{}
		if existing, ok := opts["rules"].(map[string]any); ok {
			for k, v := range existing {
				rules[k] = v
			}
		}
		for k, v := range domain.DisableRules(c.DisabledRules...)["rules"].(map[string]any) {
			rules[k] = v
		}
		opts["rules"] = rules
	}
	if len(c.Tags) > 0 {
		opts = opts.Merge(domain.RunOnlyTags(c.Tags...))
	}
	return opts
}

// ToAuditConfiguration converts the audit section into the core's configuration.
// Configured weights are laid over the default table, so a file that sets only
// "critical" keeps the default weights for the other levels.
func (c *Config) ToAuditConfiguration() domain.AuditConfiguration {
	overrides := make(map[domain.Impact]int, len(c.Audit.SeverityWeights))
	for name, w := range c.Audit.SeverityWeights {
		overrides[domain.Impact(name)] = w
	}
	return domain.AuditConfiguration{
		SeverityWeights: domain.OverlaySeverityWeights(overrides),
		FailFast:        c.Audit.FailFast,
		RunOptions:      c.Audit.BuildRunOptions(),
	}
}

// SaveConfig saves configuration to a YAML file
func SaveConfig(config *Config, path string) error {
	// Create a new viper instance to avoid race conditions
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("audit", config.Audit)
	v.Set("axe", config.Axe)
	v.Set("browser", config.Browser)
	v.Set("output", config.Output)
	v.Set("scan", config.Scan)
	v.Set("performance", config.Performance)
	v.Set("log_level", config.LogLevel)

	return v.WriteConfig()
}
