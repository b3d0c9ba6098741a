package service

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/internal/config"
	"github.com/ludo-technologies/a11yscan/internal/constants"
)

// ConfigurationLoaderImpl turns configuration files into check requests
type ConfigurationLoaderImpl struct{}

// NewConfigurationLoader creates a new configuration loader service
func NewConfigurationLoader() *ConfigurationLoaderImpl {
	return &ConfigurationLoaderImpl{}
}

// LoadConfig loads configuration for the given target. An empty path searches
// upward from target for a config file.
func (c *ConfigurationLoaderImpl) LoadConfig(path, target string) (*config.Config, error) {
	cfg, err := config.LoadConfigWithTarget(path, target)
	if err != nil {
		return nil, domain.NewConfigError("failed to load configuration file", err)
	}
	return cfg, nil
}

// LoadDefaultConfig loads the discovered configuration, falling back to built-in defaults
func (c *ConfigurationLoaderImpl) LoadDefaultConfig() *config.Config {
	cfg, err := config.LoadConfigWithTarget("", "")
	if err == nil {
		return cfg
	}
	return config.DefaultConfig()
}

// FindDefaultConfigFile returns the first config file found in the working directory
// or one of its parents
func (c *ConfigurationLoaderImpl) FindDefaultConfigFile() string {
	for _, file := range constants.ConfigFileNames {
		if _, err := os.Stat(file); err == nil {
			return file
		}
	}

	currentDir, err := os.Getwd()
	if err != nil {
		return ""
	}

	for {
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			break
		}
		currentDir = parentDir

		for _, file := range constants.ConfigFileNames {
			configPath := filepath.Join(currentDir, file)
			if _, err := os.Stat(configPath); err == nil {
				return configPath
			}
		}
	}

	return ""
}

// BuildCheckRequest converts a Config to a CheckRequest for the given targets
func (c *ConfigurationLoaderImpl) BuildCheckRequest(cfg *config.Config, targets []string) *domain.CheckRequest {
	return &domain.CheckRequest{
		Targets: targets,

		OutputFormat: domain.OutputFormat(cfg.Output.Format),
		ShowDetails:  cfg.Output.ShowDetails,

		Recursive:        cfg.Scan.Recursive,
		RespectGitignore: cfg.Scan.RespectGitignore,
		IncludePatterns:  cfg.Scan.IncludePatterns,
		ExcludePatterns:  cfg.Scan.ExcludePatterns,

		MaxConcurrency: cfg.Performance.MaxConcurrency,
		TimeoutSeconds: cfg.Performance.TimeoutSeconds,
		PageStrategy:   domain.PageStrategy(cfg.Audit.PageStrategy),

		Audit: cfg.ToAuditConfiguration(),
	}
}

// MergeConfig applies the non-zero values of override on top of base.
// Run options are merged shallowly, override keys winning.
func (c *ConfigurationLoaderImpl) MergeConfig(base *domain.CheckRequest, override *domain.CheckRequest) *domain.CheckRequest {
	merged := *base
	merged.Audit = base.Audit.Clone()

	// Targets always come from command arguments
	if len(override.Targets) > 0 {
		merged.Targets = override.Targets
	}

	if override.OutputFormat != "" {
		merged.OutputFormat = override.OutputFormat
	}
	if override.OutputWriter != nil {
		merged.OutputWriter = override.OutputWriter
	}
	if override.OutputPath != "" {
		merged.OutputPath = override.OutputPath
	}
	if override.ShowDetails {
		merged.ShowDetails = true
	}
	if override.Verbose {
		merged.Verbose = true
	}
	if override.ConfigPath != "" {
		merged.ConfigPath = override.ConfigPath
	}

	if override.MaxConcurrency > 0 {
		merged.MaxConcurrency = override.MaxConcurrency
	}
	if override.TimeoutSeconds > 0 {
		merged.TimeoutSeconds = override.TimeoutSeconds
	}
	if override.PageStrategy != "" {
		merged.PageStrategy = override.PageStrategy
	}

	if override.Audit.FailFast {
		merged.Audit.FailFast = true
	}
	for impact, w := range override.Audit.SeverityWeights {
		merged.Audit.SeverityWeights[impact] = w
	}
	if len(override.Audit.RunOptions) > 0 {
		merged.Audit.RunOptions = merged.Audit.RunOptions.Merge(override.Audit.RunOptions)
	}

	return &merged
}

// ValidateRequest validates a merged check request
func (c *ConfigurationLoaderImpl) ValidateRequest(req *domain.CheckRequest) error {
	if len(req.Targets) == 0 {
		return fmt.Errorf("no targets specified")
	}

	switch req.OutputFormat {
	case domain.OutputFormatText, domain.OutputFormatJSON, domain.OutputFormatYAML,
		domain.OutputFormatCSV, domain.OutputFormatHTML:
	default:
		return fmt.Errorf("invalid output format: %s (must be one of: text, json, yaml, csv, html)", req.OutputFormat)
	}

	switch req.PageStrategy {
	case "", domain.PageStrategyInPage, domain.PageStrategySerialize:
	default:
		return fmt.Errorf("invalid page strategy: %s (must be one of: in-page, serialize)", req.PageStrategy)
	}

	if req.MaxConcurrency < 0 {
		return fmt.Errorf("max concurrency cannot be negative, got %d", req.MaxConcurrency)
	}

	for impact, w := range req.Audit.SeverityWeights {
		if w < 0 {
			return fmt.Errorf("severity weight for %s cannot be negative, got %d", impact, w)
		}
	}

	return nil
}
