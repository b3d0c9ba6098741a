package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/ludo-technologies/a11yscan/app"
	"github.com/ludo-technologies/a11yscan/browser"
	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/internal/config"
	"github.com/ludo-technologies/a11yscan/internal/constants"
	"github.com/ludo-technologies/a11yscan/internal/parser"
	"github.com/ludo-technologies/a11yscan/service"
	"github.com/spf13/cobra"
)

// CheckExitError is a custom error type for check command exit codes
type CheckExitError struct {
	Code    int
	Message string
}

func (e *CheckExitError) Error() string {
	return e.Message
}

// checkOptions holds the flag values of one check invocation
type checkOptions struct {
	configPath    string
	format        string
	outputPath    string
	json          bool
	verbose       bool
	showDetails   bool
	failFast      bool
	disabledRules []string
	tags          []string
	concurrency   int
	strategy      string
	timeout       time.Duration
}

func checkCmd() *cobra.Command {
	return newCheckCmd(&checkOptions{})
}

// newCheckCmd builds the check command with its flags bound to opts
func newCheckCmd(opts *checkOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "check [file|dir|url...]",
		Short: "Audit HTML files and pages for accessibility violations",
		Long: `Audit HTML files, directories and http(s) URLs with axe-core.

Exit codes:
  0 - No violations
  1 - Accessibility violations found
  2 - A target could not be audited (browser, config or parse error)

Examples:
  # Audit every HTML file under public/
  a11yscan check public/

  # Audit a running site, failing on the first violation
  a11yscan check --fail-fast https://localhost:8080/

  # Only WCAG 2.1 AA rules, skipping color contrast
  a11yscan check --tags wcag2a,wcag2aa,wcag21aa --disable-rule color-contrast site/

  # JSON output for machine parsing
  a11yscan check --json public/ > report.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runCheck(cmd, args, opts)
		},
		SilenceUsage:  true, // Don't print usage on errors (we handle our own output)
		SilenceErrors: true, // Don't print error messages (we handle our own output)
	}

	cmd.Flags().StringVarP(&opts.configPath, "config", "c", "",
		"Path to config file")
	cmd.Flags().StringVarP(&opts.format, "format", "f", constants.OutputFormatText,
		"Output format: text, json, yaml, csv, html")
	cmd.Flags().StringVarP(&opts.outputPath, "output", "o", "",
		"Write the report to a file instead of stdout")
	cmd.Flags().BoolVar(&opts.json, "json", false,
		"Output results as JSON (same as --format json)")
	cmd.Flags().BoolVarP(&opts.verbose, "verbose", "v", false,
		"Enable debug logging")
	cmd.Flags().BoolVar(&opts.showDetails, "details", false,
		"List affected elements under each violation")
	cmd.Flags().BoolVar(&opts.failFast, "fail-fast", false,
		"Treat any violation as a policy failure")
	cmd.Flags().StringSliceVar(&opts.disabledRules, "disable-rule", nil,
		"axe rule IDs to switch off (repeatable)")
	cmd.Flags().StringSliceVar(&opts.tags, "tags", nil,
		"Only run rules carrying one of these tags, e.g. wcag2aa")
	cmd.Flags().IntVarP(&opts.concurrency, "concurrency", "j", 0,
		"Number of targets audited at once")
	cmd.Flags().StringVar(&opts.strategy, "page-strategy", "",
		"How URLs are audited: in-page or serialize")
	cmd.Flags().DurationVar(&opts.timeout, "timeout", 0,
		"Timeout for the whole run, e.g. 2m")

	return cmd
}

func runCheck(cmd *cobra.Command, args []string, opts *checkOptions) error {
	if len(args) == 0 {
		return &CheckExitError{Code: constants.ExitCodeError, Message: "no targets specified"}
	}

	loader := service.NewConfigurationLoader()

	configTarget := args[0]
	if app.IsURL(configTarget) {
		configTarget = ""
	}
	cfg, err := loader.LoadConfig(opts.configPath, configTarget)
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	// Rule selection changes the run options, so it is applied to the config before building the request
	if cmd.Flags().Changed("disable-rule") {
		cfg.Audit.DisabledRules = append(cfg.Audit.DisabledRules, opts.disabledRules...)
	}
	if cmd.Flags().Changed("tags") {
		cfg.Audit.Tags = opts.tags
	}

	req := loader.MergeConfig(loader.BuildCheckRequest(cfg, args), overridesFromFlags(cmd, opts))
	if err := loader.ValidateRequest(req); err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	logger := newLogger(cmd.ErrOrStderr(), cfg.LogLevel, opts.verbose)
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx = logger.WithContext(ctx)

	var out io.Writer = cmd.OutOrStdout()
	if req.OutputPath != "" {
		f, err := os.Create(req.OutputPath)
		if err != nil {
			return &CheckExitError{Code: constants.ExitCodeError, Message: fmt.Sprintf("failed to create output file: %v", err)}
		}
		defer f.Close()
		out = f
	}
	req.OutputWriter = out

	b, err := browser.Launch(ctx, browserOptions(cfg))
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}
	defer func() {
		if err := b.Close(); err != nil {
			logger.Warn().Err(err).Msg("failed to close browser")
		}
	}()

	auditor, err := browser.NewAuditor(b, browser.AuditorConfig{
		ScriptPath: cfg.Axe.ScriptPath,
		ScriptURL:  cfg.Axe.ScriptURL,
	})
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	// Progress bars are drawn on stderr and only for human-readable output
	pm := service.NewProgressManager(req.OutputFormat == domain.OutputFormatText && req.OutputPath == "")
	defer pm.Close()

	uc, err := app.NewCheckUseCaseBuilder().
		WithAuditor(auditor).
		WithPageOpener(&browserOpener{browser: b}).
		WithValidator(parser.NewValidator()).
		WithFormatter(&service.OutputFormatterImpl{ShowDetails: req.ShowDetails}).
		WithProgress(pm).
		Build()
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	result, err := uc.Execute(ctx, *req)
	if err != nil {
		return &CheckExitError{Code: constants.ExitCodeError, Message: err.Error()}
	}

	if req.OutputPath != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Report written to %s\n", req.OutputPath)
	}

	if result.ExitCode != constants.ExitCodeOK {
		return &CheckExitError{Code: result.ExitCode}
	}
	return nil
}

// overridesFromFlags collects the flags set on the command line
func overridesFromFlags(cmd *cobra.Command, opts *checkOptions) *domain.CheckRequest {
	override := &domain.CheckRequest{
		OutputPath: opts.outputPath,
		ConfigPath: opts.configPath,
		Verbose:    opts.verbose,
	}

	flags := cmd.Flags()
	if flags.Changed("format") {
		override.OutputFormat = domain.OutputFormat(opts.format)
	}
	if opts.json {
		override.OutputFormat = domain.OutputFormatJSON
	}
	if flags.Changed("details") {
		override.ShowDetails = opts.showDetails
	}
	if flags.Changed("fail-fast") {
		override.Audit.FailFast = opts.failFast
	}
	if flags.Changed("concurrency") {
		override.MaxConcurrency = opts.concurrency
	}
	if flags.Changed("page-strategy") {
		override.PageStrategy = domain.PageStrategy(opts.strategy)
	}
	if flags.Changed("timeout") {
		override.TimeoutSeconds = int(opts.timeout.Seconds())
	}
	return override
}

func browserOptions(cfg *config.Config) browser.Options {
	return browser.Options{
		ExecPath:     cfg.Browser.ExecPath,
		Headful:      cfg.Browser.Headful,
		NoSandbox:    cfg.Browser.NoSandbox,
		WindowWidth:  cfg.Browser.WindowWidth,
		WindowHeight: cfg.Browser.WindowHeight,
	}
}

// browserOpener opens URL targets as tabs of one browser
type browserOpener struct {
	browser *browser.Browser
}

func (o *browserOpener) Open(ctx context.Context, url string) (app.RemotePage, error) {
	page, err := o.browser.NewPage(ctx)
	if err != nil {
		return nil, err
	}
	if err := page.Navigate(ctx, url); err != nil {
		_ = page.Close()
		return nil, err
	}
	return page, nil
}
