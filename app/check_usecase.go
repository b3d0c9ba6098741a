package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/internal/config"
	"github.com/ludo-technologies/a11yscan/internal/dom"
	"github.com/ludo-technologies/a11yscan/internal/version"
	"github.com/ludo-technologies/a11yscan/service"
	"github.com/rs/zerolog"
)

// RemotePage is a browser page opened for one URL target
type RemotePage interface {
	domain.PageHandle
	Close() error
}

// PageOpener opens URL targets in a browser
type PageOpener interface {
	Open(ctx context.Context, url string) (RemotePage, error)
}

// CheckUseCase audits every target of a check request
type CheckUseCase struct {
	auditor    domain.Auditor
	opener     PageOpener
	validator  domain.MarkupValidator
	formatter  domain.OutputFormatter
	progress   domain.ProgressManager
	fileHelper *FileHelper
}

// Execute collects targets, audits them in parallel and writes the result.
// Per-target failures are recorded in the result; only setup failures return an error.
func (uc *CheckUseCase) Execute(ctx context.Context, req domain.CheckRequest) (*domain.CheckResult, error) {
	start := time.Now()
	logger := zerolog.Ctx(ctx)

	urls, paths := SplitTargets(req.Targets)
	files, err := uc.fileHelper.CollectHTMLFiles(paths, CollectOptions{
		Recursive:        req.Recursive,
		RespectGitignore: req.RespectGitignore,
		IncludePatterns:  req.IncludePatterns,
		ExcludePatterns:  req.ExcludePatterns,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to collect HTML files: %w", err)
	}
	if len(files) == 0 && len(urls) == 0 {
		return nil, fmt.Errorf("no HTML files or URLs found in the specified targets")
	}
	if len(urls) > 0 && uc.opener == nil {
		return nil, fmt.Errorf("URL targets require a browser")
	}

	result := &domain.CheckResult{
		RunID:   uuid.NewString(),
		Version: version.GetVersion(),
		Targets: make([]domain.TargetResult, len(files)+len(urls)),
	}
	logger.Info().
		Str("run_id", result.RunID).
		Int("files", len(files)).
		Int("urls", len(urls)).
		Msg("starting accessibility check")

	// Each task owns one slot of result.Targets
	tasks := make([]domain.ExecutableTask, 0, len(result.Targets))
	for i, file := range files {
		slot := &result.Targets[i]
		*slot = domain.TargetResult{Target: file, Kind: domain.TargetKindFile}
		tasks = append(tasks, uc.newTask(slot, req, func(ctx context.Context) (*domain.Report, error) {
			return uc.auditFile(ctx, file, req)
		}))
	}
	for i, u := range urls {
		slot := &result.Targets[len(files)+i]
		*slot = domain.TargetResult{Target: u, Kind: domain.TargetKindURL}
		tasks = append(tasks, uc.newTask(slot, req, func(ctx context.Context) (*domain.Report, error) {
			return uc.auditURL(ctx, u, req)
		}))
	}

	executor := service.NewParallelExecutorWithProgress(&config.PerformanceConfig{
		MaxConcurrency: req.MaxConcurrency,
		TimeoutSeconds: req.TimeoutSeconds,
	}, uc.progress)
	if err := executor.Execute(ctx, tasks); err != nil {
		// failures are already recorded per target
		logger.Debug().Err(err).Msg("some targets failed")
	}
	for i := range result.Targets {
		t := &result.Targets[i]
		if t.Report == nil && t.Error == "" {
			t.Error = "target was not audited before the run ended"
		}
	}

	result.Summarize()
	result.Duration = time.Since(start).Milliseconds()
	result.GeneratedAt = time.Now().Format(time.RFC3339)

	if req.OutputWriter != nil && uc.formatter != nil {
		if err := uc.formatter.Write(result, req.OutputFormat, req.OutputWriter); err != nil {
			return result, fmt.Errorf("failed to write output: %w", err)
		}
	}

	return result, nil
}

// newTask wraps an audit so its outcome lands in slot
func (uc *CheckUseCase) newTask(slot *domain.TargetResult, req domain.CheckRequest, audit func(ctx context.Context) (*domain.Report, error)) *service.FuncTask {
	return &service.FuncTask{
		TaskName: slot.Target,
		Run: func(ctx context.Context) (interface{}, error) {
			start := time.Now()
			report, err := audit(ctx)
			slot.DurationMs = time.Since(start).Milliseconds()
			slot.Report = report

			var policyErr *domain.PolicyError
			switch {
			case errors.As(err, &policyErr):
				slot.PolicyFailure = true
				slot.Error = err.Error()
				if slot.Report == nil {
					slot.Report = policyErr.Report
				}
			case err != nil:
				slot.Error = err.Error()
			}

			zerolog.Ctx(ctx).Debug().
				Str("target", slot.Target).
				Bool("failed", slot.Failed()).
				Int64("duration_ms", slot.DurationMs).
				Msg("target audited")
			return slot, err
		},
	}
}

// auditFile audits the markup of one HTML file in a document of its own
func (uc *CheckUseCase) auditFile(ctx context.Context, path string, req domain.CheckRequest) (*domain.Report, error) {
	content, err := uc.fileHelper.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}

	resolver := service.NewDOMResolver(dom.New(), uc.validator)
	svc := service.NewAuditService(uc.auditor, resolver, req.Audit)
	return svc.Test(ctx, domain.Markup(content), nil)
}

// auditURL opens a URL and audits it with the configured page strategy
func (uc *CheckUseCase) auditURL(ctx context.Context, url string, req domain.CheckRequest) (*domain.Report, error) {
	page, err := uc.opener.Open(ctx, url)
	if err != nil {
		return nil, domain.NewAuditorError("load", err)
	}
	defer func() {
		if cerr := page.Close(); cerr != nil {
			zerolog.Ctx(ctx).Warn().Err(cerr).Str("url", url).Msg("failed to close page")
		}
	}()

	resolver := service.NewBrowserResolver(dom.New(), uc.validator, req.PageStrategy)
	svc := service.NewAuditService(uc.auditor, resolver, req.Audit)
	return svc.Test(ctx, domain.Page{Handle: page}, nil)
}

// CheckUseCaseBuilder builds a CheckUseCase
type CheckUseCaseBuilder struct {
	auditor    domain.Auditor
	opener     PageOpener
	validator  domain.MarkupValidator
	formatter  domain.OutputFormatter
	progress   domain.ProgressManager
	fileHelper *FileHelper
}

// NewCheckUseCaseBuilder creates a new builder
func NewCheckUseCaseBuilder() *CheckUseCaseBuilder {
	return &CheckUseCaseBuilder{}
}

// WithAuditor sets the auditor
func (b *CheckUseCaseBuilder) WithAuditor(a domain.Auditor) *CheckUseCaseBuilder {
	b.auditor = a
	return b
}

// WithPageOpener sets how URL targets are opened
func (b *CheckUseCaseBuilder) WithPageOpener(o PageOpener) *CheckUseCaseBuilder {
	b.opener = o
	return b
}

// WithValidator sets the markup validator
func (b *CheckUseCaseBuilder) WithValidator(v domain.MarkupValidator) *CheckUseCaseBuilder {
	b.validator = v
	return b
}

// WithFormatter sets the output formatter
func (b *CheckUseCaseBuilder) WithFormatter(f domain.OutputFormatter) *CheckUseCaseBuilder {
	b.formatter = f
	return b
}

// WithProgress sets the progress manager
func (b *CheckUseCaseBuilder) WithProgress(p domain.ProgressManager) *CheckUseCaseBuilder {
	b.progress = p
	return b
}

// WithFileHelper sets the file helper
func (b *CheckUseCaseBuilder) WithFileHelper(fh *FileHelper) *CheckUseCaseBuilder {
	b.fileHelper = fh
	return b
}

// Build creates the CheckUseCase
func (b *CheckUseCaseBuilder) Build() (*CheckUseCase, error) {
	if b.auditor == nil {
		return nil, fmt.Errorf("auditor is required")
	}

	uc := &CheckUseCase{
		auditor:    b.auditor,
		opener:     b.opener,
		validator:  b.validator,
		formatter:  b.formatter,
		progress:   b.progress,
		fileHelper: b.fileHelper,
	}
	if uc.fileHelper == nil {
		uc.fileHelper = NewFileHelper()
	}
	if uc.progress == nil {
		uc.progress = &service.NoOpProgressManager{}
	}
	return uc, nil
}
