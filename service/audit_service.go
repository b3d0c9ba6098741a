package service

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/internal/reporter"
	"github.com/rs/zerolog"
)

// AuditServiceImpl implements domain.AuditService: resolve, audit, normalize, then
// apply the custom reporter and fail-fast policy
type AuditServiceImpl struct {
	auditor  domain.Auditor
	resolver domain.InputResolver
	config   domain.AuditConfiguration
}

// NewAuditService creates an audit service. The configuration is copied; later changes
// to cfg's maps do not affect the service.
func NewAuditService(auditor domain.Auditor, resolver domain.InputResolver, cfg domain.AuditConfiguration) *AuditServiceImpl {
	if resolver == nil {
		resolver = NewDOMResolver(nil, nil)
	}
	return &AuditServiceImpl{
		auditor:  auditor,
		resolver: resolver,
		config:   cfg.Clone(),
	}
}

// Config returns a copy of the stored configuration
func (s *AuditServiceImpl) Config() domain.AuditConfiguration {
	return s.config.Clone()
}

// TestValue classifies v with the service's resolver and audits it
func (s *AuditServiceImpl) TestValue(ctx context.Context, v any, override domain.RunOptions) (*domain.Report, error) {
	input, err := s.resolver.Classify(v)
	if err != nil {
		return nil, err
	}
	return s.Test(ctx, input, override)
}

// Test audits input. When fail-fast is enabled and the report has findings, the report
// is returned together with a *domain.PolicyError, after the custom reporter has seen it.
func (s *AuditServiceImpl) Test(ctx context.Context, input domain.Input, override domain.RunOptions) (*domain.Report, error) {
	if s.auditor == nil {
		return nil, fmt.Errorf("audit service has no auditor configured")
	}
	logger := zerolog.Ctx(ctx)

	doc, err := s.resolver.Resolve(ctx, input)
	if err != nil {
		logger.Debug().Err(err).Msg("input resolution failed")
		return nil, err
	}

	opts := s.config.RunOptions.Merge(override)
	logger.Debug().
		Bool("remote", doc.IsRemote()).
		Int("run_options", len(opts)).
		Msg("running auditor")

	raw, err := s.auditor.Run(ctx, doc, opts)
	if err != nil {
		return nil, err
	}

	report := reporter.Normalize(raw, &s.config)
	logger.Debug().
		Bool("passed", report.Passed).
		Int("violations", len(report.Findings)).
		Int("severity_score", report.SeverityScore).
		Msg("audit complete")

	if s.config.CustomReporter != nil {
		if err := s.config.CustomReporter(report); err != nil {
			return report, fmt.Errorf("custom reporter failed: %w", err)
		}
	}

	if s.config.FailFast && !report.Passed {
		return report, &domain.PolicyError{Report: report}
	}

	return report, nil
}
