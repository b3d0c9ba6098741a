// Package gomegaaxe provides a gomega matcher for accessibility audits
package gomegaaxe

import (
	"context"
	"fmt"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/matchers"
	"github.com/onsi/gomega/format"
	"github.com/onsi/gomega/types"
)

// BeAccessible succeeds when the actual value audits without violations.
// Audit errors are returned from Match and fail the assertion with the error text.
func BeAccessible(svc domain.AuditService, override domain.RunOptions) types.GomegaMatcher {
	return &accessibleMatcher{svc: svc, override: override, ctx: context.Background()}
}

// BeAccessibleWithContext is BeAccessible with an explicit context for the audit
func BeAccessibleWithContext(ctx context.Context, svc domain.AuditService, override domain.RunOptions) types.GomegaMatcher {
	return &accessibleMatcher{svc: svc, override: override, ctx: ctx}
}

type accessibleMatcher struct {
	ctx      context.Context
	svc      domain.AuditService
	override domain.RunOptions
	result   matchers.Result
}

func (m *accessibleMatcher) Match(actual interface{}) (bool, error) {
	result, err := matchers.Match(m.ctx, m.svc, actual, m.override)
	if err != nil {
		return false, err
	}
	m.result = result
	return result.Pass, nil
}

func (m *accessibleMatcher) FailureMessage(actual interface{}) string {
	return fmt.Sprintf("Expected\n%s\nto have no accessibility violations, found:\n%s",
		format.Object(actual, 1), m.result.Message())
}

func (m *accessibleMatcher) NegatedFailureMessage(actual interface{}) string {
	return fmt.Sprintf("Expected\n%s\nto have accessibility violations, found none", format.Object(actual, 1))
}
