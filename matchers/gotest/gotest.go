// Package gotest reports accessibility audits through the standard testing package
package gotest

import (
	"testing"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/matchers"
)

// AssertAccessible audits v under t.Context() and marks t as failed when the audit fails or reports
// violations. It returns whether v is accessible.
func AssertAccessible(t testing.TB, svc domain.AuditService, v any, override domain.RunOptions) bool {
	t.Helper()
	result, err := matchers.Match(t.Context(), svc, v, override)
	if err != nil {
		t.Errorf("accessibility audit failed: %v", err)
		return false
	}
	if !result.Pass {
		t.Errorf("expected no accessibility violations, got:\n%s", result.Message())
		return false
	}
	return true
}

// RequireAccessible is AssertAccessible followed by t.FailNow on failure
func RequireAccessible(t testing.TB, svc domain.AuditService, v any, override domain.RunOptions) {
	t.Helper()
	if !AssertAccessible(t, svc, v, override) {
		t.FailNow()
	}
}

// AssertNotAccessible is the negation of AssertAccessible. Audit errors still fail t.
func AssertNotAccessible(t testing.TB, svc domain.AuditService, v any, override domain.RunOptions) bool {
	t.Helper()
	result, err := matchers.Match(t.Context(), svc, v, override)
	if err != nil {
		t.Errorf("accessibility audit failed: %v", err)
		return false
	}
	if result.Pass {
		t.Errorf("expected accessibility violations, found none")
		return false
	}
	return true
}
