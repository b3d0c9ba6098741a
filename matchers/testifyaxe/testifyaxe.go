// Package testifyaxe provides testify-style accessibility assertions
package testifyaxe

import (
	"context"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/matchers"
	"github.com/stretchr/testify/assert"
)

type tHelper interface {
	Helper()
}

// Accessible asserts that v has no accessibility violations
func Accessible(t assert.TestingT, svc domain.AuditService, v any, override domain.RunOptions, msgAndArgs ...interface{}) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	result, err := matchers.Match(context.Background(), svc, v, override)
	if err != nil {
		return assert.Fail(t, "Accessibility audit failed: "+err.Error(), msgAndArgs...)
	}
	if !result.Pass {
		return assert.Fail(t, "Expected no accessibility violations:\n"+result.Message(), msgAndArgs...)
	}
	return true
}

// NotAccessible asserts that v has at least one accessibility violation
func NotAccessible(t assert.TestingT, svc domain.AuditService, v any, override domain.RunOptions, msgAndArgs ...interface{}) bool {
	if h, ok := t.(tHelper); ok {
		h.Helper()
	}
	result, err := matchers.Match(context.Background(), svc, v, override)
	if err != nil {
		return assert.Fail(t, "Accessibility audit failed: "+err.Error(), msgAndArgs...)
	}
	if result.Pass {
		return assert.Fail(t, "Expected accessibility violations, found none", msgAndArgs...)
	}
	return true
}
