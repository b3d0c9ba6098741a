package gotest

import (
	"fmt"
	"testing"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/internal/dom"
	"github.com/ludo-technologies/a11yscan/internal/testutil"
	"github.com/ludo-technologies/a11yscan/service"
)

// recordingT captures failures instead of failing the enclosing test
type recordingT struct {
	testing.TB
	errors  []string
	failNow bool
}

func (r *recordingT) Helper() {}

func (r *recordingT) Errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *recordingT) FailNow() {
	r.failNow = true
}

func newService() *service.AuditServiceImpl {
	return service.NewAuditService(testutil.RuleAuditor{}, service.NewDOMResolver(dom.New(), nil), domain.DefaultAuditConfiguration())
}

func TestAssertAccessible(t *testing.T) {
	AssertAccessible(t, newService(), `<button>Save</button>`, nil)
	AssertAccessible(t, newService(), testutil.CreateTestElement(t, `<img src="a.png" alt="">`), nil)
}

func TestAssertAccessibleReportsViolations(t *testing.T) {
	rec := &recordingT{TB: t}

	if AssertAccessible(rec, newService(), `<button></button>`, nil) {
		t.Fatal("Expected AssertAccessible to return false")
	}
	if len(rec.errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(rec.errors))
	}
	want := "SERIOUS: Ensures buttons have discernible text. See https://dequeuniversity.com/rules/axe/4.10/button-name (Rule ID: button-name)"
	if rec.errors[0] != "expected no accessibility violations, got:\n"+want {
		t.Errorf("Unexpected failure message: %q", rec.errors[0])
	}
}

func TestAssertAccessibleReportsInputErrors(t *testing.T) {
	rec := &recordingT{TB: t}

	AssertAccessible(rec, newService(), 42, nil)

	if len(rec.errors) != 1 {
		t.Fatalf("Expected 1 error, got %d", len(rec.errors))
	}
	if rec.errors[0] != "accessibility audit failed: input must be an HTMLElement or a valid HTML string" {
		t.Errorf("Unexpected failure message: %q", rec.errors[0])
	}
}

func TestRequireAccessible(t *testing.T) {
	rec := &recordingT{TB: t}
	RequireAccessible(rec, newService(), `<img src="a.png">`, nil)
	if !rec.failNow {
		t.Error("Expected FailNow to be called")
	}

	rec = &recordingT{TB: t}
	RequireAccessible(rec, newService(), `<img src="a.png">`, domain.DisableRules("image-alt"))
	if rec.failNow || len(rec.errors) != 0 {
		t.Errorf("Expected no failure, got %v", rec.errors)
	}
}

func TestAssertNotAccessible(t *testing.T) {
	AssertNotAccessible(t, newService(), `<img src="a.png">`, nil)

	rec := &recordingT{TB: t}
	if AssertNotAccessible(rec, newService(), `<p>fine</p>`, nil) {
		t.Error("Expected AssertNotAccessible to return false")
	}
	if len(rec.errors) != 1 {
		t.Errorf("Expected 1 error, got %d", len(rec.errors))
	}
}
