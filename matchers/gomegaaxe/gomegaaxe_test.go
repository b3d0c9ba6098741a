package gomegaaxe

import (
	"context"
	"testing"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/internal/dom"
	"github.com/ludo-technologies/a11yscan/internal/testutil"
	"github.com/ludo-technologies/a11yscan/service"
	. "github.com/onsi/gomega"
)

func newService(cfg domain.AuditConfiguration) *service.AuditServiceImpl {
	return service.NewAuditService(testutil.RuleAuditor{}, service.NewDOMResolver(dom.New(), nil), cfg)
}

func TestBeAccessible(t *testing.T) {
	g := NewWithT(t)
	svc := newService(domain.DefaultAuditConfiguration())

	g.Expect(`<button>Send</button>`).To(BeAccessible(svc, nil))
	g.Expect(`<img src="a.png">`).NotTo(BeAccessible(svc, nil))
	g.Expect(`<img src="a.png">`).To(BeAccessible(svc, domain.DisableRules("image-alt")))
	g.Expect(testutil.CreateTestElement(t, `<img src="a.png" alt="A">`)).To(BeAccessibleWithContext(context.Background(), svc, nil))
}

func TestBeAccessible_FailureMessage(t *testing.T) {
	g := NewWithT(t)
	matcher := BeAccessible(newService(domain.DefaultAuditConfiguration()), nil)

	ok, err := matcher.Match(`<button></button>`)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(ok).To(BeFalse())
	g.Expect(matcher.FailureMessage(`<button></button>`)).To(ContainSubstring("SERIOUS: Ensures buttons have discernible text"))
	g.Expect(matcher.NegatedFailureMessage(`<p></p>`)).To(ContainSubstring("to have accessibility violations, found none"))
}

func TestBeAccessible_Errors(t *testing.T) {
	g := NewWithT(t)
	cfg := domain.DefaultAuditConfiguration()
	cfg.FailFast = true
	matcher := BeAccessible(newService(cfg), nil)

	_, err := matcher.Match(`<img src="a.png">`)
	g.Expect(err).To(MatchError(domain.ErrViolationsDetected))

	_, err = BeAccessible(newService(domain.DefaultAuditConfiguration()), nil).Match(struct{}{})
	g.Expect(err).To(MatchError(ContainSubstring("must be an HTMLElement or a valid HTML string")))
}
