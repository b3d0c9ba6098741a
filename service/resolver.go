package service

import (
	"context"
	"reflect"

	"github.com/ludo-technologies/a11yscan/domain"
	"github.com/ludo-technologies/a11yscan/internal/dom"
	"github.com/ludo-technologies/a11yscan/internal/parser"
	"golang.org/x/net/html"
)

// Messages for inputs a resolver cannot handle
const (
	UnsupportedDOMInputMessage     = "input must be an HTMLElement or a valid HTML string"
	UnsupportedBrowserInputMessage = "input is not a page, locator, or string"
)

// ResolverImpl implements domain.InputResolver for one environment
type ResolverImpl struct {
	sink        domain.DocumentSink
	validator   domain.MarkupValidator
	strategy    domain.PageStrategy
	accepts     map[domain.InputKind]bool
	unsupported string
}

// NewDOMResolver creates a resolver for live elements and HTML strings.
// Markup is materialized into sink; a nil sink selects the process-wide dom.Default().
func NewDOMResolver(sink domain.DocumentSink, validator domain.MarkupValidator) *ResolverImpl {
	return newResolver(sink, validator, domain.PageStrategySerialize,
		UnsupportedDOMInputMessage, domain.InputKindElement, domain.InputKindMarkup)
}

// NewBrowserResolver creates a resolver for remote pages, page regions and HTML strings
func NewBrowserResolver(sink domain.DocumentSink, validator domain.MarkupValidator, strategy domain.PageStrategy) *ResolverImpl {
	if strategy == "" {
		strategy = domain.PageStrategySerialize
	}
	return newResolver(sink, validator, strategy,
		UnsupportedBrowserInputMessage, domain.InputKindPage, domain.InputKindRegion, domain.InputKindMarkup)
}

func newResolver(sink domain.DocumentSink, validator domain.MarkupValidator, strategy domain.PageStrategy, unsupported string, kinds ...domain.InputKind) *ResolverImpl {
	if sink == nil {
		sink = dom.Default()
	}
	if validator == nil {
		validator = parser.NewValidator()
	}
	accepts := make(map[domain.InputKind]bool, len(kinds))
	for _, k := range kinds {
		accepts[k] = true
	}
	return &ResolverImpl{
		sink:        sink,
		validator:   validator,
		strategy:    strategy,
		accepts:     accepts,
		unsupported: unsupported,
	}
}

// Strategy returns how whole pages are handled
func (r *ResolverImpl) Strategy() domain.PageStrategy {
	return r.strategy
}

// Resolve turns an input into an auditable document
func (r *ResolverImpl) Resolve(ctx context.Context, input domain.Input) (domain.AuditableDocument, error) {
	if input == nil || !r.accepts[input.Kind()] {
		return domain.AuditableDocument{}, domain.NewInputError(r.unsupported, nil)
	}

	switch in := input.(type) {
	case domain.Element:
		if in.Node == nil || in.Node.Type != html.ElementNode {
			return domain.AuditableDocument{}, domain.NewInputError(r.unsupported, nil)
		}
		return domain.AuditableDocument{Node: in.Node}, nil

	case domain.Markup:
		return r.resolveMarkup(string(in))

	case domain.Region:
		if isNil(in.Handle) {
			return domain.AuditableDocument{}, domain.NewInputError(r.unsupported, nil)
		}
		markup, err := in.Handle.InnerHTML(ctx)
		if err != nil {
			return domain.AuditableDocument{}, domain.NewInputError("failed to read region markup", err)
		}
		return r.resolveMarkup(markup)

	case domain.Page:
		if isNil(in.Handle) {
			return domain.AuditableDocument{}, domain.NewInputError(r.unsupported, nil)
		}
		if r.strategy == domain.PageStrategyInPage {
			return domain.AuditableDocument{Page: in.Handle}, nil
		}
		markup, err := in.Handle.Content(ctx)
		if err != nil {
			return domain.AuditableDocument{}, domain.NewInputError("failed to read page content", err)
		}
		return r.resolveMarkup(markup)
	}

	return domain.AuditableDocument{}, domain.NewInputError(r.unsupported, nil)
}

// resolveMarkup validates markup, then writes it into the sink. Whole documents
// replace the sink's document so the doctype and <html lang> reach the auditor;
// anything else replaces the body.
func (r *ResolverImpl) resolveMarkup(markup string) (domain.AuditableDocument, error) {
	if err := r.validator.Validate(markup); err != nil {
		return domain.AuditableDocument{}, domain.NewInputError("Failed to parse HTML string", err)
	}
	write := r.sink.SetBodyHTML
	if dom.IsDocument(markup) {
		write = r.sink.SetDocumentHTML
	}
	node, err := write(markup)
	if err != nil {
		return domain.AuditableDocument{}, domain.NewInputError("Failed to parse HTML string", err)
	}
	return domain.AuditableDocument{Node: node}, nil
}

// Classify maps an arbitrary value onto an Input variant. Remote handles are
// classified by their HandleKind when they declare one; otherwise a Navigate
// method marks a page and a Click method without Navigate marks a region.
func (r *ResolverImpl) Classify(v any) (domain.Input, error) {
	in, ok := classify(v)
	if !ok || !r.accepts[in.Kind()] {
		return nil, domain.NewInputError(r.unsupported, nil)
	}
	return in, nil
}

func classify(v any) (domain.Input, bool) {
	switch val := v.(type) {
	case nil:
		return nil, false
	case domain.Input:
		return val, true
	case string:
		return domain.Markup(val), true
	case []byte:
		return domain.Markup(val), true
	case *html.Node:
		return domain.Element{Node: val}, true
	}

	if d, ok := v.(domain.DiscriminatedHandle); ok {
		switch d.HandleKind() {
		case domain.HandleKindPage:
			if page, ok := v.(domain.PageHandle); ok {
				return domain.Page{Handle: page}, true
			}
		case domain.HandleKindRegion:
			if region, ok := v.(domain.RegionHandle); ok {
				return domain.Region{Handle: region}, true
			}
		}
		return nil, false
	}

	_, navigates := v.(domain.Navigator)
	_, clicks := v.(domain.Clicker)
	if page, ok := v.(domain.PageHandle); ok && navigates {
		return domain.Page{Handle: page}, true
	}
	if region, ok := v.(domain.RegionHandle); ok && clicks && !navigates {
		return domain.Region{Handle: region}, true
	}
	return nil, false
}

func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Ptr, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return rv.IsNil()
	}
	return false
}
