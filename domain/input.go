package domain

import (
	"bytes"
	"context"
	"fmt"

	"golang.org/x/net/html"
)

// InputKind discriminates the Input variants
type InputKind string

const (
	InputKindElement InputKind = "element"
	InputKindMarkup  InputKind = "markup"
	InputKindPage    InputKind = "page"
	InputKindRegion  InputKind = "region"
)

// Input is one of Element, Markup, Page or Region
type Input interface {
	Kind() InputKind
	isInput()
}

// Element is a live node of an in-memory DOM, audited as-is
type Element struct {
	Node *html.Node
}

// Markup is HTML that is materialized into a DocumentSink before auditing. Body
// content replaces the sink's body; a whole document (doctype or <html> first)
// replaces the sink's document.
type Markup string

// Page is a whole remote browser page
type Page struct {
	Handle PageHandle
}

// Region is a scoped element handle inside a remote browser page
type Region struct {
	Handle RegionHandle
}

func (Element) Kind() InputKind { return InputKindElement }
func (Markup) Kind() InputKind  { return InputKindMarkup }
func (Page) Kind() InputKind    { return InputKindPage }
func (Region) Kind() InputKind  { return InputKindRegion }

func (Element) isInput() {}
func (Markup) isInput()  {}
func (Page) isInput()    {}
func (Region) isInput()  {}

// HandleKind is the explicit discriminant remote handles may report
type HandleKind string

const (
	HandleKindPage   HandleKind = "page"
	HandleKindRegion HandleKind = "region"
)

// DiscriminatedHandle is implemented by remote handles that declare what they are.
// Handles without it are classified by probing their capabilities.
type DiscriminatedHandle interface {
	HandleKind() HandleKind
}

// PageHandle is a remote browser page
type PageHandle interface {
	// Content returns the serialized markup of the whole page
	Content(ctx context.Context) (string, error)

	// Evaluate calls a JavaScript function declaration inside the page with JSON-encodable
	// arguments and decodes its (awaited) return value into out, which may be nil
	Evaluate(ctx context.Context, fn string, out any, args ...any) error
}

// RegionHandle is a scoped element inside a remote browser page
type RegionHandle interface {
	// InnerHTML returns the serialized markup of the region's children
	InnerHTML(ctx context.Context) (string, error)
}

// Navigator is the capability that identifies a page when no discriminant is present
type Navigator interface {
	Navigate(ctx context.Context, url string) error
}

// Clicker is the capability that identifies a region when no discriminant is present
type Clicker interface {
	Click(ctx context.Context) error
}

// AuditableDocument is the normalized form handed to the auditor.
// Exactly one of Node and Page is set.
type AuditableDocument struct {
	// Node is an element, the body of a DocumentSink, or its document node when a
	// whole document was materialized
	Node *html.Node

	// Page is set when the audit executes inside a remote page
	Page PageHandle
}

// IsRemote reports whether the audit runs inside a remote page
func (d AuditableDocument) IsRemote() bool {
	return d.Page != nil
}

// Markup renders the document node back to HTML
func (d AuditableDocument) Markup() (string, error) {
	if d.Node == nil {
		return "", fmt.Errorf("document has no local node")
	}
	var buf bytes.Buffer
	if err := html.Render(&buf, d.Node); err != nil {
		return "", fmt.Errorf("failed to render document: %w", err)
	}
	return buf.String(), nil
}

// DocumentSink is a document the auditor can read directly. Replacing the body or
// the document is a mutation visible to every holder of the sink.
type DocumentSink interface {
	// SetBodyHTML replaces the body content with markup and returns the body node
	SetBodyHTML(markup string) (*html.Node, error)

	// SetDocumentHTML replaces the whole document with markup and returns the document node
	SetDocumentHTML(markup string) (*html.Node, error)
}

// MarkupValidator checks that markup can be turned into a document
type MarkupValidator interface {
	Validate(markup string) error
}

// PageStrategy selects how a resolver handles whole pages
type PageStrategy string

const (
	// PageStrategySerialize audits the page's serialized markup locally
	PageStrategySerialize PageStrategy = "serialize"

	// PageStrategyInPage runs the auditor inside the page itself
	PageStrategyInPage PageStrategy = "in-page"
)

// InputResolver turns inputs into auditable documents
type InputResolver interface {
	Resolve(ctx context.Context, input Input) (AuditableDocument, error)

	// Classify maps an arbitrary value onto an Input variant
	Classify(v any) (Input, error)
}
