// Package dom provides an in-memory HTML document the auditor can read directly
package dom

import (
	"bytes"
	"fmt"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

const skeleton = "<!DOCTYPE html><html><head></head><body></body></html>"

// Environment is a mutable HTML document with a single body.
// SetBodyHTML replaces the body content in place and SetDocumentHTML replaces the
// whole tree under the same document node, so every caller sharing an Environment
// observes the last write.
type Environment struct {
	mu       sync.Mutex
	document *html.Node
	body     *html.Node
}

var (
	defaultOnce sync.Once
	defaultEnv  *Environment
)

// Default returns the process-wide environment
func Default() *Environment {
	defaultOnce.Do(func() {
		defaultEnv = New()
	})
	return defaultEnv
}

// New creates an empty environment
func New() *Environment {
	doc, err := html.Parse(strings.NewReader(skeleton))
	if err != nil {
		// html.Parse only fails on reader errors
		panic(fmt.Sprintf("dom: parse skeleton: %v", err))
	}
	return &Environment{document: doc, body: findElement(doc, atom.Body)}
}

// Document returns the document root
func (e *Environment) Document() *html.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.document
}

// Body returns the body element
func (e *Environment) Body() *html.Node {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.body
}

// IsDocument reports whether markup is a whole document rather than body content:
// its first token after whitespace and comments is a doctype or an <html> tag.
func IsDocument(markup string) bool {
	z := html.NewTokenizer(strings.NewReader(markup))
	for {
		switch z.Next() {
		case html.ErrorToken:
			return false
		case html.CommentToken:
			continue
		case html.TextToken:
			if strings.TrimSpace(strings.TrimPrefix(string(z.Text()), "\uFEFF")) != "" {
				return false
			}
		case html.DoctypeToken:
			return true
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := z.TagName()
			return atom.Lookup(name) == atom.Html
		default:
			return false
		}
	}
}

// SetDocumentHTML parses markup as a whole document, replaces the tree under the
// document node with it and returns the document node. The doctype and the
// attributes of <html> survive, which body content alone cannot carry.
func (e *Environment) SetDocumentHTML(markup string) (*html.Node, error) {
	parsed, err := html.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, fmt.Errorf("failed to parse document: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	removeChildren(e.document)
	for child := parsed.FirstChild; child != nil; {
		next := child.NextSibling
		parsed.RemoveChild(child)
		e.document.AppendChild(child)
		child = next
	}
	e.body = findElement(e.document, atom.Body)
	if e.body == nil {
		// A frameset document has no body; give body writes somewhere to land
		e.body = &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
		if root := findElement(e.document, atom.Html); root != nil {
			root.AppendChild(e.body)
		}
	}
	return e.document, nil
}

// SetBodyHTML replaces the body's children with the parsed markup and returns the body
func (e *Environment) SetBodyHTML(markup string) (*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to parse body content: %w", err)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	removeChildren(e.body)
	for _, n := range nodes {
		e.body.AppendChild(n)
	}
	return e.body, nil
}

// BodyHTML serializes the body's children
func (e *Environment) BodyHTML() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return InnerHTML(e.body)
}

// CreateElement parses markup and returns its first element, detached from any document
func CreateElement(markup string) (*html.Node, error) {
	nodes, err := html.ParseFragment(strings.NewReader(markup), &html.Node{
		Type:     html.ElementNode,
		Data:     "body",
		DataAtom: atom.Body,
	})
	if err != nil {
		return nil, err
	}
	for _, n := range nodes {
		if n.Type == html.ElementNode {
			return n, nil
		}
	}
	return nil, fmt.Errorf("no element in %q", markup)
}

// InnerHTML renders the children of n
func InnerHTML(n *html.Node) string {
	var buf bytes.Buffer
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		_ = html.Render(&buf, child)
	}
	return buf.String()
}

// OuterHTML renders n itself
func OuterHTML(n *html.Node) string {
	var buf bytes.Buffer
	_ = html.Render(&buf, n)
	return buf.String()
}

func removeChildren(n *html.Node) {
	for child := n.FirstChild; child != nil; {
		next := child.NextSibling
		n.RemoveChild(child)
		child = next
	}
}

func findElement(n *html.Node, a atom.Atom) *html.Node {
	if n.Type == html.ElementNode && n.DataAtom == a {
		return n
	}
	for child := n.FirstChild; child != nil; child = child.NextSibling {
		if found := findElement(child, a); found != nil {
			return found
		}
	}
	return nil
}
