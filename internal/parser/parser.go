package parser

import (
	"bytes"
	"context"
	"fmt"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/html"
)

const maxSnippetLen = 40

// Location represents a position in the parsed markup
type Location struct {
	Line   int
	Column int
}

// String returns a string representation of the location
func (l Location) String() string {
	return fmt.Sprintf("line %d, column %d", l.Line, l.Column)
}

// SyntaxError describes the first malformed construct found in markup
type SyntaxError struct {
	Location Location
	Missing  string
	Snippet  string
}

func (e *SyntaxError) Error() string {
	if e.Missing != "" && e.Snippet != "" {
		return fmt.Sprintf("missing %s at %s in %q", e.Missing, e.Location, e.Snippet)
	}
	if e.Missing != "" {
		return fmt.Sprintf("missing %s at %s", e.Missing, e.Location)
	}
	return fmt.Sprintf("unexpected %q at %s", e.Snippet, e.Location)
}

// Parser wraps a tree-sitter parser for HTML
type Parser struct {
	parser *sitter.Parser
}

// NewParser creates a new HTML parser
func NewParser() *Parser {
	p := sitter.NewParser()
	p.SetLanguage(html.GetLanguage())
	return &Parser{parser: p}
}

// Close closes the parser and frees resources
func (p *Parser) Close() {
	if p.parser != nil {
		p.parser.Close()
	}
}

// Summary is the shape of a parsed fragment
type Summary struct {
	Elements  int
	TopLevel  []string
	HasErrors bool
}

// Parse parses markup and summarizes its element structure
func (p *Parser) Parse(ctx context.Context, source []byte) (*Summary, error) {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		return nil, fmt.Errorf("failed to parse markup: %v", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	summary := &Summary{HasErrors: root.HasError()}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		child := root.NamedChild(i)
		if name := tagName(child, source); name != "" {
			summary.TopLevel = append(summary.TopLevel, name)
		}
	}
	walk(root, func(n *sitter.Node) bool {
		if n.Type() == "element" || n.Type() == "script_element" || n.Type() == "style_element" {
			summary.Elements++
		}
		return true
	})
	return summary, nil
}

// Check parses markup and returns a *SyntaxError when it cannot be tokenized.
// Text-level errors the grammar reports (a bare "&" or ">", implied end tags,
// unclosed elements) are accepted the way browsers accept them. Only markup that
// ends inside a tag or a quoted attribute value is rejected.
func (p *Parser) Check(ctx context.Context, source []byte) error {
	tree, err := p.parser.ParseCtx(ctx, nil, source)
	if tree == nil {
		return fmt.Errorf("failed to parse markup: %v", err)
	}
	defer tree.Close()

	if !tree.RootNode().HasError() {
		return nil
	}
	return unterminated(source)
}

// unterminated scans source as an HTML tokenizer would and reports a tag or
// attribute value still open at end of input
func unterminated(source []byte) error {
	var (
		tagStart = -1
		quote    byte
		rawText  string
	)
	for i := 0; i < len(source); i++ {
		c := source[i]
		switch {
		case quote != 0:
			if c == quote {
				quote = 0
			}
		case tagStart >= 0:
			switch c {
			case '"', '\'':
				if lastNonSpace(source[tagStart:i]) == '=' {
					quote = c
				}
			case '>':
				rawText = rawTextElement(source[tagStart:i])
				tagStart = -1
			}
		case rawText == "" && bytes.HasPrefix(source[i:], []byte("<!--")):
			// browsers close an unterminated comment at end of input
			end := bytes.Index(source[i+4:], []byte("-->"))
			if end < 0 {
				return nil
			}
			i += 4 + end + 2
		case c == '<' && startsTag(source[i+1:]):
			if rawText != "" {
				// script and style content is not tokenized until its end tag
				if !hasEndTag(source[i:], rawText) {
					continue
				}
				rawText = ""
			}
			tagStart = i
		}
	}

	switch {
	case quote != 0:
		return &SyntaxError{
			Location: offsetLocation(source, tagStart),
			Missing:  "closing " + string(quote),
			Snippet:  snippet(string(source[tagStart:])),
		}
	case tagStart >= 0:
		return &SyntaxError{
			Location: offsetLocation(source, tagStart),
			Missing:  ">",
			Snippet:  snippet(string(source[tagStart:])),
		}
	}
	return nil
}

// startsTag reports whether the bytes after '<' open a tag, end tag or markup declaration
func startsTag(rest []byte) bool {
	if len(rest) == 0 {
		return false
	}
	switch rest[0] {
	case '!', '?':
		return true
	case '/':
		return len(rest) > 1 && isASCIILetter(rest[1])
	}
	return isASCIILetter(rest[0])
}

// rawTextElement returns the element name when tag opens script or style
func rawTextElement(tag []byte) string {
	name := strings.ToLower(strings.TrimPrefix(string(tag), "<"))
	if i := strings.IndexAny(name, " \t\n\r\f/"); i >= 0 {
		name = name[:i]
	}
	if name == "script" || name == "style" {
		return name
	}
	return ""
}

func hasEndTag(rest []byte, name string) bool {
	return len(rest) >= len(name)+2 && strings.EqualFold(string(rest[:len(name)+2]), "</"+name)
}

func lastNonSpace(b []byte) byte {
	for i := len(b) - 1; i >= 0; i-- {
		switch b[i] {
		case ' ', '\t', '\n', '\r', '\f':
			continue
		}
		return b[i]
	}
	return 0
}

func isASCIILetter(c byte) bool {
	return 'a' <= c && c <= 'z' || 'A' <= c && c <= 'Z'
}

func offsetLocation(source []byte, offset int) Location {
	line, col := 1, 1
	for _, c := range source[:offset] {
		if c == '\n' {
			line++
			col = 1
		} else {
			col++
		}
	}
	return Location{Line: line, Column: col}
}

// Validator adapts Parser to a markup validator. A fresh parser is used per call,
// so a Validator is safe for concurrent use.
type Validator struct{}

// NewValidator creates a validator
func NewValidator() *Validator {
	return &Validator{}
}

// Validate reports markup a browser could not tokenize
func (v *Validator) Validate(markup string) error {
	p := NewParser()
	defer p.Close()
	return p.Check(context.Background(), []byte(markup))
}

func walk(n *sitter.Node, visit func(*sitter.Node) bool) {
	if n == nil || !visit(n) {
		return
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		walk(n.Child(i), visit)
	}
}

func tagName(n *sitter.Node, source []byte) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		if child.Type() != "start_tag" && child.Type() != "self_closing_tag" {
			continue
		}
		for j := 0; j < int(child.NamedChildCount()); j++ {
			if name := child.NamedChild(j); name.Type() == "tag_name" {
				return strings.ToLower(name.Content(source))
			}
		}
	}
	return ""
}

func snippet(s string) string {
	s = strings.TrimSpace(s)
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen] + "..."
	}
	return s
}
