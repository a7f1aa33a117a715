// Package markdown extracts link destinations from documentation pages.
//
// It parses with goldmark for analysis only; nothing is rendered.
package markdown

import (
	"bytes"

	"github.com/yuin/goldmark"
	gmast "github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

type LinkKind string

const (
	LinkKindInline LinkKind = "inline"
	LinkKindImage  LinkKind = "image"
	LinkKindAuto   LinkKind = "auto"
)

// Link is one destination found in a body. Line is 1-based and relative to
// the body passed in, so callers offset it by the front matter length.
type Link struct {
	Kind        LinkKind
	Destination string
	Line        int
}

var parser = goldmark.New().Parser()

// ExtractLinks returns the destinations of inline links, reference links,
// images and autolinks. Code spans and fenced blocks are not inspected.
func ExtractLinks(body []byte) []Link {
	root := parser.Parse(text.NewReader(body))

	links := make([]Link, 0)
	_ = gmast.Walk(root, func(n gmast.Node, entering bool) (gmast.WalkStatus, error) {
		if !entering {
			return gmast.WalkContinue, nil
		}
		switch node := n.(type) {
		case *gmast.CodeSpan, *gmast.CodeBlock, *gmast.FencedCodeBlock, *gmast.HTMLBlock:
			return gmast.WalkSkipChildren, nil
		case *gmast.AutoLink:
			links = append(links, Link{Kind: LinkKindAuto, Destination: string(node.URL(body)), Line: lineOf(node, body)})
		case *gmast.Image:
			links = append(links, Link{Kind: LinkKindImage, Destination: string(node.Destination), Line: lineOf(node, body)})
		case *gmast.Link:
			links = append(links, Link{Kind: LinkKindInline, Destination: string(node.Destination), Line: lineOf(node, body)})
		}
		return gmast.WalkContinue, nil
	})
	return links
}

// lineOf reports the first line of the closest enclosing block.
func lineOf(n gmast.Node, body []byte) int {
	for p := n; p != nil; p = p.Parent() {
		if p.Type() != gmast.TypeBlock {
			continue
		}
		lines := p.Lines()
		if lines == nil || lines.Len() == 0 {
			continue
		}
		start := lines.At(0).Start
		if start > len(body) {
			start = len(body)
		}
		return bytes.Count(body[:start], []byte("\n")) + 1
	}
	return 0
}
