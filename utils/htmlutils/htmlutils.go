// Copyright 2025 The Geonoticias Authors
// SPDX-License-Identifier: Apache-2.0

// Package htmlutils provides utility functions for working with HTML.
package htmlutils

import (
	"fmt"
	"strings"

	"golang.org/x/net/html"
)

// skipped elements never carry article prose.
var skipped = map[string]bool{
	"script":   true,
	"style":    true,
	"noscript": true,
	"iframe":   true,
	"svg":      true,
}

// block elements end a sentence; we keep them apart with a period so that
// capitalized phrases from two paragraphs are not glued together.
var block = map[string]bool{
	"p": true, "div": true, "br": true, "li": true, "h1": true, "h2": true,
	"h3": true, "h4": true, "h5": true, "h6": true, "td": true, "tr": true,
	"article": true, "section": true, "blockquote": true, "figcaption": true,
}

// Node2string appends the visible text of n to sb, one space between text nodes.
func Node2string(n *html.Node, sb *strings.Builder) {
	switch n.Type {
	case html.TextNode:
		tmp := strings.Join(strings.Fields(n.Data), " ")
		if tmp == "" {
			return
		}

		if sb.Len() != 0 {
			sb.WriteByte(' ')
		}

		sb.WriteString(tmp)
	case html.ElementNode:
		if skipped[n.Data] {
			return
		}

		for child := n.FirstChild; child != nil; child = child.NextSibling {
			Node2string(child, sb)
		}

		if block[n.Data] && sb.Len() > 0 {
			if s := sb.String(); !strings.HasSuffix(s, ".") {
				sb.WriteByte('.')
			}
		}
	default:
		for child := n.FirstChild; child != nil; child = child.NextSibling {
			Node2string(child, sb)
		}
	}
}

// ToText returns the visible text of an HTML fragment with entities decoded.
// Plain text without markup is returned with its whitespace collapsed.
func ToText(fragment string) (string, error) {
	if !strings.ContainsAny(fragment, "<&") {
		return strings.Join(strings.Fields(fragment), " "), nil
	}

	n, err := html.Parse(strings.NewReader(fragment))
	if err != nil {
		return "", fmt.Errorf("parsing body as HTML: %w", err)
	}

	sb := strings.Builder{}
	Node2string(n, &sb)

	return sb.String(), nil
}
