// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0

package markup

import (
	"strings"

	"github.com/apex/log"
	"golang.org/x/net/html"
)

// Attr builds a single attribute.
func Attr(key, val string) html.Attribute {
	return html.Attribute{Key: key, Val: val}
}

// Class returns a class attribute list, or nil when name is blank so the
// element is emitted bare.
func Class(name string) []html.Attribute {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}
	return []html.Attribute{Attr("class", name)}
}

// Element builds an element node. Children must be freshly built nodes; a
// node can only be attached to one parent.
func Element(tag string, attrs []html.Attribute, children ...*html.Node) *html.Node {
	n := &html.Node{
		Type: html.ElementNode,
		Data: tag,
		Attr: attrs,
	}
	for _, c := range children {
		if c == nil {
			continue
		}
		n.AppendChild(c)
	}
	return n
}

// Text builds a text node. The text is escaped when rendered.
func Text(s string) *html.Node {
	return &html.Node{Type: html.TextNode, Data: s}
}

// Raw builds a node whose content is written verbatim. It is used to splice
// fragments that were already rendered (e.g. served from cache).
func Raw(s string) *html.Node {
	return &html.Node{Type: html.RawNode, Data: s}
}

// Render serializes the nodes in order.
func Render(nodes ...*html.Node) string {
	var sb strings.Builder
	for _, n := range nodes {
		if n == nil {
			continue
		}
		if err := html.Render(&sb, n); err != nil {
			log.WithError(err).Warn("failed to render node")
		}
	}
	return sb.String()
}
