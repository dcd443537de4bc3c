// Package markdown renders article bodies written in CommonMark.
package markdown

import (
	"gitlab.com/golang-commonmark/markdown"
)

// raw HTML stays escaped, article bodies come from untrusted authors
var renderer = markdown.New(
	markdown.HTML(false),
	markdown.Linkify(true),
	markdown.Typographer(true),
	markdown.MaxNesting(10),
)

// Render converts src to HTML.
func Render(src string) string {
	if src == "" {
		return ""
	}
	return renderer.RenderToString([]byte(src))
}
