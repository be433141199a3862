// Package htmlsanitize strips dangerous markup from user-supplied rich text.
//
// Notice and consultation bodies accept limited formatting; everything
// else submitted by users is rendered as plain text. Sanitization
// happens at write time so stored content is always safe to render.
package htmlsanitize

import (
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var (
	// richPolicy allows basic formatting for notice content.
	richPolicy = newRichPolicy()

	// strictPolicy strips all markup.
	strictPolicy = bluemonday.StrictPolicy()
)

func newRichPolicy() *bluemonday.Policy {
	p := bluemonday.NewPolicy()
	p.AllowElements("p", "br", "b", "strong", "i", "em", "u", "ul", "ol", "li", "blockquote", "h3", "h4")
	p.AllowAttrs("href").OnElements("a")
	p.AllowURLSchemes("http", "https", "mailto")
	p.RequireNoFollowOnLinks(true)
	return p
}

// Rich sanitizes content that may carry limited formatting.
func Rich(html string) string {
	return strings.TrimSpace(richPolicy.Sanitize(html))
}

// Plain strips all markup, leaving text only.
func Plain(html string) string {
	return strings.TrimSpace(strictPolicy.Sanitize(html))
}
