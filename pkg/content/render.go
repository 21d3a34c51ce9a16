package content

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var policy = bluemonday.UGCPolicy()

// RenderText turns plain user text into HTML with line breaks preserved.
// Input is escaped first and the result still goes through the sanitizer.
func RenderText(text string) string {
	if text == "" {
		return ""
	}

	normalized := strings.ReplaceAll(text, "\r\n", "\n")
	escaped := html.EscapeString(normalized)
	withBreaks := strings.ReplaceAll(escaped, "\n", "<br>\n")

	return policy.Sanitize(withBreaks)
}
