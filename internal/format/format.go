// Package format turns untrusted message text into display markup.
//
// Markup always escapes before it introduces any tag, so the only tags present in its output
// are the ones it wrote itself. Terminal relies on that to translate the markup into styled
// terminal text without ever interpreting remote content.
package format

import (
	"html"
	"regexp"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	boldPattern   = regexp.MustCompile(`\*\*(.*?)\*\*`)
	italicPattern = regexp.MustCompile(`\*(.*?)\*`)
	codePattern   = regexp.MustCompile("`(.*?)`")
	tagPattern    = regexp.MustCompile(`</p><p>|<br>|</?(?:strong|em|code|p)>`)
)

// Markup escapes text and applies the lightweight markup rules in their fixed order:
// bold, italic, inline code, paragraph breaks, line breaks, then one paragraph wrapper.
func Markup(text string) string {
	out := html.EscapeString(text)
	out = boldPattern.ReplaceAllString(out, "<strong>$1</strong>")
	out = italicPattern.ReplaceAllString(out, "<em>$1</em>")
	out = codePattern.ReplaceAllString(out, "<code>$1</code>")
	out = strings.ReplaceAll(out, "\n\n", "</p><p>")
	out = strings.ReplaceAll(out, "\n", "<br>")
	return "<p>" + out + "</p>"
}

// Styles controls how Terminal paints markup spans.
type Styles struct {
	Text lipgloss.Style
	Code lipgloss.Style
}

// Terminal renders the output of Markup as terminal text. Entities are decoded only after the
// tags have been consumed.
func Terminal(markup string, styles Styles) string {
	var (
		b      strings.Builder
		bold   bool
		italic bool
		code   bool
	)
	paint := func(segment string) {
		if segment == "" {
			return
		}
		style := styles.Text
		if code {
			style = styles.Code
		}
		if bold {
			style = style.Bold(true)
		}
		if italic {
			style = style.Italic(true)
		}
		b.WriteString(style.Render(html.UnescapeString(segment)))
	}

	last := 0
	for _, loc := range tagPattern.FindAllStringIndex(markup, -1) {
		paint(markup[last:loc[0]])
		last = loc[1]
		switch markup[loc[0]:loc[1]] {
		case "<strong>":
			bold = true
		case "</strong>":
			bold = false
		case "<em>":
			italic = true
		case "</em>":
			italic = false
		case "<code>":
			code = true
		case "</code>":
			code = false
		case "</p><p>":
			b.WriteString("\n\n")
		case "<br>":
			b.WriteString("\n")
		}
	}
	paint(markup[last:])
	return b.String()
}

// Plain renders markup with no styling at all.
func Plain(markup string) string {
	out := tagPattern.ReplaceAllStringFunc(markup, func(tag string) string {
		switch tag {
		case "</p><p>":
			return "\n\n"
		case "<br>":
			return "\n"
		default:
			return ""
		}
	})
	return html.UnescapeString(out)
}
