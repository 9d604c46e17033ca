package email

import (
	"bytes"
	"html/template"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"
)

// textRenderer is configured for safe output: raw HTML in visitor text is dropped
// (WithUnsafe is NOT set) and newlines become <br>.
var textRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// markdownPunct lists the ASCII punctuation CommonMark allows to be backslash-escaped.
const markdownPunct = "!\"#$%&'()*+,-./:;<=>?@[\\]^_`{|}~"

// escapeMarkdown makes every line of text render literally. Punctuation is
// backslash-escaped and leading indentation becomes character references, so
// no line can open a heading, list, code block or HTML block.
func escapeMarkdown(text string) string {
	lines := strings.Split(strings.ReplaceAll(text, "\r\n", "\n"), "\n")
	var b strings.Builder
	for i, line := range lines {
		if i > 0 {
			b.WriteByte('\n')
		}
		indent := true
		for _, r := range line {
			switch {
			case indent && r == ' ':
				b.WriteString("&#32;")
				continue
			case indent && r == '\t':
				b.WriteString("&#9;")
				continue
			}
			indent = false
			if r < 0x80 && strings.ContainsRune(markdownPunct, r) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	return b.String()
}

// RenderHTML converts a plain-text notification body into the HTML alternative part.
// The text is shown as written, one <br> per line break.
// Falls back to escaped text wrapped in <pre> if conversion fails.
func RenderHTML(text string) string {
	var buf bytes.Buffer
	if err := textRenderer.Convert([]byte(escapeMarkdown(text)), &buf); err != nil {
		return "<pre>" + template.HTMLEscapeString(text) + "</pre>"
	}
	return buf.String()
}
