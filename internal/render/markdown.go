package render

import (
	"bytes"
	"html/template"
	"log/slog"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownOnce sync.Once
	md           goldmark.Markdown
	sanitizer    *bluemonday.Policy
)

func initMarkdown() {
	md = goldmark.New(goldmark.WithExtensions(extension.GFM))
	sanitizer = bluemonday.UGCPolicy()
}

// Markdown converts an article body to sanitized HTML. Bodies are
// editor-authored but sanitized anyway since the studio accepts pasted
// content.
func Markdown(source string) template.HTML {
	markdownOnce.Do(initMarkdown)

	var buf bytes.Buffer
	if err := md.Convert([]byte(source), &buf); err != nil {
		slog.Warn("markdown conversion failed", "error", err)
		return template.HTML(template.HTMLEscapeString(source))
	}

	return template.HTML(sanitizer.SanitizeBytes(buf.Bytes()))
}
