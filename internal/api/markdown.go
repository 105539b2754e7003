package api

import (
	"bytes"
	"html"
	"sync"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

var (
	markdownOnce   sync.Once
	markdownParser goldmark.Markdown
	htmlPolicy     *bluemonday.Policy
)

// RenderMarkdown converts ticket text to sanitized HTML.
func RenderMarkdown(src string) string {
	markdownOnce.Do(func() {
		markdownParser = goldmark.New(goldmark.WithExtensions(extension.GFM))
		htmlPolicy = bluemonday.UGCPolicy()
	})

	var buf bytes.Buffer
	if err := markdownParser.Convert([]byte(src), &buf); err != nil {
		return html.EscapeString(src)
	}
	return htmlPolicy.Sanitize(buf.String())
}
