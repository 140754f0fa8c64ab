package report

import (
	"bytes"
	"fmt"
	"html"

	"github.com/mohammad-safakhou/deepresearch/internal/helpers"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// GFM with table alignment emitted as align attributes, which the sanitizer keeps.
var markdown = goldmark.New(goldmark.WithExtensions(
	extension.NewTable(extension.WithTableCellAlignMethod(extension.TableCellAlignAttribute)),
	extension.Strikethrough,
	extension.Linkify,
	extension.TaskList,
))

// RenderHTML converts a Markdown report to sanitized HTML.
func RenderHTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return helpers.SanitizeReportHTML(buf.String()), nil
}

const pageTemplate = `<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>%s</title>
<style>
body { font-family: -apple-system, "Segoe UI", Roboto, sans-serif; max-width: 860px; margin: 2rem auto; color: #1f2937; line-height: 1.5; }
h1 { border-bottom: 2px solid #2563eb; padding-bottom: .3rem; }
table { border-collapse: collapse; width: 100%%; margin: 1rem 0; }
th, td { border: 1px solid #d1d5db; padding: .4rem .6rem; }
th { background: #f3f4f6; }
a { color: #2563eb; }
</style>
</head>
<body>
%s
</body>
</html>
`

// RenderPage wraps the rendered report in a standalone printable page.
func RenderPage(title, md string) (string, error) {
	body, err := RenderHTML(md)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf(pageTemplate, html.EscapeString(title), body), nil
}
