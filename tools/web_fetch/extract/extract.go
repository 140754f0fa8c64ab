// Package extract turns a raw HTML page into a readable article.
package extract

import (
	"crypto/sha1"
	"encoding/hex"
	"net/url"
	"strings"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/base"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/commonmark"
	"github.com/JohannesKaufmann/html-to-markdown/v2/plugin/table"
	"github.com/go-shiori/go-readability"
	"github.com/m-mizutani/goerr/v2"
	"github.com/mohammad-safakhou/deepresearch/internal/helpers"
	"github.com/mohammad-safakhou/deepresearch/tools/web_fetch/models"
)

var mdConverter = converter.NewConverter(
	converter.WithPlugins(
		base.NewBasePlugin(),
		commonmark.NewCommonmarkPlugin(),
		table.NewTablePlugin(),
	),
)

// Article runs readability over html and converts the sanitized article body
// to Markdown. Text and Markdown are cut to maxChars runes.
func Article(rawURL, html string, maxChars int) (models.Result, error) {
	sum := sha1.Sum([]byte(html))
	res := models.Result{URL: rawURL, HTMLHash: hex.EncodeToString(sum[:]), Status: 200}

	article, err := readability.FromReader(strings.NewReader(html), parseURL(rawURL))
	if err != nil {
		return res, goerr.Wrap(err, "readability failed", goerr.V("url", rawURL))
	}
	res.Title = strings.TrimSpace(article.Title)
	res.Byline = strings.TrimSpace(article.Byline)
	res.SiteName = strings.TrimSpace(article.SiteName)
	res.Excerpt = strings.TrimSpace(article.Excerpt)
	res.Text = helpers.Truncate(strings.TrimSpace(article.TextContent), maxChars)

	body := helpers.SanitizeReportHTML(article.Content)
	if body != "" {
		md, err := mdConverter.ConvertString(body, converter.WithDomain(rawURL))
		if err != nil {
			return res, goerr.Wrap(err, "markdown conversion failed", goerr.V("url", rawURL))
		}
		res.Markdown = helpers.Truncate(strings.TrimSpace(md), maxChars)
	}
	return res, nil
}

func parseURL(raw string) *url.URL {
	u, err := url.Parse(raw)
	if err != nil {
		return &url.URL{}
	}
	return u
}
