package helpers

import (
	"html"
	"strings"
	"sync"

	"github.com/microcosm-cc/bluemonday"
)

var (
	strictPolicyOnce sync.Once
	strictPolicy     *bluemonday.Policy

	reportPolicyOnce sync.Once
	reportPolicy     *bluemonday.Policy
)

// StrictHTMLPolicy strips every element and attribute.
func StrictHTMLPolicy() *bluemonday.Policy {
	strictPolicyOnce.Do(func() {
		strictPolicy = bluemonday.StrictPolicy()
	})
	return strictPolicy
}

// ReportHTMLPolicy allows what rendered research reports and article bodies
// contain: headings, tables, lists, emphasis, code and http(s) links.
func ReportHTMLPolicy() *bluemonday.Policy {
	reportPolicyOnce.Do(func() {
		policy := bluemonday.UGCPolicy()
		policy.AllowElements("figure", "figcaption")
		policy.AllowAttrs("class").OnElements("code", "pre", "figure")
		policy.AllowAttrs("align").OnElements("th", "td")
		policy.AllowURLSchemes("http", "https", "mailto")
		policy.AllowRelativeURLs(true)
		policy.RequireParseableURLs(true)
		policy.AddTargetBlankToFullyQualifiedLinks(true)
		reportPolicy = policy
	})
	return reportPolicy
}

// PlainText removes every HTML tag from s, decodes entities and trims it.
// Search providers return titles with highlight markup such as <strong>.
func PlainText(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(html.UnescapeString(StrictHTMLPolicy().Sanitize(s)))
}

// SanitizeReportHTML cleans rendered report or article HTML with ReportHTMLPolicy.
func SanitizeReportHTML(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	return strings.TrimSpace(ReportHTMLPolicy().Sanitize(s))
}

// Truncate cuts s to at most max runes, appending an ellipsis when it cuts.
// max <= 0 disables truncation.
func Truncate(s string, max int) string {
	if max <= 0 {
		return s
	}
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max])) + "…"
}
