package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"go-jobwatch-automation/internal/monitor"
)

// Title length bounds for a plausible job link: shorter is an icon or nav
// fragment, longer is a description blurb rather than a title.
const (
	minTitleLen = 6
	maxTitleLen = 160
)

// Substrings that mark a URL as a job-detail page. Deliberately broad:
// false positives get dropped by the title bounds, false negatives are an
// accepted limitation. Do not tighten without evidence from real pages.
var jobURLHints = []string{
	"job",
	"vacancy",
	"jobid",
	"requisition",
	"posting",
	"careers/job",
	"ukcareers/job",
}

// FromHTML scans every anchor in the rendered page and returns the links
// that look like job postings, in document order, plus the page title.
// Zero postings is a valid result, not an error.
func FromHTML(html, origin string) ([]monitor.Job, string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, "", fmt.Errorf("parse page: %w", err)
	}

	pageTitle := strings.TrimSpace(doc.Find("title").First().Text())

	jobs := make([]monitor.Job, 0)
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href, _ := a.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" {
			return
		}

		abs := ResolveHref(origin, href)
		if !looksLikeJob(abs) {
			return
		}

		text := strings.TrimSpace(a.Text())
		if n := utf8.RuneCountInString(text); n < minTitleLen || n > maxTitleLen {
			return
		}

		jobs = append(jobs, monitor.Job{Title: text, URL: abs})
	})

	return jobs, pageTitle, nil
}

// ResolveHref turns an anchor href into an absolute URL against the
// site's origin. Already-absolute hrefs pass through unchanged.
func ResolveHref(origin, href string) string {
	switch {
	case strings.HasPrefix(href, "/"):
		return origin + href
	case strings.HasPrefix(href, "http"):
		return href
	default:
		return origin + "/" + strings.TrimLeft(href, "/")
	}
}

func looksLikeJob(url string) bool {
	lower := strings.ToLower(url)
	for _, hint := range jobURLHints {
		if strings.Contains(lower, hint) {
			return true
		}
	}
	return false
}
