package monitor

import (
	"sort"
	"strings"
)

// Job is one posting on the listing page. The URL is the identity key:
// titles drift trivially between runs (casing, extra whitespace) without
// making a posting "new".
type Job struct {
	Title string `json:"title"`
	URL   string `json:"url"`
}

// Normalize collapses internal whitespace runs in the title to a single
// space, trims both fields, and is idempotent.
func Normalize(j Job) Job {
	return Job{
		Title: strings.Join(strings.Fields(j.Title), " "),
		URL:   strings.TrimSpace(j.URL),
	}
}

// Dedupe normalizes every entry, keeps the first occurrence per URL,
// drops entries without a URL, and sorts the result by URL ascending.
// The sort makes run-to-run comparisons stable even when the page
// reorders its cards.
func Dedupe(jobs []Job) []Job {
	seen := make(map[string]bool, len(jobs))
	unique := make([]Job, 0, len(jobs))
	for _, j := range jobs {
		jn := Normalize(j)
		if jn.URL == "" || seen[jn.URL] {
			continue
		}
		seen[jn.URL] = true
		unique = append(unique, jn)
	}
	sort.Slice(unique, func(i, k int) bool {
		return unique[i].URL < unique[k].URL
	})
	return unique
}
