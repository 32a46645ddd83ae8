package monitor

import (
	mapset "github.com/deckarep/golang-set/v2"
)

// Diff returns every job in current whose URL is absent from previous.
// Pure set subtraction keyed by URL; a title change on an already-seen
// URL is not a new job.
func Diff(previous, current []Job) []Job {
	known := mapset.NewThreadUnsafeSet[string]()
	for _, j := range previous {
		if j.URL != "" {
			known.Add(j.URL)
		}
	}

	fresh := make([]Job, 0)
	for _, j := range current {
		if j.URL == "" || known.Contains(j.URL) {
			continue
		}
		fresh = append(fresh, j)
	}
	return fresh
}
