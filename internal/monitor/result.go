package monitor

// RunResult is what one search run produced. It only lives long enough
// to be logged, reported and pushed to notifiers.
type RunResult struct {
	Key       string
	Label     string
	Locations []string
	PageTitle string
	Jobs      []Job
	NewJobs   []Job
}
