// Run report aggregation plus the changed/new_count signal consumed by
// the hosting automation (GitHub Actions style key=value output file).

package report

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"go-jobwatch-automation/internal/config"
	"go-jobwatch-automation/internal/monitor"
)

type SearchReport struct {
	Key          string        `json:"key"`
	Label        string        `json:"label"`
	Locations    []string      `json:"locations"`
	PageTitle    string        `json:"page_title"`
	JobsFound    int           `json:"jobs_found"`
	NewJobsFound int           `json:"new_jobs_found"`
	NewJobs      []monitor.Job `json:"new_jobs"`
	Error        string        `json:"error,omitempty"`
}

type RunReport struct {
	RunUTC  string         `json:"run_utc"`
	BaseURL string         `json:"base_url"`
	Results []SearchReport `json:"results"`
}

// Aggregator collects per-search outcomes, failed ones included, into
// one report per invocation.
type Aggregator struct {
	baseURL string
	results []SearchReport
}

func NewAggregator(baseURL string) *Aggregator {
	return &Aggregator{
		baseURL: baseURL,
		results: make([]SearchReport, 0),
	}
}

func (a *Aggregator) AddResult(res *monitor.RunResult) {
	a.results = append(a.results, SearchReport{
		Key:          res.Key,
		Label:        res.Label,
		Locations:    res.Locations,
		PageTitle:    res.PageTitle,
		JobsFound:    len(res.Jobs),
		NewJobsFound: len(res.NewJobs),
		NewJobs:      res.NewJobs,
	})
}

// AddFailure records a search that aborted; it shows up in the report
// with its error and no job data.
func (a *Aggregator) AddFailure(search config.Search, err error) {
	a.results = append(a.results, SearchReport{
		Key:       search.Key,
		Label:     search.Label,
		Locations: search.Locations,
		NewJobs:   []monitor.Job{},
		Error:     err.Error(),
	})
}

func (a *Aggregator) TotalNew() int {
	total := 0
	for _, r := range a.results {
		total += r.NewJobsFound
	}
	return total
}

func (a *Aggregator) Changed() bool {
	return a.TotalNew() > 0
}

func (a *Aggregator) Report() RunReport {
	return RunReport{
		RunUTC:  time.Now().UTC().Format(time.RFC3339),
		BaseURL: a.baseURL,
		Results: a.results,
	}
}

func (a *Aggregator) WriteFile(path string) error {
	data, err := json.MarshalIndent(a.Report(), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal run report: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write run report: %w", err)
	}
	return nil
}

// WriteAutomationOutput appends changed= and new_count= lines to the
// file named by GITHUB_OUTPUT. An unset variable means we are not
// running under automation; skip silently.
func (a *Aggregator) WriteAutomationOutput() error {
	outPath := os.Getenv("GITHUB_OUTPUT")
	if outPath == "" {
		return nil
	}

	f, err := os.OpenFile(outPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return fmt.Errorf("open automation output: %w", err)
	}
	defer f.Close()

	if _, err := fmt.Fprintf(f, "changed=%t\nnew_count=%d\n", a.Changed(), a.TotalNew()); err != nil {
		return fmt.Errorf("write automation output: %w", err)
	}
	return nil
}
