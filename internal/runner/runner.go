// One search end to end: navigate, filter, settle, extract, diff,
// persist. Errors are scoped to the search; a failed search leaves its
// prior persisted state untouched.

package runner

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/playwright-community/playwright-go"

	"go-jobwatch-automation/internal/browser"
	"go-jobwatch-automation/internal/config"
	"go-jobwatch-automation/internal/extract"
	"go-jobwatch-automation/internal/filter"
	"go-jobwatch-automation/internal/monitor"
	"go-jobwatch-automation/internal/state"
	"go-jobwatch-automation/utils"
)

const (
	initialSettleMs = 1200
	linkWaitMs      = 30000
)

// NavigationError wraps a failed initial page load. Fatal for the search.
type NavigationError struct {
	URL string
	Err error
}

func (e *NavigationError) Error() string {
	return fmt.Sprintf("navigate to %s: %v", e.URL, e.Err)
}

func (e *NavigationError) Unwrap() error {
	return e.Err
}

// pageDriver is the browser-facing half of a run: load the page, apply
// the location filter, extract raw postings.
type pageDriver interface {
	fetch(ctx context.Context, search config.Search) ([]monitor.Job, string, error)
}

type Runner struct {
	store  *state.Store
	driver pageDriver
}

func New(cfg *config.Config, origin string, manager *browser.PlaywrightManager, store *state.Store, applier *filter.Applier, cookies []playwright.OptionalCookie) *Runner {
	return &Runner{
		store: store,
		driver: &browserDriver{
			cfg:     cfg,
			origin:  origin,
			manager: manager,
			applier: applier,
			cookies: cookies,
		},
	}
}

func (r *Runner) Run(ctx context.Context, search config.Search) (*monitor.RunResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	jobs, pageTitle, err := r.driver.fetch(ctx, search)
	if err != nil {
		return nil, err
	}
	jobs = monitor.Dedupe(jobs)

	previous, err := r.store.Load(search.Key)
	if err != nil {
		return nil, err
	}
	newJobs := monitor.Diff(previous.Jobs, jobs)

	// Persist only after everything above succeeded, so a broken run
	// never clobbers a good snapshot.
	if err := r.store.Save(search.Key, jobs); err != nil {
		return nil, err
	}

	return &monitor.RunResult{
		Key:       search.Key,
		Label:     search.Label,
		Locations: search.Locations,
		PageTitle: pageTitle,
		Jobs:      jobs,
		NewJobs:   newJobs,
	}, nil
}

type browserDriver struct {
	cfg     *config.Config
	origin  string
	manager *browser.PlaywrightManager
	applier *filter.Applier
	cookies []playwright.OptionalCookie
}

func (d *browserDriver) fetch(ctx context.Context, search config.Search) ([]monitor.Job, string, error) {
	navTimeoutMs, err := boundedTimeout(ctx, d.cfg.NavTimeoutMs)
	if err != nil {
		return nil, "", err
	}

	browserCtx, err := d.manager.NewContext(d.cfg.UserAgent, d.cookies)
	if err != nil {
		return nil, "", err
	}
	defer browserCtx.Close()

	page, err := browserCtx.NewPage()
	if err != nil {
		return nil, "", fmt.Errorf("create page: %w", err)
	}

	if _, err := page.Goto(d.cfg.BaseURL, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(navTimeoutMs),
	}); err != nil {
		return nil, "", &NavigationError{URL: d.cfg.BaseURL, Err: err}
	}
	page.WaitForTimeout(initialSettleMs)

	if err := d.applier.Apply(page, search.Key, search.Locations); err != nil {
		return nil, "", err
	}
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	// Give result cards a chance to render. An empty page is still a
	// valid (if noteworthy) result, so a timeout here is tolerated.
	if err := page.Locator("a[href]").First().WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(linkWaitMs),
	}); err != nil {
		log.Printf("⚠️ No links appeared within %dms, extracting anyway", linkWaitMs)
	}
	utils.SmoothScroll(page)

	html, err := page.Content()
	if err != nil {
		return nil, "", fmt.Errorf("read page content: %w", err)
	}

	return extract.FromHTML(html, d.origin)
}

// boundedTimeout caps the configured navigation timeout by whatever is
// left of the context deadline, so the run-wide budget actually bounds
// the slowest page step instead of only gating search starts.
func boundedTimeout(ctx context.Context, fallbackMs float64) (float64, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	deadline, ok := ctx.Deadline()
	if !ok {
		return fallbackMs, nil
	}
	remainingMs := float64(time.Until(deadline).Milliseconds())
	if remainingMs <= 0 {
		return 0, context.DeadlineExceeded
	}
	if remainingMs < fallbackMs {
		return remainingMs, nil
	}
	return fallbackMs, nil
}
