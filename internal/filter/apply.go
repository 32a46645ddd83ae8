// Location filter driving. The target page's markup is not ours and
// changes without notice, so every interaction walks an ordered chain of
// independent locator strategies with its own short timeout. Locating and
// selecting fail hard; post-apply confirmation fails soft (ATS UIs render
// "selected" chips far less consistently than their selection controls).

package filter

import (
	"errors"
	"log"
	"strings"

	"github.com/playwright-community/playwright-go"

	"go-jobwatch-automation/utils"
)

const (
	surfaceTimeoutMs = 5000
	clearTimeoutMs   = 1500
	selectTimeoutMs  = 3000
	commitTimeoutMs  = 5000
	verifyTimeoutMs  = 15000
	settleMs         = 800
)

type Applier struct {
	diag *utils.DiagnosticsDebugger
}

// NewApplier wires the diagnostics debugger; nil disables capture.
func NewApplier(diag *utils.DiagnosticsDebugger) *Applier {
	return &Applier{diag: diag}
}

// Apply restricts the page's result set to exactly the given locations,
// or fails with a diagnosable error. It never silently proceeds with an
// unfiltered page: any fatal error aborts before the caller extracts.
func (a *Applier) Apply(page playwright.Page, searchKey string, locations []string) error {
	if err := a.apply(page, locations); err != nil {
		a.capture(page, searchKey, err)
		return err
	}
	return nil
}

func (a *Applier) apply(page playwright.Page, locations []string) error {
	// 1) Some layouts hide everything behind a "Filters" button; inline
	// filter panels are just as common, so finding none is fine.
	tryClickFirst([]playwright.Locator{
		page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: surfaceNameRe}),
		page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: surfaceNameRe}),
	}, surfaceTimeoutMs)

	// 2) Open the Location section
	opened := tryClickFirst([]playwright.Locator{
		page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: sectionNameRe}),
		page.GetByRole(*playwright.AriaRoleLink, playwright.PageGetByRoleOptions{Name: sectionNameRe}),
		page.Locator("button:has-text('Location')"),
		page.GetByText(sectionNameRe).Locator("xpath=.."),
	}, surfaceTimeoutMs)
	if !opened {
		return ErrFilterControlNotFound
	}
	page.WaitForTimeout(settleMs)

	// 3) Clear any existing selections if a clear/reset exists (best effort)
	tryClickFirst([]playwright.Locator{
		page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: clearNameRe}),
		page.Locator("button:has-text('Clear')"),
		page.Locator("button:has-text('Reset')"),
	}, clearTimeoutMs)

	// 4) Select the desired location(s), all-or-nothing
	for _, loc := range locations {
		loc = strings.TrimSpace(loc)
		if loc == "" {
			continue
		}
		if !selectLocation(page, loc) {
			return &LocationNotSelectableError{Location: loc}
		}
	}

	// 5) Apply / Done / Update results. Plenty of UIs auto-apply on
	// selection, so a missing commit button is not an error either.
	tryClickFirst([]playwright.Locator{
		page.GetByRole(*playwright.AriaRoleButton, playwright.PageGetByRoleOptions{Name: commitNameRe}),
		page.Locator("button:has-text('Apply')"),
		page.Locator("button:has-text('Done')"),
		page.Locator("button:has-text('Update')"),
	}, commitTimeoutMs)

	page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State: playwright.LoadStateNetworkidle,
	})
	page.WaitForTimeout(settleMs)

	// 6) Soft verification: each location should show up somewhere visible
	// (chip, label, summary). Missing confirmation is logged, never fatal.
	for _, loc := range locations {
		loc = strings.TrimSpace(loc)
		if loc == "" || verifyVisible(page, loc) {
			continue
		}
		log.Printf("⚠️ Could not confirm %q in the active filter display. Continuing unconfirmed.", loc)
	}
	page.WaitForTimeout(500)

	return nil
}

// tryClickFirst walks a strategy chain and clicks the first locator that
// resolves to a visible element. A strategy error just means "try the
// next one"; only an exhausted chain matters to the caller.
func tryClickFirst(locators []playwright.Locator, timeoutMs float64) bool {
	for _, locator := range locators {
		count, err := locator.Count()
		if err != nil || count == 0 {
			continue
		}
		first := locator.First()
		if err := first.WaitFor(playwright.LocatorWaitForOptions{
			State:   playwright.WaitForSelectorStateVisible,
			Timeout: playwright.Float(timeoutMs),
		}); err != nil {
			continue
		}
		if err := first.Click(); err != nil {
			continue
		}
		return true
	}
	return false
}

func selectLocation(page playwright.Page, name string) bool {
	// Best case: accessible label wiring
	checkbox := page.GetByLabel(exactNameRe(name)).First()
	if err := checkbox.Check(playwright.LocatorCheckOptions{
		Timeout: playwright.Float(selectTimeoutMs),
	}); err == nil {
		return true
	}

	// Fallback: checkbox inputs are often visually hidden behind styled
	// labels, so click the label that carries the text.
	label := page.Locator("label", playwright.PageLocatorOptions{HasText: wholeWordRe(name)}).First()
	if err := label.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(selectTimeoutMs),
	}); err == nil {
		if err := label.Click(); err == nil {
			return true
		}
	}

	// Last resort: any element carrying exactly the location text
	row := page.GetByText(exactNameRe(name)).First()
	if err := row.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(selectTimeoutMs),
	}); err == nil {
		if err := row.Click(); err == nil {
			return true
		}
	}

	return false
}

func verifyVisible(page playwright.Page, name string) bool {
	chip := page.GetByText(wholeWordRe(name)).First()
	if err := chip.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(verifyTimeoutMs),
	}); err == nil {
		return true
	}

	// A configured "Zurich" may render as "Zürich"; fold accents before
	// giving up and logging the soft warning.
	html, err := page.Content()
	if err != nil {
		return false
	}
	return containsFolded(html, name)
}

func (a *Applier) capture(page playwright.Page, searchKey string, cause error) {
	if a.diag == nil {
		return
	}
	reason := "filter-failed"
	var notSelectable *LocationNotSelectableError
	switch {
	case errors.Is(cause, ErrFilterControlNotFound):
		reason = "filter-control-not-found"
	case errors.As(cause, &notSelectable):
		reason = "location-not-selectable"
	}
	a.diag.CaptureBundle(page, searchKey, reason)
}
