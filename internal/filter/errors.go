package filter

import (
	"errors"
	"fmt"
)

// ErrFilterControlNotFound means no locator strategy could find the
// location filter section. Fatal for the search: proceeding would return
// an unfiltered result set.
var ErrFilterControlNotFound = errors.New("could not find/open the location filter control; the UI may have changed")

// LocationNotSelectableError means every selection strategy failed for
// one requested location. Fatal: the filter is all-or-nothing, partial
// selections are abandoned.
type LocationNotSelectableError struct {
	Location string
}

func (e *LocationNotSelectableError) Error() string {
	return fmt.Sprintf("could not select location %q; the label/text may differ from expected", e.Location)
}
