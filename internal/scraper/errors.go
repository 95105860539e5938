package scraper

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrInvalidURL     = errors.New("invalid product url")
	ErrFetchFailed    = errors.New("could not fetch product page")
	ErrIncompleteData = errors.New("could not extract complete product details")
)

// ExtractionError is returned for every failed extraction. Kind is one of the
// sentinels above, so callers can use errors.Is.
type ExtractionError struct {
	Kind    error
	URL     string
	Missing []string
	Err     error
}

func (e *ExtractionError) Error() string {
	var b strings.Builder
	b.WriteString(e.Kind.Error())
	if len(e.Missing) > 0 {
		fmt.Fprintf(&b, " (missing: %s)", strings.Join(e.Missing, ", "))
	}
	if e.Err != nil {
		fmt.Fprintf(&b, ": %v", e.Err)
	}
	return b.String()
}

func (e *ExtractionError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// UserMessage is safe to show to the shopper.
func (e *ExtractionError) UserMessage() string {
	switch {
	case errors.Is(e.Kind, ErrInvalidURL):
		return "That doesn't look like a product link."
	case errors.Is(e.Kind, ErrFetchFailed):
		return "We couldn't reach that page. Try again in a moment or add the item manually."
	default:
		return fmt.Sprintf("We couldn't read the %s from that page. Try another link or add the item manually.",
			strings.Join(e.Missing, ", "))
	}
}
