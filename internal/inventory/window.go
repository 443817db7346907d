package inventory

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidWindow marks a query window rejected before any I/O.
var ErrInvalidWindow = errors.New("invalid query window")

// DateLayout is the wire format for all query dates.
const DateLayout = "2006-01-02"

// Window is an inclusive date range, day-granular, midnight UTC.
type Window struct {
	Start time.Time
	End   time.Time
}

// ParseWindow validates and parses the raw start/end query parameters.
func ParseWindow(start, end string) (Window, error) {
	s, err := time.Parse(DateLayout, start)
	if err != nil {
		return Window{}, fmt.Errorf("%w: start_date %q is not a valid %s date", ErrInvalidWindow, start, DateLayout)
	}
	e, err := time.Parse(DateLayout, end)
	if err != nil {
		return Window{}, fmt.Errorf("%w: end_date %q is not a valid %s date", ErrInvalidWindow, end, DateLayout)
	}
	if s.After(e) {
		return Window{}, fmt.Errorf("%w: start_date %s is after end_date %s", ErrInvalidWindow, start, end)
	}
	return Window{Start: s, End: e}, nil
}

// Days returns every calendar day in the window, inclusive on both ends.
func (w Window) Days() []time.Time {
	var days []time.Time
	for d := w.Start; !d.After(w.End); d = d.AddDate(0, 0, 1) {
		days = append(days, d)
	}
	return days
}
