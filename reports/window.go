package reports

import (
	"time"
)

const dateFormat = "2006-01-02"

// Window is a closed [Start, End] date range filter over week-start
// dates. Fallback is set when the request carried unparseable input and
// the defaults were used instead, so the page can flash a warning.
type Window struct {
	Start    time.Time
	End      time.Time
	Fallback bool
}

// ParseWindow resolves start_date/end_date query values. Defaults cover
// the current calendar month; both ends are clamped so they never pass
// the last day of the current month. Malformed dates fall back to the
// defaults rather than failing the request.
func ParseWindow(startStr, endStr string, today time.Time) Window {
	today = time.Date(today.Year(), today.Month(), today.Day(), 0, 0, 0, 0, time.UTC)
	firstOfMonth := time.Date(today.Year(), today.Month(), 1, 0, 0, 0, 0, time.UTC)
	lastOfMonth := firstOfMonth.AddDate(0, 1, -1)

	w := Window{Start: firstOfMonth, End: lastOfMonth}

	if startStr != "" {
		start, err := time.Parse(dateFormat, startStr)
		if err != nil {
			w.Fallback = true
			return w
		}
		if start.After(lastOfMonth) {
			start = lastOfMonth
		}
		w.Start = start
	}

	if endStr != "" {
		end, err := time.Parse(dateFormat, endStr)
		if err != nil {
			w.Fallback = true
			w.Start = firstOfMonth
			w.End = lastOfMonth
			return w
		}
		if end.After(lastOfMonth) {
			end = lastOfMonth
		}
		w.End = end
	}

	return w
}

func (w Window) StartString() string {
	return w.Start.Format(dateFormat)
}

func (w Window) EndString() string {
	return w.End.Format(dateFormat)
}
