package story

import (
	"fmt"
	"strconv"
	"time"
)

// FormatDateRange renders a story subtitle such as "2 - 5 March 2025",
// "28 February - 3 March 2025" or "30 December 2024 - 2 January 2025".
// A missing bound collapses to the other date.
func FormatDateRange(start, end time.Time) string {
	switch {
	case start.IsZero() && end.IsZero():
		return ""
	case start.IsZero():
		start = end
	case end.IsZero():
		end = start
	}

	sy, sm, sd := start.Date()
	ey, em, ed := end.Date()

	switch {
	case sy == ey && sm == em && sd == ed:
		return start.Format("2 January 2006")
	case sy == ey && sm == em:
		return strconv.Itoa(sd) + " - " + end.Format("2 January 2006")
	case sy == ey:
		return fmt.Sprintf("%s - %s", start.Format("2 January"), end.Format("2 January 2006"))
	default:
		return fmt.Sprintf("%s - %s", start.Format("2 January 2006"), end.Format("2 January 2006"))
	}
}
