package todo

import (
	"strings"
	"time"
)

// Item is a single to-do entry as returned by the API.
type Item struct {
	ID    int64  `json:"id"`
	Value string `json:"value"`
	// Date is the creation time as sent by the server.
	Date string `json:"date"`
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999999-07:00",
	"2006-01-02 15:04:05",
	time.DateOnly,
}

// DisplayLayout is the layout FormatDate renders with.
const DisplayLayout = "2006-01-02 15:04"

// FormatDate renders date in loc (time.Local when nil). A date that does not
// parse is returned unchanged.
func FormatDate(date string, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	trimmed := strings.TrimSpace(date)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, trimmed); err == nil {
			return t.In(loc).Format(DisplayLayout)
		}
	}
	return date
}
