package records

import (
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"
)

// Timestamp layouts accepted from snapshot exports, tried in order.
var timestampLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// NormalizeTimestamp converts a raw createdAt value into a UTC instant.
// Numbers are epoch seconds. Strings are tried as epoch seconds first, then
// against the known date layouts. Anything else yields nil; a bad timestamp
// is missing data, never an error.
func NormalizeTimestamp(raw gjson.Result) *time.Time {
	switch raw.Type {
	case gjson.Number:
		return epochToTime(raw.Float())
	case gjson.String:
		s := strings.TrimSpace(raw.String())
		if s == "" {
			return nil
		}
		if secs, err := strconv.ParseFloat(s, 64); err == nil {
			return epochToTime(secs)
		}
		for _, layout := range timestampLayouts {
			if t, err := time.Parse(layout, s); err == nil {
				utc := t.UTC()
				return &utc
			}
		}
		return nil
	default:
		return nil
	}
}

func epochToTime(secs float64) *time.Time {
	if secs <= 0 {
		return nil
	}
	t := time.Unix(int64(secs), int64((secs-float64(int64(secs)))*float64(time.Second))).UTC()
	return &t
}
