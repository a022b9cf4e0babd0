package timeutil

import (
	"math"
	"regexp"
	"strconv"
	"strings"
)

// TimeBreakdown is the structured view of a duration in seconds.
type TimeBreakdown struct {
	Hours        int `json:"hours"`
	Minutes      int `json:"minutes"`
	Seconds      int `json:"seconds"`
	TotalSeconds int `json:"total_seconds"`
}

var repeatedColons = regexp.MustCompile(`:+`)

// ParseDurationToSeconds converts a duration string to seconds.
// Accepted shapes: "H:MM:SS", "MM:SS", or a bare number. Repeated
// separators collapse to one, a leading separator counts as a zero
// field (":30" is "0:30"), and non-numeric fields count as zero.
// Anything unparsable yields 0; this function never fails.
func ParseDurationToSeconds(input string) float64 {
	s := strings.TrimSpace(input)
	if s == "" {
		return 0
	}

	s = repeatedColons.ReplaceAllString(s, ":")
	if strings.HasPrefix(s, ":") {
		s = "0" + s
	}

	fields := strings.Split(s, ":")
	values := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 64)
		if err != nil || math.IsNaN(v) {
			v = 0
		}
		values[i] = v
	}

	switch len(values) {
	case 3:
		return values[0]*3600 + values[1]*60 + values[2]
	case 2:
		return values[0]*60 + values[1]
	case 1:
		if values[0] > 0 {
			return values[0]
		}
		return 0
	default:
		return 0
	}
}

// FormatTime breaks a duration in seconds into hours, minutes and
// seconds. NaN and negative inputs are treated as 0. TotalSeconds is
// the floor of the input, so formatting an integral value is a fixed
// point.
func FormatTime(seconds float64) TimeBreakdown {
	if math.IsNaN(seconds) || seconds < 0 {
		seconds = 0
	}

	total := int(math.Floor(seconds))
	return TimeBreakdown{
		Hours:        total / 3600,
		Minutes:      (total % 3600) / 60,
		Seconds:      total % 60,
		TotalSeconds: total,
	}
}
