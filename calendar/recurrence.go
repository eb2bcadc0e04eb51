package calendar

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RepeatSpec is the structured repeat specification accepted on event
// creation. Count and Until are independent; whichever are present end up in
// the rule.
type RepeatSpec struct {
	Freq       string   `json:"freq"`
	Interval   int      `json:"interval,omitempty"`
	ByDay      []string `json:"byDay,omitempty"`
	ByMonthDay []int    `json:"byMonthDay,omitempty"`
	Count      int      `json:"count,omitempty"`
	Until      string   `json:"until,omitempty"`
}

var allowedFreqs = map[string]bool{
	"DAILY":   true,
	"WEEKLY":  true,
	"MONTHLY": true,
	"YEARLY":  true,
}

// weekdayCodes normalizes full names, 3-letter abbreviations and 2-letter
// codes to the RRULE 2-letter code.
var weekdayCodes = map[string]string{
	"SU": "SU", "SUN": "SU", "SUNDAY": "SU",
	"MO": "MO", "MON": "MO", "MONDAY": "MO",
	"TU": "TU", "TUE": "TU", "TUESDAY": "TU",
	"WE": "WE", "WED": "WE", "WEDNESDAY": "WE",
	"TH": "TH", "THU": "TH", "THURSDAY": "TH",
	"FR": "FR", "FRI": "FR", "FRIDAY": "FR",
	"SA": "SA", "SAT": "SA", "SATURDAY": "SA",
}

// BuildRecurrence turns either a caller-supplied raw rule string or a
// RepeatSpec into the recurrence list the calendar API expects. A raw string
// wins over a spec. Returns nil when neither produces a rule.
func BuildRecurrence(raw string, spec *RepeatSpec) ([]string, error) {
	if s := strings.TrimSpace(raw); s != "" {
		if !strings.HasPrefix(strings.ToUpper(s), "RRULE:") {
			s = "RRULE:" + s
		}
		return []string{s}, nil
	}

	if spec == nil {
		return nil, nil
	}

	freq := strings.ToUpper(strings.TrimSpace(spec.Freq))
	if !allowedFreqs[freq] {
		return nil, fmt.Errorf("repeat.freq must be DAILY/WEEKLY/MONTHLY/YEARLY")
	}
	parts := []string{"FREQ=" + freq}

	if spec.Interval != 0 {
		parts = append(parts, "INTERVAL="+strconv.Itoa(spec.Interval))
	}

	if len(spec.ByDay) > 0 {
		codes := make([]string, 0, len(spec.ByDay))
		for _, day := range spec.ByDay {
			code, ok := weekdayCodes[strings.ToUpper(strings.TrimSpace(day))]
			if !ok {
				return nil, fmt.Errorf("invalid byDay value: %s", day)
			}
			codes = append(codes, code)
		}
		parts = append(parts, "BYDAY="+strings.Join(codes, ","))
	}

	if len(spec.ByMonthDay) > 0 {
		days := make([]string, 0, len(spec.ByMonthDay))
		for _, d := range spec.ByMonthDay {
			days = append(days, strconv.Itoa(d))
		}
		parts = append(parts, "BYMONTHDAY="+strings.Join(days, ","))
	}

	if spec.Count != 0 {
		parts = append(parts, "COUNT="+strconv.Itoa(spec.Count))
	}

	if until := strings.TrimSpace(spec.Until); until != "" {
		formatted, err := normalizeUntil(until)
		if err != nil {
			return nil, err
		}
		parts = append(parts, "UNTIL="+formatted)
	}

	return []string{"RRULE:" + strings.Join(parts, ";")}, nil
}

// untilLayouts covers ISO datetimes with and without seconds; the zoned
// layouts accept a trailing Z as UTC, the naive ones are taken as UTC.
var untilLayouts = []string{
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02T15:04Z07:00",
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func normalizeUntil(raw string) (string, error) {
	if t, err := time.Parse("2006-01-02", raw); err == nil {
		return t.Format("20060102"), nil
	}
	for _, layout := range untilLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC().Format("20060102T150405Z"), nil
		}
	}
	return "", fmt.Errorf("repeat.until must be YYYY-MM-DD or ISO datetime")
}
