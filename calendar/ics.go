package calendar

import (
	"strings"
	"time"

	ics "github.com/arran4/golang-ical"
	cal "google.golang.org/api/calendar/v3"
)

// BuildICS renders upcoming events as an iCalendar feed so the club calendar
// can be subscribed to directly.
func BuildICS(events []*cal.Event) string {
	feed := ics.NewCalendar()
	feed.SetMethod(ics.MethodPublish)

	now := time.Now().UTC()
	for _, e := range events {
		if e == nil || e.Id == "" {
			continue
		}
		ve := feed.AddEvent(e.Id)
		ve.SetDtStampTime(now)
		ve.SetSummary(e.Summary)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.HtmlLink != "" {
			ve.SetURL(e.HtmlLink)
		}
		setFeedTimes(ve, e)
		for _, rule := range e.Recurrence {
			if strings.HasPrefix(strings.ToUpper(rule), "RRULE:") {
				ve.AddRrule(rule[len("RRULE:"):])
			}
		}
	}
	return feed.Serialize()
}

func setFeedTimes(ve *ics.VEvent, e *cal.Event) {
	if e.Start != nil {
		if e.Start.Date != "" {
			if t, err := time.Parse(dateLayout, e.Start.Date); err == nil {
				ve.SetAllDayStartAt(t)
			}
		} else if t, err := time.Parse(time.RFC3339, e.Start.DateTime); err == nil {
			ve.SetStartAt(t)
		}
	}
	if e.End != nil {
		if e.End.Date != "" {
			if t, err := time.Parse(dateLayout, e.End.Date); err == nil {
				ve.SetAllDayEndAt(t)
			}
		} else if t, err := time.Parse(time.RFC3339, e.End.DateTime); err == nil {
			ve.SetEndAt(t)
		}
	}
}
