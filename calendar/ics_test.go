package calendar

import (
	"testing"

	"github.com/stretchr/testify/require"
	cal "google.golang.org/api/calendar/v3"
)

func TestBuildICSTimedEvent(t *testing.T) {
	events := []*cal.Event{
		{
			Id:          "evt-1",
			Summary:     "Hack Night",
			Description: "Bring boards",
			Location:    "WALC 1018",
			HtmlLink:    "https://calendar.google.com/event?eid=evt-1",
			Start:       &cal.EventDateTime{DateTime: "2025-10-20T18:00:00-04:00"},
			End:         &cal.EventDateTime{DateTime: "2025-10-20T20:00:00-04:00"},
			Recurrence:  []string{"RRULE:FREQ=WEEKLY;BYDAY=MO"},
		},
	}
	out := BuildICS(events)
	require.Contains(t, out, "BEGIN:VCALENDAR")
	require.Contains(t, out, "BEGIN:VEVENT")
	require.Contains(t, out, "SUMMARY:Hack Night")
	require.Contains(t, out, "LOCATION:WALC 1018")
	require.Contains(t, out, "RRULE:FREQ=WEEKLY;BYDAY=MO")
	require.Contains(t, out, "END:VCALENDAR")
}

func TestBuildICSAllDayEvent(t *testing.T) {
	events := []*cal.Event{
		{
			Id:      "evt-2",
			Summary: "Hackday",
			Start:   &cal.EventDateTime{Date: "2025-10-25"},
			End:     &cal.EventDateTime{Date: "2025-10-26"},
		},
	}
	out := BuildICS(events)
	require.Contains(t, out, "SUMMARY:Hackday")
	require.Contains(t, out, "VALUE=DATE")
}

func TestBuildICSSkipsEventsWithoutID(t *testing.T) {
	out := BuildICS([]*cal.Event{nil, {Summary: "no id"}})
	require.NotContains(t, out, "no id")
}
