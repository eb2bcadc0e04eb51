package calendar

import (
	"fmt"
	"strings"

	cal "google.golang.org/api/calendar/v3"
)

// EventInput is the flexible creation payload accepted by POST /api/events.
// Either startDate/endDate (all-day) or startISO/endISO (timed) must be
// supplied; repeat and rrule are alternative ways to express recurrence.
type EventInput struct {
	Title       string               `json:"title"`
	Description string               `json:"description,omitempty"`
	URL         string               `json:"url,omitempty"`
	Location    string               `json:"location,omitempty"`
	StartDate   string               `json:"startDate,omitempty"`
	EndDate     string               `json:"endDate,omitempty"`
	StartISO    string               `json:"startISO,omitempty"`
	EndISO      string               `json:"endISO,omitempty"`
	TimeZone    string               `json:"timeZone,omitempty"`
	RRule       string               `json:"rrule,omitempty"`
	Repeat      *RepeatSpec          `json:"repeat,omitempty"`
	Attendees   []*cal.EventAttendee `json:"attendees,omitempty"`
	Reminders   *cal.EventReminders  `json:"reminders,omitempty"`
}

// AssembleEvent builds the creation payload. Pure function, no I/O; every
// error it returns is a caller input problem.
func AssembleEvent(in *EventInput) (*cal.Event, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, fmt.Errorf("title is required")
	}

	start, end, err := BuildTimeFields(in)
	if err != nil {
		return nil, err
	}

	desc := in.Description
	if in.URL != "" {
		desc = strings.TrimSpace(desc + "\n\nMore info: " + in.URL)
	}

	recurrence, err := BuildRecurrence(in.RRule, in.Repeat)
	if err != nil {
		return nil, err
	}

	event := &cal.Event{
		Summary:     title,
		Description: desc,
		Location:    in.Location,
		Start:       start,
		End:         end,
	}
	if recurrence != nil {
		event.Recurrence = recurrence
	}
	if len(in.Attendees) > 0 {
		event.Attendees = in.Attendees
	}
	if in.Reminders != nil {
		// useDefault:false must survive serialization of the API struct.
		in.Reminders.ForceSendFields = append(in.Reminders.ForceSendFields, "UseDefault")
		event.Reminders = in.Reminders
	}
	return event, nil
}
