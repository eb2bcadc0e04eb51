package calendar

import (
	"fmt"
	"strings"
	"time"

	cal "google.golang.org/api/calendar/v3"
)

const dateLayout = "2006-01-02"

// BuildTimeFields turns the flexible input into the two-sided start/end
// representation the calendar API expects. A present start date selects the
// all-day branch; otherwise both ISO instants are required.
func BuildTimeFields(in *EventInput) (*cal.EventDateTime, *cal.EventDateTime, error) {
	if sd := strings.TrimSpace(in.StartDate); sd != "" {
		ed := strings.TrimSpace(in.EndDate)
		if ed == "" {
			ed = sd
		}
		// Google requires end.date to be exclusive; if equal or earlier,
		// bump end by one day. Unparseable dates fall through as given.
		sdt, serr := time.Parse(dateLayout, sd)
		edt, eerr := time.Parse(dateLayout, ed)
		if serr == nil && eerr == nil && !edt.After(sdt) {
			ed = sdt.AddDate(0, 0, 1).Format(dateLayout)
		}
		// All-day events carry no timeZone in the payload.
		return &cal.EventDateTime{Date: sd}, &cal.EventDateTime{Date: ed}, nil
	}

	if strings.TrimSpace(in.StartISO) == "" || strings.TrimSpace(in.EndISO) == "" {
		return nil, nil, fmt.Errorf("provide startISO/endISO or startDate/endDate")
	}

	start := &cal.EventDateTime{DateTime: in.StartISO}
	end := &cal.EventDateTime{DateTime: in.EndISO}
	if tz := strings.TrimSpace(in.TimeZone); tz != "" {
		start.TimeZone = tz
		end.TimeZone = tz
	}
	return start, end, nil
}
