package main

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/require"
	cal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
)

type stubCalendarService struct {
	events             []*cal.Event
	listErr            error
	insertErr          error
	inserted           *cal.Event
	insertedCalendarID string
}

func (s *stubCalendarService) ListUpcoming(ctx context.Context, calendarID string, since time.Time, maxResults int64) ([]*cal.Event, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	return s.events, nil
}

func (s *stubCalendarService) InsertEvent(ctx context.Context, calendarID string, event *cal.Event) (*cal.Event, error) {
	s.insertedCalendarID = calendarID
	s.inserted = event
	if s.insertErr != nil {
		return nil, s.insertErr
	}
	return &cal.Event{Id: "created-1", HtmlLink: "https://calendar.google.com/event?eid=created-1"}, nil
}

func newEventRouter(svc calendarService) *mux.Router {
	r := mux.NewRouter()
	registerEventRoutes(r, svc, "primary", "secret-token")
	return r
}

func TestListEventsMapsFields(t *testing.T) {
	svc := &stubCalendarService{events: []*cal.Event{
		{
			Id:       "evt-1",
			Summary:  "Hack Night",
			Location: "WALC 1018",
			HtmlLink: "https://calendar.google.com/event?eid=evt-1",
			Start:    &cal.EventDateTime{DateTime: "2025-10-20T18:00:00-04:00"},
			End:      &cal.EventDateTime{DateTime: "2025-10-20T20:00:00-04:00"},
		},
		{
			Id:    "evt-2",
			Start: &cal.EventDateTime{Date: "2025-10-25"},
			End:   &cal.EventDateTime{Date: "2025-10-26"},
		},
	}}

	w := httptest.NewRecorder()
	newEventRouter(svc).ServeHTTP(w, httptest.NewRequest("GET", "/api/events", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var views []eventView
	require.NoError(t, json.NewDecoder(w.Body).Decode(&views))
	require.Len(t, views, 2)
	require.Equal(t, "Hack Night", views[0].Title)
	require.Equal(t, "2025-10-20T18:00:00-04:00", views[0].Start)
	require.Equal(t, "WALC 1018", views[0].Location)
	// Untitled all-day event falls back to the placeholder and the date.
	require.Equal(t, "(untitled)", views[1].Title)
	require.Equal(t, "2025-10-25", views[1].Start)
	require.NotNil(t, views[1].Recurrence)
}

func TestListEventsSurfacesUpstreamDetail(t *testing.T) {
	svc := &stubCalendarService{listErr: &googleapi.Error{
		Code: 403,
		Body: `{"error":{"code":403,"message":"quota exceeded"}}`,
	}}

	w := httptest.NewRecorder()
	newEventRouter(svc).ServeHTTP(w, httptest.NewRequest("GET", "/api/events", nil))

	require.Equal(t, http.StatusInternalServerError, w.Code)
	var payload map[string]json.RawMessage
	require.NoError(t, json.NewDecoder(w.Body).Decode(&payload))
	require.Contains(t, payload, "error")
	require.Contains(t, payload, "detail")
	require.Contains(t, string(payload["detail"]), "quota exceeded")
}

func TestCreateEventRequiresAdmin(t *testing.T) {
	svc := &stubCalendarService{}
	body := bytes.NewReader([]byte(`{"title":"Workshop"}`))

	w := httptest.NewRecorder()
	newEventRouter(svc).ServeHTTP(w, httptest.NewRequest("POST", "/api/events", body))

	require.Equal(t, http.StatusUnauthorized, w.Code)
	require.Nil(t, svc.inserted)
}

func TestCreateEventValidation(t *testing.T) {
	svc := &stubCalendarService{}
	req := httptest.NewRequest("POST", "/api/events", bytes.NewReader([]byte(`{"startDate":"2025-10-25"}`)))
	req.Header.Set("Authorization", "Bearer secret-token")

	w := httptest.NewRecorder()
	newEventRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Contains(t, w.Body.String(), "title is required")
}

func TestCreateEventInsertsAssembledPayload(t *testing.T) {
	svc := &stubCalendarService{}
	payload := `{
		"title": "Workshop",
		"description": "Intro",
		"url": "https://register.example.com",
		"startISO": "2025-10-20T09:00:00-04:00",
		"endISO": "2025-10-20T10:00:00-04:00",
		"timeZone": "America/New_York",
		"location": "WALC 1018",
		"attendees": [{"email": "a@x.com"}],
		"repeat": {"freq": "WEEKLY", "byDay": ["MO"], "count": 6}
	}`
	req := httptest.NewRequest("POST", "/api/events", bytes.NewReader([]byte(payload)))
	req.Header.Set("Authorization", "Bearer secret-token")

	w := httptest.NewRecorder()
	newEventRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp map[string]string
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	require.Equal(t, "created-1", resp["id"])
	require.NotEmpty(t, resp["htmlLink"])

	require.Equal(t, "primary", svc.insertedCalendarID)
	require.Equal(t, "Workshop", svc.inserted.Summary)
	require.Equal(t, "Intro\n\nMore info: https://register.example.com", svc.inserted.Description)
	require.Equal(t, []string{"RRULE:FREQ=WEEKLY;BYDAY=MO;COUNT=6"}, svc.inserted.Recurrence)
	require.Equal(t, "America/New_York", svc.inserted.Start.TimeZone)
	require.Len(t, svc.inserted.Attendees, 1)
	require.Equal(t, "a@x.com", svc.inserted.Attendees[0].Email)
}

func TestCreateEventUpstreamFailure(t *testing.T) {
	svc := &stubCalendarService{insertErr: &googleapi.Error{Code: 500, Body: `{"error":"backend"}`}}
	req := httptest.NewRequest("POST", "/api/events", bytes.NewReader([]byte(`{"title":"Workshop","startDate":"2025-10-25"}`)))
	req.Header.Set("Authorization", "Bearer secret-token")

	w := httptest.NewRecorder()
	newEventRouter(svc).ServeHTTP(w, req)

	require.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestEventsFeedServesICS(t *testing.T) {
	svc := &stubCalendarService{events: []*cal.Event{
		{
			Id:      "evt-1",
			Summary: "Hack Night",
			Start:   &cal.EventDateTime{DateTime: "2025-10-20T18:00:00-04:00"},
			End:     &cal.EventDateTime{DateTime: "2025-10-20T20:00:00-04:00"},
		},
	}}

	w := httptest.NewRecorder()
	newEventRouter(svc).ServeHTTP(w, httptest.NewRequest("GET", "/api/events.ics", nil))

	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Header().Get("Content-Type"), "text/calendar")
	require.Contains(t, w.Body.String(), "SUMMARY:Hack Night")
}

func TestEventRoutesWithoutCalendarConfigured(t *testing.T) {
	w := httptest.NewRecorder()
	newEventRouter(nil).ServeHTTP(w, httptest.NewRequest("GET", "/api/events", nil))
	require.Equal(t, http.StatusInternalServerError, w.Code)
	require.Contains(t, w.Body.String(), "calendar not configured")
}
