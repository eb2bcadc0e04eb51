package main

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"embedded-api/calendar"
	"embedded-api/security"
	"github.com/gorilla/mux"
	cal "google.golang.org/api/calendar/v3"
)

const upcomingEventsLimit = 50

// calendarService is the calendar collaborator used by the event routes.
type calendarService interface {
	ListUpcoming(ctx context.Context, calendarID string, since time.Time, maxResults int64) ([]*cal.Event, error)
	InsertEvent(ctx context.Context, calendarID string, event *cal.Event) (*cal.Event, error)
}

type eventHandler struct {
	calendars  calendarService
	calendarID string
	adminToken string
}

func registerEventRoutes(r *mux.Router, calendars calendarService, calendarID, adminToken string) {
	h := &eventHandler{
		calendars:  calendars,
		calendarID: calendarID,
		adminToken: adminToken,
	}
	r.HandleFunc("/api/events", h.handleList).Methods("GET")
	r.HandleFunc("/api/events", h.handleCreate).Methods("POST")
	r.HandleFunc("/api/events.ics", h.handleFeed).Methods("GET")
}

// eventView is the list response shape.
type eventView struct {
	ID          string               `json:"id"`
	Title       string               `json:"title"`
	Description string               `json:"description"`
	URL         string               `json:"url"`
	Start       string               `json:"start"`
	End         string               `json:"end"`
	Location    string               `json:"location"`
	Recurrence  []string             `json:"recurrence"`
	Attendees   []*cal.EventAttendee `json:"attendees"`
}

func (h *eventHandler) upcoming(r *http.Request) ([]*cal.Event, error) {
	return h.calendars.ListUpcoming(r.Context(), h.calendarID, time.Now().UTC(), upcomingEventsLimit)
}

func (h *eventHandler) handleList(w http.ResponseWriter, r *http.Request) {
	if h.calendars == nil {
		writeError(w, http.StatusInternalServerError, "calendar not configured")
		return
	}
	events, err := h.upcoming(r)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	views := make([]eventView, 0, len(events))
	for _, e := range events {
		views = append(views, toEventView(e))
	}
	writeJSON(w, http.StatusOK, views)
}

func toEventView(e *cal.Event) eventView {
	view := eventView{
		ID:          e.Id,
		Title:       e.Summary,
		Description: e.Description,
		URL:         e.HtmlLink,
		Location:    e.Location,
		Recurrence:  e.Recurrence,
		Attendees:   e.Attendees,
	}
	if view.Title == "" {
		view.Title = "(untitled)"
	}
	if view.Recurrence == nil {
		view.Recurrence = []string{}
	}
	if view.Attendees == nil {
		view.Attendees = []*cal.EventAttendee{}
	}
	if e.Start != nil {
		view.Start = firstNonEmpty(e.Start.DateTime, e.Start.Date)
	}
	if e.End != nil {
		view.End = firstNonEmpty(e.End.DateTime, e.End.Date)
	}
	return view
}

func firstNonEmpty(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

func (h *eventHandler) handleCreate(w http.ResponseWriter, r *http.Request) {
	if !security.CheckAdmin(r, h.adminToken) {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	if h.calendars == nil {
		writeError(w, http.StatusInternalServerError, "calendar not configured")
		return
	}

	var in calendar.EventInput
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	event, err := calendar.AssembleEvent(&in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.calendars.InsertEvent(r.Context(), h.calendarID, event)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"id":       created.Id,
		"htmlLink": created.HtmlLink,
	})
}

func (h *eventHandler) handleFeed(w http.ResponseWriter, r *http.Request) {
	if h.calendars == nil {
		writeError(w, http.StatusInternalServerError, "calendar not configured")
		return
	}
	events, err := h.upcoming(r)
	if err != nil {
		writeUpstreamError(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/calendar; charset=utf-8")
	_, _ = w.Write([]byte(calendar.BuildICS(events)))
}
