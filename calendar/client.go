package calendar

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	cal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"embedded-api/security"
)

// Client wraps the Google Calendar API for the two operations this service
// performs. Failed calls surface immediately; calendar writes are not safe to
// retry blindly.
type Client struct {
	svc *cal.Service
}

// NewClient resolves credentials from the environment and builds the client.
func NewClient(ctx context.Context) (*Client, error) {
	httpClient, err := security.GoogleHTTPClient(ctx)
	if err != nil {
		return nil, err
	}
	svc, err := cal.NewService(ctx, option.WithHTTPClient(httpClient))
	if err != nil {
		return nil, err
	}
	return &Client{svc: svc}, nil
}

// ListUpcoming returns single-instance events starting after since, ordered
// by start time.
func (c *Client) ListUpcoming(ctx context.Context, calendarID string, since time.Time, maxResults int64) ([]*cal.Event, error) {
	res, err := c.svc.Events.List(calendarID).
		TimeMin(since.Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do()
	if err != nil {
		return nil, err
	}
	return res.Items, nil
}

// InsertEvent creates the event on the given calendar.
func (c *Client) InsertEvent(ctx context.Context, calendarID string, event *cal.Event) (*cal.Event, error) {
	return c.svc.Events.Insert(calendarID, event).Context(ctx).Do()
}

// UpstreamDetail extracts the decoded Google error body when there is one, so
// handlers can attach it to their 500 response.
func UpstreamDetail(err error) json.RawMessage {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) || gerr.Body == "" {
		return nil
	}
	if !json.Valid([]byte(gerr.Body)) {
		return nil
	}
	return json.RawMessage(gerr.Body)
}
