package security

import (
	"context"
	"errors"
	"net/http"
	"os"
	"strings"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"golang.org/x/oauth2/jwt"
	cal "google.golang.org/api/calendar/v3"
)

// CalendarScopes grants full event management on the configured calendar.
var CalendarScopes = []string{cal.CalendarScope}

// GoogleHTTPClient resolves Google Calendar credentials from the environment
// and returns an authenticated HTTP client. A service account
// (GOOGLE_CLIENT_EMAIL + GOOGLE_PRIVATE_KEY) is preferred; an OAuth refresh
// token (GOOGLE_CLIENT_ID/SECRET/REFRESH_TOKEN) is the fallback.
func GoogleHTTPClient(ctx context.Context) (*http.Client, error) {
	if email, key := os.Getenv("GOOGLE_CLIENT_EMAIL"), os.Getenv("GOOGLE_PRIVATE_KEY"); email != "" && key != "" {
		conf := &jwt.Config{
			Email: email,
			// Hosted env vars carry the PEM with literal \n sequences.
			PrivateKey: []byte(strings.ReplaceAll(key, `\n`, "\n")),
			Scopes:     CalendarScopes,
			TokenURL:   google.JWTTokenURL,
		}
		return conf.Client(ctx), nil
	}

	clientID := os.Getenv("GOOGLE_CLIENT_ID")
	clientSecret := os.Getenv("GOOGLE_CLIENT_SECRET")
	refreshToken := os.Getenv("GOOGLE_REFRESH_TOKEN")
	if clientID != "" && clientSecret != "" && refreshToken != "" {
		conf := &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			Scopes:       CalendarScopes,
			Endpoint:     google.Endpoint,
		}
		return conf.Client(ctx, &oauth2.Token{RefreshToken: refreshToken}), nil
	}

	return nil, errors.New("no Google credentials available")
}
