package calendar

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"

	timehelper "github.com/planner-api/planner/pkg/timeHelper"
)

// Dependency is the breaker name calendar inserts are guarded under.
const Dependency = "calendar"

// DefaultTimeout bounds a whole insert, token refresh included.
const DefaultTimeout = 10 * time.Second

// Entry is a timed calendar entry.
type Entry struct {
	Summary     string
	Description string
	Start       int64 // Unix seconds
	Duration    time.Duration
}

// Guard runs a remote call behind a circuit breaker.
type Guard interface {
	Guard(ctx context.Context, dependency string, fn func(ctx context.Context) error) error
}

type Config struct {
	ClientID     string
	ClientSecret string
	// CalendarID defaults to "primary".
	CalendarID string
	Location   *time.Location
	Timeout    time.Duration
	// Endpoint overrides the Google OAuth2 endpoint.
	Endpoint *oauth2.Endpoint
	// ClientOptions are appended when building the Calendar API client.
	ClientOptions []option.ClientOption
}

// Service inserts entries into a user's Google Calendar, authenticating with
// the user's stored refresh token.
type Service struct {
	oauth      *oauth2.Config
	calendarID string
	location   *time.Location
	timeout    time.Duration
	guard      Guard
	opts       []option.ClientOption
}

func NewService(cfg Config, guard Guard) *Service {
	endpoint := google.Endpoint
	if cfg.Endpoint != nil {
		endpoint = *cfg.Endpoint
	}
	calendarID := cfg.CalendarID
	if calendarID == "" {
		calendarID = "primary"
	}
	location := cfg.Location
	if location == nil {
		location = time.UTC
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	return &Service{
		oauth: &oauth2.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			Endpoint:     endpoint,
			Scopes:       []string{gcal.CalendarEventsScope},
		},
		calendarID: calendarID,
		location:   location,
		timeout:    timeout,
		guard:      guard,
		opts:       cfg.ClientOptions,
	}
}

// Insert creates entry in the calendar of the account refreshToken belongs to.
func (s *Service) Insert(ctx context.Context, refreshToken string, entry Entry) error {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	return s.guard.Guard(ctx, Dependency, func(ctx context.Context) error {
		client := s.oauth.Client(ctx, &oauth2.Token{RefreshToken: refreshToken})

		opts := append([]option.ClientOption{option.WithHTTPClient(client)}, s.opts...)
		service, err := gcal.NewService(ctx, opts...)
		if err != nil {
			return fmt.Errorf("failed to create calendar service: %w", err)
		}

		_, err = service.Events.Insert(s.calendarID, s.toGoogleEvent(entry)).Context(ctx).Do()
		if err != nil {
			return fmt.Errorf("failed to insert event: %w", err)
		}
		return nil
	})
}

func (s *Service) toGoogleEvent(entry Entry) *gcal.Event {
	end := entry.Start + int64(entry.Duration/time.Second)
	return &gcal.Event{
		Summary:     entry.Summary,
		Description: entry.Description,
		Start: &gcal.EventDateTime{
			DateTime: timehelper.CalendarDateTime(entry.Start, s.location),
			TimeZone: s.location.String(),
		},
		End: &gcal.EventDateTime{
			DateTime: timehelper.CalendarDateTime(end, s.location),
			TimeZone: s.location.String(),
		},
	}
}
