package sync

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/planner-api/planner/pkg/apperr"
	"github.com/planner-api/planner/repos/calendar"
	store "github.com/planner-api/planner/repos/events"
	"github.com/planner-api/planner/repos/recipes"
)

// EventDuration is the length of every calendar entry created for an event.
const EventDuration = time.Hour

var (
	ErrNotLinked            = apperr.New(apperr.NotLinked, "User not logged in Google")
	ErrCalendarInsertFailed = apperr.New(apperr.DependencyUnavailable, "Failed to communicate with Google Calendar")
)

type Credentials interface {
	Login(ctx context.Context, username, refreshToken string) error
	Logout(ctx context.Context, username string) error
	Lookup(ctx context.Context, username string) (string, bool, error)
}

type Recipes interface {
	Get(ctx context.Context, id string) (*recipes.Recipe, error)
}

type Calendar interface {
	Insert(ctx context.Context, refreshToken string, entry calendar.Entry) error
}

// SyncService mirrors planner events into the user's Google Calendar and
// manages the stored calendar credentials.
type SyncService struct {
	credentials Credentials
	recipes     Recipes
	calendar    Calendar
	log         *zap.Logger
}

func NewSyncService(credentials Credentials, recipes Recipes, calendar Calendar, log *zap.Logger) *SyncService {
	return &SyncService{
		credentials: credentials,
		recipes:     recipes,
		calendar:    calendar,
		log:         log,
	}
}

// SyncEvent inserts event into username's calendar and returns the recipe
// the entry was built from. Nothing is inserted unless every lookup succeeded.
func (s *SyncService) SyncEvent(ctx context.Context, username string, event store.Event) (*recipes.Recipe, error) {
	refreshToken, ok, err := s.credentials.Lookup(ctx, username)
	if err != nil {
		return nil, fmt.Errorf("lookup calendar credential: %w", err)
	}
	if !ok {
		return nil, ErrNotLinked
	}

	recipe, err := s.recipes.Get(ctx, event.Recipe)
	if err != nil {
		s.log.Warn("Could not fetch recipe for calendar sync",
			zap.String("username", username),
			zap.String("recipe", event.Recipe),
			zap.Error(err))
		return nil, err
	}

	entry := calendar.Entry{
		Summary:     recipe.Name,
		Description: recipe.Summary,
		Start:       event.Timestamp,
		Duration:    EventDuration,
	}
	if err := s.calendar.Insert(ctx, refreshToken, entry); err != nil {
		s.log.Error("Calendar insert failed",
			zap.String("username", username),
			zap.String("eventID", event.ID),
			zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrCalendarInsertFailed, err)
	}

	s.log.Info("Event synced to calendar", zap.String("username", username), zap.String("eventID", event.ID))
	return recipe, nil
}

// IsLinked reports whether username has a stored calendar credential.
func (s *SyncService) IsLinked(ctx context.Context, username string) (bool, error) {
	_, ok, err := s.credentials.Lookup(ctx, username)
	if err != nil {
		return false, fmt.Errorf("lookup calendar credential: %w", err)
	}
	return ok, nil
}

// LoginCalendar stores the refresh token carried by payload for username.
func (s *SyncService) LoginCalendar(ctx context.Context, username string, payload LoginPayload) error {
	refreshToken, err := payload.RefreshToken()
	if err != nil {
		return err
	}
	if err := s.credentials.Login(ctx, username, refreshToken); err != nil {
		return fmt.Errorf("store calendar credential: %w", err)
	}
	return nil
}

// LogoutCalendar forgets username's calendar credential, if any.
func (s *SyncService) LogoutCalendar(ctx context.Context, username string) error {
	if err := s.credentials.Logout(ctx, username); err != nil {
		return fmt.Errorf("remove calendar credential: %w", err)
	}
	return nil
}
