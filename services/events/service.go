package events

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/planner-api/planner/pkg/apperr"
	"github.com/planner-api/planner/pkg/eventid"
	timehelper "github.com/planner-api/planner/pkg/timeHelper"
	store "github.com/planner-api/planner/repos/events"
	"github.com/planner-api/planner/repos/recipes"
)

var (
	ErrEventNotFound      = apperr.New(apperr.NotFound, "Event not found")
	ErrEventAlreadySynced = apperr.New(apperr.Conflict, "Event already synced")

	ErrRecipeNotFound           = recipes.ErrNotFound
	ErrRecipeServiceUnavailable = recipes.ErrUnavailable
)

type Store interface {
	Load(ctx context.Context) (*store.Book, error)
	Save(ctx context.Context, book *store.Book) error
}

type Recipes interface {
	Get(ctx context.Context, id string) (*recipes.Recipe, error)
}

// Syncer mirrors an event into the user's calendar.
type Syncer interface {
	SyncEvent(ctx context.Context, username string, event store.Event) (*recipes.Recipe, error)
	IsLinked(ctx context.Context, username string) (bool, error)
}

// Notifier is told about events that were synced and persisted.
type Notifier interface {
	NotifySynced(ctx context.Context, username string, event store.Event, recipe *recipes.Recipe) error
}

type Option func(*EventsService)

func WithClock(now timehelper.Clock) Option {
	return func(s *EventsService) { s.now = now }
}

func WithNotifier(n Notifier) Option {
	return func(s *EventsService) { s.notifier = n }
}

// EventsService owns the lifecycle of users' planned events.
//
// Every operation reads the shared events blob right before mutating it and
// writes it back afterwards, with no locking in between. Two concurrent
// mutations can therefore overwrite each other, including mutations by
// different users since they share one blob.
type EventsService struct {
	store     Store
	recipes   Recipes
	syncer    Syncer
	notifier  Notifier
	now       timehelper.Clock
	validator *Validator
	log       *zap.Logger
}

func NewEventsService(store Store, recipes Recipes, syncer Syncer, log *zap.Logger, opts ...Option) *EventsService {
	s := &EventsService{
		store:   store,
		recipes: recipes,
		syncer:  syncer,
		now:     timehelper.SystemClock,
		log:     log,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.validator = NewValidator(s.now)
	return s
}

// CreateEvent adds an unsynced event for an existing recipe.
func (s *EventsService) CreateEvent(ctx context.Context, username string, payload Payload) (*store.Event, error) {
	req, err := s.validator.ValidateCreate(payload)
	if err != nil {
		return nil, err
	}

	if _, err := s.recipes.Get(ctx, req.RecipeID); err != nil {
		s.log.Warn("Recipe check failed", zap.String("username", username), zap.String("recipe", req.RecipeID), zap.Error(err))
		return nil, err
	}

	book, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	event := store.Event{
		ID:        eventid.New(),
		Timestamp: req.Timestamp,
		Synced:    false,
		Recipe:    req.RecipeID,
	}
	book.Set(username, append(book.For(username), event))

	if err := s.store.Save(ctx, book); err != nil {
		return nil, fmt.Errorf("save events: %w", err)
	}

	s.log.Info("Event created", zap.String("username", username), zap.String("eventID", event.ID))
	return &event, nil
}

// ListEvents returns username's upcoming events with live recipe detail.
// Events whose recipe no longer exists are left out.
func (s *EventsService) ListEvents(ctx context.Context, username string) (*EventList, error) {
	book, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	linked, err := s.syncer.IsLinked(ctx, username)
	if err != nil {
		return nil, err
	}

	now := s.now().Unix()
	list := &EventList{IsLogged: linked, Events: []DetailedEvent{}}
	for _, event := range book.For(username) {
		if event.Timestamp < now {
			continue
		}

		recipe, err := s.recipes.Get(ctx, event.Recipe)
		if errors.Is(err, ErrRecipeNotFound) {
			s.log.Debug("Skipping event with unknown recipe", zap.String("eventID", event.ID), zap.String("recipe", event.Recipe))
			continue
		}
		if err != nil {
			return nil, err
		}

		list.Events = append(list.Events, DetailedEvent{
			ID:        event.ID,
			Timestamp: event.Timestamp,
			Synced:    event.Synced,
			Recipe:    recipe,
		})
	}
	return list, nil
}

// UpdateEvent reschedules an unsynced event and optionally syncs it to the
// user's calendar. Synced events cannot be changed. Nothing is written when
// the calendar sync fails.
func (s *EventsService) UpdateEvent(ctx context.Context, username string, payload Payload) (*store.Event, error) {
	req, err := s.validator.ValidateUpdate(payload)
	if err != nil {
		return nil, err
	}

	book, err := s.store.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load events: %w", err)
	}

	events := book.For(username)
	idx := indexOf(events, req.EventID)
	if idx < 0 {
		return nil, ErrEventNotFound
	}

	event := events[idx]
	if event.Synced {
		return nil, ErrEventAlreadySynced
	}
	if req.Timestamp != nil {
		event.Timestamp = *req.Timestamp
	}

	var synced *recipes.Recipe
	if req.Synced {
		synced, err = s.syncer.SyncEvent(ctx, username, event)
		if err != nil {
			return nil, err
		}
		event.Synced = true
	}

	events[idx] = event
	book.Set(username, events)
	if err := s.store.Save(ctx, book); err != nil {
		return nil, fmt.Errorf("save events: %w", err)
	}

	if synced != nil && s.notifier != nil {
		if err := s.notifier.NotifySynced(ctx, username, event, synced); err != nil {
			s.log.Warn("Could not send sync confirmation", zap.String("username", username), zap.String("eventID", event.ID), zap.Error(err))
		}
	}
	return &event, nil
}

// DeleteEvent removes the event with id. Deleting an unknown id is not an error.
func (s *EventsService) DeleteEvent(ctx context.Context, username, id string) error {
	book, err := s.store.Load(ctx)
	if err != nil {
		return fmt.Errorf("load events: %w", err)
	}

	events := book.For(username)
	if idx := indexOf(events, id); idx >= 0 {
		events = append(events[:idx], events[idx+1:]...)
	}
	book.Set(username, events)

	if err := s.store.Save(ctx, book); err != nil {
		return fmt.Errorf("save events: %w", err)
	}
	return nil
}

func indexOf(events []store.Event, id string) int {
	for i, event := range events {
		if event.ID == id {
			return i
		}
	}
	return -1
}
