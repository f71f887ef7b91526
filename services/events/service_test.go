package events

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/planner-api/planner/pkg/apperr"
	timehelper "github.com/planner-api/planner/pkg/timeHelper"
	"github.com/planner-api/planner/repos/docstore"
	store "github.com/planner-api/planner/repos/events"
	"github.com/planner-api/planner/repos/recipes"
)

type fakeRecipes struct {
	recipes map[string]*recipes.Recipe
	err     error
	calls   int
}

func (f *fakeRecipes) Get(_ context.Context, id string) (*recipes.Recipe, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	recipe, ok := f.recipes[id]
	if !ok {
		return nil, recipes.ErrNotFound
	}
	return recipe, nil
}

type fakeSyncer struct {
	linked bool
	err    error
	synced []store.Event
}

func (f *fakeSyncer) SyncEvent(_ context.Context, _ string, event store.Event) (*recipes.Recipe, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.synced = append(f.synced, event)
	return &recipes.Recipe{ID: event.Recipe, Name: "Paella"}, nil
}

func (f *fakeSyncer) IsLinked(context.Context, string) (bool, error) {
	return f.linked, nil
}

type fakeNotifier struct {
	sent []store.Event
	err  error
}

func (f *fakeNotifier) NotifySynced(_ context.Context, _ string, event store.Event, _ *recipes.Recipe) error {
	f.sent = append(f.sent, event)
	return f.err
}

type fixture struct {
	service  *EventsService
	docs     *docstore.Memory
	store    *store.Store
	recipes  *fakeRecipes
	syncer   *fakeSyncer
	notifier *fakeNotifier
}

func newFixture() *fixture {
	f := &fixture{
		docs: docstore.NewMemory(),
		recipes: &fakeRecipes{recipes: map[string]*recipes.Recipe{
			"1": {ID: "1", Name: "Paella", Summary: "Rice with seafood", Tags: []string{"rice"}},
			"2": {ID: "2", Name: "Gazpacho", Tags: []string{}},
		}},
		syncer:   &fakeSyncer{},
		notifier: &fakeNotifier{},
	}
	f.store = store.NewStore(f.docs)
	f.service = NewEventsService(f.store, f.recipes, f.syncer, zap.NewNop(),
		WithClock(timehelper.Fixed(now)),
		WithNotifier(f.notifier),
	)
	return f
}

// seed stores events for username directly, bypassing validation.
func (f *fixture) seed(t *testing.T, username string, events ...store.Event) {
	t.Helper()
	ctx := context.Background()
	book, err := f.store.Load(ctx)
	require.NoError(t, err)
	book.Set(username, events)
	require.NoError(t, f.store.Save(ctx, book))
}

func (f *fixture) events(t *testing.T, username string) []store.Event {
	t.Helper()
	book, err := f.store.Load(context.Background())
	require.NoError(t, err)
	return book.For(username)
}

func TestCreateEvent(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	ts := now.Unix() + 3600

	event, err := f.service.CreateEvent(ctx, "maribelrb", Payload{"timestamp": num(ts), "recipeId": "1"})
	require.NoError(t, err)
	assert.Len(t, event.ID, 32)
	assert.Equal(t, ts, event.Timestamp)
	assert.False(t, event.Synced)
	assert.Equal(t, "1", event.Recipe)

	stored := f.events(t, "maribelrb")
	require.Len(t, stored, 1)
	assert.Equal(t, *event, stored[0])
	assert.Empty(t, f.events(t, "someoneelse"))
}

func TestCreateEvent_AppendsAndKeepsOtherUsers(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	other := store.Event{ID: "o1", Timestamp: now.Unix() + 10, Recipe: "2"}
	f.seed(t, "otheruser", other)

	_, err := f.service.CreateEvent(ctx, "maribelrb", Payload{"timestamp": num(now.Unix() + 60), "recipeId": "1"})
	require.NoError(t, err)
	_, err = f.service.CreateEvent(ctx, "maribelrb", Payload{"timestamp": num(now.Unix() + 120), "recipeId": "2"})
	require.NoError(t, err)

	assert.Len(t, f.events(t, "maribelrb"), 2)
	assert.Equal(t, []store.Event{other}, f.events(t, "otheruser"))
}

func TestCreateEvent_InvalidPayloadTouchesNothing(t *testing.T) {
	f := newFixture()

	_, err := f.service.CreateEvent(context.Background(), "maribelrb", Payload{"recipeId": "1"})
	assert.True(t, errors.Is(err, apperr.Validation))
	assert.Equal(t, 0, f.recipes.calls)
	assert.Equal(t, 0, f.docs.Writes())
}

func TestCreateEvent_RecipeFailures(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	payload := Payload{"timestamp": num(now.Unix() + 60), "recipeId": "404"}

	_, err := f.service.CreateEvent(ctx, "maribelrb", payload)
	assert.True(t, errors.Is(err, ErrRecipeNotFound))

	f.recipes.err = recipes.ErrUnavailable
	payload["recipeId"] = "1"
	_, err = f.service.CreateEvent(ctx, "maribelrb", payload)
	assert.True(t, errors.Is(err, ErrRecipeServiceUnavailable))
	assert.Equal(t, "Failed to communicate with recipes service", apperr.Message(err))

	assert.Equal(t, 0, f.docs.Writes())
}

func TestListEvents(t *testing.T) {
	f := newFixture()
	f.syncer.linked = true
	f.seed(t, "maribelrb",
		store.Event{ID: "past", Timestamp: now.Unix() - 1, Recipe: "1"},
		store.Event{ID: "now", Timestamp: now.Unix(), Recipe: "1", Synced: true},
		store.Event{ID: "gone", Timestamp: now.Unix() + 10, Recipe: "404"},
		store.Event{ID: "later", Timestamp: now.Unix() + 20, Recipe: "2"},
	)

	list, err := f.service.ListEvents(context.Background(), "maribelrb")
	require.NoError(t, err)
	assert.True(t, list.IsLogged)
	require.Len(t, list.Events, 2)

	assert.Equal(t, "now", list.Events[0].ID)
	assert.True(t, list.Events[0].Synced)
	assert.Equal(t, "Paella", list.Events[0].Recipe.Name)
	assert.Equal(t, "later", list.Events[1].ID)
	assert.Equal(t, "Gazpacho", list.Events[1].Recipe.Name)
}

func TestListEvents_Empty(t *testing.T) {
	f := newFixture()

	list, err := f.service.ListEvents(context.Background(), "maribelrb")
	require.NoError(t, err)
	assert.False(t, list.IsLogged)
	assert.NotNil(t, list.Events)
	assert.Empty(t, list.Events)
	assert.Equal(t, 0, f.docs.Writes())
}

func TestListEvents_RecipeServiceDown(t *testing.T) {
	f := newFixture()
	f.seed(t, "maribelrb", store.Event{ID: "e1", Timestamp: now.Unix() + 10, Recipe: "1"})
	f.recipes.err = recipes.ErrUnavailable

	_, err := f.service.ListEvents(context.Background(), "maribelrb")
	assert.True(t, errors.Is(err, ErrRecipeServiceUnavailable))
}

func TestUpdateEvent_Reschedule(t *testing.T) {
	f := newFixture()
	f.seed(t, "maribelrb", store.Event{ID: "e1", Timestamp: now.Unix() + 10, Recipe: "1"})
	ts := now.Unix() + 7200

	event, err := f.service.UpdateEvent(context.Background(), "maribelrb", Payload{"eventId": "e1", "synced": false, "timestamp": num(ts)})
	require.NoError(t, err)
	assert.Equal(t, ts, event.Timestamp)
	assert.False(t, event.Synced)
	assert.Empty(t, f.syncer.synced)
	assert.Empty(t, f.notifier.sent)
	assert.Equal(t, []store.Event{*event}, f.events(t, "maribelrb"))
}

func TestUpdateEvent_Sync(t *testing.T) {
	f := newFixture()
	f.seed(t, "maribelrb", store.Event{ID: "e1", Timestamp: now.Unix() + 10, Recipe: "1"})
	ts := now.Unix() + 7200

	event, err := f.service.UpdateEvent(context.Background(), "maribelrb", Payload{"eventId": "e1", "synced": true, "timestamp": num(ts)})
	require.NoError(t, err)
	assert.True(t, event.Synced)

	require.Len(t, f.syncer.synced, 1)
	assert.Equal(t, ts, f.syncer.synced[0].Timestamp)
	assert.Equal(t, "1", f.syncer.synced[0].Recipe)
	assert.Equal(t, []store.Event{*event}, f.notifier.sent)
	assert.True(t, f.events(t, "maribelrb")[0].Synced)
}

func TestUpdateEvent_SyncFailurePersistsNothing(t *testing.T) {
	f := newFixture()
	original := store.Event{ID: "e1", Timestamp: now.Unix() + 10, Recipe: "1"}
	f.seed(t, "maribelrb", original)
	writes := f.docs.Writes()
	f.syncer.err = apperr.New(apperr.NotLinked, "User not logged in Google")

	_, err := f.service.UpdateEvent(context.Background(), "maribelrb", Payload{"eventId": "e1", "synced": true, "timestamp": num(now.Unix() + 99)})
	assert.True(t, errors.Is(err, apperr.NotLinked))
	assert.Equal(t, writes, f.docs.Writes())
	assert.Equal(t, []store.Event{original}, f.events(t, "maribelrb"))
	assert.Empty(t, f.notifier.sent)
}

func TestUpdateEvent_NotifierFailureIsIgnored(t *testing.T) {
	f := newFixture()
	f.seed(t, "maribelrb", store.Event{ID: "e1", Timestamp: now.Unix() + 10, Recipe: "1"})
	f.notifier.err = errors.New("mail down")

	event, err := f.service.UpdateEvent(context.Background(), "maribelrb", Payload{"eventId": "e1", "synced": true})
	require.NoError(t, err)
	assert.True(t, event.Synced)
	assert.True(t, f.events(t, "maribelrb")[0].Synced)
}

func TestUpdateEvent_Rejections(t *testing.T) {
	f := newFixture()
	f.seed(t, "maribelrb",
		store.Event{ID: "synced", Timestamp: now.Unix() + 10, Recipe: "1", Synced: true},
	)
	f.seed(t, "otheruser", store.Event{ID: "theirs", Timestamp: now.Unix() + 10, Recipe: "1"})
	writes := f.docs.Writes()
	ctx := context.Background()

	_, err := f.service.UpdateEvent(ctx, "maribelrb", Payload{"eventId": "missing", "synced": true})
	assert.True(t, errors.Is(err, ErrEventNotFound))

	_, err = f.service.UpdateEvent(ctx, "maribelrb", Payload{"eventId": "theirs", "synced": true})
	assert.True(t, errors.Is(err, ErrEventNotFound))

	_, err = f.service.UpdateEvent(ctx, "maribelrb", Payload{"eventId": "synced", "synced": false})
	assert.True(t, errors.Is(err, ErrEventAlreadySynced))
	assert.True(t, errors.Is(err, apperr.Conflict))

	_, err = f.service.UpdateEvent(ctx, "maribelrb", Payload{"eventId": "synced", "synced": false, "timestamp": num(now.Unix() + 3600)})
	assert.True(t, errors.Is(err, ErrEventAlreadySynced), "rescheduling a synced event")
	assert.Equal(t, now.Unix()+10, f.events(t, "maribelrb")[0].Timestamp)

	assert.Equal(t, writes, f.docs.Writes())
	assert.Empty(t, f.syncer.synced)
}

func TestDeleteEvent(t *testing.T) {
	f := newFixture()
	keep := store.Event{ID: "e2", Timestamp: now.Unix() + 20, Recipe: "2"}
	f.seed(t, "maribelrb", store.Event{ID: "e1", Timestamp: now.Unix() + 10, Recipe: "1", Synced: true}, keep)
	ctx := context.Background()

	require.NoError(t, f.service.DeleteEvent(ctx, "maribelrb", "e1"))
	assert.Equal(t, []store.Event{keep}, f.events(t, "maribelrb"))

	require.NoError(t, f.service.DeleteEvent(ctx, "maribelrb", "e1"))
	assert.Equal(t, []store.Event{keep}, f.events(t, "maribelrb"))
}

func TestDeleteEvent_FirstUse(t *testing.T) {
	f := newFixture()

	require.NoError(t, f.service.DeleteEvent(context.Background(), "maribelrb", "nope"))
	assert.Empty(t, f.events(t, "maribelrb"))
}

func TestCreateThenList(t *testing.T) {
	f := newFixture()
	ctx := context.Background()

	created, err := f.service.CreateEvent(ctx, "maribelrb", Payload{"timestamp": num(now.Unix() + 60), "recipeId": "1"})
	require.NoError(t, err)

	list, err := f.service.ListEvents(ctx, "maribelrb")
	require.NoError(t, err)
	require.Len(t, list.Events, 1)
	assert.Equal(t, created.ID, list.Events[0].ID)
	assert.Equal(t, "Paella", list.Events[0].Recipe.Name)
}
