package events

import "github.com/planner-api/planner/repos/recipes"

// Payload is a decoded JSON request body. Numbers are kept as json.Number so
// validation can tell integers from floats.
type Payload map[string]any

type CreateEventRequest struct {
	Timestamp int64
	RecipeID  string
}

type UpdateEventRequest struct {
	EventID   string
	Timestamp *int64
	Synced    bool
}

// DetailedEvent is a stored event with its recipe resolved.
type DetailedEvent struct {
	ID        string          `json:"id"`
	Timestamp int64           `json:"timestamp"`
	Synced    bool            `json:"synced"`
	Recipe    *recipes.Recipe `json:"recipe"`
}

type EventList struct {
	IsLogged bool            `json:"isLogged"`
	Events   []DetailedEvent `json:"events"`
}
