package recipes

import "encoding/json"

// Recipe is the detail served by the recipe service.
type Recipe struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Summary  string   `json:"summary,omitempty"`
	Tags     []string `json:"tags"`
	ImageURL *string  `json:"imageUrl,omitempty"`
}

// UnmarshalJSON accepts the recipe service's "_id" as well as "id", and
// "description" when "summary" is absent.
func (r *Recipe) UnmarshalJSON(data []byte) error {
	var raw struct {
		ID          json.RawMessage `json:"id"`
		MongoID     json.RawMessage `json:"_id"`
		Name        string          `json:"name"`
		Summary     string          `json:"summary"`
		Description string          `json:"description"`
		Tags        []string        `json:"tags"`
		ImageURL    *string         `json:"imageUrl"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	r.ID = identifier(raw.ID)
	if r.ID == "" {
		r.ID = identifier(raw.MongoID)
	}
	r.Name = raw.Name
	r.Summary = raw.Summary
	if r.Summary == "" {
		r.Summary = raw.Description
	}
	r.Tags = raw.Tags
	if r.Tags == nil {
		r.Tags = []string{}
	}
	r.ImageURL = raw.ImageURL
	return nil
}

// identifier renders a JSON string or number id as a string.
func identifier(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}
