package recipes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/planner-api/planner/pkg/apperr"
	"github.com/planner-api/planner/repos/gateway"
)

// Dependency is the breaker name recipe lookups are guarded under.
const Dependency = "recipes"

var (
	ErrNotFound    = apperr.New(apperr.NotFound, "Recipe not found")
	ErrUnavailable = apperr.New(apperr.DependencyUnavailable, "Failed to communicate with recipes service")
)

// Caller is the guarded HTTP call the client goes through.
type Caller interface {
	Call(ctx context.Context, dependency, method, url string, body any) (json.RawMessage, error)
}

// Service looks up recipes on the remote recipe service. Results are never cached.
type Service struct {
	gateway Caller
	baseURL string
}

// NewService creates a client for the recipe service rooted at baseURL,
// e.g. "http://recipes:5001/api/v1".
func NewService(gw Caller, baseURL string) *Service {
	return &Service{
		gateway: gw,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Get fetches recipe id. It returns ErrNotFound when the service does not
// know the recipe and ErrUnavailable for every other failure.
func (s *Service) Get(ctx context.Context, id string) (*Recipe, error) {
	apiURL := fmt.Sprintf("%s/recipes/%s", s.baseURL, url.PathEscape(id))

	body, err := s.gateway.Call(ctx, Dependency, http.MethodGet, apiURL, nil)
	if errors.Is(err, gateway.ErrNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	var recipe Recipe
	if err := json.Unmarshal(body, &recipe); err != nil {
		return nil, fmt.Errorf("%w: decode recipe %s: %v", ErrUnavailable, id, err)
	}
	if recipe.ID == "" {
		recipe.ID = id
	}
	return &recipe, nil
}
