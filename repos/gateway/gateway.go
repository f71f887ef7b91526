package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

var (
	// ErrUnavailable is returned when the dependency failed, answered with an
	// unexpected status, or its breaker is open.
	ErrUnavailable = errors.New("gateway: dependency unavailable")
	// ErrNotFound is returned for a 404. It does not count against the breaker.
	ErrNotFound = errors.New("gateway: not found")
)

const (
	DefaultFailureThreshold = 3
	DefaultRecoveryTimeout  = 10 * time.Second
	DefaultCallTimeout      = 10 * time.Second
)

// Breaker is the part of *gobreaker.CircuitBreaker the gateway relies on.
type Breaker interface {
	Execute(req func() (interface{}, error)) (interface{}, error)
	State() gobreaker.State
}

// BreakerFactory builds the breaker guarding the named dependency.
type BreakerFactory func(name string) Breaker

// Gateway performs guarded calls to remote HTTP dependencies. Each dependency
// name gets its own breaker, created on first use.
type Gateway struct {
	client  *http.Client
	log     *zap.Logger
	factory BreakerFactory

	mu       sync.Mutex
	breakers map[string]Breaker
}

type Option func(*Gateway)

// WithHTTPClient replaces the default client, which times out after DefaultCallTimeout.
func WithHTTPClient(client *http.Client) Option {
	return func(g *Gateway) { g.client = client }
}

// WithBreakerFactory replaces how breakers are built for new dependencies.
func WithBreakerFactory(factory BreakerFactory) Option {
	return func(g *Gateway) { g.factory = factory }
}

// WithBreaker installs b for the named dependency.
func WithBreaker(name string, b Breaker) Option {
	return func(g *Gateway) { g.breakers[name] = b }
}

func New(log *zap.Logger, opts ...Option) *Gateway {
	g := &Gateway{
		client:   &http.Client{Timeout: DefaultCallTimeout},
		log:      log,
		breakers: make(map[string]Breaker),
	}
	g.factory = NewBreakerFactory(log, DefaultFailureThreshold, DefaultRecoveryTimeout)
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// NewBreakerFactory returns a factory for gobreaker breakers that open after
// threshold consecutive failures and probe again after recovery.
func NewBreakerFactory(log *zap.Logger, threshold uint32, recovery time.Duration) BreakerFactory {
	return func(name string) Breaker {
		return gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:        name,
			MaxRequests: 1,
			Timeout:     recovery,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= threshold
			},
			IsSuccessful: func(err error) bool {
				return err == nil || errors.Is(err, ErrNotFound)
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Warn("Circuit breaker state change",
					zap.String("dependency", name),
					zap.String("from", from.String()),
					zap.String("to", to.String()))
			},
		})
	}
}

func (g *Gateway) breaker(name string) Breaker {
	g.mu.Lock()
	defer g.mu.Unlock()

	b, ok := g.breakers[name]
	if !ok {
		b = g.factory(name)
		g.breakers[name] = b
	}
	return b
}

// State reports the breaker state for the named dependency.
func (g *Gateway) State(dependency string) gobreaker.State {
	return g.breaker(dependency).State()
}

// Guard runs fn through the dependency's breaker. An open breaker fails with
// ErrUnavailable without calling fn; errors from fn are returned as is.
func (g *Gateway) Guard(ctx context.Context, dependency string, fn func(ctx context.Context) error) error {
	_, err := g.breaker(dependency).Execute(func() (interface{}, error) {
		return nil, fn(ctx)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		g.log.Debug("Call short-circuited", zap.String("dependency", dependency), zap.Error(err))
		return fmt.Errorf("%w: %s: %v", ErrUnavailable, dependency, err)
	}
	return err
}

// Call sends method to url with body encoded as JSON (when non-nil) and
// returns the raw response body of a 200.
func (g *Gateway) Call(ctx context.Context, dependency, method, url string, body any) (json.RawMessage, error) {
	var payload json.RawMessage
	err := g.Guard(ctx, dependency, func(ctx context.Context) error {
		var err error
		payload, err = g.do(ctx, method, url, body)
		return err
	})
	if err != nil {
		return nil, err
	}
	return payload, nil
}

func (g *Gateway) do(ctx context.Context, method, url string, body any) (json.RawMessage, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("encode request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := g.client.Do(req)
	if err != nil {
		g.log.Warn("Dependency request failed", zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
	case http.StatusNotFound:
		return nil, ErrNotFound
	default:
		g.log.Warn("Dependency answered with unexpected status", zap.String("url", url), zap.Int("status", resp.StatusCode))
		return nil, fmt.Errorf("%w: %s %s: status %d", ErrUnavailable, method, url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read body: %v", ErrUnavailable, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("%w: %s %s: invalid JSON body", ErrUnavailable, method, url)
	}
	return data, nil
}
