package events

import (
	"encoding/json"
	"math/big"

	"github.com/xorcare/pointer"

	"github.com/planner-api/planner/pkg/apperr"
	timehelper "github.com/planner-api/planner/pkg/timeHelper"
)

// Validator checks event payloads before they may touch any state.
type Validator struct {
	now timehelper.Clock
}

func NewValidator(now timehelper.Clock) *Validator {
	return &Validator{now: now}
}

func (v *Validator) ValidateCreate(p Payload) (CreateEventRequest, error) {
	raw, ok := p["timestamp"]
	if !ok {
		return CreateEventRequest{}, apperr.Invalid("No timestamp provided")
	}
	ts, err := v.timestamp(raw)
	if err != nil {
		return CreateEventRequest{}, err
	}

	raw, ok = p["recipeId"]
	if !ok {
		return CreateEventRequest{}, apperr.Invalid("No recipe id provided")
	}
	recipeID, ok := raw.(string)
	if !ok {
		return CreateEventRequest{}, apperr.Invalid("Recipe id must be a string")
	}

	return CreateEventRequest{Timestamp: ts, RecipeID: recipeID}, nil
}

func (v *Validator) ValidateUpdate(p Payload) (UpdateEventRequest, error) {
	var req UpdateEventRequest

	if raw, ok := p["timestamp"]; ok {
		ts, err := v.timestamp(raw)
		if err != nil {
			return UpdateEventRequest{}, err
		}
		req.Timestamp = pointer.Int64(ts)
	}

	raw, ok := p["eventId"]
	if !ok {
		return UpdateEventRequest{}, apperr.Invalid("No event id provided")
	}
	if req.EventID, ok = raw.(string); !ok {
		return UpdateEventRequest{}, apperr.Invalid("Event id must be a string")
	}

	raw, ok = p["synced"]
	if !ok {
		return UpdateEventRequest{}, apperr.Invalid("No synced provided")
	}
	if req.Synced, ok = raw.(bool); !ok {
		return UpdateEventRequest{}, apperr.Invalid("Synced must be a boolean")
	}

	return req, nil
}

// timestamp accepts an integral number of seconds within [now, now+5y].
func (v *Validator) timestamp(raw any) (int64, error) {
	var ts int64
	switch n := raw.(type) {
	case json.Number:
		parsed, err := n.Int64()
		if err != nil {
			return 0, outOfRange(n)
		}
		ts = parsed
	case int:
		ts = int64(n)
	case int64:
		ts = n
	default:
		return 0, apperr.Invalid("Timestamp must be an integer")
	}

	now := v.now()
	if ts < now.Unix() {
		return 0, apperr.Invalid("Date is in the past")
	}
	if ts > timehelper.Horizon(now).Unix() {
		return 0, apperr.Invalid("Date is too far in the future")
	}
	return ts, nil
}

// outOfRange explains why n did not parse as an int64. Integer literals that
// overflow are out of the allowed date range rather than malformed.
func outOfRange(n json.Number) error {
	v, ok := new(big.Int).SetString(n.String(), 10)
	switch {
	case !ok:
		return apperr.Invalid("Timestamp must be an integer")
	case v.Sign() < 0:
		return apperr.Invalid("Date is in the past")
	default:
		return apperr.Invalid("Date is too far in the future")
	}
}
