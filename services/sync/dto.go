package sync

import "github.com/planner-api/planner/pkg/apperr"

// LoginPayload is the decoded body of a calendar login request.
type LoginPayload map[string]any

// RefreshToken validates the payload and returns the refresh token.
func (p LoginPayload) RefreshToken() (string, error) {
	raw, ok := p["refreshToken"]
	if !ok {
		return "", apperr.Invalid("No refresh token provided")
	}
	token, ok := raw.(string)
	if !ok {
		return "", apperr.Invalid("Refresh token must be a string")
	}
	if token == "" {
		return "", apperr.Invalid("Refresh token must not be empty")
	}
	return token, nil
}
