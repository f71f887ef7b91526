package auth

import (
	"context"
	"net/http"
	"strings"

	fbauth "firebase.google.com/go/v4/auth"
	"github.com/gin-gonic/gin"
)

// IdentityKey is the gin context key the verified caller is stored under.
// Because gin.Context resolves string keys in Value, services handed the
// gin.Context can read it back with FromContext.
const IdentityKey = "identity"

// TokenCookie is read when no Authorization header is sent.
const TokenCookie = "authToken"

const PlanPremium = "premium"

// Identity is the caller extracted from a verified ID token.
type Identity struct {
	Username string
	Plan     string
	Email    string
}

// TokenVerifier is satisfied by *firebase auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*fbauth.Token, error)
}

func AuthMiddleware(verifier TokenVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		idToken := bearerToken(c)
		if idToken == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Authorization header is missing"})
			return
		}

		token, err := verifier.VerifyIDToken(c, idToken)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "invalid ID token"})
			return
		}

		identity := identityFromToken(token)
		c.Set(IdentityKey, identity)
		c.Set("username", identity.Username)

		c.Next()
	}
}

// RequirePlan rejects callers whose plan is not plan.
func RequirePlan(plan string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, ok := FromContext(c)
		if !ok || identity.Plan != plan {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "This feature requires the " + plan + " plan"})
			return
		}
		c.Next()
	}
}

// FromContext returns the identity stored by AuthMiddleware.
func FromContext(ctx context.Context) (Identity, bool) {
	identity, ok := ctx.Value(IdentityKey).(Identity)
	return identity, ok
}

// Username returns the authenticated username, or "" outside the middleware.
func Username(ctx context.Context) string {
	identity, _ := FromContext(ctx)
	return identity.Username
}

func bearerToken(c *gin.Context) string {
	if header := c.GetHeader("Authorization"); header != "" {
		return strings.TrimSpace(strings.TrimPrefix(header, "Bearer "))
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie
	}
	return ""
}

func identityFromToken(token *fbauth.Token) Identity {
	identity := Identity{Username: token.UID, Plan: "base"}
	if username, ok := token.Claims["username"].(string); ok && username != "" {
		identity.Username = username
	}
	if plan, ok := token.Claims["plan"].(string); ok && plan != "" {
		identity.Plan = plan
	}
	if email, ok := token.Claims["email"].(string); ok {
		identity.Email = email
	}
	return identity
}
