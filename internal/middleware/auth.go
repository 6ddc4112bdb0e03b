package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/emilythestrangee/reddit-clone/api/internal/auth"
)

const identityKey = "reddit_identity"

// SetIdentity stores the authenticated actor on the request context.
func SetIdentity(c *gin.Context, id *auth.Identity) {
	c.Set(identityKey, id)
}

// GetIdentity returns the actor stored by the auth middleware, or nil for
// anonymous requests.
func GetIdentity(c *gin.Context) *auth.Identity {
	if v, exists := c.Get(identityKey); exists {
		if id, ok := v.(*auth.Identity); ok {
			return id
		}
	}
	return nil
}

// RequireAuth rejects requests without a valid bearer token.
func RequireAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := tokens.Parse(extractBearerToken(c))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"error": "authentication required",
			})
			return
		}

		SetIdentity(c, id)
		c.Next()
	}
}

// OptionalAuth attaches the actor when a valid bearer token is present and
// lets every request through. Handlers decide what anonymous callers may do.
func OptionalAuth(tokens *auth.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		if token := extractBearerToken(c); token != "" {
			if id, err := tokens.Parse(token); err == nil {
				SetIdentity(c, id)
			}
		}
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if authHeader == "" {
		return ""
	}

	// Expected format: "Bearer <token>"
	parts := strings.SplitN(authHeader, " ", 2)
	if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
		return ""
	}

	return strings.TrimSpace(parts[1])
}
