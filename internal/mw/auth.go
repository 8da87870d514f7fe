package mw

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"jeonse-ledger-backend/internal/auth"
	"jeonse-ledger-backend/internal/model"
)

const (
	actorKey  = "actor"
	claimsKey = "claims"
)

// Authenticator resolves a bearer token to an actor.
type Authenticator interface {
	Authenticate(ctx context.Context, raw string) (*model.Actor, auth.Claims, error)
}

// RequireActor rejects requests without a valid bearer token and stores the
// authenticated actor on the context.
func RequireActor(a Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if len(header) < 7 || !strings.EqualFold(header[:7], "bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}

		actor, claims, err := a.Authenticate(c.Request.Context(), strings.TrimSpace(header[7:]))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid or expired token"})
			return
		}

		c.Set(actorKey, actor)
		c.Set(claimsKey, claims)
		c.Next()
	}
}

// Actor returns the authenticated actor, or nil outside RequireActor.
func Actor(c *gin.Context) *model.Actor {
	if v, ok := c.Get(actorKey); ok {
		if actor, ok := v.(*model.Actor); ok {
			return actor
		}
	}
	return nil
}

// Claims returns the claims of the request's token.
func Claims(c *gin.Context) (auth.Claims, bool) {
	if v, ok := c.Get(claimsKey); ok {
		claims, ok := v.(auth.Claims)
		return claims, ok
	}
	return auth.Claims{}, false
}
