package middleware

import (
	"context"
	"net/http"
	"strings"

	"storefront/internal/domain"

	"github.com/gin-gonic/gin"
)

const actorKey = "actor"

// ActorResolver turns credentials into the acting user.
type ActorResolver interface {
	ActorFromToken(ctx context.Context, raw string) (domain.Actor, error)
	ActorFor(ctx context.Context, userID uint64) (domain.Actor, error)
}

func SetActor(c *gin.Context, a domain.Actor) {
	c.Set(actorKey, a)
}

// ActorFrom returns the anonymous actor when nothing authenticated the request.
func ActorFrom(c *gin.Context) domain.Actor {
	if v, ok := c.Get(actorKey); ok {
		if a, ok := v.(domain.Actor); ok {
			return a
		}
	}
	return domain.Actor{}
}

// BearerAuth authenticates API requests carrying "Authorization: Bearer".
// Requests without the header continue as anonymous; a bad token is rejected.
func BearerAuth(resolver ActorResolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.Next()
			return
		}

		scheme, raw, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(raw) == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid authorization header"})
			return
		}

		actor, err := resolver.ActorFromToken(c.Request.Context(), strings.TrimSpace(raw))
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"detail": "invalid or expired token"})
			return
		}
		SetActor(c, actor)
		c.Next()
	}
}
