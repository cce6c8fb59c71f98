package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/hrsuite/travel-approval/internal/domain/workflow"
)

// Header names the auth collaborator uses to hand over the established
// caller identity. The facade trusts them; authentication is out of scope.
const (
	headerActorID   = "X-Actor-Id"
	headerActorRole = "X-Actor-Role"
)

const actorKey = "actor"

// ActorMiddleware extracts the acting identity from the request headers.
// Requests without a resolvable actor are rejected before any handler runs.
func ActorMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(headerActorID)
		role := workflow.Role(c.GetHeader(headerActorRole))

		if id == "" || !role.IsValid() {
			c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
				Code:    CodeInvalidRequest,
				Message: "missing or invalid actor headers",
			})
			return
		}

		c.Set(actorKey, workflow.Actor{ID: id, Role: role})
		c.Next()
	}
}

func actorFrom(c *gin.Context) workflow.Actor {
	actor, _ := c.Get(actorKey)
	return actor.(workflow.Actor)
}
