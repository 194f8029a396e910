package middleware

import (
	"github.com/gin-gonic/gin"

	appctx "kardex/internal/core/context"
)

const (
	HeaderUserID   = "X-User-ID"
	HeaderUserName = "X-User-Name"
)

// Actor middleware extracts the acting user from request headers.
// Authentication is expected to happen upstream (gateway or reverse
// proxy); here we only carry the identity for attribution and audit.
func Actor() gin.HandlerFunc {
	return func(c *gin.Context) {
		userID := c.GetHeader(HeaderUserID)
		if userID == "" {
			c.Next()
			return
		}

		actor := &appctx.ActorContext{
			UserID: userID,
			Name:   c.GetHeader(HeaderUserName),
		}

		ctx := appctx.WithActor(c.Request.Context(), actor)
		c.Request = c.Request.WithContext(ctx)
		c.Set("user_id", userID)

		c.Next()
	}
}
