package middleware

import (
	"log/slog"
	"net/http"

	"postboard/auth"
	"postboard/observability"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// UserIDKey is the gin context key holding the authenticated user's ObjectID.
const UserIDKey = "userId"

// JWTAuthMiddleware rejects requests without a valid bearer token and stores
// the caller's id under UserIDKey.
func JWTAuthMiddleware(tokens *auth.Tokens) gin.HandlerFunc {
	return func(c *gin.Context) {
		// Skip middleware for OPTIONS requests (CORS preflight)
		if c.Request.Method == http.MethodOptions {
			c.Next()
			return
		}

		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			// Browsers cannot set headers on websocket upgrades
			if token := c.Query("token"); token != "" {
				authHeader = "Bearer " + token
			}
		}

		tokenString, err := auth.BearerToken(authHeader)
		if err != nil {
			abortUnauthorized(c, "Authentication required", err.Error())
			return
		}

		userID, err := tokens.Parse(tokenString)
		if err != nil {
			slog.DebugContext(c.Request.Context(), "jwt validation failed", slog.String("error", err.Error()))
			abortUnauthorized(c, "Invalid token", "Token validation failed")
			return
		}
		oid, err := primitive.ObjectIDFromHex(userID)
		if err != nil {
			abortUnauthorized(c, "Invalid token", "Token subject is not a user id")
			return
		}

		c.Set(UserIDKey, oid)
		c.Request = c.Request.WithContext(observability.WithUserID(c.Request.Context(), userID))
		c.Next()
	}
}

// UserID returns the authenticated user's id, or the zero id when the
// request did not pass JWTAuthMiddleware.
func UserID(c *gin.Context) primitive.ObjectID {
	if v, ok := c.Get(UserIDKey); ok {
		if oid, ok := v.(primitive.ObjectID); ok {
			return oid
		}
	}
	return primitive.NilObjectID
}

func abortUnauthorized(c *gin.Context, message, detail string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
		"success": false,
		"message": message,
		"error":   detail,
	})
}
