package middleware

import (
	"net/http"                    // HTTP status codes
	"strings"                     // String manipulation
	"poker_ledger/internal/utils" // JWT utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// Context keys set by JWTAuthMiddleware
const (
	UserIDKey = "userID" // uint id of the caller
	ClaimsKey = "claims" // *utils.Claims of the caller
)

// JWTAuthMiddleware validates bearer tokens: a missing token is 401, a bad one 403
func JWTAuthMiddleware(issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization") // Get Authorization header
		tokenStr := ""
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenStr = strings.TrimSpace(strings.TrimPrefix(authHeader, "Bearer "))
		}
		if tokenStr == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Access token is missing."})
			return
		}
		claims, err := issuer.ParseJWT(tokenStr) // Parse the JWT token
		if err != nil {
			logrus.WithFields(logrus.Fields{
				"path":  c.FullPath(),
				"error": err.Error(),
			}).Debug("Rejected bearer token")
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "Invalid token."})
			return
		}
		c.Set(UserIDKey, claims.UserID) // Store userID in context
		c.Set(ClaimsKey, claims)        // Store full claims in context
		c.Next()                        // Proceed to the next handler
	}
}

// CurrentUserID returns the caller id stored by JWTAuthMiddleware
func CurrentUserID(c *gin.Context) (uint, bool) {
	v, exists := c.Get(UserIDKey)
	if !exists {
		return 0, false
	}
	id, ok := v.(uint)
	return id, ok
}
