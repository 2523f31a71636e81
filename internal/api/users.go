package api

import (
	"net/http"                         // HTTP status codes
	"poker_ledger/internal/domain"     // Importing domain models
	"poker_ledger/internal/middleware" // Caller identity
	"poker_ledger/internal/store"      // Credential store
	"poker_ledger/internal/utils"      // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Logging library
)

// ListUsersHandler returns every active user, without credentials
func ListUsersHandler(users *store.UserStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		var cached []domain.User
		// If cached data found, return it
		if cache.Get(ctx, utils.UsersCacheKey, &cached) {
			c.JSON(http.StatusOK, cached)
			return
		}
		list, err := users.ListActive(ctx)
		if err != nil {
			internalError(c, err)
			return
		}
		cache.Set(ctx, utils.UsersCacheKey, list) // Cache the response for future requests
		c.JSON(http.StatusOK, list)
	}
}

// DeleteUserHandler hard-deletes the user identified by the :email path parameter
func DeleteUserHandler(users *store.UserStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.Param("email")
		if !validEmail(email) {
			c.JSON(http.StatusBadRequest, gin.H{"errors": []FieldError{{Field: "email", Message: messageFor("email", "email")}}})
			return
		}
		ctx := c.Request.Context()
		user, err := users.DeleteByEmail(ctx, email)
		if err != nil {
			respondError(c, err, "User not found.")
			return
		}
		actor, _ := middleware.CurrentUserID(c)
		logrus.WithFields(logrus.Fields{
			"actor_id": actor,   // Caller
			"user_id":  user.ID, // Removed user
			"type":     "delete_user",
		}).Info("User deleted by request")
		cache.Delete(ctx, utils.UsersCacheKey, utils.LedgerCacheKey(user.ID))
		c.JSON(http.StatusOK, gin.H{"message": "User deleted successfully.", "user": user})
	}
}

// DeleteAllUsersHandler wipes the users table
func DeleteAllUsersHandler(users *store.UserStore, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := c.Request.Context()
		if err := users.DeleteAll(ctx); err != nil {
			internalError(c, err)
			return
		}
		actor, _ := middleware.CurrentUserID(c)
		logrus.WithFields(logrus.Fields{"actor_id": actor, "type": "delete_all_users"}).Warn("All users deleted by request")
		cache.Delete(ctx, utils.UsersCacheKey)
		cache.DeletePrefix(ctx, "ledger:user:")
		c.JSON(http.StatusOK, gin.H{"message": "All users have been deleted successfully."})
	}
}
