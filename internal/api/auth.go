package api

import (
	"errors"                       // Error matching
	"net/http"                     // HTTP status codes
	"poker_ledger/internal/domain" // Importing domain models
	"poker_ledger/internal/store"  // Credential store
	"poker_ledger/internal/utils"  // Utility functions

	"github.com/gin-gonic/gin"   // Gin web framework
	"golang.org/x/crypto/bcrypt" // Password hashing
)

// Request struct for registration
type RegisterRequest struct {
	Name     string `json:"name" binding:"required"`           // Display name must be provided
	Email    string `json:"email" binding:"required,email"`    // Valid email must be provided
	Password string `json:"password" binding:"required,min=6"` // At least 6 characters
}

// Request struct for login
type LoginRequest struct {
	Email    string `json:"email" binding:"required,email"` // Valid email must be provided
	Password string `json:"password" binding:"required"`    // Password must be provided
}

// Response struct for authentication
type AuthResponse struct {
	Message string `json:"message"` // Outcome
	Token   string `json:"token"`   // JWT token
}

// RegisterHandler creates a user and returns a token for it
func RegisterHandler(users *store.UserStore, issuer *utils.TokenIssuer, cache *utils.Cache) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req RegisterRequest
		if !bindJSON(c, &req) {
			return
		}
		// Hash the password before it goes anywhere near the store
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			internalError(c, err)
			return
		}
		user, err := users.Register(c.Request.Context(), req.Name, req.Email, string(hash))
		if err != nil {
			respondError(c, err, "User not found.")
			return
		}
		token, err := issuer.GenerateJWT(user.ID, user.Email, user.Role)
		if err != nil {
			internalError(c, err)
			return
		}
		cache.Delete(c.Request.Context(), utils.UsersCacheKey) // Listing changed
		c.JSON(http.StatusCreated, AuthResponse{Message: "User registered successfully.", Token: token})
	}
}

// LoginHandler authenticates a user and returns a JWT token
func LoginHandler(users *store.UserStore, issuer *utils.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req LoginRequest
		if !bindJSON(c, &req) {
			return
		}
		user, err := users.FindByEmail(c.Request.Context(), req.Email)
		if errors.Is(err, domain.ErrNotFound) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
			return
		}
		if err != nil {
			internalError(c, err)
			return
		}
		// Compare provided password with stored hash
		if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid email or password."})
			return
		}
		token, err := issuer.GenerateJWT(user.ID, user.Email, user.Role)
		if err != nil {
			internalError(c, err)
			return
		}
		c.JSON(http.StatusOK, AuthResponse{Message: "Login successful.", Token: token})
	}
}
