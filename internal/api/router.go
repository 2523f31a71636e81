package api

import (
	"net/http" // HTTP status codes
	"time"     // CORS max age

	"poker_ledger/internal/ledger"     // Session ledger
	"poker_ledger/internal/middleware" // Custom middleware
	"poker_ledger/internal/store"      // Credential store
	"poker_ledger/internal/utils"      // Tokens and cache

	"github.com/gin-contrib/cors" // CORS for the single-page client
	"github.com/gin-gonic/gin"    // Gin web framework
	"gorm.io/gorm"                // GORM ORM library
)

// Deps is everything the HTTP surface needs
type Deps struct {
	DB             *gorm.DB           // Store handle, used for health and admin checks
	Users          *store.UserStore   // Credential store
	Ledger         *ledger.Ledger     // Session ledger
	Issuer         *utils.TokenIssuer // Token issuer/verifier
	Cache          *utils.Cache       // Optional read-through cache
	CORSOrigins    []string           // Allowed browser origins
	UsersAdminOnly bool               // Gate user management behind role=admin
}

// NewRouter wires every route onto a fresh gin engine
func NewRouter(d Deps) *gin.Engine {
	registerValidators()

	r := gin.New()
	r.Use(middleware.RequestLogger(), gin.Recovery())
	if len(d.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     d.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Content-Type", "Authorization"},
			ExposeHeaders:    []string{middleware.RequestIDHeader},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	r.GET("/", func(c *gin.Context) {
		c.String(http.StatusOK, "Welcome to the Poker Ledger API!")
	})
	r.GET("/healthz", HealthHandler(d.DB))

	// Auth routes
	r.POST("/register", RegisterHandler(d.Users, d.Issuer, d.Cache))
	r.POST("/login", LoginHandler(d.Users, d.Issuer))

	auth := middleware.JWTAuthMiddleware(d.Issuer)

	// User management routes
	userGroup := r.Group("/users", auth)
	if d.UsersAdminOnly {
		userGroup.Use(middleware.AdminOnlyMiddleware(d.DB))
	}
	userGroup.GET("", ListUsersHandler(d.Users, d.Cache))
	userGroup.DELETE("", DeleteAllUsersHandler(d.Users, d.Cache))
	userGroup.DELETE("/:email", DeleteUserHandler(d.Users, d.Cache))

	// Session routes, always scoped to the caller
	sessionGroup := r.Group("/sessions", auth)
	sessionGroup.POST("", CreateSessionHandler(d.Ledger))
	sessionGroup.GET("", ListSessionsHandler(d.Ledger))
	sessionGroup.PATCH("/:id", UpdateSessionHandler(d.Ledger))
	sessionGroup.DELETE("/:id", DeleteSessionHandler(d.Ledger))

	return r
}

// HealthHandler reports whether the database answers
func HealthHandler(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		sqlDB, err := db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Request.Context())
		}
		if err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	}
}
