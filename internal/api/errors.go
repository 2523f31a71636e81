package api

import (
	"errors"   // Error matching
	"net/http" // HTTP status codes

	"poker_ledger/internal/domain" // Sentinel errors

	"github.com/gin-gonic/gin"   // Gin web framework
	"github.com/sirupsen/logrus" // Structured logging
)

// respondError maps ledger and store errors onto status codes. Anything
// unrecognised is logged with its cause and answered with a bare 500.
func respondError(c *gin.Context, err error, notFoundMsg string) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": notFoundMsg})
	case errors.Is(err, domain.ErrConflict):
		c.JSON(http.StatusConflict, gin.H{"error": "Email already exists."})
	case errors.Is(err, domain.ErrNoFields):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No valid fields provided for update."})
	default:
		internalError(c, err)
	}
}

func internalError(c *gin.Context, err error) {
	logrus.WithFields(logrus.Fields{
		"request_id": c.GetString("requestID"),
		"method":     c.Request.Method,
		"path":       c.FullPath(),
		"error":      err.Error(),
	}).Error("Internal error")
	c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
}
