package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/lbin817/MSE/services"
)

// respondServiceError translates the typed service errors into HTTP
// statuses. Anything unrecognized is a 500 with a generic body.
func respondServiceError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrInvalidInput):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid input"})
	case errors.Is(err, services.ErrOutOfRange):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Budget must be between 0 and 10,000,000"})
	case errors.Is(err, services.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Not found"})
	case errors.Is(err, services.ErrIdentityMismatch):
		c.JSON(http.StatusForbidden, gin.H{"error": "Leader name does not match"})
	case errors.Is(err, services.ErrInsufficientBudget):
		c.JSON(http.StatusConflict, gin.H{"error": "Insufficient budget"})
	case errors.Is(err, services.ErrNotApproved):
		c.JSON(http.StatusConflict, gin.H{"error": "Request is not approved"})
	case errors.Is(err, services.ErrAlreadyApproved):
		c.JSON(http.StatusConflict, gin.H{"error": "Request is already approved"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
	}
}
