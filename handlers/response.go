package handlers

import (
	"net/http"

	"algoquest/logger"
	"algoquest/middleware"

	"github.com/gin-gonic/gin"
)

// currentUser reads the id set by the auth middleware and answers 401 when
// it is absent.
func currentUser(c *gin.Context) (uint, bool) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "User not authenticated"})
		return 0, false
	}
	return userID, true
}

func serverError(c *gin.Context, log *logger.Logger, msg string, err error) {
	log.Error(msg, "path", c.Request.URL.Path, "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "server error"})
}
