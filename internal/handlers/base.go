package handlers

import (
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/portuna85/kraft/internal/apperr"
	"github.com/portuna85/kraft/internal/middleware"
	"github.com/portuna85/kraft/internal/models"
	"github.com/portuna85/kraft/internal/services"
	"github.com/portuna85/kraft/internal/utils"

	"github.com/gin-gonic/gin"
)

// currentPrincipal extracts the authenticated principal loaded by the
// session middleware. Routes behind AuthRequired always have one.
func currentPrincipal(c *gin.Context) services.Principal {
	user := c.MustGet(middleware.CheckUserKey).(*models.User)
	return services.PrincipalFrom(user)
}

// abortWithError maps the service error taxonomy onto HTTP statuses.
// Unclassified errors stay opaque.
func abortWithError(c *gin.Context, err error) {
	var appErr *apperr.Error
	if errors.As(err, &appErr) {
		switch appErr.Kind {
		case apperr.KindNotFound:
			c.JSON(http.StatusNotFound, gin.H{"error": appErr.Message})
			return
		case apperr.KindUnauthorized:
			c.JSON(http.StatusForbidden, gin.H{"error": appErr.Message})
			return
		case apperr.KindInvalidArgument:
			c.JSON(http.StatusBadRequest, gin.H{"error": appErr.Message})
			return
		case apperr.KindConflict:
			c.JSON(http.StatusConflict, gin.H{"error": appErr.Message})
			return
		}
	}
	log.Printf("unexpected error: %v", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}

// pageParams parses zero-based page and size query parameters with the
// API's defaults. Malformed or out-of-range values fall back silently.
func pageParams(c *gin.Context) (page, size int) {
	page = utils.StringToInt(c.Query("page"))
	if page < 0 {
		page = 0
	}
	size = 10
	if n := utils.StringToInt(c.Query("size")); n > 0 && n <= 100 {
		size = n
	}
	return page, size
}

// uintParam parses a numeric path parameter, returning false after
// responding when it is malformed.
func uintParam(c *gin.Context, name string) (uint, bool) {
	v, err := strconv.ParseUint(c.Param(name), 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(v), true
}
