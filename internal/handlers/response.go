package handlers

import (
	"net/http"
	"strconv"

	"github.com/P3chys/exchange-api/internal/middleware"
	"github.com/P3chys/exchange-api/internal/services"
	"github.com/gin-gonic/gin"
)

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	})
}

// respondServiceError maps a service failure to its status and error code.
// Unexpected errors keep their cause on the gin context for the request log.
func respondServiceError(c *gin.Context, err error) {
	switch services.KindOf(err) {
	case services.KindNotFound:
		respondError(c, http.StatusNotFound, "NOT_FOUND", services.MessageOf(err))
	case services.KindValidation:
		respondError(c, http.StatusUnprocessableEntity, "VALIDATION_ERROR", services.MessageOf(err))
	case services.KindUnauthorized:
		respondError(c, http.StatusUnauthorized, "UNAUTHORIZED", services.MessageOf(err))
	default:
		_ = c.Error(err)
		respondError(c, http.StatusInternalServerError, "INTERNAL_ERROR", services.MessageOf(err))
	}
}

func respondBindError(c *gin.Context, err error) {
	respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
}

func respondData(c *gin.Context, status int, data interface{}) {
	c.JSON(status, gin.H{
		"success": true,
		"data":    data,
	})
}

// pathID parses a positive integer path parameter and answers 400 otherwise.
func pathID(c *gin.Context, name string) (int, bool) {
	id, err := strconv.Atoi(c.Param(name))
	if err != nil || id <= 0 {
		respondError(c, http.StatusBadRequest, "VALIDATION_ERROR", "Invalid "+name)
		return 0, false
	}
	return id, true
}

// actorID is the caller's numeric id for audit purposes, 0 when the claim is
// not a number.
func actorID(c *gin.Context) int {
	id, _ := strconv.Atoi(middleware.CurrentUserID(c))
	return id
}
