package controllers

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/kendall-kelly/baskets-api/services"
)

// statusFor maps a service error kind to its HTTP status
func statusFor(kind services.ErrorKind) int {
	switch kind {
	case services.KindUnauthorized:
		return http.StatusUnauthorized
	case services.KindForbidden:
		return http.StatusForbidden
	case services.KindNotFound:
		return http.StatusNotFound
	case services.KindDeadlinePassed, services.KindDuplicateOrder, services.KindEmptyOrder,
		services.KindInvalidItem, services.KindInvalidInput:
		return http.StatusBadRequest
	case services.KindConflict:
		return http.StatusConflict
	case services.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorBody(code, message string) gin.H {
	return gin.H{
		"success": false,
		"error": gin.H{
			"code":    code,
			"message": message,
		},
	}
}

// respondError writes the error envelope for err. Service errors keep their
// code and message, anything else is logged and reported as an internal error.
func respondError(c *gin.Context, err error) {
	var svcErr *services.Error
	if errors.As(err, &svcErr) {
		c.JSON(statusFor(svcErr.Kind), errorBody(svcErr.Code, svcErr.Message))
		return
	}

	_ = c.Error(err)
	zap.L().Error("Request failed",
		zap.String("method", c.Request.Method),
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, errorBody("INTERNAL_ERROR", "An unexpected error occurred"))
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success": false,
		"error": gin.H{
			"code":    "VALIDATION_ERROR",
			"message": "Invalid request data",
			"details": err.Error(),
		},
	})
}

func respondUnauthorized(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, errorBody("UNAUTHORIZED", "Authentication required"))
}

// pathID parses the numeric :id path parameter. Ids that cannot exist are
// reported as not found.
func pathID(c *gin.Context, notFoundCode string) (uint, bool) {
	raw := c.Param("id")
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		c.JSON(http.StatusNotFound, errorBody(notFoundCode, fmt.Sprintf("Nothing exists with id %q", raw)))
		return 0, false
	}
	return uint(id), true
}
