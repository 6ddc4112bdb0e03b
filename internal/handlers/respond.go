package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
	"github.com/emilythestrangee/reddit-clone/api/internal/middleware"
)

// respondError writes err as {"error": ...} with the status its kind maps to.
// Internal errors are logged and never echoed.
func respondError(c *gin.Context, logger *slog.Logger, err error) {
	status := apperrors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		logger.Error("request failed",
			"method", c.Request.Method,
			"route", c.FullPath(),
			"request_id", middleware.GetRequestID(c),
			"error", err,
		)
		_ = c.Error(err)
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

// bindJSON decodes the body into dst and runs its binding rules. Failures
// answer 400 with per-field details and return false.
func bindJSON(c *gin.Context, dst any) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return true
	}

	var verrs validator.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		details := make(map[string]string, len(verrs))
		for _, fe := range verrs {
			details[fe.Field()] = describe(fe)
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": details})
	case errors.Is(err, io.EOF):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Request body is required"})
	default:
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &syntaxErr) || errors.As(err, &typeErr) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Malformed JSON body"})
			return false
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	}
	return false
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	case "email":
		return "must be a valid email"
	case "url":
		return "must be a valid URL"
	case "username":
		return "must be 3-20 letters, digits or underscores"
	case "communityname":
		return "must be 3-21 lowercase letters, digits or underscores"
	default:
		return "is invalid"
	}
}

// parseID reads a positive numeric path parameter.
func parseID(c *gin.Context, name string) (uint, error) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("%s %q is not a valid id: %w", name, raw, apperrors.ErrInvalidInput)
	}
	return uint(id), nil
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string, fallback int) (int, error) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("query parameter %s must be an integer: %w", name, apperrors.ErrInvalidInput)
	}
	return n, nil
}

// queryID reads an optional positive id query parameter; 0 means absent.
func queryID(c *gin.Context, name string) (uint, error) {
	raw := c.Query(name)
	if raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("query parameter %s must be a positive id: %w", name, apperrors.ErrInvalidInput)
	}
	return uint(id), nil
}
