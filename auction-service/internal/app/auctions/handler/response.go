package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"auctionhouse/auction-service/internal/app/auctions/entity"
	"auctionhouse/auction-service/internal/app/auctions/service"
	"auctionhouse/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

var categoryStatus = map[service.ErrorCategory]int{
	service.CategoryValidation:      http.StatusBadRequest,
	service.CategoryNotFound:        http.StatusNotFound,
	service.CategoryForbidden:       http.StatusForbidden,
	service.CategoryUnauthenticated: http.StatusUnauthorized,
	service.CategoryDuplicate:       http.StatusConflict,
}

// respondError renders business errors with their status. Anything else is
// logged and answered with a generic 500.
func respondError(c *gin.Context, err error) {
	var svcErr *service.Error
	if errors.As(err, &svcErr) {
		status, ok := categoryStatus[svcErr.Category]
		if !ok {
			status = http.StatusBadRequest
		}
		c.JSON(status, entity.ErrorResponse{
			Error:   string(svcErr.Category),
			Code:    svcErr.Code,
			Message: svcErr.Message,
			Field:   svcErr.Field,
		})
		return
	}

	_ = c.Error(err)
	logger.Ctx(c.Request.Context()).Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
	c.JSON(http.StatusInternalServerError, entity.ErrorResponse{
		Error:   "INTERNAL_ERROR",
		Code:    "INTERNAL_ERROR",
		Message: "Internal server error.",
	})
}

func respondValidation(c *gin.Context, field, message string) {
	respondError(c, service.InvalidField(field, message))
}

// bindJSON decodes and validates the body. It writes the error response and
// returns false on failure.
func bindJSON(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondValidation(c, "", "Invalid request body.")
		return false
	}
	return validateBody(c, v, req)
}

func validateBody(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := v.Struct(req); err != nil {
		field, message := formatValidationError(err)
		respondValidation(c, field, message)
		return false
	}
	return true
}

// pathID parses a numeric path parameter. A malformed id cannot match any
// row, so it is reported with notFound.
func pathID(c *gin.Context, name string, notFound error) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		respondError(c, notFound)
		return 0, false
	}
	return uint(id), true
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func formatValidationError(err error) (string, string) {
	var validationErrors validator.ValidationErrors
	if errors.As(err, &validationErrors) {
		for _, fieldError := range validationErrors {
			switch fieldError.Tag() {
			case "required":
				return fieldError.Field(), "This field is required."
			case "max":
				return fieldError.Field(), "Ensure this field has no more than " + fieldError.Param() + " characters."
			case "url":
				return fieldError.Field(), "Enter a valid URL."
			}
			return fieldError.Field(), fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "", "Validation failed"
}
