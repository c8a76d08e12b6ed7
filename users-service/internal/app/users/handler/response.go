package handler

import (
	"errors"
	"net/http"
	"reflect"
	"strings"

	"auctionhouse/pkg/logger"
	"auctionhouse/users-service/internal/app/users/entity"
	"auctionhouse/users-service/internal/app/users/service"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
)

var categoryStatus = map[service.ErrorCategory]int{
	service.CategoryValidation:      http.StatusBadRequest,
	service.CategoryNotFound:        http.StatusNotFound,
	service.CategoryForbidden:       http.StatusForbidden,
	service.CategoryUnauthenticated: http.StatusUnauthorized,
	service.CategoryDuplicate:       http.StatusConflict,
}

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

// bindJSON decodes and validates the body, answering 400 on failure.
func bindJSON(c *gin.Context, v *validator.Validate, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		respondError(c, service.InvalidField("", "Invalid request body."))
		return false
	}
	if err := v.Struct(req); err != nil {
		field, message := formatValidationError(err)
		respondError(c, service.InvalidField(field, message))
		return false
	}
	return true
}

// pathUserID parses the :id parameter. A malformed id names no user.
func pathUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondError(c, service.ErrUserNotFound)
		return uuid.Nil, false
	}
	return id, true
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
			case "email":
				return fieldError.Field(), "Enter a valid email address."
			}
			return fieldError.Field(), fieldError.Field() + " is " + fieldError.Tag()
		}
	}
	return "", "Validation failed"
}
