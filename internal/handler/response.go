package handler

import (
	"errors"
	"io"
	"net/http"
	"reflect"
	"strings"
	"sync"

	"agenda/internal/common"
	"agenda/internal/middleware"
	"agenda/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
)

var registerOnce sync.Once

// RegisterValidation makes validation errors report JSON field names.
func RegisterValidation() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(f reflect.StructField) string {
			name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// bindJSON decodes the body into dst and turns binding failures into a
// *common.ValidationError.
func bindJSON(c *gin.Context, dst any) error {
	err := c.ShouldBindJSON(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := &common.ValidationError{}
		for _, fe := range verrs {
			out.Add(fe.Field(), describe(fe))
		}
		return out
	}
	if errors.Is(err, io.EOF) {
		return common.NewValidationError("body", "request body is required")
	}
	return common.NewValidationError("body", "malformed JSON")
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "min":
		return "must be at least " + fe.Param() + " characters"
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return "is invalid"
	}
}

// writeError maps an error onto a status and a message that is safe to show.
// Unexpected errors are logged and reported as a generic internal error.
func writeError(c *gin.Context, err error) {
	var verr *common.ValidationError
	switch {
	case errors.As(err, &verr):
		c.JSON(http.StatusBadRequest, model.NewValidationResponse("Invalid input", verr.Fields))
	case errors.Is(err, common.ErrInvalidCredentials):
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Incorrect credentials", "InvalidCredentials"))
	case errors.Is(err, common.ErrConflict):
		c.JSON(http.StatusBadRequest, model.NewErrorResponse("Email already registered", "DuplicateEmail"))
	case errors.Is(err, common.ErrUnauthenticated):
		c.JSON(http.StatusUnauthorized, model.NewErrorResponse("Authentication required", "Unauthenticated"))
	case errors.Is(err, common.ErrForbidden):
		c.JSON(http.StatusForbidden, model.NewErrorResponse("Not allowed", "Forbidden"))
	case errors.Is(err, common.ErrNotFound):
		c.JSON(http.StatusNotFound, model.NewErrorResponse("Contact not found", "NotFound"))
	case errors.Is(err, common.ErrInvalidState):
		c.JSON(http.StatusConflict, model.NewErrorResponse("Contact must be public first", "InvalidState"))
	case errors.Is(err, common.ErrUnavailable):
		middleware.Logger(c).Error("store unavailable", "error", err)
		c.JSON(http.StatusServiceUnavailable, model.NewErrorResponse("Service temporarily unavailable", "Unavailable"))
	default:
		middleware.Logger(c).Error("request failed", "error", err)
		c.JSON(http.StatusInternalServerError, model.NewErrorResponse("Internal error", "Internal"))
	}
}
