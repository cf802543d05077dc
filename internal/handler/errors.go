package handler

import (
	"errors"
	"fmt"
	"net/http"
	"reflect"
	"runtime/debug"
	"strings"
	"sync"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/nwarner31/helping-hands-sub001/internal/model"
	"github.com/nwarner31/helping-hands-sub001/internal/service"
	"github.com/rs/zerolog"
)

var registerTagsOnce sync.Once

// registerJSONFieldNames makes validator report json names ("hireDate")
// instead of Go field names ("HireDate").
func registerJSONFieldNames() {
	registerTagsOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
}

// ErrorHandler renders the last error attached with c.Error. Internal errors
// are logged and hidden unless development is set.
func ErrorHandler(log zerolog.Logger, development bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}

		svcErr := service.AsError(c.Errors.Last().Err)
		switch {
		case svcErr.Kind == service.KindInternal:
			log.Error().Err(svcErr.Err).
				Str("method", c.Request.Method).
				Str("path", c.FullPath()).
				Msg("request failed")
		case svcErr.Err != nil:
			log.Warn().Err(svcErr.Err).
				Str("kind", svcErr.Kind.String()).
				Str("path", c.FullPath()).
				Msg("request rejected")
		}

		resp := model.ErrorResponse{
			Message: svcErr.Message,
			Errors:  svcErr.Fields,
		}
		if development && svcErr.Err != nil {
			resp.Detail = svcErr.Err.Error()
		}
		c.AbortWithStatusJSON(svcErr.Kind.Status(), resp)
	}
}

// Recovery turns panics into a 500. In development the stack is returned.
func Recovery(log zerolog.Logger, development bool) gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, recovered any) {
		stack := debug.Stack()
		log.Error().
			Interface("panic", recovered).
			Bytes("stack", stack).
			Str("path", c.Request.URL.Path).
			Msg("panic recovered")

		resp := model.ErrorResponse{Message: "internal server error"}
		if development {
			resp.Detail = fmt.Sprintf("%v\n%s", recovered, stack)
		}
		c.AbortWithStatusJSON(http.StatusInternalServerError, resp)
	})
}

// bindError converts a ShouldBindJSON failure into a validation error with
// per-field messages.
func bindError(err error) *service.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return service.ValidationError("invalid request body", nil)
	}

	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = fieldMessage(fe)
	}
	return service.ValidationError("validation failed", fields)
}

func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if idx := strings.Index(ns, "."); idx >= 0 {
		return ns[idx+1:]
	}
	return fe.Field()
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return field + " must be a valid email address"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fe.Param())
	case "gte":
		return fmt.Sprintf("%s must be at least %s", field, fe.Param())
	case "eqfield":
		return fmt.Sprintf("%s must match %s", field, lowerFirst(fe.Param()))
	case "oneof":
		return fmt.Sprintf("%s must be one of %s", field, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "datetime":
		return fmt.Sprintf("%s must match format %s", field, layoutName(fe.Param()))
	default:
		return field + " is invalid"
	}
}

func layoutName(layout string) string {
	switch layout {
	case "2006-01-02":
		return "YYYY-MM-DD"
	case "15:04":
		return "HH:MM"
	default:
		return layout
	}
}

func lowerFirst(s string) string {
	if s == "" {
		return s
	}
	return strings.ToLower(s[:1]) + s[1:]
}
