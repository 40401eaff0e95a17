package validation

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/duccv/contact-addin/internal/constant"
	"github.com/duccv/contact-addin/internal/model/response"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Report json/form names instead of Go field names.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		for _, tag := range []string{"json", "form", "uri"} {
			name, _, _ := strings.Cut(f.Tag.Get(tag), ",")
			if name != "" && name != "-" {
				return name
			}
		}
		return f.Name
	})
	_ = v.RegisterValidation("strongpassword", func(fl validator.FieldLevel) bool {
		return StrongPassword(fl.Field().String())
	})
	return v
}

// StrongPassword requires at least six characters including an upper-case
// letter, a lower-case letter and a digit.
func StrongPassword(s string) bool {
	if len(s) < 6 {
		return false
	}
	var upper, lower, digit bool
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			upper = true
		case unicode.IsLower(r):
			lower = true
		case unicode.IsDigit(r):
			digit = true
		}
	}
	return upper && lower && digit
}

// Struct validates v and returns field details on failure.
func Struct(v any) []response.FieldError {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	return Details(err)
}

// Details turns a validator error into per-field messages.
func Details(err error) []response.FieldError {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []response.FieldError{{Field: "request", Message: err.Error()}}
	}
	out := make([]response.FieldError, 0, len(verrs))
	for _, fe := range verrs {
		out = append(out, response.FieldError{Field: fe.Field(), Message: message(fe)})
	}
	return out
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "email":
		return "Please provide a valid email address"
	case "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", fe.Field(), fe.Param())
	case "max":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
		}
		return fmt.Sprintf("%s must be at most %s", fe.Field(), fe.Param())
	case "strongpassword":
		return "Password must contain at least one uppercase letter, one lowercase letter, and one number"
	default:
		return fmt.Sprintf("%s failed the %s check", fe.Field(), fe.Tag())
	}
}

func isEmptyInterface[T any]() bool {
	t := reflect.TypeOf((*T)(nil)).Elem()
	return t == reflect.TypeOf((*any)(nil)).Elem()
}

func abortValidation(c *gin.Context, details []response.FieldError) {
	res := constant.VALIDATION_FAILED
	res.Details = details
	c.AbortWithStatusJSON(http.StatusBadRequest, res)
}

// Validate binds and validates the JSON body (B) and query string (Q) of a
// request. Use `any` to skip a part. Validated values are stored under
// constant.ValidatedBody and constant.ValidatedQry.
func Validate[B any, Q any]() gin.HandlerFunc {
	return func(c *gin.Context) {
		// --- Body ---
		if !isEmptyInterface[B]() {
			var body B

			rawData, err := io.ReadAll(c.Request.Body)
			if err != nil {
				abortValidation(c, Details(err))
				return
			}
			c.Request.Body = io.NopCloser(bytes.NewBuffer(rawData))

			if err := c.ShouldBindJSON(&body); err != nil {
				abortValidation(c, []response.FieldError{{Field: "body", Message: "Request body must be valid JSON"}})
				return
			}
			if details := Struct(body); details != nil {
				abortValidation(c, details)
				return
			}

			// Restore the body for later readers.
			c.Request.Body = io.NopCloser(bytes.NewBuffer(rawData))
			c.Set(constant.ValidatedBody, body)
		}

		// --- Query ---
		if !isEmptyInterface[Q]() {
			var query Q

			if err := c.ShouldBindQuery(&query); err != nil {
				abortValidation(c, []response.FieldError{{Field: "query", Message: err.Error()}})
				return
			}
			if details := Struct(query); details != nil {
				abortValidation(c, details)
				return
			}
			c.Set(constant.ValidatedQry, query)
		}

		c.Next()
	}
}

// Body returns the value stored by Validate.
func Body[B any](c *gin.Context) B {
	v, _ := c.Get(constant.ValidatedBody)
	b, _ := v.(B)
	return b
}

func Query[Q any](c *gin.Context) Q {
	v, _ := c.Get(constant.ValidatedQry)
	q, _ := v.(Q)
	return q
}
