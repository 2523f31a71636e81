package api

import (
	"encoding/json" // Decoding error types
	"errors"        // Error matching
	"net/http"      // HTTP status codes
	"reflect"       // Validator type hooks
	"regexp"        // Stakes format
	"strings"       // Tag parsing
	"sync"          // One-time registration
	"time"          // Date parsing

	"github.com/gin-gonic/gin"               // Gin web framework
	"github.com/gin-gonic/gin/binding"       // Gin's validator engine
	"github.com/go-playground/validator/v10" // Field validation
	"github.com/shopspring/decimal"          // Fixed-point money
)

var stakesPattern = regexp.MustCompile(`^\d+/\d+$`) // Blinds like 1/3

// Accepted ISO8601 layouts for session_date
var dateLayouts = []string{
	"2006-01-02",
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

// fieldMessages are the client-facing messages per JSON field
var fieldMessages = map[string]string{
	"name":              "Name is required.",
	"email":             "Valid email is required.",
	"password":          "Password must be at least 6 characters.",
	"buy_in_amount":     "Buy-in amount must be a positive number.",
	"cash_out_amount":   "Cash-out amount must be a non-negative number.",
	"number_of_buy_ins": "Number of buy-ins must be a positive integer.",
	"stakes":            "Stakes must be in the format X/Y (e.g., 1/3).",
	"game_type":         "Game type must be either NLH or PLO.",
	"location":          "Location is required.",
	"session_date":      "Date must be a valid ISO8601 date.",
	"notes":             "Notes must be a string.",
	"id":                "Session ID must be an integer.",
}

// FieldError is one entry of a 400 validation response
type FieldError struct {
	Field   string `json:"field"`   // JSON field name
	Message string `json:"message"` // Human readable message
}

var registerOnce sync.Once

// registerValidators teaches gin's validator about decimals, stakes and dates
func registerValidators() {
	registerOnce.Do(func() {
		v, ok := binding.Validator.Engine().(*validator.Validate)
		if !ok {
			return
		}
		// Report JSON names instead of Go field names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
		// Compare decimals with the numeric tags (gt, gte); only the sign matters here
		v.RegisterCustomTypeFunc(func(field reflect.Value) any {
			if d, ok := field.Interface().(decimal.Decimal); ok {
				return d.InexactFloat64()
			}
			return nil
		}, decimal.Decimal{})
		_ = v.RegisterValidation("stakes", func(fl validator.FieldLevel) bool {
			return stakesPattern.MatchString(fl.Field().String())
		})
		_ = v.RegisterValidation("isodate", func(fl validator.FieldLevel) bool {
			_, err := parseISODate(fl.Field().String())
			return err == nil
		})
	})
}

// parseISODate accepts a calendar date or a full ISO8601 timestamp
func parseISODate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.New("not an ISO8601 date")
}

// validEmail checks a path parameter with the same rule as request bodies
func validEmail(email string) bool {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return email != ""
	}
	return v.Var(email, "required,email") == nil
}

// bindJSON binds the body into req and answers 400 itself on failure
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}
	c.JSON(http.StatusBadRequest, gin.H{"errors": fieldErrors(err)})
	return false
}

// fieldErrors turns binding failures into field-level messages
func fieldErrors(err error) []FieldError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]FieldError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, FieldError{Field: fe.Field(), Message: messageFor(fe.Field(), fe.Tag())})
		}
		return out
	}
	var typeErr *json.UnmarshalTypeError
	if errors.As(err, &typeErr) && typeErr.Field != "" {
		return []FieldError{{Field: typeErr.Field, Message: messageFor(typeErr.Field, "type")}}
	}
	return []FieldError{{Field: "body", Message: "Request body must be valid JSON."}}
}

func messageFor(field, tag string) string {
	if field == "password" && tag == "required" {
		return "Password is required."
	}
	if msg, ok := fieldMessages[field]; ok {
		return msg
	}
	return field + " is invalid."
}
