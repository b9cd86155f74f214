// Package forms decodes and validates request bodies.
package forms

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/kritin29/Patient-Management-Web-App/internal/models"
)

// ErrMalformed is returned by Bind when the body is not valid JSON for the form.
var ErrMalformed = errors.New("malformed request body")

// ValidationErrors maps a JSON field name to a human readable message.
type ValidationErrors map[string]string

func (v ValidationErrors) Error() string {
	fields := make([]string, 0, len(v))
	for f := range v {
		fields = append(fields, f)
	}
	sort.Strings(fields)
	msgs := make([]string, 0, len(fields))
	for _, f := range fields {
		msgs = append(msgs, v[f])
	}
	return strings.Join(msgs, ", ")
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	v.RegisterValidation("timeformat", validateTimeFormat)
	v.RegisterValidation("dateformat", validateDateFormat)
	v.RegisterStructValidation(validateSlot, AppointmentForm{}, UpdateAppointmentForm{})
	return v
}

// validateTimeFormat checks for HH:MM.
func validateTimeFormat(fl validator.FieldLevel) bool {
	_, err := models.ParseTimeOfDay(fl.Field().String())
	return err == nil
}

// validateDateFormat checks for YYYY-MM-DD.
func validateDateFormat(fl validator.FieldLevel) bool {
	_, err := time.Parse(models.DateLayout, fl.Field().String())
	return err == nil
}

// validateSlot rejects appointments whose end is not after their start.
func validateSlot(sl validator.StructLevel) {
	var start, end string
	switch f := sl.Current().Interface().(type) {
	case AppointmentForm:
		start, end = f.StartTime, f.EndTime
	case UpdateAppointmentForm:
		start, end = f.StartTime, f.EndTime
	default:
		return
	}
	s, err1 := models.ParseTimeOfDay(start)
	e, err2 := models.ParseTimeOfDay(end)
	if err1 != nil || err2 != nil {
		return
	}
	if e <= s {
		sl.ReportError(end, "end_time", "EndTime", "timeafter", "start_time")
	}
}

// Validate runs the struct tags on form and returns ValidationErrors for any
// failed field.
func Validate(form interface{}) error {
	err := validate.Struct(form)
	if err == nil {
		return nil
	}
	var ve validator.ValidationErrors
	if !errors.As(err, &ve) {
		return err
	}
	out := make(ValidationErrors, len(ve))
	for _, fe := range ve {
		if _, ok := out[fe.Field()]; ok {
			continue
		}
		out[fe.Field()] = translate(fe)
	}
	return out
}

// Bind decodes the JSON body of r into form and validates it.
func Bind(r *http.Request, form interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(form); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	return Validate(form)
}

func translate(fe validator.FieldError) string {
	field := fe.Field()
	switch fe.Tag() {
	case "required":
		return field + " is required"
	case "email":
		return "invalid email format"
	case "min":
		if fe.Kind() == reflect.String {
			return field + " must be at least " + fe.Param() + " characters"
		}
		return field + " must be at least " + fe.Param()
	case "max":
		if fe.Kind() == reflect.String {
			return field + " must be at most " + fe.Param() + " characters"
		}
		return field + " must be at most " + fe.Param()
	case "eqfield":
		return field + " must match " + fe.Param()
	case "oneof":
		return field + " must be one of: " + fe.Param()
	case "timeformat":
		return field + " must be in HH:MM format (e.g., 14:00)"
	case "dateformat":
		return field + " must be in YYYY-MM-DD format"
	case "timeafter":
		return field + " must be after " + fe.Param()
	default:
		return field + " is invalid"
	}
}
