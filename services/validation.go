package services

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// futureSkew absorbs the offset between a date-only incident date parsed as
// UTC midnight and the reporter's local clock.
const futureSkew = 24 * time.Hour

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	if err := RegisterValidations(v); err != nil {
		panic(err)
	}
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		if label := f.Tag.Get("label"); label != "" {
			return label
		}
		return f.Name
	})
	return v
}

// RegisterValidations adds the portal's custom rules to v. The router calls it
// on gin's binding engine as well.
func RegisterValidations(v *validator.Validate) error {
	return v.RegisterValidation("notfuture", notFuture)
}

func notFuture(fl validator.FieldLevel) bool {
	t, ok := fl.Field().Interface().(time.Time)
	if !ok {
		return false
	}
	return !t.After(time.Now().Add(futureSkew))
}

// check validates s and turns the first failure into a Validation error with a
// readable message.
func check(s any) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) || len(verrs) == 0 {
		return err
	}
	return Validation(fieldMessage(verrs[0]))
}

func fieldMessage(fe validator.FieldError) string {
	label := fe.Field()
	switch fe.Tag() {
	case "required":
		return label + " is required"
	case "required_if":
		return label + " is required unless the complaint is anonymous"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
	case "email":
		return "Please enter a valid email"
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), " ", ", "))
	case "notfuture":
		return label + " cannot be in the future"
	}
	return label + " is invalid"
}

var dateLayouts = []string{time.RFC3339Nano, time.RFC3339, "2006-01-02T15:04", "2006-01-02"}

// parseDate accepts the formats browsers submit for date inputs. An empty
// string yields the zero time.
func parseDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, Validation("Invalid incident date")
}
