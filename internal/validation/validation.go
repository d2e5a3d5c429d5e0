// Package validation configures the form validator shared by the account
// and admin flows and turns its errors into field messages.
package validation

import (
	"errors"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
	"hakey-storefront/internal/domain"
)

var (
	emailRe = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	phoneRe = regexp.MustCompile(`^[\d\s\-+()]{8,}$`)
	imageRe = regexp.MustCompile(`(?i)^https?://.+\.(jpg|jpeg|png|webp|gif)$`)
)

// New returns a validator that reports json field names and knows the
// storefront's custom rules: loose_email, phone and image_url.
func New() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	mustRegister(v, "loose_email", matchString(emailRe))
	mustRegister(v, "phone", matchString(phoneRe))
	mustRegister(v, "image_url", matchString(imageRe))
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(err)
	}
}

func matchString(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// Messages maps "field.tag" (or "field" as a fallback) to the text shown
// to the user.
type Messages map[string]string

// Collect runs v over in and records one message per failing field on ve.
// Errors other than validation failures are returned as is.
func Collect(v *validator.Validate, in any, msgs Messages, ve *domain.ValidationError) error {
	err := v.Struct(in)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}
	for _, fe := range fieldErrs {
		field := fe.Field()
		msg, ok := msgs[field+"."+fe.Tag()]
		if !ok {
			msg, ok = msgs[field]
		}
		if !ok {
			msg = field + " is invalid"
		}
		ve.Add(field, msg)
	}
	return nil
}
