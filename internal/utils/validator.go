package utils

import (
	"errors"
	"html"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/microcosm-cc/bluemonday"
	"github.com/truemail-rb/truemail-go"
)

var errNotAStruct = errors.New("payload must be a pointer to a struct")

// Validator bundles the struct validator, the email verifier and the HTML sanitizer
// used on every request body.
type Validator struct {
	Validate    *validator.Validate
	VerifyEmail func(email string) bool
	policy      *bluemonday.Policy
}

var (
	instance      *Validator
	configuration *truemail.Configuration
	once          sync.Once
)

func GetValidator() *Validator {
	once.Do(func() {
		// Regex only, a signup must not depend on DNS or SMTP reachability
		configuration, _ = truemail.NewConfiguration(truemail.ConfigurationAttr{
			VerifierEmail:         "no-reply@cloud-drive.local",
			ValidationTypeDefault: "regex",
		})

		instance = &Validator{
			Validate:    validator.New(validator.WithRequiredStructEnabled()),
			VerifyEmail: validateEmail,
			policy:      bluemonday.StrictPolicy(),
		}

		registerCustomValidators(instance.Validate)
	})

	return instance
}

func validateEmail(email string) bool {
	if configuration == nil {
		return false
	}
	return truemail.IsValid(email, configuration)
}

func registerCustomValidators(v *validator.Validate) {
	err := v.RegisterValidation("email_validation", emailValidation)
	if err != nil {
		return
	}
}

func emailValidation(fl validator.FieldLevel) bool {
	return validateEmail(fl.Field().String())
}

// SanitizeData strips markup from every string field of the struct pointed to by obj
// and trims surrounding whitespace. Entities are decoded again, so plain text such as
// "Tom & Jerry" is stored as typed. Fields tagged `sanitize:"-"` are left untouched.
func (v *Validator) SanitizeData(obj interface{}) error {
	value := reflect.ValueOf(obj)
	if value.Kind() != reflect.Pointer || value.IsNil() || value.Elem().Kind() != reflect.Struct {
		return errNotAStruct
	}

	value = value.Elem()
	structType := value.Type()
	for i := 0; i < value.NumField(); i++ {
		field := value.Field(i)
		if !field.CanSet() || structType.Field(i).Tag.Get("sanitize") == "-" {
			continue
		}

		switch field.Kind() {
		case reflect.String:
			field.SetString(v.sanitize(field.String()))
		case reflect.Pointer:
			if !field.IsNil() && field.Elem().Kind() == reflect.String {
				field.Elem().SetString(v.sanitize(field.Elem().String()))
			}
		}
	}

	return nil
}

func (v *Validator) sanitize(value string) string {
	return strings.TrimSpace(html.UnescapeString(v.policy.Sanitize(value)))
}
