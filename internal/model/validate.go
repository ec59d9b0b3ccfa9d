package model

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

// queueNamePattern matches SQS queue names: alphanumerics, hyphens and
// underscores, optionally followed by the FIFO suffix.
var queueNamePattern = regexp.MustCompile(`^[A-Za-z0-9_-]+(\.fifo)?$`)

var (
	validateOnce sync.Once
	validate     *validator.Validate
)

// Validator returns the shared validator with the console's custom tags
// registered.
func Validator() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
		_ = validate.RegisterValidation("queuename", func(fl validator.FieldLevel) bool {
			return queueNamePattern.MatchString(fl.Field().String())
		})
	})
	return validate
}

// ValidateQueue checks a queue definition before it is sent to the
// backend for creation.
func ValidateQueue(q Queue) error {
	if err := Validator().Struct(q); err != nil {
		return describeValidation(err)
	}
	return nil
}

// describeValidation turns validator errors into one operator-facing
// sentence per failed field.
func describeValidation(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "queuename":
			msgs = append(msgs, fmt.Sprintf(
				"%s may only contain alphanumerics, hyphens and underscores (optional %s suffix)",
				fe.Field(), FifoSuffix,
			))
		case "min", "max":
			msgs = append(msgs, fmt.Sprintf("%s must be %s %s", fe.Field(), boundWord(fe.Tag()), fe.Param()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return errors.New(strings.Join(msgs, "; "))
}

func boundWord(tag string) string {
	if tag == "min" {
		return "at least"
	}
	return "at most"
}
