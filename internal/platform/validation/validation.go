// Package validation registers the custom binding tags on gin's validator and
// turns validation failures into API errors.
package validation

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"

	"night-attendance-backend/internal/platform/apierror"
)

const (
	descriptorTag = "descriptor"
	notBlankTag   = "notblank"
)

// Register installs the custom tags on v and reports fields by their JSON names.
func Register(v *validator.Validate) error {
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation(descriptorTag, descriptorValidation); err != nil {
		return err
	}
	return v.RegisterValidation(notBlankTag, notBlankValidation)
}

// Setup registers the custom tags on the validator gin binds with.
func Setup() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return errors.New("gin binding validator is not go-playground/validator")
	}
	return Register(v)
}

// descriptorValidation accepts a non-empty float slice with only finite values.
func descriptorValidation(fl validator.FieldLevel) bool {
	f := fl.Field()
	if f.Kind() != reflect.Slice || f.Len() == 0 {
		return false
	}
	switch f.Type().Elem().Kind() {
	case reflect.Float32, reflect.Float64:
	default:
		return false
	}
	for i := 0; i < f.Len(); i++ {
		x := f.Index(i).Float()
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return false
		}
	}
	return true
}

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// BindError converts a ShouldBindJSON failure into a 400 with per-field details.
func BindError(err error) *apierror.Error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return apierror.Invalid("invalid json or missing required fields")
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = message(fe)
	}
	return apierror.Invalid("validation failed").WithDetails(fields)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "this field is required"
	case notBlankTag:
		return "this field cannot be blank"
	case descriptorTag:
		return "must be a non-empty list of finite numbers"
	case "latitude", "longitude":
		return "must be a valid " + fe.Tag()
	case "oneof":
		return "must be one of: " + fe.Param()
	case "max":
		return "must be at most " + fe.Param() + " characters"
	default:
		return fmt.Sprintf("failed %q validation", fe.Tag())
	}
}
