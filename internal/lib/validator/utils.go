package validator

import (
	"cinehub/proj/internal/domain/filters"
	"cinehub/proj/internal/utils"
	"fmt"
	"reflect"
	"strings"

	govalidator "github.com/go-playground/validator/v10"
)

// New returns a validator with the custom tags used by request types registered.
func New() *govalidator.Validate {
	v := govalidator.New(govalidator.WithRequiredStructEnabled())
	if err := v.RegisterValidation("decade", ValidateDecade); err != nil {
		panic(err)
	}
	return v
}

func structType(obj any) reflect.Type {
	t := reflect.TypeOf(obj)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	return t
}

func getFieldName(obj any, origFieldName string) (fieldName string) {
	t := structType(obj)
	field, found := t.FieldByName(origFieldName)
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", origFieldName, t.Name()))
	}
	for _, tagName := range []string{"json", "schema"} {
		if tag := field.Tag.Get(tagName); tag != "" && tag != "-" {
			if name := strings.Split(tag, ",")[0]; name != "" {
				return name
			}
		}
	}
	return utils.CamelToSnake(origFieldName)
}

func ProcessValidationErrors(obj any, errs govalidator.ValidationErrors) map[string]string {
	processedErrors := make(map[string]string)
	for _, e := range errs {
		processedErrors[getFieldName(obj, e.StructField())] = GetErrorMsgForField(obj, e)
	}
	return processedErrors
}

func ValidateStruct(validator *govalidator.Validate, obj any) (validationErrs map[string]string) {
	if err := validator.Struct(obj); err != nil {
		validationErrs = ProcessValidationErrors(obj, err.(govalidator.ValidationErrors))
	}
	return
}

func GetErrorMsgForField(obj any, err govalidator.FieldError) (errorMsg string) {
	t := structType(obj)
	field, found := t.FieldByName(err.StructField())
	if !found {
		panic(fmt.Sprintf("Field %s not found in type %s", err.StructField(), t.Name()))
	}
	errorMsg = field.Tag.Get("errorMsg")
	if errorMsg != "" {
		return
	}
	switch err.Tag() {
	case "required":
		errorMsg = "This field is required"
	case "max":
		errorMsg = fmt.Sprintf("The maximum value is %s", err.Param())
	case "min":
		errorMsg = fmt.Sprintf("The minimum value is %s", err.Param())
	case "gte":
		errorMsg = fmt.Sprintf("Value should be greater than or equal to %s", err.Param())
	case "lte":
		errorMsg = fmt.Sprintf("Value should be less than or equal to %s", err.Param())
	case "oneof":
		errorMsg = fmt.Sprintf("Value should be one of %s", err.Param())
	case "uuid", "uuid4":
		errorMsg = "Value must be a valid UUID"
	case "email":
		errorMsg = "Value must be a valid email address"
	case "alphanum":
		errorMsg = "Value must be alphanumeric"
	case "url":
		errorMsg = "Value must be a valid URL"
	case "unique":
		errorMsg = "Values must not repeat"
	case "decade":
		errorMsg = "Value must be \"all\" or a decade start year (e.g. 1990)"
	default:
		errorMsg = "This field is invalid"
	}
	return
}

// CUSTOM VALIDATORS

// ValidateDecade accepts "", "all" and years divisible by ten.
func ValidateDecade(fl govalidator.FieldLevel) bool {
	d, err := filters.ParseDecade(fl.Field().String())
	if err != nil {
		return false
	}
	return d == nil || filters.DecadeOf(*d) == *d
}
