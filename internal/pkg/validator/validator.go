package validator

import (
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator instance
var validate *validator.Validate

func init() {
	validate = validator.New()

	// Use JSON tag names in error messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	registerCustomValidations()
}

func registerCustomValidations() {
	// Activity kind validation
	validate.RegisterValidation("activity_kind", func(fl validator.FieldLevel) bool {
		kind := fl.Field().String()
		validKinds := []string{"task", "ad", "checkin", "scratch"}
		for _, k := range validKinds {
			if kind == k {
				return true
			}
		}
		return false
	})

	// Subscription plan validation
	validate.RegisterValidation("plan_id", func(fl validator.FieldLevel) bool {
		plan := fl.Field().String()
		validPlans := []string{"free", "silver", "gold", "platinum"}
		for _, p := range validPlans {
			if plan == p {
				return true
			}
		}
		return false
	})

	// Withdrawal method validation
	validate.RegisterValidation("withdraw_method", func(fl validator.FieldLevel) bool {
		method := fl.Field().String()
		validMethods := []string{"upi", "bank", "paytm", ""}
		for _, m := range validMethods {
			if method == m {
				return true
			}
		}
		return false
	})

	// Positive decimal amount, at most 2 decimal places
	validate.RegisterValidation("money", func(fl validator.FieldLevel) bool {
		d, ok := fl.Field().Interface().(decimal.Decimal)
		if !ok {
			return false
		}
		return d.IsPositive() && d.Exponent() >= -2
	})
}

// Validate validates a struct and returns a map of field errors
func Validate(s interface{}) map[string]string {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}

	errors := make(map[string]string)
	for _, err := range err.(validator.ValidationErrors) {
		field := err.Field()
		switch err.Tag() {
		case "required":
			errors[field] = "This field is required"
		case "uuid":
			errors[field] = "Must be a valid UUID"
		case "activity_kind":
			errors[field] = "Must be one of: task, ad, checkin, scratch"
		case "plan_id":
			errors[field] = "Must be one of: free, silver, gold, platinum"
		case "withdraw_method":
			errors[field] = "Unsupported withdrawal method"
		case "money":
			errors[field] = "Must be a positive amount with at most 2 decimal places"
		case "min":
			errors[field] = "Value is too small"
		case "max":
			errors[field] = "Value is too large"
		default:
			errors[field] = "Invalid value"
		}
	}
	return errors
}
