package domain

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Validator instance shared by all domain types
var validate *validator.Validate

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report fields by their JSON names so errors line up with the API payloads
	validate.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	validate.RegisterValidation("category", func(fl validator.FieldLevel) bool {
		return Category(fl.Field().String()).Valid()
	})
	validate.RegisterValidation("order_status", func(fl validator.FieldLevel) bool {
		return OrderStatus(fl.Field().String()).Valid()
	})
}

// RoundPrice rounds a price to 2 decimal places, half away from zero.
// Non-finite input yields NaN so that the gt=0 rule rejects it.
func RoundPrice(p float64) float64 {
	if math.IsNaN(p) || math.IsInf(p, 0) {
		return math.NaN()
	}
	rounded, _ := decimal.NewFromFloat(p).Round(2).Float64()
	return rounded
}

// validateStruct runs the tag rules on v and appends every violation to verr
func validateStruct(v interface{}, verr *ValidationError) {
	err := validate.Struct(v)
	if err == nil {
		return
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		verr.add("", err.Error())
		return
	}

	for _, e := range fieldErrors {
		verr.add(fieldPath(e.Namespace()), fieldMessage(e))
	}
}

// fieldPath drops the struct name from a validator namespace
func fieldPath(ns string) string {
	if i := strings.Index(ns, "."); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func fieldMessage(e validator.FieldError) string {
	if e.Field() == "size_cm" {
		if v, ok := e.Value().(int); ok && v <= 0 {
			return "must be a positive number of centimetres"
		}
		return fmt.Sprintf("must be between %d and %d", MinPizzaSizeCM, MaxPizzaSizeCM)
	}

	switch e.Tag() {
	case "required":
		return "is required"
	case "min":
		if e.Kind() == reflect.Slice {
			return "must contain at least " + e.Param() + " item(s)"
		}
		return "must be at least " + e.Param() + " characters"
	case "max":
		return "must be at most " + e.Param() + " characters"
	case "gt":
		return "must be greater than " + e.Param()
	case "http_url":
		return "must be an http:// or https:// URL"
	case "category":
		return "must be one of: " + joinCategories()
	case "order_status":
		return "must be one of: " + joinStatuses()
	default:
		return "is invalid"
	}
}
