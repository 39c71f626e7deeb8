package service

import (
	"errors"
	"reflect"
	"regexp"
	"slices"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/ridloal/stationery-storefront/internal/order/domain"
)

var (
	contactPattern = regexp.MustCompile(`^\d{10}$`)
	emailPattern   = regexp.MustCompile(`\S+@\S+\.\S+`)
)

// messages are keyed by "<json field>.<failed tag>".
var messages = map[string]string{
	"full_name.required":               "Full name is required",
	"contact_number.required":          "Contact number is required",
	"contact_number.contact":           "Please enter a valid 10-digit contact number",
	"email.required":                   "Email address is required",
	"email.looseemail":                 "Please enter a valid email address",
	"address.required":                 "Delivery address is required",
	"preferred_delivery_time.required": "Preferred delivery time is required",
	"preferred_delivery_time.slot":     "Preferred delivery time is required",
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("contact", func(fl validator.FieldLevel) bool {
		return contactPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("looseemail", func(fl validator.FieldLevel) bool {
		return emailPattern.MatchString(fl.Field().String())
	})
	_ = v.RegisterValidation("slot", func(fl validator.FieldLevel) bool {
		return slices.Contains(domain.DeliverySlots, fl.Field().String())
	})
	return v
}

// validateCustomer checks trimmed details and reports one message per failing field.
func validateCustomer(v *validator.Validate, c domain.CustomerDetails) error {
	err := v.Struct(c.Trimmed())
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	verr := &domain.ValidationError{Fields: make(map[string]string, len(fieldErrs))}
	for _, fe := range fieldErrs {
		msg, ok := messages[fe.Field()+"."+fe.Tag()]
		if !ok {
			msg = fe.Error()
		}
		verr.Fields[fe.Field()] = msg
	}
	return verr
}
