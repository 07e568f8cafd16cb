package validation

import (
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/basho-studio/storefront/pkg/enums"
)

var (
	emailPattern   = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)
	mobilePattern  = regexp.MustCompile(`^[6-9]\d{9}$`)
	gstinPattern   = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	pincodePattern = regexp.MustCompile(`^[1-9][0-9]{5}$`)
	isoDatePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
)

// New returns a validator that reports json field names and knows the
// storefront-specific tags (basho_email, in_mobile, gstin, pincode and the
// catalog enums).
func New() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		tag := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if tag == "" || tag == "-" {
			return f.Name
		}
		return tag
	})

	mustRegister(v, "basho_email", func(fl validator.FieldLevel) bool {
		return IsEmail(fl.Field().String())
	})
	mustRegister(v, "in_mobile", func(fl validator.FieldLevel) bool {
		return IsMobile(fl.Field().String())
	})
	mustRegister(v, "gstin", func(fl validator.FieldLevel) bool {
		return IsGSTIN(fl.Field().String())
	})
	mustRegister(v, "pincode", func(fl validator.FieldLevel) bool {
		return pincodePattern.MatchString(strings.TrimSpace(fl.Field().String()))
	})
	mustRegister(v, "iso_date", func(fl validator.FieldLevel) bool {
		return isoDatePattern.MatchString(fl.Field().String())
	})
	mustRegister(v, "product_category", func(fl validator.FieldLevel) bool {
		return enums.ProductCategory(fl.Field().String()).IsValid()
	})
	mustRegister(v, "workshop_type", func(fl validator.FieldLevel) bool {
		return enums.WorkshopType(fl.Field().String()).IsValid()
	})
	mustRegister(v, "experience_level", func(fl validator.FieldLevel) bool {
		return enums.ExperienceLevel(fl.Field().String()).IsValid()
	})
	return v
}

func mustRegister(v *validator.Validate, tag string, fn validator.Func) {
	if err := v.RegisterValidation(tag, fn); err != nil {
		panic(fmt.Sprintf("register %s validation: %v", tag, err))
	}
}

// IsEmail applies the storefront's loose address check (something@something.tld).
func IsEmail(value string) bool {
	return emailPattern.MatchString(value)
}

// IsMobile accepts ten-digit Indian mobile numbers; spaces are ignored.
func IsMobile(value string) bool {
	return mobilePattern.MatchString(strings.ReplaceAll(value, " ", ""))
}

// IsGSTIN checks the 15-character GST identification number layout.
func IsGSTIN(value string) bool {
	return gstinPattern.MatchString(strings.ToUpper(strings.TrimSpace(value)))
}

// FieldErrors flattens validator errors into field -> message pairs. ok is
// false when err is not a validator.ValidationErrors.
func FieldErrors(err error) (map[string]string, bool) {
	errs, ok := err.(validator.ValidationErrors)
	if !ok {
		return nil, false
	}
	details := make(map[string]string, len(errs))
	for _, fieldErr := range errs {
		details[fieldErr.Field()] = Message(fieldErr)
	}
	return details, true
}

// Message renders a short human message for a single field failure.
func Message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "gte":
		return fmt.Sprintf("must be greater than or equal to %s", fe.Param())
	case "email", "basho_email":
		return "must be a valid email"
	case "in_mobile":
		return "must be a valid 10-digit mobile number"
	case "gstin":
		return "must be a valid GST number"
	case "pincode":
		return "must be a valid 6-digit pincode"
	case "iso_date":
		return "must be a YYYY-MM-DD date"
	case "oneof", "product_category", "workshop_type", "experience_level":
		return "is not an allowed value"
	}
	return "is invalid"
}
