// Package validation checks signup input against allow-lists. Validators
// never rewrite or truncate what they are given: input either passes and is
// returned in canonical form, or is rejected with the offending field named.
package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"farmgate/internal/registration/models"
	dErrors "farmgate/pkg/domain-errors"
)

var (
	namePattern    = regexp.MustCompile(`^\p{L}[\p{L}' .-]{0,59}$`)
	mobilePattern  = regexp.MustCompile(`^(?:\+63|0)(9\d{9})$`)
	addressPattern = regexp.MustCompile(`^[\p{L}\p{N}][\p{L}\p{N} ,.'#/()&-]{2,199}$`)
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	_ = v.RegisterValidation("person_name", matches(namePattern))
	_ = v.RegisterValidation("ph_mobile", matches(mobilePattern))
	_ = v.RegisterValidation("address_text", matches(addressPattern))
	return v
}

func matches(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		return re.MatchString(fl.Field().String())
	}
}

// SignupForm is the raw registration body.
type SignupForm struct {
	Role      string `json:"role" validate:"required,oneof=farmer consumer"`
	FirstName string `json:"firstName" validate:"required,person_name"`
	LastName  string `json:"lastName" validate:"required,person_name"`
	Email     string `json:"email" validate:"required,max=254,email"`
	Phone     string `json:"phone" validate:"required,ph_mobile"`

	FarmName    string `json:"farmName" validate:"required_if=Role farmer,omitempty,address_text"`
	FarmAddress string `json:"farmAddress" validate:"required_if=Role farmer,omitempty,address_text"`

	DeliveryAddress string `json:"deliveryAddress" validate:"required_if=Role consumer,omitempty,address_text"`
}

// FieldError names one rejected field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError lists every rejected field.
type ValidationError struct {
	Fields []FieldError
}

func (e *ValidationError) Error() string {
	msgs := make([]string, 0, len(e.Fields))
	for _, f := range e.Fields {
		msgs = append(msgs, f.Message)
	}
	return strings.Join(msgs, "; ")
}

// Details returns the field errors carried by err, if any.
func Details(err error) []FieldError {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return verr.Fields
	}
	return nil
}

// Form validates a signup and returns its canonical FormData. Surrounding
// whitespace is ignored; nothing else is changed except the phone, which is
// returned in +63 form.
func Form(in SignupForm) (models.FormData, error) {
	trimmed := SignupForm{
		Role:            strings.TrimSpace(in.Role),
		FirstName:       strings.TrimSpace(in.FirstName),
		LastName:        strings.TrimSpace(in.LastName),
		Email:           strings.TrimSpace(in.Email),
		Phone:           strings.TrimSpace(in.Phone),
		FarmName:        strings.TrimSpace(in.FarmName),
		FarmAddress:     strings.TrimSpace(in.FarmAddress),
		DeliveryAddress: strings.TrimSpace(in.DeliveryAddress),
	}

	if err := validate.Struct(trimmed); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return models.FormData{}, dErrors.Wrap(err, dErrors.CodeInternal, "failed to validate form")
		}
		verr := &ValidationError{Fields: make([]FieldError, 0, len(verrs))}
		for _, fe := range verrs {
			verr.Fields = append(verr.Fields, FieldError{Field: fe.Field(), Message: message(fe)})
		}
		return models.FormData{}, dErrors.Wrap(verr, dErrors.CodeValidation, verr.Fields[0].Message)
	}

	phone, err := Phone(trimmed.Phone)
	if err != nil {
		return models.FormData{}, err
	}
	form := models.FormData{
		Role:      models.Role(trimmed.Role),
		FirstName: trimmed.FirstName,
		LastName:  trimmed.LastName,
		Email:     trimmed.Email,
		Phone:     phone,
	}
	if form.Role == models.RoleFarmer {
		form.FarmName = trimmed.FarmName
		form.FarmAddress = trimmed.FarmAddress
	} else {
		form.DeliveryAddress = trimmed.DeliveryAddress
	}
	return form, nil
}

// Name accepts letters, spaces, apostrophes, periods and hyphens.
func Name(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !namePattern.MatchString(s) {
		return "", fieldError("name", "name may only contain letters, spaces, apostrophes, periods and hyphens")
	}
	return s, nil
}

// Phone accepts a Philippine mobile number as 09XXXXXXXXX or +639XXXXXXXXX
// and returns it as +639XXXXXXXXX.
func Phone(s string) (string, error) {
	m := mobilePattern.FindStringSubmatch(strings.TrimSpace(s))
	if m == nil {
		return "", fieldError("phone", "phone must be a Philippine mobile number such as 09171234567")
	}
	return "+63" + m[1], nil
}

// Address accepts letters, digits and common address punctuation.
func Address(s string) (string, error) {
	s = strings.TrimSpace(s)
	if !addressPattern.MatchString(s) {
		return "", fieldError("address", "address contains unsupported characters or is too short")
	}
	return s, nil
}

func fieldError(field, msg string) error {
	return dErrors.Wrap(&ValidationError{Fields: []FieldError{{Field: field, Message: msg}}}, dErrors.CodeValidation, msg)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required", "required_if":
		return fmt.Sprintf("%s is required", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email address", fe.Field())
	case "max":
		return fmt.Sprintf("%s must not exceed %s characters", fe.Field(), fe.Param())
	case "person_name":
		return fmt.Sprintf("%s may only contain letters, spaces, apostrophes, periods and hyphens", fe.Field())
	case "ph_mobile":
		return fmt.Sprintf("%s must be a Philippine mobile number such as 09171234567", fe.Field())
	case "address_text":
		return fmt.Sprintf("%s contains unsupported characters or is too short", fe.Field())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}
