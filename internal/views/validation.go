package views

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// AuthRequest is the login payload
type AuthRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// RegisterRequest is the registration form. ConfirmPassword never leaves
// the client.
type RegisterRequest struct {
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"min=6"`
	ConfirmPassword string `json:"-" validate:"eqfield=Password"`
}

// Payload is what is sent to the backend
func (r RegisterRequest) Payload() AuthRequest {
	return AuthRequest{Email: r.Email, Password: r.Password}
}

// ValidationError is a client-side rejection; no request was sent
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Registration checks run confirmation first, then length, then email
var (
	loginOrder    = []string{"Email", "Password"}
	registerOrder = []string{"ConfirmPassword", "Password", "Email"}
)

// validateStruct returns the first failing check of v, ranked by order
func validateStruct(v any, order []string) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return err
	}

	first := fieldErrs[0]
	firstRank := rank(order, first.StructField())
	for _, fe := range fieldErrs[1:] {
		if r := rank(order, fe.StructField()); r < firstRank {
			first, firstRank = fe, r
		}
	}

	return &ValidationError{
		Field:   strings.ToLower(first.StructField()),
		Message: describe(first),
	}
}

func rank(order []string, field string) int {
	for i, name := range order {
		if name == field {
			return i
		}
	}
	return len(order)
}

func describe(fe validator.FieldError) string {
	switch fe.Tag() {
	case "eqfield":
		return "passwords do not match"
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", strings.ToLower(fe.StructField()), fe.Param())
	case "email":
		return "invalid email address"
	case "required":
		return fmt.Sprintf("%s is required", strings.ToLower(fe.StructField()))
	default:
		return fmt.Sprintf("%s is invalid", strings.ToLower(fe.StructField()))
	}
}
