// Package validation checks request payloads before any work is done on them.
package validation

import (
	"errors"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// FieldError describes one rejected field. Value is left empty for secrets.
type FieldError struct {
	Location string `json:"location"`
	Param    string `json:"param"`
	Value    string `json:"value,omitempty"`
	Msg      string `json:"msg"`
}

type SignupInput struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required"`
	Password string `json:"password" validate:"min=5,bcryptlen"`
}

// Normalize trims the email and name and lower-cases the email. The password
// is left untouched.
func (in *SignupInput) Normalize() {
	in.Email = strings.ToLower(strings.TrimSpace(in.Email))
	in.Name = strings.TrimSpace(in.Name)
}

// maxPasswordBytes is the most bcrypt will accept.
const maxPasswordBytes = 72

var messages = map[string]string{
	"email":              "Please enter a valid email.",
	"name":               "Name must not be empty.",
	"password":           "Password must be at least 5 characters.",
	"password.bcryptlen": "Password must be at most 72 bytes.",
}

var secretFields = map[string]bool{"password": true}

type Validator struct {
	v *validator.Validate
}

func New() *Validator {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	_ = v.RegisterValidation("bcryptlen", func(fl validator.FieldLevel) bool {
		return len(fl.Field().String()) <= maxPasswordBytes
	})
	return &Validator{v: v}
}

// Signup normalizes in and returns one FieldError per failing field, in
// declaration order. An empty result means the input is acceptable.
func (v *Validator) Signup(in *SignupInput) []FieldError {
	in.Normalize()

	err := v.v.Struct(in)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return []FieldError{{Location: "body", Msg: err.Error()}}
	}

	out := make([]FieldError, 0, len(verrs))
	for _, fe := range verrs {
		field := fe.Field()
		e := FieldError{Location: "body", Param: field, Msg: messages[field+"."+fe.Tag()]}
		if e.Msg == "" {
			e.Msg = messages[field]
		}
		if e.Msg == "" {
			e.Msg = "Invalid value"
		}
		if !secretFields[field] {
			e.Value, _ = fe.Value().(string)
		}
		out = append(out, e)
	}
	return out
}
