package fields

import (
	"fmt"
	"reflect"
	"strings"
	"sync"
	"unicode"

	"github.com/go-playground/validator/v10"

	"github.com/adonese/hawiya/apperr"
)

// RegisterRequest is the body of POST /api/auth/register. Password complexity
// is enforced separately by PasswordPolicy since its thresholds come from
// configuration, not from the struct tags.
type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=2,max=100"`
	Email    string `json:"email" binding:"required,min=5,max=100,email"`
	Password string `json:"password" binding:"required"`
	Gender   string `json:"gender,omitempty" binding:"omitempty,oneof=male female"`
	Level    int    `json:"level,omitempty" binding:"omitempty,min=1,max=4"`
}

// Normalize trims whitespace and lowercases the email, which doubles as the
// cross-provider linking key and must compare canonically.
func (r *RegisterRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Gender = strings.TrimSpace(r.Gender)
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email    string `json:"email" binding:"required,min=5,max=100,email"`
	Password string `json:"password" binding:"required"`
}

func (r *LoginRequest) Normalize() {
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
}

// UpdateUserRequest is the body of PUT /api/users/profile/:id. Every field is
// optional but validated when present.
type UpdateUserRequest struct {
	Username string `json:"username,omitempty" binding:"omitempty,min=2,max=100"`
	Email    string `json:"email,omitempty" binding:"omitempty,min=5,max=100,email"`
	Password string `json:"password,omitempty"`
	Gender   string `json:"gender,omitempty" binding:"omitempty,oneof=male female"`
	Level    int    `json:"level,omitempty" binding:"omitempty,min=1,max=4"`
}

func (r *UpdateUserRequest) Normalize() {
	r.Username = strings.TrimSpace(r.Username)
	r.Email = strings.ToLower(strings.TrimSpace(r.Email))
	r.Gender = strings.TrimSpace(r.Gender)
}

var validatorOnce sync.Once
var validate *validator.Validate

// Validator returns the process-wide validator, configured to read the
// binding tag and to report field names from json tags.
func Validator() *validator.Validate {
	validatorOnce.Do(func() {
		validate = validator.New()
		validate.SetTagName("binding")
		validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
			name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
			if name == "-" {
				return ""
			}
			return name
		})
	})
	return validate
}

// ValidateStruct runs tag validation and converts the first failure into a
// typed validation error naming the offending field.
func ValidateStruct(obj interface{}) error {
	if kindOfData(obj) != reflect.Struct {
		return nil
	}
	err := Validator().Struct(obj)
	if err == nil {
		return nil
	}
	ferrs, ok := err.(validator.ValidationErrors)
	if !ok || len(ferrs) == 0 {
		return apperr.Wrap(err, apperr.ErrValidation, "invalid input")
	}
	first := ferrs[0]
	msg := fieldMessage(first)
	return apperr.WithFields(apperr.WithMessage(apperr.ErrValidation, msg),
		map[string]any{first.Field(): msg})
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "min":
		return fmt.Sprintf("%s must be at least %s characters long", fe.Field(), fe.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters long", fe.Field(), fe.Param())
	case "email":
		return fmt.Sprintf("%s must be a valid email", fe.Field())
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", fe.Field(), fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", fe.Field())
	}
}

func kindOfData(data interface{}) reflect.Kind {
	value := reflect.ValueOf(data)
	valueType := value.Kind()
	if valueType == reflect.Ptr {
		valueType = value.Elem().Kind()
	}
	return valueType
}

// PasswordPolicy is the configurable complexity requirement: a minimum length
// plus a minimum number of distinct character classes out of lower, upper,
// digit and symbol.
type PasswordPolicy struct {
	MinLength  int
	MinClasses int
}

// Check validates plain against the policy and returns a typed validation
// error describing the requirement when it falls short.
func (p PasswordPolicy) Check(plain string) error {
	if len(plain) < p.MinLength {
		msg := fmt.Sprintf("password must be at least %d characters long", p.MinLength)
		return apperr.WithFields(apperr.WithMessage(apperr.ErrValidation, msg),
			map[string]any{"password": msg})
	}
	var hasLower, hasUpper, hasDigit, hasSymbol bool
	for _, c := range plain {
		switch {
		case unicode.IsLower(c):
			hasLower = true
		case unicode.IsUpper(c):
			hasUpper = true
		case unicode.IsNumber(c):
			hasDigit = true
		case unicode.IsSymbol(c) || unicode.IsPunct(c):
			hasSymbol = true
		}
	}
	classes := 0
	for _, ok := range []bool{hasLower, hasUpper, hasDigit, hasSymbol} {
		if ok {
			classes++
		}
	}
	if classes < p.MinClasses {
		msg := fmt.Sprintf("password must mix at least %d of: lower case, upper case, numbers, symbols", p.MinClasses)
		return apperr.WithFields(apperr.WithMessage(apperr.ErrValidation, msg),
			map[string]any{"password": msg})
	}
	return nil
}
