package fields

import (
	"strings"
	"testing"

	"github.com/adonese/hawiya/apperr"
)

func TestValidateRegisterRequest(t *testing.T) {
	valid := RegisterRequest{Username: "ana", Email: "ana@x.com", Password: "Abcdef12!"}
	if err := ValidateStruct(valid); err != nil {
		t.Fatalf("valid input rejected: %v", err)
	}

	cases := []struct {
		name  string
		req   RegisterRequest
		field string
	}{
		{"missing username", RegisterRequest{Email: "ana@x.com", Password: "x"}, "username"},
		{"short username", RegisterRequest{Username: "a", Email: "ana@x.com", Password: "x"}, "username"},
		{"long username", RegisterRequest{Username: strings.Repeat("a", 101), Email: "ana@x.com", Password: "x"}, "username"},
		{"missing email", RegisterRequest{Username: "ana", Password: "x"}, "email"},
		{"short email", RegisterRequest{Username: "ana", Email: "a@b", Password: "x"}, "email"},
		{"not an email", RegisterRequest{Username: "ana", Email: "definitely-not", Password: "x"}, "email"},
		{"missing password", RegisterRequest{Username: "ana", Email: "ana@x.com"}, "password"},
		{"bad gender", RegisterRequest{Username: "ana", Email: "ana@x.com", Password: "x", Gender: "robot"}, "gender"},
		{"level out of range", RegisterRequest{Username: "ana", Email: "ana@x.com", Password: "x", Level: 5}, "level"},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(tt.req)
			if err == nil {
				t.Fatal("invalid input accepted")
			}
			e, ok := apperr.As(err)
			if !ok {
				t.Fatalf("error is not typed: %v", err)
			}
			if e.Code != apperr.ErrValidation.Code {
				t.Errorf("code = %q", e.Code)
			}
			if _, named := e.Fields[tt.field]; !named {
				t.Errorf("fields = %v, want %q named", e.Fields, tt.field)
			}
		})
	}
}

func TestValidateUpdateRequest_AllOptional(t *testing.T) {
	if err := ValidateStruct(UpdateUserRequest{}); err != nil {
		t.Fatalf("empty update rejected: %v", err)
	}
	if err := ValidateStruct(UpdateUserRequest{Username: "a"}); err == nil {
		t.Error("short username accepted on update")
	}
	if err := ValidateStruct(UpdateUserRequest{Email: "nope"}); err == nil {
		t.Error("bad email accepted on update")
	}
}

func TestNormalize(t *testing.T) {
	r := RegisterRequest{Username: "  ana  ", Email: "  Ana@X.COM "}
	r.Normalize()
	if r.Username != "ana" {
		t.Errorf("username = %q", r.Username)
	}
	if r.Email != "ana@x.com" {
		t.Errorf("email = %q", r.Email)
	}
}

func TestPasswordPolicy(t *testing.T) {
	policy := PasswordPolicy{MinLength: 8, MinClasses: 4}
	cases := []struct {
		name     string
		password string
		ok       bool
	}{
		{"all four classes", "Abcdef12!", true},
		{"too short", "Ab1!", false},
		{"no symbol", "Abcdefg12", false},
		{"no upper", "abcdefg12!", false},
		{"no digit", "Abcdefgh!", false},
		{"only lower", "abcdefgh", false},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			err := policy.Check(tt.password)
			if tt.ok && err != nil {
				t.Errorf("rejected: %v", err)
			}
			if !tt.ok && err == nil {
				t.Error("accepted")
			}
		})
	}
}

func TestPasswordPolicy_ConfigurableThresholds(t *testing.T) {
	relaxed := PasswordPolicy{MinLength: 6, MinClasses: 2}
	if err := relaxed.Check("abc123"); err != nil {
		t.Errorf("relaxed policy rejected two-class password: %v", err)
	}
	if err := relaxed.Check("abcdef"); err == nil {
		t.Error("relaxed policy accepted single-class password")
	}
}
