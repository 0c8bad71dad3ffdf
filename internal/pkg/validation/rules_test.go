package validation

import (
	"errors"
	"testing"

	"github.com/brightnest/daycare/internal/pkg/apperrors"
)

func TestEmail(t *testing.T) {
	valid := []string{"parent@example.com", "Staff.Member@Daycare.org"}
	invalid := []string{"", "no-at-sign", "a@b", "a@b.c"}

	for _, v := range valid {
		if err := Email(v); err != nil {
			t.Errorf("Email(%q) = %v", v, err)
		}
	}
	for _, v := range invalid {
		if err := Email(v); !errors.Is(err, apperrors.ErrValidationFailed) {
			t.Errorf("Email(%q) = %v, want validation error", v, err)
		}
	}
}

func TestPasswordAndPhone(t *testing.T) {
	if err := Password("1234567"); err == nil {
		t.Error("seven characters should be rejected")
	}
	if err := Password("12345678"); err != nil {
		t.Errorf("eight characters rejected: %v", err)
	}
	if err := Phone(""); err != nil {
		t.Errorf("optional phone rejected: %v", err)
	}
	if err := Phone("+1 (555) 010-2030"); err != nil {
		t.Errorf("phone rejected: %v", err)
	}
	if err := Phone("call me"); err == nil {
		t.Error("phone letters accepted")
	}
}

func TestNameAndFirst(t *testing.T) {
	long := make([]byte, NameMaxLength+1)
	for i := range long {
		long[i] = 'a'
	}
	err := First(nil, Name("firstName", "", true), Name("lastName", string(long), false))
	var ce *apperrors.CustomError
	if !errors.As(err, &ce) || ce.Details["field"] != "firstName" {
		t.Fatalf("First() = %v, want firstName error", err)
	}
	if err := Name("lastName", "", false); err != nil {
		t.Errorf("optional empty name rejected: %v", err)
	}
}
