package auth

import (
	"context"
	"errors"
	"testing"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/repositories/memory"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
)

var (
	parent = &models.User{ID: 1, Role: models.RoleParent}
	staff  = &models.User{ID: 2, Role: models.RoleStaff}
	admin  = &models.User{ID: 3, Role: models.RoleAdmin}
)

func rolePtr(r models.Role) *models.Role { return &r }

func TestValidateContentAuthor(t *testing.T) {
	tests := []struct {
		name  string
		actor *models.User
		want  error
	}{
		{"anonymous", nil, apperrors.ErrNotAuthenticated},
		{"parent", parent, apperrors.ErrPermissionDenied},
		{"staff", staff, nil},
		{"admin", admin, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateContentAuthor(tt.actor)
			if tt.want == nil && err != nil || tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("ValidateContentAuthor() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateProfileUpdate(t *testing.T) {
	tests := []struct {
		name   string
		actor  *models.User
		target int64
		role   *models.Role
		want   error
	}{
		{"anonymous", nil, 1, nil, apperrors.ErrNotAuthenticated},
		{"own profile", parent, 1, nil, nil},
		{"other profile", parent, 2, nil, apperrors.ErrPermissionDenied},
		{"staff other profile", staff, 1, nil, apperrors.ErrPermissionDenied},
		{"admin other profile", admin, 1, nil, nil},
		{"self promote to staff", parent, 1, rolePtr(models.RoleStaff), apperrors.ErrPermissionDenied},
		{"staff self promote to admin", staff, 2, rolePtr(models.RoleAdmin), apperrors.ErrPermissionDenied},
		{"staff demote self", staff, 2, rolePtr(models.RoleParent), nil},
		{"admin promotes", admin, 1, rolePtr(models.RoleStaff), nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateProfileUpdate(tt.actor, tt.target, tt.role)
			if tt.want == nil && err != nil || tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("ValidateProfileUpdate() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateRegistration(t *testing.T) {
	tests := []struct {
		name       string
		actor      *models.User
		role       models.Role
		allowStaff bool
		want       error
	}{
		{"parent", nil, models.RoleParent, true, nil},
		{"staff allowed", nil, models.RoleStaff, true, nil},
		{"staff disabled", nil, models.RoleStaff, false, apperrors.ErrPermissionDenied},
		{"admin", nil, models.RoleAdmin, true, apperrors.ErrPermissionDenied},
		{"admin by parent", parent, models.RoleAdmin, true, apperrors.ErrPermissionDenied},
		{"admin by admin", admin, models.RoleAdmin, false, nil},
		{"staff by admin when disabled", admin, models.RoleStaff, false, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRegistration(tt.actor, tt.role, tt.allowStaff)
			if tt.want == nil && err != nil || tt.want != nil && !errors.Is(err, tt.want) {
				t.Errorf("ValidateRegistration() = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestValidateChildCreation(t *testing.T) {
	ctx := context.Background()
	repos := memory.NewRepositories()
	users := repos.UserRepository

	mom := &models.User{Email: "mom@example.com", Role: models.RoleParent}
	caregiver := &models.User{Email: "caregiver@example.com", Role: models.RoleStaff}
	other := &models.User{Email: "other@example.com", Role: models.RoleParent}
	for _, u := range []*models.User{mom, caregiver, other} {
		if err := users.Create(ctx, u); err != nil {
			t.Fatal(err)
		}
	}
	gate := NewAuthorizationService(users)

	tests := []struct {
		name     string
		actor    *models.User
		parentID int64
		want     error
	}{
		{"anonymous", nil, mom.ID, apperrors.ErrNotAuthenticated},
		{"own account", mom, mom.ID, nil},
		{"someone else's account", other, mom.ID, apperrors.ErrPermissionDenied},
		{"staff for parent", caregiver, mom.ID, nil},
		{"unknown parent", caregiver, 999, apperrors.ErrResourceNotFound},
		{"staff parent id", caregiver, caregiver.ID, apperrors.ErrInvalidState},
		{"ownership checked before lookup", other, 999, apperrors.ErrPermissionDenied},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := gate.ValidateChildCreation(ctx, tt.actor, tt.parentID)
			if tt.want == nil {
				if err != nil || got == nil || got.ID != tt.parentID {
					t.Errorf("ValidateChildCreation() = %v, %v", got, err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Errorf("ValidateChildCreation() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestViewRules(t *testing.T) {
	if _, err := CanViewUsers(nil); !errors.Is(err, apperrors.ErrNotAuthenticated) {
		t.Errorf("anonymous CanViewUsers error = %v", err)
	}
	if ok, _ := CanViewUsers(parent); ok {
		t.Error("parents should not list users")
	}
	if ok, _ := CanViewUsers(staff); !ok {
		t.Error("staff should list users")
	}

	own := &models.Child{ParentID: parent.ID}
	foreign := &models.Child{ParentID: 42}
	if !CanViewChild(parent, own) || CanViewChild(parent, foreign) {
		t.Error("parents see only their own children")
	}
	if !CanViewChild(staff, foreign) || CanViewChild(nil, own) {
		t.Error("staff see all, anonymous none")
	}

	if CanViewDrafts(nil) || CanViewDrafts(parent) || !CanViewDrafts(admin) {
		t.Error("only staff and admin see drafts")
	}
}
