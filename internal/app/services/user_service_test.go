package services

import (
	"testing"
	"time"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
)

func strPtr(s string) *string { return &s }

func TestCreateUserRegistrationRules(t *testing.T) {
	h := newHarness(t)

	register := func(email, role string) error {
		_, err := h.svc.User.CreateUser(h.ctx, nil, &dto.CreateUserRequest{
			Email:     email,
			Password:  "password123",
			FirstName: "Ada",
			Role:      role,
		})
		return err
	}

	assertErr(t, register("parent@example.com", ""), nil)
	assertErr(t, register("staff@example.com", "STAFF"), nil)
	assertErr(t, register("admin@example.com", "ADMIN"), apperrors.ErrPermissionDenied)
	assertErr(t, register("PARENT@example.com", ""), apperrors.ErrEmailAlreadyExists)
	assertErr(t, register("not-an-email", ""), apperrors.ErrValidationFailed)

	_, err := h.svc.User.CreateUser(h.ctx, nil, &dto.CreateUserRequest{
		Email: "short@example.com", Password: "short", FirstName: "Ada",
	})
	assertErr(t, err, apperrors.ErrValidationFailed)

	stored, err := h.repos.UserRepository.GetByEmail(h.ctx, "parent@example.com")
	assertErr(t, err, nil)
	if stored.Role != models.RoleParent || stored.Password == "password123" {
		t.Errorf("stored user %+v", stored)
	}
}

func TestCreateUserStaffRegistrationDisabled(t *testing.T) {
	h := newHarness(t)
	svc := NewUserService(h.repos.UserRepository, h.repos.ChildRepository, false, h.clock.Now, testLogger())

	_, err := svc.CreateUser(h.ctx, nil, &dto.CreateUserRequest{
		Email: "staff@example.com", Password: "password123", FirstName: "Sam", Role: "STAFF",
	})
	assertErr(t, err, apperrors.ErrPermissionDenied)

	admin := &models.User{ID: 1, Role: models.RoleAdmin}
	_, err = svc.CreateUser(h.ctx, admin, &dto.CreateUserRequest{
		Email: "staff@example.com", Password: "password123", FirstName: "Sam", Role: "STAFF",
	})
	assertErr(t, err, nil)
}

func TestUpdateUser(t *testing.T) {
	h := newHarness(t)
	parent := h.user(t, "parent@example.com", models.RoleParent)
	other := h.user(t, "other@example.com", models.RoleParent)
	admin := h.user(t, "admin@example.com", models.RoleAdmin)

	h.clock.Advance(time.Hour)
	resp, err := h.svc.User.UpdateUser(h.ctx, parent, parent.ID, &dto.UpdateUserRequest{
		Bio:         strPtr("Loves painting"),
		PhoneNumber: strPtr("+31 20 123 4567"),
	})
	assertErr(t, err, nil)
	if resp.Bio != "Loves painting" || resp.FirstName != "Test" {
		t.Errorf("unexpected profile %+v", resp)
	}

	_, err = h.svc.User.UpdateUser(h.ctx, other, parent.ID, &dto.UpdateUserRequest{Bio: strPtr("x")})
	assertErr(t, err, apperrors.ErrPermissionDenied)

	_, err = h.svc.User.UpdateUser(h.ctx, parent, parent.ID, &dto.UpdateUserRequest{Role: strPtr("STAFF")})
	assertErr(t, err, apperrors.ErrPermissionDenied)

	_, err = h.svc.User.UpdateUser(h.ctx, nil, parent.ID, &dto.UpdateUserRequest{Bio: strPtr("x")})
	assertErr(t, err, apperrors.ErrNotAuthenticated)

	_, err = h.svc.User.UpdateUser(h.ctx, parent, parent.ID, &dto.UpdateUserRequest{Email: strPtr("other@example.com")})
	assertErr(t, err, apperrors.ErrEmailAlreadyExists)

	promoted, err := h.svc.User.UpdateUser(h.ctx, admin, parent.ID, &dto.UpdateUserRequest{Role: strPtr("STAFF")})
	assertErr(t, err, nil)
	if promoted.Role != "STAFF" {
		t.Errorf("role = %s", promoted.Role)
	}

	_, err = h.svc.User.UpdateUser(h.ctx, admin, 9999, &dto.UpdateUserRequest{Bio: strPtr("x")})
	assertErr(t, err, apperrors.ErrResourceNotFound)
}

func TestUserQueriesByRole(t *testing.T) {
	h := newHarness(t)
	parent := h.user(t, "parent@example.com", models.RoleParent)
	staff := h.user(t, "staff@example.com", models.RoleStaff)

	_, err := h.svc.User.GetUsers(h.ctx, nil)
	assertErr(t, err, apperrors.ErrNotAuthenticated)

	users, err := h.svc.User.GetUsers(h.ctx, parent)
	assertErr(t, err, nil)
	if users == nil || len(users) != 0 {
		t.Errorf("parents get an empty list, got %v", users)
	}
	one, err := h.svc.User.GetUser(h.ctx, parent, staff.ID)
	assertErr(t, err, nil)
	if one != nil {
		t.Error("parents get null for a single user")
	}

	users, _ = h.svc.User.GetUsers(h.ctx, staff)
	if len(users) != 2 {
		t.Errorf("staff see %d users", len(users))
	}
	one, err = h.svc.User.GetUser(h.ctx, staff, parent.ID)
	assertErr(t, err, nil)
	if one == nil || one.Email != "parent@example.com" {
		t.Errorf("GetUser = %+v", one)
	}

	me, err := h.svc.User.Me(h.ctx, parent)
	assertErr(t, err, nil)
	if me.ID != parent.ID {
		t.Errorf("Me = %+v", me)
	}
}

func TestUpdateUserRoleOfParentWithChildren(t *testing.T) {
	h := newHarness(t)
	parent := h.user(t, "parent@example.com", models.RoleParent)
	admin := h.user(t, "admin@example.com", models.RoleAdmin)

	_, err := h.svc.Child.CreateChild(h.ctx, admin, &dto.CreateChildRequest{
		ParentID: parent.ID, FirstName: "Mia", LastName: "Lee", DateOfBirth: "2023-01-15",
	})
	assertErr(t, err, nil)

	for _, role := range []string{"STAFF", "ADMIN"} {
		_, err = h.svc.User.UpdateUser(h.ctx, admin, parent.ID, &dto.UpdateUserRequest{Role: strPtr(role)})
		assertErr(t, err, apperrors.ErrInvalidState)
	}

	stored, err := h.repos.UserRepository.GetByID(h.ctx, parent.ID)
	assertErr(t, err, nil)
	if stored.Role != models.RoleParent {
		t.Errorf("parent role changed to %s", stored.Role)
	}

	resp, err := h.svc.User.UpdateUser(h.ctx, admin, parent.ID, &dto.UpdateUserRequest{Role: strPtr("PARENT"), Bio: strPtr("x")})
	assertErr(t, err, nil)
	if resp.Role != "PARENT" || resp.Bio != "x" {
		t.Errorf("profile = %+v", resp)
	}
}

func TestUpdateUserAnonymousBeforeRoleParsing(t *testing.T) {
	h := newHarness(t)
	parent := h.user(t, "parent@example.com", models.RoleParent)

	_, err := h.svc.User.UpdateUser(h.ctx, nil, parent.ID, &dto.UpdateUserRequest{Role: strPtr("GUARDIAN")})
	assertErr(t, err, apperrors.ErrNotAuthenticated)

	_, err = h.svc.User.UpdateUser(h.ctx, parent, parent.ID, &dto.UpdateUserRequest{Role: strPtr("GUARDIAN")})
	assertErr(t, err, apperrors.ErrValidationFailed)
}
