// Package auth holds the authorization rules evaluated before every mutation.
// The acting user is passed explicitly; nil means an anonymous caller.
package auth

import (
	"context"
	"errors"
	"fmt"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/brightnest/daycare/internal/pkg/logger"
)

// Messages sent to clients verbatim
const (
	msgLoginRequired     = "You must be logged in to perform this action"
	msgStaffOnly         = "Only staff members can perform this action"
	msgAdminOnly         = "Only administrators can perform this action"
	msgOwnProfileOnly    = "You can only update your own profile"
	msgRoleChange        = "Only administrators can assign staff or admin roles"
	msgAdminRegistration = "Admin accounts cannot be created through registration"
	msgStaffRegistration = "Staff accounts cannot be created through registration"
	msgChildOwnership    = "You can only add children to your own account"
	msgParentNotFound    = "Parent user not found"
	msgParentRole        = "Children can only belong to parent accounts"
)

// AuthorizationService evaluates permission rules
type AuthorizationService struct {
	userRepo repositories.IUserRepository
}

// NewAuthorizationService creates a new AuthorizationService
func NewAuthorizationService(userRepo repositories.IUserRepository) *AuthorizationService {
	return &AuthorizationService{userRepo: userRepo}
}

// RequireAuthenticated fails for anonymous callers
func RequireAuthenticated(actor *models.User) error {
	if actor == nil {
		return apperrors.NewUnauthenticatedError(msgLoginRequired)
	}
	return nil
}

// ValidateContentAuthor allows STAFF and ADMIN to create and publish content
func ValidateContentAuthor(actor *models.User) error {
	if err := RequireAuthenticated(actor); err != nil {
		return err
	}
	switch actor.Role {
	case models.RoleStaff, models.RoleAdmin:
		return nil
	case models.RoleParent:
		return apperrors.NewForbiddenError(msgStaffOnly)
	default:
		return apperrors.NewForbiddenError(msgStaffOnly)
	}
}

// ValidateAdmin allows only ADMIN
func ValidateAdmin(actor *models.User) error {
	if err := RequireAuthenticated(actor); err != nil {
		return err
	}
	switch actor.Role {
	case models.RoleAdmin:
		return nil
	case models.RoleParent, models.RoleStaff:
		return apperrors.NewForbiddenError(msgAdminOnly)
	default:
		return apperrors.NewForbiddenError(msgAdminOnly)
	}
}

// ValidateProfileUpdate checks that actor may update targetID and, when
// newRole is set, assign that role.
func ValidateProfileUpdate(actor *models.User, targetID int64, newRole *models.Role) error {
	if err := RequireAuthenticated(actor); err != nil {
		return err
	}
	if actor.ID != targetID && !actor.IsAdmin() {
		return apperrors.NewForbiddenError(msgOwnProfileOnly)
	}
	if newRole == nil {
		return nil
	}
	switch *newRole {
	case models.RoleStaff, models.RoleAdmin:
		if !actor.IsAdmin() {
			return apperrors.NewForbiddenError(msgRoleChange)
		}
	case models.RoleParent:
	}
	return nil
}

// ValidateRegistration checks the role a new account may be created with.
// actor is the optional authenticated caller; an ADMIN may create any role.
func ValidateRegistration(actor *models.User, role models.Role, allowStaff bool) error {
	if actor.IsAdmin() {
		return nil
	}
	switch role {
	case models.RoleParent:
		return nil
	case models.RoleStaff:
		if allowStaff {
			return nil
		}
		return apperrors.NewForbiddenError(msgStaffRegistration)
	case models.RoleAdmin:
		return apperrors.NewForbiddenError(msgAdminRegistration)
	default:
		return apperrors.NewValidationError("role", fmt.Sprintf("Unknown role %q", role))
	}
}

// ValidateChildCreation checks that actor may add a child under parentID and
// returns the parent. Rules apply in order: identity, ownership, parent
// existence, parent role.
func (s *AuthorizationService) ValidateChildCreation(ctx context.Context, actor *models.User, parentID int64) (*models.User, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	switch actor.Role {
	case models.RoleStaff, models.RoleAdmin:
	case models.RoleParent:
		if actor.ID != parentID {
			return nil, apperrors.NewForbiddenError(msgChildOwnership)
		}
	default:
		return nil, apperrors.NewForbiddenError(msgChildOwnership)
	}

	parent, err := s.userRepo.GetByID(ctx, parentID)
	if err != nil {
		if errors.Is(err, apperrors.ErrUserNotFound) {
			return nil, apperrors.NewResourceNotFoundError(msgParentNotFound)
		}
		logger.Error().Err(err).Int64("parentID", parentID).Msg("Error getting parent in ValidateChildCreation")
		return nil, fmt.Errorf("failed to get parent: %w", err)
	}

	if !parent.IsParent() {
		return nil, apperrors.NewInvalidStateError(msgParentRole)
	}
	return parent, nil
}

// CanViewUsers reports whether actor may list user profiles. Anonymous
// callers get an error; other non-staff callers just see nothing.
func CanViewUsers(actor *models.User) (bool, error) {
	if err := RequireAuthenticated(actor); err != nil {
		return false, err
	}
	switch actor.Role {
	case models.RoleStaff, models.RoleAdmin:
		return true, nil
	case models.RoleParent:
		return false, nil
	default:
		return false, nil
	}
}

// CanViewChild reports whether actor may see child
func CanViewChild(actor *models.User, child *models.Child) bool {
	if actor == nil || child == nil {
		return false
	}
	switch actor.Role {
	case models.RoleStaff, models.RoleAdmin:
		return true
	case models.RoleParent:
		return child.ParentID == actor.ID
	default:
		return false
	}
}

// CanViewDrafts reports whether actor may see DRAFT newsletters
func CanViewDrafts(actor *models.User) bool {
	return actor != nil && actor.Role.CanAuthorContent()
}
