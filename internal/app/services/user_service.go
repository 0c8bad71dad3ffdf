package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brightnest/daycare/internal/app/auth"
	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/models/dto"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	jwtauth "github.com/brightnest/daycare/internal/pkg/auth"
	"github.com/brightnest/daycare/internal/pkg/validation"
	"github.com/rs/zerolog"
)

const msgEmailTaken = "A user with this email already exists"

// UserService defines the interface for user operations
type UserService interface {
	CreateUser(ctx context.Context, actor *models.User, req *dto.CreateUserRequest) (*dto.UserResponse, error)
	UpdateUser(ctx context.Context, actor *models.User, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	GetUsers(ctx context.Context, actor *models.User) ([]*dto.UserResponse, error)
	GetUser(ctx context.Context, actor *models.User, id int64) (*dto.UserResponse, error)
	Me(ctx context.Context, actor *models.User) (*dto.UserResponse, error)
}

// userServiceImpl implements UserService
type userServiceImpl struct {
	userRepo   repositories.IUserRepository
	childRepo  repositories.IChildRepository
	allowStaff bool
	now        func() time.Time
	logger     zerolog.Logger
}

// NewUserService creates a new UserService
func NewUserService(
	userRepo repositories.IUserRepository,
	childRepo repositories.IChildRepository,
	allowStaffSelfRegistration bool,
	now func() time.Time,
	logger zerolog.Logger,
) UserService {
	return &userServiceImpl{
		userRepo:   userRepo,
		childRepo:  childRepo,
		allowStaff: allowStaffSelfRegistration,
		now:        now,
		logger:     logger,
	}
}

// CreateUser registers an account. Anonymous callers may create PARENT and,
// when enabled, STAFF accounts; an ADMIN may create any role.
func (s *userServiceImpl) CreateUser(ctx context.Context, actor *models.User, req *dto.CreateUserRequest) (*dto.UserResponse, error) {
	role := models.RoleParent
	if req.Role != "" {
		parsed, err := models.ParseRole(req.Role)
		if err != nil {
			return nil, apperrors.NewValidationError("role", "Role must be one of PARENT, STAFF, ADMIN")
		}
		role = parsed
	}

	if err := auth.ValidateRegistration(actor, role, s.allowStaff); err != nil {
		return nil, err
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if err := validation.First(
		validation.Email(email),
		validation.Password(req.Password),
		validation.Name("firstName", req.FirstName, true),
		validation.Name("lastName", req.LastName, false),
		validation.Phone(req.PhoneNumber),
	); err != nil {
		return nil, err
	}

	exists, err := s.userRepo.EmailExists(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("error checking if email exists: %w", err)
	}
	if exists {
		return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, msgEmailTaken)
	}

	hash, err := jwtauth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("error hashing password: %w", err)
	}

	now := s.now()
	user := &models.User{
		Email:            email,
		Password:         hash,
		FirstName:        strings.TrimSpace(req.FirstName),
		LastName:         strings.TrimSpace(req.LastName),
		Role:             role,
		PhoneNumber:      req.PhoneNumber,
		Address:          req.Address,
		ChildrenInfo:     req.ChildrenInfo,
		EmergencyContact: req.EmergencyContact,
		Position:         req.Position,
		Bio:              req.Bio,
		IsActive:         true,
		DateJoined:       now,
		UpdatedAt:        now,
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, msgEmailTaken)
		}
		return nil, fmt.Errorf("user creation error: %w", err)
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Str("role", string(user.Role)).
		Msg("User created")
	return dto.NewUserResponse(user), nil
}

// UpdateUser applies a partial profile update
func (s *userServiceImpl) UpdateUser(ctx context.Context, actor *models.User, id int64, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if err := auth.RequireAuthenticated(actor); err != nil {
		return nil, err
	}

	update := req.ToUpdate()
	if update.Role != nil {
		role, err := models.ParseRole(string(*update.Role))
		if err != nil {
			return nil, apperrors.NewValidationError("role", "Role must be one of PARENT, STAFF, ADMIN")
		}
		update.Role = &role
	}

	if err := auth.ValidateProfileUpdate(actor, id, update.Role); err != nil {
		return nil, err
	}

	if update.Email != nil {
		email := strings.ToLower(strings.TrimSpace(*update.Email))
		if err := validation.Email(email); err != nil {
			return nil, err
		}
		update.Email = &email
	}
	var checks []error
	if update.FirstName != nil {
		checks = append(checks, validation.Name("firstName", *update.FirstName, true))
	}
	if update.LastName != nil {
		checks = append(checks, validation.Name("lastName", *update.LastName, false))
	}
	if update.PhoneNumber != nil {
		checks = append(checks, validation.Phone(*update.PhoneNumber))
	}
	if err := validation.First(checks...); err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound, "User not found")
	}

	if user.Role == models.RoleParent && update.Role != nil && *update.Role != models.RoleParent {
		children, err := s.childRepo.List(ctx, &id)
		if err != nil {
			return nil, fmt.Errorf("failed to list children: %w", err)
		}
		if len(children) > 0 {
			return nil, apperrors.NewInvalidStateError("Children can only belong to parent accounts")
		}
	}

	update.Apply(user)
	user.UpdatedAt = s.now()

	if err := s.userRepo.Update(ctx, user); err != nil {
		if errors.Is(err, apperrors.ErrEmailAlreadyExists) {
			return nil, apperrors.NewCustomError(apperrors.ErrEmailAlreadyExists, msgEmailTaken)
		}
		return nil, notFound(err, apperrors.ErrUserNotFound, "User not found")
	}

	s.logger.Info().
		Int64("userID", user.ID).
		Int64("actorID", actor.ID).
		Msg("User profile updated")
	return dto.NewUserResponse(user), nil
}

// GetUsers lists all users for STAFF and ADMIN; other roles get an empty list
func (s *userServiceImpl) GetUsers(ctx context.Context, actor *models.User) ([]*dto.UserResponse, error) {
	allowed, err := auth.CanViewUsers(actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return []*dto.UserResponse{}, nil
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	return dto.NewUserListResponse(users), nil
}

// GetUser returns one user for STAFF and ADMIN; other roles get nil
func (s *userServiceImpl) GetUser(ctx context.Context, actor *models.User, id int64) (*dto.UserResponse, error) {
	allowed, err := auth.CanViewUsers(actor)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, nil
	}

	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound, "User not found")
	}
	return dto.NewUserResponse(user), nil
}

// Me returns the caller's own profile
func (s *userServiceImpl) Me(ctx context.Context, actor *models.User) (*dto.UserResponse, error) {
	if err := auth.RequireAuthenticated(actor); err != nil {
		return nil, err
	}
	user, err := s.userRepo.GetByID(ctx, actor.ID)
	if err != nil {
		return nil, notFound(err, apperrors.ErrUserNotFound, "User not found")
	}
	return dto.NewUserResponse(user), nil
}
