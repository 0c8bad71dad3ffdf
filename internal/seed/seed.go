package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/app/repositories"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
	"github.com/brightnest/daycare/internal/pkg/auth"
	"github.com/rs/zerolog"
)

// Admin is the bootstrap administrator account. A zero value creates none.
type Admin struct {
	Email    string
	Password string
}

// DefaultCategories are created on first start
var DefaultCategories = []models.Category{
	{Name: "General", Description: "News for every family"},
	{Name: "Health & Safety", Description: "Illness notices, allergies and safety updates"},
	{Name: "Activities", Description: "Crafts, outings and classroom projects"},
	{Name: "Meals", Description: "Menus and nutrition"},
	{Name: "Closures", Description: "Holidays and unplanned closures"},
}

// DefaultGroups are the subscription groups created on first start
var DefaultGroups = []models.SubscriptionGroup{
	{Name: "Infants", Description: "Families with children under 18 months"},
	{Name: "Toddlers", Description: "Families with children from 18 months to 3 years"},
	{Name: "Preschool", Description: "Families with children from 3 to 5 years"},
}

// CreateDefaultData creates default categories, subscription groups and the
// admin account if they don't exist. Every step runs; the errors are joined.
func CreateDefaultData(ctx context.Context, repos *repositories.Repositories, admin Admin, lgr zerolog.Logger) error {
	lgr.Info().Msg("Checking/Creating default data (categories/subscription groups)...")
	var finalErr error

	for _, c := range DefaultCategories {
		category := c
		err := repos.CategoryRepository.Create(ctx, &category)
		switch {
		case err == nil:
			lgr.Info().Str("category", category.Name).Msg("Default category created")
		case errors.Is(err, apperrors.ErrConflict):
		default:
			lgr.Error().Err(err).Str("category", category.Name).Msg("Error creating default category")
			finalErr = errors.Join(finalErr, err)
		}
	}

	for _, g := range DefaultGroups {
		group := g
		err := repos.SubscriptionRepository.CreateGroup(ctx, &group)
		switch {
		case err == nil:
			lgr.Info().Str("group", group.Name).Msg("Default subscription group created")
		case errors.Is(err, apperrors.ErrConflict):
		default:
			lgr.Error().Err(err).Str("group", group.Name).Msg("Error creating default subscription group")
			finalErr = errors.Join(finalErr, err)
		}
	}

	if err := createAdmin(ctx, repos.UserRepository, admin, lgr); err != nil {
		finalErr = errors.Join(finalErr, err)
	}

	lgr.Info().Msg("Default data check/creation finished.")
	return finalErr
}

func createAdmin(ctx context.Context, userRepo repositories.IUserRepository, admin Admin, lgr zerolog.Logger) error {
	email := strings.ToLower(strings.TrimSpace(admin.Email))
	if email == "" {
		return nil
	}

	exists, err := userRepo.EmailExists(ctx, email)
	if err != nil {
		lgr.Error().Err(err).Msg("Error checking if admin user exists")
		return err
	}
	if exists {
		lgr.Info().Msg("Admin user already exists, skipping creation")
		return nil
	}

	hashedPassword, err := auth.HashPassword(admin.Password)
	if err != nil {
		lgr.Error().Err(err).Msg("Error hashing admin password")
		return err
	}

	now := time.Now().UTC()
	user := &models.User{
		Email:      email,
		Password:   hashedPassword,
		FirstName:  "System",
		LastName:   "Administrator",
		Role:       models.RoleAdmin,
		IsActive:   true,
		DateJoined: now,
		UpdatedAt:  now,
	}
	if err := userRepo.Create(ctx, user); err != nil {
		lgr.Error().Err(err).Msg("Error creating admin user")
		return err
	}

	lgr.Info().Int64("adminID", user.ID).Msg("Default admin user created successfully")
	return nil
}
