package memory

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/brightnest/daycare/internal/app/models"
	"github.com/brightnest/daycare/internal/pkg/apperrors"
)

// UserRepository is the in-memory user store
type UserRepository struct{ s *Store }

func (r *UserRepository) emailTaken(email string, exceptID int64) bool {
	for id, u := range r.s.users {
		if id != exceptID && strings.EqualFold(u.Email, email) {
			return true
		}
	}
	return false
}

// Create inserts a user and fills its generated ID
func (r *UserRepository) Create(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if r.emailTaken(user.Email, 0) {
		return apperrors.ErrEmailAlreadyExists
	}
	user.ID = r.s.next("users")
	user.Email = strings.ToLower(user.Email)
	r.s.users[user.ID] = *user
	return nil
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(_ context.Context, id int64) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, apperrors.ErrUserNotFound
	}
	return &u, nil
}

// GetByEmail retrieves a user by email, case-insensitively
func (r *UserRepository) GetByEmail(_ context.Context, email string) (*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			u := u
			return &u, nil
		}
	}
	return nil, apperrors.ErrUserNotFound
}

// EmailExists checks if an email already exists
func (r *UserRepository) EmailExists(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	return r.emailTaken(email, 0), nil
}

// List returns all users ordered by join date
func (r *UserRepository) List(_ context.Context) ([]*models.User, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	users := make([]*models.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		u := u
		users = append(users, &u)
	}
	sort.Slice(users, func(i, j int) bool {
		if !users[i].DateJoined.Equal(users[j].DateJoined) {
			return users[i].DateJoined.Before(users[j].DateJoined)
		}
		return users[i].ID < users[j].ID
	})
	return users, nil
}

// Update replaces the stored user
func (r *UserRepository) Update(_ context.Context, user *models.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return apperrors.ErrUserNotFound
	}
	if r.emailTaken(user.Email, user.ID) {
		return apperrors.ErrEmailAlreadyExists
	}
	// the hash only changes through a dedicated flow
	user.Password = stored.Password
	user.Email = strings.ToLower(user.Email)
	r.s.users[user.ID] = *user
	return nil
}

// ChildRepository is the in-memory children store
type ChildRepository struct{ s *Store }

// Create inserts a child record. The parent must exist.
func (r *ChildRepository) Create(_ context.Context, child *models.Child) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[child.ParentID]; !ok {
		return apperrors.ErrUserNotFound
	}
	child.ID = r.s.next("children")
	stored := *child
	stored.Parent = nil
	r.s.children[child.ID] = stored
	return nil
}

// GetByID retrieves a child by ID
func (r *ChildRepository) GetByID(_ context.Context, id int64) (*models.Child, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.children[id]
	if !ok {
		return nil, apperrors.ErrChildNotFound
	}
	return &c, nil
}

// List returns children, restricted to one parent when parentID is set
func (r *ChildRepository) List(_ context.Context, parentID *int64) ([]*models.Child, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	children := make([]*models.Child, 0)
	for _, c := range r.s.children {
		if parentID != nil && c.ParentID != *parentID {
			continue
		}
		c := c
		children = append(children, &c)
	}
	sort.Slice(children, func(i, j int) bool {
		a, b := children[i], children[j]
		if a.LastName != b.LastName {
			return a.LastName < b.LastName
		}
		if a.FirstName != b.FirstName {
			return a.FirstName < b.FirstName
		}
		return a.ID < b.ID
	})
	return children, nil
}

// TokenRepository is the in-memory refresh token store
type TokenRepository struct{ s *Store }

// CreateToken stores a refresh token
func (r *TokenRepository) CreateToken(_ context.Context, token string, userID int64, expiryDate time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.tokens[token]; exists {
		return apperrors.ErrTokenInvalid
	}
	r.s.tokens[token] = models.RefreshToken{
		Token:      token,
		UserID:     userID,
		ExpiryDate: expiryDate,
		CreatedAt:  time.Now(),
	}
	return nil
}

// GetToken retrieves a refresh token
func (r *TokenRepository) GetToken(_ context.Context, token string) (*models.RefreshToken, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.tokens[token]
	if !ok {
		return nil, apperrors.ErrTokenNotFound
	}
	return &t, nil
}

// RevokeToken revokes a token
func (r *TokenRepository) RevokeToken(_ context.Context, token string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.tokens[token]
	if !ok {
		return apperrors.ErrTokenNotFound
	}
	t.IsRevoked = true
	r.s.tokens[token] = t
	return nil
}

// RevokeAllUserTokens revokes all tokens of a user
func (r *TokenRepository) RevokeAllUserTokens(_ context.Context, userID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for key, t := range r.s.tokens {
		if t.UserID == userID {
			t.IsRevoked = true
			r.s.tokens[key] = t
		}
	}
	return nil
}

// CleanupExpiredTokens drops expired tokens and revoked tokens older than thirty days
func (r *TokenRepository) CleanupExpiredTokens(_ context.Context, now time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var deleted int64
	cutoff := now.Add(-30 * 24 * time.Hour)
	for key, t := range r.s.tokens {
		if t.ExpiryDate.Before(now) || (t.IsRevoked && t.CreatedAt.Before(cutoff)) {
			delete(r.s.tokens, key)
			deleted++
		}
	}
	return deleted, nil
}
