package dto

import (
	"time"

	"github.com/brightnest/daycare/internal/app/models"
)

// CreateUserRequest represents a registration request
type CreateUserRequest struct {
	Email            string `json:"email" binding:"required,email"`
	Password         string `json:"password" binding:"required,min=8"`
	FirstName        string `json:"firstName" binding:"required,max=150"`
	LastName         string `json:"lastName" binding:"max=150"`
	Role             string `json:"role" binding:"omitempty,oneof=PARENT STAFF ADMIN"`
	PhoneNumber      string `json:"phoneNumber" binding:"max=20"`
	Address          string `json:"address"`
	ChildrenInfo     string `json:"childrenInfo"`
	EmergencyContact string `json:"emergencyContact" binding:"max=255"`
	Position         string `json:"position" binding:"max=100"`
	Bio              string `json:"bio"`
}

// UpdateUserRequest represents a partial profile update
type UpdateUserRequest struct {
	Email            *string `json:"email" binding:"omitempty,email"`
	FirstName        *string `json:"firstName" binding:"omitempty,min=1,max=150"`
	LastName         *string `json:"lastName" binding:"omitempty,max=150"`
	Role             *string `json:"role" binding:"omitempty,oneof=PARENT STAFF ADMIN"`
	PhoneNumber      *string `json:"phoneNumber" binding:"omitempty,max=20"`
	Address          *string `json:"address"`
	ChildrenInfo     *string `json:"childrenInfo"`
	EmergencyContact *string `json:"emergencyContact" binding:"omitempty,max=255"`
	Position         *string `json:"position" binding:"omitempty,max=100"`
	Bio              *string `json:"bio"`
}

// ToUpdate converts the request into the model patch
func (r *UpdateUserRequest) ToUpdate() models.UserUpdate {
	update := models.UserUpdate{
		Email:            r.Email,
		FirstName:        r.FirstName,
		LastName:         r.LastName,
		PhoneNumber:      r.PhoneNumber,
		Address:          r.Address,
		ChildrenInfo:     r.ChildrenInfo,
		EmergencyContact: r.EmergencyContact,
		Position:         r.Position,
		Bio:              r.Bio,
	}
	if r.Role != nil {
		role := models.Role(*r.Role)
		update.Role = &role
	}
	return update
}

// UserResponse represents user information returned to clients
type UserResponse struct {
	ID                int64     `json:"id"`
	Email             string    `json:"email"`
	FirstName         string    `json:"firstName"`
	LastName          string    `json:"lastName"`
	FullName          string    `json:"fullName"`
	Role              string    `json:"role"`
	PhoneNumber       string    `json:"phoneNumber"`
	Address           string    `json:"address"`
	ProfilePictureURL *string   `json:"profilePictureUrl,omitempty"`
	ChildrenInfo      string    `json:"childrenInfo,omitempty"`
	EmergencyContact  string    `json:"emergencyContact,omitempty"`
	Position          string    `json:"position,omitempty"`
	Bio               string    `json:"bio,omitempty"`
	IsActive          bool      `json:"isActive"`
	DateJoined        time.Time `json:"dateJoined"`
}

// NewUserResponse maps a user model, never exposing the password hash
func NewUserResponse(u *models.User) *UserResponse {
	if u == nil {
		return nil
	}
	return &UserResponse{
		ID:                u.ID,
		Email:             u.Email,
		FirstName:         u.FirstName,
		LastName:          u.LastName,
		FullName:          u.FullName(),
		Role:              string(u.Role),
		PhoneNumber:       u.PhoneNumber,
		Address:           u.Address,
		ProfilePictureURL: u.ProfilePictureURL,
		ChildrenInfo:      u.ChildrenInfo,
		EmergencyContact:  u.EmergencyContact,
		Position:          u.Position,
		Bio:               u.Bio,
		IsActive:          u.IsActive,
		DateJoined:        u.DateJoined,
	}
}

// NewUserListResponse maps a list of users
func NewUserListResponse(users []*models.User) []*UserResponse {
	out := make([]*UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

// CreateChildRequest represents a child record to add under a parent
type CreateChildRequest struct {
	ParentID     int64  `json:"parentId" binding:"required,gt=0"`
	FirstName    string `json:"firstName" binding:"required,max=150"`
	LastName     string `json:"lastName" binding:"required,max=150"`
	DateOfBirth  string `json:"dateOfBirth" binding:"required" example:"2021-05-04"`
	Allergies    string `json:"allergies"`
	MedicalNotes string `json:"medicalNotes"`
	Group        string `json:"group" binding:"max=100"`
}

// ChildResponse represents a child record with its derived age
type ChildResponse struct {
	ID           int64     `json:"id"`
	ParentID     int64     `json:"parentId"`
	FirstName    string    `json:"firstName"`
	LastName     string    `json:"lastName"`
	DateOfBirth  string    `json:"dateOfBirth"`
	Age          int       `json:"age"`
	Allergies    string    `json:"allergies"`
	MedicalNotes string    `json:"medicalNotes"`
	Group        string    `json:"group"`
	PhotoURL     *string   `json:"photoUrl,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// DateLayout is the wire format of calendar dates
const DateLayout = "2006-01-02"

// NewChildResponse maps a child model; age is computed against now
func NewChildResponse(c *models.Child, now time.Time) *ChildResponse {
	if c == nil {
		return nil
	}
	return &ChildResponse{
		ID:           c.ID,
		ParentID:     c.ParentID,
		FirstName:    c.FirstName,
		LastName:     c.LastName,
		DateOfBirth:  c.DateOfBirth.Format(DateLayout),
		Age:          c.AgeAt(now),
		Allergies:    c.Allergies,
		MedicalNotes: c.MedicalNotes,
		Group:        c.Group,
		PhotoURL:     c.PhotoURL,
		CreatedAt:    c.CreatedAt,
	}
}
