package models

import (
	"time"
)

// User defines the user model based on the 'users' table
type User struct {
	ID                int64     `json:"id" db:"id"`
	Email             string    `json:"email" db:"email"`
	Password          string    `json:"-" db:"password"` // bcrypt hash
	FirstName         string    `json:"firstName" db:"first_name"`
	LastName          string    `json:"lastName" db:"last_name"`
	Role              Role      `json:"role" db:"role"`
	PhoneNumber       string    `json:"phoneNumber" db:"phone_number"`
	Address           string    `json:"address" db:"address"`
	ProfilePictureURL *string   `json:"profilePictureUrl,omitempty" db:"profile_picture_url"`
	IsActive          bool      `json:"isActive" db:"is_active"`
	DateJoined        time.Time `json:"dateJoined" db:"date_joined"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`

	// Parent profile
	ChildrenInfo     string `json:"childrenInfo" db:"children_info"`
	EmergencyContact string `json:"emergencyContact" db:"emergency_contact"`

	// Staff profile
	Position string `json:"position" db:"position"`
	Bio      string `json:"bio" db:"bio"`
}

// IsParent reports whether the user holds the PARENT role
func (u *User) IsParent() bool { return u != nil && u.Role == RoleParent }

// IsStaff reports whether the user holds the STAFF role
func (u *User) IsStaff() bool { return u != nil && u.Role == RoleStaff }

// IsAdmin reports whether the user holds the ADMIN role
func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// FullName joins first and last name
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}

// UserUpdate carries the optional profile fields of an update. Nil fields are left untouched.
type UserUpdate struct {
	Email            *string
	FirstName        *string
	LastName         *string
	Role             *Role
	PhoneNumber      *string
	Address          *string
	ChildrenInfo     *string
	EmergencyContact *string
	Position         *string
	Bio              *string
}

// Apply copies the set fields onto u
func (p *UserUpdate) Apply(u *User) {
	if p.Email != nil {
		u.Email = *p.Email
	}
	if p.FirstName != nil {
		u.FirstName = *p.FirstName
	}
	if p.LastName != nil {
		u.LastName = *p.LastName
	}
	if p.Role != nil {
		u.Role = *p.Role
	}
	if p.PhoneNumber != nil {
		u.PhoneNumber = *p.PhoneNumber
	}
	if p.Address != nil {
		u.Address = *p.Address
	}
	if p.ChildrenInfo != nil {
		u.ChildrenInfo = *p.ChildrenInfo
	}
	if p.EmergencyContact != nil {
		u.EmergencyContact = *p.EmergencyContact
	}
	if p.Position != nil {
		u.Position = *p.Position
	}
	if p.Bio != nil {
		u.Bio = *p.Bio
	}
}

// Child defines the child model based on the 'children' table.
// The parent must hold the PARENT role.
type Child struct {
	ID           int64     `json:"id" db:"id"`
	ParentID     int64     `json:"parentId" db:"parent_id"`
	FirstName    string    `json:"firstName" db:"first_name"`
	LastName     string    `json:"lastName" db:"last_name"`
	DateOfBirth  time.Time `json:"dateOfBirth" db:"date_of_birth"`
	Allergies    string    `json:"allergies" db:"allergies"`
	MedicalNotes string    `json:"medicalNotes" db:"medical_notes"`
	Group        string    `json:"group" db:"group_label"`
	PhotoURL     *string   `json:"photoUrl,omitempty" db:"photo_url"`
	CreatedAt    time.Time `json:"createdAt" db:"created_at"`

	Parent *User `json:"parent,omitempty"` // Relation, no db tag
}

// AgeAt returns the child's age in whole years on the given day
func (c *Child) AgeAt(now time.Time) int {
	dob := c.DateOfBirth
	age := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		age--
	}
	if age < 0 {
		return 0
	}
	return age
}
