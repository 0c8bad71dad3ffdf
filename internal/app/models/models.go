package models

import (
	"fmt"
	"strings"
)

// Role defines the user role. Every user has exactly one.
type Role string

const (
	RoleParent Role = "PARENT"
	RoleStaff  Role = "STAFF"
	RoleAdmin  Role = "ADMIN"
)

// ParseRole converts a string to a Role, accepting any letter case
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToUpper(strings.TrimSpace(s)))
	if !role.Valid() {
		return "", fmt.Errorf("unknown role %q", s)
	}
	return role, nil
}

// Valid reports whether r is one of the known roles
func (r Role) Valid() bool {
	switch r {
	case RoleParent, RoleStaff, RoleAdmin:
		return true
	default:
		return false
	}
}

// CanAuthorContent reports whether the role may create and publish
// newsletters, announcements and events.
func (r Role) CanAuthorContent() bool {
	switch r {
	case RoleStaff, RoleAdmin:
		return true
	case RoleParent:
		return false
	default:
		return false
	}
}

// Elevated reports whether r grants more than parent rights
func (r Role) Elevated() bool {
	return r == RoleStaff || r == RoleAdmin
}

// NewsletterStatus is the publication state of a newsletter
type NewsletterStatus string

const (
	StatusDraft     NewsletterStatus = "DRAFT"
	StatusPublished NewsletterStatus = "PUBLISHED"
	StatusArchived  NewsletterStatus = "ARCHIVED"
)

// ParseNewsletterStatus converts a string to a NewsletterStatus
func ParseNewsletterStatus(s string) (NewsletterStatus, error) {
	status := NewsletterStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch status {
	case StatusDraft, StatusPublished, StatusArchived:
		return status, nil
	default:
		return "", fmt.Errorf("unknown newsletter status %q", s)
	}
}

// Priority is the urgency of an announcement
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

// ParsePriority converts a string to a Priority
func ParsePriority(s string) (Priority, error) {
	priority := Priority(strings.ToUpper(strings.TrimSpace(s)))
	switch priority {
	case PriorityLow, PriorityMedium, PriorityHigh, PriorityUrgent:
		return priority, nil
	default:
		return "", fmt.Errorf("unknown priority %q", s)
	}
}
