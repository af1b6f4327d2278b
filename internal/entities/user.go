package entities

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

// Role enumerates user roles.
type Role string

const (
	// RoleAdmin may manage users, teams and every task.
	RoleAdmin Role = "admin"
	// RoleMember is scoped to their teams and own tasks.
	RoleMember Role = "member"
)

// Valid reports whether r is a known role.
func (r Role) Valid() bool {
	return r == RoleAdmin || r == RoleMember
}

const minPasswordLen = 6

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// User is a domain representation of an account.
type User struct {
	ID           string
	Name         string
	Email        string
	PasswordHash string
	Role         Role
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Actor is the authenticated user performing an operation.
type Actor struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the actor holds the admin role.
func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

// Actor returns the acting identity of u.
func (u User) Actor() Actor {
	return Actor{ID: u.ID, Role: u.Role}
}

// NewUser carries registration input before hashing.
type NewUser struct {
	Name     string
	Email    string
	Password string
	Role     Role
}

// Normalize trims the name and lower-cases the email.
func (n *NewUser) Normalize() {
	n.Name = strings.TrimSpace(n.Name)
	n.Email = NormalizeEmail(n.Email)
	if n.Role == "" {
		n.Role = RoleMember
	}
}

// Validate checks required fields, email shape, password length and role.
func (n NewUser) Validate() error {
	if n.Name == "" || n.Email == "" || n.Password == "" {
		return fmt.Errorf("%w: name, email and password are required", ErrInvalidArgument)
	}
	if err := ValidateEmail(n.Email); err != nil {
		return err
	}
	if err := ValidatePassword(n.Password); err != nil {
		return err
	}
	if !n.Role.Valid() {
		return fmt.Errorf("%w: role must be admin or member", ErrInvalidArgument)
	}
	return nil
}

// UserPatch is a partial profile update. Nil fields are left untouched.
type UserPatch struct {
	Name         *string
	Email        *string
	Password     *string
	PasswordHash *string
	Role         *Role
}

// Empty reports whether the patch carries no field.
func (p UserPatch) Empty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil && p.PasswordHash == nil && p.Role == nil
}

// Normalize trims strings and lower-cases the email.
func (p *UserPatch) Normalize() {
	if p.Name != nil {
		name := strings.TrimSpace(*p.Name)
		p.Name = &name
	}
	if p.Email != nil {
		email := NormalizeEmail(*p.Email)
		p.Email = &email
	}
}

// Validate checks every present field.
func (p UserPatch) Validate() error {
	if p.Name != nil && *p.Name == "" {
		return fmt.Errorf("%w: name must not be empty", ErrInvalidArgument)
	}
	if p.Email != nil {
		if err := ValidateEmail(*p.Email); err != nil {
			return err
		}
	}
	if p.Password != nil {
		if err := ValidatePassword(*p.Password); err != nil {
			return err
		}
	}
	if p.Role != nil && !p.Role.Valid() {
		return fmt.Errorf("%w: role must be admin or member", ErrInvalidArgument)
	}
	return nil
}

// UserFilter narrows user listings.
type UserFilter struct {
	Role *Role
	Page
}

// NormalizeEmail trims and lower-cases an address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail checks the address shape.
func ValidateEmail(email string) error {
	if !emailPattern.MatchString(email) {
		return fmt.Errorf("%w: invalid email format", ErrInvalidArgument)
	}
	return nil
}

// ValidatePassword enforces the minimum password length.
func ValidatePassword(password string) error {
	if len(password) < minPasswordLen {
		return fmt.Errorf("%w: password must be at least %d characters", ErrInvalidArgument, minPasswordLen)
	}
	return nil
}

// UserDetails is a user with their teams and assigned tasks summary.
type UserDetails struct {
	User        User
	Teams       []Team
	TasksCount  int
	RecentTasks []Task
}

// UserList is a page of users with the unpaginated total.
type UserList struct {
	Users []User
	Total int
}
