package domain

import (
	"net/mail"
	"strings"
	"time"
)

// MaxPasswordLength is bcrypt's input limit.
const MaxPasswordLength = 72

// User represents a registered user.
type User struct {
	ID             int64      `json:"id"`
	Name           string     `json:"name"`
	Email          string     `json:"email"`
	Password       string     `json:"-"` // Plaintext, only set while creating or updating
	HashedPassword string     `json:"-"`
	Role           RoleName   `json:"role,omitempty"`
	CreatedBy      *int64     `json:"created_by,omitempty"`
	UpdatedBy      *int64     `json:"updated_by,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      *time.Time `json:"updated_at,omitempty"`
}

// NewUser builds a user ready for insertion. The plaintext password still has
// to be hashed by the caller.
func NewUser(name, email, password string, createdBy *int64) (*User, error) {
	user := &User{
		Name:      strings.TrimSpace(name),
		Email:     NormalizeEmail(email),
		Password:  password,
		CreatedBy: createdBy,
		CreatedAt: time.Now().UTC(),
	}

	if err := user.Validate(); err != nil {
		return nil, err
	}
	return user, nil
}

// Validate checks the fields that must hold for every stored user.
func (u *User) Validate() error {
	if u.Name == "" {
		return NewValidationError("name", "is required", nil)
	}
	if err := ValidateEmail(u.Email); err != nil {
		return err
	}
	if u.Password != "" {
		return ValidatePassword(u.Password)
	}
	if u.HashedPassword == "" {
		return NewValidationError("password", "is required", nil)
	}
	return nil
}

// NormalizeEmail lower-cases and trims an address so uniqueness checks are
// case-insensitive.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateEmail rejects empty or malformed addresses.
func ValidateEmail(email string) error {
	if email == "" {
		return NewValidationError("email", "is required", nil)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email || !strings.Contains(email[strings.LastIndex(email, "@")+1:], ".") {
		return NewValidationError("email", "has invalid format", nil)
	}
	return nil
}

// ValidatePassword enforces the bcrypt length bounds.
func ValidatePassword(password string) error {
	if password == "" {
		return NewValidationError("password", "is required", nil)
	}
	if len(password) > MaxPasswordLength {
		return NewValidationError("password", "must be at most 72 bytes", nil)
	}
	return nil
}

// UserPatch carries the fields of a partial user update. Nil fields are left
// unchanged.
type UserPatch struct {
	Name     *string
	Email    *string
	Password *string
}

// IsEmpty reports whether the patch changes nothing.
func (p UserPatch) IsEmpty() bool {
	return p.Name == nil && p.Email == nil && p.Password == nil
}
