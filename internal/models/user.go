package models

import (
	"strings"
	"time"

	"github.com/baharkarakas/storefront-backend/internal/validate"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Role         Role      `json:"role"`
	Cart         Cart      `json:"cartData"`
	CartVersion  int64     `json:"-"`
	CreatedAt    time.Time `json:"date"`
}

// PublicUser is the shape returned by signup and login.
type PublicUser struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

func (u User) Public() PublicUser {
	return PublicUser{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

func (u User) IsAdmin() bool { return u.Role == RoleAdmin }

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// ValidateProfile checks the user-editable fields.
func ValidateProfile(name, email string) validate.Errs {
	return validate.Collect(
		validate.Length("name", name, 2, 50),
		validate.Email("email", email),
	)
}

const MinPasswordLength = 6

func ValidatePassword(field, password string) *validate.ErrField {
	return validate.Length(field, password, MinPasswordLength, 0)
}
