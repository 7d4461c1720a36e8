package domain

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"
)

// MinPasswordLength mirrors the hosted auth provider's policy.
const MinPasswordLength = 6

// User is the identity returned by the hosted auth provider.
type User struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}

// Session is a token bundle issued by the auth provider.
type Session struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	TokenType    string    `json:"token_type"`
	ExpiresIn    int       `json:"expires_in"`
	ExpiresAt    time.Time `json:"expires_at"`
	User         User      `json:"user"`
}

// Profile is the local row synced from the auth user on every sign-in.
type Profile struct {
	ID        string    `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	FullName  *string   `json:"full_name" db:"full_name"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

func NewProfile(u User) (*Profile, error) {
	email := NormalizeEmail(u.Email)
	if !isValidEmail(email) {
		return nil, ErrInvalidEmail
	}

	now := time.Now().UTC()
	created := u.CreatedAt.UTC()
	if u.CreatedAt.IsZero() {
		created = now
	}
	return &Profile{
		ID:        u.ID,
		Email:     email,
		CreatedAt: created,
		UpdatedAt: now,
	}, nil
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Validate normalizes the email in place and checks the password policy.
func (c *Credentials) Validate() error {
	c.Email = NormalizeEmail(c.Email)
	if !isValidEmail(c.Email) {
		return ErrInvalidEmail
	}
	if utf8.RuneCountInString(c.Password) < MinPasswordLength {
		return ErrPasswordTooShort
	}
	return nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func isValidEmail(email string) bool {
	if email == "" {
		return false
	}
	_, err := mail.ParseAddress(email)
	return err == nil
}
