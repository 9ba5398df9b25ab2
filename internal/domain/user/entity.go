// Package user defines the user domain entity
package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// User represents a user in the system
type User struct {
	id           uuid.UUID
	email        string
	name         string
	passwordHash string
	isActive     bool
	profile      *Profile
	createdAt    time.Time
	updatedAt    time.Time
	lastLoginAt  *time.Time
}

// Profile contains additional fitness profile information
type Profile struct {
	Age          int
	HeightCM     float64
	WeightKG     float64
	FitnessLevel FitnessLevel
	Goals        []string
	Injuries     []string
}

// FitnessLevel represents a user's training experience
type FitnessLevel string

const (
	FitnessLevelBeginner     FitnessLevel = "beginner"
	FitnessLevelIntermediate FitnessLevel = "intermediate"
	FitnessLevelAdvanced     FitnessLevel = "advanced"
)

// NewUser creates a new user with validation
func NewUser(email, name, password string) (*User, error) {
	if err := validateEmail(email); err != nil {
		return nil, err
	}

	if err := validateName(name); err != nil {
		return nil, err
	}

	if err := validatePassword(password); err != nil {
		return nil, err
	}

	// Hash password
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.New("failed to hash password")
	}

	now := time.Now()
	return &User{
		id:           uuid.New(),
		email:        strings.ToLower(email),
		name:         name,
		passwordHash: string(hashedPassword),
		isActive:     true,
		createdAt:    now,
		updatedAt:    now,
	}, nil
}

// Reconstruct rebuilds a user entity from persisted state. It performs no
// validation; the stored record is assumed to have been validated on write.
func Reconstruct(
	id uuid.UUID,
	email, name, passwordHash string,
	isActive bool,
	profile *Profile,
	createdAt, updatedAt time.Time,
	lastLoginAt *time.Time,
) *User {
	return &User{
		id:           id,
		email:        email,
		name:         name,
		passwordHash: passwordHash,
		isActive:     isActive,
		profile:      profile,
		createdAt:    createdAt,
		updatedAt:    updatedAt,
		lastLoginAt:  lastLoginAt,
	}
}

// ID returns the user's ID
func (u *User) ID() uuid.UUID {
	return u.id
}

// Email returns the user's email
func (u *User) Email() string {
	return u.email
}

// Name returns the user's name
func (u *User) Name() string {
	return u.name
}

// PasswordHash returns the stored bcrypt hash
func (u *User) PasswordHash() string {
	return u.passwordHash
}

// IsActive returns whether the user is active
func (u *User) IsActive() bool {
	return u.isActive
}

// Profile returns the user's fitness profile
func (u *User) Profile() *Profile {
	return u.profile
}

// CreatedAt returns when the user was created
func (u *User) CreatedAt() time.Time {
	return u.createdAt
}

// UpdatedAt returns when the user was last updated
func (u *User) UpdatedAt() time.Time {
	return u.updatedAt
}

// LastLoginAt returns when the user last logged in
func (u *User) LastLoginAt() *time.Time {
	return u.lastLoginAt
}

// CheckPassword verifies if the provided password matches
func (u *User) CheckPassword(password string) error {
	return bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password))
}

// UpdatePassword updates the user's password
func (u *User) UpdatePassword(newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return errors.New("failed to hash password")
	}

	u.passwordHash = string(hashedPassword)
	u.updatedAt = time.Now()
	return nil
}

// UpdateProfile updates the user's fitness profile
func (u *User) UpdateProfile(profile *Profile) {
	u.profile = profile
	u.updatedAt = time.Now()
}

// Deactivate deactivates the user
func (u *User) Deactivate() {
	u.isActive = false
	u.updatedAt = time.Now()
}

// Activate activates the user
func (u *User) Activate() {
	u.isActive = true
	u.updatedAt = time.Now()
}

// RecordLogin records a login timestamp
func (u *User) RecordLogin() {
	now := time.Now()
	u.lastLoginAt = &now
	u.updatedAt = now
}

// Validation functions
func validateEmail(email string) error {
	if email == "" {
		return errors.New("email is required")
	}

	if !strings.Contains(email, "@") {
		return errors.New("invalid email format")
	}

	if len(email) > 255 {
		return errors.New("email too long")
	}

	return nil
}

func validateName(name string) error {
	if name == "" {
		return errors.New("name is required")
	}

	if len(name) < 2 {
		return errors.New("name must be at least 2 characters")
	}

	if len(name) > 100 {
		return errors.New("name too long")
	}

	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return errors.New("password must be at least 8 characters")
	}

	if len(password) > 128 {
		return errors.New("password too long")
	}

	return nil
}
