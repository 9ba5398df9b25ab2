package user

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewUser(t *testing.T) {
	u, err := NewUser("Jamie@Example.com", "Jamie Doe", "supersecret")
	require.NoError(t, err)

	assert.NotEqual(t, uuid.Nil, u.ID())
	assert.Equal(t, "jamie@example.com", u.Email(), "email should be normalized to lowercase")
	assert.Equal(t, "Jamie Doe", u.Name())
	assert.True(t, u.IsActive())
	assert.Nil(t, u.Profile())
	assert.Nil(t, u.LastLoginAt())
	assert.NotEqual(t, "supersecret", u.PasswordHash(), "password must not be stored in plaintext")
}

func TestNewUserValidation(t *testing.T) {
	tests := []struct {
		name     string
		email    string
		userName string
		password string
	}{
		{"empty email", "", "Jamie", "supersecret"},
		{"email without at sign", "not-an-email", "Jamie", "supersecret"},
		{"empty name", "jamie@example.com", "", "supersecret"},
		{"single character name", "jamie@example.com", "J", "supersecret"},
		{"short password", "jamie@example.com", "Jamie", "short"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewUser(tt.email, tt.userName, tt.password)
			assert.Error(t, err)
		})
	}
}

func TestCheckPassword(t *testing.T) {
	u, err := NewUser("jamie@example.com", "Jamie", "supersecret")
	require.NoError(t, err)

	assert.NoError(t, u.CheckPassword("supersecret"))
	assert.Error(t, u.CheckPassword("wrong-password"))
	assert.Error(t, u.CheckPassword(""))
}

func TestUpdatePassword(t *testing.T) {
	u, err := NewUser("jamie@example.com", "Jamie", "supersecret")
	require.NoError(t, err)

	require.NoError(t, u.UpdatePassword("another-secret"))
	assert.NoError(t, u.CheckPassword("another-secret"))
	assert.Error(t, u.CheckPassword("supersecret"))

	assert.Error(t, u.UpdatePassword("short"), "new password must still be validated")
}

func TestUpdateProfile(t *testing.T) {
	u, err := NewUser("jamie@example.com", "Jamie", "supersecret")
	require.NoError(t, err)

	before := u.UpdatedAt()
	profile := &Profile{
		Age:          31,
		HeightCM:     178,
		WeightKG:     74.5,
		FitnessLevel: FitnessLevelIntermediate,
		Goals:        []string{"run a marathon"},
	}
	u.UpdateProfile(profile)

	require.NotNil(t, u.Profile())
	assert.Equal(t, 31, u.Profile().Age)
	assert.Equal(t, FitnessLevelIntermediate, u.Profile().FitnessLevel)
	assert.False(t, u.UpdatedAt().Before(before))
}

func TestActivateDeactivate(t *testing.T) {
	u, err := NewUser("jamie@example.com", "Jamie", "supersecret")
	require.NoError(t, err)

	u.Deactivate()
	assert.False(t, u.IsActive())

	u.Activate()
	assert.True(t, u.IsActive())
}

func TestRecordLogin(t *testing.T) {
	u, err := NewUser("jamie@example.com", "Jamie", "supersecret")
	require.NoError(t, err)

	u.RecordLogin()
	require.NotNil(t, u.LastLoginAt())
	assert.WithinDuration(t, time.Now(), *u.LastLoginAt(), time.Second)
}

func TestReconstruct(t *testing.T) {
	id := uuid.New()
	created := time.Now().Add(-48 * time.Hour)
	updated := time.Now().Add(-time.Hour)
	lastLogin := time.Now().Add(-2 * time.Hour)

	u := Reconstruct(id, "jamie@example.com", "Jamie", "$2a$10$fakehash", false, &Profile{Age: 40}, created, updated, &lastLogin)

	assert.Equal(t, id, u.ID())
	assert.Equal(t, "jamie@example.com", u.Email())
	assert.False(t, u.IsActive())
	assert.Equal(t, 40, u.Profile().Age)
	assert.Equal(t, created, u.CreatedAt())
	assert.Equal(t, updated, u.UpdatedAt())
	require.NotNil(t, u.LastLoginAt())
	assert.Equal(t, lastLogin, *u.LastLoginAt())
}
