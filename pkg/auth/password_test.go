package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHashAndComparePassword(t *testing.T) {
	hash, err := HashPassword("Str0ngEnough")
	require.NoError(t, err)
	assert.NotEqual(t, "Str0ngEnough", hash)

	assert.NoError(t, ComparePassword(hash, "Str0ngEnough"))
	assert.Error(t, ComparePassword(hash, "WrongPassword1"))
}

func TestHashPassword_Empty(t *testing.T) {
	_, err := HashPassword("")
	assert.Error(t, err)
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Catalog2024x", false},
		{"too short", "Ab1", true},
		{"no uppercase", "catalog2024x", true},
		{"no lowercase", "CATALOG2024X", true},
		{"no digit", "CatalogStore", true},
		{"common password", "password", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestPasswordValidationError_GenericMessage(t *testing.T) {
	err := ValidatePassword("weak")
	require.Error(t, err)
	// The public message never leaks individual requirements
	assert.Equal(t, "invalid password", err.Error())
}
