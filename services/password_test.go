package services

import (
	"strings"
	"testing"

	"storefront-backend/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"valid", "Secret123", false},
		{"too short", "Ab1", true},
		{"no upper", "secret123", true},
		{"no lower", "SECRET123", true},
		{"no digit", "SecretSecret", true},
		{"72 bytes", "Aa1" + strings.Repeat("x", 69), false},
		{"past bcrypt limit", "Aa1" + strings.Repeat("x", 80), true},
		{"multibyte past limit", "Aa1" + strings.Repeat("é", 35), true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if tt.wantErr {
				assert.ErrorIs(t, err, apperrors.ErrBadRequest)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestHashAndCheckPassword(t *testing.T) {
	hash, err := HashPassword("Secret123")
	require.NoError(t, err)
	assert.NotEqual(t, "Secret123", hash)
	assert.True(t, CheckPassword(hash, "Secret123"))
	assert.False(t, CheckPassword(hash, "secret123"))
}
