package jwt

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateAndValidate(t *testing.T) {
	m := NewManager("test-secret")

	token, err := m.GenerateToken("user_2abc", "dev@example.com", "Dev", "admin", time.Hour)
	require.NoError(t, err)

	claims, err := m.ValidateToken(token)
	require.NoError(t, err)
	assert.Equal(t, "user_2abc", claims.Subject)
	assert.Equal(t, "dev@example.com", claims.Email)
	assert.Equal(t, "Dev", claims.Name)
	assert.Equal(t, "admin", claims.Role)
}

func TestValidateRejectsWrongSecret(t *testing.T) {
	token, err := NewManager("secret-a").GenerateToken("user_1", "a@b.c", "A", "user", time.Hour)
	require.NoError(t, err)

	_, err = NewManager("secret-b").ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsExpiredToken(t *testing.T) {
	m := NewManager("test-secret")

	token, err := m.GenerateToken("user_1", "a@b.c", "A", "user", -time.Minute)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	assert.Error(t, err)
}

func TestValidateRejectsMissingSubject(t *testing.T) {
	m := NewManager("test-secret")

	token, err := m.GenerateToken("", "a@b.c", "A", "user", time.Hour)
	require.NoError(t, err)

	_, err = m.ValidateToken(token)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "subject")
}

func TestValidateRejectsGarbage(t *testing.T) {
	_, err := NewManager("test-secret").ValidateToken("not.a.jwt")
	assert.Error(t, err)
}
