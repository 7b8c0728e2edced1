package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ukane-philemon/reportcard/internal/db"
	"golang.org/x/crypto/bcrypt"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("secret"), bcrypt.MinCost)
	require.NoError(t, err)

	m, err := NewManager("admin", string(hash), nil)
	require.NoError(t, err)
	return m
}

func TestLogin(t *testing.T) {
	m := newTestManager(t)

	token, err := m.Login("admin", "secret")
	require.NoError(t, err)

	subject, ok := m.IsValid(token)
	assert.True(t, ok)
	assert.Equal(t, "admin", subject)
}

func TestLoginWrongCredentials(t *testing.T) {
	m := newTestManager(t)

	_, err := m.Login("admin", "wrong")
	assert.ErrorIs(t, err, db.ErrorInvalidRequest)

	_, err = m.Login("root", "secret")
	assert.ErrorIs(t, err, db.ErrorInvalidRequest)
}

func TestLoginDisabled(t *testing.T) {
	m, err := NewManager("", "", nil)
	require.NoError(t, err)

	_, err = m.Login("", "")
	assert.ErrorIs(t, err, ErrorLoginDisabled)
}

func TestNewManagerRequiresHash(t *testing.T) {
	_, err := NewManager("admin", "", nil)
	assert.Error(t, err)
}

func TestIsValidRejectsBadTokens(t *testing.T) {
	m := newTestManager(t)

	_, ok := m.IsValid("not-a-token")
	assert.False(t, ok)

	// Tokens signed with another secret are rejected.
	other, err := NewManager("", "", []byte("another-secret"))
	require.NoError(t, err)
	token, err := other.GenerateToken("admin")
	require.NoError(t, err)
	_, ok = m.IsValid(token)
	assert.False(t, ok)
}

func TestIsValidRejectsExpiredTokens(t *testing.T) {
	m := newTestManager(t)
	token, err := m.GenerateToken("admin")
	require.NoError(t, err)

	m.now = func() time.Time { return time.Now().Add(JWTExpiry + time.Minute) }
	_, ok := m.IsValid(token)
	assert.False(t, ok)
}

func TestSharedSecretSurvivesRestart(t *testing.T) {
	secret := []byte("a-configured-secret")
	first, err := NewManager("", "", secret)
	require.NoError(t, err)
	token, err := first.GenerateToken("admin")
	require.NoError(t, err)

	second, err := NewManager("", "", secret)
	require.NoError(t, err)
	subject, ok := second.IsValid(token)
	assert.True(t, ok)
	assert.Equal(t, "admin", subject)
}

func TestHashPassword(t *testing.T) {
	hash, err := HashPassword("secret")
	require.NoError(t, err)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(hash), []byte("secret")))

	_, err = HashPassword("")
	assert.Error(t, err)
}
