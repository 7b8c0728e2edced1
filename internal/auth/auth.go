package auth

import (
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/cristalhq/jwt/v4"
	"github.com/google/uuid"
	"github.com/ukane-philemon/reportcard/internal/db"
	"golang.org/x/crypto/bcrypt"
)

const (
	jwtIssuer = "REPORTCARD"

	JWTExpiry        = 24 * time.Hour
	jwtAudienceAdmin = "admin"
	jwtAlg           = jwt.HS256
)

// ErrorLoginDisabled is returned by Login when no admin account is configured.
var ErrorLoginDisabled = fmt.Errorf("%w: admin login is not configured", db.ErrorInvalidRequest)

// Manager checks the admin credentials and issues and verifies admin tokens.
type Manager struct {
	aud          string
	builder      *jwt.Builder
	verifier     jwt.Verifier
	username     string
	passwordHash []byte
	now          func() time.Time
}

// NewManager returns a new manager for the admin account username, whose
// password bcrypt hash is passwordHash. A random signing secret is generated
// when secret is empty, tokens then stop working after a restart. Login is
// disabled if username is empty.
func NewManager(username, passwordHash string, secret []byte) (*Manager, error) {
	if username != "" && passwordHash == "" {
		return nil, errors.New("admin password hash is required")
	}

	if len(secret) == 0 {
		secret = make([]byte, 32)
		_, err := rand.Read(secret)
		if err != nil {
			return nil, fmt.Errorf("rand.Read error: %w", err)
		}
	}

	signer, err := jwt.NewSignerHS(jwtAlg, secret)
	if err != nil {
		return nil, fmt.Errorf("jwt.NewSignerHS error: %w", err)
	}

	verifier, err := jwt.NewVerifierHS(jwtAlg, secret)
	if err != nil {
		return nil, fmt.Errorf("jwt.NewVerifierHS error: %w", err)
	}

	return &Manager{
		aud:          jwtAudienceAdmin,
		builder:      jwt.NewBuilder(signer),
		verifier:     verifier,
		username:     username,
		passwordHash: []byte(passwordHash),
		now:          time.Now,
	}, nil
}

// HashPassword returns the bcrypt hash of password for use in configuration.
func HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password is required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("bcrypt.GenerateFromPassword error: %w", err)
	}

	return string(hash), nil
}

// Login checks the admin credentials and returns a new auth token. Returns
// db.ErrorInvalidRequest if the username or password is incorrect.
func (m *Manager) Login(username, password string) (string, error) {
	if m.username == "" {
		return "", ErrorLoginDisabled
	}

	err := bcrypt.CompareHashAndPassword(m.passwordHash, []byte(password))
	if username != m.username || err != nil {
		return "", fmt.Errorf("%w: username or password is incorrect", db.ErrorInvalidRequest)
	}

	return m.GenerateToken(username)
}

// GenerateToken generates a new auth token for subject.
func (m *Manager) GenerateToken(subject string) (string, error) {
	now := m.now()
	claims := &jwt.RegisteredClaims{
		ID:        uuid.NewString(),
		Subject:   subject,
		Audience:  jwt.Audience{jwtAudienceAdmin},
		Issuer:    jwtIssuer,
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(JWTExpiry)),
	}

	token, err := m.builder.Build(claims)
	if err != nil {
		return "", fmt.Errorf("m.builder.Build error: %w", err)
	}

	return token.String(), nil
}

// IsValid checks the token is valid and returns its subject.
func (m *Manager) IsValid(token string) (string, bool) {
	jwtClaims := new(jwt.RegisteredClaims)
	err := jwt.ParseClaims([]byte(token), m.verifier, jwtClaims)
	if err != nil || !(jwtClaims.IsIssuer(jwtIssuer) && jwtClaims.IsValidAt(m.now())) || !jwtClaims.IsForAudience(m.aud) {
		return "", false
	}

	return jwtClaims.Subject, true
}
