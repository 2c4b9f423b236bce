package auth

import (
	"time"

	"logitrack-server/internal/models"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const tokenTTL = 24 * time.Hour

// ServiceInterface defines the contract for the admin login service.
type ServiceInterface interface {
	Login(password string) (string, error)
}

// Service gates the admin surface behind a single bcrypt-hashed password
// (generate the hash with misc/hash-password) and issues a signed JWT on
// success.
type Service struct {
	passwordHash []byte
	jwtSecret    []byte
	now          func() time.Time
}

// NewService creates the login service. now is injectable for tests and
// defaults to time.Now when nil.
func NewService(passwordHash, jwtSecret string, now func() time.Time) *Service {
	if now == nil {
		now = time.Now
	}
	return &Service{
		passwordHash: []byte(passwordHash),
		jwtSecret:    []byte(jwtSecret),
		now:          now,
	}
}

// Login verifies the admin password and returns a bearer token for the
// admin route group.
func (s *Service) Login(password string) (string, error) {
	if err := bcrypt.CompareHashAndPassword(s.passwordHash, []byte(password)); err != nil {
		return "", models.ErrInvalidCredentials
	}

	now := s.now()
	claims := jwt.MapClaims{
		"role": "admin",
		"iat":  now.Unix(),
		"exp":  now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.jwtSecret)
	if err != nil {
		return "", err
	}
	return signed, nil
}
