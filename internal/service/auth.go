package service

import (
	"crypto/subtle"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

const devAdminPassword = "admin"

var (
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrInvalidToken       = errors.New("invalid or expired token")
)

// AdminClaims identify an admin session.
type AdminClaims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// AdminAuthService is the mock admin login guarding uploads and removals.
// There is a single admin account configured through the environment.
type AdminAuthService struct {
	username     string
	passwordHash string
	jwtSecret    string
	jwtExpiry    time.Duration
}

// NewAdminAuthService falls back to the password "admin" when no hash is
// configured. Config refuses that in production.
func NewAdminAuthService(username, passwordHash, jwtSecret string, jwtExpiry time.Duration) (*AdminAuthService, error) {
	if passwordHash == "" {
		slog.Warn("ADMIN_PASSWORD_HASH not set, admin password is the development default")
		hash, err := HashPassword(devAdminPassword)
		if err != nil {
			return nil, err
		}
		passwordHash = hash
	}
	if jwtSecret == "" {
		return nil, errors.New("jwt secret is required")
	}

	return &AdminAuthService{
		username:     username,
		passwordHash: passwordHash,
		jwtSecret:    jwtSecret,
		jwtExpiry:    jwtExpiry,
	}, nil
}

// Login checks the credentials and issues a signed token.
func (s *AdminAuthService) Login(username, password string, now time.Time) (string, time.Time, error) {
	username = strings.TrimSpace(username)

	userOK := subtle.ConstantTimeCompare([]byte(username), []byte(s.username)) == 1
	// Always run bcrypt so response time does not reveal the username.
	passErr := ComparePassword(password, s.passwordHash)
	if !userOK || passErr != nil {
		return "", time.Time{}, fmt.Errorf("invalid credentials: %w", ErrInvalidCredentials)
	}

	expiresAt := now.Add(s.jwtExpiry)
	token, err := s.GenerateJWT(username, now, expiresAt)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	slog.Info("admin logged in", "username", username)
	return token, expiresAt, nil
}

func (s *AdminAuthService) GenerateJWT(username string, issuedAt, expiresAt time.Time) (string, error) {
	claims := AdminClaims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			IssuedAt:  jwt.NewNumericDate(issuedAt),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

func (s *AdminAuthService) VerifyJWT(tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	if claims.Username != s.username {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

func HashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

func ComparePassword(password, hash string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}
