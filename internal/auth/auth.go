// Package auth issues and verifies bearer tokens and hashes passwords.
//
// Handlers never read identity from globals: the middleware turns a token
// into an *Identity and passes it explicitly to the domain packages.
package auth

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"

	"github.com/emilythestrangee/reddit-clone/api/internal/apperrors"
)

// Identity is the authenticated actor behind a request.
type Identity struct {
	UserID   uint
	Username string
}

// Authenticated reports whether id names a real user. A nil identity is
// anonymous.
func (id *Identity) Authenticated() bool {
	return id != nil && id.UserID != 0
}

var (
	usernamePattern      = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)
	communityNamePattern = regexp.MustCompile(`^[a-z0-9_]{3,21}$`)
)

func ValidUsername(s string) bool {
	return usernamePattern.MatchString(s)
}

func ValidCommunityName(s string) bool {
	return communityNamePattern.MatchString(s)
}

// HashPassword hashes a plain-text password with bcrypt.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hashing password: %w", err)
	}
	return string(hashed), nil
}

// CheckPassword returns nil when password matches hash.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return apperrors.ErrUnauthorized
	}
	return nil
}

// Claims carried in access tokens.
type Claims struct {
	Username string `json:"username"`
	jwt.RegisteredClaims
}

// TokenManager signs and verifies HS256 access tokens.
type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

// Issue returns a signed token for the user.
func (m *TokenManager) Issue(userID uint, username string) (string, error) {
	now := m.now()
	claims := Claims{
		Username: username,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   strconv.FormatUint(uint64(userID), 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(m.secret)
	if err != nil {
		return "", fmt.Errorf("signing token: %w", err)
	}
	return signed, nil
}

// Parse verifies a token and returns the identity it names. Every failure
// wraps apperrors.ErrUnauthorized.
func (m *TokenManager) Parse(tokenString string) (*Identity, error) {
	if tokenString == "" {
		return nil, apperrors.ErrUnauthorized
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return m.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithTimeFunc(m.now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, fmt.Errorf("token expired: %w", apperrors.ErrUnauthorized)
		}
		return nil, fmt.Errorf("invalid token: %w", apperrors.ErrUnauthorized)
	}

	id, err := strconv.ParseUint(claims.Subject, 10, 64)
	if err != nil || id == 0 {
		return nil, fmt.Errorf("invalid subject: %w", apperrors.ErrUnauthorized)
	}

	return &Identity{UserID: uint(id), Username: claims.Username}, nil
}
