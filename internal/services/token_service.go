package services

import (
	"crypto/rsa"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/lokita-bj/lokita-backend/internal/models"
)

var (
	ErrSigningKeyUnavailable = errors.New("JWT signing key not configured")
	ErrTokenInvalid          = errors.New("invalid or expired token")
	ErrTokenMalformed        = errors.New("token payload is missing required claims")
)

// Claims is the identity a session token carries. All three fields are
// mandatory strings; a decoded token missing any of them is rejected.
type Claims struct {
	UserID      string
	PhoneNumber string
	Role        string
}

// TokenService issues and verifies RS256-signed session tokens. Tokens are not
// stored server-side; validity is purely cryptographic plus expiry.
type TokenService struct {
	privateKey *rsa.PrivateKey
	publicKey  *rsa.PublicKey
	expiresIn  time.Duration
}

func NewTokenService(privatePEM, publicPEM string, expiresIn time.Duration) (*TokenService, error) {
	if privatePEM == "" || publicPEM == "" {
		return nil, ErrSigningKeyUnavailable
	}

	privateKey, err := jwt.ParseRSAPrivateKeyFromPEM([]byte(privatePEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT private key: %w", err)
	}
	publicKey, err := jwt.ParseRSAPublicKeyFromPEM([]byte(publicPEM))
	if err != nil {
		return nil, fmt.Errorf("failed to parse JWT public key: %w", err)
	}

	return &TokenService{
		privateKey: privateKey,
		publicKey:  publicKey,
		expiresIn:  expiresIn,
	}, nil
}

// PublicKey exposes the verification key for the HTTP auth middleware.
func (s *TokenService) PublicKey() *rsa.PublicKey {
	return s.publicKey
}

func (s *TokenService) Issue(user *models.User) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"userId":      user.ID.String(),
		"phoneNumber": user.PhoneNumber,
		"role":        user.Role,
		"iat":         now.Unix(),
		"exp":         now.Add(s.expiresIn).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodRS256, claims)
	signed, err := token.SignedString(s.privateKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify checks the signature against the public key, pins the algorithm to
// RS256 and validates expiry, then requires userId, phoneNumber and role to be
// present as strings.
func (s *TokenService) Verify(tokenString string) (*Claims, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.publicKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}))
	if err != nil || !token.Valid {
		return nil, ErrTokenInvalid
	}

	mapClaims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, ErrTokenMalformed
	}

	userID, okID := mapClaims["userId"].(string)
	phoneNumber, okPhone := mapClaims["phoneNumber"].(string)
	role, okRole := mapClaims["role"].(string)
	if !okID || !okPhone || !okRole {
		return nil, ErrTokenMalformed
	}

	return &Claims{UserID: userID, PhoneNumber: phoneNumber, Role: role}, nil
}

// ExtractBearer parses an Authorization header value. A missing or malformed
// header is not an error: callers treat it as anonymous access.
func ExtractBearer(headerValue string) (string, bool) {
	if !strings.HasPrefix(headerValue, "Bearer ") {
		return "", false
	}
	token := headerValue[len("Bearer "):]
	if token == "" {
		return "", false
	}
	return token, true
}
