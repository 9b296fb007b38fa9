package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
)

// TokenService is responsible for creating and validating JWTs.
type TokenService struct {
	secretKey []byte
	expiry    time.Duration
}

// NewTokenService creates a new TokenService with the given HMAC secret
// and token lifetime.
func NewTokenService(secret string, expiry time.Duration) *TokenService {
	if secret == "" {
		// The service cannot function without a secret, so it's appropriate to panic on startup.
		panic("JWT secret not set")
	}
	return &TokenService{secretKey: []byte(secret), expiry: expiry}
}

// GenerateToken creates a signed access token carrying the user
// identity and role.
func (s *TokenService) GenerateToken(userID, email, role string) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"sub":   userID,
		"email": email,
		"role":  role,
		"typ":   "access",
		"jti":   uuid.NewString(),
		"exp":   now.Add(s.expiry).Unix(),
		"iat":   now.Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ValidateToken parses and validates a token string, returning its
// claims.
func (s *TokenService) ValidateToken(tokenStr string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	return claims, nil
}
