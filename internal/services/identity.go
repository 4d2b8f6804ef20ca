package services

import (
	"fmt"

	"github.com/dgrijalva/jwt-go"
)

// Identity is the authenticated caller extracted from a bearer token.
type Identity struct {
	UserID string
	Email  string
}

// IdentityService validates tokens issued by the identity provider.
type IdentityService struct {
	jwtSecret []byte
}

// NewIdentityService creates a new IdentityService.
func NewIdentityService(jwtSecret string) *IdentityService {
	return &IdentityService{
		jwtSecret: []byte(jwtSecret),
	}
}

// ValidateToken parses and validates an HS256 token and returns the caller's identity.
// The user identifier comes from the "sub" claim, with "user_id" accepted as a fallback.
func (s *IdentityService) ValidateToken(tokenString string) (*Identity, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.jwtSecret, nil
	})
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	userID, _ := claims["sub"].(string)
	if userID == "" {
		userID, _ = claims["user_id"].(string)
	}
	if userID == "" {
		return nil, fmt.Errorf("invalid token: missing subject")
	}
	email, _ := claims["email"].(string)

	return &Identity{UserID: userID, Email: email}, nil
}
