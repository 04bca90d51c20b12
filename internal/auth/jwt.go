package auth

import (
	"errors"
	"fmt"

	"github.com/atlasfield/fieldtrack-api/internal/config"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken = errors.New("invalid token")
	ErrExpiredToken = errors.New("token has expired")
)

// JWTValidator validates HMAC-signed access tokens issued by the identity
// service the frontend authenticates against.
type JWTValidator struct {
	signingKey []byte
	issuer     string
}

// NewJWTValidator creates a new JWT validator
func NewJWTValidator(cfg *config.AuthConfig) *JWTValidator {
	return &JWTValidator{
		signingKey: []byte(cfg.SigningKey),
		issuer:     cfg.Issuer,
	}
}

// ValidateToken validates a token and returns the user context carried in
// its claims.
func (v *JWTValidator) ValidateToken(tokenString string) (*UserContext, error) {
	claims := jwt.MapClaims{}
	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	parsed, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return v.signingKey, nil
	}, opts...)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrExpiredToken
		}
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}

	userID := extractString(claims, "sub", "oid")
	if userID == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}

	return &UserContext{
		UserID:      userID,
		DisplayName: extractString(claims, "name", "preferred_username"),
		Email:       extractString(claims, "email", "upn"),
		Roles:       extractRoles(claims),
	}, nil
}

func extractString(claims jwt.MapClaims, keys ...string) string {
	for _, key := range keys {
		if val, ok := claims[key]; ok {
			if str, ok := val.(string); ok && str != "" {
				return str
			}
		}
	}
	return ""
}

func extractRoles(claims jwt.MapClaims) []domain.UserRoleType {
	roles := []domain.UserRoleType{}
	for _, key := range []string{"roles", "role"} {
		val, ok := claims[key]
		if !ok {
			continue
		}
		switch v := val.(type) {
		case []interface{}:
			for _, r := range v {
				if str, ok := r.(string); ok {
					roles = append(roles, domain.UserRoleType(str))
				}
			}
		case []string:
			for _, str := range v {
				roles = append(roles, domain.UserRoleType(str))
			}
		case string:
			roles = append(roles, domain.UserRoleType(v))
		}
	}
	return roles
}
