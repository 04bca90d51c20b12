package auth_test

import (
	"testing"
	"time"

	"github.com/atlasfield/fieldtrack-api/internal/auth"
	"github.com/atlasfield/fieldtrack-api/internal/config"
	"github.com/atlasfield/fieldtrack-api/internal/domain"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSigningKey = "test-signing-key-for-unit-tests"

func newTestValidator(issuer string) *auth.JWTValidator {
	return auth.NewJWTValidator(&config.AuthConfig{
		SigningKey: testSigningKey,
		Issuer:     issuer,
	})
}

// createTestToken signs claims with the shared test key
func createTestToken(t *testing.T, key string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(key))
	require.NoError(t, err)
	return tokenString
}

func TestJWTValidator_ValidateToken_ValidToken(t *testing.T) {
	validator := newTestValidator("")

	tokenString := createTestToken(t, testSigningKey, jwt.MapClaims{
		"sub":   "user-42",
		"exp":   time.Now().Add(time.Hour).Unix(),
		"iat":   time.Now().Unix(),
		"name":  "Dana Bergstrom",
		"email": "dana@example.com",
		"roles": []interface{}{"admin", "employee"},
	})

	userCtx, err := validator.ValidateToken(tokenString)

	require.NoError(t, err)
	assert.Equal(t, "user-42", userCtx.UserID)
	assert.Equal(t, "Dana Bergstrom", userCtx.DisplayName)
	assert.Equal(t, "dana@example.com", userCtx.Email)
	assert.Len(t, userCtx.Roles, 2)
	assert.True(t, userCtx.IsAdmin())
}

func TestJWTValidator_ValidateToken_ExpiredToken(t *testing.T) {
	validator := newTestValidator("")

	tokenString := createTestToken(t, testSigningKey, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Hour).Unix(),
		"iat": time.Now().Add(-2 * time.Hour).Unix(),
	})

	userCtx, err := validator.ValidateToken(tokenString)

	assert.Nil(t, userCtx)
	assert.ErrorIs(t, err, auth.ErrExpiredToken)
}

func TestJWTValidator_ValidateToken_WrongSigningKey(t *testing.T) {
	validator := newTestValidator("")

	tokenString := createTestToken(t, "some-other-key", jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	userCtx, err := validator.ValidateToken(tokenString)

	assert.Nil(t, userCtx)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_ValidateToken_RejectsUnsignedToken(t *testing.T) {
	validator := newTestValidator("")

	token := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
	})
	tokenString, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	userCtx, err := validator.ValidateToken(tokenString)

	assert.Nil(t, userCtx)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_ValidateToken_MissingExpiration(t *testing.T) {
	validator := newTestValidator("")

	tokenString := createTestToken(t, testSigningKey, jwt.MapClaims{
		"sub": "user-42",
	})

	userCtx, err := validator.ValidateToken(tokenString)

	assert.Nil(t, userCtx)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_ValidateToken_InvalidIssuer(t *testing.T) {
	validator := newTestValidator("https://id.atlasfield.io")

	tokenString := createTestToken(t, testSigningKey, jwt.MapClaims{
		"sub": "user-42",
		"exp": time.Now().Add(time.Hour).Unix(),
		"iss": "https://evil.example.com",
	})

	userCtx, err := validator.ValidateToken(tokenString)

	assert.Nil(t, userCtx)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_ValidateToken_MissingSubject(t *testing.T) {
	validator := newTestValidator("")

	tokenString := createTestToken(t, testSigningKey, jwt.MapClaims{
		"exp":  time.Now().Add(time.Hour).Unix(),
		"name": "No Subject",
	})

	userCtx, err := validator.ValidateToken(tokenString)

	assert.Nil(t, userCtx)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_ValidateToken_InvalidTokenFormat(t *testing.T) {
	validator := newTestValidator("")

	userCtx, err := validator.ValidateToken("not-a-valid-jwt-token")

	assert.Nil(t, userCtx)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestJWTValidator_ValidateToken_FallsBackToOidClaim(t *testing.T) {
	validator := newTestValidator("")

	tokenString := createTestToken(t, testSigningKey, jwt.MapClaims{
		"oid": "object-id-123",
		"exp": time.Now().Add(time.Hour).Unix(),
	})

	userCtx, err := validator.ValidateToken(tokenString)

	require.NoError(t, err)
	assert.Equal(t, "object-id-123", userCtx.UserID)
}

func TestJWTValidator_ValidateToken_ExtractsRolesFromVariousClaims(t *testing.T) {
	validator := newTestValidator("")

	tests := []struct {
		name          string
		claims        jwt.MapClaims
		expectedRoles []domain.UserRoleType
	}{
		{
			name: "roles as array",
			claims: jwt.MapClaims{
				"sub":   "user-42",
				"exp":   time.Now().Add(time.Hour).Unix(),
				"roles": []interface{}{"admin", "approver"},
			},
			expectedRoles: []domain.UserRoleType{domain.RoleAdmin, domain.RoleApprover},
		},
		{
			name: "role as single string",
			claims: jwt.MapClaims{
				"sub":  "user-42",
				"exp":  time.Now().Add(time.Hour).Unix(),
				"role": "employee",
			},
			expectedRoles: []domain.UserRoleType{domain.RoleEmployee},
		},
		{
			name: "no roles",
			claims: jwt.MapClaims{
				"sub": "user-42",
				"exp": time.Now().Add(time.Hour).Unix(),
			},
			expectedRoles: []domain.UserRoleType{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tokenString := createTestToken(t, testSigningKey, tt.claims)

			userCtx, err := validator.ValidateToken(tokenString)

			require.NoError(t, err)
			assert.Equal(t, tt.expectedRoles, userCtx.Roles)
		})
	}
}

func TestJWTValidator_ValidateToken_PreferredUsernameFallback(t *testing.T) {
	validator := newTestValidator("")

	tokenString := createTestToken(t, testSigningKey, jwt.MapClaims{
		"sub":                "user-42",
		"exp":                time.Now().Add(time.Hour).Unix(),
		"preferred_username": "dbergstrom",
		"upn":                "dana@atlasfield.io",
	})

	userCtx, err := validator.ValidateToken(tokenString)

	require.NoError(t, err)
	assert.Equal(t, "dbergstrom", userCtx.DisplayName)
	assert.Equal(t, "dana@atlasfield.io", userCtx.Email)
}
