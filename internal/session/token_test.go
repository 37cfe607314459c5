package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/quaymarket/storefront/internal/models"
)

var testSecret = []byte("test-secret-key-minimum-32-characters-long")

func newTestCodec(t *testing.T) *Codec {
	codec, err := NewCodec(testSecret)
	require.NoError(t, err)
	return codec
}

func newTestUser(t *testing.T, role models.Role) *models.User {
	userID, err := uuid.NewV7()
	require.NoError(t, err)
	return &models.User{
		UserID: userID,
		Email:  "test@example.com",
		Name:   "Test User",
		Role:   role,
	}
}

func TestNewCodec_shortSecret(t *testing.T) {
	_, err := NewCodec([]byte("too-short"))
	require.Error(t, err)
}

func TestCodec_roundTrip(t *testing.T) {
	codec := newTestCodec(t)
	user := newTestUser(t, models.RoleAdmin)

	token, err := codec.Issue(user, time.Hour)
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := codec.Validate(token)
	require.NoError(t, err)
	require.Equal(t, user.UserID, claims.UserID)
	require.Equal(t, user.Name, claims.Name)
	require.Equal(t, user.Email, claims.Email)
	require.Equal(t, models.RoleAdmin, claims.Role)
	require.WithinDuration(t, time.Now().Add(time.Hour), claims.ExpiresAt, 5*time.Second)
}

func TestCodec_issueRejectsNonPositiveTTL(t *testing.T) {
	codec := newTestCodec(t)
	_, err := codec.Issue(newTestUser(t, models.RoleUser), 0)
	require.Error(t, err)
}

func TestCodec_validateEmptyToken(t *testing.T) {
	codec := newTestCodec(t)
	_, err := codec.Validate("")
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestCodec_validateGarbage(t *testing.T) {
	codec := newTestCodec(t)
	_, err := codec.Validate("not-a-token")
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestCodec_validateExpiredToken(t *testing.T) {
	codec := newTestCodec(t)
	user := newTestUser(t, models.RoleUser)

	now := time.Now()
	claims := &tokenClaims{
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now.Add(-2 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = codec.Validate(token)
	require.ErrorIs(t, err, ErrExpiredSession)
}

func TestCodec_validateWrongSecret(t *testing.T) {
	other, err := NewCodec([]byte("another-secret-key-minimum-32-characters"))
	require.NoError(t, err)

	token, err := other.Issue(newTestUser(t, models.RoleUser), time.Hour)
	require.NoError(t, err)

	codec := newTestCodec(t)
	_, err = codec.Validate(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestCodec_validateWrongIssuer(t *testing.T) {
	codec := newTestCodec(t)
	user := newTestUser(t, models.RoleUser)

	now := time.Now()
	claims := &tokenClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID.String(),
			Issuer:    "someone-else",
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = codec.Validate(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestCodec_validateUnknownRole(t *testing.T) {
	codec := newTestCodec(t)
	user := newTestUser(t, models.RoleUser)

	now := time.Now()
	claims := &tokenClaims{
		Role: "SUPERUSER",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(testSecret)
	require.NoError(t, err)

	_, err = codec.Validate(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestCodec_validateUnsignedToken(t *testing.T) {
	codec := newTestCodec(t)
	user := newTestUser(t, models.RoleUser)

	now := time.Now()
	claims := &tokenClaims{
		Role: string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(time.Hour)),
		},
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = codec.Validate(token)
	require.ErrorIs(t, err, ErrInvalidSession)
}

func TestTokenFromRequest(t *testing.T) {
	t.Run("cookie", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token"})
		require.Equal(t, "cookie-token", TokenFromRequest(r))
	})

	t.Run("bearer header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.Header.Set("Authorization", "Bearer header-token")
		require.Equal(t, "header-token", TokenFromRequest(r))
	})

	t.Run("cookie wins over header", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		r.AddCookie(&http.Cookie{Name: CookieName, Value: "cookie-token"})
		r.Header.Set("Authorization", "Bearer header-token")
		require.Equal(t, "cookie-token", TokenFromRequest(r))
	})

	t.Run("absent", func(t *testing.T) {
		r := httptest.NewRequest(http.MethodGet, "/", nil)
		require.Equal(t, "", TokenFromRequest(r))
	})
}
