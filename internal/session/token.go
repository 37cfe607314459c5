package session

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/quaymarket/storefront/internal/models"
)

var (
	// ErrInvalidSession covers every way a token can fail verification:
	// absent, malformed, bad signature, unknown role. Callers must not
	// distinguish the cause; a bad token is simply "no session".
	ErrInvalidSession = errors.New("invalid session")

	// ErrExpiredSession is returned for a well-formed token whose expiry
	// is in the past. Gates treat it the same as ErrInvalidSession; it
	// exists so sign-in pages can show a friendlier message.
	ErrExpiredSession = errors.New("session expired")
)

// Claims is the validated claim set derived from a session token.
// A *Claims is only ever produced by a successful verification; partial
// or unverified claims never escape this package.
type Claims struct {
	UserID    uuid.UUID
	Name      string
	Email     string
	Role      models.Role
	ExpiresAt time.Time
}

type tokenClaims struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
	jwt.RegisteredClaims
}

const tokenIssuer = "storefront"

// Codec issues and validates signed session tokens. Tokens are JWTs signed
// with HMAC-SHA256 using a server-held secret; a token is valid iff the
// signature verifies and the expiry is in the future.
type Codec struct {
	secret []byte
}

// NewCodec creates a token codec. The secret must be at least 32 bytes.
func NewCodec(secret []byte) (*Codec, error) {
	if len(secret) < 32 {
		return nil, fmt.Errorf("session secret must be at least 32 bytes")
	}
	return &Codec{secret: secret}, nil
}

// Issue creates a signed session token for the given user.
func (c *Codec) Issue(user *models.User, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		return "", fmt.Errorf("session TTL must be greater than 0")
	}

	now := time.Now()
	claims := &tokenClaims{
		Name:  user.Name,
		Email: user.Email,
		Role:  string(user.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   user.UserID.String(),
			Issuer:    tokenIssuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(c.secret)
}

// Validate verifies a session token and returns its claim set.
// Every failure mode maps to ErrInvalidSession or ErrExpiredSession; the
// codec never reports why a token was rejected beyond those two sentinels.
func (c *Codec) Validate(tokenString string) (*Claims, error) {
	if tokenString == "" {
		return nil, ErrInvalidSession
	}

	parsed, err := jwt.ParseWithClaims(tokenString, &tokenClaims{}, func(t *jwt.Token) (any, error) {
		if t.Method != jwt.SigningMethodHS256 {
			return nil, errors.New("invalid signing method")
		}
		return c.secret, nil
	}, jwt.WithIssuer(tokenIssuer), jwt.WithExpirationRequired())
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			log.Debug().Msg("Session token expired")
			return nil, ErrExpiredSession
		}
		log.Debug().Err(err).Msg("Session token validation failed")
		return nil, ErrInvalidSession
	}

	claims, ok := parsed.Claims.(*tokenClaims)
	if !ok || !parsed.Valid {
		return nil, ErrInvalidSession
	}

	userID, err := uuid.Parse(claims.Subject)
	if err != nil {
		log.Debug().Msg("Session token subject is not a UUID")
		return nil, ErrInvalidSession
	}

	role, ok := models.ParseRole(claims.Role)
	if !ok {
		log.Debug().Str("role", claims.Role).Msg("Session token carries unknown role")
		return nil, ErrInvalidSession
	}

	return &Claims{
		UserID:    userID,
		Name:      claims.Name,
		Email:     claims.Email,
		Role:      role,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
