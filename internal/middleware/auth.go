package middleware

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"budgetbuddy/internal/cache"
	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
)

const (
	// UserIDKey is the gin context key holding the authenticated user ID.
	UserIDKey = "userID"
	// IdentityKey holds the resolved *cache.Identity.
	IdentityKey = "identity"

	issuer = "budgetbuddy-api"
)

// JWTClaims represents the claims in the JWT
type JWTClaims struct {
	UserID string `json:"user_id"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// TokenManager issues and verifies HMAC-signed access tokens.
type TokenManager struct {
	secret []byte
	method jwt.SigningMethod
	ttl    time.Duration
	now    func() time.Time
}

// NewTokenManager creates a TokenManager. algorithm is one of HS256, HS384
// or HS512.
func NewTokenManager(secret, algorithm string, ttl time.Duration) (*TokenManager, error) {
	if secret == "" {
		return nil, errors.New("JWT secret is empty")
	}
	method := jwt.GetSigningMethod(algorithm)
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, fmt.Errorf("unsupported JWT algorithm %q", algorithm)
	}
	if ttl <= 0 {
		return nil, errors.New("JWT lifetime must be positive")
	}
	return &TokenManager{secret: []byte(secret), method: method, ttl: ttl, now: time.Now}, nil
}

// SetClock replaces the time source. Tests use it to move past expiry.
func (m *TokenManager) SetClock(now func() time.Time) {
	m.now = now
}

// TTL returns the token lifetime.
func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs a token for the user that expires after the configured lifetime.
func (m *TokenManager) Issue(user *models.User) (string, error) {
	now := m.now()
	claims := &JWTClaims{
		UserID: user.ID,
		Email:  user.Email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(m.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    issuer,
			Subject:   user.ID,
		},
	}

	token := jwt.NewWithClaims(m.method, claims)
	return token.SignedString(m.secret)
}

// Parse verifies the signature, algorithm and expiry of a token and returns
// its claims. Expired tokens yield ErrTokenExpired; anything else invalid
// yields ErrInvalidToken.
func (m *TokenManager) Parse(tokenString string) (*JWTClaims, error) {
	claims := &JWTClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims,
		func(*jwt.Token) (interface{}, error) { return m.secret, nil },
		jwt.WithValidMethods([]string{m.method.Alg()}),
		jwt.WithTimeFunc(m.now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, apperrors.ErrTokenExpired
		}
		return nil, apperrors.Wrap(apperrors.ErrInvalidToken, err)
	}
	if !token.Valid || claims.UserID == "" {
		return nil, apperrors.ErrInvalidToken
	}
	return claims, nil
}

// UserLookup resolves a user ID against the identity store.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// AuthMiddleware verifies the bearer token and re-resolves the embedded user
// against the store (through the identity cache) before the handler runs.
// Tokens for users that no longer exist are rejected with USER_NOT_FOUND.
func AuthMiddleware(tokens *TokenManager, users UserLookup, identities cache.IdentityCache) gin.HandlerFunc {
	if identities == nil {
		identities = cache.NopIdentityCache{}
	}
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			AbortWithError(c, apperrors.ErrAuthHeaderMissing)
			return
		}

		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			AbortWithError(c, apperrors.ErrInvalidAuthHeader)
			return
		}

		claims, err := tokens.Parse(parts[1])
		if err != nil {
			AbortWithError(c, err)
			return
		}

		ctx := c.Request.Context()
		identity, ok := identities.Get(ctx, claims.UserID)
		if !ok {
			user, err := users.GetUserByID(ctx, claims.UserID)
			if err != nil {
				AbortWithError(c, err)
				return
			}
			identity = &cache.Identity{
				UserID:   user.ID,
				Username: user.Username,
				Email:    user.Email,
				Currency: user.Currency,
			}
			identities.Set(ctx, *identity)
		}

		c.Set(UserIDKey, identity.UserID)
		c.Set(IdentityKey, identity)
		c.Next()
	}
}
