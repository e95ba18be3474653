package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"

	"budgetbuddy/internal/cache"
	apperrors "budgetbuddy/internal/errors"
	"budgetbuddy/internal/models"
)

func init() {
	gin.SetMode(gin.TestMode)
}

const testSecret = "test-secret-key-for-unit-tests"

type fakeUsers struct {
	users map[string]*models.User
	calls int
}

func (f *fakeUsers) GetUserByID(_ context.Context, id string) (*models.User, error) {
	f.calls++
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, apperrors.ErrUserNotFound
}

type memoryCache struct {
	items map[string]cache.Identity
}

func (m *memoryCache) Get(_ context.Context, id string) (*cache.Identity, bool) {
	v, ok := m.items[id]
	if !ok {
		return nil, false
	}
	return &v, true
}

func (m *memoryCache) Set(_ context.Context, id cache.Identity) { m.items[id.UserID] = id }

func (m *memoryCache) Invalidate(_ context.Context, id string) { delete(m.items, id) }

func testUser() *models.User {
	u := &models.User{Username: "alice", Email: "alice@example.com", Currency: "RWF"}
	u.ID = "0190f2c4-0000-7000-8000-0000000000aa"
	return u
}

func newTokens(t *testing.T) *TokenManager {
	t.Helper()
	tokens, err := NewTokenManager(testSecret, "HS256", time.Hour)
	if err != nil {
		t.Fatalf("NewTokenManager: %v", err)
	}
	return tokens
}

func newAuthRouter(tokens *TokenManager, users UserLookup, identities cache.IdentityCache) *gin.Engine {
	r := gin.New()
	r.GET("/protected", AuthMiddleware(tokens, users, identities), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": c.GetString(UserIDKey)})
	})
	return r
}

func doRequest(r *gin.Engine, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func errorCode(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	code, _ := body["error"].(string)
	return code
}

func TestNewTokenManager(t *testing.T) {
	if _, err := NewTokenManager("", "HS256", time.Hour); err == nil {
		t.Error("expected error for empty secret")
	}
	if _, err := NewTokenManager(testSecret, "RS256", time.Hour); err == nil {
		t.Error("expected error for non-HMAC algorithm")
	}
	if _, err := NewTokenManager(testSecret, "HS512", 0); err == nil {
		t.Error("expected error for zero lifetime")
	}
	for _, alg := range []string{"HS256", "HS384", "HS512"} {
		if _, err := NewTokenManager(testSecret, alg, time.Hour); err != nil {
			t.Errorf("%s: unexpected error %v", alg, err)
		}
	}
}

func TestTokenExpiry(t *testing.T) {
	tokens := newTokens(t)
	issuedAt := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tokens.SetClock(func() time.Time { return issuedAt })

	token, err := tokens.Issue(testUser())
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}

	t.Run("accepted_at_59_minutes", func(t *testing.T) {
		tokens.SetClock(func() time.Time { return issuedAt.Add(59 * time.Minute) })
		claims, err := tokens.Parse(token)
		if err != nil {
			t.Fatalf("expected token to be valid, got %v", err)
		}
		if claims.UserID != testUser().ID {
			t.Errorf("expected user ID %s, got %s", testUser().ID, claims.UserID)
		}
	})

	t.Run("expired_at_61_minutes", func(t *testing.T) {
		tokens.SetClock(func() time.Time { return issuedAt.Add(61 * time.Minute) })
		_, err := tokens.Parse(token)
		if err != apperrors.ErrTokenExpired {
			t.Fatalf("expected ErrTokenExpired, got %v", err)
		}
	})
}

func TestTokenParseRejects(t *testing.T) {
	tokens := newTokens(t)

	t.Run("wrong_secret", func(t *testing.T) {
		other, _ := NewTokenManager("another-secret", "HS256", time.Hour)
		token, _ := other.Issue(testUser())
		_, err := tokens.Parse(token)
		if !apperrors.ErrInvalidToken.Is(err) {
			t.Errorf("expected INVALID_TOKEN, got %v", err)
		}
	})

	t.Run("wrong_algorithm", func(t *testing.T) {
		other, _ := NewTokenManager(testSecret, "HS512", time.Hour)
		token, _ := other.Issue(testUser())
		if _, err := tokens.Parse(token); err == nil {
			t.Error("expected token signed with HS512 to be rejected by HS256 manager")
		}
	})

	t.Run("no_expiry", func(t *testing.T) {
		claims := &JWTClaims{UserID: testUser().ID, RegisteredClaims: jwt.RegisteredClaims{Issuer: issuer}}
		token, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
		if _, err := tokens.Parse(token); err == nil {
			t.Error("expected token without exp to be rejected")
		}
	})

	t.Run("garbage", func(t *testing.T) {
		if _, err := tokens.Parse("not-a-token"); err == nil {
			t.Error("expected garbage to be rejected")
		}
	})
}

func TestAuthMiddleware(t *testing.T) {
	tokens := newTokens(t)
	user := testUser()
	users := &fakeUsers{users: map[string]*models.User{user.ID: user}}
	token, _ := tokens.Issue(user)

	cases := []struct {
		name       string
		header     string
		wantStatus int
		wantCode   string
	}{
		{"missing_header", "", http.StatusUnauthorized, "AUTHORIZATION_HEADER_MISSING"},
		{"no_bearer_prefix", token, http.StatusUnauthorized, "INVALID_AUTHORIZATION_HEADER"},
		{"basic_scheme", "Basic abc", http.StatusUnauthorized, "INVALID_AUTHORIZATION_HEADER"},
		{"invalid_token", "Bearer invalid.token.here", http.StatusUnauthorized, "INVALID_TOKEN"},
		{"valid", "Bearer " + token, http.StatusOK, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(newAuthRouter(tokens, users, nil), tc.header)
			if w.Code != tc.wantStatus {
				t.Fatalf("expected %d, got %d: %s", tc.wantStatus, w.Code, w.Body.String())
			}
			if tc.wantCode != "" {
				if code := errorCode(t, w); code != tc.wantCode {
					t.Errorf("expected code %s, got %s", tc.wantCode, code)
				}
			}
		})
	}
}

func TestAuthMiddlewareExpiredToken(t *testing.T) {
	tokens := newTokens(t)
	user := testUser()
	users := &fakeUsers{users: map[string]*models.User{user.ID: user}}

	issuedAt := time.Now().Add(-2 * time.Hour)
	tokens.SetClock(func() time.Time { return issuedAt })
	token, _ := tokens.Issue(user)
	tokens.SetClock(time.Now)

	w := doRequest(newAuthRouter(tokens, users, nil), "Bearer "+token)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "TOKEN_EXPIRED" {
		t.Errorf("expected TOKEN_EXPIRED, got %s", code)
	}
}

func TestAuthMiddlewareDeletedUser(t *testing.T) {
	tokens := newTokens(t)
	token, _ := tokens.Issue(testUser())

	w := doRequest(newAuthRouter(tokens, &fakeUsers{}, nil), "Bearer "+token)
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
	if code := errorCode(t, w); code != "USER_NOT_FOUND" {
		t.Errorf("expected USER_NOT_FOUND, got %s", code)
	}
}

func TestAuthMiddlewareUsesIdentityCache(t *testing.T) {
	tokens := newTokens(t)
	user := testUser()
	users := &fakeUsers{users: map[string]*models.User{user.ID: user}}
	identities := &memoryCache{items: map[string]cache.Identity{}}
	token, _ := tokens.Issue(user)
	r := newAuthRouter(tokens, users, identities)

	for i := 0; i < 3; i++ {
		if w := doRequest(r, "Bearer "+token); w.Code != http.StatusOK {
			t.Fatalf("request %d: expected 200, got %d", i, w.Code)
		}
	}
	if users.calls != 1 {
		t.Errorf("expected one store lookup, got %d", users.calls)
	}
	if _, ok := identities.items[user.ID]; !ok {
		t.Error("expected identity to be cached")
	}

	identities.Invalidate(context.Background(), user.ID)
	doRequest(r, "Bearer "+token)
	if users.calls != 2 {
		t.Errorf("expected lookup after invalidation, got %d calls", users.calls)
	}
}
