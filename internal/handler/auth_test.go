package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/data-sentry/backend/internal/config"
	"github.com/data-sentry/backend/internal/model"
	"github.com/data-sentry/backend/internal/service"
	"github.com/gin-gonic/gin"
)

var errAuthNoRows = errors.New("no rows")

type memoryAuthRepo struct {
	users       map[string]*model.User
	tokens      map[string]*model.RefreshToken
	nextUserID  int64
	nextTokenID int64
}

func newMemoryAuthRepo() *memoryAuthRepo {
	return &memoryAuthRepo{
		users:  make(map[string]*model.User),
		tokens: make(map[string]*model.RefreshToken),
	}
}

func (m *memoryAuthRepo) CreateUser(ctx context.Context, loginID, passwordHash string) (*model.User, error) {
	m.nextUserID++
	user := &model.User{ID: m.nextUserID, LoginID: loginID, PasswordHash: passwordHash}
	m.users[loginID] = user
	return user, nil
}

func (m *memoryAuthRepo) GetUserByLoginID(ctx context.Context, loginID string) (*model.User, error) {
	user, ok := m.users[loginID]
	if !ok {
		return nil, errAuthNoRows
	}
	return user, nil
}

func (m *memoryAuthRepo) GetUserByID(ctx context.Context, userID int64) (*model.User, error) {
	for _, user := range m.users {
		if user.ID == userID {
			return user, nil
		}
	}
	return nil, errAuthNoRows
}

func (m *memoryAuthRepo) InsertRefreshToken(ctx context.Context, userID int64, tokenHash string, expiresAt time.Time) error {
	m.nextTokenID++
	m.tokens[tokenHash] = &model.RefreshToken{ID: m.nextTokenID, UserID: userID, TokenHash: tokenHash, ExpiresAt: expiresAt}
	return nil
}

func (m *memoryAuthRepo) GetRefreshTokenByHash(ctx context.Context, tokenHash string) (*model.RefreshToken, error) {
	token, ok := m.tokens[tokenHash]
	if !ok {
		return nil, errAuthNoRows
	}
	return token, nil
}

func (m *memoryAuthRepo) RevokeRefreshTokenByHash(ctx context.Context, tokenHash string) error {
	if token, ok := m.tokens[tokenHash]; ok && token.RevokedAt == nil {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (m *memoryAuthRepo) RotateRefreshToken(ctx context.Context, oldTokenID int64, userID int64, newTokenHash string, newExpiresAt time.Time) error {
	for _, token := range m.tokens {
		if token.ID == oldTokenID && token.RevokedAt == nil {
			now := time.Now()
			token.RevokedAt = &now
		}
	}
	return m.InsertRefreshToken(ctx, userID, newTokenHash, newExpiresAt)
}

func (m *memoryAuthRepo) EnsureAuthSchema(ctx context.Context) error { return nil }

func newAuthRouter(t *testing.T) (*gin.Engine, *service.AuthService) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	repo := newMemoryAuthRepo()
	svc, err := service.NewAuthService(repo, func(err error) bool { return errors.Is(err, errAuthNoRows) }, config.AuthConfig{
		JWTSecret:     "test-secret",
		JWTAccessTTL:  "15m",
		JWTRefreshTTL: "720h",
		AllowSignup:   "true",
		CookieSecure:  "false",
	})
	if err != nil {
		t.Fatalf("auth service init failed: %v", err)
	}

	h := NewAuthHandler(svc)
	r := gin.New()
	r.POST("/api/v1/auth/register", h.Register)
	r.POST("/api/v1/auth/login", h.Login)
	r.POST("/api/v1/auth/refresh", h.Refresh)
	r.POST("/api/v1/auth/logout", h.Logout)
	return r, svc
}

func refreshCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	return nil
}

func registerUser(t *testing.T, r *gin.Engine) *httptest.ResponseRecorder {
	t.Helper()
	body, _ := json.Marshal(model.AuthRequest{ID: "operator", Password: "hunter2-long"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/register", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("register returned %d: %s", w.Code, w.Body.String())
	}
	return w
}

func TestLoginSetsRefreshCookie(t *testing.T) {
	r, svc := newAuthRouter(t)
	registerUser(t, r)

	body, _ := json.Marshal(model.AuthRequest{ID: "operator", Password: "hunter2-long"})
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	cookie := refreshCookie(t, w, svc.CookieConfig().Name)
	if cookie == nil || cookie.Value == "" {
		t.Fatalf("login did not set refresh cookie")
	}
	if !cookie.HttpOnly {
		t.Fatalf("refresh cookie must be HttpOnly")
	}
}

func TestRefreshRotatesCookieAndIssuesToken(t *testing.T) {
	r, svc := newAuthRouter(t)
	registered := registerUser(t, r)
	cookie := refreshCookie(t, registered, svc.CookieConfig().Name)
	if cookie == nil {
		t.Fatalf("register did not set refresh cookie")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}

	var resp model.AuthResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid response: %v", err)
	}
	if user, err := svc.ParseAccessToken(resp.AccessToken); err != nil || user.LoginID != "operator" {
		t.Fatalf("refreshed access token rejected: user=%v err=%v", user, err)
	}

	rotated := refreshCookie(t, w, svc.CookieConfig().Name)
	if rotated == nil || rotated.Value == cookie.Value {
		t.Fatalf("refresh did not rotate the cookie")
	}

	// 이전 쿠키로 재요청하면 거부
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for revoked cookie, got %d", w.Code)
	}
}

func TestRefreshWithoutCookieUnauthorized(t *testing.T) {
	r, _ := newAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil))

	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", w.Code)
	}
}

func TestLogoutClearsCookieAndRevokesToken(t *testing.T) {
	r, svc := newAuthRouter(t)
	registered := registerUser(t, r)
	cookie := refreshCookie(t, registered, svc.CookieConfig().Name)
	if cookie == nil {
		t.Fatalf("register did not set refresh cookie")
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/logout", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var resp model.AuthLogoutResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil || resp.Status != "logged_out" {
		t.Fatalf("logout response = %s", w.Body.String())
	}

	cleared := refreshCookie(t, w, svc.CookieConfig().Name)
	if cleared == nil || cleared.Value != "" || cleared.MaxAge >= 0 {
		t.Fatalf("logout did not clear refresh cookie")
	}

	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodPost, "/api/v1/auth/refresh", nil)
	req.AddCookie(cookie)
	r.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", w.Code)
	}
}
