package gateway

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rneambassadors/portal/content"
)

const testPassword = "correct horse battery staple"

func newTestAuth(t *testing.T) *Auth {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:auth_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	store := content.NewStore(db, logrus.New())
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := content.Config{
		PublicOrigin:  "http://localhost:5173",
		AdminUsername: "admin",
		AdminPassword: testPassword,
	}
	cfg.Defaults()
	a := &Auth{Store: store, Sessions: NewMemorySessions(), Logger: logrus.New(), Config: cfg}
	if err := a.EnsureAdmin(); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	return a
}

func authTestEngine(a *Auth) *gin.Engine {
	engine := gin.New()
	engine.POST("/login", a.LoginHandler)
	engine.POST("/logout", a.LogoutHandler)
	guarded := engine.Group("/admin")
	guarded.Use(a.AuthMiddleware())
	guarded.GET("/ping", func(c *gin.Context) {
		p, _ := PrincipalFrom(c)
		c.JSON(http.StatusOK, gin.H{"username": p.Username})
	})
	guarded.POST("/password", a.ChangePasswordHandler)
	return engine
}

func postJSON(engine *gin.Engine, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func sessionCookie(t *testing.T, w *httptest.ResponseRecorder) *http.Cookie {
	t.Helper()
	for _, c := range w.Result().Cookies() {
		if c.Name == SessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func TestLoginIssuesSessionCookie(t *testing.T) {
	a := newTestAuth(t)
	engine := authTestEngine(a)

	w := postJSON(engine, "/login", gin.H{"identifier": "admin", "secret": testPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
	cookie := sessionCookie(t, w)
	if !cookie.HttpOnly {
		t.Error("session cookie must be http-only")
	}
	if cookie.Secure {
		t.Error("cookie must not be secure on an http origin")
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.AddCookie(cookie)
	got := httptest.NewRecorder()
	engine.ServeHTTP(got, req)
	if got.Code != http.StatusOK {
		t.Fatalf("guarded route: status %d", got.Code)
	}
	if !strings.Contains(got.Body.String(), "admin") {
		t.Errorf("principal missing from response: %s", got.Body.String())
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	a := newTestAuth(t)
	engine := authTestEngine(a)

	w := postJSON(engine, "/login", gin.H{"identifier": "admin", "secret": "wrong"})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong password: status %d", w.Code)
	}
	w = postJSON(engine, "/login", gin.H{"identifier": "nobody", "secret": testPassword})
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("unknown user: status %d", w.Code)
	}
	w = postJSON(engine, "/login", gin.H{"identifier": "admin"})
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing secret: status %d", w.Code)
	}
}

func TestGuardedRouteRequiresSession(t *testing.T) {
	a := newTestAuth(t)
	engine := authTestEngine(a)

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("anonymous: status %d", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookie, Value: "forged-token"})
	w = httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("forged token: status %d", w.Code)
	}
}

func TestBearerTokenFallback(t *testing.T) {
	a := newTestAuth(t)
	engine := authTestEngine(a)

	token, err := a.Sessions.Create(Principal{Username: "admin"}, SessionTTL)
	if err != nil {
		t.Fatalf("create session: %v", err)
	}
	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("bearer auth: status %d", w.Code)
	}
}

func TestLogoutInvalidatesSession(t *testing.T) {
	a := newTestAuth(t)
	engine := authTestEngine(a)

	login := postJSON(engine, "/login", gin.H{"identifier": "admin", "secret": testPassword})
	cookie := sessionCookie(t, login)

	out := postJSON(engine, "/logout", gin.H{}, cookie)
	if out.Code != http.StatusOK {
		t.Fatalf("logout: status %d", out.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/admin/ping", nil)
	req.AddCookie(cookie)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("session must be dead after logout: status %d", w.Code)
	}
}

func TestOriginMiddleware(t *testing.T) {
	a := newTestAuth(t)
	engine := gin.New()
	engine.Use(a.OriginMiddleware())
	engine.POST("/mutate", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })
	engine.GET("/read", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ok": true}) })

	send := func(method, origin string) int {
		req := httptest.NewRequest(method, map[string]string{http.MethodGet: "/read", http.MethodPost: "/mutate"}[method], nil)
		if origin != "" {
			req.Header.Set("Origin", origin)
		}
		w := httptest.NewRecorder()
		engine.ServeHTTP(w, req)
		return w.Code
	}

	if code := send(http.MethodPost, "https://evil.example"); code != http.StatusForbidden {
		t.Errorf("cross-origin post: status %d", code)
	}
	if code := send(http.MethodPost, "http://localhost:5173"); code != http.StatusOK {
		t.Errorf("same-origin post: status %d", code)
	}
	if code := send(http.MethodPost, ""); code != http.StatusOK {
		t.Errorf("post without origin header: status %d", code)
	}
	// reads are never origin-gated
	if code := send(http.MethodGet, "https://evil.example"); code != http.StatusOK {
		t.Errorf("cross-origin get: status %d", code)
	}
}

func TestChangePassword(t *testing.T) {
	a := newTestAuth(t)
	engine := authTestEngine(a)

	login := postJSON(engine, "/login", gin.H{"identifier": "admin", "secret": testPassword})
	cookie := sessionCookie(t, login)

	w := postJSON(engine, "/admin/password", gin.H{
		"currentPassword":    "wrong",
		"newPassword":        "another secret",
		"confirmNewPassword": "another secret",
	}, cookie)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong current password: status %d", w.Code)
	}

	w = postJSON(engine, "/admin/password", gin.H{
		"currentPassword":    testPassword,
		"newPassword":        "another secret",
		"confirmNewPassword": "does not match",
	}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("mismatched confirmation: status %d", w.Code)
	}

	w = postJSON(engine, "/admin/password", gin.H{
		"currentPassword":    testPassword,
		"newPassword":        "short",
		"confirmNewPassword": "short",
	}, cookie)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("short password: status %d", w.Code)
	}

	w = postJSON(engine, "/admin/password", gin.H{
		"currentPassword":    testPassword,
		"newPassword":        "another secret",
		"confirmNewPassword": "another secret",
	}, cookie)
	if w.Code != http.StatusOK {
		t.Fatalf("change: status %d body %s", w.Code, w.Body.String())
	}

	if w := postJSON(engine, "/login", gin.H{"identifier": "admin", "secret": testPassword}); w.Code != http.StatusUnauthorized {
		t.Fatalf("old password still works: status %d", w.Code)
	}
	if w := postJSON(engine, "/login", gin.H{"identifier": "admin", "secret": "another secret"}); w.Code != http.StatusOK {
		t.Fatalf("new password rejected: status %d", w.Code)
	}
}

func TestEnsureAdminIdempotent(t *testing.T) {
	a := newTestAuth(t)
	if err := a.EnsureAdmin(); err != nil {
		t.Fatalf("second seed: %v", err)
	}
	user, err := a.Store.AdminByUsername("admin")
	if err != nil || user == nil {
		t.Fatalf("fetch admin: %+v err=%v", user, err)
	}
	before := user.PasswordHash
	if err := a.EnsureAdmin(); err != nil {
		t.Fatalf("third seed: %v", err)
	}
	user, _ = a.Store.AdminByUsername("admin")
	if user.PasswordHash != before {
		t.Fatal("seeding must not rotate an existing credential")
	}
}
