package cms

import (
	"bytes"
	"encoding/json"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/rneambassadors/portal/content"
	"github.com/rneambassadors/portal/gateway"
	"github.com/rneambassadors/portal/notify"
)

const (
	testOrigin   = "http://localhost:5173"
	testPassword = "correct horse battery staple"
)

type env struct {
	svc    *Service
	engine *gin.Engine
	store  *content.Store
}

func newTestEnv(t *testing.T) *env {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:cms_%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	logger := logrus.New()
	store := content.NewStore(db, logger)
	if err := store.Migrate(); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	cfg := content.Config{
		PublicOrigin:  testOrigin,
		AdminUsername: "admin",
		AdminPassword: testPassword,
	}
	cfg.Defaults()
	auth := &gateway.Auth{Store: store, Sessions: gateway.NewMemorySessions(), Logger: logger, Config: cfg}
	if err := auth.EnsureAdmin(); err != nil {
		t.Fatalf("seed admin: %v", err)
	}
	svc := &Service{
		Store:    store,
		Auth:     auth,
		Notifier: notify.NewTelegram("", ""),
		Logger:   logger,
	}
	engine := gin.New()
	svc.Routes(engine)
	return &env{svc: svc, engine: engine, store: store}
}

// request sends a JSON request. A nil body sends no payload at all.
func (e *env) request(t *testing.T, method, path string, body any, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

// multipartRequest sends form fields plus an optional image upload.
func (e *env) multipartRequest(t *testing.T, method, path string, fields map[string]string, imageData []byte, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	for k, v := range fields {
		if err := mw.WriteField(k, v); err != nil {
			t.Fatalf("write field: %v", err)
		}
	}
	if imageData != nil {
		fw, err := mw.CreateFormFile("image", "upload.png")
		if err != nil {
			t.Fatalf("create form file: %v", err)
		}
		if _, err := fw.Write(imageData); err != nil {
			t.Fatalf("write file: %v", err)
		}
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close multipart writer: %v", err)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *env) login(t *testing.T) *http.Cookie {
	t.Helper()
	w := e.request(t, http.MethodPost, "/api/admin/login", gin.H{"identifier": "admin", "secret": testPassword})
	if w.Code != http.StatusOK {
		t.Fatalf("login: status %d body %s", w.Code, w.Body.String())
	}
	for _, c := range w.Result().Cookies() {
		if c.Name == gateway.SessionCookie && c.Value != "" {
			return c
		}
	}
	t.Fatal("no session cookie issued")
	return nil
}

func decodeObject(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func decodeList(t *testing.T, w *httptest.ResponseRecorder) []map[string]any {
	t.Helper()
	var out []map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return out
}

func failedField(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeObject(t, w)
	fields, ok := body["fields"].(map[string]any)
	if !ok {
		t.Fatalf("no fields in error payload: %s", w.Body.String())
	}
	name, _ := fields["field"].(string)
	return name
}

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func ambassadorFields() gin.H {
	return gin.H{
		"name_en":    "Jane Doe",
		"name_ru":    "Джейн Доу",
		"country_en": "Brazil",
		"country_ru": "Бразилия",
		"role_en":    "Community Lead",
		"role_ru":    "Лидер сообщества",
	}
}

func eventFields() gin.H {
	return gin.H{
		"title_en":      "Annual Meetup",
		"title_ru":      "Ежегодная встреча",
		"date_day":      "12",
		"date_month_en": "June",
		"date_month_ru": "Июнь",
		"time":          "18:00",
		"location_en":   "Berlin",
		"location_ru":   "Берлин",
	}
}

func newsFields() gin.H {
	return gin.H{
		"category_en": "Community",
		"category_ru": "Сообщество",
		"date":        "2026-06-12",
		"title_en":    "Program Expands",
		"title_ru":    "Программа расширяется",
	}
}
