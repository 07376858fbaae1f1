package accounts

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	gateway "github.com/adonese/hawiya/apigateway"
	"github.com/adonese/hawiya/fields"
	"github.com/adonese/hawiya/store"
)

type testEnv struct {
	Router  *fiber.App
	Service *Service
	Auth    *gateway.JWTAuth
	DB      *gorm.DB
}

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := store.Open(dbPath, false)
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	return db
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := newTestDB(t)

	cfg := fields.Config{
		JWTKey:      "test-secret",
		FrontendURL: "http://localhost:3000",
	}
	cfg.Defaults()

	auth := &gateway.JWTAuth{Key: []byte(cfg.JWTKey)}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	service := New(db, cfg, logger, auth)

	r := fiber.New()
	r.Post("/api/auth/register", service.CreateUser)
	r.Post("/api/auth/login", service.LoginHandler)
	r.Get("/api/users/profile", auth.AuthMiddleware(), gateway.AdminOnly(), service.GetAllUsers)
	r.Get("/api/users/count", auth.AuthMiddleware(), gateway.AdminOnly(), service.CountUsers)
	r.Get("/api/users/profile/:id", service.GetUserProfile)
	r.Put("/api/users/profile/:id", auth.AuthMiddleware(), gateway.SelfOnly(), service.UpdateUserProfile)
	r.Delete("/api/users/profile/:id", auth.AuthMiddleware(), gateway.SelfOrAdmin(), service.DeleteUserProfile)

	return &testEnv{Router: r, Service: service, Auth: auth, DB: db}
}

func (env *testEnv) request(t *testing.T, method, target, token string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request body: %v", err)
		}
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := env.Router.Test(req, -1)
	if err != nil {
		t.Fatalf("%s %s: %v", method, target, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]interface{} {
	t.Helper()
	defer resp.Body.Close()
	var body map[string]interface{}
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
	return body
}

func decodeInto(t *testing.T, resp *http.Response, dst interface{}) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
		t.Fatalf("decode response body: %v", err)
	}
}

func itoa(id uint) string {
	return strconv.FormatUint(uint64(id), 10)
}

func seedUser(t *testing.T, db *gorm.DB, email, password string) fields.User {
	t.Helper()
	user := fields.User{
		Username:     "user-" + email,
		Email:        email,
		Password:     password,
		AuthProvider: fields.ProviderLocal,
		ProfilePhoto: fields.ProfilePhoto{URL: fields.PlaceholderPhotoURL},
	}
	if password != "" {
		if err := user.HashPassword(0); err != nil {
			t.Fatalf("hash password: %v", err)
		}
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	return user
}

func seedAdmin(t *testing.T, db *gorm.DB, email, password string) fields.User {
	t.Helper()
	user := seedUser(t, db, email, password)
	if err := db.Model(&user).Update("is_admin", true).Error; err != nil {
		t.Fatalf("promote admin: %v", err)
	}
	user.IsAdmin = true
	return user
}
