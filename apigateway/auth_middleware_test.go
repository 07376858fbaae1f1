package gateway

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
)

func newGateApp(t *testing.T, j *JWTAuth) *fiber.App {
	t.Helper()
	ok := func(c *fiber.Ctx) error {
		p, _ := PrincipalFromCtx(c)
		return c.JSON(fiber.Map{"id": p.ID})
	}
	app := fiber.New()
	app.Get("/me", j.AuthMiddleware(), ok)
	app.Get("/admin", j.AuthMiddleware(), AdminOnly(), ok)
	app.Get("/self/:id", j.AuthMiddleware(), SelfOnly(), ok)
	app.Get("/either/:id", j.AuthMiddleware(), SelfOrAdmin(), ok)
	// a gate stacked without auth must reject rather than panic
	app.Get("/naked-admin", AdminOnly(), ok)
	return app
}

func gateRequest(t *testing.T, app *fiber.App, target, token string) *http.Response {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, target, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := app.Test(req, -1)
	if err != nil {
		t.Fatalf("GET %s: %v", target, err)
	}
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	j := &JWTAuth{Key: []byte("test-secret")}
	app := newGateApp(t, j)
	userToken, _ := j.GenerateJWT(1, false)

	t.Run("missing header", func(t *testing.T) {
		resp := gateRequest(t, app, "/me", "")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		if body["message"] != "no token provided, unauthorized" {
			t.Errorf("message = %q", body["message"])
		}
	})

	t.Run("invalid token", func(t *testing.T) {
		resp := gateRequest(t, app, "/me", "not-a-token")
		if resp.StatusCode != http.StatusUnauthorized {
			t.Fatalf("status = %d, want 401", resp.StatusCode)
		}
		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		if body["message"] != "invalid Token, unauthorized" {
			t.Errorf("message = %q", body["message"])
		}
	})

	t.Run("valid token attaches principal", func(t *testing.T) {
		resp := gateRequest(t, app, "/me", userToken)
		if resp.StatusCode != http.StatusOK {
			t.Fatalf("status = %d, want 200", resp.StatusCode)
		}
		var body map[string]uint
		json.NewDecoder(resp.Body).Decode(&body)
		if body["id"] != 1 {
			t.Errorf("principal id = %d, want 1", body["id"])
		}
	})

	t.Run("bare token without bearer prefix", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", userToken)
		resp, err := app.Test(req, -1)
		if err != nil {
			t.Fatalf("request: %v", err)
		}
		if resp.StatusCode != http.StatusOK {
			t.Errorf("status = %d, want 200", resp.StatusCode)
		}
	})
}

func TestAuthorizationGates(t *testing.T) {
	j := &JWTAuth{Key: []byte("test-secret")}
	app := newGateApp(t, j)
	userToken, _ := j.GenerateJWT(1, false)
	otherToken, _ := j.GenerateJWT(2, false)
	adminToken, _ := j.GenerateJWT(9, true)

	cases := []struct {
		name   string
		target string
		token  string
		want   int
	}{
		{"admin route rejects user", "/admin", userToken, http.StatusForbidden},
		{"admin route admits admin", "/admin", adminToken, http.StatusOK},
		{"admin route without token", "/admin", "", http.StatusUnauthorized},
		{"self route admits owner", "/self/1", userToken, http.StatusOK},
		{"self route rejects other", "/self/1", otherToken, http.StatusForbidden},
		{"self route rejects admin", "/self/1", adminToken, http.StatusForbidden},
		{"self route non-numeric id", "/self/abc", userToken, http.StatusForbidden},
		{"either admits owner", "/either/1", userToken, http.StatusOK},
		{"either admits admin", "/either/1", adminToken, http.StatusOK},
		{"either rejects other", "/either/1", otherToken, http.StatusForbidden},
		{"either without token", "/either/1", "", http.StatusUnauthorized},
		{"gate without auth middleware", "/naked-admin", adminToken, http.StatusUnauthorized},
	}
	for _, tt := range cases {
		t.Run(tt.name, func(t *testing.T) {
			resp := gateRequest(t, app, tt.target, tt.token)
			if resp.StatusCode != tt.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}
}
