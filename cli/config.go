package main

import (
	"errors"
	"os"
	"strings"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gopkg.in/yaml.v3"

	"github.com/adonese/hawiya/accounts"
	gateway "github.com/adonese/hawiya/apigateway"
	"github.com/adonese/hawiya/fields"
)

var defaultConfigPaths = []string{"./config.yaml", "../config.yaml"}

// loadConfig reads the yaml config file and applies environment overrides
// for the secrets that should not live on disk.
func loadConfig() (fields.Config, error) {
	var cfg fields.Config

	path := os.Getenv("HAWIYA_CONFIG")
	if path == "" {
		path = firstExistingPath(defaultConfigPaths...)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, err
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, err
		}
		logrusLogger.Printf("Loaded config from %s", path)
	} else if !isTestRun() {
		return cfg, errors.New("config.yaml not found")
	}

	if key := os.Getenv("HAWIYA_JWT_KEY"); key != "" {
		cfg.JWTKey = key
	}
	if id := os.Getenv("GOOGLE_CLIENT_ID"); id != "" {
		cfg.GoogleClientID = id
	}
	if secret := os.Getenv("GOOGLE_CLIENT_SECRET"); secret != "" {
		cfg.GoogleClientSecret = secret
	}
	return cfg, nil
}

func firstExistingPath(paths ...string) string {
	for _, p := range paths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

func isTestRun() bool {
	return strings.HasSuffix(os.Args[0], ".test")
}

// GetMainEngine builds the fiber app with the full middleware chain and the
// route table.
func GetMainEngine(service *accounts.Service, auth *gateway.JWTAuth, cfg fields.Config) *fiber.App {
	route := fiber.New(fiber.Config{DisableStartupMessage: !cfg.IsDebug})

	route.Use(gateway.RequestID())
	route.Use(gateway.Instrumentation())
	route.Use(gateway.Cors(cfg.Cors))
	route.Use(gateway.RequestLogger(logrusLogger, logSampling))

	route.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	authRoutes := route.Group("/api/auth")
	authRoutes.Post("/register", service.CreateUser)
	authRoutes.Post("/login", service.LoginHandler)
	authRoutes.Get("/google", service.GoogleLogin)
	authRoutes.Get("/google/callback", service.GoogleCallback)

	users := route.Group("/api/users")
	users.Get("/profile", auth.AuthMiddleware(), gateway.AdminOnly(), service.GetAllUsers)
	users.Get("/count", auth.AuthMiddleware(), gateway.AdminOnly(), service.CountUsers)
	users.Get("/profile/:id", service.GetUserProfile)
	users.Put("/profile/:id", auth.AuthMiddleware(), gateway.SelfOnly(), service.UpdateUserProfile)
	users.Delete("/profile/:id", auth.AuthMiddleware(), gateway.SelfOrAdmin(), service.DeleteUserProfile)

	return route
}
