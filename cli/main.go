package main

import (
	"fmt"

	"github.com/adonese/hawiya/accounts"
	gateway "github.com/adonese/hawiya/apigateway"
	"github.com/adonese/hawiya/store"
)

func main() {
	cfg, err := loadConfig()
	if err != nil {
		logrusLogger.Fatalf("error loading config: %v", err)
	}
	cfg.Defaults()
	configureLogger(cfg)

	if cfg.JWTKey == "" {
		logrusLogger.Fatal("jwt_key is required")
	}

	db, err := store.Open(cfg.DatabasePath, cfg.IsDebug)
	if err != nil {
		logrusLogger.Fatalf("error opening database at %s: %v", cfg.DatabasePath, err)
	}

	auth := &gateway.JWTAuth{Key: []byte(cfg.JWTKey)}
	service := accounts.New(db, cfg, logrusLogger, auth)

	app := GetMainEngine(service, auth, cfg)
	logrusLogger.Printf("hawiya listening on :%d", cfg.Port)
	logrusLogger.Fatal(app.Listen(fmt.Sprintf(":%d", cfg.Port)))
}
