// Package accounts implements the hawiya account service: local
// registration and login, the Google sign-in flow with account linking, and
// the profile endpoints behind the authorization gates.
package accounts

import (
	"github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	"gorm.io/gorm"

	gateway "github.com/adonese/hawiya/apigateway"
	"github.com/adonese/hawiya/fields"
)

// Auther issues and verifies bearer tokens for the service.
type Auther interface {
	GenerateJWT(id uint, isAdmin bool) (string, error)
	VerifyJWT(token string) (*gateway.TokenClaims, error)
}

// Service carries the handler dependencies. All fields are set once at
// startup; the service itself holds no per-request state.
type Service struct {
	Db      *gorm.DB
	Config  fields.Config
	Logger  *logrus.Logger
	Auth    Auther
	oauth   *oauth2.Config
	hashSem chan struct{}
}

// New wires a Service. hashSem bounds concurrent bcrypt work so a burst of
// logins cannot stall every other request.
func New(db *gorm.DB, cfg fields.Config, logger *logrus.Logger, auth Auther) *Service {
	workers := cfg.HashWorkers
	if workers <= 0 {
		workers = 1
	}
	return &Service{
		Db:     db,
		Config: cfg,
		Logger: logger,
		Auth:   auth,
		oauth: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes:       []string{"profile", "email"},
			Endpoint:     google.Endpoint,
		},
		hashSem: make(chan struct{}, workers),
	}
}

// hashPassword runs the bcrypt hash under the worker semaphore.
func (s *Service) hashPassword(u *fields.User) error {
	s.hashSem <- struct{}{}
	defer func() { <-s.hashSem }()
	return u.HashPassword(s.Config.BcryptCost)
}

// comparePassword runs the bcrypt comparison under the worker semaphore.
func (s *Service) comparePassword(u fields.User, plain string) bool {
	s.hashSem <- struct{}{}
	defer func() { <-s.hashSem }()
	return u.ComparePassword(plain)
}
