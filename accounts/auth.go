package accounts

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/adonese/hawiya/apperr"
	"github.com/adonese/hawiya/fields"
)

// CreateUser registers a new local account.
func (s *Service) CreateUser(c *fiber.Ctx) error {
	var req fields.RegisterRequest
	if err := bindJSON(c, &req); err != nil {
		return errJSON(c, err)
	}
	req.Normalize()
	if err := s.Config.Policy().Check(req.Password); err != nil {
		return errJSON(c, err)
	}

	var existing fields.User
	if err := s.Db.First(&existing, "email = ?", req.Email).Error; err == nil {
		return errJSON(c, apperr.ErrConflict)
	} else if !fields.IsNotFound(err) {
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}

	user := fields.User{
		Username:     req.Username,
		Email:        req.Email,
		Password:     req.Password,
		AuthProvider: fields.ProviderLocal,
		Gender:       req.Gender,
		Level:        req.Level,
		ProfilePhoto: fields.ProfilePhoto{URL: fields.PlaceholderPhotoURL},
	}
	if err := s.hashPassword(&user); err != nil {
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}
	if err := s.Db.Create(&user).Error; err != nil {
		// the unique index catches a concurrent registration that slipped
		// past the pre-check
		if isUniqueViolation(err) {
			return errJSON(c, apperr.ErrConflict)
		}
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}
	return c.Status(http.StatusCreated).JSON(fiber.Map{"message": "you registered successfully, please login"})
}

// LoginHandler authenticates local credentials and issues a token. Unknown
// email, wrong password, and accounts with no local password all fail with
// the exact same response.
func (s *Service) LoginHandler(c *fiber.Ctx) error {
	var req fields.LoginRequest
	if err := bindJSON(c, &req); err != nil {
		return errJSON(c, err)
	}
	req.Normalize()

	user, err := fields.UserByEmail(req.Email, s.Db)
	if err != nil {
		if fields.IsNotFound(err) {
			return errJSON(c, apperr.ErrInvalidCredentials)
		}
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}
	if !s.comparePassword(user, req.Password) {
		return errJSON(c, apperr.ErrInvalidCredentials)
	}

	token, err := s.Auth.GenerateJWT(user.ID, user.IsAdmin)
	if err != nil {
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}
	c.Set("Authorization", token)
	return c.Status(http.StatusOK).JSON(fiber.Map{
		"id":            user.ID,
		"is_admin":      user.IsAdmin,
		"profile_photo": user.ProfilePhoto,
		"token":         token,
	})
}
