package accounts

import (
	"net/http"

	"github.com/gofiber/fiber/v2"

	"github.com/adonese/hawiya/apperr"
	"github.com/adonese/hawiya/fields"
)

// GetAllUsers lists every account. Admin only; password hashes never
// serialize.
func (s *Service) GetAllUsers(c *fiber.Ctx) error {
	var users []fields.User
	if err := s.Db.Find(&users).Error; err != nil {
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}
	return c.Status(http.StatusOK).JSON(users)
}

// GetUserProfile returns a single public profile.
func (s *Service) GetUserProfile(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errJSON(c, err)
	}
	user, err := fields.UserByID(id, s.Db)
	if err != nil {
		if fields.IsNotFound(err) {
			return errJSON(c, apperr.WithMessage(apperr.ErrNotFound, "User not found"))
		}
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}
	return c.Status(http.StatusOK).JSON(user)
}

// UpdateUserProfile lets an account edit its own profile. A new password
// goes through the same policy and hashing as registration.
func (s *Service) UpdateUserProfile(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errJSON(c, err)
	}
	var req fields.UpdateUserRequest
	if err := bindJSON(c, &req); err != nil {
		return errJSON(c, err)
	}
	req.Normalize()

	user, err := fields.UserByID(id, s.Db)
	if err != nil {
		if fields.IsNotFound(err) {
			return errJSON(c, apperr.WithMessage(apperr.ErrNotFound, "User not found"))
		}
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}

	updates := map[string]interface{}{}
	if req.Username != "" {
		updates["username"] = req.Username
	}
	if req.Email != "" && req.Email != user.Email {
		updates["email"] = req.Email
	}
	if req.Gender != "" {
		updates["gender"] = req.Gender
	}
	if req.Level != 0 {
		updates["level"] = req.Level
	}
	if req.Password != "" {
		if err := s.Config.Policy().Check(req.Password); err != nil {
			return errJSON(c, err)
		}
		tmp := fields.User{Password: req.Password}
		if err := s.hashPassword(&tmp); err != nil {
			return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
		}
		updates["password"] = tmp.Password
	}

	if len(updates) > 0 {
		if err := s.Db.Model(&user).Updates(updates).Error; err != nil {
			if isUniqueViolation(err) {
				return errJSON(c, apperr.ErrConflict)
			}
			return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
		}
	}

	updated, err := fields.UserByID(id, s.Db)
	if err != nil {
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}
	return c.Status(http.StatusOK).JSON(updated)
}

// DeleteUserProfile removes an account. Self or admin.
func (s *Service) DeleteUserProfile(c *fiber.Ctx) error {
	id, err := paramID(c)
	if err != nil {
		return errJSON(c, err)
	}
	user, err := fields.UserByID(id, s.Db)
	if err != nil {
		if fields.IsNotFound(err) {
			return errJSON(c, apperr.WithMessage(apperr.ErrNotFound, "User not found"))
		}
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}
	// hard delete: the email must become reusable immediately
	if err := s.Db.Unscoped().Delete(&user).Error; err != nil {
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}
	return c.Status(http.StatusOK).JSON(fiber.Map{"message": "User deleted successfully"})
}

// CountUsers reports how many accounts exist. Admin only.
func (s *Service) CountUsers(c *fiber.Ctx) error {
	var count int64
	if err := s.Db.Model(&fields.User{}).Count(&count).Error; err != nil {
		return errJSON(c, apperr.Wrap(err, apperr.ErrStorage, ""))
	}
	return c.Status(http.StatusOK).JSON(count)
}
