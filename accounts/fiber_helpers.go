package accounts

import (
	"encoding/json"
	"strconv"

	"github.com/gofiber/fiber/v2"

	"github.com/adonese/hawiya/apperr"
	"github.com/adonese/hawiya/fields"
)

// bindJSON decodes the body into dst and runs tag validation on it.
func bindJSON(c *fiber.Ctx, dst interface{}) error {
	if len(c.Body()) == 0 {
		return apperr.WithMessage(apperr.ErrBadRequest, "request body is empty")
	}
	if err := json.Unmarshal(c.Body(), dst); err != nil {
		return apperr.Wrap(err, apperr.ErrBadRequest, "malformed request body")
	}
	return fields.ValidateStruct(dst)
}

// errJSON translates a typed error into its status and client payload.
func errJSON(c *fiber.Ctx, err error) error {
	return c.Status(apperr.Status(err)).JSON(apperr.Payload(err))
}

// paramID parses the :id route parameter.
func paramID(c *fiber.Ctx) (uint, error) {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil {
		return 0, apperr.WithMessage(apperr.ErrBadRequest, "invalid user id")
	}
	return uint(id), nil
}
