package controllers

import (
	errs "errors"

	"github.com/gofiber/fiber/v2"
	"github.com/venbook/auth/errors"
	"github.com/venbook/auth/schemas"
	"github.com/venbook/auth/services"
)

// Admin is a struct that contains all the admin related controllers
type Admin struct {
	Service *services.OTP
}

// CleanupExpiredOTP is a fucntion that is used to delete expired passcodes from the active store
func (a *Admin) CleanupExpiredOTP(c *fiber.Ctx) error {
	removed, err := a.Service.Cleanup(c.Context())
	if err != nil {
		if errs.Is(err, errors.ErrStorageUnavailable) {
			return errors.StorageUnavailable(c)
		}
		return errors.InternalServerErr(c)
	}

	return c.Status(fiber.StatusOK).JSON(schemas.CleanupResult{
		Status:  errors.Okay,
		Removed: removed,
	})
}
