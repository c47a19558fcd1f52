// Package middleware contains the request middlewares
package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/venbook/auth/config"
	"github.com/venbook/auth/errors"
)

// Admin contains admin related middlewares
type Admin struct {
	Env *config.Env
}

// CheckAdmin is a function that is used to check wether the caller is a Admin user
func (a *Admin) CheckAdmin(c *fiber.Ctx) error {
	var adminToken string
	authorization := c.Get("Authorization")

	if strings.HasPrefix(authorization, "Bearer ") {
		adminToken = strings.TrimPrefix(authorization, "Bearer ")
	} else {
		return errors.Unauthorized(c)
	}

	if adminToken != a.Env.AdminSecret {
		return errors.Unauthorized(c)
	}

	return c.Next()
}
