// Package errors contians http errors and other custom errors
package errors

import (
	errs "errors"
	"fmt"

	"github.com/gofiber/fiber/v2"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/venbook/auth/schemas"
)

//revive:disable

var (
	ErrInternalServerError = fmt.Errorf("internal_server_error")
	ErrUnauthorized        = fmt.Errorf("unauthorized")
	ErrBadRequest          = fmt.Errorf("bad_request")
	ErrInvalidOrExpired    = fmt.Errorf("invalid_or_expired_code")
	ErrStorageUnavailable  = fmt.Errorf("storage_unavailable")
	ErrTooManyRequests     = fmt.Errorf("too_many_requests")
	ErrOTPNotFound         = fmt.Errorf("otp_not_found")
	Okay                   = "okay"
)

type res schemas.Res

func InternalServerErr(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(res{
		Status: ErrInternalServerError.Error(),
	})
}

func unauthorized(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusUnauthorized).JSON(res{
		Status: err.Error(),
	})
}

func Unauthorized(c *fiber.Ctx) error {
	return unauthorized(c, ErrUnauthorized)
}

func badrequest(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(res{
		Status: err.Error(),
	})
}

func BadRequest(c *fiber.Ctx) error {
	return badrequest(c, ErrBadRequest)
}

// InvalidOrExpired is the single response for every failed verification, a wrong
// code, an expired code, a consumed code and a code that never existed must not
// be distinguishable from the outside
func InvalidOrExpired(c *fiber.Ctx) error {
	return badrequest(c, ErrInvalidOrExpired)
}

func StorageUnavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(res{
		Status: ErrStorageUnavailable.Error(),
	})
}

func TooManyRequests(c *fiber.Ctx) error {
	return c.Status(fiber.StatusTooManyRequests).JSON(res{
		Status: ErrTooManyRequests.Error(),
	})
}

func Done(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(schemas.Res{
		Status: Okay,
	})
}

//revive:enable

// CheckDBError is a struc that is used to identify the database errors
type CheckDBError struct{}

// DuplicateKey is a function that is used to find wether the the returned postgres error
// is due to a duplicate key entry (A unique key constraint)
func (CheckDBError) DuplicateKey(err error) bool {
	var pgErr *pgconn.PgError
	if errs.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return true
		}
	}

	return false
}
