package controllers

import (
	errs "errors"

	"github.com/VinukaThejana/go-utils/logger"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/venbook/auth/errors"
	"github.com/venbook/auth/schemas"
	"github.com/venbook/auth/services"
	"github.com/venbook/auth/validate"
)

// Otp struct contains all the passcode related controllers
type Otp struct {
	Service *services.OTP
}

// SendOTP is a function that is used to issue a passcode to an email address or
// a phone number
func (o *Otp) SendOTP(c *fiber.Ctx) error {
	var payload struct {
		Identifier string `json:"identifier" validate:"required,validate_identifier"`
		Purpose    string `json:"purpose" validate:"omitempty,min=2,max=50"`
	}

	if err := c.BodyParser(&payload); err != nil {
		logger.Error(err)
		return errors.BadRequest(c)
	}

	v := validator.New()
	v.RegisterValidation("validate_identifier", validate.Identifier)
	err := v.Struct(payload)
	if err != nil {
		logger.Error(err)
		return errors.BadRequest(c)
	}

	record, err := o.Service.Send(c.Context(), payload.Identifier, payload.Purpose)
	if err != nil {
		switch {
		case errs.Is(err, errors.ErrTooManyRequests):
			return errors.TooManyRequests(c)
		case errs.Is(err, errors.ErrStorageUnavailable):
			return errors.StorageUnavailable(c)
		case errs.Is(err, errors.ErrBadRequest):
			return errors.BadRequest(c)
		default:
			logger.Error(err)
			return errors.InternalServerErr(c)
		}
	}

	issued := schemas.FilterOtpRecord(record)
	issued.Status = errors.Okay
	return c.Status(fiber.StatusOK).JSON(issued)
}

// VerifyOTP is a function that is used to consume a passcode, every failed
// verification looks the same to the caller regardless of the root cause
func (o *Otp) VerifyOTP(c *fiber.Ctx) error {
	var payload struct {
		Identifier string `json:"identifier" validate:"required,validate_identifier"`
		Code       string `json:"code" validate:"required,validate_code"`
		Purpose    string `json:"purpose" validate:"omitempty,min=2,max=50"`
	}

	if err := c.BodyParser(&payload); err != nil {
		logger.Error(err)
		return errors.BadRequest(c)
	}

	v := validator.New()
	v.RegisterValidation("validate_identifier", validate.Identifier)
	v.RegisterValidation("validate_code", validate.Code)
	err := v.Struct(payload)
	if err != nil {
		logger.Error(err)
		return errors.BadRequest(c)
	}

	ok, err := o.Service.Verify(c.Context(), payload.Identifier, payload.Code, payload.Purpose)
	if err != nil {
		switch {
		case errs.Is(err, errors.ErrStorageUnavailable):
			return errors.StorageUnavailable(c)
		case errs.Is(err, errors.ErrBadRequest):
			return errors.BadRequest(c)
		default:
			logger.Error(err)
			return errors.InternalServerErr(c)
		}
	}

	if !ok {
		return errors.InvalidOrExpired(c)
	}

	return errors.Done(c)
}
