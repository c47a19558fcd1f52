package utils

import (
	"fmt"

	"github.com/VinukaThejana/go-utils/logger"
	"github.com/resendlabs/resend-go"
	"github.com/venbook/auth/config"
	"github.com/venbook/auth/templates"
)

const (
	resendEmailFrom = "onboarding@resend.dev"
	resendReplyFrom = "onboarding@resend.dev"
)

// Email is a struct that contains email related operations, it is the delivery
// collaborator that carries issued passcodes to the users inbox
type Email struct {
	Env *config.Env
}

// Send is a function that is used to send the passcode to the given email address
func (e *Email) Send(destination, code, purpose string) error {
	emailTemplate, err := templates.Email{}.VerificationCodeTmpl(code, purpose)
	if err != nil {
		return err
	}

	client := resend.NewClient(e.Env.ResendAPIKey)
	params := &resend.SendEmailRequest{
		From:    resendEmailFrom,
		To:      []string{destination},
		Html:    emailTemplate,
		Subject: "Your verification code",
		ReplyTo: resendReplyFrom,
	}

	send, err := client.Emails.Send(params)
	if err != nil {
		return err
	}

	logger.Log(fmt.Sprintf("[ %s ] : Verification code email sent", send.Id))
	return nil
}
