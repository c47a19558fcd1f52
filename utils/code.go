package utils

import (
	"math/rand"
	"strings"
)

const otpLength = 6

// GenerateOTPCode is a function that is used to generate a one time passcode of
// exactly 6 digits, every digit is drawn uniformly from 0-9, collisions across
// calls are accepted because codes are matched together with the identifier and
// the purpose and expire within minutes
func GenerateOTPCode() string {
	var code strings.Builder
	for i := 0; i < otpLength; i++ {
		code.WriteByte(byte('0' + rand.Intn(10)))
	}

	return code.String()
}
