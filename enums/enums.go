// Package enums contains enums
package enums

const (
	// SysHealth -> denotes the health status of the system
	SysHealth = "health"
	// SysHealthMsg -> denotes the custom health status message of the system
	SysHealthMsg = "system_message"

	// PurposeSignup -> used to denote passcodes issued for account creation
	PurposeSignup = "signup"
	// PurposeLogin -> used to denote passcodes issued for login challenges
	PurposeLogin = "login"
)
