package auth

import (
	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// TOTP scaffolding for a future MFA step. The user schema carries no MFA
// columns yet, so these helpers are exposed but not wired into the login
// flow.

// GenerateMFASecret creates a new TOTP secret for the given account email.
func GenerateMFASecret(email string) (*otp.Key, error) {
	return totp.Generate(totp.GenerateOpts{
		Issuer:      "bankelig",
		AccountName: email,
	})
}

// VerifyMFACode checks a 6-digit TOTP code against the stored secret.
func VerifyMFACode(secret, code string) bool {
	return totp.Validate(code, secret)
}
