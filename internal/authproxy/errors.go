package authproxy

import (
	"errors"
	"fmt"
	"strings"
)

// Provider error codes, as reported by the hosted identity service.
const (
	CodeEmailExists        = "EMAIL_EXISTS"
	CodeInvalidEmail       = "INVALID_EMAIL"
	CodeWeakPassword       = "WEAK_PASSWORD"
	CodeEmailNotFound      = "EMAIL_NOT_FOUND"
	CodeInvalidPassword    = "INVALID_PASSWORD"
	CodeInvalidCredentials = "INVALID_LOGIN_CREDENTIALS"
	CodeUserDisabled       = "USER_DISABLED"
	CodeTooManyAttempts    = "TOO_MANY_ATTEMPTS_TRY_LATER"
)

// Operations a ProviderError can come from.
const (
	OpSignUp = "signup"
	OpSignIn = "signin"
)

// ErrInvalidToken is returned by VerifySession for any token that does not verify.
var ErrInvalidToken = errors.New("Invalid token")

// ProviderError carries the provider's error code for a failed sign-up or sign-in.
type ProviderError struct {
	Op     string
	Code   string
	Status int
	Err    error
}

func (e *ProviderError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Code, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Code)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// Message is the text shown to the user for this error.
func (e *ProviderError) Message() string {
	return UserMessage(e.Op, e.Code)
}

// UserMessage maps a provider code to the user-facing string for op.
func UserMessage(op, code string) string {
	switch code {
	case CodeEmailExists:
		return "Email already in use"
	case CodeInvalidEmail:
		return "Invalid email address"
	case CodeWeakPassword:
		return "Password should be at least 6 characters"
	case CodeEmailNotFound, CodeInvalidPassword, CodeInvalidCredentials:
		return "Invalid email or password"
	case CodeUserDisabled:
		return "This account has been disabled"
	case CodeTooManyAttempts:
		return "Too many attempts, please try again later"
	}
	if op == OpSignIn {
		return "Failed to sign in"
	}
	return "Failed to sign up"
}

// parseCode extracts the bare code from messages such as
// "WEAK_PASSWORD : Password should be at least 6 characters".
func parseCode(message string) string {
	message = strings.TrimSpace(message)
	if i := strings.IndexAny(message, " :"); i >= 0 {
		message = message[:i]
	}
	return message
}

// AsProviderError unwraps err into a *ProviderError when possible.
func AsProviderError(err error) (*ProviderError, bool) {
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe, true
	}
	return nil, false
}
