// Package validate checks required-field presence and consistency before any
// request leaves the client. Each check reports the first failing field in a
// fixed order, so the message shown to the user is deterministic. The error
// text is rendered verbatim in the form's status region.
package validate

import "errors"

var (
	ErrLoginFields     = errors.New("Please enter both User ID and Password")
	ErrSignupFields    = errors.New("All fields are required")
	ErrRecoveryUserID  = errors.New("Please enter User ID")
	ErrResetFields     = errors.New("Please fill in both password fields")
	ErrPasswordsDiffer = errors.New("Passwords do not match")
	ErrLockFields      = errors.New("Please enter a password and select a file")
	ErrPasswordMissing = errors.New("Please enter a password")
)

// Login requires a non-empty user id and password.
func Login(userID, password string) error {
	if userID == "" || password == "" {
		return ErrLoginFields
	}
	return nil
}

// Signup requires user id, password, security question and answer.
func Signup(userID, password, securityQuestion, securityAnswer string) error {
	if userID == "" || password == "" || securityQuestion == "" || securityAnswer == "" {
		return ErrSignupFields
	}
	return nil
}

// RecoveryUserID guards the first forgot-password step.
func RecoveryUserID(userID string) error {
	if userID == "" {
		return ErrRecoveryUserID
	}
	return nil
}

// ResetPassword requires both password fields and that they match. The
// presence check runs before the match check, so the mismatch message is only
// ever reported for two non-empty values.
func ResetPassword(newPassword, confirmPassword string) error {
	if newPassword == "" || confirmPassword == "" {
		return ErrResetFields
	}
	if newPassword != confirmPassword {
		return ErrPasswordsDiffer
	}
	return nil
}

// Lock requires a selected file and a password.
func Lock(fileName, password string) error {
	if fileName == "" || password == "" {
		return ErrLockFields
	}
	return nil
}

// VaultPassword guards the list and recycle-bin views.
func VaultPassword(password string) error {
	if password == "" {
		return ErrPasswordMissing
	}
	return nil
}
