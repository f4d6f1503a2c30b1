package mcp

import (
	"errors"
	"fmt"
)

// ErrConfirmationRequired indicates a mutating request arrived without an
// explicit user_confirmed=true flag.
var ErrConfirmationRequired = errors.New("user confirmation required")

// checkConfirmation gates every mutating operation. Read-only tools never
// pass through here.
func checkConfirmation(userConfirmed bool) error {
	if !userConfirmed {
		return fmt.Errorf("%w: set user_confirmed=true to proceed", ErrConfirmationRequired)
	}
	return nil
}
