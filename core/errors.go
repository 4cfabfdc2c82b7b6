package core

import (
	"errors"
	"fmt"
)

var (
	ErrAlreadyVerified      = errors.New("already verified")
	ErrNoActiveSession      = errors.New("no active session")
	ErrInvalidSlot          = errors.New("invalid challenge number")
	ErrInvalidChallenge     = errors.New("invalid challenge")
	ErrIncompleteChallenges = errors.New("must complete all challenges")
	ErrNotEligible          = errors.New("must complete challenge first")
	ErrChallengeRequired    = errors.New("challenge required")
	ErrTokenNotFound        = errors.New("no token found")
	ErrTokenExpired         = errors.New("token has expired")
	ErrInvalidToken         = errors.New("invalid token")
	ErrValidation           = errors.New("validation failed")
	ErrStoreOperationFailed = errors.New("store operation failed")
)

// ValidationError describes why user supplied input was rejected
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", ErrValidation, e.Reason)
}

// Is lets errors.Is(err, ErrValidation) match any ValidationError
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}
