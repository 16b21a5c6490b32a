package types

import "errors"

var (
	ErrPickupNotFound = errors.New("pickup not found")
	ErrUserNotFound   = errors.New("user not found")
	ErrRewardNotFound = errors.New("reward item not found")

	// ErrStateConflict means a precondition on the current pickup status
	// failed, including a lost acceptance or verification race.
	ErrStateConflict = errors.New("pickup is not in the required state")

	// ErrUnauthorized means the caller lacks rights for the requested
	// transition, e.g. verifying someone else's pickup.
	ErrUnauthorized = errors.New("caller is not permitted to perform this operation")

	ErrInsufficientPoints = errors.New("insufficient points for this redemption")

	// ErrValidation covers malformed input caught before any store call.
	ErrValidation = errors.New("invalid input")

	ErrAssistantUnavailable = errors.New("assistant is unavailable")
)
