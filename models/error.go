package models

import "errors"

// ErrorMessageResponse returns the error message response struct
type ErrorMessageResponse struct {
	Response MessageError
}

// MessageError contains the inner details for the error message response
type MessageError struct {
	Message string
	Error   string
}

// ErrorResponse is the envelope used by the admin endpoints
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
}

// Domain errors. Handlers map these to HTTP status codes in one place;
// nothing below the handler layer writes HTTP responses.
var (
	// ErrValidation covers malformed input: bad coordinates, missing
	// required fields, non-positive point amounts.
	ErrValidation = errors.New("validation failed")

	// ErrNotFound is returned when a referenced report, user, reward or
	// redemption does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidStateTransition is returned when a report operation is
	// attempted against a status that does not allow it.
	ErrInvalidStateTransition = errors.New("invalid state transition")

	// ErrAlreadyAwarded is returned when points have already been awarded
	// for a completed report.
	ErrAlreadyAwarded = errors.New("points already awarded")

	// ErrInsufficientPoints is returned when a deduction or redemption
	// exceeds the user's balance.
	ErrInsufficientPoints = errors.New("insufficient points")

	// ErrRewardUnavailable is returned when a reward is inactive, outside
	// its validity window, or out of stock.
	ErrRewardUnavailable = errors.New("reward unavailable")

	// ErrAlreadyUsed is returned when a redemption code has already been
	// marked used.
	ErrAlreadyUsed = errors.New("redemption already used")

	// ErrRedemptionExpired is returned when a redemption code is past its
	// expiry.
	ErrRedemptionExpired = errors.New("redemption expired")

	// ErrPermissionDenied is returned when the acting collector is not the
	// one assigned to the report.
	ErrPermissionDenied = errors.New("permission denied")
)
