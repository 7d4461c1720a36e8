package domain

import "errors"

var (
	ErrNotAuthenticated   = errors.New("not authenticated")
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrInvalidEmail       = errors.New("invalid email format")
	ErrEmailAlreadyExists = errors.New("email already exists")
	ErrPasswordTooShort   = errors.New("password must be at least 6 characters long")
	ErrProfileNotFound    = errors.New("profile not found")
	ErrSessionNotFound    = errors.New("stored session not found")

	ErrUnknownModule    = errors.New("unknown module")
	ErrUnknownStep      = errors.New("unknown step for module")
	ErrProgressNotFound = errors.New("progress record not found")

	ErrStreakNotFound = errors.New("streak record not found")

	ErrUnknownAchievement = errors.New("unknown achievement")

	ErrLayoutNotFound = errors.New("dashboard layout not found")
	ErrUnknownWidget  = errors.New("unknown widget")

	ErrInvalidTradeline = errors.New("invalid tradeline data")

	ErrMissingPrice = errors.New("price id is required")
)
