package services

import (
	"errors"
	"net/http"

	"github.com/cppla/simpleblog/utils"
)

var (
	// ErrPostNotFound is returned when a post id does not exist.
	ErrPostNotFound = utils.NewAppError(http.StatusNotFound, "post not found")
	// ErrUserNotFound is returned when a user id does not exist.
	ErrUserNotFound = utils.NewAppError(http.StatusNotFound, "user not found")
	// ErrInvalidCredentials is returned by Login for an unknown email or a wrong password.
	ErrInvalidCredentials = utils.NewAppError(http.StatusUnauthorized, "invalid email or password")
	// ErrUnauthorized is returned by Authorize for a missing, unknown or expired token.
	ErrUnauthorized = utils.NewAppError(http.StatusUnauthorized, "unauthorized")
	// ErrEmailTaken is returned by Signup when the email is already registered.
	ErrEmailTaken = utils.NewAppError(http.StatusConflict, "email already exists")

	// ErrSessionNotFound is the session manager's miss; Auth maps it to ErrUnauthorized.
	ErrSessionNotFound = errors.New("session not found")
)
