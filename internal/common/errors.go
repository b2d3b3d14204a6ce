package common

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5/pgconn"
)

var (
	ErrNotFound       = errors.New("user not found")
	ErrUnauthorized   = errors.New("unauthorized access")
	ErrForbidden      = errors.New("forbidden access")
	ErrBadRequest     = errors.New("bad request")
	ErrValidation     = errors.New("validation failed")
	ErrInternalServer = errors.New("internal server error")

	// Registration workflow errors. Both surface as 400 to match the
	// original frontend contract, even though 409/412 would also fit.
	ErrAdminExists    = errors.New("an admin already exists for this police station")
	ErrNoStationAdmin = errors.New("no admin found for this police station")

	// Login errors. ErrInvalidCredentials covers both unknown email and a
	// wrong password so account existence is not leaked.
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrPendingApproval    = errors.New("your account is pending approval")

	ErrInvalidToken = errors.New("invalid or expired token")
	ErrNotification = errors.New("failed to send notification email")
)

// HTTPStatusFromError maps domain errors to HTTP status codes.
func HTTPStatusFromError(err error) int {
	if err == nil {
		return http.StatusOK
	}
	if errors.Is(err, ErrNotFound) {
		return http.StatusNotFound
	}
	if errors.Is(err, ErrUnauthorized) ||
		errors.Is(err, ErrInvalidCredentials) ||
		errors.Is(err, ErrPendingApproval) ||
		errors.Is(err, ErrInvalidToken) {
		return http.StatusUnauthorized
	}
	if errors.Is(err, ErrForbidden) {
		return http.StatusForbidden
	}
	if errors.Is(err, ErrBadRequest) ||
		errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrAdminExists) ||
		errors.Is(err, ErrNoStationAdmin) ||
		errors.Is(err, ErrNotification) {
		return http.StatusBadRequest
	}

	// Unique violations that slip past the preceding existence read.
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		if pgErr.Code == "23505" {
			return http.StatusBadRequest
		}
	}

	return http.StatusInternalServerError
}

// Errorf creates a new error with formatting, useful for wrapping.
func Errorf(format string, args ...interface{}) error {
	return fmt.Errorf(format, args...)
}
