package controller

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/api-sage/open-finance-kit/src/internal/commons"
	"github.com/api-sage/open-finance-kit/src/internal/domain"
	"github.com/api-sage/open-finance-kit/src/internal/logger"
	"github.com/api-sage/open-finance-kit/src/internal/sandbox"
)

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respond[T any](w http.ResponseWriter, r *http.Request, status int, message string, data T, start time.Time) {
	response := commons.SuccessResponse(message, data)
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

func respondError[T any](w http.ResponseWriter, r *http.Request, err error, start time.Time) {
	status, message := statusFor(err)
	logError(r, err, logger.Fields{"status": status})

	response := commons.ErrorResponse[T](message, err.Error())
	writeJSON(w, status, response)
	logResponse(r, status, response, start)
}

// validationError marks request problems found before the bank is asked.
type validationError struct{ err error }

func (e validationError) Error() string { return e.err.Error() }

func (e validationError) Unwrap() error { return e.err }

func statusFor(err error) (int, string) {
	var invalid validationError
	switch {
	case errors.As(err, &invalid):
		return http.StatusBadRequest, "validation failed"
	case errors.Is(err, sandbox.ErrAccountNotFound):
		return http.StatusNotFound, "Account not found"
	case errors.Is(err, sandbox.ErrPaymentNotFound):
		return http.StatusNotFound, "Payment not found"
	case errors.Is(err, sandbox.ErrInvalidOTP):
		return http.StatusBadRequest, "Invalid OTP"
	case errors.Is(err, sandbox.ErrCurrencyMismatch):
		return http.StatusUnprocessableEntity, "Currency mismatch"
	case errors.Is(err, domain.ErrInvalidStatusTransition):
		return http.StatusConflict, "Invalid payment status"
	default:
		return http.StatusInternalServerError, "Internal error"
	}
}
