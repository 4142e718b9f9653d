package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/avetisk/authgate/internal/logger"
	"github.com/avetisk/authgate/internal/model"
	"github.com/avetisk/authgate/internal/service"
)

type errorResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// writeError maps domain errors to HTTP responses. Two rules are load
// bearing: verification failures never reveal whether the phone key exists,
// and a storage failure is a 500, never a 401.
func writeError(w http.ResponseWriter, err error, log *logger.Logger) {
	var rateErr *model.RateLimitError
	if errors.As(err, &rateErr) {
		w.Header().Set("Retry-After", strconv.Itoa(int(rateErr.RetryAfter.Seconds())))
		writeJSON(w, http.StatusTooManyRequests, errorResponse{
			Success: false,
			Message: "too many requests, try again later",
		})
		return
	}

	var verifyErr *service.VerifyError
	if errors.As(err, &verifyErr) {
		switch verifyErr.Result {
		case model.VerifyExhausted:
			writeJSON(w, http.StatusTooManyRequests, errorResponse{
				Success: false,
				Message: "too many attempts, request a new code",
			})
		case model.VerifyExpired:
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Success: false,
				Message: "code expired, request a new one",
			})
		default:
			// notFound and mismatch share one message: responses must not
			// confirm whether a code was ever issued for the number.
			writeJSON(w, http.StatusUnauthorized, errorResponse{
				Success: false,
				Message: "invalid code",
			})
		}
		return
	}

	switch {
	case errors.Is(err, model.ErrValidation):
		writeJSON(w, http.StatusBadRequest, errorResponse{Success: false, Message: err.Error()})
	case errors.Is(err, model.ErrNotFound), errors.Is(err, model.ErrSessionExpired):
		writeJSON(w, http.StatusUnauthorized, errorResponse{Success: false, Message: "not authenticated"})
	case errors.Is(err, model.ErrStorage):
		log.Error("storage failure", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Message: "internal server error"})
	default:
		log.Error("unhandled error", "error", err.Error())
		writeJSON(w, http.StatusInternalServerError, errorResponse{Success: false, Message: "internal server error"})
	}
}
