package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/patrol/internal/patrol"
)

const (
	ErrCodeInvalidPayload     = "invalid_payload"
	ErrCodeValidation         = "validation_error"
	ErrCodeUnauthenticated    = "unauthenticated"
	ErrCodeInvalidCredentials = "invalid_credentials"
)

// ErrorResponse is the body of every error response. Code is a patrol error kind or
// one of the ErrCode constants.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// WrongOrderDetails accompanies wrong_order errors.
type WrongOrderDetails struct {
	Expected int `json:"expected"`
	Got      int `json:"got"`
}

// ValidationDetail names one invalid request field.
type ValidationDetail struct {
	Field string `json:"field"`
	Rule  string `json:"rule"`
}

var kindStatus = map[patrol.Kind]int{
	patrol.KindDenied:        http.StatusForbidden,
	patrol.KindTenantFrozen:  http.StatusForbidden,
	patrol.KindNotFound:      http.StatusNotFound,
	patrol.KindWrongOrder:    http.StatusBadRequest,
	patrol.KindUnknownCode:   http.StatusBadRequest,
	patrol.KindNoActiveRun:   http.StatusBadRequest,
	patrol.KindInvalid:       http.StatusBadRequest,
	patrol.KindAlreadyActive: http.StatusConflict,
	patrol.KindConflict:      http.StatusConflict,
	patrol.KindTransient:     http.StatusServiceUnavailable,
}

// StatusOf returns the HTTP status for a patrol error kind.
func StatusOf(kind patrol.Kind) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondErrorWithCode(w http.ResponseWriter, status int, code, message string, details any) {
	respondJSON(w, status, ErrorResponse{Code: code, Message: message, Details: details})
}

// respondError writes a patrol error. Internal faults are logged and hidden.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	var pe *patrol.Error
	if !errors.As(err, &pe) || StatusOf(pe.Kind) == http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("Request failed")
		respondErrorWithCode(w, http.StatusInternalServerError, string(patrol.KindInternal), "internal error", nil)
		return
	}

	var details any
	if pe.Kind == patrol.KindWrongOrder {
		details = WrongOrderDetails{Expected: pe.Expected, Got: pe.Got}
	}

	if pe.Kind == patrol.KindTransient {
		zerolog.Ctx(r.Context()).Warn().Err(err).Msg("Transient failure")
	}

	respondErrorWithCode(w, StatusOf(pe.Kind), string(pe.Kind), pe.Message, details)
}

func respondValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		respondErrorWithCode(w, http.StatusBadRequest, ErrCodeValidation, "validation error", nil)
		return
	}

	details := make([]ValidationDetail, 0, len(verrs))
	for _, fe := range verrs {
		details = append(details, ValidationDetail{Field: fe.Field(), Rule: fe.Tag()})
	}
	respondErrorWithCode(w, http.StatusBadRequest, ErrCodeValidation, "validation error", details)
}
