package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"chaindrive/internal/domain"
	"chaindrive/internal/services/account"
	"chaindrive/internal/services/files"
)

var errBadRequest = errors.New("bad request")

// JSONResponse writes payload as JSON with status.
func JSONResponse(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// ErrorResponse maps err onto a status code and writes {"error","kind"}.
func ErrorResponse(w http.ResponseWriter, err error) {
	JSONResponse(w, statusFor(err), map[string]string{
		"error": err.Error(),
		"kind":  domain.KindOf(err).String(),
	})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, errBadRequest),
		errors.Is(err, files.ErrEmptyName),
		errors.Is(err, account.ErrWeakPassphrase),
		errors.Is(err, account.ErrNoPassphrase):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotAuthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, domain.ErrBusy):
		return http.StatusConflict
	case errors.Is(err, domain.ErrKeystoreNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrNoAccount), errors.Is(err, domain.ErrNoKeystore):
		return http.StatusPreconditionFailed
	case errors.Is(err, domain.ErrWrongPassphrase),
		errors.Is(err, domain.ErrMalformedKeystore),
		errors.Is(err, domain.ErrUnrecognizedKeystore),
		errors.Is(err, domain.ErrLegacyDisabled):
		return http.StatusUnprocessableEntity
	}
	switch domain.KindOf(err) {
	case domain.KindAuth:
		return http.StatusUnauthorized
	case domain.KindStorage, domain.KindChain:
		return http.StatusBadGateway
	case domain.KindKeystore:
		return http.StatusUnprocessableEntity
	case domain.KindPrecondition:
		return http.StatusPreconditionFailed
	case domain.KindBusy:
		return http.StatusConflict
	}
	return http.StatusInternalServerError
}
