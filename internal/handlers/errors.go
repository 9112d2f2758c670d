package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"medidocs/internal/service"
)

// respondWithServiceError maps workflow errors onto HTTP status codes.
// Anything unrecognized is logged and reported as 500 without its details.
func respondWithServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		validationErr   *service.ValidationError
		notFoundErr     *service.NotFoundError
		authorizationEr *service.AuthorizationError
		transitionErr   *service.IllegalTransitionError
	)

	switch {
	case errors.As(err, &validationErr):
		respondWithError(w, http.StatusBadRequest, validationErr.Error())
	case errors.As(err, &notFoundErr):
		respondWithError(w, http.StatusNotFound, notFoundErr.Error())
	case errors.As(err, &authorizationEr):
		respondWithError(w, http.StatusForbidden, authorizationEr.Error())
	case errors.As(err, &transitionErr):
		respondWithError(w, http.StatusConflict, transitionErr.Error())
	default:
		slog.Error("Request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		respondWithError(w, http.StatusInternalServerError, ErrMsgInternal)
	}
}
