package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"gigbook/internal/delivery/http/helpers"
	"gigbook/internal/domain"
)

// respondServiceError maps engine errors onto the API envelope. Unknown
// errors are logged and surfaced as internal_error, never swallowed.
func respondServiceError(logger *slog.Logger, w http.ResponseWriter, r *http.Request, err error) {
	var conflictErr *domain.ConflictError
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrInvalidInput):
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, err.Error())
	case errors.Is(err, domain.ErrDuplicateParticipant):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "profile already participates in event")
	case errors.Is(err, domain.ErrAlreadyDecided):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "participation already decided")
	case errors.Is(err, domain.ErrInvitationExpired):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "invitation expired")
	case errors.As(err, &conflictErr):
		helpers.WriteJSONErrorDetails(w, http.StatusConflict, helpers.ErrCodeConflict, "schedule conflict", conflictErr.Conflicts)
	default:
		logger.ErrorContext(r.Context(), "request failed", "path", r.URL.Path, "method", r.Method, "err", err)
		helpers.WriteJSONError(w, http.StatusInternalServerError, helpers.ErrCodeInternalError, err.Error())
	}
}
