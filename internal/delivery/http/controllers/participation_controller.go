package controllers

import (
	"log/slog"
	"net/http"

	"gigbook/internal/delivery/http/helpers"
	"gigbook/internal/delivery/http/middleware"
	"gigbook/internal/domain"
)

type ParticipationController struct {
	Logger  *slog.Logger
	Service domain.ParticipationService
}

func NewParticipationController(logger *slog.Logger, svc domain.ParticipationService) *ParticipationController {
	return &ParticipationController{
		Logger:  logger,
		Service: svc,
	}
}

// Accept godoc
// @Summary Accept an invitation
// @Description Confirms the authenticated profile's pending participation. Conflicts are re-checked at acceptance time against the profile's current confirmed commitments; on conflict the participation stays pending and the offending events are returned. Expired invitations cannot be accepted.
// @Tags participations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status confirmed"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (schedule conflict, already decided, or expired)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/accept [post]
func (c *ParticipationController) Accept(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	profileID, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.Accept(r.Context(), eventID, profileID); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": string(domain.ParticipationConfirmed)})
}

// RejectRequest is the optional request body for POST /events/{eventID}/reject.
type RejectRequest struct {
	Reason *string `json:"reason"`
}

// Validate implements Validator.
func (rr RejectRequest) Validate() []string {
	return nil
}

// Reject godoc
// @Summary Reject an invitation
// @Description Rejects the authenticated profile's pending participation, with an optional reason recorded on the invitation.
// @Tags participations
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RejectRequest false "Optional rejection reason"
// @Success 200 {object} helpers.APIResponse "data contains status rejected"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already decided)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/reject [post]
func (c *ParticipationController) Reject(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	profileID, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var req RejectRequest
	if r.ContentLength > 0 {
		if !helpers.DecodeAndValidate(w, r, &req) {
			return
		}
	}
	if err := c.Service.Reject(r.Context(), eventID, profileID, req.Reason); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": string(domain.ParticipationRejected)})
}

// RequestToJoin godoc
// @Summary Request to join an event
// @Description Creates a pending participation for the authenticated profile on an event it was not invited to, recorded as a join request for the creator to act on. Blocks cannot be joined.
// @Tags participations
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 201 {object} helpers.APIResponse "data contains status pending"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (block, or creator joining own event)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (already a participant)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/join [post]
func (c *ParticipationController) RequestToJoin(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	profileID, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	if err := c.Service.RequestToJoin(r.Context(), eventID, profileID); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, map[string]string{"status": string(domain.ParticipationPending)})
}
