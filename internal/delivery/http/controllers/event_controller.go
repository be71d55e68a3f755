package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"gigbook/internal/delivery/http/helpers"
	"gigbook/internal/delivery/http/middleware"
	"gigbook/internal/domain"
)

type EventController struct {
	Logger  *slog.Logger
	Service domain.EventService
}

func NewEventController(logger *slog.Logger, svc domain.EventService) *EventController {
	return &EventController{
		Logger:  logger,
		Service: svc,
	}
}

// ParticipantRequest identifies one requested participant.
type ParticipantRequest struct {
	ProfileID string `json:"profile_id"`
	Kind      string `json:"kind"`
}

// CreateEventRequest is the request body for POST /events.
type CreateEventRequest struct {
	Title           string               `json:"title"`
	Description     *string              `json:"description"`
	StartsAt        time.Time            `json:"starts_at"`
	EndsAt          *time.Time           `json:"ends_at"`
	CreatorKind     string               `json:"creator_kind"`
	VenueProfileID  *string              `json:"venue_profile_id"`
	CustomVenueName *string              `json:"custom_venue_name"`
	Category        *string              `json:"category"`
	Visibility      *string              `json:"visibility"`
	Participants    []ParticipantRequest `json:"participants"`
}

// Validate implements Validator. Returns error messages for required and format rules.
func (c CreateEventRequest) Validate() []string {
	var errs []string
	if c.Title == "" {
		errs = append(errs, "title is required")
	}
	if c.StartsAt.IsZero() {
		errs = append(errs, "starts_at is required")
	}
	if c.EndsAt != nil && !c.EndsAt.After(c.StartsAt) {
		errs = append(errs, "ends_at must be after starts_at")
	}
	if !domain.ProfileKind(c.CreatorKind).Valid() {
		errs = append(errs, "creator_kind must be one of artist, band, venue, representative, producer")
	}
	for _, p := range c.Participants {
		if p.ProfileID == "" {
			errs = append(errs, "participant profile_id is required")
		}
	}
	return errs
}

// CreateEventResponse is the data payload for POST /events (201).
type CreateEventResponse struct {
	Event   *domain.Event          `json:"event"`
	Cascade []domain.CascadeResult `json:"cascade"`
}

// CreateEventSuccessResponse is the success response envelope for POST /events (201).
type CreateEventSuccessResponse struct {
	Data  CreateEventResponse `json:"data"`
	Error *helpers.APIError   `json:"error"`
}

func toParticipants(reqs []ParticipantRequest) []domain.Participant {
	participants := make([]domain.Participant, 0, len(reqs))
	for _, p := range reqs {
		participants = append(participants, domain.Participant{
			ProfileID: p.ProfileID,
			Kind:      domain.ProfileKind(p.Kind),
		})
	}
	return participants
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event with the authenticated profile as creator (always confirmed), runs the conflict check over the requested range, and cascades invitations to the requested participants. Band participants fan out to their active members. Per-participant cascade outcomes are reported in data.cascade; cascade failures do not abort the creation.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param event body CreateEventRequest true "Event fields and requested participants"
// @Success 201 {object} controllers.CreateEventSuccessResponse "data contains the event and per-participant cascade results"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict (details lists the offending events)"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	var req CreateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	profileID, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	event := &domain.Event{
		Title:            req.Title,
		Description:      req.Description,
		StartsAt:         req.StartsAt,
		EndsAt:           req.EndsAt,
		CreatorProfileID: profileID,
		CreatorKind:      domain.ProfileKind(req.CreatorKind),
		VenueProfileID:   req.VenueProfileID,
		CustomVenueName:  req.CustomVenueName,
		Category:         req.Category,
	}
	if req.Visibility != nil {
		event.Visibility = domain.Visibility(*req.Visibility)
	}
	created, cascade, err := c.Service.CreateEvent(r.Context(), event, toParticipants(req.Participants))
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	if cascade == nil {
		cascade = []domain.CascadeResult{}
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, CreateEventResponse{Event: created, Cascade: cascade})
}

// GetEventResponse is the data payload for GET /events/{eventID}.
type GetEventResponse struct {
	Event          *domain.Event           `json:"event"`
	Participations []*domain.Participation `json:"participations"`
}

// GetEvent godoc
// @Summary Get an event with its participations
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains event and participations"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	event, participations, err := c.Service.GetEvent(r.Context(), eventID)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, GetEventResponse{Event: event, Participations: participations})
}

// ListEvents godoc
// @Summary List events for the authenticated profile
// @Description Returns events the profile participates in. The optional status query filters by participation status (pending, confirmed, rejected).
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param status query string false "Participation status filter"
// @Success 200 {object} helpers.APIResponse "data contains the events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	var status *domain.ParticipationStatus
	if s := r.URL.Query().Get("status"); s != "" {
		st := domain.ParticipationStatus(s)
		switch st {
		case domain.ParticipationPending, domain.ParticipationConfirmed, domain.ParticipationRejected:
			status = &st
		default:
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "invalid status filter")
			return
		}
	}
	events, err := c.Service.ListEventsForProfile(r.Context(), profileID, status)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// UpdateEventRequest is the request body for PATCH /events/{eventID}. All
// scalar fields are optional; omitted fields are unchanged. Participants,
// when present, is the full desired participant set; when omitted the
// current set is kept.
type UpdateEventRequest struct {
	Title           *string               `json:"title"`
	Description     *string               `json:"description"`
	StartsAt        *time.Time            `json:"starts_at"`
	EndsAt          *time.Time            `json:"ends_at"`
	VenueProfileID  *string               `json:"venue_profile_id"`
	CustomVenueName *string               `json:"custom_venue_name"`
	Category        *string               `json:"category"`
	Visibility      *string               `json:"visibility"`
	Participants    *[]ParticipantRequest `json:"participants"`
}

// Validate implements Validator.
func (u UpdateEventRequest) Validate() []string {
	var errs []string
	if u.Title != nil && *u.Title == "" {
		errs = append(errs, "title must not be empty")
	}
	if u.Visibility != nil && *u.Visibility != string(domain.VisibilityPublic) && *u.Visibility != string(domain.VisibilityPrivate) {
		errs = append(errs, "visibility must be public or private")
	}
	if u.Participants != nil {
		for _, p := range *u.Participants {
			if p.ProfileID == "" {
				errs = append(errs, "participant profile_id is required")
			}
		}
	}
	return errs
}

// UpdateEventResponse is the data payload for PATCH /events/{eventID}.
// Cascade is present only when new participants were invited.
type UpdateEventResponse struct {
	Event   *domain.Event        `json:"event"`
	Warning *domain.CascadeError `json:"warning,omitempty"`
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Updates event fields and reconciles the participant set. Only the creator may update. The conflict check runs only when the time range changed. Removed participants lose their invitation; existing participants keep their status; the creator is never removable. A partially failed invitation cascade is reported in data.warning with the update preserved.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body UpdateEventRequest true "Fields to update and desired participants"
// @Success 200 {object} helpers.APIResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	var req UpdateEventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	profileID, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}

	var participants []domain.Participant
	if req.Participants != nil {
		participants = toParticipants(*req.Participants)
	} else {
		// Keep the current participant set when the field is omitted.
		_, current, err := c.Service.GetEvent(r.Context(), eventID)
		if err != nil {
			respondServiceError(c.Logger, w, r, err)
			return
		}
		for _, p := range current {
			participants = append(participants, domain.Participant{ProfileID: p.ProfileID})
		}
	}

	upd := domain.EventUpdate{
		Title:           req.Title,
		Description:     req.Description,
		StartsAt:        req.StartsAt,
		EndsAt:          req.EndsAt,
		VenueProfileID:  req.VenueProfileID,
		CustomVenueName: req.CustomVenueName,
		Category:        req.Category,
	}
	if req.Visibility != nil {
		vis := domain.Visibility(*req.Visibility)
		upd.Visibility = &vis
	}

	updated, err := c.Service.UpdateEvent(r.Context(), eventID, profileID, upd, participants)
	if err != nil {
		var cascadeErr *domain.CascadeError
		if errors.As(err, &cascadeErr) && updated != nil {
			// The update stands; report the incomplete cascade alongside it.
			helpers.WriteJSONSuccess(w, http.StatusOK, UpdateEventResponse{Event: updated, Warning: cascadeErr})
			return
		}
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, UpdateEventResponse{Event: updated})
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and cascades to all its participations and invitations. Only the creator may delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status deleted"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not creator)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
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
	if err := c.Service.DeleteEvent(r.Context(), eventID, profileID); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// BlockRangeRequest is the request body for POST /blocks.
type BlockRangeRequest struct {
	Title       string     `json:"title"`
	Reason      string     `json:"reason"`
	StartsAt    time.Time  `json:"starts_at"`
	EndsAt      *time.Time `json:"ends_at"`
	CreatorKind string     `json:"creator_kind"`
}

// Validate implements Validator.
func (b BlockRangeRequest) Validate() []string {
	var errs []string
	if b.Title == "" {
		errs = append(errs, "title is required")
	}
	if b.StartsAt.IsZero() {
		errs = append(errs, "starts_at is required")
	}
	if b.EndsAt != nil && !b.EndsAt.After(b.StartsAt) {
		errs = append(errs, "ends_at must be after starts_at")
	}
	if !domain.ProfileKind(b.CreatorKind).Valid() {
		errs = append(errs, "creator_kind must be one of artist, band, venue, representative, producer")
	}
	return errs
}

// BlockRange godoc
// @Summary Block a date range
// @Description Reserves the profile's time without a booking. Blocks are private, have no other participants, and conflict with existing commitments exactly like a normal event.
// @Tags blocks
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param block body BlockRangeRequest true "Block fields"
// @Success 201 {object} helpers.APIResponse "data contains the created block"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /blocks [post]
func (c *EventController) BlockRange(w http.ResponseWriter, r *http.Request) {
	var req BlockRangeRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	profileID, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	block, err := c.Service.BlockRange(r.Context(), profileID, domain.ProfileKind(req.CreatorKind), req.Title, req.Reason, req.StartsAt, req.EndsAt)
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, block)
}

// Unblock godoc
// @Summary Remove a block
// @Description Deletes a block and its single creator participation. Fails when the event is not a block.
// @Tags blocks
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Block event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains status unblocked"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (not a block)"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /blocks/{eventID} [delete]
func (c *EventController) Unblock(w http.ResponseWriter, r *http.Request) {
	eventID := r.PathValue("eventID")
	if eventID == "" {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "missing eventID")
		return
	}
	if err := c.Service.Unblock(r.Context(), eventID); err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, map[string]string{"status": "unblocked"})
}

// FindConflicts godoc
// @Summary Find schedule conflicts
// @Description Returns the authenticated profile's confirmed commitments overlapping the given range. Pending participations never block scheduling.
// @Tags conflicts
// @Produce json
// @Security BearerAuth
// @Param start query string true "Range start (RFC3339)"
// @Param end query string true "Range end (RFC3339)"
// @Param exclude_event_id query string false "Event ID to exclude"
// @Success 200 {object} helpers.APIResponse "data contains the conflicting events"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /conflicts [get]
func (c *EventController) FindConflicts(w http.ResponseWriter, r *http.Request) {
	profileID, ok := middleware.ProfileIDFromContext(r.Context())
	if !ok {
		helpers.WriteJSONError(w, http.StatusUnauthorized, helpers.ErrCodeUnauthorized, "unauthorized")
		return
	}
	start, err := time.Parse(time.RFC3339, r.URL.Query().Get("start"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "start must be RFC3339")
		return
	}
	end, err := time.Parse(time.RFC3339, r.URL.Query().Get("end"))
	if err != nil {
		helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "end must be RFC3339")
		return
	}
	conflicts, err := c.Service.FindConflicts(r.Context(), profileID, start, end, r.URL.Query().Get("exclude_event_id"))
	if err != nil {
		respondServiceError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, conflicts)
}
