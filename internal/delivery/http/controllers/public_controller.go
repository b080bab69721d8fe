package controllers

import (
	"errors"
	"log/slog"
	"net/http"

	"eventos/internal/delivery/http/helpers"
	"eventos/internal/domain"
)

// RSVPRequest is the request body for POST /public/events/{eventID}/rsvp.
type RSVPRequest struct {
	Name   string `json:"name" validate:"required,min=2"`
	Email  string `json:"email" validate:"required,email"`
	Status string `json:"status" validate:"omitempty,oneof=PENDING CONFIRMED DECLINED"`
}

// RSVPSuccessResponse is the success response envelope for POST /public/events/{eventID}/rsvp (201).
type RSVPSuccessResponse struct {
	Data  *domain.RSVP      `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// PublicController serves the unauthenticated event page and RSVP form.
type PublicController struct {
	Logger *slog.Logger
	Events domain.EventService
	RSVPs  domain.RSVPService
}

// NewPublicController creates a PublicController.
func NewPublicController(logger *slog.Logger, events domain.EventService, rsvps domain.RSVPService) *PublicController {
	return &PublicController{
		Logger: logger,
		Events: events,
		RSVPs:  rsvps,
	}
}

// GetEventBySlug godoc
// @Summary Get a public event page
// @Tags public
// @Produce json
// @Param slug path string true "Event slug"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /public/events/{slug} [get]
func (c *PublicController) GetEventBySlug(w http.ResponseWriter, r *http.Request) {
	event, err := c.Events.GetPublicEvent(r.Context(), r.PathValue("slug"))
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
			return
		}
		writeInternalError(c.Logger, w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// SubmitRSVP godoc
// @Summary RSVP to an event
// @Description Records a response for the event. Status defaults to CONFIRMED. One RSVP per email per event.
// @Tags public
// @Accept json
// @Produce json
// @Param eventID path string true "Event ID (UUID)"
// @Param body body RSVPRequest true "RSVP data"
// @Success 201 {object} controllers.RSVPSuccessResponse "data contains the created RSVP"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request (validation, already registered, or full)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 429 {object} helpers.APIResponse "error.code: too_many_requests"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /public/events/{eventID}/rsvp [post]
func (c *PublicController) SubmitRSVP(w http.ResponseWriter, r *http.Request) {
	var req RSVPRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	in := domain.RSVPInput{Name: req.Name, Email: req.Email, Status: domain.RSVPStatus(req.Status)}
	rsvp, err := c.RSVPs.SubmitRSVP(r.Context(), r.PathValue("eventID"), in)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
		case errors.Is(err, domain.ErrAlreadyRegistered):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "you have already registered for this event")
		case errors.Is(err, domain.ErrEventFull):
			helpers.WriteJSONError(w, http.StatusBadRequest, helpers.ErrCodeBadRequest, "this event is at capacity")
		default:
			if writeInvalidInput(w, err) {
				return
			}
			writeInternalError(c.Logger, w, r, err)
		}
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, rsvp)
}
