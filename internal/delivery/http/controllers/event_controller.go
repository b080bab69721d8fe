package controllers

import (
	"errors"
	"log/slog"
	"net/http"
	"time"

	"eventos/internal/delivery/http/helpers"
	"eventos/internal/domain"
)

// EventRequest is the request body for POST /events and PATCH /events/{eventID}.
// PATCH replaces every editable field; the slug follows the title.
type EventRequest struct {
	Title       string    `json:"title" validate:"required,min=3"`
	Description *string   `json:"description"`
	Date        time.Time `json:"date" validate:"required"`
	Location    *string   `json:"location"`
	Capacity    *int      `json:"capacity" validate:"omitempty,gt=0"`
	ImageURL    *string   `json:"image_url" validate:"omitempty,http_url"`
}

func (e EventRequest) input() domain.EventInput {
	return domain.EventInput{
		Title:       e.Title,
		Description: e.Description,
		Date:        e.Date,
		Location:    e.Location,
		Capacity:    e.Capacity,
		ImageURL:    e.ImageURL,
	}
}

// EventSuccessResponse is the success response envelope for endpoints returning one event.
type EventSuccessResponse struct {
	Data  *domain.Event     `json:"data"`
	Error *helpers.APIError `json:"error"`
}

// ListEventsSuccessResponse is the success response envelope for GET /events (200).
type ListEventsSuccessResponse struct {
	Data  []*domain.EventWithCount `json:"data"`
	Error *helpers.APIError        `json:"error"`
}

// DeleteEventResponse is the data payload for DELETE /events/{eventID}.
type DeleteEventResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// ListAttendeesResponse is the data payload for GET /events/{eventID}/attendees (200).
type ListAttendeesResponse struct {
	Items      []*domain.RSVP         `json:"items"`
	Pagination helpers.PaginationMeta `json:"pagination"`
}

// ListAttendeesSuccessResponse is the success response envelope for GET /events/{eventID}/attendees (200).
type ListAttendeesSuccessResponse struct {
	Data  ListAttendeesResponse `json:"data"`
	Error *helpers.APIError     `json:"error"`
}

// EventController handles the organizer's event management endpoints.
type EventController struct {
	Logger *slog.Logger
	Events domain.EventService
	RSVPs  domain.RSVPService
}

// NewEventController creates an EventController.
func NewEventController(logger *slog.Logger, events domain.EventService, rsvps domain.RSVPService) *EventController {
	return &EventController{
		Logger: logger,
		Events: events,
		RSVPs:  rsvps,
	}
}

func (c *EventController) writeEventError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		helpers.WriteJSONError(w, http.StatusNotFound, helpers.ErrCodeNotFound, "event not found")
	case errors.Is(err, domain.ErrForbidden):
		helpers.WriteJSONError(w, http.StatusForbidden, helpers.ErrCodeForbidden, "forbidden")
	case errors.Is(err, domain.ErrSlugExhausted), errors.Is(err, domain.ErrSlugTaken):
		helpers.WriteJSONError(w, http.StatusConflict, helpers.ErrCodeConflict, "could not allocate a unique URL for this title, please retry")
	default:
		if writeInvalidInput(w, err) {
			return
		}
		writeInternalError(c.Logger, w, r, err)
	}
}

// CreateEvent godoc
// @Summary Create an event
// @Description Creates an event owned by the caller. The public slug is derived from the title and made unique.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param body body EventRequest true "Event data"
// @Success 201 {object} controllers.EventSuccessResponse "data contains the created event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [post]
func (c *EventController) CreateEvent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Events.CreateEvent(r.Context(), ownerID, req.input())
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusCreated, event)
}

// ListEvents godoc
// @Summary List my events
// @Description Returns the caller's events ordered by date, each with its RSVP count.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Success 200 {object} controllers.ListEventsSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events [get]
func (c *EventController) ListEvents(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	events, err := c.Events.ListEvents(r.Context(), ownerID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, events)
}

// GetEvent godoc
// @Summary Get one of my events
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} controllers.EventSuccessResponse
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [get]
func (c *EventController) GetEvent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	event, err := c.Events.GetEvent(r.Context(), r.PathValue("eventID"), ownerID)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// UpdateEvent godoc
// @Summary Update an event
// @Description Replaces the event's editable fields. A changed title re-derives the slug. Only the owner can update.
// @Tags events
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param body body EventRequest true "Event data"
// @Success 200 {object} controllers.EventSuccessResponse "data contains the updated event"
// @Failure 400 {object} helpers.APIResponse "error.code: bad_request"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 409 {object} helpers.APIResponse "error.code: conflict"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [patch]
func (c *EventController) UpdateEvent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	var req EventRequest
	if !helpers.DecodeAndValidate(w, r, &req) {
		return
	}
	event, err := c.Events.UpdateEvent(r.Context(), r.PathValue("eventID"), ownerID, req.input())
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, event)
}

// DeleteEvent godoc
// @Summary Delete an event
// @Description Deletes the event and its RSVPs. Only the owner can delete.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Success 200 {object} helpers.APIResponse "data contains id and status"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID} [delete]
func (c *EventController) DeleteEvent(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	eventID := r.PathValue("eventID")
	if err := c.Events.DeleteEvent(r.Context(), eventID, ownerID); err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, DeleteEventResponse{ID: eventID, Status: "deleted"})
}

// ListAttendees godoc
// @Summary List an event's RSVPs
// @Description Paginated RSVPs for the event, newest first. Optional search matches name or email (case-insensitive). Only the owner can list.
// @Tags events
// @Produce json
// @Security BearerAuth
// @Param eventID path string true "Event ID (UUID)"
// @Param search query string false "Filter by name or email substring"
// @Param page query int false "Page number (default 1)"
// @Param page_size query int false "Page size (default 20, max 100)"
// @Success 200 {object} controllers.ListAttendeesSuccessResponse "data contains items and pagination"
// @Failure 401 {object} helpers.APIResponse "error.code: unauthorized"
// @Failure 403 {object} helpers.APIResponse "error.code: forbidden (not owner)"
// @Failure 404 {object} helpers.APIResponse "error.code: not_found"
// @Failure 500 {object} helpers.APIResponse "error.code: internal_error"
// @Router /events/{eventID}/attendees [get]
func (c *EventController) ListAttendees(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := requireUserID(w, r)
	if !ok {
		return
	}
	search := helpers.ParseSearch(r)
	params := helpers.ParsePagination(r)
	list, total, err := c.RSVPs.ListAttendees(r.Context(), r.PathValue("eventID"), ownerID, search, params)
	if err != nil {
		c.writeEventError(w, r, err)
		return
	}
	helpers.WriteJSONSuccess(w, http.StatusOK, ListAttendeesResponse{Items: list, Pagination: helpers.NewPaginationMeta(params, total)})
}
