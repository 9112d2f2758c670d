package handlers

import (
	"context"
	"net/http"

	"medidocs/internal/middleware"
	"medidocs/internal/models"
	"medidocs/internal/service"
)

// ShareHandler handles document share requests
type ShareHandler struct {
	shares *service.ShareService
}

// NewShareHandler creates a new share handler
func NewShareHandler(shares *service.ShareService) *ShareHandler {
	return &ShareHandler{shares: shares}
}

// Share sends a document to a colleague or a department
// @Summary Share a document
// @Tags Shares
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.ShareRequest true "Share"
// @Success 201 {object} models.Share
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 404 {object} map[string]string "Recipient not found"
// @Router /shares [post]
func (h *ShareHandler) Share(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req service.ShareRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	share, err := h.shares.Share(r.Context(), actor, req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusCreated, share)
}

// ListSent returns shares the actor sent
// @Summary List sent shares
// @Tags Shares
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (sent, received, seen, acknowledged)"
// @Success 200 {array} models.Share
// @Failure 400 {object} map[string]string "Invalid status"
// @Router /shares/sent [get]
func (h *ShareHandler) ListSent(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	shares, err := h.shares.ListSentBy(r.Context(), actor.ID, models.ShareStatus(r.URL.Query().Get("status")))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, shares)
}

// ListInbox returns shares addressed to the actor or the actor's department
// @Summary List received shares
// @Tags Shares
// @Produce json
// @Security BearerAuth
// @Param status query string false "Filter by status (sent, received, seen, acknowledged)"
// @Success 200 {array} models.Share
// @Failure 400 {object} map[string]string "Invalid status"
// @Router /shares/inbox [get]
func (h *ShareHandler) ListInbox(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	shares, err := h.shares.ListAddressedTo(r.Context(), actor, models.ShareStatus(r.URL.Query().Get("status")))
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, shares)
}

// MarkReceived records delivery of a share
// @Summary Mark share received
// @Tags Shares
// @Produce json
// @Security BearerAuth
// @Param id path string true "Share ID"
// @Success 200 {object} models.Share
// @Failure 403 {object} map[string]string "Not the addressee"
// @Failure 404 {object} map[string]string "Not found"
// @Router /shares/{id}/received [post]
func (h *ShareHandler) MarkReceived(w http.ResponseWriter, r *http.Request) {
	h.withShare(w, r, h.shares.MarkReceived)
}

// MarkSeen records that the addressee opened a share
// @Summary Mark share seen
// @Tags Shares
// @Produce json
// @Security BearerAuth
// @Param id path string true "Share ID"
// @Success 200 {object} models.Share
// @Failure 403 {object} map[string]string "Not the addressee"
// @Failure 404 {object} map[string]string "Not found"
// @Router /shares/{id}/seen [post]
func (h *ShareHandler) MarkSeen(w http.ResponseWriter, r *http.Request) {
	h.withShare(w, r, h.shares.MarkSeen)
}

// Acknowledge records the addressee's acknowledgement
// @Summary Acknowledge share
// @Tags Shares
// @Produce json
// @Security BearerAuth
// @Param id path string true "Share ID"
// @Success 200 {object} models.Share
// @Failure 403 {object} map[string]string "Not the addressee"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Not seen yet"
// @Router /shares/{id}/acknowledge [post]
func (h *ShareHandler) Acknowledge(w http.ResponseWriter, r *http.Request) {
	h.withShare(w, r, h.shares.Acknowledge)
}

type shareStep func(ctx context.Context, id string, actor models.Actor) (*models.Share, error)

func (h *ShareHandler) withShare(w http.ResponseWriter, r *http.Request, step shareStep) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	share, err := step(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, share)
}

// Get returns a single share
// @Summary Get share
// @Tags Shares
// @Produce json
// @Security BearerAuth
// @Param id path string true "Share ID"
// @Success 200 {object} models.Share
// @Failure 403 {object} map[string]string "Not a participant"
// @Failure 404 {object} map[string]string "Not found"
// @Router /shares/{id} [get]
func (h *ShareHandler) Get(w http.ResponseWriter, r *http.Request) {
	h.withShare(w, r, h.shares.Get)
}
