package handlers

import (
	"net/http"

	"medidocs/internal/middleware"
	"medidocs/internal/service"
)

// InboxHandler serves the per-user inbox projection
type InboxHandler struct {
	inbox *service.InboxService
}

// NewInboxHandler creates a new inbox handler
func NewInboxHandler(inbox *service.InboxService) *InboxHandler {
	return &InboxHandler{inbox: inbox}
}

// Get returns the actor's inbox
// @Summary Get inbox
// @Description Submissions and shares addressed to the caller, bucketed by status
// @Tags Inbox
// @Produce json
// @Security BearerAuth
// @Success 200 {object} service.Inbox
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /inbox [get]
func (h *InboxHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	inbox, err := h.inbox.Get(r.Context(), actor)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, inbox)
}
