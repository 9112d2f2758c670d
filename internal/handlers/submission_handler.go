package handlers

import (
	"net/http"

	"medidocs/internal/middleware"
	"medidocs/internal/models"
	"medidocs/internal/service"
)

// SubmissionHandler handles document submission requests
type SubmissionHandler struct {
	submissions *service.SubmissionService
}

// NewSubmissionHandler creates a new submission handler
func NewSubmissionHandler(submissions *service.SubmissionService) *SubmissionHandler {
	return &SubmissionHandler{submissions: submissions}
}

// SignatureVerification is the result of checking a decision signature
type SignatureVerification struct {
	SubmissionID string `json:"submissionId"`
	Valid        bool   `json:"valid"`
}

// Submit creates a submission
// @Summary Submit a document
// @Description Route a document to a reviewer, either directly or to the head of a unit
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body service.SubmitRequest true "Submission"
// @Success 201 {object} models.Submission
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 404 {object} map[string]string "Reviewer not found"
// @Router /submissions [post]
func (h *SubmissionHandler) Submit(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req service.SubmitRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	sub, err := h.submissions.Submit(r.Context(), actor, req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusCreated, sub)
}

// List returns every submission
// @Summary List all submissions
// @Description Oversight roles only
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Submission
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /submissions [get]
func (h *SubmissionHandler) List(w http.ResponseWriter, r *http.Request) {
	subs, err := h.submissions.List(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, subs)
}

// ListMine returns submissions the actor originated
// @Summary List own submissions
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Submission
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /submissions/mine [get]
func (h *SubmissionHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	subs, err := h.submissions.ListByUser(r.Context(), actor.ID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, subs)
}

// ListInbox returns submissions currently addressed to the actor
// @Summary List submissions addressed to me
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Submission
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /submissions/inbox [get]
func (h *SubmissionHandler) ListInbox(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	subs, err := h.submissions.ListToUser(r.Context(), actor.ID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, subs)
}

// ListPending returns pending submissions. Oversight roles see all of them,
// everyone else only those waiting on them.
// @Summary List pending submissions
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Submission
// @Failure 401 {object} map[string]string "Unauthorized"
// @Router /submissions/pending [get]
func (h *SubmissionHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	subs, err := h.submissions.ListPending(r.Context())
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	if !hasAnyRole(actor, service.OversightRoles()) {
		mine := make([]models.Submission, 0, len(subs))
		for _, sub := range subs {
			if sub.ToUserID == actor.ID {
				mine = append(mine, sub)
			}
		}
		subs = mine
	}
	respondWithJSON(w, http.StatusOK, subs)
}

// Get returns a single submission
// @Summary Get submission
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} models.Submission
// @Failure 403 {object} map[string]string "Not a participant"
// @Failure 404 {object} map[string]string "Not found"
// @Router /submissions/{id} [get]
func (h *SubmissionHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	sub, err := h.submissions.Get(r.Context(), r.PathValue("id"), actor)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// UpdateStatus applies a reviewer decision
// @Summary Decide on a submission
// @Description Approve, reject, acknowledge or request revision. Illegal moves answer 409.
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Param request body service.TransitionRequest true "Decision"
// @Success 200 {object} models.Submission
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Not permitted"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Router /submissions/{id}/status [put]
func (h *SubmissionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req service.TransitionRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	sub, err := h.submissions.Transition(r.Context(), r.PathValue("id"), actor, req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// Forward hands a submission to a new holder
// @Summary Forward a submission
// @Tags Submissions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Param request body service.ForwardRequest true "New holder"
// @Success 200 {object} models.Submission
// @Failure 400 {object} map[string]string "Invalid request"
// @Failure 403 {object} map[string]string "Not permitted"
// @Failure 404 {object} map[string]string "Not found"
// @Failure 409 {object} map[string]string "Illegal transition"
// @Router /submissions/{id}/forward [post]
func (h *SubmissionHandler) Forward(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	var req service.ForwardRequest
	if err := decodeJSON(w, r, &req); err != nil {
		respondWithError(w, http.StatusBadRequest, ErrMsgInvalidRequestBody)
		return
	}

	sub, err := h.submissions.Forward(r.Context(), r.PathValue("id"), actor, req)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, sub)
}

// VerifySignature checks the decision signature of a submission
// @Summary Verify decision signature
// @Tags Submissions
// @Produce json
// @Security BearerAuth
// @Param id path string true "Submission ID"
// @Success 200 {object} SignatureVerification
// @Failure 400 {object} map[string]string "Not signed"
// @Failure 403 {object} map[string]string "Not a participant"
// @Failure 404 {object} map[string]string "Not found"
// @Router /submissions/{id}/signature/verify [get]
func (h *SubmissionHandler) VerifySignature(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r)
	if !ok {
		respondWithError(w, http.StatusUnauthorized, ErrMsgUnauthorized)
		return
	}

	id := r.PathValue("id")
	valid, err := h.submissions.VerifySignature(r.Context(), id, actor)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}
	respondWithJSON(w, http.StatusOK, SignatureVerification{SubmissionID: id, Valid: valid})
}

func hasAnyRole(actor models.Actor, roles []models.Role) bool {
	for _, role := range roles {
		if actor.Role == role {
			return true
		}
	}
	return false
}
