package handlers

import (
	"net/http"
	"strconv"

	"medidocs/internal/models"
	"medidocs/internal/service"
)

// AuditHandler handles audit trail requests
type AuditHandler struct {
	audit *service.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(audit *service.AuditService) *AuditHandler {
	return &AuditHandler{
		audit: audit,
	}
}

// AuditPage is one page of audit entries
type AuditPage struct {
	Entries []models.AuditEntry `json:"entries"`
	Limit   int                 `json:"limit"`
	Offset  int                 `json:"offset"`
}

// ChainVerification is the result of recomputing a document's audit chain
type ChainVerification struct {
	DocumentID string   `json:"documentId"`
	Valid      bool     `json:"valid"`
	Errors     []string `json:"errors"`
}

// ListAuditLogs lists audit entries newest first
// @Summary List audit entries
// @Description Newest first, filtered by document, user or action (oversight roles only)
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param documentId query string false "Filter by document ID"
// @Param userId query string false "Filter by user ID"
// @Param action query string false "Filter by action"
// @Param limit query int false "Items per page" default(100)
// @Param offset query int false "Items to skip" default(0)
// @Success 200 {object} AuditPage
// @Failure 400 {object} map[string]string "Invalid parameters"
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /audit-logs [get]
func (h *AuditHandler) ListAuditLogs(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	limit, err := intParam(q.Get("limit"), 100)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid limit")
		return
	}
	offset, err := intParam(q.Get("offset"), 0)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid offset")
		return
	}

	filter := service.AuditFilter{
		DocumentID: q.Get("documentId"),
		UserID:     q.Get("userId"),
		Action:     models.AuditAction(q.Get("action")),
		Limit:      limit,
		Offset:     offset,
	}

	entries, err := h.audit.List(r.Context(), filter)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, AuditPage{Entries: entries, Limit: limit, Offset: offset})
}

// VerifyChain recomputes the hash chain of a document
// @Summary Verify a document's audit chain
// @Tags Audit
// @Produce json
// @Security BearerAuth
// @Param documentId path string true "Document ID"
// @Success 200 {object} ChainVerification
// @Failure 401 {object} map[string]string "Unauthorized"
// @Failure 403 {object} map[string]string "Forbidden"
// @Router /audit-logs/{documentId}/verify [get]
func (h *AuditHandler) VerifyChain(w http.ResponseWriter, r *http.Request) {
	documentID := r.PathValue("documentId")

	valid, problems, err := h.audit.VerifyChain(r.Context(), documentID)
	if err != nil {
		respondWithServiceError(w, r, err)
		return
	}

	respondWithJSON(w, http.StatusOK, ChainVerification{DocumentID: documentID, Valid: valid, Errors: problems})
}

func intParam(raw string, def int) (int, error) {
	if raw == "" {
		return def, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, strconv.ErrSyntax
	}
	return v, nil
}
