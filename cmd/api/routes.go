package main

import (
	"context"
	"net/http"

	httpSwagger "github.com/swaggo/http-swagger"

	"medidocs/internal/handlers"
	"medidocs/internal/middleware"
	"medidocs/internal/service"
)

// healthCheck reports whether one backing service is usable
type healthCheck func(ctx context.Context) error

// api holds everything the router needs
type api struct {
	authMw      *middleware.AuthMiddleware
	submissions *handlers.SubmissionHandler
	shares      *handlers.ShareHandler
	inbox       *handlers.InboxHandler
	audit       *handlers.AuditHandler
	checks      map[string]healthCheck
	version     string
}

func (a *api) routes() *http.ServeMux {
	mux := http.NewServeMux()

	protected := func(h http.HandlerFunc) http.Handler {
		return a.authMw.Authenticate(h)
	}
	oversight := func(h http.HandlerFunc) http.Handler {
		return a.authMw.Authenticate(middleware.RequireAnyRole(service.OversightRoles()...)(h))
	}

	// Submissions
	mux.Handle("POST /api/v1/submissions", protected(a.submissions.Submit))
	mux.Handle("GET /api/v1/submissions", oversight(a.submissions.List))
	mux.Handle("GET /api/v1/submissions/mine", protected(a.submissions.ListMine))
	mux.Handle("GET /api/v1/submissions/inbox", protected(a.submissions.ListInbox))
	mux.Handle("GET /api/v1/submissions/pending", protected(a.submissions.ListPending))
	mux.Handle("GET /api/v1/submissions/{id}", protected(a.submissions.Get))
	mux.Handle("PUT /api/v1/submissions/{id}/status", protected(a.submissions.UpdateStatus))
	mux.Handle("POST /api/v1/submissions/{id}/forward", protected(a.submissions.Forward))
	mux.Handle("GET /api/v1/submissions/{id}/signature/verify", protected(a.submissions.VerifySignature))

	// Shares
	mux.Handle("POST /api/v1/shares", protected(a.shares.Share))
	mux.Handle("GET /api/v1/shares/sent", protected(a.shares.ListSent))
	mux.Handle("GET /api/v1/shares/inbox", protected(a.shares.ListInbox))
	mux.Handle("GET /api/v1/shares/{id}", protected(a.shares.Get))
	mux.Handle("POST /api/v1/shares/{id}/received", protected(a.shares.MarkReceived))
	mux.Handle("POST /api/v1/shares/{id}/seen", protected(a.shares.MarkSeen))
	mux.Handle("POST /api/v1/shares/{id}/acknowledge", protected(a.shares.Acknowledge))

	// Inbox
	mux.Handle("GET /api/v1/inbox", protected(a.inbox.Get))

	// Audit trail
	mux.Handle("GET /api/v1/audit-logs", oversight(a.audit.ListAuditLogs))
	mux.Handle("GET /api/v1/audit-logs/{documentId}/verify", oversight(a.audit.VerifyChain))

	mux.HandleFunc("GET /health", a.health)

	// Swagger documentation
	mux.Handle("/swagger/", httpSwagger.WrapHandler)

	return mux
}

// health reports the status of every backing service
func (a *api) health(w http.ResponseWriter, r *http.Request) {
	status := http.StatusOK
	checks := make(map[string]string, len(a.checks))
	for name, check := range a.checks {
		if err := check(r.Context()); err != nil {
			checks[name] = "error"
			status = http.StatusServiceUnavailable
			continue
		}
		checks[name] = "ok"
	}

	body := map[string]interface{}{
		"status":  "healthy",
		"version": a.version,
		"checks":  checks,
	}
	if status != http.StatusOK {
		body["status"] = "unhealthy"
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = handlers.JSONResponse(w, body)
}
