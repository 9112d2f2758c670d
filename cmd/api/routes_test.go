package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medidocs/internal/config"
	"medidocs/internal/handlers"
	"medidocs/internal/middleware"
	"medidocs/internal/models"
	"medidocs/internal/repository"
	"medidocs/internal/service"
	"medidocs/internal/signing"
	"medidocs/internal/testutil"
)

func newTestAPI(t *testing.T, checks map[string]healthCheck) (*api, *testutil.AuthHelper, *testutil.Fixtures) {
	t.Helper()

	fx := testutil.NewFixtures()
	directory := repository.NewMemoryDirectory(fx.Users()...)
	signer, err := signing.NewLocalSigner([]byte("route-test-signing-secret-0123456"))
	require.NoError(t, err)

	auditService := service.NewAuditService(repository.NewMemoryAuditStore(), nil, nil)
	submissions := service.NewSubmissionService(repository.NewMemorySubmissionStore(), directory, auditService, nil, signer, nil)
	shares := service.NewShareService(repository.NewMemoryShareStore(), directory, auditService, nil, nil)

	authHelper := testutil.NewAuthHelper()
	return &api{
		authMw:      middleware.NewAuthMiddleware(authHelper.Service, directory),
		submissions: handlers.NewSubmissionHandler(submissions),
		shares:      handlers.NewShareHandler(shares),
		inbox:       handlers.NewInboxHandler(service.NewInboxService(submissions, shares)),
		audit:       handlers.NewAuditHandler(auditService),
		checks:      checks,
		version:     "test",
	}, authHelper, fx
}

func TestLeaveRequestFlow(t *testing.T) {
	a, authHelper, fx := newTestAPI(t, nil)
	router := a.routes()

	req := authHelper.CreateAuthenticatedRequest(t, http.MethodPost, "/api/v1/submissions",
		map[string]string{"title": "Leave Request", "toUserId": fx.HOD.ID, "comments": "two weeks in May"}, fx.Staff.Actor())
	resp := testutil.NewTestResponse()
	router.ServeHTTP(resp, req)
	resp.AssertStatusCreated(t)

	var sub models.Submission
	resp.Decode(t, &sub)
	require.NotEmpty(t, sub.ID)

	req = authHelper.CreateAuthenticatedRequest(t, http.MethodGet, "/api/v1/inbox", nil, fx.HOD.Actor())
	resp = testutil.NewTestResponse()
	router.ServeHTTP(resp, req)
	resp.AssertStatusOK(t)
	var inbox service.Inbox
	resp.Decode(t, &inbox)
	assert.Equal(t, 1, inbox.PendingCount)

	req = authHelper.CreateAuthenticatedRequest(t, http.MethodPut, "/api/v1/submissions/"+sub.ID+"/status",
		map[string]interface{}{"status": "approved", "feedback": "enjoy", "sign": true}, fx.HOD.Actor())
	resp = testutil.NewTestResponse()
	router.ServeHTTP(resp, req)
	resp.AssertStatusOK(t)
	resp.Decode(t, &sub)
	assert.Equal(t, models.SubmissionApproved, sub.Status)

	req = authHelper.CreateAuthenticatedRequest(t, http.MethodGet, "/api/v1/audit-logs?documentId="+sub.ID, nil, fx.Admin.Actor())
	resp = testutil.NewTestResponse()
	router.ServeHTTP(resp, req)
	resp.AssertStatusOK(t)
	var page handlers.AuditPage
	resp.Decode(t, &page)
	require.Len(t, page.Entries, 2)
	assert.Equal(t, models.ActionApproved, page.Entries[0].Action)
	assert.Equal(t, models.ActionSent, page.Entries[1].Action)
	assert.Equal(t, page.Entries[1].Hash, page.Entries[0].PrevHash)

	req = authHelper.CreateAuthenticatedRequest(t, http.MethodGet, "/api/v1/audit-logs/"+sub.ID+"/verify", nil, fx.CMD.Actor())
	resp = testutil.NewTestResponse()
	router.ServeHTTP(resp, req)
	resp.AssertStatusOK(t)
	var chain handlers.ChainVerification
	resp.Decode(t, &chain)
	assert.True(t, chain.Valid)
}

func TestRouteGuards(t *testing.T) {
	a, authHelper, fx := newTestAPI(t, nil)
	router := a.routes()

	resp := testutil.NewTestResponse()
	router.ServeHTTP(resp, authHelper.CreateAuthenticatedRequest(t, http.MethodGet, "/api/v1/inbox", nil, fx.Staff.Actor()))
	resp.AssertStatusOK(t)

	req := authHelper.CreateAuthenticatedRequest(t, http.MethodGet, "/api/v1/inbox", nil, fx.Staff.Actor())
	req.Header.Del("Authorization")
	resp = testutil.NewTestResponse()
	router.ServeHTTP(resp, req)
	resp.AssertStatusUnauthorized(t)

	for _, path := range []string{"/api/v1/audit-logs", "/api/v1/audit-logs/doc-1/verify", "/api/v1/submissions"} {
		resp = testutil.NewTestResponse()
		router.ServeHTTP(resp, authHelper.CreateAuthenticatedRequest(t, http.MethodGet, path, nil, fx.Staff.Actor()))
		resp.AssertStatusForbidden(t)
	}

	// the directory, not the token, decides the role
	forged := fx.Staff.Actor()
	forged.Role = models.RoleSuperAdmin
	resp = testutil.NewTestResponse()
	router.ServeHTTP(resp, authHelper.CreateAuthenticatedRequest(t, http.MethodGet, "/api/v1/audit-logs", nil, forged))
	resp.AssertStatusForbidden(t)

	resp = testutil.NewTestResponse()
	router.ServeHTTP(resp, authHelper.CreateAuthenticatedRequest(t, http.MethodGet, "/api/v1/inbox", nil, fx.Inactive.Actor()))
	resp.AssertStatusUnauthorized(t)

	resp = testutil.NewTestResponse()
	router.ServeHTTP(resp, authHelper.CreateAuthenticatedRequest(t, http.MethodDelete, "/api/v1/inbox", nil, fx.Staff.Actor()))
	resp.AssertStatus(t, http.StatusMethodNotAllowed)
}

func TestHealth(t *testing.T) {
	a, _, _ := newTestAPI(t, map[string]healthCheck{
		"database": func(context.Context) error { return nil },
	})

	resp := testutil.NewTestResponse()
	a.routes().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	resp.AssertStatusOK(t)

	var body struct {
		Status  string            `json:"status"`
		Version string            `json:"version"`
		Checks  map[string]string `json:"checks"`
	}
	resp.Decode(t, &body)
	assert.Equal(t, "healthy", body.Status)
	assert.Equal(t, "test", body.Version)
	assert.Equal(t, "ok", body.Checks["database"])

	a.checks["vault"] = func(context.Context) error { return errors.New("vault is sealed") }
	resp = testutil.NewTestResponse()
	a.routes().ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/health", nil))
	resp.AssertStatus(t, http.StatusServiceUnavailable)
	resp.Decode(t, &body)
	assert.Equal(t, "unhealthy", body.Status)
	assert.Equal(t, "error", body.Checks["vault"])
	assert.NotContains(t, resp.Body.String(), "sealed")
}

func TestSeedDirectory(t *testing.T) {
	head := "u-head"
	seed := directorySeed{
		Users: []models.DirectoryUser{
			{ID: head, DisplayName: "Unit Head", Role: models.RoleUnitHead, Department: "Pharmacy", IsActive: true},
			{ID: "u-pharm", DisplayName: "Pharmacist", Role: models.RoleStaff, Department: "Pharmacy", IsActive: true},
		},
		Units: []models.Unit{{Name: "Dispensary", HeadUserID: &head}},
	}
	raw, err := json.Marshal(seed)
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "seed.json")
	require.NoError(t, os.WriteFile(path, raw, 0o600))

	dir := repository.NewMemoryDirectory()
	require.NoError(t, seedDirectory(context.Background(), dir, path))

	unitHead, err := dir.GetUnitHead(context.Background(), "Dispensary")
	require.NoError(t, err)
	require.NotNil(t, unitHead)
	assert.Equal(t, head, unitHead.ID)
	assert.False(t, unitHead.CreatedAt.IsZero())

	members, err := dir.ListByDepartment(context.Background(), "Pharmacy")
	require.NoError(t, err)
	assert.Len(t, members, 2)

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"users":[{"id":"x","role":"janitor"}]}`), 0o600))
	assert.Error(t, seedDirectory(context.Background(), dir, bad))
	assert.Error(t, seedDirectory(context.Background(), dir, filepath.Join(t.TempDir(), "missing.json")))
}

func TestNewSigner(t *testing.T) {
	cfg := &config.Config{Signing: config.SigningConfig{Backend: "none"}}
	signer, check, err := newSigner(context.Background(), cfg)
	require.NoError(t, err)
	assert.Nil(t, signer)
	assert.Nil(t, check)

	cfg.Signing = config.SigningConfig{Backend: "local", Secret: "a-sufficiently-long-secret"}
	signer, _, err = newSigner(context.Background(), cfg)
	require.NoError(t, err)
	require.NotNil(t, signer)

	digest, _, err := signer.Sign(context.Background(), "u-1", []byte("payload"))
	require.NoError(t, err)
	ok, err := signer.Verify(context.Background(), "u-1", []byte("payload"), digest)
	require.NoError(t, err)
	assert.True(t, ok)

	cfg.Signing.Secret = ""
	signer, _, err = newSigner(context.Background(), cfg)
	require.NoError(t, err)
	assert.NotNil(t, signer)

	cfg.Signing.Secret = "short"
	_, _, err = newSigner(context.Background(), cfg)
	assert.ErrorIs(t, err, signing.ErrWeakSecret)
}
