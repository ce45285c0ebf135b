package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certifiedsliders/resultclaims/internal/api"
	"github.com/certifiedsliders/resultclaims/internal/claims"
	"github.com/certifiedsliders/resultclaims/internal/database"
	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/logger"
	"github.com/certifiedsliders/resultclaims/internal/review"
	"github.com/certifiedsliders/resultclaims/internal/session"
)

type memorySessions struct {
	sessions map[string]*session.Session
}

func (m *memorySessions) Create(_ context.Context, s session.Session) error {
	m.sessions[s.SessionID] = &s
	return nil
}

func (m *memorySessions) Get(_ context.Context, sessionID string) (*session.Session, error) {
	return m.sessions[sessionID], nil
}

func (m *memorySessions) Delete(_ context.Context, sessionID string) error {
	delete(m.sessions, sessionID)
	return nil
}

type stubOrchestrator struct {
	userID  string
	request claims.TwoLinkRequest
	outcome *claims.Outcome
	err     *claims.Error
}

func (s *stubOrchestrator) SubmitTwoLink(_ context.Context, userID string, req claims.TwoLinkRequest) (*claims.Outcome, *claims.Error) {
	s.userID = userID
	s.request = req
	return s.outcome, s.err
}

type stubIntake struct {
	outcome *claims.Outcome
	err     *claims.Error
}

func (s *stubIntake) Submit(_ context.Context, _ string, _ claims.ManualRequest) (*claims.Outcome, *claims.Error) {
	return s.outcome, s.err
}

type stubSubmissions struct {
	subs      []domain.ProofSubmission
	decideErr error
	decided   domain.SubmissionStatus
}

func (s *stubSubmissions) ListByUser(_ context.Context, _ string, _ int) ([]domain.ProofSubmission, error) {
	return s.subs, nil
}

func (s *stubSubmissions) Decide(_ context.Context, _ string, to domain.SubmissionStatus) error {
	s.decided = to
	return s.decideErr
}

type testServer struct {
	router       http.Handler
	orchestrator *stubOrchestrator
	intake       *stubIntake
	submissions  *stubSubmissions
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	sessions := &memorySessions{sessions: map[string]*session.Session{
		"sess-1": {
			SessionID: "sess-1",
			UserID:    "user-1",
			ExpiresAt: time.Now().Add(time.Hour),
		},
		"sess-stale": {
			SessionID: "sess-stale",
			UserID:    "user-2",
			ExpiresAt: time.Now().Add(-time.Hour),
		},
	}}

	ts := &testServer{
		orchestrator: &stubOrchestrator{outcome: &claims.Outcome{Status: domain.SubmissionAccepted, ResultID: 42}},
		intake:       &stubIntake{outcome: &claims.Outcome{Status: domain.SubmissionPending, ResultID: 7}},
		submissions:  &stubSubmissions{},
	}

	ts.router = api.SetupRouter(logger.NewNop(), sessions, api.Handlers{
		Claims:      api.NewClaimsHandler(ts.orchestrator),
		Manual:      api.NewManualHandler(ts.intake),
		Submissions: api.NewSubmissionsHandler(ts.submissions),
	})

	return ts
}

func (ts *testServer) do(t *testing.T, method, path, token string, body any) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	req.Header.Set("Content-Type", "application/json")

	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)
	return w
}

func TestSubmitTwoLink_OK(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/claims/two-link", "sess-1", jsonBody{
		"profile_url": "https://www.athletic.net/profile/janedoe",
		"result_url":  "https://www.athletic.net/result/AbC123",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ClaimResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.OK)
	assert.Equal(t, "accepted", resp.Status)
	assert.Equal(t, int64(42), resp.ResultID)

	assert.Equal(t, "user-1", ts.orchestrator.userID)
	assert.Equal(t, "https://www.athletic.net/profile/janedoe", ts.orchestrator.request.ProfileURL)
}

type jsonBody = map[string]any

func TestSubmitTwoLink_PipelineFailure(t *testing.T) {
	ts := newTestServer(t)
	ts.orchestrator.outcome = nil
	ts.orchestrator.err = &claims.Error{Code: claims.CodeProfileNotVerified, Message: "profile is not verified"}

	w := ts.do(t, http.MethodPost, "/api/v1/claims/two-link", "sess-1", jsonBody{
		"profile_url": "https://www.athletic.net/profile/janedoe",
		"result_url":  "https://www.athletic.net/result/AbC123",
	})

	require.Equal(t, http.StatusForbidden, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.OK)
	assert.Equal(t, "PROFILE_NOT_VERIFIED", resp.Code)
}

func TestSubmitTwoLink_MalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/claims/two-link", bytes.NewBufferString("{not json"))
	req.Header.Set("Authorization", "Bearer sess-1")
	w := httptest.NewRecorder()
	ts.router.ServeHTTP(w, req)

	require.Equal(t, http.StatusBadRequest, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "BAD_REQUEST", resp.Code)
}

func TestAuth_MissingToken(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/claims/two-link", "", jsonBody{})
	require.Equal(t, http.StatusUnauthorized, w.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "UNAUTHORIZED", resp.Code)
}

func TestAuth_UnknownSession(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/claims/two-link", "sess-unknown", jsonBody{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestAuth_ExpiredSession(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/claims/two-link", "sess-stale", jsonBody{})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestSubmitManual_OK(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/claims/manual", "sess-1", jsonBody{
		"event":    "400m Hurdles",
		"markText": "54.20",
		"season":   "OUTDOOR",
		"proofUrl": "https://example.com/heat-sheet.pdf",
	})

	require.Equal(t, http.StatusOK, w.Code)

	var resp api.ClaimResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "pending", resp.Status)
	assert.Equal(t, int64(7), resp.ResultID)
}

func TestSubmissionsList(t *testing.T) {
	ts := newTestServer(t)
	ts.submissions.subs = []domain.ProofSubmission{
		{ID: "sub-1", Status: domain.SubmissionAccepted},
	}

	w := ts.do(t, http.MethodGet, "/api/v1/submissions", "sess-1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "sub-1")
}

func TestSubmissionDecide(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/submissions/sub-1/decision", "sess-1", jsonBody{
		"decision": "accepted",
	})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, domain.SubmissionAccepted, ts.submissions.decided)
}

func TestSubmissionDecide_InvalidDecision(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodPost, "/api/v1/submissions/sub-1/decision", "sess-1", jsonBody{
		"decision": "maybe",
	})
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestSubmissionDecide_AlreadyDecided(t *testing.T) {
	ts := newTestServer(t)
	ts.submissions.decideErr = review.ErrTerminalState

	w := ts.do(t, http.MethodPost, "/api/v1/submissions/sub-1/decision", "sess-1", jsonBody{
		"decision": "rejected",
	})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestSubmissionDecide_NotFound(t *testing.T) {
	ts := newTestServer(t)
	ts.submissions.decideErr = database.ErrSubmissionNotFound

	w := ts.do(t, http.MethodPost, "/api/v1/submissions/missing/decision", "sess-1", jsonBody{
		"decision": "rejected",
	})
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHealth_NoAuthRequired(t *testing.T) {
	ts := newTestServer(t)

	w := ts.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
