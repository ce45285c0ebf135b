package database_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"

	"github.com/certifiedsliders/resultclaims/internal/database"
	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/review"
)

// submissionColumns lists the columns returned by submission SELECT queries.
var submissionColumns = []string{
	"id", "user_id", "provider", "external_id", "mode", "status", "profile_url",
	"result_url", "context_url", "page_snapshot_hash", "payload", "decided_at", "created_at",
}

func newSubmissionRepo(t *testing.T) (*database.SubmissionRepository, sqlmock.Sqlmock, func()) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("failed to create sqlmock: %v", err)
	}

	db := sqlx.NewDb(mockDB, "postgres")
	repo := database.NewSubmissionRepository(db)

	return repo, mock, func() { mockDB.Close() }
}

func submissionRow(status domain.SubmissionStatus) *sqlmock.Rows {
	return submissionRowWithPayload(status, []byte(`{}`))
}

func submissionRowWithPayload(status domain.SubmissionStatus, payload []byte) *sqlmock.Rows {
	return sqlmock.NewRows(submissionColumns).AddRow(
		"sub-1", "user-1", "athleticnet", "janedoe", "two_link", string(status),
		nil, nil, nil, nil, payload, nil, time.Now(),
	)
}

func TestSubmissionRepository_Create(t *testing.T) {
	repo, mock, cleanup := newSubmissionRepo(t)
	defer cleanup()

	mock.ExpectQuery("INSERT INTO proof_submissions").
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(time.Now()))

	sub := &domain.ProofSubmission{
		UserID:     "user-1",
		Provider:   domain.ProviderAthleticNet,
		ExternalID: "janedoe",
		Mode:       domain.ModeTwoLink,
		Status:     domain.SubmissionAccepted,
		Payload:    domain.JSONBMap{"event": "400H"},
	}

	if err := repo.Create(context.Background(), sub); err != nil {
		t.Fatalf("Create returned error: %v", err)
	}

	if sub.ID == "" {
		t.Error("Create must assign an id")
	}
	if sub.CreatedAt.IsZero() {
		t.Error("Create must set created_at")
	}

	expectationsMet(t, mock)
}

func TestSubmissionRepository_Decide_FromNeedsReview(t *testing.T) {
	repo, mock, cleanup := newSubmissionRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM proof_submissions").
		WithArgs("sub-1").
		WillReturnRows(submissionRow(domain.SubmissionNeedsReview))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE proof_submissions").
		WithArgs("sub-1", domain.SubmissionAccepted, domain.SubmissionNeedsReview).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Decide(context.Background(), "sub-1", domain.SubmissionAccepted); err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}

	expectationsMet(t, mock)
}

func TestSubmissionRepository_Decide_AcceptVerifiesLinkedResult(t *testing.T) {
	repo, mock, cleanup := newSubmissionRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM proof_submissions").
		WithArgs("sub-1").
		WillReturnRows(submissionRowWithPayload(domain.SubmissionNeedsReview, []byte(`{"resultId": 42}`)))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE proof_submissions").
		WithArgs("sub-1", domain.SubmissionAccepted, domain.SubmissionNeedsReview).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE results").
		WithArgs(int64(42), domain.ResultVerified).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Decide(context.Background(), "sub-1", domain.SubmissionAccepted); err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}

	expectationsMet(t, mock)
}

func TestSubmissionRepository_Decide_RejectInvalidatesLinkedResult(t *testing.T) {
	repo, mock, cleanup := newSubmissionRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM proof_submissions").
		WithArgs("sub-1").
		WillReturnRows(submissionRowWithPayload(domain.SubmissionPending, []byte(`{"resultId": 7}`)))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE proof_submissions").
		WithArgs("sub-1", domain.SubmissionRejected, domain.SubmissionPending).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE results").
		WithArgs(int64(7), domain.ResultInvalid).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	if err := repo.Decide(context.Background(), "sub-1", domain.SubmissionRejected); err != nil {
		t.Fatalf("Decide returned error: %v", err)
	}

	expectationsMet(t, mock)
}

func TestSubmissionRepository_Decide_TerminalStateRejected(t *testing.T) {
	repo, mock, cleanup := newSubmissionRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM proof_submissions").
		WithArgs("sub-1").
		WillReturnRows(submissionRow(domain.SubmissionAccepted))

	err := repo.Decide(context.Background(), "sub-1", domain.SubmissionRejected)
	if !errors.Is(err, review.ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState, got %v", err)
	}

	expectationsMet(t, mock)
}

func TestSubmissionRepository_Decide_ConcurrentDecisionLosesRace(t *testing.T) {
	repo, mock, cleanup := newSubmissionRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM proof_submissions").
		WithArgs("sub-1").
		WillReturnRows(submissionRow(domain.SubmissionNeedsReview))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE proof_submissions").
		WithArgs("sub-1", domain.SubmissionRejected, domain.SubmissionNeedsReview).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectRollback()

	err := repo.Decide(context.Background(), "sub-1", domain.SubmissionRejected)
	if !errors.Is(err, review.ErrTerminalState) {
		t.Fatalf("expected ErrTerminalState after losing the race, got %v", err)
	}

	expectationsMet(t, mock)
}

func TestSubmissionRepository_GetByID_NotFound(t *testing.T) {
	repo, mock, cleanup := newSubmissionRepo(t)
	defer cleanup()

	mock.ExpectQuery("SELECT (.+) FROM proof_submissions").
		WithArgs("missing").
		WillReturnRows(sqlmock.NewRows(submissionColumns))

	_, err := repo.GetByID(context.Background(), "missing")
	if !errors.Is(err, database.ErrSubmissionNotFound) {
		t.Fatalf("expected ErrSubmissionNotFound, got %v", err)
	}

	expectationsMet(t, mock)
}
