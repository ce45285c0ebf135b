package claims_test

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/certifiedsliders/resultclaims/internal/claims"
	"github.com/certifiedsliders/resultclaims/internal/crossref"
	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/fetcher"
	"github.com/certifiedsliders/resultclaims/internal/identity"
	"github.com/certifiedsliders/resultclaims/internal/logger"
	"github.com/certifiedsliders/resultclaims/internal/proof"
	"github.com/certifiedsliders/resultclaims/internal/review"
)

type fakeFetcher struct {
	pages   map[string]*fetcher.Page
	errs    map[string]error
	fetched []string
}

func (f *fakeFetcher) Fetch(_ context.Context, rawURL string) (*fetcher.Page, error) {
	f.fetched = append(f.fetched, rawURL)
	if err := f.errs[rawURL]; err != nil {
		return nil, err
	}
	if p := f.pages[rawURL]; p != nil {
		return p, nil
	}
	return nil, fmt.Errorf("%w: no page for %s", fetcher.ErrFetchFailed, rawURL)
}

type fakeResolver struct {
	identity *domain.ExternalIdentity
	err      error
}

func (f *fakeResolver) Resolve(_ context.Context, _, _, _ string, _ []byte) (*domain.ExternalIdentity, error) {
	return f.identity, f.err
}

type fakeValidator struct {
	source crossref.MatchSource
	err    error
}

func (f *fakeValidator) Validate(_ context.Context, _ []byte, _, _ string) (crossref.MatchSource, error) {
	return f.source, f.err
}

type fakeParser struct {
	parsed *proof.Parsed
	err    error
}

func (f *fakeParser) Provider() domain.Provider { return domain.ProviderAthleticNet }

func (f *fakeParser) Parse(_ string, _ []byte) (*proof.Parsed, error) {
	return f.parsed, f.err
}

type fakeParserSource struct {
	parser proof.Parser
	err    error
}

func (f *fakeParserSource) ForLink(_ string) (proof.Parser, error) {
	return f.parser, f.err
}

type fakeTokens struct {
	token *domain.VerificationToken
	err   error
	mints int
}

func (f *fakeTokens) Mint(_ context.Context, userID, scope string, _ time.Duration) (*domain.VerificationToken, error) {
	f.mints++
	if f.err != nil {
		return nil, f.err
	}
	if f.token != nil {
		return f.token, nil
	}
	return &domain.VerificationToken{Token: "tok-1", UserID: userID, Scope: scope}, nil
}

type fakeResults struct {
	inserted *domain.Result
	token    string
	id       int64
	err      error
}

func (f *fakeResults) InsertVerified(_ context.Context, token string, result *domain.Result) (int64, error) {
	f.token = token
	f.inserted = result
	if f.err != nil {
		return 0, f.err
	}
	return f.id, nil
}

type fakeAuditor struct {
	recorded []*domain.ProofSubmission
}

func (f *fakeAuditor) Record(_ context.Context, sub *domain.ProofSubmission, _ []byte) {
	f.recorded = append(f.recorded, sub)
}

const (
	profileURL = "https://www.athletic.net/profile/janedoe"
	resultURL  = "https://www.athletic.net/result/AbC123"
)

type fixture struct {
	fetcher   *fakeFetcher
	resolver  *fakeResolver
	validator *fakeValidator
	parsers   *fakeParserSource
	tokens    *fakeTokens
	results   *fakeResults
	auditor   *fakeAuditor
	orch      *claims.Orchestrator
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	seconds := 53.76
	timing := domain.TimingFAT
	f := &fixture{
		fetcher: &fakeFetcher{pages: map[string]*fetcher.Page{
			profileURL: {HTML: []byte(`<a href="/result/abc123">race</a>`), FinalURL: profileURL},
			resultURL:  {HTML: []byte(`result page`), FinalURL: resultURL},
		}, errs: map[string]error{}},
		resolver: &fakeResolver{identity: &domain.ExternalIdentity{
			UserID:     "user-1",
			Provider:   domain.ProviderAthleticNet,
			ExternalID: "janedoe",
			Verified:   true,
		}},
		validator: &fakeValidator{source: crossref.MatchProfile},
		parsers: &fakeParserSource{parser: &fakeParser{parsed: &proof.Parsed{
			Event:       "400H",
			MarkText:    "53.76",
			MarkSeconds: &seconds,
			Timing:      &timing,
			Season:      "OUTDOOR",
			Confidence:  0.9,
		}}},
		tokens:  &fakeTokens{},
		results: &fakeResults{id: 42},
		auditor: &fakeAuditor{},
	}

	f.orch = claims.NewOrchestrator(claims.Config{
		Fetcher:   f.fetcher,
		Resolver:  f.resolver,
		Parsers:   f.parsers,
		Validator: f.validator,
		Tokens:    f.tokens,
		Results:   f.results,
		Auditor:   f.auditor,
		Policy:    review.Policy{AcceptThreshold: 0.7},
		TokenTTL:  2 * time.Minute,
		Logger:    logger.NewNop(),
	})

	return f
}

func submit(f *fixture) (*claims.Outcome, *claims.Error) {
	return f.orch.SubmitTwoLink(context.Background(), "user-1", claims.TwoLinkRequest{
		ProfileURL: profileURL,
		ResultURL:  resultURL,
	})
}

func TestSubmitTwoLink_Accepted(t *testing.T) {
	f := newFixture(t)

	out, cerr := submit(f)
	require.Nil(t, cerr)
	assert.Equal(t, domain.SubmissionAccepted, out.Status)
	assert.Equal(t, int64(42), out.ResultID)

	require.NotNil(t, f.results.inserted)
	assert.Equal(t, "tok-1", f.results.token)
	assert.Equal(t, domain.ResultVerified, f.results.inserted.Status)
	require.NotNil(t, f.results.inserted.MarkSecondsAdj)
	assert.InDelta(t, 53.76, *f.results.inserted.MarkSecondsAdj, 0.001)

	require.Len(t, f.auditor.recorded, 1)
	sub := f.auditor.recorded[0]
	assert.Equal(t, domain.SubmissionAccepted, sub.Status)
	assert.Equal(t, domain.ModeTwoLink, sub.Mode)
	require.NotNil(t, sub.DecidedAt)
	assert.Equal(t, int64(42), sub.Payload["resultId"])
}

func TestSubmitTwoLink_HandTimingAdjusted(t *testing.T) {
	f := newFixture(t)
	seconds := 54.20
	hand := domain.TimingHand
	f.parsers.parser = &fakeParser{parsed: &proof.Parsed{
		Event:       "400H",
		MarkText:    "54.2h",
		MarkSeconds: &seconds,
		Timing:      &hand,
		Season:      "OUTDOOR",
		Confidence:  0.85,
	}}

	out, cerr := submit(f)
	require.Nil(t, cerr)
	assert.Equal(t, domain.SubmissionAccepted, out.Status)

	require.NotNil(t, f.results.inserted.MarkSeconds)
	assert.InDelta(t, 54.20, *f.results.inserted.MarkSeconds, 0.001)
	require.NotNil(t, f.results.inserted.MarkSecondsAdj)
	assert.InDelta(t, 54.44, *f.results.inserted.MarkSecondsAdj, 0.001)
}

func TestSubmitTwoLink_LowConfidenceNeedsReview(t *testing.T) {
	f := newFixture(t)
	seconds := 53.76
	f.parsers.parser = &fakeParser{parsed: &proof.Parsed{
		Event:       "400H",
		MarkText:    "53.76",
		MarkSeconds: &seconds,
		Season:      "OUTDOOR",
		Confidence:  0.5,
	}}

	out, cerr := submit(f)
	require.Nil(t, cerr)
	assert.Equal(t, domain.SubmissionNeedsReview, out.Status)
	assert.Equal(t, domain.ResultPending, f.results.inserted.Status)

	require.Len(t, f.auditor.recorded, 1)
	assert.Nil(t, f.auditor.recorded[0].DecidedAt, "needs_review is not a decision")
}

func TestSubmitTwoLink_MissingFields(t *testing.T) {
	f := newFixture(t)

	_, cerr := f.orch.SubmitTwoLink(context.Background(), "user-1", claims.TwoLinkRequest{})
	require.NotNil(t, cerr)
	assert.Equal(t, claims.CodeBadRequest, cerr.Code)
	assert.Empty(t, f.fetcher.fetched, "validation failures must precede any fetch")
}

func TestSubmitTwoLink_BadProfileURLBeforeFetch(t *testing.T) {
	f := newFixture(t)

	_, cerr := f.orch.SubmitTwoLink(context.Background(), "user-1", claims.TwoLinkRequest{
		ProfileURL: "https://example.com/profile/janedoe",
		ResultURL:  resultURL,
	})
	require.NotNil(t, cerr)
	assert.Equal(t, claims.CodeBadProfileURL, cerr.Code)
	assert.Empty(t, f.fetcher.fetched)

	// A recognized host with a non-profile path must also fail before
	// any fetch happens.
	_, cerr = f.orch.SubmitTwoLink(context.Background(), "user-1", claims.TwoLinkRequest{
		ProfileURL: "https://www.athletic.net/some/random/page",
		ResultURL:  resultURL,
	})
	require.NotNil(t, cerr)
	assert.Equal(t, claims.CodeBadProfileURL, cerr.Code)
	assert.Empty(t, f.fetcher.fetched)
}

func TestSubmitTwoLink_BadResultURL(t *testing.T) {
	f := newFixture(t)
	f.parsers.err = proof.ErrUnsupportedURL

	_, cerr := f.orch.SubmitTwoLink(context.Background(), "user-1", claims.TwoLinkRequest{
		ProfileURL: profileURL,
		ResultURL:  "https://www.athletic.net/meet/12345",
	})
	require.NotNil(t, cerr)
	assert.Equal(t, claims.CodeBadResultURL, cerr.Code)
	assert.Empty(t, f.fetcher.fetched)
}

func TestSubmitTwoLink_ProfileFetchFailed(t *testing.T) {
	f := newFixture(t)
	f.fetcher.errs[profileURL] = fmt.Errorf("%w: timeout", fetcher.ErrFetchFailed)

	_, cerr := submit(f)
	require.NotNil(t, cerr)
	assert.Equal(t, claims.CodeProfileFetchFailed, cerr.Code)
	assert.Nil(t, f.results.inserted)
}

func TestSubmitTwoLink_ProfileNotVerified(t *testing.T) {
	f := newFixture(t)
	f.resolver.identity = nil
	f.resolver.err = identity.ErrProfileNotVerified

	_, cerr := submit(f)
	require.NotNil(t, cerr)
	assert.Equal(t, claims.CodeProfileNotVerified, cerr.Code)
	assert.Zero(t, f.tokens.mints)
}

func TestSubmitTwoLink_ResultNotFound(t *testing.T) {
	f := newFixture(t)
	f.validator.err = crossref.ErrResultNotFound

	_, cerr := submit(f)
	require.NotNil(t, cerr)
	assert.Equal(t, claims.CodeResultNotFound, cerr.Code)
	assert.Nil(t, f.results.inserted)

	// Rejection still leaves an audit trail.
	require.Len(t, f.auditor.recorded, 1)
	assert.Equal(t, domain.SubmissionRejected, f.auditor.recorded[0].Status)
}

func TestSubmitTwoLink_MarkMissing(t *testing.T) {
	f := newFixture(t)
	f.parsers.parser = &fakeParser{err: fmt.Errorf("%w: no time mark", proof.ErrMarkMissing)}

	_, cerr := submit(f)
	require.NotNil(t, cerr)
	assert.Equal(t, claims.CodeMarkMissing, cerr.Code)
	assert.True(t, errors.Is(cerr, proof.ErrMarkMissing), "the innermost cause must stay visible")
	assert.Zero(t, f.tokens.mints)
}

func TestSubmitTwoLink_TokenFailed(t *testing.T) {
	f := newFixture(t)
	f.tokens.err = errors.New("store unavailable")

	_, cerr := submit(f)
	require.NotNil(t, cerr)
	assert.Equal(t, claims.CodeTokenFailed, cerr.Code)
	assert.Nil(t, f.results.inserted)
}

func TestSubmitTwoLink_InsertFailedOnConsumedToken(t *testing.T) {
	f := newFixture(t)
	f.results.err = errors.New("token already consumed")

	_, cerr := submit(f)
	require.NotNil(t, cerr)
	assert.Equal(t, claims.CodeResultInsertFailed, cerr.Code)
	assert.Empty(t, f.auditor.recorded, "no audit record for a failed commit")
}

func TestErrorHTTPStatus(t *testing.T) {
	assert.Equal(t, 401, claims.CodeUnauthorized.HTTPStatus())
	assert.Equal(t, 403, claims.CodeProfileNotVerified.HTTPStatus())
	assert.Equal(t, 500, claims.CodeTokenFailed.HTTPStatus())
	assert.Equal(t, 500, claims.CodeDBError.HTTPStatus())
	assert.Equal(t, 400, claims.CodeBadProfileURL.HTTPStatus())
	assert.Equal(t, 400, claims.CodeResultNotFound.HTTPStatus())
}
