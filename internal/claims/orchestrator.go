package claims

import (
	"context"
	"errors"
	"time"

	"github.com/certifiedsliders/resultclaims/internal/crossref"
	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/fetcher"
	"github.com/certifiedsliders/resultclaims/internal/identity"
	"github.com/certifiedsliders/resultclaims/internal/logger"
	"github.com/certifiedsliders/resultclaims/internal/marks"
	"github.com/certifiedsliders/resultclaims/internal/proof"
	"github.com/certifiedsliders/resultclaims/internal/review"
)

// TwoLinkRequest is a claim: a profile URL proving ownership and a result
// URL naming the performance, with an optional context page.
type TwoLinkRequest struct {
	ProfileURL string `json:"profile_url" binding:"required"`
	ResultURL  string `json:"result_url" binding:"required"`
	ContextURL string `json:"context_url"`
}

// Outcome is the successful end of a claim.
type Outcome struct {
	Status   domain.SubmissionStatus
	ResultID int64
}

// PageFetcher retrieves one page within the fetch budget.
type PageFetcher interface {
	Fetch(ctx context.Context, rawURL string) (*fetcher.Page, error)
}

// IdentityResolver matches a profile URL against verified identities.
type IdentityResolver interface {
	Resolve(ctx context.Context, userID, profileURL, finalURL string, html []byte) (*domain.ExternalIdentity, error)
}

// CrossValidator proves the result id appears on the claimant's pages.
type CrossValidator interface {
	Validate(ctx context.Context, profileHTML []byte, resultID, contextURL string) (crossref.MatchSource, error)
}

// TokenMinter creates single-use claim tokens.
type TokenMinter interface {
	Mint(ctx context.Context, userID, scope string, ttl time.Duration) (*domain.VerificationToken, error)
}

// ResultCommitter performs the token-gated insert.
type ResultCommitter interface {
	InsertVerified(ctx context.Context, token string, result *domain.Result) (int64, error)
}

// Auditor persists the submission fingerprint after the decision.
type Auditor interface {
	Record(ctx context.Context, sub *domain.ProofSubmission, profileHTML []byte)
}

// ParserSource dispatches result links to provider adapters.
type ParserSource interface {
	ForLink(rawURL string) (proof.Parser, error)
}

// Orchestrator runs the claim pipeline in strict order: fetch, resolve
// identity, cross-validate, parse, normalize, commit, record audit. The
// first failing step ends the claim.
type Orchestrator struct {
	fetcher   PageFetcher
	resolver  IdentityResolver
	parsers   ParserSource
	validator CrossValidator
	tokens    TokenMinter
	results   ResultCommitter
	auditor   Auditor
	policy    review.Policy
	tokenTTL  time.Duration
	logger    logger.Interface
}

// Config wires the orchestrator's collaborators.
type Config struct {
	Fetcher   PageFetcher
	Resolver  IdentityResolver
	Parsers   ParserSource
	Validator CrossValidator
	Tokens    TokenMinter
	Results   ResultCommitter
	Auditor   Auditor
	Policy    review.Policy
	TokenTTL  time.Duration
	Logger    logger.Interface
}

// NewOrchestrator creates an Orchestrator.
func NewOrchestrator(cfg Config) *Orchestrator {
	return &Orchestrator{
		fetcher:   cfg.Fetcher,
		resolver:  cfg.Resolver,
		parsers:   cfg.Parsers,
		validator: cfg.Validator,
		tokens:    cfg.Tokens,
		results:   cfg.Results,
		auditor:   cfg.Auditor,
		policy:    cfg.Policy,
		tokenTTL:  cfg.TokenTTL,
		logger:    cfg.Logger,
	}
}

// SubmitTwoLink executes one claim for an authenticated user. All
// validation that needs no network access happens before the first fetch.
func (o *Orchestrator) SubmitTwoLink(ctx context.Context, userID string, req TwoLinkRequest) (*Outcome, *Error) {
	if req.ProfileURL == "" || req.ResultURL == "" {
		return nil, failed(CodeBadRequest, "profile_url and result_url are required", nil)
	}

	if err := identity.PrecheckProfileURL(req.ProfileURL); err != nil {
		return nil, failed(CodeBadProfileURL, "invalid profile URL", err)
	}

	parser, err := o.parsers.ForLink(req.ResultURL)
	if err != nil {
		return nil, failed(CodeBadResultURL, "invalid result URL", err)
	}

	resultID, err := proof.ResultID(req.ResultURL)
	if err != nil {
		return nil, failed(CodeBadResultURL, "invalid result URL", err)
	}

	profilePage, err := o.fetcher.Fetch(ctx, req.ProfileURL)
	if err != nil {
		return nil, failed(CodeProfileFetchFailed, "unable to load profile page", err)
	}

	matched, err := o.resolver.Resolve(ctx, userID, req.ProfileURL, profilePage.FinalURL, profilePage.HTML)
	if err != nil {
		switch {
		case errors.Is(err, identity.ErrBadProfileURL):
			return nil, failed(CodeBadProfileURL, "profile URL does not name an athlete", err)
		case errors.Is(err, identity.ErrProfileNotVerified):
			return nil, failed(CodeProfileNotVerified, "profile is not verified for this account", err)
		default:
			return nil, failed(CodeDBError, "identity lookup failed", err)
		}
	}

	matchSource, err := o.validator.Validate(ctx, profilePage.HTML, resultID, req.ContextURL)
	if err != nil {
		o.recordRejected(ctx, userID, matched, req, profilePage.HTML, CodeResultNotFound)
		return nil, failed(CodeResultNotFound, "result link not found on the provided profile page", err)
	}

	resultPage, err := o.fetcher.Fetch(ctx, req.ResultURL)
	if err != nil {
		return nil, failed(CodeParseFailed, "unable to load result page", err)
	}

	parsed, err := parser.Parse(resultPage.FinalURL, resultPage.HTML)
	if err != nil {
		code := CodeParseFailed
		if errors.Is(err, proof.ErrMarkMissing) {
			code = CodeMarkMissing
		}
		o.recordRejected(ctx, userID, matched, req, profilePage.HTML, code)
		return nil, failed(code, "result page did not yield a usable mark", err)
	}

	result := buildResult(matched, req, parsed)

	token, err := o.tokens.Mint(ctx, userID, domain.ScopeResultClaim, o.tokenTTL)
	if err != nil {
		return nil, failed(CodeTokenFailed, "failed to authorize result insertion", err)
	}

	status := o.policy.Decide(parsed.Confidence, matchSource == crossref.MatchContext)
	if status != domain.SubmissionAccepted {
		result.Status = domain.ResultPending
	}

	resultRowID, err := o.results.InsertVerified(ctx, token.Token, result)
	if err != nil {
		return nil, failed(CodeResultInsertFailed, "result insertion failed", err)
	}

	// The canonical write has landed; everything below is best-effort
	// enrichment and never rolls it back.
	sub := buildSubmission(userID, matched, req, parsed, result, resultRowID, status)
	o.auditor.Record(ctx, sub, profilePage.HTML)

	o.logger.Info("claim committed",
		logger.String("user_id", userID),
		logger.String("provider", string(matched.Provider)),
		logger.String("event", result.Event),
		logger.String("status", string(status)),
		logger.Int64("result_id", resultRowID))

	return &Outcome{Status: status, ResultID: resultRowID}, nil
}

// recordRejected leaves an audit trail for claims that failed after the
// identity was resolved. Nothing canonical was written, so the write is
// best effort.
func (o *Orchestrator) recordRejected(
	ctx context.Context,
	userID string,
	matched *domain.ExternalIdentity,
	req TwoLinkRequest,
	profileHTML []byte,
	code Code,
) {
	now := time.Now().UTC()
	sub := &domain.ProofSubmission{
		UserID:     userID,
		Provider:   matched.Provider,
		ExternalID: matched.ExternalID,
		Mode:       domain.ModeTwoLink,
		Status:     domain.SubmissionRejected,
		ProfileURL: strPtr(req.ProfileURL),
		ResultURL:  strPtr(req.ResultURL),
		ContextURL: optStrPtr(req.ContextURL),
		Payload:    domain.JSONBMap{"failure_code": string(code)},
		DecidedAt:  &now,
	}
	o.auditor.Record(ctx, sub, profileHTML)
}

// buildResult assembles the canonical row from the parse output. The
// adjusted seconds are always derived here, never supplied by a caller.
func buildResult(matched *domain.ExternalIdentity, req TwoLinkRequest, parsed *proof.Parsed) *domain.Result {
	result := &domain.Result{
		AthleteID:   matched.UserID,
		Event:       parsed.Event,
		MarkText:    parsed.MarkText,
		MarkSeconds: parsed.MarkSeconds,
		MarkMetric:  parsed.MarkMetric,
		Timing:      parsed.Timing,
		Wind:        parsed.Wind,
		Season:      parsed.Season,
		MeetName:    parsed.MeetName,
		MeetDate:    parsed.MeetDate,
		ProofURL:    req.ResultURL,
		Status:      domain.ResultVerified,
		Source:      matched.Provider,
		Confidence:  parsed.Confidence,
	}

	if parsed.MarkSeconds != nil {
		adj := marks.Adjust(parsed.Event, *parsed.MarkSeconds, parsed.Timing)
		result.MarkSecondsAdj = &adj
	}

	return result
}

// buildSubmission assembles the audit record for a decided claim.
func buildSubmission(
	userID string,
	matched *domain.ExternalIdentity,
	req TwoLinkRequest,
	parsed *proof.Parsed,
	result *domain.Result,
	resultRowID int64,
	status domain.SubmissionStatus,
) *domain.ProofSubmission {
	now := time.Now().UTC()

	payload := domain.JSONBMap{
		"event":           result.Event,
		"markText":        result.MarkText,
		"proofConfidence": result.Confidence,
		"resultId":        resultRowID,
	}
	if result.MarkSeconds != nil {
		payload["markSeconds"] = *result.MarkSeconds
	}
	if result.MarkSecondsAdj != nil {
		payload["markSecondsAdj"] = *result.MarkSecondsAdj
	}
	if result.MarkMetric != nil {
		payload["markMetric"] = *result.MarkMetric
	}
	if result.Timing != nil {
		payload["timing"] = string(*result.Timing)
	}
	if result.Wind != nil {
		payload["wind"] = *result.Wind
	}
	if result.MeetName != nil {
		payload["meetName"] = *result.MeetName
	}
	if result.MeetDate != nil {
		payload["meetDate"] = result.MeetDate.Format(time.RFC3339)
	}
	if matched.ExternalNumericID != nil {
		payload["athleteNumericId"] = *matched.ExternalNumericID
	}

	sub := &domain.ProofSubmission{
		UserID:     userID,
		Provider:   matched.Provider,
		ExternalID: matched.ExternalID,
		Mode:       domain.ModeTwoLink,
		Status:     status,
		ProfileURL: strPtr(req.ProfileURL),
		ResultURL:  strPtr(req.ResultURL),
		ContextURL: optStrPtr(req.ContextURL),
		Payload:    payload,
	}

	if status == domain.SubmissionAccepted || status == domain.SubmissionRejected {
		sub.DecidedAt = &now
	}

	return sub
}

func strPtr(s string) *string {
	return &s
}

func optStrPtr(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
