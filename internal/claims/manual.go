package claims

import (
	"context"
	"errors"
	"time"

	"github.com/certifiedsliders/resultclaims/internal/domain"
	"github.com/certifiedsliders/resultclaims/internal/logger"
	"github.com/certifiedsliders/resultclaims/internal/marks"
)

// ManualRequest is a self-reported result. It always enters the lifecycle
// pending and requires an external decision; no page is fetched or parsed.
type ManualRequest struct {
	Event    string   `json:"event" binding:"required"`
	MarkText string   `json:"markText" binding:"required"`
	Timing   *string  `json:"timing"`
	Wind     *float64 `json:"wind"`
	Season   string   `json:"season" binding:"required"`
	MeetName *string  `json:"meetName"`
	MeetDate *string  `json:"meetDate"`
	ProofURL string   `json:"proofUrl" binding:"required"`
}

// PendingResultCreator inserts self-reported rows outside the token gate.
// Only pending rows may pass through here; verified rows always go through
// the token-gated insert.
type PendingResultCreator interface {
	InsertPending(ctx context.Context, result *domain.Result) (int64, error)
}

// ManualIntake handles self-reported results.
type ManualIntake struct {
	results PendingResultCreator
	auditor Auditor
	logger  logger.Interface
}

// NewManualIntake creates a ManualIntake.
func NewManualIntake(results PendingResultCreator, auditor Auditor, log logger.Interface) *ManualIntake {
	return &ManualIntake{results: results, auditor: auditor, logger: log}
}

// Submit validates and stores a self-reported result as pending.
func (m *ManualIntake) Submit(ctx context.Context, userID string, req ManualRequest) (*Outcome, *Error) {
	if req.Event == "" || req.MarkText == "" || req.Season == "" || req.ProofURL == "" {
		return nil, failed(CodeBadRequest, "event, markText, season and proofUrl are required", nil)
	}

	event := marks.NormalizeEvent(req.Event)
	if event == "" {
		return nil, failed(CodeBadRequest, "unrecognized event", nil)
	}

	result := &domain.Result{
		AthleteID: userID,
		Event:     event,
		MarkText:  req.MarkText,
		Wind:      req.Wind,
		Season:    req.Season,
		MeetName:  req.MeetName,
		ProofURL:  req.ProofURL,
		Status:    domain.ResultPending,
		Source:    domain.ProviderDirect,
	}

	if req.Timing != nil {
		t := domain.TimingClass(*req.Timing)
		if t != domain.TimingFAT && t != domain.TimingHand {
			return nil, failed(CodeBadRequest, "timing must be FAT or hand", nil)
		}
		result.Timing = &t
	}

	if req.MeetDate != nil && *req.MeetDate != "" {
		d, err := time.Parse("2006-01-02", *req.MeetDate)
		if err != nil {
			return nil, failed(CodeBadRequest, "meetDate must be YYYY-MM-DD", err)
		}
		result.MeetDate = &d
	}

	if !marks.IsFieldEvent(event) {
		parsed, err := marks.Parse(req.MarkText)
		if err != nil {
			if errors.Is(err, marks.ErrNoMark) {
				return nil, failed(CodeMarkMissing, "mark has no numeric content", err)
			}
			return nil, failed(CodeBadRequest, "unparseable mark", err)
		}

		seconds := parsed.Seconds
		result.MarkSeconds = &seconds
		if result.Timing == nil && parsed.Timing == domain.TimingHand {
			t := parsed.Timing
			result.Timing = &t
		}
		adj := marks.Adjust(event, seconds, result.Timing)
		result.MarkSecondsAdj = &adj
	}

	rowID, err := m.results.InsertPending(ctx, result)
	if err != nil {
		return nil, failed(CodeDBError, "failed to store result", err)
	}

	sub := &domain.ProofSubmission{
		UserID:     userID,
		Provider:   domain.ProviderDirect,
		ExternalID: userID,
		Mode:       domain.ModeManual,
		Status:     domain.SubmissionPending,
		ProfileURL: nil,
		ResultURL:  strPtr(req.ProofURL),
		Payload: domain.JSONBMap{
			"event":    event,
			"markText": req.MarkText,
			"resultId": rowID,
		},
	}
	m.auditor.Record(ctx, sub, nil)

	m.logger.Info("manual result stored",
		logger.String("user_id", userID),
		logger.String("event", event),
		logger.Int64("result_id", rowID))

	return &Outcome{Status: domain.SubmissionPending, ResultID: rowID}, nil
}
