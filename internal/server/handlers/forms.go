package handlers

import (
	"context"
	"errors"
	"math"
	"net/http"
	"strconv"

	gferrors "github.com/fulmenhq/gofulmen/errors"
	"go.uber.org/zap"

	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/core/engine"
	"github.com/procoachmastery/website/internal/core/validate"
	apperrors "github.com/procoachmastery/website/internal/errors"
	"github.com/procoachmastery/website/internal/i18n"
	"github.com/procoachmastery/website/internal/metrics"
	"github.com/procoachmastery/website/internal/observability"
	"github.com/procoachmastery/website/internal/server/middleware"
)

// DefaultBodyLimit caps form request bodies.
const DefaultBodyLimit int64 = 64 << 10

// Submitter runs one submission through the intake pipeline.
type Submitter interface {
	Submit(ctx context.Context, req engine.IntakeRequest) core.Outcome
}

// FormHandler serves the public form API.
type FormHandler struct {
	Intake    Submitter
	BodyLimit int64
}

// NewFormHandler returns a handler with the default body limit.
func NewFormHandler(intake Submitter) *FormHandler {
	return &FormHandler{Intake: intake, BodyLimit: DefaultBodyLimit}
}

// SubmitResponse is the success body for both forms.
type SubmitResponse struct {
	OK bool `json:"ok"`
}

// Contact handles POST /api/contact.
func (h *FormHandler) Contact(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, core.FormContact)
}

// Waitlist handles POST /api/waitlist.
func (h *FormHandler) Waitlist(w http.ResponseWriter, r *http.Request) {
	h.serve(w, r, core.FormWaitlist)
}

func (h *FormHandler) serve(w http.ResponseWriter, r *http.Request, form core.FormKind) {
	locale := i18n.FromRequest(r)

	if h == nil || h.Intake == nil {
		envelope := apperrors.WrapInternal(r.Context(), errors.New("intake not configured"), "form intake unavailable")
		apperrors.RespondWithMessage(w, r, envelope, i18n.Text(locale, i18n.KeyInternalError))
		return
	}

	limit := h.BodyLimit
	if limit <= 0 {
		limit = DefaultBodyLimit
	}

	outcome := h.Intake.Submit(r.Context(), engine.IntakeRequest{
		Form:     form,
		ClientID: middleware.ClientID(r),
		Body:     http.MaxBytesReader(w, r.Body, limit),
	})

	logOutcome(r, outcome)
	metrics.RecordOutcome(outcome)

	switch outcome.Status {
	case core.OutcomeAccepted, core.OutcomeDiscarded:
		writeJSON(w, http.StatusOK, SubmitResponse{OK: true})

	case core.OutcomeRateLimited:
		if outcome.Decision != nil {
			w.Header().Set("Retry-After", retryAfterSeconds(outcome.Decision))
		}
		envelope := apperrors.WrapWithContext(r.Context(), apperrors.CodeRateLimited, nil, "rate limit exceeded",
			map[string]interface{}{
				"form":      string(form),
				"client_id": outcome.ClientID,
			})
		apperrors.RespondWithMessage(w, r, envelope, i18n.Text(locale, i18n.KeyRateLimited))

	case core.OutcomeInvalid:
		apperrors.RespondWithMessage(w, r, invalidEnvelope(r, form, outcome.Err), i18n.Text(locale, i18n.KeyInvalidInput))

	default:
		envelope := apperrors.WrapInternal(r.Context(), outcome.Err, "form submission failed")
		apperrors.RespondWithMessage(w, r, envelope, i18n.Text(locale, i18n.KeyInternalError))
	}
}

func invalidEnvelope(r *http.Request, form core.FormKind, err error) *gferrors.ErrorEnvelope {
	var fieldErrs validate.Errors
	if errors.As(err, &fieldErrs) {
		return apperrors.WrapWithContext(r.Context(), apperrors.CodeValidationFailed, err, "submission failed validation",
			map[string]interface{}{
				"form":   string(form),
				"fields": fieldErrs.Fields(),
			})
	}

	return apperrors.WrapWithContext(r.Context(), apperrors.CodeInvalidInput, err, "malformed submission body",
		map[string]interface{}{"form": string(form)})
}

func retryAfterSeconds(decision *core.RateLimitDecision) string {
	seconds := int(math.Ceil(decision.RetryAfter.Seconds()))
	if seconds < 1 {
		seconds = 1
	}
	return strconv.Itoa(seconds)
}

func logOutcome(r *http.Request, outcome core.Outcome) {
	logger := observability.ServerLogger
	if logger == nil {
		return
	}

	fields := []zap.Field{
		zap.String("form", string(outcome.Form)),
		zap.String("status", string(outcome.Status)),
		zap.String("client_id", outcome.ClientID),
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.Duration("duration", outcome.Duration),
	}
	if outcome.Status == core.OutcomeAccepted {
		fields = append(fields,
			zap.String("crm", string(outcome.Forward.Status)),
			zap.String("notify_channel", outcome.Notify.Channel),
			zap.String("notify", string(outcome.Notify.Status)),
		)
	}

	failures := stepFailures(r.Context(), outcome)
	if len(failures) > 0 {
		for _, envelope := range failures {
			step, _ := envelope.Context["step"].(string)
			fields = append(fields,
				zap.Any(step+"_error", envelope.Context["wrapped_error"]),
				zap.String(step+"_error_code", envelope.Code),
				zap.String(step+"_severity", string(envelope.Severity)),
			)
		}
		logger.Warn("Form submission accepted with side-channel failures", fields...)
		return
	}
	logger.Info("Form submission handled", fields...)
}

// stepFailures describes each failed best-effort step as an external service
// envelope carrying the request id.
func stepFailures(ctx context.Context, outcome core.Outcome) []*gferrors.ErrorEnvelope {
	var failures []*gferrors.ErrorEnvelope
	if outcome.Forward.Status == core.StepFailed {
		failures = append(failures, stepFailure(ctx, outcome, "crm", outcome.Forward.Reason, "CRM forward failed"))
	}
	if outcome.Notify.Status == core.StepFailed {
		failures = append(failures, stepFailure(ctx, outcome, "notify", outcome.Notify.Reason, outcome.Notify.Channel+" notification failed"))
	}
	return failures
}

func stepFailure(ctx context.Context, outcome core.Outcome, step, reason, message string) *gferrors.ErrorEnvelope {
	envelope := apperrors.WrapExternalService(ctx, errors.New(reason), message)
	updated, err := envelope.WithContext(map[string]interface{}{
		"step":          step,
		"form":          string(outcome.Form),
		"wrapped_error": reason,
	})
	if err != nil {
		return envelope
	}
	return updated
}
