package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/core/validate"
)

var (
	// ErrMalformedBody wraps JSON decode failures.
	ErrMalformedBody = errors.New("malformed request body")
	// ErrUnknownForm is returned for a form kind with no intake route.
	ErrUnknownForm = errors.New("unknown form")
)

const (
	ChannelEmail   = "email"
	ChannelWebhook = "webhook"
)

// ContactSyncer upserts a contact into the CRM.
type ContactSyncer interface {
	SyncContact(ctx context.Context, contact core.CRMContact) error
}

// ContactNotifier sends the site owner a contact-form notification.
type ContactNotifier interface {
	NotifyContact(ctx context.Context, submission core.ContactSubmission) error
}

// WaitlistSender delivers a waitlist signup to an external hook.
type WaitlistSender interface {
	SendWaitlist(ctx context.Context, event core.WaitlistEvent) error
}

// IntakeRequest is one raw form submission.
type IntakeRequest struct {
	Form     core.FormKind
	ClientID string
	Body     io.Reader
}

// Intake sequences a submission through rate limiting, decoding, validation
// and the best-effort side channels. Nil collaborators are reported as
// skipped steps.
type Intake struct {
	Limiter   *RateLimiter
	Validator *validate.Validator
	CRM       ContactSyncer
	Mailer    ContactNotifier
	Webhook   WaitlistSender

	ContactListID  int64
	WaitlistListID int64

	Clock func() time.Time
}

// Submit runs the full pipeline. The returned outcome is terminal: only
// rate_limited, invalid and failed map to a non-200 response.
func (in *Intake) Submit(ctx context.Context, req IntakeRequest) (outcome core.Outcome) {
	if ctx == nil {
		ctx = context.Background()
	}

	start := in.now()
	outcome = core.Outcome{
		Form:       req.Form,
		ClientID:   req.ClientID,
		ReceivedAt: start,
	}
	defer func() {
		outcome.Duration = in.now().Sub(start)
	}()

	if req.Form != core.FormContact && req.Form != core.FormWaitlist {
		outcome.Status = core.OutcomeFailed
		outcome.Err = fmt.Errorf("%w: %q", ErrUnknownForm, req.Form)
		return outcome
	}

	decision, err := in.Limiter.Admit(ctx, req.Form, req.ClientID)
	outcome.Decision = &decision
	if err != nil {
		logRateLimitStoreError(req.Form, err)
	}
	if !decision.Allowed {
		outcome.Status = core.OutcomeRateLimited
		return outcome
	}

	switch req.Form {
	case core.FormContact:
		in.submitContact(ctx, req.Body, &outcome)
	case core.FormWaitlist:
		in.submitWaitlist(ctx, req.Body, &outcome)
	}
	return outcome
}

func (in *Intake) submitContact(ctx context.Context, body io.Reader, outcome *core.Outcome) {
	var submission core.ContactSubmission
	if err := decodeBody(body, &submission); err != nil {
		outcome.Status = core.OutcomeInvalid
		outcome.Err = err
		return
	}
	if err := in.validator().Contact(&submission); err != nil {
		outcome.Status = core.OutcomeInvalid
		outcome.Err = err
		return
	}

	first, last := core.SplitName(submission.Name)
	outcome.Forward = in.forward(ctx, core.CRMContact{
		Email:     submission.Email,
		FirstName: first,
		LastName:  last,
		Note:      submission.Message,
		Tags:      []string{"contact-form", "website"},
		ListID:    in.ContactListID,
	})

	outcome.Notify = core.NotifyResult{Channel: ChannelEmail, Status: core.StepSkipped}
	if in.Mailer != nil {
		if err := in.Mailer.NotifyContact(ctx, submission); err != nil {
			outcome.Notify.Status = core.StepFailed
			outcome.Notify.Reason = err.Error()
		} else {
			outcome.Notify.Status = core.StepDone
		}
	}

	outcome.Status = core.OutcomeAccepted
}

func (in *Intake) submitWaitlist(ctx context.Context, body io.Reader, outcome *core.Outcome) {
	var submission core.WaitlistSubmission
	if err := decodeBody(body, &submission); err != nil {
		outcome.Status = core.OutcomeInvalid
		outcome.Err = err
		return
	}

	submission.Normalize()
	if submission.Website != "" {
		outcome.Status = core.OutcomeDiscarded
		outcome.Forward = core.ForwardResult{Status: core.StepSkipped, Reason: "honeypot"}
		outcome.Notify = core.NotifyResult{Channel: ChannelWebhook, Status: core.StepSkipped, Reason: "honeypot"}
		return
	}

	if err := in.validator().Waitlist(&submission); err != nil {
		outcome.Status = core.OutcomeInvalid
		outcome.Err = err
		return
	}

	tags := []string{"waitlist", "website"}
	if submission.Consented() {
		tags = append(tags, "marketing-consent")
	}

	first, last := core.SplitName(submission.Name)
	outcome.Forward = in.forward(ctx, core.CRMContact{
		Email:     submission.Email,
		FirstName: first,
		LastName:  last,
		Note:      submission.Note,
		Tags:      tags,
		ListID:    in.WaitlistListID,
	})

	outcome.Notify = core.NotifyResult{Channel: ChannelWebhook, Status: core.StepSkipped}
	if in.Webhook != nil {
		event := core.WaitlistEvent{
			Name:      submission.Name,
			Email:     submission.Email,
			Note:      submission.Note,
			Consent:   submission.Consented(),
			Timestamp: in.now(),
			Source:    core.SubmissionSource,
		}
		if err := in.Webhook.SendWaitlist(ctx, event); err != nil {
			outcome.Notify.Status = core.StepFailed
			outcome.Notify.Reason = err.Error()
		} else {
			outcome.Notify.Status = core.StepDone
		}
	}

	outcome.Status = core.OutcomeAccepted
}

func (in *Intake) forward(ctx context.Context, contact core.CRMContact) core.ForwardResult {
	if in.CRM == nil {
		return core.ForwardResult{Status: core.StepSkipped, Reason: "crm not configured"}
	}
	if err := in.CRM.SyncContact(ctx, contact); err != nil {
		return core.ForwardResult{Status: core.StepFailed, Reason: err.Error()}
	}
	return core.ForwardResult{Status: core.StepDone}
}

func (in *Intake) validator() *validate.Validator {
	if in.Validator != nil {
		return in.Validator
	}
	return validate.Default()
}

func (in *Intake) now() time.Time {
	if in != nil && in.Clock != nil {
		return in.Clock()
	}
	return time.Now().UTC()
}

func decodeBody(body io.Reader, dst any) error {
	if body == nil {
		return fmt.Errorf("%w: empty body", ErrMalformedBody)
	}
	if err := json.NewDecoder(body).Decode(dst); err != nil {
		return fmt.Errorf("%w: %v", ErrMalformedBody, err)
	}
	return nil
}
