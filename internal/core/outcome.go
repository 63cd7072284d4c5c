package core

import "time"

// OutcomeStatus is the terminal state of an intake request.
type OutcomeStatus string

const (
	OutcomeAccepted    OutcomeStatus = "accepted"
	OutcomeDiscarded   OutcomeStatus = "discarded"
	OutcomeRateLimited OutcomeStatus = "rate_limited"
	OutcomeInvalid     OutcomeStatus = "invalid"
	OutcomeFailed      OutcomeStatus = "failed"
)

// StepStatus reports what happened on a side channel.
type StepStatus string

const (
	StepDone    StepStatus = "done"
	StepSkipped StepStatus = "skipped"
	StepFailed  StepStatus = "failed"
)

// ForwardResult describes the CRM upsert step.
type ForwardResult struct {
	Status StepStatus `json:"status"`
	Reason string     `json:"reason,omitempty"`
}

// NotifyResult describes the notification step (mail for contact, webhook for waitlist).
type NotifyResult struct {
	Channel string     `json:"channel"`
	Status  StepStatus `json:"status"`
	Reason  string     `json:"reason,omitempty"`
}

// Outcome records everything that happened to one submission.
type Outcome struct {
	Form       FormKind           `json:"form"`
	ClientID   string             `json:"client_id"`
	Status     OutcomeStatus      `json:"status"`
	Decision   *RateLimitDecision `json:"-"`
	Err        error              `json:"-"`
	Forward    ForwardResult      `json:"forward"`
	Notify     NotifyResult       `json:"notify"`
	ReceivedAt time.Time          `json:"received_at"`
	Duration   time.Duration      `json:"duration"`
}
