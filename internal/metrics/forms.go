package metrics

import "github.com/procoachmastery/website/internal/core"

// Form intake series
const (
	FormSubmissionsTotal = "form_submissions_total"
	FormRateLimitedTotal = "form_rate_limited_total"
	CRMForwardTotal      = "crm_forward_total"
	FormNotifyTotal      = "form_notify_total"
	FormDurationMs       = "form_submission_duration_ms"
)

// RecordOutcome emits every series that describes one finished submission.
func RecordOutcome(outcome core.Outcome) {
	form := string(outcome.Form)
	count(FormSubmissionsTotal, map[string]string{
		"form":    form,
		"outcome": string(outcome.Status),
	})
	observe(FormDurationMs, outcome.Duration, map[string]string{"form": form})

	switch outcome.Status {
	case core.OutcomeRateLimited:
		count(FormRateLimitedTotal, map[string]string{"form": form})
	case core.OutcomeAccepted:
		count(CRMForwardTotal, map[string]string{
			"form":   form,
			"status": string(outcome.Forward.Status),
		})
		count(FormNotifyTotal, map[string]string{
			"form":    form,
			"channel": outcome.Notify.Channel,
			"status":  string(outcome.Notify.Status),
		})
	}
}
