package cmd

import (
	"go.uber.org/zap"

	"github.com/procoachmastery/website/internal/brevo"
	"github.com/procoachmastery/website/internal/config"
	"github.com/procoachmastery/website/internal/core"
	"github.com/procoachmastery/website/internal/core/engine"
	"github.com/procoachmastery/website/internal/core/validate"
	"github.com/procoachmastery/website/internal/observability"
	"github.com/procoachmastery/website/internal/webhook"
)

// rateLimitOverrides converts the configured limits into limiter overrides.
func rateLimitOverrides(cfg *config.Config) map[core.FormKind]engine.RateLimit {
	limits := cfg.FormLimits()
	overrides := make(map[core.FormKind]engine.RateLimit, len(limits))
	for form, limit := range limits {
		overrides[form] = engine.RateLimit{
			RequestsPerWindow: limit.Max,
			WindowDuration:    limit.Window,
		}
	}
	return overrides
}

// buildIntake wires the orchestrator from configuration. Collaborators
// without credentials stay nil so their steps are reported as skipped.
func buildIntake(cfg *config.Config, rateStore engine.RateLimitStore) *engine.Intake {
	limiter := &engine.RateLimiter{Store: rateStore}
	limiter.ApplyOverrides(rateLimitOverrides(cfg))

	intake := &engine.Intake{
		Limiter:        limiter,
		Validator:      validate.Default(),
		ContactListID:  cfg.Brevo.ContactListID,
		WaitlistListID: cfg.Brevo.WaitlistListID,
	}

	if cfg.Brevo.Enabled() {
		client := brevo.NewClient(cfg.Brevo.BaseURL, cfg.Brevo.APIKey).
			WithRateLimit(cfg.Brevo.RPS, cfg.Brevo.Burst)
		if cfg.Brevo.Timeout > 0 {
			client.Timeout = cfg.Brevo.Timeout
		}
		intake.CRM = client
		intake.Mailer = brevo.NewMailer(client, cfg.Brevo.NotificationEmail, cfg.Brevo.ContactTemplateID)
	} else {
		logStartupWarn("Brevo API key not configured; CRM sync and notification email disabled")
	}

	if cfg.Webhook.Enabled() {
		hook := webhook.NewClient(cfg.Webhook.URL).
			WithRateLimit(cfg.Webhook.RPS, cfg.Webhook.Burst)
		if cfg.Webhook.Timeout > 0 {
			hook.Timeout = cfg.Webhook.Timeout
		}
		intake.Webhook = hook
	} else {
		logStartupWarn("Waitlist webhook URL not configured; webhook delivery disabled")
	}

	if observability.ServerLogger != nil {
		observability.ServerLogger.Info("Form intake configured",
			zap.Bool("crm", intake.CRM != nil),
			zap.Bool("notify_email", intake.Mailer != nil),
			zap.Bool("waitlist_webhook", intake.Webhook != nil),
			zap.String("brevo_api_key", cfg.Brevo.RedactedAPIKey()),
			zap.Int64("contact_list_id", cfg.Brevo.ContactListID),
			zap.Int64("waitlist_list_id", cfg.Brevo.WaitlistListID))
	}

	return intake
}

func logStartupWarn(msg string) {
	if observability.ServerLogger != nil {
		observability.ServerLogger.Warn(msg)
	}
}
