package core

import (
	"strings"
	"time"
)

// FormKind identifies a public submission endpoint.
type FormKind string

const (
	FormContact  FormKind = "contact"
	FormWaitlist FormKind = "waitlist"
)

// Forms lists every form kind.
var Forms = []FormKind{FormContact, FormWaitlist}

// ParseFormKind matches s case-insensitively against the known forms.
func ParseFormKind(s string) (FormKind, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	for _, form := range Forms {
		if string(form) == s {
			return form, true
		}
	}
	return "", false
}

// SubmissionSource is reported to downstream collaborators.
const SubmissionSource = "procoachmastery.com"

// ContactSubmission is the body of POST /api/contact.
type ContactSubmission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Message string `json:"message" validate:"required"`
}

// Normalize trims surrounding whitespace from every field.
func (c *ContactSubmission) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Message = strings.TrimSpace(c.Message)
}

// WaitlistSubmission is the body of POST /api/waitlist. Website is a honeypot
// that real visitors never fill in.
type WaitlistSubmission struct {
	Name    string `json:"name" validate:"required"`
	Email   string `json:"email" validate:"required,email"`
	Note    string `json:"note,omitempty"`
	Consent *bool  `json:"consent" validate:"required,accepted"`
	Website string `json:"website,omitempty"`
}

// Normalize trims surrounding whitespace from every text field.
func (w *WaitlistSubmission) Normalize() {
	w.Name = strings.TrimSpace(w.Name)
	w.Email = strings.TrimSpace(w.Email)
	w.Note = strings.TrimSpace(w.Note)
	w.Website = strings.TrimSpace(w.Website)
}

// Consented reports whether consent was given explicitly.
func (w *WaitlistSubmission) Consented() bool {
	return w.Consent != nil && *w.Consent
}

// CRMContact is what gets upserted into the email-marketing service.
type CRMContact struct {
	Email     string
	FirstName string
	LastName  string
	Note      string
	Tags      []string
	ListID    int64
}

// SplitName splits a full name into a first token and the remainder.
func SplitName(full string) (first, last string) {
	parts := strings.Fields(full)
	if len(parts) == 0 {
		return "", ""
	}
	return parts[0], strings.Join(parts[1:], " ")
}

// WaitlistEvent is the payload posted to the waitlist webhook.
type WaitlistEvent struct {
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Note      string    `json:"note,omitempty"`
	Consent   bool      `json:"consent"`
	Timestamp time.Time `json:"timestamp"`
	Source    string    `json:"source"`
}
