package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/procoachmastery/website/internal/core"
)

func boolPtr(b bool) *bool { return &b }

func TestContact(t *testing.T) {
	v := New()

	t.Run("valid", func(t *testing.T) {
		c := &core.ContactSubmission{Name: " Jan Jansen ", Email: "jan@example.nl", Message: "Hallo"}
		require.NoError(t, v.Contact(c))
		assert.Equal(t, "Jan Jansen", c.Name)
	})

	t.Run("all missing", func(t *testing.T) {
		err := v.Contact(&core.ContactSubmission{})
		var errs Errors
		require.ErrorAs(t, err, &errs)
		assert.ElementsMatch(t, []string{"name", "email", "message"}, errs.Fields())
	})

	t.Run("whitespace only is empty", func(t *testing.T) {
		err := v.Contact(&core.ContactSubmission{Name: "   ", Email: "a@b.nl", Message: "\t"})
		var errs Errors
		require.ErrorAs(t, err, &errs)
		assert.ElementsMatch(t, []string{"name", "message"}, errs.Fields())
	})

	t.Run("bad email", func(t *testing.T) {
		err := v.Contact(&core.ContactSubmission{Name: "Jan", Email: "not-an-email", Message: "Hi"})
		var errs Errors
		require.ErrorAs(t, err, &errs)
		require.Len(t, errs, 1)
		assert.Equal(t, FieldError{Field: "email", Code: CodeEmail}, errs[0])
	})

	t.Run("nil", func(t *testing.T) {
		require.Error(t, v.Contact(nil))
	})
}

func TestWaitlist(t *testing.T) {
	v := Default()

	t.Run("valid with consent", func(t *testing.T) {
		w := &core.WaitlistSubmission{Name: "An", Email: "an@example.com", Consent: boolPtr(true)}
		require.NoError(t, v.Waitlist(w))
	})

	t.Run("note is optional", func(t *testing.T) {
		w := &core.WaitlistSubmission{Name: "An", Email: "an@example.com", Note: "cohort 3", Consent: boolPtr(true)}
		require.NoError(t, v.Waitlist(w))
	})

	t.Run("consent false", func(t *testing.T) {
		err := v.Waitlist(&core.WaitlistSubmission{Name: "An", Email: "an@example.com", Consent: boolPtr(false)})
		var errs Errors
		require.ErrorAs(t, err, &errs)
		require.Len(t, errs, 1)
		assert.Equal(t, FieldError{Field: "consent", Code: CodeConsentRequired}, errs[0])
	})

	t.Run("consent absent", func(t *testing.T) {
		err := v.Waitlist(&core.WaitlistSubmission{Name: "An", Email: "an@example.com"})
		var errs Errors
		require.ErrorAs(t, err, &errs)
		require.Len(t, errs, 1)
		assert.Equal(t, CodeConsentRequired, errs[0].Code)
	})

	t.Run("error message lists fields", func(t *testing.T) {
		err := v.Waitlist(&core.WaitlistSubmission{Email: "x"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "name: required")
		assert.Contains(t, err.Error(), "email: email")
	})
}
