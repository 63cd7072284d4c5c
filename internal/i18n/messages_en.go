package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.English

	// API responses
	message.SetString(lang, KeyInvalidInput, "Invalid data")
	message.SetString(lang, KeyRateLimited, "Too many requests. Please try again later.")
	message.SetString(lang, KeyInternalError, "An error occurred")
	message.SetString(lang, KeyNotFound, "Not found")
	message.SetString(lang, KeyMethodNotAllowed, "Method not allowed")

	// Notification mail
	message.SetString(lang, KeyNotifySubject, "New contact form message from %s")

	// Pages
	message.SetString(lang, KeySiteName, "Pro Coach Mastery")
	message.SetString(lang, KeyNavSwitch, "Language")
	message.SetString(lang, KeyPageHome, "Home")
	message.SetString(lang, KeyPageProgram, "Program")
	message.SetString(lang, KeyPageAbout, "About us")
	message.SetString(lang, KeyPageStart, "Get started")
	message.SetString(lang, KeyPageTerms, "Terms and conditions")
	message.SetString(lang, KeyPageContact, "Contact")
	message.SetString(lang, KeyPagePrivacy, "Privacy")
	message.SetString(lang, KeyHomeTagline, "The certification program for professional coaches.")
	message.SetString(lang, KeyWaitlistIntro, "Join the waitlist for the next cohort.")
	message.SetString(lang, KeyContactIntro, "Have a question? Send us a message.")
	message.SetString(lang, KeyLocaleNameNL, "Nederlands")
	message.SetString(lang, KeyLocaleNameEN, "English")

	// Forms
	message.SetString(lang, KeyFormName, "Name")
	message.SetString(lang, KeyFormEmail, "Email address")
	message.SetString(lang, KeyFormMessage, "Message")
	message.SetString(lang, KeyFormNote, "Note (optional)")
	message.SetString(lang, KeyFormConsent, "I agree to receive emails from Pro Coach Mastery.")
	message.SetString(lang, KeyFormSubmit, "Send")
	message.SetString(lang, KeyFormThanks, "Thank you! We received your message.")
}
