package i18n

import (
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func init() {
	lang := language.Dutch

	// API responses
	message.SetString(lang, KeyInvalidInput, "Ongeldige gegevens")
	message.SetString(lang, KeyRateLimited, "Te veel verzoeken. Probeer het later opnieuw.")
	message.SetString(lang, KeyInternalError, "Er is een fout opgetreden")
	message.SetString(lang, KeyNotFound, "Niet gevonden")
	message.SetString(lang, KeyMethodNotAllowed, "Methode niet toegestaan")

	// Notification mail
	message.SetString(lang, KeyNotifySubject, "Nieuw contactformulier bericht van %s")

	// Pages
	message.SetString(lang, KeySiteName, "Pro Coach Mastery")
	message.SetString(lang, KeyNavSwitch, "Taal")
	message.SetString(lang, KeyPageHome, "Home")
	message.SetString(lang, KeyPageProgram, "Programma")
	message.SetString(lang, KeyPageAbout, "Over ons")
	message.SetString(lang, KeyPageStart, "Start")
	message.SetString(lang, KeyPageTerms, "Algemene voorwaarden")
	message.SetString(lang, KeyPageContact, "Contact")
	message.SetString(lang, KeyPagePrivacy, "Privacy")
	message.SetString(lang, KeyHomeTagline, "Het certificeringsprogramma voor professionele coaches.")
	message.SetString(lang, KeyWaitlistIntro, "Meld je aan voor de wachtlijst van het volgende cohort.")
	message.SetString(lang, KeyContactIntro, "Heb je een vraag? Stuur ons een bericht.")
	message.SetString(lang, KeyLocaleNameNL, "Nederlands")
	message.SetString(lang, KeyLocaleNameEN, "English")

	// Forms
	message.SetString(lang, KeyFormName, "Naam")
	message.SetString(lang, KeyFormEmail, "E-mailadres")
	message.SetString(lang, KeyFormMessage, "Bericht")
	message.SetString(lang, KeyFormNote, "Opmerking (optioneel)")
	message.SetString(lang, KeyFormConsent, "Ik ga akkoord met het ontvangen van e-mails van Pro Coach Mastery.")
	message.SetString(lang, KeyFormSubmit, "Versturen")
	message.SetString(lang, KeyFormThanks, "Bedankt! We hebben je bericht ontvangen.")
}
