package server

import (
	"net/http"
	"strings"

	"github.com/fulmenhq/gofulmen/errors"

	apperrors "github.com/procoachmastery/website/internal/errors"
	"github.com/procoachmastery/website/internal/i18n"
)

// HandleError writes err as the JSON error envelope.
func HandleError(w http.ResponseWriter, r *http.Request, err error) {
	apperrors.RespondWithError(w, r, err)
}

// respondAPIAware answers API callers with the flat localized body the forms
// read and everyone else with the full envelope.
func respondAPIAware(w http.ResponseWriter, r *http.Request, envelope *errors.ErrorEnvelope, key string) {
	if r.URL.Path == "/api" || strings.HasPrefix(r.URL.Path, "/api/") {
		apperrors.RespondWithMessage(w, r, envelope, i18n.Text(i18n.FromRequest(r), key))
		return
	}
	HandleError(w, r, envelope)
}

func notFound(w http.ResponseWriter, r *http.Request) {
	respondAPIAware(w, r, apperrors.NewNotFoundError("The requested resource was not found"), i18n.KeyNotFound)
}

func methodNotAllowed(w http.ResponseWriter, r *http.Request) {
	respondAPIAware(w, r, apperrors.NewMethodNotAllowedError("The requested method is not allowed for this resource"), i18n.KeyMethodNotAllowed)
}
