package controllers

import (
	"net/http"

	"github.com/kitroom/kitroom-backend/api/responses"
	"github.com/kitroom/kitroom-backend/api/validators"
	"github.com/kitroom/kitroom-backend/internal/holdings"
	"github.com/kitroom/kitroom-backend/pkg/logger"
)

// DeductInventory reconciles stock from the caller's old holdings snapshot to
// the new one. Unlike the holdings endpoints this path is strict: any line
// that cannot be satisfied fails the whole request.
func DeductInventory(svc *holdings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var payload holdings.DeductInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Deduct(r.Context(), payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}
