package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/kitroom/kitroom-backend/api/middleware"
	"github.com/kitroom/kitroom-backend/api/responses"
	"github.com/kitroom/kitroom-backend/api/validators"
	"github.com/kitroom/kitroom-backend/internal/holdings"
	pkgerrors "github.com/kitroom/kitroom-backend/pkg/errors"
	"github.com/kitroom/kitroom-backend/pkg/logger"
)

// GetHoldings returns the authenticated member's holdings, enriched with
// shared price and media.
func GetHoldings(svc *holdings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := memberIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		items, err := svc.Get(r.Context(), memberID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]any{"items": items})
	}
}

// SubmitHoldings merges the submitted lines into the member's holdings and
// reconciles stock against the resulting diff.
func SubmitHoldings(svc *holdings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := memberIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload holdings.SubmitInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Submit(r.Context(), memberID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

// ReplaceHoldings swaps the member's holdings for the submitted set. Lines
// absent from the submission are removed and their stock restored.
func ReplaceHoldings(svc *holdings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		memberID, err := memberIDFromRequest(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload holdings.ReplaceInput
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := svc.Replace(r.Context(), memberID, payload)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, result)
	}
}

func memberIDFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := middleware.MemberIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "member context missing")
	}
	memberID, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid member id")
	}
	return memberID, nil
}
