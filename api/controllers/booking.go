package controllers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/basho-studio/storefront/api/middleware"
	"github.com/basho-studio/storefront/api/responses"
	"github.com/basho-studio/storefront/api/validators"
	"github.com/basho-studio/storefront/internal/booking"
	"github.com/basho-studio/storefront/internal/catalog"
	"github.com/basho-studio/storefront/internal/pricing"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/logger"
)

type workshopLoader interface {
	GetWorkshop(ctx context.Context, id string) (catalog.Workshop, error)
}

type bookingSubmitter interface {
	Submit(ctx context.Context, wizardID string, workshop catalog.Workshop, state booking.State) (booking.State, error)
}

// The wizard state travels with the client, so it is exempt from struct
// validation here; booking.Transition guards every step itself.
type bookingTransitionRequest struct {
	State booking.State   `json:"state" validate:"-"`
	Event json.RawMessage `json:"event" validate:"required"`
}

type bookingSubmitRequest struct {
	WizardID string        `json:"wizardId" validate:"required,uuid"`
	State    booking.State `json:"state" validate:"-"`
}

type bookingView struct {
	WizardID string         `json:"wizardId,omitempty"`
	State    booking.State  `json:"state"`
	Totals   pricing.Totals `json:"totals"`
}

// BookingStart opens a fresh wizard for the workshop and assigns it an id
// used to guard the eventual submission.
func BookingStart(workshops workshopLoader, rules pricing.Rules, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if workshops == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		workshop, err := workshops.GetWorkshop(r.Context(), chi.URLParam(r, "workshopId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		state := booking.NewState(workshop)
		responses.WriteSuccessStatus(w, http.StatusCreated, bookingView{
			WizardID: uuid.NewString(),
			State:    state,
			Totals:   booking.Totals(rules, workshop, state.Draft.Participants),
		})
	}
}

// BookingTransition applies one visitor event to the posted wizard state.
func BookingTransition(workshops workshopLoader, rules pricing.Rules, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if workshops == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		var payload bookingTransitionRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		event, err := booking.DecodeEvent(payload.Event)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		workshop, err := workshops.GetWorkshop(r.Context(), chi.URLParam(r, "workshopId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := booking.Transition(workshop, payload.State, event)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, bookingView{
			State:  next,
			Totals: booking.Totals(rules, workshop, next.Draft.Participants),
		})
	}
}

// BookingSubmit sends a reviewed wizard to the backend. A backend rejection
// still answers 200 with the state's lastError set, and is never stored for
// replay so the visitor can retry from review.
func BookingSubmit(workshops workshopLoader, submitter bookingSubmitter, rules pricing.Rules, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if workshops == nil || submitter == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "booking service unavailable"))
			return
		}

		var payload bookingSubmitRequest
		if err := validators.DecodeJSONBody(w, r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		workshop, err := workshops.GetWorkshop(r.Context(), chi.URLParam(r, "workshopId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		next, err := submitter.Submit(r.Context(), payload.WizardID, workshop, payload.State)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if next.LastError != "" {
			middleware.SkipReplay(r.Context())
		}

		responses.WriteSuccess(w, bookingView{
			WizardID: payload.WizardID,
			State:    next,
			Totals:   booking.Totals(rules, workshop, next.Draft.Participants),
		})
	}
}
