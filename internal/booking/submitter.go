package booking

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/basho-studio/storefront/internal/catalog"
	"github.com/basho-studio/storefront/internal/inflight"
	"github.com/basho-studio/storefront/pkg/bashoapi"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/logger"
	"github.com/basho-studio/storefront/pkg/metrics"
)

// DefaultFailureMessage is shown when the backend rejects a reservation
// without saying why, or cannot be reached.
const DefaultFailureMessage = "Booking failed. Slot may be full or unavailable."

type registrar interface {
	RegisterWorkshop(ctx context.Context, req bashoapi.WorkshopRegistration) (*bashoapi.RegistrationReceipt, error)
}

// Submitter sends a reviewed draft to the backend, allowing one outstanding
// reservation per wizard.
type Submitter struct {
	registrar registrar
	guard     inflight.Guard
	logg      *logger.Logger
	metrics   *metrics.Storefront
}

func NewSubmitter(registrar registrar, guard inflight.Guard, logg *logger.Logger, m *metrics.Storefront) (*Submitter, error) {
	if registrar == nil {
		return nil, fmt.Errorf("workshop registrar required")
	}
	if guard == nil {
		return nil, fmt.Errorf("inflight guard required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	return &Submitter{registrar: registrar, guard: guard, logg: logg, metrics: m}, nil
}

// Submit confirms the booking. Guard failures and a concurrent submission for
// the same wizard return an error and the unchanged state. A backend
// rejection is not an error: the returned state stays on review with
// LastError set so the visitor can retry.
func (s *Submitter) Submit(ctx context.Context, wizardID string, workshop catalog.Workshop, state State) (State, error) {
	wizardID = strings.TrimSpace(wizardID)
	if wizardID == "" {
		return state, pkgerrors.New(pkgerrors.CodeValidation, "wizard id is required")
	}
	ctx = s.logg.WithWizardID(ctx, wizardID)

	submitting, err := Transition(workshop, state, Submit{})
	if err != nil {
		s.metrics.BookingSubmission("invalid")
		return state, err
	}

	release, err := s.guard.Acquire(ctx, wizardID)
	if err != nil {
		if errors.Is(err, inflight.ErrInFlight) {
			s.metrics.BookingSubmission("in_flight")
		} else {
			s.metrics.BookingSubmission("error")
		}
		return state, err
	}
	defer release()

	receipt, err := s.registrar.RegisterWorkshop(ctx, Payload(workshop, submitting))
	if err != nil {
		message := FailureMessage(err)
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"workshop_id": workshop.ID.String(),
			"slot_id":     submitting.Draft.SlotID.String(),
			"error":       err.Error(),
			"retryable":   pkgerrors.IsRetryable(err),
		}), "booking.submit.rejected")
		s.metrics.BookingSubmission("rejected")
		return Transition(workshop, submitting, SubmissionFailed{Message: message})
	}

	s.logg.Info(s.logg.WithFields(ctx, map[string]any{
		"workshop_id":     workshop.ID.String(),
		"registration_id": receipt.RegistrationID.String(),
	}), "booking.submit.confirmed")
	s.metrics.BookingSubmission("success")
	return Transition(workshop, submitting, SubmissionSucceeded{Confirmation: Confirmation{
		RegistrationID:  receipt.RegistrationID,
		RazorpayOrderID: receipt.RazorpayOrderID,
		Amount:          receipt.Amount,
	}})
}

// FailureMessage turns a registration error into the text shown to the
// visitor: the backend's own message when it sent one, otherwise a generic
// line.
func FailureMessage(err error) string {
	if msg, ok := bashoapi.BackendMessage(err); ok {
		return msg
	}
	return DefaultFailureMessage
}
