package booking

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/basho-studio/storefront/internal/calendar"
	"github.com/basho-studio/storefront/internal/catalog"
	"github.com/basho-studio/storefront/pkg/enums"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/validation"
)

const maxSpecialRequests = 1000

var validate = validation.New()

// Transition applies event to state for the given workshop. It never mutates
// its input; when a guard fails the unchanged state is returned with a
// validation or state-conflict error.
func Transition(workshop catalog.Workshop, state State, event Event) (State, error) {
	if event == nil {
		return state, pkgerrors.New(pkgerrors.CodeValidation, "event is required")
	}
	if !state.Step.IsValid() {
		return state, pkgerrors.Newf(pkgerrors.CodeValidation, "unknown step %q", state.Step)
	}
	if state.Confirmed() {
		return state, stepConflict("booking is already confirmed")
	}
	if state.Submitting {
		switch event.(type) {
		case SubmissionSucceeded, SubmissionFailed:
		default:
			return state, stepConflict("a submission is in progress")
		}
	}

	next := state
	switch e := event.(type) {
	case ContinueToCalendar:
		if err := requireStep(state, enums.BookingStepDetails, e); err != nil {
			return state, err
		}
		next.Step = enums.BookingStepCalendar
		next.Draft.Date = ""
		next.Draft.SlotID = ""

	case SelectDate:
		if err := requireStep(state, enums.BookingStepCalendar, e); err != nil {
			return state, err
		}
		if _, err := calendar.ParseDate(e.Date); err != nil {
			return state, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date")
		}
		if !calendar.IsAvailableDate(workshop.Schedule, e.Date) {
			return state, pkgerrors.New(pkgerrors.CodeValidation, "no sessions available on this date")
		}
		next.Draft.Date = e.Date
		next.Draft.SlotID = ""

	case SelectSlot:
		if err := requireStep(state, enums.BookingStepCalendar, e); err != nil {
			return state, err
		}
		if err := checkSlot(workshop, state.Draft.Date, e.SlotID); err != nil {
			return state, err
		}
		next.Draft.SlotID = e.SlotID

	case ContinueToForm:
		if err := requireStep(state, enums.BookingStepCalendar, e); err != nil {
			return state, err
		}
		if state.Draft.Date == "" || state.Draft.SlotID == "" {
			return state, pkgerrors.New(pkgerrors.CodeValidation, "select a date and a time slot to continue")
		}
		if err := checkSlot(workshop, state.Draft.Date, state.Draft.SlotID); err != nil {
			return state, err
		}
		next.Step = enums.BookingStepForm

	case UpdateContact:
		if err := requireStep(state, enums.BookingStepForm, e); err != nil {
			return state, err
		}
		next.Draft.Contact = normalizeContact(e.Contact)

	case ContinueToExperience:
		if err := requireStep(state, enums.BookingStepForm, e); err != nil {
			return state, err
		}
		if err := checkContact(state.Draft.Contact); err != nil {
			return state, err
		}
		next.Step = enums.BookingStepExperience

	case SetParticipants:
		if err := requireStep(state, enums.BookingStepExperience, e); err != nil {
			return state, err
		}
		next.Draft.Participants = workshop.ClampParticipants(e.Participants)

	case SetLevel:
		if err := requireStep(state, enums.BookingStepExperience, e); err != nil {
			return state, err
		}
		if !e.Level.IsValid() {
			return state, pkgerrors.Newf(pkgerrors.CodeValidation, "invalid experience level %q", e.Level)
		}
		next.Draft.Level = e.Level

	case SetSpecialRequests:
		if err := requireStep(state, enums.BookingStepExperience, e); err != nil {
			return state, err
		}
		text := strings.TrimSpace(e.Text)
		if utf8.RuneCountInString(text) > maxSpecialRequests {
			return state, pkgerrors.Newf(pkgerrors.CodeValidation, "special requests must be at most %d characters", maxSpecialRequests)
		}
		next.Draft.SpecialRequests = text

	case ContinueToReview:
		if err := requireStep(state, enums.BookingStepExperience, e); err != nil {
			return state, err
		}
		next.Draft.Participants = workshop.ClampParticipants(state.Draft.Participants)
		if !next.Draft.Level.IsValid() {
			next.Draft.Level = enums.ExperienceLevelBeginner
		}
		next.Step = enums.BookingStepReview

	case AcceptTerms:
		if err := requireStep(state, enums.BookingStepReview, e); err != nil {
			return state, err
		}
		next.Draft.TermsAccepted = e.Accepted

	case Back:
		prev, ok := state.Step.Previous()
		if !ok {
			return state, nil
		}
		next.Step = prev
		next.LastError = ""

	case Submit:
		if err := requireStep(state, enums.BookingStepReview, e); err != nil {
			return state, err
		}
		if !state.Draft.TermsAccepted {
			return state, pkgerrors.New(pkgerrors.CodeValidation, "accept the terms to confirm the booking")
		}
		if err := checkReady(workshop, state.Draft); err != nil {
			return state, err
		}
		next.Submitting = true
		next.LastError = ""

	case SubmissionSucceeded:
		if !state.Submitting {
			return state, stepConflict("no submission in progress")
		}
		confirmation := e.Confirmation
		next = State{
			Step:         enums.BookingStepConfirmed,
			Confirmation: &confirmation,
		}

	case SubmissionFailed:
		if !state.Submitting {
			return state, stepConflict("no submission in progress")
		}
		next.Submitting = false
		next.LastError = e.Message

	default:
		return state, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported event %T", event)
	}

	return next, nil
}

func requireStep(state State, want enums.BookingStep, e Event) error {
	if state.Step == want {
		return nil
	}
	return stepConflict(fmt.Sprintf("%s is not allowed on the %s step", EventName(e), state.Step)).
		WithDetails(map[string]string{"step": state.Step.String(), "expected": want.String()})
}

func stepConflict(msg string) *pkgerrors.Error {
	return pkgerrors.New(pkgerrors.CodeStateConflict, msg)
}

// checkSlot requires slotID to be a bookable slot on date.
func checkSlot(workshop catalog.Workshop, date string, slotID catalog.ID) error {
	if date == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "select a date first")
	}
	slot, ok := calendar.FindSlot(workshop.Schedule, slotID)
	if !ok {
		return pkgerrors.New(pkgerrors.CodeValidation, "unknown time slot")
	}
	if slot.Date != date {
		return pkgerrors.New(pkgerrors.CodeValidation, "time slot is not on the selected date")
	}
	if !slot.Bookable() {
		return pkgerrors.New(pkgerrors.CodeValidation, "time slot is no longer available")
	}
	return nil
}

func normalizeContact(c Contact) Contact {
	return Contact{
		FullName:  strings.TrimSpace(c.FullName),
		Email:     strings.TrimSpace(c.Email),
		Phone:     strings.TrimSpace(c.Phone),
		GSTNumber: strings.ToUpper(strings.TrimSpace(c.GSTNumber)),
	}
}

func checkContact(c Contact) error {
	if err := validate.Struct(c); err != nil {
		details, ok := validation.FieldErrors(err)
		if !ok {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "validate contact")
		}
		return pkgerrors.New(pkgerrors.CodeValidation, "contact details are missing or invalid").WithDetails(details)
	}
	return nil
}

// checkReady re-validates everything the reservation needs, since a state can
// arrive from a client.
func checkReady(workshop catalog.Workshop, d Draft) error {
	if err := checkSlot(workshop, d.Date, d.SlotID); err != nil {
		return err
	}
	if err := checkContact(normalizeContact(d.Contact)); err != nil {
		return err
	}
	if d.Participants < workshop.Participants.Min || d.Participants > workshop.Participants.Max {
		return pkgerrors.Newf(pkgerrors.CodeValidation, "participants must be between %d and %d", workshop.Participants.Min, workshop.Participants.Max)
	}
	if !d.Level.IsValid() {
		return pkgerrors.New(pkgerrors.CodeValidation, "invalid experience level")
	}
	return nil
}
