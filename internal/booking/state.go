// Package booking implements the workshop booking wizard as a value-typed
// state machine plus a guarded submitter for the reservation call.
package booking

import (
	"github.com/basho-studio/storefront/internal/catalog"
	"github.com/basho-studio/storefront/pkg/enums"
)

// Contact is what the form step collects. Name, email and phone only need to
// be non-empty; the backend owns format checks. GSTNumber is optional.
type Contact struct {
	FullName  string `json:"fullName" validate:"required,max=120"`
	Email     string `json:"email" validate:"required"`
	Phone     string `json:"phone" validate:"required"`
	GSTNumber string `json:"gstNumber,omitempty" validate:"omitempty,gstin"`
}

// Draft accumulates the visitor's choices across steps. Going Back never
// clears it.
type Draft struct {
	Date            string                `json:"date,omitempty"`
	SlotID          catalog.ID            `json:"slotId,omitempty"`
	Contact         Contact               `json:"contact"`
	Participants    int                   `json:"participants"`
	Level           enums.ExperienceLevel `json:"level"`
	SpecialRequests string                `json:"specialRequests,omitempty"`
	TermsAccepted   bool                  `json:"termsAccepted"`
}

// Confirmation is kept on the terminal state after a successful reservation.
type Confirmation struct {
	RegistrationID  catalog.ID `json:"registrationId"`
	RazorpayOrderID string     `json:"razorpayOrderId,omitempty"`
	Amount          int64      `json:"amount"`
}

// State is the whole wizard: where the visitor is, what they picked, and
// whether a reservation call is outstanding.
type State struct {
	Step         enums.BookingStep `json:"step"`
	Draft        Draft             `json:"draft"`
	Submitting   bool              `json:"submitting"`
	LastError    string            `json:"lastError,omitempty"`
	Confirmation *Confirmation     `json:"confirmation,omitempty"`
}

// NewState opens the wizard on the details step with the workshop's minimum
// headcount and the beginner level.
func NewState(workshop catalog.Workshop) State {
	return State{
		Step: enums.BookingStepDetails,
		Draft: Draft{
			Participants: workshop.ClampParticipants(workshop.Participants.Min),
			Level:        enums.ExperienceLevelBeginner,
		},
	}
}

func (s State) Confirmed() bool {
	return s.Step == enums.BookingStepConfirmed
}
