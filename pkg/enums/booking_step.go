package enums

import "fmt"

// BookingStep is the current screen of the workshop booking wizard.
type BookingStep string

const (
	BookingStepDetails    BookingStep = "details"
	BookingStepCalendar   BookingStep = "calendar"
	BookingStepForm       BookingStep = "form"
	BookingStepExperience BookingStep = "experience"
	BookingStepReview     BookingStep = "review"
	BookingStepConfirmed  BookingStep = "confirmed"
)

// bookingStepOrder lists the linear wizard steps; confirmed sits outside the
// Back chain.
var bookingStepOrder = []BookingStep{
	BookingStepDetails,
	BookingStepCalendar,
	BookingStepForm,
	BookingStepExperience,
	BookingStepReview,
}

func (s BookingStep) String() string {
	return string(s)
}

func (s BookingStep) IsValid() bool {
	if s == BookingStepConfirmed {
		return true
	}
	return s.Index() >= 0
}

// Index returns the position of the step in the wizard, or -1 when the step is
// not part of the linear flow.
func (s BookingStep) Index() int {
	for i, candidate := range bookingStepOrder {
		if candidate == s {
			return i
		}
	}
	return -1
}

// Previous returns the step a Back action lands on. The initial and terminal
// steps have no predecessor.
func (s BookingStep) Previous() (BookingStep, bool) {
	idx := s.Index()
	if idx <= 0 {
		return s, false
	}
	return bookingStepOrder[idx-1], true
}

func ParseBookingStep(value string) (BookingStep, error) {
	step := BookingStep(value)
	if step.IsValid() {
		return step, nil
	}
	return "", fmt.Errorf("invalid booking step %q", value)
}
