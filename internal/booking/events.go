package booking

import (
	"encoding/json"

	"github.com/basho-studio/storefront/internal/catalog"
	"github.com/basho-studio/storefront/pkg/enums"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
)

// Event is a wizard input. The set is closed: only types in this package
// implement it.
type Event interface {
	eventName() string
}

// User events.
type (
	ContinueToCalendar   struct{}
	SelectDate           struct{ Date string }
	SelectSlot           struct{ SlotID catalog.ID }
	ContinueToForm       struct{}
	UpdateContact        struct{ Contact Contact }
	ContinueToExperience struct{}
	SetParticipants      struct{ Participants int }
	SetLevel             struct{ Level enums.ExperienceLevel }
	SetSpecialRequests   struct{ Text string }
	ContinueToReview     struct{}
	AcceptTerms          struct{ Accepted bool }
	Back                 struct{}
)

// Submission lifecycle events, driven by Submitter.
type (
	Submit              struct{}
	SubmissionSucceeded struct{ Confirmation Confirmation }
	SubmissionFailed    struct{ Message string }
)

func (ContinueToCalendar) eventName() string { return "continue_to_calendar" }
func (SelectDate) eventName() string { return "select_date" }
func (SelectSlot) eventName() string { return "select_slot" }
func (ContinueToForm) eventName() string { return "continue_to_form" }
func (UpdateContact) eventName() string { return "update_contact" }
func (ContinueToExperience) eventName() string { return "continue_to_experience" }
func (SetParticipants) eventName() string { return "set_participants" }
func (SetLevel) eventName() string { return "set_level" }
func (SetSpecialRequests) eventName() string { return "set_special_requests" }
func (ContinueToReview) eventName() string { return "continue_to_review" }
func (AcceptTerms) eventName() string { return "accept_terms" }
func (Back) eventName() string { return "back" }
func (Submit) eventName() string { return "submit" }
func (SubmissionSucceeded) eventName() string { return "submission_succeeded" }
func (SubmissionFailed) eventName() string { return "submission_failed" }

// EventName returns the wire name of an event.
func EventName(e Event) string {
	if e == nil {
		return ""
	}
	return e.eventName()
}

// wireEvent is the JSON form clients send: a type tag plus the fields the
// event needs.
type wireEvent struct {
	Type            string     `json:"type"`
	Date            string     `json:"date"`
	SlotID          catalog.ID `json:"slotId"`
	Contact         *Contact   `json:"contact"`
	Participants    *int       `json:"participants"`
	Level           string     `json:"level"`
	SpecialRequests string     `json:"specialRequests"`
	Accepted        *bool      `json:"accepted"`
}

// DecodeEvent parses a client event. Submission lifecycle events are not
// accepted from clients; the submit endpoint drives those.
func DecodeEvent(raw json.RawMessage) (Event, error) {
	var w wireEvent
	if err := json.Unmarshal(raw, &w); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid event payload")
	}

	switch w.Type {
	case "continue_to_calendar":
		return ContinueToCalendar{}, nil
	case "select_date":
		return SelectDate{Date: w.Date}, nil
	case "select_slot":
		return SelectSlot{SlotID: w.SlotID}, nil
	case "continue_to_form":
		return ContinueToForm{}, nil
	case "update_contact":
		if w.Contact == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "contact is required")
		}
		return UpdateContact{Contact: *w.Contact}, nil
	case "continue_to_experience":
		return ContinueToExperience{}, nil
	case "set_participants":
		if w.Participants == nil {
			return nil, pkgerrors.New(pkgerrors.CodeValidation, "participants is required")
		}
		return SetParticipants{Participants: *w.Participants}, nil
	case "set_level":
		return SetLevel{Level: enums.ExperienceLevel(w.Level)}, nil
	case "set_special_requests":
		return SetSpecialRequests{Text: w.SpecialRequests}, nil
	case "continue_to_review":
		return ContinueToReview{}, nil
	case "accept_terms":
		accepted := true
		if w.Accepted != nil {
			accepted = *w.Accepted
		}
		return AcceptTerms{Accepted: accepted}, nil
	case "back":
		return Back{}, nil
	case "":
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "event type is required")
	default:
		return nil, pkgerrors.Newf(pkgerrors.CodeValidation, "unsupported event %q", w.Type)
	}
}
