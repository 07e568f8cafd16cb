package booking

import (
	"github.com/basho-studio/storefront/internal/catalog"
	"github.com/basho-studio/storefront/internal/pricing"
	"github.com/basho-studio/storefront/pkg/bashoapi"
)

// Totals prices a reservation: the subtotal is per person or flat, then GST
// with no shipping component.
func Totals(rules pricing.Rules, workshop catalog.Workshop, participants int) pricing.Totals {
	return rules.BookingTotals(workshop.Subtotal(workshop.ClampParticipants(participants)))
}

// Payload builds the registration request for the draft.
func Payload(workshop catalog.Workshop, state State) bashoapi.WorkshopRegistration {
	d := state.Draft
	return bashoapi.WorkshopRegistration{
		Name:                 d.Contact.FullName,
		Email:                d.Contact.Email,
		Phone:                d.Contact.Phone,
		Workshop:             workshop.ID,
		Slot:                 d.SlotID,
		NumberOfParticipants: workshop.ClampParticipants(d.Participants),
		SpecialRequests:      d.SpecialRequests,
		GSTNumber:            d.Contact.GSTNumber,
	}
}
