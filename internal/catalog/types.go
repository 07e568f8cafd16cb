package catalog

import (
	"github.com/basho-studio/storefront/pkg/enums"
	"github.com/basho-studio/storefront/pkg/types"
)

// ID is a backend identifier, either an integer key or a slug.
type ID = types.ID

// GlazeColor is a purchasable variant of a product. Code identifies it.
type GlazeColor struct {
	Name string `json:"name" validate:"required"`
	Code string `json:"code" validate:"required"`
}

type Dimensions struct {
	Diameter string `json:"diameter,omitempty"`
	Height   string `json:"height,omitempty"`
	Width    string `json:"width,omitempty"`
	Length   string `json:"length,omitempty"`
	Capacity string `json:"capacity,omitempty"`
}

type Product struct {
	ID               ID                    `json:"id" validate:"required"`
	Name             string                `json:"name" validate:"required"`
	Category         enums.ProductCategory `json:"category" validate:"required,product_category"`
	Description      string                `json:"description"`
	LongDescription  string                `json:"longDescription,omitempty"`
	Price            int64                 `json:"price" validate:"gte=0"`
	Images           []string              `json:"images"`
	AvailableColors  []GlazeColor          `json:"availableColors" validate:"required,min=1,dive"`
	Features         []string              `json:"features,omitempty"`
	Dimensions       *Dimensions           `json:"dimensions,omitempty"`
	Materials        []string              `json:"materials,omitempty"`
	CareInstructions []string              `json:"careInstructions,omitempty"`
	IsFoodSafe       bool                  `json:"isFoodSafe"`
	IsMicrowaveSafe  bool                  `json:"isMicrowaveSafe"`
	IsDishwasherSafe bool                  `json:"isDishwasherSafe"`
	IsCustomizable   bool                  `json:"isCustomizable"`
	Stock            int                   `json:"stock" validate:"gte=0"`
	Weight           float64               `json:"weight" validate:"gte=0"`
	Featured         bool                  `json:"featured"`
	RelatedProducts  []string              `json:"relatedProducts,omitempty"`
}

// Color looks up one of the product's glaze variants by code.
func (p Product) Color(code string) (GlazeColor, bool) {
	for _, c := range p.AvailableColors {
		if c.Code == code {
			return c, true
		}
	}
	return GlazeColor{}, false
}

func (p Product) InStock() bool {
	return p.Stock > 0
}

type Participants struct {
	Min int `json:"min" validate:"gte=1"`
	Max int `json:"max" validate:"gtefield=Min"`
}

// ScheduleSlot is one bookable session of a workshop.
type ScheduleSlot struct {
	ID             ID     `json:"id" validate:"required"`
	Date           string `json:"date" validate:"required,iso_date"`
	StartTime      string `json:"startTime" validate:"required"`
	EndTime        string `json:"endTime" validate:"required"`
	AvailableSpots int    `json:"availableSpots" validate:"gte=0"`
	IsAvailable    bool   `json:"isAvailable"`
}

// Bookable reports whether the slot can still take a reservation.
func (s ScheduleSlot) Bookable() bool {
	return s.IsAvailable && s.AvailableSpots > 0
}

type Workshop struct {
	ID                ID                    `json:"id" validate:"required"`
	Name              string                `json:"name" validate:"required"`
	Type              enums.WorkshopType    `json:"type" validate:"required,workshop_type"`
	Level             enums.ExperienceLevel `json:"level" validate:"required,experience_level"`
	ExperienceType    enums.ExperienceType  `json:"experienceType,omitempty"`
	Description       string                `json:"description"`
	LongDescription   string                `json:"longDescription,omitempty"`
	Images            []string              `json:"images"`
	Duration          string                `json:"duration"`
	Participants      Participants          `json:"participants"`
	Price             int64                 `json:"price" validate:"gte=0"`
	PricePerPerson    bool                  `json:"pricePerPerson"`
	Includes          []string              `json:"includes,omitempty"`
	Requirements      []string              `json:"requirements,omitempty"`
	Schedule          []ScheduleSlot        `json:"schedule" validate:"-"`
	Location          string                `json:"location"`
	Instructor        string                `json:"instructor,omitempty"`
	TakeHome          string                `json:"takeHome,omitempty"`
	ProvidedMaterials []string              `json:"providedMaterials,omitempty"`
	Certificate       bool                  `json:"certificate"`
	LunchIncluded     bool                  `json:"lunchIncluded"`
	Featured          bool                  `json:"featured"`
}

// ClampParticipants forces n into the workshop's [min, max] headcount.
func (w Workshop) ClampParticipants(n int) int {
	if n < w.Participants.Min {
		return w.Participants.Min
	}
	if n > w.Participants.Max {
		return w.Participants.Max
	}
	return n
}

// Subtotal is the pre-tax price for the given headcount.
func (w Workshop) Subtotal(participants int) int64 {
	if w.PricePerPerson {
		return w.Price * int64(participants)
	}
	return w.Price
}

// Slot finds a schedule entry by id.
func (w Workshop) Slot(id ID) (ScheduleSlot, bool) {
	for _, s := range w.Schedule {
		if s.ID == id {
			return s, true
		}
	}
	return ScheduleSlot{}, false
}

// ProductFilter narrows product listings. Zero value returns everything.
type ProductFilter struct {
	Category enums.ProductCategory
	Featured bool
}

// WorkshopFilter narrows workshop listings. Zero value returns everything.
type WorkshopFilter struct {
	Type  enums.WorkshopType
	Level enums.ExperienceLevel
}

func (f ProductFilter) match(p Product) bool {
	if f.Category != "" && p.Category != f.Category {
		return false
	}
	if f.Featured && !p.Featured {
		return false
	}
	return true
}

func (f WorkshopFilter) match(w Workshop) bool {
	if f.Type != "" && w.Type != f.Type {
		return false
	}
	if f.Level != "" && w.Level != f.Level {
		return false
	}
	return true
}
