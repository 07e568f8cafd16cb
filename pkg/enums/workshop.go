package enums

import "fmt"

// WorkshopType distinguishes shared group sessions from private and themed experiences.
type WorkshopType string

const (
	WorkshopTypeGroup      WorkshopType = "group"
	WorkshopTypePrivate    WorkshopType = "private"
	WorkshopTypeExperience WorkshopType = "experience"
)

var validWorkshopTypes = []WorkshopType{
	WorkshopTypeGroup,
	WorkshopTypePrivate,
	WorkshopTypeExperience,
}

func (w WorkshopType) String() string {
	return string(w)
}

func (w WorkshopType) IsValid() bool {
	for _, candidate := range validWorkshopTypes {
		if candidate == w {
			return true
		}
	}
	return false
}

func ParseWorkshopType(value string) (WorkshopType, error) {
	for _, candidate := range validWorkshopTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid workshop type %q", value)
}

// ExperienceLevel is both the workshop difficulty and the level a participant
// declares while booking.
type ExperienceLevel string

const (
	ExperienceLevelBeginner     ExperienceLevel = "beginner"
	ExperienceLevelIntermediate ExperienceLevel = "intermediate"
	ExperienceLevelAdvanced     ExperienceLevel = "advanced"
)

var validExperienceLevels = []ExperienceLevel{
	ExperienceLevelBeginner,
	ExperienceLevelIntermediate,
	ExperienceLevelAdvanced,
}

func (l ExperienceLevel) String() string {
	return string(l)
}

func (l ExperienceLevel) IsValid() bool {
	for _, candidate := range validExperienceLevels {
		if candidate == l {
			return true
		}
	}
	return false
}

func ParseExperienceLevel(value string) (ExperienceLevel, error) {
	for _, candidate := range validExperienceLevels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid experience level %q", value)
}

// ExperienceType tags themed experiences (only set when the workshop type is experience).
type ExperienceType string

const (
	ExperienceTypeCouplesDate   ExperienceType = "couples_date"
	ExperienceTypeBirthdayParty ExperienceType = "birthday_party"
	ExperienceTypeCorporate     ExperienceType = "corporate"
	ExperienceTypeMasterclass   ExperienceType = "masterclass"
)

var validExperienceTypes = []ExperienceType{
	ExperienceTypeCouplesDate,
	ExperienceTypeBirthdayParty,
	ExperienceTypeCorporate,
	ExperienceTypeMasterclass,
}

func (e ExperienceType) IsValid() bool {
	for _, candidate := range validExperienceTypes {
		if candidate == e {
			return true
		}
	}
	return false
}
