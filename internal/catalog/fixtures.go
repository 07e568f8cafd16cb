package catalog

import "github.com/basho-studio/storefront/pkg/enums"

var (
	glazeEarthBrown   = GlazeColor{Name: "Earth Brown", Code: "#8B6F47"}
	glazeMatteWhite   = GlazeColor{Name: "Matte White", Code: "#F5F5DC"}
	glazeForestGreen  = GlazeColor{Name: "Forest Green", Code: "#4A7C59"}
	glazeOceanBlue    = GlazeColor{Name: "Ocean Blue", Code: "#4A7BA7"}
	glazeSunsetOrange = GlazeColor{Name: "Sunset Orange", Code: "#D4825C"}
	glazeStoneGrey    = GlazeColor{Name: "Stone Grey", Code: "#ACA394"}
)

const studioLocation = "Basho Studio, City Light Road, Surat"

// FixtureProducts returns the static shop listing served when the backend
// cannot be reached. Each call returns a fresh copy.
func FixtureProducts() []Product {
	return []Product{
		{
			ID:               "ceremonial-tea-bowl-001",
			Name:             "Ceremonial Tea Bowl",
			Category:         enums.ProductCategoryTableware,
			Description:      "Handcrafted chawan inspired by Japanese tea ceremony traditions.",
			Price:            2800,
			Images:           []string{"/Images/products/1.png"},
			AvailableColors:  []GlazeColor{glazeEarthBrown, glazeMatteWhite},
			Features:         []string{"Handcrafted on pottery wheel", "Inspired by Japanese chawan"},
			Dimensions:       &Dimensions{Diameter: "12cm", Height: "7cm", Capacity: "250ml"},
			Materials:        []string{"Stoneware clay", "Food-safe glaze"},
			CareInstructions: []string{"Hand wash recommended", "Avoid sudden temperature changes"},
			IsFoodSafe:       true,
			IsMicrowaveSafe:  true,
			IsCustomizable:   true,
			Stock:            12,
			Weight:           0.3,
			Featured:         true,
		},
		{
			ID:               "artisan-dinner-plate-002",
			Name:             "Artisan Dinner Plate",
			Category:         enums.ProductCategoryTableware,
			Description:      "Organic-shaped dinner plate with hand-carved textures.",
			Price:            1800,
			Images:           []string{"/Images/products/2.png"},
			AvailableColors:  []GlazeColor{glazeEarthBrown, glazeForestGreen},
			Features:         []string{"Hand-carved textures", "Organic flowing edges"},
			Dimensions:       &Dimensions{Diameter: "26cm", Height: "2.5cm"},
			Materials:        []string{"Stoneware clay", "Food-safe glaze"},
			CareInstructions: []string{"Dishwasher safe", "Avoid metal utensils"},
			IsFoodSafe:       true,
			IsMicrowaveSafe:  true,
			IsDishwasherSafe: true,
			IsCustomizable:   true,
			Stock:            8,
			Weight:           0.6,
			Featured:         true,
		},
		{
			ID:               "ikebana-flower-vase-003",
			Name:             "Ikebana Flower Vase",
			Category:         enums.ProductCategoryDecor,
			Description:      "Sculptural vase designed for Japanese flower arrangement.",
			Price:            3500,
			Images:           []string{"/Images/products/3.png"},
			AvailableColors:  []GlazeColor{glazeMatteWhite, glazeOceanBlue, glazeStoneGrey},
			Features:         []string{"Sculptural design", "Multiple stem placement options"},
			Dimensions:       &Dimensions{Diameter: "12cm", Height: "18cm"},
			Materials:        []string{"Stoneware clay", "Matte exterior finish"},
			CareInstructions: []string{"Wipe clean with damp cloth", "Change water regularly"},
			IsCustomizable:   true,
			Stock:            5,
			Weight:           0.8,
			Featured:         true,
		},
		{
			ID:               "large-serving-bowl-006",
			Name:             "Large Serving Bowl",
			Category:         enums.ProductCategoryTableware,
			Description:      "Statement serving bowl for family-style dining.",
			Price:            2400,
			Images:           []string{"/Images/products/6.png"},
			AvailableColors:  []GlazeColor{glazeMatteWhite, glazeSunsetOrange},
			Features:         []string{"Large capacity", "Family-style serving"},
			Dimensions:       &Dimensions{Diameter: "30cm", Height: "10cm"},
			Materials:        []string{"Stoneware clay", "Food-safe glaze"},
			CareInstructions: []string{"Dishwasher safe", "Handle with care due to size"},
			IsFoodSafe:       true,
			IsMicrowaveSafe:  true,
			IsDishwasherSafe: true,
			IsCustomizable:   true,
			Stock:            7,
			Weight:           1.2,
		},
	}
}

// FixtureWorkshops returns the static workshop listing used as a fallback.
func FixtureWorkshops() []Workshop {
	return []Workshop{
		{
			ID:             "wheel-throwing-basics-001",
			Name:           "Wheel Throwing Basics",
			Type:           enums.WorkshopTypeGroup,
			Level:          enums.ExperienceLevelBeginner,
			Description:    "Learn the fundamentals of pottery wheel throwing in this hands-on workshop.",
			Images:         []string{"/Images/workshop-pieces/1.png"},
			Duration:       "3 hours",
			Participants:   Participants{Min: 6, Max: 8},
			Price:          2500,
			PricePerPerson: true,
			Includes:       []string{"All materials", "Apron provided", "Lunch included", "Certificate"},
			Requirements:   []string{"No prior experience needed", "Wear comfortable clothes"},
			Schedule: []ScheduleSlot{
				{ID: "wtb-2026-01-12-10", Date: "2026-01-12", StartTime: "10:00 AM", EndTime: "1:00 PM", AvailableSpots: 8, IsAvailable: true},
				{ID: "wtb-2026-01-12-14", Date: "2026-01-12", StartTime: "2:00 PM", EndTime: "5:00 PM", AvailableSpots: 8, IsAvailable: true},
				{ID: "wtb-2026-01-19-10", Date: "2026-01-19", StartTime: "10:00 AM", EndTime: "1:00 PM", AvailableSpots: 8, IsAvailable: true},
			},
			Location:          studioLocation,
			Instructor:        "Shivangi",
			TakeHome:          "2 finished pottery pieces",
			ProvidedMaterials: []string{"Clay", "Tools", "Apron"},
			Certificate:       true,
			LunchIncluded:     true,
			Featured:          true,
		},
		{
			ID:             "hand-building-sculpting-002",
			Name:           "Hand Building & Sculpting",
			Type:           enums.WorkshopTypeGroup,
			Level:          enums.ExperienceLevelBeginner,
			Description:    "Create pottery using traditional hand-building techniques.",
			Images:         []string{"/Images/workshop-pieces/2.png"},
			Duration:       "4 hours",
			Participants:   Participants{Min: 6, Max: 10},
			Price:          3000,
			PricePerPerson: true,
			Includes:       []string{"All materials", "Lunch included", "Certificate"},
			Requirements:   []string{"No prior experience needed"},
			Schedule: []ScheduleSlot{
				{ID: "hbs-2026-01-15-10", Date: "2026-01-15", StartTime: "10:00 AM", EndTime: "2:00 PM", AvailableSpots: 10, IsAvailable: true},
				{ID: "hbs-2026-01-22-10", Date: "2026-01-22", StartTime: "10:00 AM", EndTime: "2:00 PM", AvailableSpots: 10, IsAvailable: true},
			},
			Location:          studioLocation,
			Instructor:        "Shivangi",
			TakeHome:          "2 hand-built pieces",
			ProvidedMaterials: []string{"Clay", "Hand tools"},
			Certificate:       true,
			LunchIncluded:     true,
			Featured:          true,
		},
		{
			ID:           "one-on-one-masterclass-003",
			Name:         "One-on-One Masterclass",
			Type:         enums.WorkshopTypePrivate,
			Level:        enums.ExperienceLevelIntermediate,
			Description:  "Personalized pottery session tailored to your skill level.",
			Images:       []string{"/Images/workshop-pieces/3.png"},
			Duration:     "2-3 hours",
			Participants: Participants{Min: 1, Max: 1},
			Price:        5000,
			Includes:     []string{"Personalized instruction", "All materials"},
			Requirements: []string{"Advance booking required"},
			Schedule: []ScheduleSlot{
				{ID: "oom-2026-01-12-10", Date: "2026-01-12", StartTime: "10:00 AM", EndTime: "1:00 PM", AvailableSpots: 1, IsAvailable: true},
			},
			Location:          studioLocation,
			Instructor:        "Shivangi",
			TakeHome:          "Depends on project",
			ProvidedMaterials: []string{"All materials"},
			Featured:          true,
		},
		{
			ID:             "couples-pottery-date-004",
			Name:           "Couples Pottery Date",
			Type:           enums.WorkshopTypeExperience,
			Level:          enums.ExperienceLevelBeginner,
			ExperienceType: enums.ExperienceTypeCouplesDate,
			Description:    "A romantic pottery experience for two.",
			Images:         []string{"/Images/workshop-pieces/5.png"},
			Duration:       "2.5 hours",
			Participants:   Participants{Min: 2, Max: 2},
			Price:          4500,
			Includes:       []string{"Private session", "Refreshments"},
			Requirements:   []string{"Advance booking required"},
			Schedule: []ScheduleSlot{
				{ID: "cpd-2026-01-14-17", Date: "2026-01-14", StartTime: "5:00 PM", EndTime: "7:30 PM", AvailableSpots: 1, IsAvailable: true},
			},
			Location:          studioLocation,
			Instructor:        "Shivangi",
			TakeHome:          "Pottery pieces created together",
			ProvidedMaterials: []string{"Clay", "Tools"},
		},
	}
}
