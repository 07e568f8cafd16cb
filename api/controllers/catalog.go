package controllers

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/basho-studio/storefront/api/responses"
	"github.com/basho-studio/storefront/api/validators"
	"github.com/basho-studio/storefront/internal/calendar"
	"github.com/basho-studio/storefront/internal/catalog"
	"github.com/basho-studio/storefront/pkg/enums"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/logger"
)

type productDetail struct {
	Product       catalog.Product   `json:"product"`
	CategoryLabel string            `json:"categoryLabel"`
	Related       []catalog.Product `json:"related"`
}

type workshopDetail struct {
	Workshop catalog.Workshop   `json:"workshop"`
	Related  []catalog.Workshop `json:"related"`
}

type calendarView struct {
	Month string         `json:"month"`
	Prev  string         `json:"prev"`
	Next  string         `json:"next"`
	Days  []calendar.Day `json:"days"`
}

type slotsView struct {
	Date  string                 `json:"date"`
	Slots []catalog.ScheduleSlot `json:"slots"`
}

// ProductList handles GET /api/v1/products with optional category and
// featured filters.
func ProductList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		category, err := validators.ParseQueryEnum(r, "category", enums.ProductCategory.IsValid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		filter := catalog.ProductFilter{
			Category: category,
			Featured: validators.ParseQueryString(r, "featured", "") == "true",
		}

		products, err := svc.ListProducts(r.Context(), filter)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, products)
	}
}

func ProductDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id := chi.URLParam(r, "productId")
		product, err := svc.GetProduct(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		related, err := svc.RelatedProducts(r.Context(), id)
		if err != nil {
			if logg != nil {
				logg.Warn(logg.WithFields(r.Context(), map[string]any{"product_id": id, "error": err.Error()}), "catalog.related_products.failed")
			}
			related = []catalog.Product{}
		}
		responses.WriteSuccess(w, productDetail{
			Product:       product,
			CategoryLabel: product.Category.Label(),
			Related:       related,
		})
	}
}

// WorkshopList handles GET /api/v1/workshops with optional type and level
// filters.
func WorkshopList(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		workshopType, err := validators.ParseQueryEnum(r, "type", enums.WorkshopType.IsValid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		level, err := validators.ParseQueryEnum(r, "level", enums.ExperienceLevel.IsValid)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		workshops, err := svc.ListWorkshops(r.Context(), catalog.WorkshopFilter{Type: workshopType, Level: level})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, workshops)
	}
}

func WorkshopDetail(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		id := chi.URLParam(r, "workshopId")
		workshop, err := svc.GetWorkshop(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		related, err := svc.RelatedWorkshops(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, workshopDetail{Workshop: workshop, Related: related})
	}
}

// WorkshopCalendar renders the 42-cell month grid for a workshop. The month
// defaults to the current one.
func WorkshopCalendar(svc catalog.Service, logg *logger.Logger, now func() time.Time) http.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		month := calendar.MonthOf(now())
		if raw := validators.ParseQueryString(r, "month", ""); raw != "" {
			parsed, err := calendar.ParseMonth(raw)
			if err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid month").WithDetails(map[string]any{"field": "month"}))
				return
			}
			month = parsed
		}

		workshop, err := svc.GetWorkshop(r.Context(), chi.URLParam(r, "workshopId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, calendarView{
			Month: month.String(),
			Prev:  month.Prev().String(),
			Next:  month.Next().String(),
			Days:  month.Grid(workshop.Schedule),
		})
	}
}

// WorkshopSlots lists the time slots scheduled on one date, bookable or not.
func WorkshopSlots(svc catalog.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "catalog service unavailable"))
			return
		}

		date, err := validators.RequireQuery(r, "date")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if _, err := calendar.ParseDate(date); err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid date").WithDetails(map[string]any{"field": "date"}))
			return
		}

		workshop, err := svc.GetWorkshop(r.Context(), chi.URLParam(r, "workshopId"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		slots := calendar.TimeSlotsForDate(workshop.Schedule, date)
		if slots == nil {
			slots = []catalog.ScheduleSlot{}
		}
		responses.WriteSuccess(w, slotsView{Date: date, Slots: slots})
	}
}
