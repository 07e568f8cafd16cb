package catalog

import (
	"bytes"
	"encoding/json"
	"fmt"

	"go.uber.org/multierr"

	"github.com/basho-studio/storefront/pkg/validation"
)

var validate = validation.New()

// DecodeProducts turns a backend product list into validated Products.
// Records that fail to decode or validate are skipped and reported in the
// returned error; the slice is always usable, possibly empty.
func DecodeProducts(data []byte) ([]Product, error) {
	records, err := splitList(data)
	if err != nil {
		return []Product{}, fmt.Errorf("decode product list: %w", err)
	}

	products := make([]Product, 0, len(records))
	var errs error
	for i, record := range records {
		product, err := DecodeProduct(record)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("product[%d]: %w", i, err))
			continue
		}
		products = append(products, product)
	}
	return products, errs
}

// DecodeProduct decodes and validates a single product record.
func DecodeProduct(data []byte) (Product, error) {
	var product Product
	if err := json.Unmarshal(data, &product); err != nil {
		return Product{}, err
	}
	if err := validate.Struct(product); err != nil {
		return Product{}, recordError(product.ID, err)
	}
	return product, nil
}

// DecodeWorkshops turns a backend workshop list into validated Workshops.
// Invalid workshops are skipped; invalid schedule entries are dropped from
// an otherwise valid workshop.
func DecodeWorkshops(data []byte) ([]Workshop, error) {
	records, err := splitList(data)
	if err != nil {
		return []Workshop{}, fmt.Errorf("decode workshop list: %w", err)
	}

	workshops := make([]Workshop, 0, len(records))
	var errs error
	for i, record := range records {
		workshop, err := DecodeWorkshop(record)
		if err != nil {
			errs = multierr.Append(errs, fmt.Errorf("workshop[%d]: %w", i, err))
		}
		if workshop.ID == "" {
			continue
		}
		workshops = append(workshops, workshop)
	}
	return workshops, errs
}

// DecodeWorkshop decodes a single workshop. When only schedule entries are
// invalid the workshop is returned with those entries removed alongside a
// non-nil error describing them.
func DecodeWorkshop(data []byte) (Workshop, error) {
	var workshop Workshop
	if err := json.Unmarshal(data, &workshop); err != nil {
		return Workshop{}, err
	}
	if err := validate.Struct(workshop); err != nil {
		return Workshop{}, recordError(workshop.ID, err)
	}

	var errs error
	schedule := make([]ScheduleSlot, 0, len(workshop.Schedule))
	for _, slot := range workshop.Schedule {
		if err := validate.Struct(slot); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("workshop %s slot %q: %w", workshop.ID, slot.ID, describe(err)))
			continue
		}
		schedule = append(schedule, slot)
	}
	workshop.Schedule = schedule
	return workshop, errs
}

// splitList accepts either a bare JSON array or a paginated
// {"results": [...]} envelope.
func splitList(data []byte) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '{' {
		var envelope struct {
			Results []json.RawMessage `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &envelope); err != nil {
			return nil, err
		}
		return envelope.Results, nil
	}
	var records []json.RawMessage
	if err := json.Unmarshal(trimmed, &records); err != nil {
		return nil, err
	}
	return records, nil
}

func recordError(id ID, err error) error {
	if id == "" {
		return describe(err)
	}
	return fmt.Errorf("id %q: %w", id, describe(err))
}

func describe(err error) error {
	details, ok := validation.FieldErrors(err)
	if !ok {
		return err
	}
	return fmt.Errorf("invalid fields %v", details)
}
