package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/logger"
	"github.com/basho-studio/storefront/pkg/metrics"
)

const relatedLimit = 3

// Source fetches raw catalog documents from the backend. Decoding and
// validation happen in this package.
type Source interface {
	FetchProducts(ctx context.Context) (json.RawMessage, error)
	FetchProduct(ctx context.Context, id string) (json.RawMessage, error)
	FetchWorkshops(ctx context.Context) (json.RawMessage, error)
}

// Service exposes read access to the shop and workshop catalog.
type Service interface {
	ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error)
	GetProduct(ctx context.Context, id string) (Product, error)
	RelatedProducts(ctx context.Context, id string) ([]Product, error)
	ListWorkshops(ctx context.Context, filter WorkshopFilter) ([]Workshop, error)
	GetWorkshop(ctx context.Context, id string) (Workshop, error)
	RelatedWorkshops(ctx context.Context, id string) ([]Workshop, error)
}

type Option func(*service)

// WithFixturesFallback serves the static catalog when the backend fails.
func WithFixturesFallback(enabled bool) Option {
	return func(s *service) {
		s.fallback = enabled
	}
}

func WithMetrics(m *metrics.Storefront) Option {
	return func(s *service) {
		s.metrics = m
	}
}

type service struct {
	source   Source
	logg     *logger.Logger
	metrics  *metrics.Storefront
	fallback bool
	group    singleflight.Group
}

// NewService constructs a catalog service over the given backend source.
func NewService(source Source, logg *logger.Logger, opts ...Option) (Service, error) {
	if source == nil {
		return nil, fmt.Errorf("catalog source required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{source: source, logg: logg}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

func (s *service) ListProducts(ctx context.Context, filter ProductFilter) ([]Product, error) {
	products, err := s.products(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Product, 0, len(products))
	for _, p := range products {
		if filter.match(p) {
			out = append(out, p)
		}
	}
	return out, nil
}

func (s *service) GetProduct(ctx context.Context, id string) (Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Product{}, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}

	v, err, _ := s.group.Do("product:"+id, func() (any, error) {
		return s.source.FetchProduct(ctx, id)
	})
	if err != nil {
		if pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
			return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		if !s.fallback {
			return Product{}, err
		}
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"product_id": id, "error": err.Error()}), "catalog.product.fallback")
		s.metrics.CatalogFallback("product")
		for _, p := range FixtureProducts() {
			if p.ID.String() == id {
				return p, nil
			}
		}
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}

	product, err := DecodeProduct(v.(json.RawMessage))
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"product_id": id, "error": err.Error()}), "catalog.product.invalid")
		return Product{}, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
	}
	return product, nil
}

// RelatedProducts returns up to three other products from the same category.
func (s *service) RelatedProducts(ctx context.Context, id string) ([]Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	products, err := s.ListProducts(ctx, ProductFilter{Category: product.Category})
	if err != nil {
		return nil, err
	}
	related := make([]Product, 0, relatedLimit)
	for _, p := range products {
		if p.ID == product.ID {
			continue
		}
		related = append(related, p)
		if len(related) == relatedLimit {
			break
		}
	}
	return related, nil
}

func (s *service) ListWorkshops(ctx context.Context, filter WorkshopFilter) ([]Workshop, error) {
	workshops, err := s.workshops(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]Workshop, 0, len(workshops))
	for _, w := range workshops {
		if filter.match(w) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (s *service) GetWorkshop(ctx context.Context, id string) (Workshop, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Workshop{}, pkgerrors.New(pkgerrors.CodeValidation, "workshop id is required")
	}
	workshops, err := s.workshops(ctx)
	if err != nil {
		return Workshop{}, err
	}
	for _, w := range workshops {
		if w.ID.String() == id {
			return w, nil
		}
	}
	return Workshop{}, pkgerrors.New(pkgerrors.CodeNotFound, "workshop not found")
}

// RelatedWorkshops returns up to three other workshops of the same type.
func (s *service) RelatedWorkshops(ctx context.Context, id string) ([]Workshop, error) {
	workshop, err := s.GetWorkshop(ctx, id)
	if err != nil {
		return nil, err
	}
	workshops, err := s.ListWorkshops(ctx, WorkshopFilter{Type: workshop.Type})
	if err != nil {
		return nil, err
	}
	related := make([]Workshop, 0, relatedLimit)
	for _, w := range workshops {
		if w.ID == workshop.ID {
			continue
		}
		related = append(related, w)
		if len(related) == relatedLimit {
			break
		}
	}
	return related, nil
}

func (s *service) products(ctx context.Context) ([]Product, error) {
	v, err, _ := s.group.Do("products", func() (any, error) {
		return s.source.FetchProducts(ctx)
	})
	if err != nil {
		if !s.fallback {
			return nil, err
		}
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.products.fallback")
		s.metrics.CatalogFallback("products")
		return FixtureProducts(), nil
	}

	products, decodeErr := DecodeProducts(v.(json.RawMessage))
	if decodeErr != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"error": decodeErr.Error(),
			"kept":  len(products),
		}), "catalog.products.invalid_records")
	}
	return products, nil
}

func (s *service) workshops(ctx context.Context) ([]Workshop, error) {
	v, err, _ := s.group.Do("workshops", func() (any, error) {
		return s.source.FetchWorkshops(ctx)
	})
	if err != nil {
		if !s.fallback {
			return nil, err
		}
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "catalog.workshops.fallback")
		s.metrics.CatalogFallback("workshops")
		return FixtureWorkshops(), nil
	}

	workshops, decodeErr := DecodeWorkshops(v.(json.RawMessage))
	if decodeErr != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{
			"error": decodeErr.Error(),
			"kept":  len(workshops),
		}), "catalog.workshops.invalid_records")
	}
	return workshops, nil
}
