package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/basho-studio/storefront/internal/catalog"
	"github.com/basho-studio/storefront/internal/pricing"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/logger"
	"github.com/basho-studio/storefront/pkg/metrics"
)

const DefaultKeyPrefix = "basho-cart"

type productLoader interface {
	GetProduct(ctx context.Context, id string) (catalog.Product, error)
}

// Snapshot is the cart as returned to clients.
type Snapshot struct {
	Items  []LineItem     `json:"items"`
	Count  int            `json:"count"`
	Totals pricing.Totals `json:"totals"`
}

// AddInput identifies what to add. The product itself is re-read from the
// catalog so price and stock are authoritative.
type AddInput struct {
	ProductID   string
	VariantCode string
	Quantity    int
}

// Service exposes session-scoped cart operations. Mutations on one session are
// applied one at a time in arrival order.
type Service interface {
	Get(ctx context.Context, sessionID string) (Snapshot, error)
	Add(ctx context.Context, sessionID string, input AddInput) (Snapshot, Result, error)
	UpdateQuantity(ctx context.Context, sessionID, productID, variantCode string, quantity int) (Snapshot, Result, error)
	Remove(ctx context.Context, sessionID, productID, variantCode string) (Snapshot, Result, error)
	Clear(ctx context.Context, sessionID string) (Snapshot, error)
	// WithStore runs fn against the session's store while holding its lock.
	WithStore(ctx context.Context, sessionID string, fn func(*Store) error) error
}

type Option func(*service)

func WithKeyPrefix(prefix string) Option {
	return func(s *service) {
		if p := strings.TrimSpace(prefix); p != "" {
			s.prefix = p
		}
	}
}

func WithMetrics(m *metrics.Storefront) Option {
	return func(s *service) {
		s.metrics = m
	}
}

func WithPricing(rules pricing.Rules) Option {
	return func(s *service) {
		s.rules = rules
	}
}

type service struct {
	persister Persister
	products  productLoader
	logg      *logger.Logger
	metrics   *metrics.Storefront
	rules     pricing.Rules
	prefix    string
	locks     *sessionLocks
}

// NewService builds a cart service over the given persister and catalog.
func NewService(persister Persister, products productLoader, logg *logger.Logger, opts ...Option) (Service, error) {
	if persister == nil {
		return nil, fmt.Errorf("cart persister required")
	}
	if products == nil {
		return nil, fmt.Errorf("product loader required")
	}
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}
	svc := &service{
		persister: persister,
		products:  products,
		logg:      logg,
		rules:     pricing.DefaultRules(),
		prefix:    DefaultKeyPrefix,
		locks:     newSessionLocks(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// StorageKey is the persister key for a session's cart.
func StorageKey(prefix, sessionID string) string {
	return prefix + ":" + sessionID
}

// ValidateSession checks that a cart session id is a UUID.
func ValidateSession(sessionID string) error {
	if _, err := uuid.Parse(strings.TrimSpace(sessionID)); err != nil {
		return pkgerrors.New(pkgerrors.CodeValidation, "cart session must be a uuid")
	}
	return nil
}

func (s *service) Get(ctx context.Context, sessionID string) (Snapshot, error) {
	var snap Snapshot
	err := s.WithStore(ctx, sessionID, func(store *Store) error {
		snap = s.snapshot(store)
		return nil
	})
	return snap, err
}

func (s *service) Add(ctx context.Context, sessionID string, input AddInput) (Snapshot, Result, error) {
	product, err := s.products.GetProduct(ctx, input.ProductID)
	if err != nil {
		s.metrics.CartMutation("add", outcomeFor(Result{}, err))
		return Snapshot{}, Result{}, err
	}

	var (
		snap Snapshot
		res  Result
	)
	err = s.WithStore(ctx, sessionID, func(store *Store) error {
		var mutErr error
		res, mutErr = store.AddItem(ctx, product, input.Quantity, catalog.GlazeColor{Code: input.VariantCode})
		snap = s.snapshot(store)
		return mutErr
	})
	s.record(ctx, "add", res, err)
	return snap, res, err
}

// UpdateQuantity re-reads the product so the clamp uses the same stock as Add.
// Removal (quantity <= 0) skips the catalog.
func (s *service) UpdateQuantity(ctx context.Context, sessionID, productID, variantCode string, quantity int) (Snapshot, Result, error) {
	product := catalog.Product{ID: catalog.ID(productID)}
	if quantity > 0 {
		var err error
		product, err = s.products.GetProduct(ctx, productID)
		if err != nil {
			s.metrics.CartMutation("update", outcomeFor(Result{}, err))
			return Snapshot{}, Result{}, err
		}
	}

	var (
		snap Snapshot
		res  Result
	)
	err := s.WithStore(ctx, sessionID, func(store *Store) error {
		var mutErr error
		res, mutErr = store.UpdateQuantity(ctx, product, variantCode, quantity)
		snap = s.snapshot(store)
		return mutErr
	})
	s.record(ctx, "update", res, err)
	return snap, res, err
}

func (s *service) Remove(ctx context.Context, sessionID, productID, variantCode string) (Snapshot, Result, error) {
	var (
		snap Snapshot
		res  Result
	)
	err := s.WithStore(ctx, sessionID, func(store *Store) error {
		var mutErr error
		res, mutErr = store.RemoveItem(ctx, catalog.ID(productID), variantCode)
		snap = s.snapshot(store)
		return mutErr
	})
	s.record(ctx, "remove", res, err)
	return snap, res, err
}

func (s *service) Clear(ctx context.Context, sessionID string) (Snapshot, error) {
	var snap Snapshot
	err := s.WithStore(ctx, sessionID, func(store *Store) error {
		if err := store.Clear(ctx); err != nil {
			return err
		}
		snap = s.snapshot(store)
		return nil
	})
	s.record(ctx, "clear", Result{}, err)
	return snap, err
}

func (s *service) WithStore(ctx context.Context, sessionID string, fn func(*Store) error) error {
	if err := ValidateSession(sessionID); err != nil {
		return err
	}
	sessionID = strings.TrimSpace(sessionID)

	unlock := s.locks.lock(sessionID)
	defer unlock()

	ctx = s.logg.WithCartSession(ctx, sessionID)
	store, err := Open(ctx, StorageKey(s.prefix, sessionID), s.persister, s.logg)
	if err != nil {
		return err
	}
	return fn(store)
}

func (s *service) snapshot(store *Store) Snapshot {
	return Snapshot{
		Items:  store.Lines(),
		Count:  store.Count(),
		Totals: s.rules.CartTotals(store.Total()),
	}
}

func (s *service) record(ctx context.Context, op string, res Result, err error) {
	outcome := outcomeFor(res, err)
	s.metrics.CartMutation(op, outcome)
	if err != nil && pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		s.logg.Error(s.logg.WithField(ctx, "op", op), "cart.mutation.persist_failed", err)
	}
}

func outcomeFor(res Result, err error) string {
	switch {
	case err == nil && res.Removed:
		return "removed"
	case err == nil && res.Clamped:
		return "clamped"
	case err == nil:
		return "ok"
	case pkgerrors.HasCode(err, pkgerrors.CodeOutOfStock):
		return "out_of_stock"
	case pkgerrors.HasCode(err, pkgerrors.CodeValidation), pkgerrors.HasCode(err, pkgerrors.CodeNotFound):
		return "rejected"
	default:
		return "error"
	}
}

// sessionLocks hands out one mutex per session and forgets it once no caller
// holds or waits on it.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sessionLock
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: map[string]*sessionLock{}}
}

func (l *sessionLocks) lock(id string) func() {
	l.mu.Lock()
	entry, ok := l.locks[id]
	if !ok {
		entry = &sessionLock{}
		l.locks[id] = entry
	}
	entry.refs++
	l.mu.Unlock()

	entry.mu.Lock()
	return func() {
		entry.mu.Unlock()
		l.mu.Lock()
		entry.refs--
		if entry.refs == 0 {
			delete(l.locks, id)
		}
		l.mu.Unlock()
	}
}
