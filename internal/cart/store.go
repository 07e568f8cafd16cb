package cart

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/basho-studio/storefront/internal/catalog"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/logger"
	"github.com/basho-studio/storefront/pkg/validation"
)

var validate = validation.New()

// Store holds the line items of one cart session. Every mutation is written
// through to the Persister before it returns; a failed write leaves the
// in-memory lines untouched. A Store is not safe for concurrent use.
type Store struct {
	key       string
	persister Persister
	logg      *logger.Logger
	lines     []LineItem
}

// Open hydrates the cart stored under key. A missing document yields an empty
// cart; a malformed one is discarded with a warning and its key deleted.
func Open(ctx context.Context, key string, persister Persister, logg *logger.Logger) (*Store, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("cart key required")
	}
	if persister == nil {
		return nil, fmt.Errorf("cart persister required")
	}
	if logg == nil {
		logg = logger.Nop()
	}

	s := &Store{key: key, persister: persister, logg: logg, lines: []LineItem{}}

	doc, err := persister.Load(ctx, key)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return s, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load cart")
	}

	lines, err := decodeLines(doc)
	if err != nil {
		s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cart_key": key, "error": err.Error()}), "cart.hydrate.malformed")
		if delErr := persister.Delete(ctx, key); delErr != nil {
			s.logg.Warn(s.logg.WithFields(ctx, map[string]any{"cart_key": key, "error": delErr.Error()}), "cart.hydrate.delete_failed")
		}
		return s, nil
	}
	s.lines = lines
	return s, nil
}

// decodeLines parses a stored document. Any line that fails validation,
// repeats an earlier (product, glaze) key or has an out-of-stock snapshot
// invalidates the whole document. Quantities above the snapshot stock are
// clamped down to it.
func decodeLines(doc []byte) ([]LineItem, error) {
	var lines []LineItem
	if err := json.Unmarshal(doc, &lines); err != nil {
		return nil, fmt.Errorf("decode cart document: %w", err)
	}
	seen := make(map[LineKey]struct{}, len(lines))
	for i, line := range lines {
		if err := validate.Struct(line); err != nil {
			return nil, fmt.Errorf("line %d: %w", i, err)
		}
		if line.SelectedColor.Code == "" {
			return nil, fmt.Errorf("line %d: glaze code missing", i)
		}
		if _, dup := seen[line.Key()]; dup {
			return nil, fmt.Errorf("line %d: duplicate line %s/%s", i, line.Product.ID, line.SelectedColor.Code)
		}
		if !line.Product.InStock() {
			return nil, fmt.Errorf("line %d: product %s has no stock", i, line.Product.ID)
		}
		lines[i].Quantity = clampQuantity(line.Quantity, line.Product.Stock)
		seen[line.Key()] = struct{}{}
	}
	if lines == nil {
		lines = []LineItem{}
	}
	return lines, nil
}

// Key is the storage key the cart is persisted under.
func (s *Store) Key() string {
	return s.key
}

// AddItem merges quantity into the (product, variant) line, clamped to stock,
// or inserts a new line clamped to [1, stock].
func (s *Store) AddItem(ctx context.Context, product catalog.Product, quantity int, variant catalog.GlazeColor) (Result, error) {
	if !product.InStock() {
		return Result{Requested: quantity}, ErrOutOfStock
	}
	if quantity <= 0 {
		return Result{Requested: quantity}, ErrInvalidQuantity
	}
	color, ok := product.Color(variant.Code)
	if !ok {
		return Result{Requested: quantity}, pkgerrors.Newf(pkgerrors.CodeValidation, "glaze %q is not offered for this product", variant.Code).
			WithDetails(map[string]string{"variant": variant.Code})
	}

	next := s.copyLines()
	key := LineKey{ProductID: product.ID, VariantCode: color.Code}
	idx := indexOf(next, key)

	var res Result
	if idx >= 0 {
		wanted := next[idx].Quantity + quantity
		merged := clampQuantity(wanted, product.Stock)
		next[idx].Product = product
		next[idx].Quantity = merged
		res = Result{Requested: quantity, Quantity: merged, Clamped: merged != wanted}
	} else {
		q := clampQuantity(quantity, product.Stock)
		next = append(next, LineItem{Product: product, Quantity: q, SelectedColor: color})
		res = Result{Requested: quantity, Quantity: q, Clamped: q != quantity}
	}

	if err := s.commit(ctx, next); err != nil {
		return Result{Requested: quantity}, err
	}
	return res, nil
}

// UpdateQuantity sets the line's quantity clamped to [1, product.Stock] and
// refreshes the line's product snapshot. n <= 0 removes the line and only
// needs product.ID.
func (s *Store) UpdateQuantity(ctx context.Context, product catalog.Product, variantCode string, n int) (Result, error) {
	if n <= 0 {
		res, err := s.RemoveItem(ctx, product.ID, variantCode)
		res.Requested = n
		return res, err
	}

	idx := indexOf(s.lines, LineKey{ProductID: product.ID, VariantCode: variantCode})
	if idx < 0 {
		return Result{Requested: n}, pkgerrors.New(pkgerrors.CodeNotFound, "cart line not found")
	}
	if !product.InStock() {
		return Result{Requested: n}, ErrOutOfStock
	}

	next := s.copyLines()
	q := clampQuantity(n, product.Stock)
	next[idx].Product = product
	next[idx].Quantity = q
	if err := s.commit(ctx, next); err != nil {
		return Result{Requested: n}, err
	}
	return Result{Requested: n, Quantity: q, Clamped: q != n}, nil
}

// RemoveItem deletes the line if present. Removing an absent line is a no-op.
func (s *Store) RemoveItem(ctx context.Context, productID catalog.ID, variantCode string) (Result, error) {
	idx := indexOf(s.lines, LineKey{ProductID: productID, VariantCode: variantCode})
	if idx < 0 {
		return Result{}, nil
	}
	next := make([]LineItem, 0, len(s.lines)-1)
	next = append(next, s.lines[:idx]...)
	next = append(next, s.lines[idx+1:]...)
	if err := s.commit(ctx, next); err != nil {
		return Result{}, err
	}
	return Result{Removed: true}, nil
}

// Clear empties the cart and drops its stored document.
func (s *Store) Clear(ctx context.Context) error {
	if err := s.persister.Delete(ctx, s.key); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "clear cart")
	}
	s.lines = []LineItem{}
	return nil
}

// Total is the sum of price * quantity across lines.
func (s *Store) Total() int64 {
	var total int64
	for _, line := range s.lines {
		total += line.LineTotal()
	}
	return total
}

// Count is the total quantity across lines.
func (s *Store) Count() int {
	count := 0
	for _, line := range s.lines {
		count += line.Quantity
	}
	return count
}

func (s *Store) Contains(productID catalog.ID, variantCode string) bool {
	return indexOf(s.lines, LineKey{ProductID: productID, VariantCode: variantCode}) >= 0
}

// Lines returns a copy of the lines in insertion order.
func (s *Store) Lines() []LineItem {
	return s.copyLines()
}

func (s *Store) IsEmpty() bool {
	return len(s.lines) == 0
}

// CheckoutItems maps each line to an order entry.
func (s *Store) CheckoutItems() []CheckoutItem {
	items := make([]CheckoutItem, 0, len(s.lines))
	for _, line := range s.lines {
		items = append(items, CheckoutItem{ID: line.Product.ID, Qty: line.Quantity})
	}
	return items
}

func (s *Store) commit(ctx context.Context, next []LineItem) error {
	doc, err := json.Marshal(next)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode cart")
	}
	if err := s.persister.Save(ctx, s.key, doc); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "persist cart")
	}
	s.lines = next
	return nil
}

func (s *Store) copyLines() []LineItem {
	out := make([]LineItem, len(s.lines))
	copy(out, s.lines)
	return out
}

func indexOf(lines []LineItem, key LineKey) int {
	for i, line := range lines {
		if line.Key() == key {
			return i
		}
	}
	return -1
}
