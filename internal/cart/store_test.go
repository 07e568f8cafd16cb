package cart

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/basho-studio/storefront/internal/catalog"
	pkgerrors "github.com/basho-studio/storefront/pkg/errors"
	"github.com/basho-studio/storefront/pkg/logger"
)

const testKey = "basho-cart:test"

type failingPersister struct {
	*Memory
	saveErr error
	loadErr error
}

func (f *failingPersister) Load(ctx context.Context, key string) ([]byte, error) {
	if f.loadErr != nil {
		return nil, f.loadErr
	}
	return f.Memory.Load(ctx, key)
}

func (f *failingPersister) Save(ctx context.Context, key string, doc []byte) error {
	if f.saveErr != nil {
		return f.saveErr
	}
	return f.Memory.Save(ctx, key, doc)
}

func teaBowl() catalog.Product {
	return catalog.FixtureProducts()[0]
}

func soldOutBowl() catalog.Product {
	p := teaBowl()
	p.Stock = 0
	return p
}

func openStore(t *testing.T, persister Persister) *Store {
	t.Helper()
	store, err := Open(context.Background(), testKey, persister, logger.Nop())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	return store
}

func TestAddItemMergesAndClampsToStock(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, NewMemory())
	product := teaBowl()
	product.Stock = 5
	glaze := product.AvailableColors[0]

	res, err := store.AddItem(ctx, product, 2, glaze)
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if res.Quantity != 2 || res.Clamped {
		t.Fatalf("unexpected result %+v", res)
	}

	res, err = store.AddItem(ctx, product, 10, glaze)
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if res.Quantity != 5 || !res.Clamped || res.Requested != 10 {
		t.Fatalf("expected merge clamped to stock, got %+v", res)
	}
	if len(store.Lines()) != 1 || store.Count() != 5 {
		t.Fatalf("expected a single line of 5, got %+v", store.Lines())
	}
}

func TestAddItemVariantsAreSeparateLines(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, NewMemory())
	product := teaBowl()

	if _, err := store.AddItem(ctx, product, 1, product.AvailableColors[0]); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.AddItem(ctx, product, 2, product.AvailableColors[1]); err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(store.Lines()) != 2 {
		t.Fatalf("expected 2 lines, got %d", len(store.Lines()))
	}
	if !store.Contains(product.ID, product.AvailableColors[1].Code) {
		t.Fatal("expected second glaze line")
	}
	if store.Count() != 3 {
		t.Fatalf("expected count 3, got %d", store.Count())
	}
	if store.Total() != product.Price*3 {
		t.Fatalf("expected total %d, got %d", product.Price*3, store.Total())
	}
}

func TestAddItemRejectsOutOfStockAndBadQuantity(t *testing.T) {
	ctx := context.Background()
	persister := NewMemory()
	store := openStore(t, persister)
	product := teaBowl()

	soldOut := product
	soldOut.Stock = 0
	if _, err := store.AddItem(ctx, soldOut, 1, product.AvailableColors[0]); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}
	if _, err := store.AddItem(ctx, product, 0, product.AvailableColors[0]); !errors.Is(err, ErrInvalidQuantity) {
		t.Fatalf("expected invalid quantity, got %v", err)
	}
	if _, err := store.AddItem(ctx, product, 1, catalog.GlazeColor{Code: "neon-pink"}); !pkgerrors.HasCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error for unknown glaze, got %v", err)
	}
	if !store.IsEmpty() {
		t.Fatal("rejected adds must not change the cart")
	}
	if _, err := persister.Load(ctx, testKey); !errors.Is(err, ErrNotFound) {
		t.Fatalf("rejected adds must not persist, got %v", err)
	}
}

func TestUpdateQuantity(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, NewMemory())
	product := teaBowl()
	product.Stock = 4
	glaze := product.AvailableColors[0]
	if _, err := store.AddItem(ctx, product, 1, glaze); err != nil {
		t.Fatalf("add: %v", err)
	}

	res, err := store.UpdateQuantity(ctx, product, glaze.Code, 9)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Quantity != 4 || !res.Clamped {
		t.Fatalf("expected clamp to 4, got %+v", res)
	}

	res, err = store.UpdateQuantity(ctx, catalog.Product{ID: product.ID}, glaze.Code, 0)
	if err != nil {
		t.Fatalf("update to zero: %v", err)
	}
	if !res.Removed || store.Contains(product.ID, glaze.Code) {
		t.Fatalf("expected removal, got %+v", res)
	}

	if _, err := store.UpdateQuantity(ctx, product, glaze.Code, 2); !pkgerrors.HasCode(err, pkgerrors.CodeNotFound) {
		t.Fatalf("expected not found for missing line, got %v", err)
	}
}

func TestUpdateQuantityUsesCurrentStock(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, NewMemory())
	product := teaBowl()
	glaze := product.AvailableColors[0]
	if _, err := store.AddItem(ctx, product, 5, glaze); err != nil {
		t.Fatalf("add: %v", err)
	}

	restocked := product
	restocked.Stock = 3
	res, err := store.UpdateQuantity(ctx, restocked, glaze.Code, 5)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if res.Quantity != 3 || !res.Clamped {
		t.Fatalf("expected clamp to current stock 3, got %+v", res)
	}
	if got := store.Lines()[0].Product.Stock; got != 3 {
		t.Fatalf("expected refreshed snapshot stock 3, got %d", got)
	}

	soldOut := product
	soldOut.Stock = 0
	if _, err := store.UpdateQuantity(ctx, soldOut, glaze.Code, 1); !errors.Is(err, ErrOutOfStock) {
		t.Fatalf("expected out of stock, got %v", err)
	}
	if store.Count() != 3 {
		t.Fatalf("rejected update must leave the cart alone, got count %d", store.Count())
	}
}

func TestRemoveMissingLineIsNoop(t *testing.T) {
	store := openStore(t, NewMemory())
	res, err := store.RemoveItem(context.Background(), "nope", "x")
	if err != nil || res.Removed {
		t.Fatalf("expected no-op, got %+v %v", res, err)
	}
}

func TestMutationsPersistAndRehydrate(t *testing.T) {
	ctx := context.Background()
	persister := NewMemory()
	store := openStore(t, persister)
	product := teaBowl()
	if _, err := store.AddItem(ctx, product, 2, product.AvailableColors[1]); err != nil {
		t.Fatalf("add: %v", err)
	}

	reloaded := openStore(t, persister)
	lines := reloaded.Lines()
	if len(lines) != 1 || lines[0].Quantity != 2 || lines[0].SelectedColor.Code != product.AvailableColors[1].Code {
		t.Fatalf("unexpected rehydrated lines %+v", lines)
	}

	if err := reloaded.Clear(ctx); err != nil {
		t.Fatalf("clear: %v", err)
	}
	if !openStore(t, persister).IsEmpty() {
		t.Fatal("expected empty cart after clear")
	}
}

func TestOpenClampsQuantityToSnapshotStock(t *testing.T) {
	ctx := context.Background()
	product := teaBowl()
	product.Stock = 4
	persister := NewMemory()
	if err := persister.Save(ctx, testKey, []byte(mustLines(t, LineItem{Product: product, Quantity: 50, SelectedColor: product.AvailableColors[0]}))); err != nil {
		t.Fatalf("seed: %v", err)
	}

	lines := openStore(t, persister).Lines()
	if len(lines) != 1 || lines[0].Quantity != 4 {
		t.Fatalf("expected quantity clamped to 4, got %+v", lines)
	}
}

func TestOpenDiscardsMalformedDocument(t *testing.T) {
	ctx := context.Background()
	cases := map[string]string{
		"not json":      `{{{`,
		"wrong shape":   `{"items":[]}`,
		"zero quantity": mustLines(t, LineItem{Product: teaBowl(), Quantity: 0, SelectedColor: teaBowl().AvailableColors[0]}),
		"no glaze":      mustLines(t, LineItem{Product: teaBowl(), Quantity: 1}),
		"sold out":      mustLines(t, LineItem{Product: soldOutBowl(), Quantity: 1, SelectedColor: teaBowl().AvailableColors[0]}),
		"duplicate": mustLines(t,
			LineItem{Product: teaBowl(), Quantity: 1, SelectedColor: teaBowl().AvailableColors[0]},
			LineItem{Product: teaBowl(), Quantity: 2, SelectedColor: teaBowl().AvailableColors[0]},
		),
	}

	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			persister := NewMemory()
			if err := persister.Save(ctx, testKey, []byte(doc)); err != nil {
				t.Fatalf("seed: %v", err)
			}
			store := openStore(t, persister)
			if !store.IsEmpty() {
				t.Fatalf("expected empty cart, got %+v", store.Lines())
			}
			if _, err := persister.Load(ctx, testKey); !errors.Is(err, ErrNotFound) {
				t.Fatalf("expected malformed key to be deleted, got %v", err)
			}
		})
	}
}

func TestFailedPersistRollsBack(t *testing.T) {
	ctx := context.Background()
	persister := &failingPersister{Memory: NewMemory()}
	store := openStore(t, persister)
	product := teaBowl()
	if _, err := store.AddItem(ctx, product, 1, product.AvailableColors[0]); err != nil {
		t.Fatalf("add: %v", err)
	}

	persister.saveErr = errors.New("disk full")
	if _, err := store.AddItem(ctx, product, 1, product.AvailableColors[0]); !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
	if store.Count() != 1 {
		t.Fatalf("expected rollback to keep count 1, got %d", store.Count())
	}
}

func TestOpenLoadFailureIsDependencyError(t *testing.T) {
	persister := &failingPersister{Memory: NewMemory(), loadErr: errors.New("connection reset")}
	_, err := Open(context.Background(), testKey, persister, logger.Nop())
	if !pkgerrors.HasCode(err, pkgerrors.CodeDependency) {
		t.Fatalf("expected dependency error, got %v", err)
	}
}

func TestCheckoutItems(t *testing.T) {
	ctx := context.Background()
	store := openStore(t, NewMemory())
	products := catalog.FixtureProducts()
	if _, err := store.AddItem(ctx, products[0], 2, products[0].AvailableColors[0]); err != nil {
		t.Fatalf("add: %v", err)
	}
	if _, err := store.AddItem(ctx, products[1], 1, products[1].AvailableColors[0]); err != nil {
		t.Fatalf("add: %v", err)
	}

	items := store.CheckoutItems()
	if len(items) != 2 || items[0] != (CheckoutItem{ID: products[0].ID, Qty: 2}) || items[1] != (CheckoutItem{ID: products[1].ID, Qty: 1}) {
		t.Fatalf("unexpected checkout items %+v", items)
	}
}

func mustLines(t *testing.T, lines ...LineItem) string {
	t.Helper()
	raw, err := json.Marshal(lines)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(raw)
}
