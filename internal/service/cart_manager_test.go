package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/models"

	"github.com/shopspring/decimal"
)

type staticAuth bool

func (a staticAuth) IsAuthenticated() bool { return bool(a) }

type remoteCartStub struct {
	addCalls []AddCartItemInput
	cart     *models.Cart
	err      error
}

func (s *remoteCartStub) AddItem(_ context.Context, input AddCartItemInput) (*models.Cart, error) {
	s.addCalls = append(s.addCalls, input)
	if s.err != nil {
		return nil, s.err
	}
	return s.cart, nil
}

func (s *remoteCartStub) GetCart(_ context.Context) (*models.Cart, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.cart, nil
}

type failingStore struct {
	*MemoryStore
	setErr error
}

func (s failingStore) Set(_ context.Context, _, _ string) error {
	return s.setErr
}

func newGuestManager(t *testing.T) (*CartManager, *MemoryStore) {
	t.Helper()
	store := NewMemoryStore()
	manager := NewCartManager(store, nil, staticAuth(false), nil)
	manager.now = func() time.Time { return time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC) }
	return manager, store
}

func guideInput(id string, price float64) AddCartItemInput {
	return AddCartItemInput{
		ProductID:   id,
		ProductName: "Guide " + id,
		ProductType: constants.ProductTypeIndividual,
		Price:       models.NewPriceFromFloat(price),
	}
}

func TestGetGuestCartMissingOrCorrupt(t *testing.T) {
	manager, store := newGuestManager(t)
	ctx := context.Background()

	cart := manager.GetGuestCart(ctx)
	if len(cart.Items) != 0 || cart.ItemCount != 0 || !cart.Subtotal.Decimal.IsZero() {
		t.Fatalf("missing cart should be empty: %+v", cart)
	}

	_ = store.Set(ctx, constants.GuestCartStorageKey, "{not json")
	cart = manager.GetGuestCart(ctx)
	if len(cart.Items) != 0 {
		t.Fatalf("corrupt cart should be empty: %+v", cart)
	}
}

func TestGetGuestCartRecomputesDerivedFields(t *testing.T) {
	manager, store := newGuestManager(t)
	ctx := context.Background()
	_ = store.Set(ctx, constants.GuestCartStorageKey, `{"items":[{"product_id":"a","price":"5.99","quantity":2},{"product_id":"b","price":3}],"subtotal":999,"item_count":42}`)

	cart := manager.GetGuestCart(ctx)
	if cart.ItemCount != 3 {
		t.Fatalf("item count want 3 got %d", cart.ItemCount)
	}
	if !cart.Subtotal.Decimal.Equal(decimal.RequireFromString("14.98")) {
		t.Fatalf("subtotal want 14.98 got %s", cart.Subtotal.Decimal.String())
	}
}

func TestSaveGuestCartRoundTrip(t *testing.T) {
	manager, store := newGuestManager(t)
	ctx := context.Background()
	cart := &models.Cart{
		Items: []models.CartItem{{ProductID: "a", Price: models.NewPriceFromFloat(5.99), Quantity: 2}},
	}
	recalculate(cart)
	if err := manager.SaveGuestCart(ctx, cart); err != nil {
		t.Fatalf("save guest cart failed: %v", err)
	}

	raw, ok, _ := store.Get(ctx, constants.GuestCartStorageKey)
	if !ok {
		t.Fatalf("guest cart should be stored under %s", constants.GuestCartStorageKey)
	}
	var decoded map[string]interface{}
	if err := json.Unmarshal([]byte(raw), &decoded); err != nil {
		t.Fatalf("stored cart should be json: %v", err)
	}
	if _, isNumber := decoded["subtotal"].(float64); !isNumber {
		t.Fatalf("subtotal should be stored as number: %s", raw)
	}

	loaded := manager.GetGuestCart(ctx)
	if loaded.ItemCount != 2 || loaded.Items[0].ProductID != "a" {
		t.Fatalf("unexpected loaded cart: %+v", loaded)
	}
}

func TestAddItemGuestMergesQuantity(t *testing.T) {
	manager, _ := newGuestManager(t)
	ctx := context.Background()

	var notified []*models.Cart
	manager.Subscribe(func(cart *models.Cart) {
		notified = append(notified, cart)
	})

	if _, err := manager.AddItem(ctx, guideInput("a", 5.99)); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	input := guideInput("a", 5.99)
	input.Quantity = 2
	if _, err := manager.AddItem(ctx, input); err != nil {
		t.Fatalf("add item failed: %v", err)
	}
	cart, err := manager.AddItem(ctx, guideInput("b", 4.00))
	if err != nil {
		t.Fatalf("add item failed: %v", err)
	}

	if len(cart.Items) != 2 {
		t.Fatalf("expected 2 distinct items, got %d", len(cart.Items))
	}
	if cart.Items[0].Quantity != 3 {
		t.Fatalf("merged quantity want 3 got %d", cart.Items[0].Quantity)
	}
	if !cart.Items[0].AddedAt.Equal(time.Date(2026, 3, 1, 8, 0, 0, 0, time.UTC)) {
		t.Fatalf("unexpected added_at %v", cart.Items[0].AddedAt)
	}
	if manager.GetItemCount() != 4 {
		t.Fatalf("item count want 4 got %d", manager.GetItemCount())
	}
	if !manager.GetSubtotal().Equal(decimal.RequireFromString("21.97")) {
		t.Fatalf("subtotal want 21.97 got %s", manager.GetSubtotal().String())
	}
	if len(notified) != 3 {
		t.Fatalf("listener should fire per add, got %d", len(notified))
	}
	if !manager.IsInCart("a") || manager.IsInCart("missing") {
		t.Fatalf("unexpected IsInCart result")
	}

	reloaded := manager.GetGuestCart(ctx)
	if reloaded.ItemCount != 4 {
		t.Fatalf("persisted item count want 4 got %d", reloaded.ItemCount)
	}
}

func TestAddItemRejectsInvalidInput(t *testing.T) {
	manager, _ := newGuestManager(t)
	if _, err := manager.AddItem(context.Background(), AddCartItemInput{ProductID: "  "}); !errors.Is(err, ErrInvalidCartItem) {
		t.Fatalf("empty product id should be rejected, got %v", err)
	}
	input := guideInput("a", 1)
	input.Quantity = -1
	if _, err := manager.AddItem(context.Background(), input); !errors.Is(err, ErrInvalidCartItem) {
		t.Fatalf("negative quantity should be rejected, got %v", err)
	}
	input.Quantity = constants.MaxCartItemQuantity + 1
	if _, err := manager.AddItem(context.Background(), input); !errors.Is(err, ErrInvalidCartItem) {
		t.Fatalf("quantity above cap should be rejected, got %v", err)
	}
	negative := guideInput("b", -100)
	if _, err := manager.AddItem(context.Background(), negative); !errors.Is(err, ErrInvalidCartItem) {
		t.Fatalf("negative price should be rejected, got %v", err)
	}
	if manager.GetItemCount() != 0 {
		t.Fatalf("rejected items should not change the cart")
	}
}

func TestAddItemMergedQuantityCannotExceedCap(t *testing.T) {
	manager, store := newGuestManager(t)
	ctx := context.Background()
	input := guideInput("a", 5.99)
	input.Quantity = constants.MaxCartItemQuantity
	if _, err := manager.AddItem(ctx, input); err != nil {
		t.Fatalf("add at cap failed: %v", err)
	}
	input.Quantity = 1
	if _, err := manager.AddItem(ctx, input); !errors.Is(err, ErrInvalidCartItem) {
		t.Fatalf("merged quantity above cap should be rejected, got %v", err)
	}
	cart := manager.GetGuestCart(ctx)
	if cart.Items[0].Quantity != constants.MaxCartItemQuantity || cart.ItemCount != constants.MaxCartItemQuantity {
		t.Fatalf("stored cart should keep capped quantity, got %+v", cart)
	}
	if cart.Subtotal.IsNegative() {
		t.Fatalf("subtotal should stay non-negative, got %s", cart.Subtotal.String())
	}
	if store.Len() != 1 {
		t.Fatalf("expected a single stored entry, got %d", store.Len())
	}
}

type flakyReadStore struct {
	*MemoryStore
	getErr error
}

func (s *flakyReadStore) Get(ctx context.Context, key string) (string, bool, error) {
	if s.getErr != nil {
		err := s.getErr
		s.getErr = nil
		return "", false, err
	}
	return s.MemoryStore.Get(ctx, key)
}

func TestMutationsDoNotOverwriteCartOnReadFailure(t *testing.T) {
	ctx := context.Background()
	store := &flakyReadStore{MemoryStore: NewMemoryStore()}
	manager := NewCartManager(store, nil, staticAuth(false), nil)
	for _, id := range []string{"a", "b", "c"} {
		if _, err := manager.AddItem(ctx, guideInput(id, 5.99)); err != nil {
			t.Fatalf("add %s failed: %v", id, err)
		}
	}

	readErr := errors.New("connection reset")
	store.getErr = readErr
	if _, err := manager.AddItem(ctx, guideInput("d", 5.99)); !errors.Is(err, ErrStoreUnavailable) || !errors.Is(err, readErr) {
		t.Fatalf("add should surface read failure, got %v", err)
	}
	store.getErr = readErr
	if _, err := manager.RemoveItem(ctx, "a"); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("remove should surface read failure, got %v", err)
	}

	cart := manager.GetGuestCart(ctx)
	if len(cart.Items) != 3 || cart.ItemCount != 3 {
		t.Fatalf("stored cart should be untouched, got %+v", cart)
	}
}

func TestAddItemCorruptStoredCartStartsFresh(t *testing.T) {
	manager, store := newGuestManager(t)
	ctx := context.Background()
	_ = store.Set(ctx, constants.GuestCartStorageKey, "{not json")
	cart, err := manager.AddItem(ctx, guideInput("a", 5.99))
	if err != nil {
		t.Fatalf("corrupt cart should be replaced, got %v", err)
	}
	if len(cart.Items) != 1 || cart.ItemCount != 1 {
		t.Fatalf("unexpected cart %+v", cart)
	}
}

func TestAddItemAuthenticatedUsesRemote(t *testing.T) {
	store := NewMemoryStore()
	remote := &remoteCartStub{cart: &models.Cart{
		Items:     []models.CartItem{{ProductID: "server", Price: models.NewPriceFromFloat(9), Quantity: 1}},
		Subtotal:  models.NewPriceFromFloat(9),
		ItemCount: 1,
	}}
	manager := NewCartManager(store, remote, staticAuth(true), nil)

	notifications := 0
	manager.Subscribe(func(*models.Cart) { notifications++ })

	cart, err := manager.AddItem(context.Background(), guideInput("a", 5.99))
	if err != nil {
		t.Fatalf("remote add failed: %v", err)
	}
	if len(remote.addCalls) != 1 || remote.addCalls[0].Quantity != 1 {
		t.Fatalf("remote should receive one call with quantity 1: %+v", remote.addCalls)
	}
	if cart.Items[0].ProductID != "server" || !manager.IsInCart("server") {
		t.Fatalf("server cart should replace local state: %+v", cart)
	}
	if store.Len() != 0 {
		t.Fatalf("authenticated add should not touch guest storage")
	}
	if notifications != 1 {
		t.Fatalf("expected one notification, got %d", notifications)
	}
}

func TestAddItemAuthenticatedRemoteFailure(t *testing.T) {
	remote := &remoteCartStub{err: ErrRemoteCartUnavailable}
	manager := NewCartManager(NewMemoryStore(), remote, staticAuth(true), nil)
	notifications := 0
	manager.Subscribe(func(*models.Cart) { notifications++ })

	if _, err := manager.AddItem(context.Background(), guideInput("a", 5.99)); !errors.Is(err, ErrRemoteCartUnavailable) {
		t.Fatalf("remote error should propagate, got %v", err)
	}
	if notifications != 0 || manager.GetItemCount() != 0 {
		t.Fatalf("failed remote add should not change state")
	}
}

func TestAddItemGuestSaveFailure(t *testing.T) {
	store := failingStore{MemoryStore: NewMemoryStore(), setErr: ErrStoreUnavailable}
	manager := NewCartManager(store, nil, staticAuth(false), nil)
	if _, err := manager.AddItem(context.Background(), guideInput("a", 1)); !errors.Is(err, ErrStoreUnavailable) {
		t.Fatalf("save error should propagate, got %v", err)
	}
	if manager.IsInCart("a") {
		t.Fatalf("state should not change when save fails")
	}
}

func TestRemoveItemNotifiesEvenWhenMissing(t *testing.T) {
	manager, _ := newGuestManager(t)
	ctx := context.Background()
	_, _ = manager.AddItem(ctx, guideInput("a", 5.99))
	_, _ = manager.AddItem(ctx, guideInput("b", 5.99))

	notifications := 0
	manager.Subscribe(func(*models.Cart) { notifications++ })

	cart, err := manager.RemoveItem(ctx, "a")
	if err != nil {
		t.Fatalf("remove failed: %v", err)
	}
	if len(cart.Items) != 1 || cart.Items[0].ProductID != "b" || cart.ItemCount != 1 {
		t.Fatalf("unexpected cart after remove: %+v", cart)
	}
	if _, err := manager.RemoveItem(ctx, "missing"); err != nil {
		t.Fatalf("remove missing failed: %v", err)
	}
	if notifications != 2 {
		t.Fatalf("expected 2 notifications, got %d", notifications)
	}
	if manager.GetGuestCart(ctx).ItemCount != 1 {
		t.Fatalf("removal should persist")
	}
}

func TestClearCartRemovesStorage(t *testing.T) {
	manager, store := newGuestManager(t)
	ctx := context.Background()
	_, _ = manager.AddItem(ctx, guideInput("a", 5.99))

	var last *models.Cart
	manager.Subscribe(func(cart *models.Cart) { last = cart })

	if _, err := manager.ClearCart(ctx); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, ok, _ := store.Get(ctx, constants.GuestCartStorageKey); ok {
		t.Fatalf("clear should remove the storage key")
	}
	if last == nil || len(last.Items) != 0 || last.ItemCount != 0 {
		t.Fatalf("listeners should see empty cart: %+v", last)
	}
	if manager.GetItemCount() != 0 || !manager.GetSubtotal().IsZero() {
		t.Fatalf("getters should report empty cart")
	}
}

func TestSubscribeUnsubscribeIsIdempotent(t *testing.T) {
	manager, _ := newGuestManager(t)
	ctx := context.Background()
	first, second := 0, 0
	unsubscribe := manager.Subscribe(func(*models.Cart) { first++ })
	manager.Subscribe(func(*models.Cart) { second++ })

	_, _ = manager.AddItem(ctx, guideInput("a", 1))
	unsubscribe()
	unsubscribe()
	_, _ = manager.AddItem(ctx, guideInput("b", 1))

	if first != 1 || second != 2 {
		t.Fatalf("unexpected listener calls first=%d second=%d", first, second)
	}
}

func TestListenerPanicDoesNotStopOthers(t *testing.T) {
	manager, _ := newGuestManager(t)
	called := false
	manager.Subscribe(func(*models.Cart) { panic("boom") })
	manager.Subscribe(func(*models.Cart) { called = true })

	if _, err := manager.AddItem(context.Background(), guideInput("a", 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if !called {
		t.Fatalf("second listener should still run")
	}
}

func TestGetItemsReturnsCopy(t *testing.T) {
	manager, _ := newGuestManager(t)
	_, _ = manager.AddItem(context.Background(), guideInput("a", 1))
	items := manager.GetItems()
	items[0].ProductID = "changed"
	if !manager.IsInCart("a") {
		t.Fatalf("GetItems should return a copy")
	}
}

func TestLoadAuthenticatedAndGuest(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()
	_ = store.Set(ctx, constants.GuestCartStorageKey, `{"items":[{"product_id":"local","price":2}]}`)

	guest := NewCartManager(store, nil, staticAuth(false), nil)
	cart, err := guest.Load(ctx)
	if err != nil || cart.Items[0].ProductID != "local" {
		t.Fatalf("guest load failed: %v %+v", err, cart)
	}

	remote := &remoteCartStub{cart: &models.Cart{Items: []models.CartItem{{ProductID: "server"}}}}
	user := NewCartManager(store, remote, staticAuth(true), nil)
	cart, err = user.Load(ctx)
	if err != nil || cart.Items[0].ProductID != "server" {
		t.Fatalf("remote load failed: %v %+v", err, cart)
	}

	noRemote := NewCartManager(store, nil, staticAuth(true), nil)
	if _, err := noRemote.Load(ctx); !errors.Is(err, ErrRemoteCartUnavailable) {
		t.Fatalf("missing remote should fail, got %v", err)
	}
}

func TestLoadDoesNotNotifyListeners(t *testing.T) {
	manager, _ := newGuestManager(t)
	ctx := context.Background()
	calls := 0
	manager.Subscribe(func(*models.Cart) { calls++ })
	for i := 0; i < 3; i++ {
		if _, err := manager.Load(ctx); err != nil {
			t.Fatalf("load failed: %v", err)
		}
	}
	if calls != 0 {
		t.Fatalf("reads should not notify listeners, got %d calls", calls)
	}
	if _, err := manager.AddItem(ctx, guideInput("a", 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if calls != 1 {
		t.Fatalf("mutation should notify once, got %d calls", calls)
	}
}

func TestCurrentDiscountCountsIndividualGuidesOnly(t *testing.T) {
	manager, _ := newGuestManager(t)
	ctx := context.Background()
	input := guideInput("a", 5.99)
	input.Quantity = 3
	_, _ = manager.AddItem(ctx, input)
	_, _ = manager.AddItem(ctx, AddCartItemInput{
		ProductID:   "bundle",
		ProductType: constants.ProductTypeBundle,
		Price:       models.NewPriceFromFloat(40),
	})

	if manager.IndividualGuideCount() != 3 {
		t.Fatalf("individual guide count want 3 got %d", manager.IndividualGuideCount())
	}
	discount := manager.CurrentDiscount()
	if discount.DiscountedTotal.String() != "15.00" {
		t.Fatalf("discounted total want 15.00 got %s", discount.DiscountedTotal.String())
	}
}

func TestWithStorageKey(t *testing.T) {
	store := NewMemoryStore()
	manager := NewCartManager(store, nil, nil, nil).WithStorageKey("custom_cart")
	if _, err := manager.AddItem(context.Background(), guideInput("a", 1)); err != nil {
		t.Fatalf("add failed: %v", err)
	}
	if _, ok, _ := store.Get(context.Background(), "custom_cart"); !ok {
		t.Fatalf("cart should be stored under custom key")
	}
}
