package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/logger"
	"github.com/florencebot/internal/models"

	"github.com/shopspring/decimal"
)

// RemoteCart 远程购物车接口（登录用户）
type RemoteCart interface {
	AddItem(ctx context.Context, input AddCartItemInput) (*models.Cart, error)
	GetCart(ctx context.Context) (*models.Cart, error)
}

// CartListener 购物车变更回调，收到的是当前购物车的引用，不可修改
type CartListener func(cart *models.Cart)

// AddCartItemInput 加入购物车输入
type AddCartItemInput struct {
	ProductID   string
	ProductName string
	ProductType string
	Price       models.Price
	Quantity    int // 0 表示缺省，按 1 计
}

type cartListenerEntry struct {
	id       uint64
	listener CartListener
}

// CartManager 购物车状态管理
// 游客购物车持久化到 KVStore，登录用户以远程接口为准；每次变更后通知订阅者
type CartManager struct {
	store      KVStore
	remote     RemoteCart
	auth       AuthChecker
	pricing    *PricingPolicy
	storageKey string
	now        func() time.Time

	opMu      sync.Mutex // 串行化变更操作
	mu        sync.RWMutex
	cart      *models.Cart
	listeners []cartListenerEntry
	nextID    uint64
}

// NewCartManager 创建购物车管理器
func NewCartManager(store KVStore, remote RemoteCart, auth AuthChecker, pricing *PricingPolicy) *CartManager {
	if pricing == nil {
		pricing = DefaultPricingPolicy()
	}
	return &CartManager{
		store:      store,
		remote:     remote,
		auth:       auth,
		pricing:    pricing,
		storageKey: constants.GuestCartStorageKey,
		now:        time.Now,
		cart:       &models.Cart{Items: []models.CartItem{}},
	}
}

// WithStorageKey 指定游客购物车存储键
func (m *CartManager) WithStorageKey(key string) *CartManager {
	if trimmed := strings.TrimSpace(key); trimmed != "" {
		m.storageKey = trimmed
	}
	return m
}

// Subscribe 订阅购物车变更，返回取消订阅函数（可重复调用）
func (m *CartManager) Subscribe(listener CartListener) func() {
	if listener == nil {
		return func() {}
	}
	m.mu.Lock()
	m.nextID++
	id := m.nextID
	m.listeners = append(m.listeners, cartListenerEntry{id: id, listener: listener})
	m.mu.Unlock()

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		for i, entry := range m.listeners {
			if entry.id == id {
				m.listeners = append(m.listeners[:i:i], m.listeners[i+1:]...)
				return
			}
		}
	}
}

func (m *CartManager) notifyListeners() {
	m.mu.RLock()
	cart := m.cart
	listeners := make([]cartListenerEntry, len(m.listeners))
	copy(listeners, m.listeners)
	m.mu.RUnlock()

	for _, entry := range listeners {
		m.invokeListener(entry, cart)
	}
}

func (m *CartManager) invokeListener(entry cartListenerEntry, cart *models.Cart) {
	defer func() {
		if r := recover(); r != nil {
			logger.Errorw("cart_listener_panic", "listener_id", entry.id, "panic", fmt.Sprint(r))
		}
	}()
	entry.listener(cart)
}

// GetGuestCart 读取游客购物车；缺失、损坏或存储读取失败时返回空购物车
// 小计与件数总是按 items 重新计算
func (m *CartManager) GetGuestCart(ctx context.Context) *models.Cart {
	cart, err := m.loadGuestCart(ctx)
	if err != nil {
		logger.Warnw("cart_guest_load_failed", "key", m.storageKey, "error", err)
		return models.NewEmptyCart()
	}
	return cart
}

// loadGuestCart 存储读取失败返回 ErrStoreUnavailable，内容无法解析时按空购物车处理
// 变更操作经由这里读取
func (m *CartManager) loadGuestCart(ctx context.Context) (*models.Cart, error) {
	if m.store == nil {
		return nil, ErrStoreUnavailable
	}
	raw, ok, err := m.store.Get(ctx, m.storageKey)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	if !ok || strings.TrimSpace(raw) == "" {
		return models.NewEmptyCart(), nil
	}
	var cart models.Cart
	if err := json.Unmarshal([]byte(raw), &cart); err != nil {
		logger.Warnw("cart_guest_decode_failed", "key", m.storageKey, "error", err)
		return models.NewEmptyCart(), nil
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	recalculate(&cart)
	return &cart, nil
}

// SaveGuestCart 整体写入游客购物车（后写覆盖）
func (m *CartManager) SaveGuestCart(ctx context.Context, cart *models.Cart) error {
	if m.store == nil {
		return ErrStoreUnavailable
	}
	if cart == nil {
		cart = models.NewEmptyCart()
	}
	payload, err := json.Marshal(cart)
	if err != nil {
		return err
	}
	return m.store.Set(ctx, m.storageKey, string(payload))
}

// CalculateBulkDiscount 计算批量折扣
func (m *CartManager) CalculateBulkDiscount(individualGuideCount int) models.DiscountResult {
	return m.pricing.CalculateBulkDiscount(individualGuideCount)
}

// Pricing 当前定价策略
func (m *CartManager) Pricing() *PricingPolicy {
	return m.pricing
}

// Load 读取权威购物车：登录用户走远程接口，游客读本地存储
// 只刷新内存状态，不通知订阅者
func (m *CartManager) Load(ctx context.Context) (*models.Cart, error) {
	m.opMu.Lock()
	var cart *models.Cart
	if m.isAuthenticated() {
		if m.remote == nil {
			m.opMu.Unlock()
			return nil, ErrRemoteCartUnavailable
		}
		remoteCart, err := m.remote.GetCart(ctx)
		if err != nil {
			m.opMu.Unlock()
			return nil, err
		}
		cart = remoteCart
		if cart == nil {
			cart = models.NewEmptyCart()
		}
	} else {
		cart = m.GetGuestCart(ctx)
	}
	m.setCart(cart)
	m.opMu.Unlock()
	return cart, nil
}

// AddItem 加入购物车
// 登录用户以服务端返回的购物车整体替换本地；游客合并同一商品的数量并持久化
func (m *CartManager) AddItem(ctx context.Context, input AddCartItemInput) (*models.Cart, error) {
	input.ProductID = strings.TrimSpace(input.ProductID)
	if input.ProductID == "" || input.Quantity < 0 || input.Price.Decimal.IsNegative() {
		return nil, ErrInvalidCartItem
	}
	if input.Quantity > constants.MaxCartItemQuantity {
		return nil, fmt.Errorf("%w: quantity exceeds %d", ErrInvalidCartItem, constants.MaxCartItemQuantity)
	}
	if input.Quantity == 0 {
		input.Quantity = 1
	}

	m.opMu.Lock()
	cart, err := m.addItemLocked(ctx, input)
	if err != nil {
		m.opMu.Unlock()
		return nil, err
	}
	m.setCart(cart)
	m.opMu.Unlock()

	m.notifyListeners()
	return cart, nil
}

func (m *CartManager) addItemLocked(ctx context.Context, input AddCartItemInput) (*models.Cart, error) {
	if m.isAuthenticated() {
		if m.remote == nil {
			return nil, ErrRemoteCartUnavailable
		}
		cart, err := m.remote.AddItem(ctx, input)
		if err != nil {
			return nil, err
		}
		if cart == nil {
			cart = models.NewEmptyCart()
		}
		return cart, nil
	}

	cart, err := m.loadGuestCart(ctx)
	if err != nil {
		return nil, err
	}
	if idx := cart.FindItem(input.ProductID); idx >= 0 {
		merged := cart.Items[idx].EffectiveQuantity() + input.Quantity
		if merged > constants.MaxCartItemQuantity {
			return nil, fmt.Errorf("%w: quantity exceeds %d", ErrInvalidCartItem, constants.MaxCartItemQuantity)
		}
		cart.Items[idx].Quantity = merged
	} else {
		cart.Items = append(cart.Items, models.CartItem{
			ProductID:   input.ProductID,
			ProductName: input.ProductName,
			ProductType: input.ProductType,
			Price:       input.Price,
			Quantity:    input.Quantity,
			AddedAt:     m.now().UTC(),
		})
	}
	recalculate(cart)
	if err := m.SaveGuestCart(ctx, cart); err != nil {
		return nil, err
	}
	return cart, nil
}

// RemoveItem 移除商品（仅作用于游客购物车），商品不存在时同样通知订阅者
func (m *CartManager) RemoveItem(ctx context.Context, productID string) (*models.Cart, error) {
	productID = strings.TrimSpace(productID)

	m.opMu.Lock()
	cart, err := m.loadGuestCart(ctx)
	if err != nil {
		m.opMu.Unlock()
		return nil, err
	}
	kept := make([]models.CartItem, 0, len(cart.Items))
	for _, item := range cart.Items {
		if item.ProductID != productID {
			kept = append(kept, item)
		}
	}
	cart.Items = kept
	recalculate(cart)
	if err := m.SaveGuestCart(ctx, cart); err != nil {
		m.opMu.Unlock()
		return nil, err
	}
	m.setCart(cart)
	m.opMu.Unlock()

	m.notifyListeners()
	return cart, nil
}

// ClearCart 删除游客购物车存储并重置为空
func (m *CartManager) ClearCart(ctx context.Context) (*models.Cart, error) {
	m.opMu.Lock()
	if m.store == nil {
		m.opMu.Unlock()
		return nil, ErrStoreUnavailable
	}
	if err := m.store.Remove(ctx, m.storageKey); err != nil {
		m.opMu.Unlock()
		return nil, err
	}
	cart := models.NewEmptyCart()
	m.setCart(cart)
	m.opMu.Unlock()

	m.notifyListeners()
	return cart, nil
}

// GetItemCount 件数，缓存值为 0 时按 items 重新计算
func (m *CartManager) GetItemCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.cart.ItemCount != 0 {
		return m.cart.ItemCount
	}
	return CalculateItemCount(m.cart.Items)
}

// GetSubtotal 小计，缓存值为 0 时按 items 重新计算
func (m *CartManager) GetSubtotal() decimal.Decimal {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if !m.cart.Subtotal.Decimal.IsZero() {
		return m.cart.Subtotal.Decimal
	}
	return CalculateSubtotal(m.cart.Items)
}

// IsInCart 商品是否已在购物车
func (m *CartManager) IsInCart(productID string) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.cart.FindItem(productID) >= 0
}

// GetItems 返回购物车项副本，调用方修改不会影响内部状态
func (m *CartManager) GetItems() []models.CartItem {
	m.mu.RLock()
	defer m.mu.RUnlock()
	items := make([]models.CartItem, len(m.cart.Items))
	copy(items, m.cart.Items)
	return items
}

// Snapshot 返回当前购物车副本
func (m *CartManager) Snapshot() models.Cart {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return *m.cart.Clone()
}

// IndividualGuideCount 单本指南的数量合计
func (m *CartManager) IndividualGuideCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	count := 0
	for _, item := range m.cart.Items {
		if item.ProductType == constants.ProductTypeIndividual {
			count += item.EffectiveQuantity()
		}
	}
	return count
}

// CurrentDiscount 按购物车内单本指南数量计算批量折扣
func (m *CartManager) CurrentDiscount() models.DiscountResult {
	return m.pricing.CalculateBulkDiscount(m.IndividualGuideCount())
}

func (m *CartManager) isAuthenticated() bool {
	return m.auth != nil && m.auth.IsAuthenticated()
}

func (m *CartManager) setCart(cart *models.Cart) {
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	m.mu.Lock()
	m.cart = cart
	m.mu.Unlock()
}

func recalculate(cart *models.Cart) {
	cart.Subtotal = models.NewPrice(CalculateSubtotal(cart.Items))
	cart.ItemCount = CalculateItemCount(cart.Items)
}
