package models

import (
	"bytes"
	"encoding/json"
	"time"

	"github.com/florencebot/internal/constants"

	"github.com/shopspring/decimal"
)

// CartItem 购物车项
type CartItem struct {
	ProductID   string    `json:"product_id"`   // 商品ID（购物车内唯一）
	ProductName string    `json:"product_name"` // 商品名称
	ProductType string    `json:"product_type"` // 商品类型
	Price       Price     `json:"price"`        // 单价
	Quantity    int       `json:"quantity"`     // 数量，缺省按 1 计
	AddedAt     time.Time `json:"added_at"`     // 加入时间
}

// EffectiveQuantity 计价使用的数量，未设置或非正数时按 1 计
func (i CartItem) EffectiveQuantity() int {
	if i.Quantity <= 0 {
		return 1
	}
	return i.Quantity
}

// UnmarshalJSON 数量解析宽松：接受 2、2.0、"2"，超出上限时截断
func (i *CartItem) UnmarshalJSON(b []byte) error {
	type cartItemAlias CartItem
	aux := struct {
		*cartItemAlias
		Quantity json.RawMessage `json:"quantity"`
	}{cartItemAlias: (*cartItemAlias)(i)}
	if err := json.Unmarshal(b, &aux); err != nil {
		return err
	}
	i.Quantity = parseQuantity(aux.Quantity)
	return nil
}

func parseQuantity(raw json.RawMessage) int {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return 0
	}
	var d decimal.Decimal
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return 0
		}
		d = ParsePrice(s).Decimal
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		parsed, err := decimal.NewFromString(string(trimmed))
		if err != nil {
			return 0
		}
		d = parsed
	default:
		return 0
	}
	d = d.Truncate(0)
	if d.Sign() <= 0 {
		return 0
	}
	if d.GreaterThan(decimal.NewFromInt(constants.MaxCartItemQuantity)) {
		return constants.MaxCartItemQuantity
	}
	return int(d.IntPart())
}

// Cart 购物车快照
type Cart struct {
	Items     []CartItem `json:"items"`
	Subtotal  Price      `json:"subtotal"`
	ItemCount int        `json:"item_count"`
}

// NewEmptyCart 创建空购物车
func NewEmptyCart() *Cart {
	return &Cart{Items: []CartItem{}}
}

// FindItem 按商品ID查找购物车项下标
func (c *Cart) FindItem(productID string) int {
	if c == nil {
		return -1
	}
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

// Clone 深拷贝购物车
func (c *Cart) Clone() *Cart {
	if c == nil {
		return NewEmptyCart()
	}
	cloned := &Cart{
		Items:     make([]CartItem, len(c.Items)),
		Subtotal:  c.Subtotal,
		ItemCount: c.ItemCount,
	}
	copy(cloned.Items, c.Items)
	return cloned
}

// ProductIDs 返回购物车内商品ID（保持加入顺序）
func (c *Cart) ProductIDs() []string {
	if c == nil {
		return nil
	}
	ids := make([]string, 0, len(c.Items))
	for _, item := range c.Items {
		ids = append(ids, item.ProductID)
	}
	return ids
}
