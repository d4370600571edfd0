package models

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Money 统一金额类型（保留 2 位小数，JSON 输出字符串）
type Money struct {
	decimal.Decimal
}

// NewMoneyFromDecimal 从 decimal 创建金额
func NewMoneyFromDecimal(amount decimal.Decimal) Money {
	return Money{Decimal: amount.Round(2)}
}

// MarshalJSON 统一输出 2 位小数的字符串
func (m Money) MarshalJSON() ([]byte, error) {
	return json.Marshal(m.Decimal.Round(2).StringFixed(2))
}

// UnmarshalJSON 解析金额（字符串或数字）
func (m *Money) UnmarshalJSON(b []byte) error {
	if len(b) == 0 {
		return nil
	}
	if b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		d, err := decimal.NewFromString(s)
		if err != nil {
			return err
		}
		m.Decimal = d.Round(2)
		return nil
	}
	var f float64
	if err := json.Unmarshal(b, &f); err != nil {
		return err
	}
	m.Decimal = decimal.NewFromFloat(f).Round(2)
	return nil
}

// Value 用于数据库写入
func (m Money) Value() (driver.Value, error) {
	return m.Decimal.Round(2).Value()
}

// Scan 用于数据库读取
func (m *Money) Scan(value interface{}) error {
	if err := m.Decimal.Scan(value); err != nil {
		return err
	}
	m.Decimal = m.Decimal.Round(2)
	return nil
}

// String 返回 2 位小数格式
func (m Money) String() string {
	return m.Decimal.Round(2).StringFixed(2)
}

// Price 购物车内的价格
// JSON 输出为数值；解析宽松，无法识别的值按 0 处理
type Price struct {
	decimal.Decimal
}

var leadingNumberPattern = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// NewPrice 从 decimal 创建价格
func NewPrice(amount decimal.Decimal) Price {
	return Price{Decimal: amount}
}

// NewPriceFromFloat 从浮点数创建价格
func NewPriceFromFloat(amount float64) Price {
	return Price{Decimal: decimal.NewFromFloat(amount)}
}

// ParsePrice 按前导数字解析价格，"5.99" 与 "5.99usd" 均得到 5.99，非数字得到 0
func ParsePrice(raw string) Price {
	match := leadingNumberPattern.FindString(strings.TrimSpace(raw))
	if match == "" {
		return Price{}
	}
	d, err := decimal.NewFromString(match)
	if err != nil {
		return Price{}
	}
	return Price{Decimal: d}
}

// MarshalJSON 输出 JSON 数值
func (p Price) MarshalJSON() ([]byte, error) {
	return []byte(p.Decimal.String()), nil
}

// UnmarshalJSON 解析数值或字符串，其余类型视为 0
func (p *Price) UnmarshalJSON(b []byte) error {
	trimmed := bytes.TrimSpace(b)
	p.Decimal = decimal.Zero
	if len(trimmed) == 0 {
		return nil
	}
	switch trimmed[0] {
	case '"':
		var s string
		if err := json.Unmarshal(trimmed, &s); err != nil {
			return nil
		}
		*p = ParsePrice(s)
	case '-', '0', '1', '2', '3', '4', '5', '6', '7', '8', '9':
		d, err := decimal.NewFromString(string(trimmed))
		if err != nil {
			return nil
		}
		p.Decimal = d
	}
	return nil
}

// String 返回 2 位小数格式
func (p Price) String() string {
	return p.Decimal.Round(2).StringFixed(2)
}
