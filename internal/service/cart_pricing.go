package service

import (
	"fmt"

	"github.com/florencebot/internal/config"
	"github.com/florencebot/internal/models"

	"github.com/shopspring/decimal"
)

// PricingPolicy 单本价格与批量折扣档位
type PricingPolicy struct {
	individualGuidePrice decimal.Decimal
	tiers                []models.BulkDiscountTier
}

// NewPricingPolicy 创建定价策略，档位必须按 MinQty 严格降序
func NewPricingPolicy(individualGuidePrice decimal.Decimal, tiers []models.BulkDiscountTier) (*PricingPolicy, error) {
	if individualGuidePrice.LessThan(decimal.Zero) {
		return nil, fmt.Errorf("%w: individual guide price is negative", ErrPricingTiersInvalid)
	}
	if err := ValidateBulkDiscountTiers(tiers); err != nil {
		return nil, err
	}
	copied := make([]models.BulkDiscountTier, len(tiers))
	copy(copied, tiers)
	return &PricingPolicy{
		individualGuidePrice: individualGuidePrice,
		tiers:                copied,
	}, nil
}

// NewPricingPolicyFromConfig 从配置构建定价策略
func NewPricingPolicyFromConfig(cfg config.PricingConfig) (*PricingPolicy, error) {
	tiers := make([]models.BulkDiscountTier, 0, len(cfg.BulkTiers))
	for _, tier := range cfg.BulkTiers {
		tiers = append(tiers, models.BulkDiscountTier{
			MinQty:           tier.MinQty,
			BundlePrice:      models.NewMoneyFromDecimal(decimal.NewFromFloat(tier.BundlePrice)),
			SavingsPerBundle: models.NewMoneyFromDecimal(decimal.NewFromFloat(tier.SavingsPerBundle)),
		})
	}
	return NewPricingPolicy(decimal.NewFromFloat(cfg.IndividualGuidePrice), tiers)
}

// DefaultPricingPolicy 站点默认定价：单本 5.99，10/5/3 本打包价
func DefaultPricingPolicy() *PricingPolicy {
	policy, err := NewPricingPolicy(decimal.RequireFromString("5.99"), []models.BulkDiscountTier{
		{MinQty: 10, BundlePrice: moneyOf("50.00"), SavingsPerBundle: moneyOf("9.90")},
		{MinQty: 5, BundlePrice: moneyOf("25.00"), SavingsPerBundle: moneyOf("4.95")},
		{MinQty: 3, BundlePrice: moneyOf("15.00"), SavingsPerBundle: moneyOf("2.97")},
	})
	if err != nil {
		panic(err)
	}
	return policy
}

// ValidateBulkDiscountTiers 校验档位顺序与金额
func ValidateBulkDiscountTiers(tiers []models.BulkDiscountTier) error {
	for i, tier := range tiers {
		if tier.MinQty <= 0 {
			return fmt.Errorf("%w: tier %d min_qty must be positive", ErrPricingTiersInvalid, i)
		}
		if tier.BundlePrice.Decimal.LessThan(decimal.Zero) {
			return fmt.Errorf("%w: tier %d bundle_price is negative", ErrPricingTiersInvalid, i)
		}
		if i > 0 && tiers[i-1].MinQty <= tier.MinQty {
			return fmt.Errorf("%w: tiers must be sorted by min_qty descending (%d then %d)", ErrPricingTiersInvalid, tiers[i-1].MinQty, tier.MinQty)
		}
	}
	return nil
}

// IndividualGuidePrice 单本价格
func (p *PricingPolicy) IndividualGuidePrice() decimal.Decimal {
	return p.individualGuidePrice
}

// Tiers 返回档位副本
func (p *PricingPolicy) Tiers() []models.BulkDiscountTier {
	copied := make([]models.BulkDiscountTier, len(p.tiers))
	copy(copied, p.tiers)
	return copied
}

// CalculateBulkDiscount 计算批量折扣
// 从最高档开始匹配，命中档位后超出部分按单本价计费；金额只在最终结果保留两位小数
func (p *PricingPolicy) CalculateBulkDiscount(individualGuideCount int) models.DiscountResult {
	if individualGuideCount <= 0 {
		return models.DiscountResult{}
	}
	count := decimal.NewFromInt(int64(individualGuideCount))
	originalTotal := count.Mul(p.individualGuidePrice)

	var matched *models.BulkDiscountTier
	for i := range p.tiers {
		if individualGuideCount >= p.tiers[i].MinQty {
			tier := p.tiers[i]
			matched = &tier
			break
		}
	}
	if matched == nil {
		return models.DiscountResult{
			OriginalTotal:   models.NewMoneyFromDecimal(originalTotal),
			DiscountedTotal: models.NewMoneyFromDecimal(originalTotal),
			DiscountAmount:  models.NewMoneyFromDecimal(decimal.Zero),
			PerItemPrice:    models.NewMoneyFromDecimal(p.individualGuidePrice),
			GuideCount:      individualGuideCount,
		}
	}

	extraItems := individualGuideCount - matched.MinQty
	discountedTotal := matched.BundlePrice.Decimal.Add(decimal.NewFromInt(int64(extraItems)).Mul(p.individualGuidePrice))
	return models.DiscountResult{
		OriginalTotal:   models.NewMoneyFromDecimal(originalTotal),
		DiscountedTotal: models.NewMoneyFromDecimal(discountedTotal),
		DiscountAmount:  models.NewMoneyFromDecimal(originalTotal.Sub(discountedTotal)),
		PerItemPrice:    models.NewMoneyFromDecimal(discountedTotal.Div(count)),
		TierApplied:     matched,
		GuideCount:      individualGuideCount,
		BundleQty:       matched.MinQty,
		ExtraItems:      extraItems,
	}
}

// CalculateSubtotal 小计 = Σ(单价 × 数量)，数量缺省按 1 计
func CalculateSubtotal(items []models.CartItem) decimal.Decimal {
	subtotal := decimal.Zero
	for _, item := range items {
		subtotal = subtotal.Add(item.Price.Decimal.Mul(decimal.NewFromInt(int64(item.EffectiveQuantity()))))
	}
	return subtotal
}

// CalculateItemCount 商品件数 = Σ数量，数量缺省按 1 计
func CalculateItemCount(items []models.CartItem) int {
	count := 0
	for _, item := range items {
		count += item.EffectiveQuantity()
	}
	return count
}

func moneyOf(value string) models.Money {
	return models.NewMoneyFromDecimal(decimal.RequireFromString(value))
}
