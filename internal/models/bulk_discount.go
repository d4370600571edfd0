package models

// BulkDiscountTier 批量购买档位
// 档位按 MinQty 严格降序排列，匹配时取第一个满足条件的档位
type BulkDiscountTier struct {
	MinQty           int   `json:"min_qty"`            // 档位数量门槛
	BundlePrice      Money `json:"bundle_price"`       // 覆盖 MinQty 件的打包价
	SavingsPerBundle Money `json:"savings_per_bundle"` // 展示用节省金额，不参与计算
}

// DiscountResult 批量折扣计算结果
type DiscountResult struct {
	OriginalTotal   Money             `json:"originalTotal"`
	DiscountedTotal Money             `json:"discountedTotal"`
	DiscountAmount  Money             `json:"discountAmount"`
	PerItemPrice    Money             `json:"perItemPrice"`
	TierApplied     *BulkDiscountTier `json:"tierApplied"`
	GuideCount      int               `json:"guideCount"`
	BundleQty       int               `json:"bundleQty"`
	ExtraItems      int               `json:"extraItems"`
}
