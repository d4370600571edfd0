package public

import (
	"strconv"
	"strings"

	"github.com/florencebot/internal/http/response"
	"github.com/florencebot/internal/models"

	"github.com/gin-gonic/gin"
)

// PricingTiersResponse 定价档位响应
type PricingTiersResponse struct {
	IndividualGuidePrice models.Money              `json:"individual_guide_price"`
	Tiers                []models.BulkDiscountTier `json:"tiers"`
}

// GetPricingTiers 获取单本价格与批量档位
func (h *Handler) GetPricingTiers(c *gin.Context) {
	response.Success(c, PricingTiersResponse{
		IndividualGuidePrice: models.NewMoneyFromDecimal(h.Pricing.IndividualGuidePrice()),
		Tiers:                h.Pricing.Tiers(),
	})
}

// GetBulkDiscount 按数量试算批量折扣
func (h *Handler) GetBulkDiscount(c *gin.Context) {
	raw := strings.TrimSpace(c.Query("count"))
	count, err := strconv.Atoi(raw)
	if err != nil || count < 0 {
		respondError(c, response.CodeBadRequest, "error.pricing_count_invalid", nil)
		return
	}
	response.Success(c, h.Pricing.CalculateBulkDiscount(count))
}
