package public

import (
	"strings"

	handlershared "github.com/florencebot/internal/http/handlers/shared"
	"github.com/florencebot/internal/http/response"
	"github.com/florencebot/internal/models"
	"github.com/florencebot/internal/repository"
	"github.com/florencebot/internal/service"

	"github.com/gin-gonic/gin"
)

// AddCartItemRequest 加入购物车请求
type AddCartItemRequest struct {
	ProductID   string       `json:"product_id" binding:"required"`
	ProductName string       `json:"product_name"`
	ProductType string       `json:"product_type"`
	Price       models.Price `json:"price"`
	Quantity    int          `json:"quantity"`
}

// CartResponse 购物车响应
type CartResponse struct {
	GuestID       string                `json:"guest_id"`
	Authenticated bool                  `json:"authenticated"`
	Items         []models.CartItem     `json:"items"`
	Subtotal      models.Price          `json:"subtotal"`
	ItemCount     int                   `json:"item_count"`
	BulkDiscount  models.DiscountResult `json:"bulk_discount"`
}

func buildCartResponse(c *gin.Context, manager *service.CartManager) CartResponse {
	session := handlershared.GetTokenSession(c)
	return CartResponse{
		GuestID:       getGuestID(c),
		Authenticated: session != nil && session.IsAuthenticated(),
		Items:         manager.GetItems(),
		Subtotal:      models.NewPrice(manager.GetSubtotal()),
		ItemCount:     manager.GetItemCount(),
		BulkDiscount:  manager.CurrentDiscount(),
	}
}

// GetCart 获取购物车
func (h *Handler) GetCart(c *gin.Context) {
	manager := h.cartManager(c)
	if _, err := manager.Load(c.Request.Context()); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, buildCartResponse(c, manager))
}

// AddCartItem 加入购物车
func (h *Handler) AddCartItem(c *gin.Context) {
	var req AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}

	manager := h.cartManager(c)
	if _, err := manager.AddItem(c.Request.Context(), service.AddCartItemInput{
		ProductID:   req.ProductID,
		ProductName: strings.TrimSpace(req.ProductName),
		ProductType: strings.TrimSpace(req.ProductType),
		Price:       req.Price,
		Quantity:    req.Quantity,
	}); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, buildCartResponse(c, manager))
}

// RemoveCartItem 移除购物车商品
func (h *Handler) RemoveCartItem(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("product_id"))
	if productID == "" {
		respondError(c, response.CodeBadRequest, "error.cart_item_invalid", nil)
		return
	}
	manager := h.cartManager(c)
	if _, err := manager.RemoveItem(c.Request.Context(), productID); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, buildCartResponse(c, manager))
}

// ClearCart 清空购物车
func (h *Handler) ClearCart(c *gin.Context) {
	manager := h.cartManager(c)
	if _, err := manager.ClearCart(c.Request.Context()); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, buildCartResponse(c, manager))
}

// GetCartItemStatus 查询商品是否在购物车
func (h *Handler) GetCartItemStatus(c *gin.Context) {
	productID := strings.TrimSpace(c.Param("product_id"))
	manager := h.cartManager(c)
	if _, err := manager.Load(c.Request.Context()); err != nil {
		respondCartError(c, err)
		return
	}
	response.Success(c, gin.H{
		"product_id": productID,
		"in_cart":    manager.IsInCart(productID),
	})
}

// CartActivityQuery 购物车变更记录查询参数
type CartActivityQuery struct {
	Page     int `form:"page"`
	PageSize int `form:"page_size"`
}

// GetCartActivity 当前访客的购物车变更记录
func (h *Handler) GetCartActivity(c *gin.Context) {
	var query CartActivityQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		respondError(c, response.CodeBadRequest, "error.bad_request", nil)
		return
	}
	page, pageSize := handlershared.NormalizePagination(query.Page, query.PageSize)
	if h.CartEventRepo == nil {
		response.SuccessWithPage(c, []models.CartEvent{}, response.BuildPagination(page, pageSize, 0))
		return
	}
	events, total, err := h.CartEventRepo.List(repository.CartEventListFilter{
		Page:     page,
		PageSize: pageSize,
		GuestID:  getGuestID(c),
	})
	if err != nil {
		respondError(c, response.CodeInternal, "error.internal", err)
		return
	}
	response.SuccessWithPage(c, events, response.BuildPagination(page, pageSize, total))
}
