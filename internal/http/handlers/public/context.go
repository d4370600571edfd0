package public

import (
	handlershared "github.com/florencebot/internal/http/handlers/shared"
	"github.com/florencebot/internal/service"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func requestLog(c *gin.Context) *zap.SugaredLogger {
	return handlershared.RequestLog(c)
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func getGuestID(c *gin.Context) string {
	return handlershared.GetGuestID(c)
}

// cartManager 为当前请求创建购物车管理器
func (h *Handler) cartManager(c *gin.Context) *service.CartManager {
	return h.NewCartManager(getGuestID(c), handlershared.GetTokenSession(c))
}
