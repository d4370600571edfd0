package shared

import (
	"strings"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/service"

	"github.com/gin-gonic/gin"
)

// GetGuestID 读取中间件写入的游客标识。
func GetGuestID(c *gin.Context) string {
	return strings.TrimSpace(c.GetString(constants.ContextKeyGuestID))
}

// GetTokenSession 读取请求级登录会话，未携带令牌时返回 nil。
func GetTokenSession(c *gin.Context) *service.TokenSession {
	value, ok := c.Get(constants.ContextKeyTokenSession)
	if !ok {
		return nil
	}
	session, _ := value.(*service.TokenSession)
	return session
}
