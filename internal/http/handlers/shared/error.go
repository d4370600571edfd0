package shared

import (
	"github.com/florencebot/internal/http/response"
	"github.com/florencebot/internal/i18n"
	"github.com/florencebot/internal/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestLog 带 request_id 的日志实例
func RequestLog(c *gin.Context) *zap.SugaredLogger {
	if c != nil {
		if id := c.GetString(response.RequestIDKey); id != "" {
			return logger.SW("request_id", id)
		}
	}
	return logger.S()
}

// RespondError 按请求语言返回错误，err 非空时记录日志
// 5xx 按 error 级别记录，其余按 warn
func RespondError(c *gin.Context, code int, key string, err error) {
	msg := i18n.T(i18n.ResolveLocale(c), key)
	appErr := response.WrapError(code, msg, err)
	if err != nil {
		log := RequestLog(c)
		if appErr.Code >= response.CodeInternal {
			log.Errorw("handler_error", "code", appErr.Code, "key", key, "error", err)
		} else {
			log.Warnw("handler_error", "code", appErr.Code, "key", key, "error", err)
		}
	}
	response.Error(c, appErr.Code, appErr.Message)
}

// NotFoundHandler 未匹配路由
func NotFoundHandler(c *gin.Context) {
	response.NotFound(c, i18n.T(i18n.ResolveLocale(c), "error.not_found"))
}
