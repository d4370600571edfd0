package public

import (
	"errors"

	"github.com/florencebot/internal/cartapi"
	"github.com/florencebot/internal/http/response"
	"github.com/florencebot/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			respondError(c, rule.code, rule.key, nil)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrInvalidCartItem, code: response.CodeBadRequest, key: "error.cart_item_invalid"},
	{target: service.ErrStoreUnavailable, code: response.CodeServiceUnavailable, key: "error.cart_store_unavailable"},
	{target: service.ErrRemoteCartUnavailable, code: response.CodeServiceUnavailable, key: "error.cart_remote_unavailable"},
	{target: cartapi.ErrUnauthorized, code: response.CodeUnauthorized, key: "error.unauthorized"},
	{target: cartapi.ErrRequestFailed, code: response.CodeServiceUnavailable, key: "error.cart_remote_unavailable"},
	{target: cartapi.ErrResponseInvalid, code: response.CodeBadGateway, key: "error.cart_remote_rejected"},
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.internal")
}
