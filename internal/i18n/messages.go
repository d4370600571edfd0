package i18n

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":             "Invalid request parameters",
		"error.unauthorized":            "Please sign in again",
		"error.auth_header_invalid":     "Invalid Authorization header",
		"error.not_found":               "Resource not found",
		"error.internal":                "Internal server error",
		"error.too_many_requests":       "Too many requests, please retry in %d seconds",
		"error.rate_limit_unavailable":  "Rate limiter unavailable",
		"error.cart_item_invalid":       "Invalid cart item",
		"error.cart_store_unavailable":  "Cart storage is unavailable",
		"error.cart_remote_unavailable": "Cart service is unavailable, please try again later",
		"error.cart_remote_rejected":    "Cart service rejected the request",
		"error.pricing_count_invalid":   "Guide count must be a non-negative integer",
		"error.pricing_invalid":         "Bulk pricing is misconfigured",
	},
	LocaleZH: {
		"error.bad_request":             "请求参数错误",
		"error.unauthorized":            "请重新登录",
		"error.auth_header_invalid":     "Authorization 请求头格式错误",
		"error.not_found":               "资源不存在",
		"error.internal":                "服务器内部错误",
		"error.too_many_requests":       "请求过于频繁，请 %d 秒后重试",
		"error.rate_limit_unavailable":  "限流服务不可用",
		"error.cart_item_invalid":       "购物车商品无效",
		"error.cart_store_unavailable":  "购物车存储不可用",
		"error.cart_remote_unavailable": "购物车服务暂不可用，请稍后再试",
		"error.cart_remote_rejected":    "购物车服务拒绝了请求",
		"error.pricing_count_invalid":   "指南数量必须为非负整数",
		"error.pricing_invalid":         "批量定价配置错误",
	},
	LocaleTW: {
		"error.bad_request":             "請求參數錯誤",
		"error.unauthorized":            "請重新登入",
		"error.auth_header_invalid":     "Authorization 請求標頭格式錯誤",
		"error.not_found":               "資源不存在",
		"error.internal":                "伺服器內部錯誤",
		"error.too_many_requests":       "請求過於頻繁，請 %d 秒後重試",
		"error.rate_limit_unavailable":  "限流服務不可用",
		"error.cart_item_invalid":       "購物車商品無效",
		"error.cart_store_unavailable":  "購物車儲存不可用",
		"error.cart_remote_unavailable": "購物車服務暫不可用，請稍後再試",
		"error.cart_remote_rejected":    "購物車服務拒絕了請求",
		"error.pricing_count_invalid":   "指南數量必須為非負整數",
		"error.pricing_invalid":         "批量定價設定錯誤",
	},
}
