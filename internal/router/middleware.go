package router

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/florencebot/internal/config"
	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/http/response"
	"github.com/florencebot/internal/i18n"
	"github.com/florencebot/internal/logger"
	"github.com/florencebot/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const requestIDKey = response.RequestIDKey
const requestIDHeader = "X-Request-ID"

// CORSMiddleware 跨域中间件
func CORSMiddleware(cfg config.CORSConfig) gin.HandlerFunc {
	allowedOrigins := cfg.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	allowedMethods := cfg.AllowedMethods
	if len(allowedMethods) == 0 {
		allowedMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	}
	allowedHeaders := cfg.AllowedHeaders
	if len(allowedHeaders) == 0 {
		allowedHeaders = []string{
			"Content-Type",
			"Content-Length",
			"Accept-Encoding",
			"Authorization",
			"Cache-Control",
			"X-Requested-With",
			constants.GuestIDHeader,
		}
	}
	methodsHeader := strings.Join(allowedMethods, ", ")
	headersHeader := strings.Join(allowedHeaders, ", ")

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		allowedOrigin := resolveAllowedOrigin(origin, allowedOrigins, cfg.AllowCredentials)
		if allowedOrigin != "" {
			c.Writer.Header().Set("Access-Control-Allow-Origin", allowedOrigin)
			if allowedOrigin != "*" {
				c.Writer.Header().Add("Vary", "Origin")
			}
		}
		if cfg.AllowCredentials {
			c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		}
		c.Writer.Header().Set("Access-Control-Allow-Headers", headersHeader)
		c.Writer.Header().Set("Access-Control-Allow-Methods", methodsHeader)
		if cfg.MaxAge > 0 {
			c.Writer.Header().Set("Access-Control-Max-Age", strconv.Itoa(cfg.MaxAge))
		}

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}

func resolveAllowedOrigin(origin string, allowedOrigins []string, allowCredentials bool) string {
	if len(allowedOrigins) == 0 {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if allowed == "*" {
			if allowCredentials && origin != "" {
				return origin
			}
			return "*"
		}
	}
	if origin == "" {
		return ""
	}
	for _, allowed := range allowedOrigins {
		if strings.EqualFold(allowed, origin) {
			return origin
		}
	}
	return ""
}

// RequestIDMiddleware 请求 ID 中间件
func RequestIDMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		requestID := strings.TrimSpace(c.GetHeader(requestIDHeader))
		if requestID == "" {
			requestID = uuid.NewString()
		}
		c.Set(requestIDKey, requestID)
		c.Writer.Header().Set(requestIDHeader, requestID)
		c.Next()
	}
}

// LoggerMiddleware 结构化请求日志中间件
func LoggerMiddleware(logger *zap.Logger) gin.HandlerFunc {
	if logger == nil {
		logger = zap.L()
	}
	sugar := logger.Sugar()
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		log := sugar.With(
			"request_id", getRequestID(c),
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"status", c.Writer.Status(),
			"latency_ms", time.Since(start).Milliseconds(),
			"client_ip", c.ClientIP(),
		)
		if len(c.Errors) > 0 {
			log.Errorw("request", "errors", c.Errors.String())
			return
		}
		log.Infow("request")
	}
}

func getRequestID(c *gin.Context) string {
	value, ok := c.Get(requestIDKey)
	if !ok {
		return ""
	}
	if requestID, ok := value.(string); ok {
		return requestID
	}
	return ""
}

// GuestIdentityMiddleware 游客标识中间件
// 优先读取 X-Guest-ID 请求头，其次 Cookie；缺失或非法时生成新的 uuid 并写回 Cookie
func GuestIdentityMiddleware(cookieName string, cookieDays int) gin.HandlerFunc {
	if strings.TrimSpace(cookieName) == "" {
		cookieName = constants.GuestIDCookie
	}
	maxAge := cookieDays * 24 * 60 * 60
	return func(c *gin.Context) {
		guestID := normalizeGuestID(c.GetHeader(constants.GuestIDHeader))
		if guestID == "" {
			if cookie, err := c.Cookie(cookieName); err == nil {
				guestID = normalizeGuestID(cookie)
			}
		}
		if guestID == "" {
			guestID = uuid.NewString()
		}
		if maxAge > 0 {
			c.SetSameSite(http.SameSiteLaxMode)
			c.SetCookie(cookieName, guestID, maxAge, "/", "", c.Request.TLS != nil, true)
		}
		c.Set(constants.ContextKeyGuestID, guestID)
		c.Writer.Header().Set(constants.GuestIDHeader, guestID)
		c.Next()
	}
}

func normalizeGuestID(raw string) string {
	parsed, err := uuid.Parse(strings.TrimSpace(raw))
	if err != nil {
		return ""
	}
	return parsed.String()
}

// TokenSessionMiddleware 可选登录态中间件
// 携带 Bearer 令牌时创建请求级会话，令牌是否有效由购物车逻辑判断；格式错误直接拒绝
func TokenSessionMiddleware(secret string, leeway time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := strings.TrimSpace(c.GetHeader("Authorization"))
		if authHeader == "" {
			c.Next()
			return
		}
		parts := strings.SplitN(authHeader, " ", 2)
		if !(len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") && strings.TrimSpace(parts[1]) != "") {
			msg := i18n.T(i18n.ResolveLocale(c), "error.auth_header_invalid")
			response.Unauthorized(c, msg)
			c.Abort()
			return
		}
		session := service.NewRequestTokenSession(parts[1], secret, leeway)
		if claims := session.Claims(); claims != nil {
			c.Set("user_id", claims.UserID)
		} else {
			logger.Debugw("token_session_unauthenticated", "request_id", getRequestID(c))
		}
		c.Set(constants.ContextKeyTokenSession, session)
		c.Next()
	}
}
