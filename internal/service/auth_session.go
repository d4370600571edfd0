package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/logger"

	"github.com/golang-jwt/jwt/v5"
)

// AuthChecker 登录态判断
type AuthChecker interface {
	IsAuthenticated() bool
}

// UserJWTClaims 用户令牌声明（与后端签发格式一致）
type UserJWTClaims struct {
	UserID       uint   `json:"user_id"`
	Email        string `json:"email"`
	TokenVersion uint64 `json:"token_version"`
	jwt.RegisteredClaims
}

// TokenSessionOptions 令牌会话选项
type TokenSessionOptions struct {
	Store           KVStore // 为空时令牌只保存在内存
	AccessTokenKey  string
	RefreshTokenKey string
	Secret          string // 为空时不校验签名
	Leeway          time.Duration
}

// TokenSession 访问令牌/刷新令牌会话
type TokenSession struct {
	mu           sync.RWMutex
	opts         TokenSessionOptions
	accessToken  string
	refreshToken string
	now          func() time.Time
}

// NewTokenSession 创建令牌会话
func NewTokenSession(opts TokenSessionOptions) *TokenSession {
	if strings.TrimSpace(opts.AccessTokenKey) == "" {
		opts.AccessTokenKey = constants.AccessTokenStorageKey
	}
	if strings.TrimSpace(opts.RefreshTokenKey) == "" {
		opts.RefreshTokenKey = constants.RefreshTokenStorageKey
	}
	if opts.Leeway < 0 {
		opts.Leeway = 0
	}
	return &TokenSession{opts: opts, now: time.Now}
}

// NewRequestTokenSession 基于请求头令牌创建会话（不持久化）
func NewRequestTokenSession(accessToken, secret string, leeway time.Duration) *TokenSession {
	session := NewTokenSession(TokenSessionOptions{Secret: secret, Leeway: leeway})
	session.accessToken = strings.TrimSpace(accessToken)
	return session
}

// Restore 从存储恢复令牌
func (s *TokenSession) Restore(ctx context.Context) error {
	if s.opts.Store == nil {
		return nil
	}
	access, _, err := s.opts.Store.Get(ctx, s.opts.AccessTokenKey)
	if err != nil {
		return err
	}
	refresh, _, err := s.opts.Store.Get(ctx, s.opts.RefreshTokenKey)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.accessToken = strings.TrimSpace(access)
	s.refreshToken = strings.TrimSpace(refresh)
	s.mu.Unlock()
	return nil
}

// SetTokens 保存令牌，refreshToken 为空时保留原值
func (s *TokenSession) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	accessToken = strings.TrimSpace(accessToken)
	refreshToken = strings.TrimSpace(refreshToken)
	s.mu.Lock()
	s.accessToken = accessToken
	if refreshToken != "" {
		s.refreshToken = refreshToken
	}
	refreshToken = s.refreshToken
	s.mu.Unlock()

	if s.opts.Store == nil {
		return nil
	}
	if err := s.opts.Store.Set(ctx, s.opts.AccessTokenKey, accessToken); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	return s.opts.Store.Set(ctx, s.opts.RefreshTokenKey, refreshToken)
}

// ClearTokens 清除令牌（退出登录）
func (s *TokenSession) ClearTokens(ctx context.Context) error {
	s.mu.Lock()
	s.accessToken = ""
	s.refreshToken = ""
	s.mu.Unlock()

	if s.opts.Store == nil {
		return nil
	}
	if err := s.opts.Store.Remove(ctx, s.opts.AccessTokenKey); err != nil {
		return err
	}
	return s.opts.Store.Remove(ctx, s.opts.RefreshTokenKey)
}

// AccessToken 当前访问令牌
func (s *TokenSession) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.accessToken
}

// RefreshToken 当前刷新令牌
func (s *TokenSession) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.refreshToken
}

// Claims 解析当前访问令牌，令牌无效或过期时返回 nil
func (s *TokenSession) Claims() *UserJWTClaims {
	token := s.AccessToken()
	if token == "" {
		return nil
	}
	claims, err := s.parse(token)
	if err != nil {
		logger.Debugw("auth_session_token_rejected", "error", err)
		return nil
	}
	return claims
}

// IsAuthenticated 存在未过期（且签名有效，如配置了密钥）的访问令牌
func (s *TokenSession) IsAuthenticated() bool {
	return s.Claims() != nil
}

func (s *TokenSession) parse(tokenString string) (*UserJWTClaims, error) {
	options := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithLeeway(s.opts.Leeway),
		jwt.WithTimeFunc(s.now),
	}
	parser := jwt.NewParser(options...)
	claims := &UserJWTClaims{}
	if strings.TrimSpace(s.opts.Secret) == "" {
		if _, _, err := parser.ParseUnverified(tokenString, claims); err != nil {
			return nil, err
		}
		if err := jwt.NewValidator(
			jwt.WithExpirationRequired(),
			jwt.WithLeeway(s.opts.Leeway),
			jwt.WithTimeFunc(s.now),
		).Validate(claims); err != nil {
			return nil, err
		}
		return claims, nil
	}
	token, err := parser.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		return []byte(s.opts.Secret), nil
	})
	if err != nil {
		return nil, err
	}
	if !token.Valid {
		return nil, jwt.ErrTokenInvalidClaims
	}
	return claims, nil
}
