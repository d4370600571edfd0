package cartapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/florencebot/internal/logger"
	"github.com/florencebot/internal/models"
	"github.com/florencebot/internal/service"
)

var (
	ErrConfigInvalid   = errors.New("cart api config invalid")
	ErrRequestFailed   = errors.New("cart api request failed")
	ErrResponseInvalid = errors.New("cart api response invalid")
	ErrUnauthorized    = errors.New("cart api unauthorized")
)

const (
	defaultTimeout = 8 * time.Second
	maxBodyBytes   = 1 << 20
)

// TokenSource 访问令牌来源
type TokenSource interface {
	AccessToken() string
	RefreshToken() string
	SetTokens(ctx context.Context, accessToken, refreshToken string) error
	ClearTokens(ctx context.Context) error
}

// Config 远程购物车接口配置
type Config struct {
	BaseURL string
	Timeout time.Duration
}

// Client 远程购物车接口客户端
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
}

type addItemRequest struct {
	ProductID   string       `json:"product_id"`
	ProductName string       `json:"product_name"`
	ProductType string       `json:"product_type"`
	Price       models.Price `json:"price"`
	Quantity    int          `json:"quantity"`
}

type cartEnvelope struct {
	Cart *models.Cart `json:"cart"`
}

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
}

// NewClient 创建客户端
func NewClient(cfg Config, tokens TokenSource) (*Client, error) {
	base := strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, fmt.Errorf("%w: base url is required", ErrConfigInvalid)
	}
	if _, err := url.ParseRequestURI(base); err != nil {
		return nil, fmt.Errorf("%w: base url is invalid", ErrConfigInvalid)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		tokens:     tokens,
	}, nil
}

// AddItem 调用 POST /cart/items，返回服务端购物车
func (c *Client) AddItem(ctx context.Context, input service.AddCartItemInput) (*models.Cart, error) {
	quantity := input.Quantity
	if quantity <= 0 {
		quantity = 1
	}
	payload, err := json.Marshal(addItemRequest{
		ProductID:   input.ProductID,
		ProductName: input.ProductName,
		ProductType: input.ProductType,
		Price:       input.Price,
		Quantity:    quantity,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: encode request failed", ErrRequestFailed)
	}
	body, err := c.doWithRefresh(ctx, http.MethodPost, "/cart/items", payload)
	if err != nil {
		return nil, err
	}
	return decodeCart(body)
}

// GetCart 调用 GET /cart
func (c *Client) GetCart(ctx context.Context) (*models.Cart, error) {
	body, err := c.doWithRefresh(ctx, http.MethodGet, "/cart", nil)
	if err != nil {
		return nil, err
	}
	return decodeCart(body)
}

// Refresh 使用刷新令牌换取新的访问令牌
func (c *Client) Refresh(ctx context.Context) error {
	if c.tokens == nil {
		return ErrUnauthorized
	}
	refreshToken := strings.TrimSpace(c.tokens.RefreshToken())
	if refreshToken == "" {
		return fmt.Errorf("%w: refresh token missing", ErrUnauthorized)
	}
	payload, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return fmt.Errorf("%w: encode refresh failed", ErrRequestFailed)
	}
	body, status, err := c.do(ctx, http.MethodPost, "/auth/refresh", payload, false)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("%w: refresh status %d", ErrUnauthorized, status)
	}
	var resp refreshResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return fmt.Errorf("%w: decode refresh failed", ErrResponseInvalid)
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return fmt.Errorf("%w: refresh returned empty access token", ErrUnauthorized)
	}
	return c.tokens.SetTokens(ctx, resp.AccessToken, resp.RefreshToken)
}

func (c *Client) doWithRefresh(ctx context.Context, method, path string, payload []byte) ([]byte, error) {
	body, status, err := c.do(ctx, method, path, payload, true)
	if err != nil {
		return nil, err
	}
	if status == http.StatusUnauthorized {
		if refreshErr := c.Refresh(ctx); refreshErr != nil {
			logger.Warnw("cart_api_refresh_failed", "path", path, "error", refreshErr)
			if c.tokens != nil {
				if clearErr := c.tokens.ClearTokens(ctx); clearErr != nil {
					logger.Warnw("cart_api_clear_tokens_failed", "error", clearErr)
				}
			}
			if errors.Is(refreshErr, ErrUnauthorized) {
				return nil, refreshErr
			}
			return nil, fmt.Errorf("%w: %v", ErrUnauthorized, refreshErr)
		}
		body, status, err = c.do(ctx, method, path, payload, true)
		if err != nil {
			return nil, err
		}
		if status == http.StatusUnauthorized {
			return nil, fmt.Errorf("%w: %s %s", ErrUnauthorized, method, path)
		}
	}
	if status < 200 || status >= 300 {
		return nil, fmt.Errorf("%w: %s %s status %d", ErrResponseInvalid, method, path, status)
	}
	return body, nil
}

func (c *Client) do(ctx context.Context, method, path string, payload []byte, withAuth bool) ([]byte, int, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: build request failed", ErrRequestFailed)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if withAuth && c.tokens != nil {
		if token := strings.TrimSpace(c.tokens.AccessToken()); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read response failed", ErrResponseInvalid)
	}
	return body, resp.StatusCode, nil
}

func decodeCart(body []byte) (*models.Cart, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}
	var envelope cartEnvelope
	if err := json.Unmarshal(body, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode cart failed", ErrResponseInvalid)
	}
	if envelope.Cart != nil && envelope.Cart.Items == nil {
		envelope.Cart.Items = []models.CartItem{}
	}
	return envelope.Cart, nil
}
