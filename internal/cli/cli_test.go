package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/florencebot/internal/config"
	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/models"
	"github.com/florencebot/internal/provider"
	"github.com/florencebot/internal/repository"
	"github.com/florencebot/internal/service"

	"github.com/golang-jwt/jwt/v5"
)

func newTestContainer() *provider.Container {
	cfg := &config.Config{}
	cfg.Cart.StorageKey = constants.GuestCartStorageKey
	return &provider.Container{
		Config:     cfg,
		GuestStore: service.NewMemoryStore(),
		Pricing:    service.DefaultPricingPolicy(),
	}
}

func runCommand(t *testing.T, container *provider.Container, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCommand(func() (*provider.Container, error) { return container, nil })
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand(nil)
	for _, path := range [][]string{{"tiers"}, {"quote"}, {"cart", "show"}, {"cart", "add"}, {"cart", "remove"}, {"cart", "clear"}, {"login"}, {"logout"}, {"activity"}} {
		sub, _, err := cmd.Find(path)
		if err != nil || sub == nil || sub.Name() != path[len(path)-1] {
			t.Fatalf("command %v should exist: %v", path, err)
		}
	}
}

func TestInvalidFormatRejected(t *testing.T) {
	if _, err := runCommand(t, newTestContainer(), "--format", "xml", "tiers"); err == nil {
		t.Fatalf("expected invalid format error")
	}
}

func TestQuoteCommand(t *testing.T) {
	out, err := runCommand(t, newTestContainer(), "quote", "12")
	if err != nil {
		t.Fatalf("quote failed: %v", err)
	}
	if !strings.Contains(out, "61.98") || !strings.Contains(out, "10-pack + 2 extra") {
		t.Fatalf("unexpected quote output: %s", out)
	}

	out, err = runCommand(t, newTestContainer(), "--format", "json", "quote", "4")
	if err != nil {
		t.Fatalf("quote json failed: %v", err)
	}
	var result struct {
		DiscountedTotal string `json:"discountedTotal"`
		PerItemPrice    string `json:"perItemPrice"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil {
		t.Fatalf("decode quote failed: %v out=%s", err, out)
	}
	if result.DiscountedTotal != "20.99" || result.PerItemPrice != "5.25" {
		t.Fatalf("unexpected quote: %+v", result)
	}

	if _, err := runCommand(t, newTestContainer(), "quote", "abc"); err == nil {
		t.Fatalf("expected invalid count error")
	}
}

func TestTiersCommand(t *testing.T) {
	out, err := runCommand(t, newTestContainer(), "tiers")
	if err != nil {
		t.Fatalf("tiers failed: %v", err)
	}
	for _, want := range []string{"5.99", "50.00", "25.00", "15.00"} {
		if !strings.Contains(out, want) {
			t.Fatalf("tiers output missing %s: %s", want, out)
		}
	}
}

func TestCartCommandsShareLocalCart(t *testing.T) {
	container := newTestContainer()
	if _, err := runCommand(t, container, "cart", "add", "icu", "ICU Guide", "individual", "5.99", "--quantity", "3"); err != nil {
		t.Fatalf("cart add failed: %v", err)
	}
	if _, err := runCommand(t, container, "cart", "add", "icu", "ICU Guide", "individual", "5.99"); err != nil {
		t.Fatalf("cart add failed: %v", err)
	}

	out, err := runCommand(t, container, "--format", "json", "cart", "show")
	if err != nil {
		t.Fatalf("cart show failed: %v", err)
	}
	var view struct {
		Items []struct {
			ProductID string `json:"product_id"`
			Quantity  int    `json:"quantity"`
		} `json:"items"`
		ItemCount    int `json:"item_count"`
		BulkDiscount struct {
			DiscountedTotal string `json:"discountedTotal"`
		} `json:"bulk_discount"`
	}
	if err := json.Unmarshal([]byte(out), &view); err != nil {
		t.Fatalf("decode cart failed: %v out=%s", err, out)
	}
	if len(view.Items) != 1 || view.Items[0].Quantity != 4 || view.ItemCount != 4 {
		t.Fatalf("unexpected cart: %+v", view)
	}
	if view.BulkDiscount.DiscountedTotal != "20.99" {
		t.Fatalf("unexpected discount: %+v", view.BulkDiscount)
	}

	out, err = runCommand(t, container, "cart", "remove", "icu")
	if err != nil || !strings.Contains(out, "cart is empty") {
		t.Fatalf("cart remove failed: %v out=%s", err, out)
	}

	if _, err := runCommand(t, container, "cart", "add", "er", "ER Guide", "individual", "5.99"); err != nil {
		t.Fatalf("cart add failed: %v", err)
	}
	out, err = runCommand(t, container, "cart", "clear")
	if err != nil || !strings.Contains(out, "cart is empty") {
		t.Fatalf("cart clear failed: %v out=%s", err, out)
	}
}

func TestLoginAndLogoutPersistTokens(t *testing.T) {
	container := newTestContainer()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, service.UserJWTClaims{
		UserID:           3,
		RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour))},
	})
	signed, err := token.SignedString([]byte("cli-secret"))
	if err != nil {
		t.Fatalf("sign token failed: %v", err)
	}

	out, err := runCommand(t, container, "login", "--access-token", signed, "--refresh-token", "refresh-1")
	if err != nil || !strings.Contains(out, "logged in") {
		t.Fatalf("login failed: %v out=%s", err, out)
	}
	store := service.NamespacedStore(container.GuestStore, constants.GuestIDLocal)
	if value, ok, _ := store.Get(t.Context(), constants.RefreshTokenStorageKey); !ok || value != "refresh-1" {
		t.Fatalf("refresh token should be persisted, got %q", value)
	}

	if _, err := runCommand(t, container, "logout"); err != nil {
		t.Fatalf("logout failed: %v", err)
	}
	if _, ok, _ := store.Get(t.Context(), constants.AccessTokenStorageKey); ok {
		t.Fatalf("access token should be removed")
	}

	if _, err := runCommand(t, container, "login"); err == nil {
		t.Fatalf("login without token should fail")
	}
}

func TestActivityCommand(t *testing.T) {
	container := newTestContainer()
	if _, err := runCommand(t, container, "activity"); err == nil {
		t.Fatalf("activity without database should fail")
	}

	dsn := fmt.Sprintf("file:cli_activity_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := models.OpenDB("sqlite", dsn, models.DBPoolConfig{MaxOpenConns: 1, MaxIdleConns: 1})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.CartEvent{}); err != nil {
		t.Fatalf("migrate failed: %v", err)
	}
	repo := repository.NewCartEventRepository(db)
	container.CartEventRepo = repo
	now := time.Now()
	for i, guest := range []string{constants.GuestIDLocal, "someone-else"} {
		if err := repo.Create(&models.CartEvent{
			GuestID:    guest,
			Source:     constants.CartEventSourceGuest,
			ItemCount:  i + 1,
			ProductIDs: models.StringArray{"icu"},
			ChangedAt:  now,
		}); err != nil {
			t.Fatalf("create event failed: %v", err)
		}
	}

	out, err := runCommand(t, container, "--format", "json", "activity")
	if err != nil {
		t.Fatalf("activity failed: %v", err)
	}
	var result struct {
		Total int64 `json:"total"`
	}
	if err := json.Unmarshal([]byte(out), &result); err != nil || result.Total != 1 {
		t.Fatalf("expected one local event, got %s err=%v", out, err)
	}

	out, err = runCommand(t, container, "activity", "--guest", "")
	if err != nil || !strings.Contains(out, "showing 2 of 2") {
		t.Fatalf("expected all events, got %s err=%v", out, err)
	}
}
