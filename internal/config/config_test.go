package config

import (
	"strings"
	"testing"

	"github.com/florencebot/internal/constants"

	"github.com/spf13/viper"
)

func TestDefaultsUnmarshal(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal defaults failed: %v", err)
	}
	if cfg.Cart.StorageKey != constants.GuestCartStorageKey {
		t.Fatalf("unexpected storage key: %s", cfg.Cart.StorageKey)
	}
	if cfg.Cart.Store != constants.CartStoreDatabase {
		t.Fatalf("unexpected cart store: %s", cfg.Cart.Store)
	}
	if cfg.Pricing.IndividualGuidePrice != 5.99 {
		t.Fatalf("unexpected individual price: %v", cfg.Pricing.IndividualGuidePrice)
	}
	if len(cfg.Pricing.BulkTiers) != 3 {
		t.Fatalf("expected 3 default tiers, got %d", len(cfg.Pricing.BulkTiers))
	}
	for i := 1; i < len(cfg.Pricing.BulkTiers); i++ {
		if cfg.Pricing.BulkTiers[i-1].MinQty <= cfg.Pricing.BulkTiers[i].MinQty {
			t.Fatalf("default tiers must be strictly descending: %+v", cfg.Pricing.BulkTiers)
		}
	}
	if cfg.Pricing.BulkTiers[2].MinQty != 3 || cfg.Pricing.BulkTiers[2].BundlePrice != 15 {
		t.Fatalf("unexpected lowest tier: %+v", cfg.Pricing.BulkTiers[2])
	}
}

func TestTiersFromYAML(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	yaml := `
pricing:
  individual_guide_price: 7.5
  bulk_tiers:
    - min_qty: 4
      bundle_price: 25
      savings_per_bundle: 5
cart:
  store: redis
`
	if err := v.ReadConfig(strings.NewReader(yaml)); err != nil {
		t.Fatalf("read yaml failed: %v", err)
	}
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if cfg.Pricing.IndividualGuidePrice != 7.5 {
		t.Fatalf("unexpected price: %v", cfg.Pricing.IndividualGuidePrice)
	}
	if len(cfg.Pricing.BulkTiers) != 1 || cfg.Pricing.BulkTiers[0].MinQty != 4 {
		t.Fatalf("unexpected tiers: %+v", cfg.Pricing.BulkTiers)
	}
	if cfg.Cart.Store != constants.CartStoreRedis {
		t.Fatalf("unexpected store: %s", cfg.Cart.Store)
	}
}
