//go:build integration
// +build integration

package repository

import (
	"context"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/models"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{&models.CartEvent{}, &models.KVEntry{}}
	_ = db.Migrator().DropTable(cleanupModels...)
	if err := db.AutoMigrate(cleanupModels...); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCartEventProductFilter(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	repo := NewCartEventRepository(db)
	now := time.Now()

	for _, event := range []*models.CartEvent{
		{GuestID: "g1", Source: constants.CartEventSourceGuest, ProductIDs: models.StringArray{"icu", "er"}, ChangedAt: now},
		{GuestID: "g1", Source: constants.CartEventSourceRemote, ProductIDs: models.StringArray{"peds"}, ChangedAt: now},
	} {
		if err := repo.Create(event); err != nil {
			t.Fatalf("create event failed: %v", err)
		}
	}

	events, total, err := repo.List(CartEventListFilter{Page: 1, PageSize: 10, ProductID: "er"})
	if err != nil {
		t.Fatalf("list events failed: %v", err)
	}
	if total != 1 || len(events) != 1 || events[0].Source != constants.CartEventSourceGuest {
		t.Fatalf("unexpected product filter result: total=%d events=%+v", total, events)
	}
}

func TestPostgresKVStoreUpsert(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	store := NewKVStore(db)
	ctx := context.Background()

	if err := store.Set(ctx, "k", "v1"); err != nil {
		t.Fatalf("set failed: %v", err)
	}
	if err := store.Set(ctx, "k", "v2"); err != nil {
		t.Fatalf("upsert failed: %v", err)
	}
	value, ok, err := store.Get(ctx, "k")
	if err != nil || !ok || value != "v2" {
		t.Fatalf("unexpected value %q ok=%v err=%v", value, ok, err)
	}
}
