package repository

import (
	"testing"
	"time"

	"github.com/florencebot/internal/constants"
	"github.com/florencebot/internal/models"

	"github.com/shopspring/decimal"
)

func TestCartEventRepositoryList(t *testing.T) {
	repo := NewCartEventRepository(setupRepositoryTestDB(t, "cart_event_repo_test"))
	base := time.Date(2026, 5, 1, 10, 0, 0, 0, time.UTC)

	events := []models.CartEvent{
		{GuestID: "guest-a", Source: constants.CartEventSourceGuest, ItemCount: 1, Subtotal: models.NewMoneyFromDecimal(decimal.RequireFromString("5.99")), ProductIDs: models.StringArray{"guide-1"}, ChangedAt: base},
		{GuestID: "guest-a", Source: constants.CartEventSourceGuest, ItemCount: 2, Subtotal: models.NewMoneyFromDecimal(decimal.RequireFromString("11.98")), ProductIDs: models.StringArray{"guide-1", "guide-2"}, ChangedAt: base.Add(time.Minute)},
		{GuestID: "guest-b", Source: constants.CartEventSourceRemote, ItemCount: 1, Subtotal: models.NewMoneyFromDecimal(decimal.RequireFromString("40")), ProductIDs: models.StringArray{"bundle-1"}, Authenticated: true, ChangedAt: base.Add(2 * time.Minute)},
	}
	for i := range events {
		if err := repo.Create(&events[i]); err != nil {
			t.Fatalf("create event failed: %v", err)
		}
	}

	list, total, err := repo.List(CartEventListFilter{GuestID: "guest-a"})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if total != 2 || len(list) != 2 {
		t.Fatalf("guest-a should have 2 events, total=%d len=%d", total, len(list))
	}
	if list[0].ItemCount != 2 {
		t.Fatalf("latest event should come first, got %+v", list[0])
	}
	if len(list[0].ProductIDs) != 2 || list[0].ProductIDs[1] != "guide-2" {
		t.Fatalf("product ids should round trip, got %v", list[0].ProductIDs)
	}

	list, total, err = repo.List(CartEventListFilter{ProductID: "guide-2"})
	if err != nil {
		t.Fatalf("list by product failed: %v", err)
	}
	if total != 1 || list[0].GuestID != "guest-a" {
		t.Fatalf("product filter mismatch total=%d list=%+v", total, list)
	}

	list, total, err = repo.List(CartEventListFilter{Source: constants.CartEventSourceRemote, Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("list by source failed: %v", err)
	}
	if total != 1 || !list[0].Authenticated || list[0].Subtotal.String() != "40.00" {
		t.Fatalf("source filter mismatch total=%d list=%+v", total, list)
	}

	since := base.Add(30 * time.Second)
	_, total, err = repo.List(CartEventListFilter{Since: &since, PageSize: 1})
	if err != nil {
		t.Fatalf("list since failed: %v", err)
	}
	if total != 2 {
		t.Fatalf("since filter should count 2, got %d", total)
	}
}
