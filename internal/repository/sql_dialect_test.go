package repository

import "testing"

func TestJSONArrayContainsExprByDialectSQLite(t *testing.T) {
	got := jsonArrayContainsExprByDialect("sqlite", "product_ids")
	want := "EXISTS (SELECT 1 FROM json_each(product_ids) WHERE json_each.value = ?)"
	if got != want {
		t.Fatalf("sqlite expr mismatch, want %s got %s", want, got)
	}
	if arg := jsonArrayContainsArgByDialect("sqlite", "guide-1"); arg != "guide-1" {
		t.Fatalf("sqlite arg mismatch, got %v", arg)
	}
}

func TestJSONArrayContainsExprByDialectPostgres(t *testing.T) {
	got := jsonArrayContainsExprByDialect("postgres", "product_ids")
	want := "(product_ids::jsonb @> ?::jsonb)"
	if got != want {
		t.Fatalf("postgres expr mismatch, want %s got %s", want, got)
	}
	if arg := jsonArrayContainsArgByDialect("postgres", "guide-1"); arg != `["guide-1"]` {
		t.Fatalf("postgres arg mismatch, got %v", arg)
	}
}

func TestDBDialectNameDefaultsToSQLite(t *testing.T) {
	if dbDialectName(nil) != "sqlite" {
		t.Fatalf("nil db should default to sqlite")
	}
}
