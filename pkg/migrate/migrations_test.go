package migrate_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/Kai120789/marketplace/pkg/migrate"
)

func readMigration(t *testing.T, suffix string) string {
	t.Helper()
	matches, err := filepath.Glob(filepath.Join("migrations", "*_"+suffix+".sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no %s migration file found", suffix)
	}
	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	return string(data)
}

func TestMigrationsDirIsValid(t *testing.T) {
	if err := migrate.ValidateDir("migrations"); err != nil {
		t.Fatalf("validate migrations: %v", err)
	}
}

func TestCatalogMigrationConstraints(t *testing.T) {
	content := readMigration(t, "create_catalog")
	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_products_slug",
		"CHECK (default_price > 0)",
		"CHECK (avg_rating BETWEEN 0 AND 5)",
		"variant_seq integer NOT NULL DEFAULT 0",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_product_variants_slug",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_product_variants_product_color ON product_variants (product_id, color_id)",
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_product_colors_product_color ON product_colors (product_id, color_id)",
		"FOREIGN KEY (default_variant_id) REFERENCES product_variants (id) ON DELETE SET NULL",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestBasketAndOrderMigrationConstraints(t *testing.T) {
	content := readMigration(t, "create_baskets_and_orders")
	checks := []string{
		"CREATE UNIQUE INDEX IF NOT EXISTS ux_baskets_user_variant ON baskets (user_id, product_variant_id)",
		"count integer NOT NULL CHECK (count > 0)",
		"full_price numeric(12,2) NOT NULL CHECK (full_price > 0)",
		"basket_id uuid NULL REFERENCES baskets (id) ON DELETE SET NULL",
		"address_id uuid NULL REFERENCES addresses (id) ON DELETE SET NULL",
		"unit_price numeric(10,2) NOT NULL",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestOrderLinesOutliveVariants(t *testing.T) {
	content := readMigration(t, "snapshot_order_lines")
	checks := []string{
		"ALTER TABLE basket_orders ALTER COLUMN product_variant_id DROP NOT NULL",
		"FOREIGN KEY (product_variant_id) REFERENCES product_variants (id) ON DELETE SET NULL",
		"FOREIGN KEY (product_id) REFERENCES products (id) ON DELETE CASCADE",
		"ADD COLUMN IF NOT EXISTS product_name text NOT NULL DEFAULT ''",
	}
	for _, sub := range checks {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestReviewMigrationRatingRange(t *testing.T) {
	if content := readMigration(t, "create_reviews"); !strings.Contains(content, "CHECK (rating BETWEEN 1 AND 5)") {
		t.Fatal("reviews table must constrain rating to 1..5")
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := migrate.CreateSQLMigration(dir, "Add Wishlist Table!")
	if err != nil {
		t.Fatalf("create migration: %v", err)
	}
	if !strings.HasSuffix(path, "_add_wishlist_table.sql") {
		t.Fatalf("unexpected filename %s", path)
	}
	if err := migrate.ValidateDir(dir); err != nil {
		t.Fatalf("generated migration should validate: %v", err)
	}
	if _, err := migrate.CreateSQLMigration(dir, "!!!"); err == nil {
		t.Fatal("expected error for empty sanitized name")
	}
}

func TestValidateDirRejectsMalformedFiles(t *testing.T) {
	cases := map[string]string{
		"20250101000000_bad_name-x.sql": "-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n",
		"20250101000000_down_first.sql": "-- +goose Down\nSELECT 1;\n-- +goose Up\nSELECT 1;\n",
		"20250101000000_empty_up.sql":   "-- +goose Up\n\n-- +goose Down\nSELECT 1;\n",
		"20250101000000_unbalanced.sql": "-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\nSELECT 1;\n",
	}
	for name, body := range cases {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
		if err := migrate.ValidateDir(dir); err == nil {
			t.Fatalf("%s: expected validation error", name)
		}
	}
}
