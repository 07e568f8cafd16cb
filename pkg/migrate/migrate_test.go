package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/basho-studio/storefront/pkg/config"
	"github.com/basho-studio/storefront/pkg/db"
	"github.com/basho-studio/storefront/pkg/logger"
)

func TestCartSnapshotsMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_cart_snapshots.sql"))
	if err != nil {
		t.Fatalf("glob migrations: %v", err)
	}
	if len(matches) == 0 {
		t.Fatalf("no cart snapshot migration file found")
	}

	data, err := os.ReadFile(matches[0])
	if err != nil {
		t.Fatalf("read migration file: %v", err)
	}
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS cart_snapshots",
		"cart_key   VARCHAR(191) PRIMARY KEY",
		"CREATE INDEX IF NOT EXISTS idx_cart_snapshots_expires_at",
		"DROP TABLE IF EXISTS cart_snapshots",
	} {
		if !strings.Contains(content, sub) {
			t.Errorf("missing expected statement %q", sub)
		}
	}
}

func TestEmbeddedMigrationsValidate(t *testing.T) {
	if err := ValidateEmbedded(); err != nil {
		t.Fatalf("validate embedded: %v", err)
	}
	if err := ValidateDir("migrations"); err != nil {
		t.Fatalf("validate dir: %v", err)
	}
}

func TestValidateFSRejectsMalformedMigrations(t *testing.T) {
	cases := map[string]fstest.MapFS{
		"bad filename": {
			"cart.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
		"not a timestamp": {
			"20261399000000_cart.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
		"duplicate version": {
			"20260105090000_a.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
			"20260105090000_b.sql": {Data: []byte("-- +goose Up\n-- +goose Down\n")},
		},
		"missing down": {
			"20260105090000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n")},
		},
		"down before up": {
			"20260105090000_a.sql": {Data: []byte("-- +goose Down\n-- +goose Up\n")},
		},
		"unterminated block": {
			"20260105090000_a.sql": {Data: []byte("-- +goose Up\n-- +goose StatementBegin\nSELECT 1;\n-- +goose Down\n")},
		},
		"stray end": {
			"20260105090000_a.sql": {Data: []byte("-- +goose Up\n-- +goose StatementEnd\n-- +goose Down\n")},
		},
	}
	for name, fsys := range cases {
		t.Run(name, func(t *testing.T) {
			if err := ValidateFS(fsys); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestValidateFSIgnoresOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"README.md":            {Data: []byte("notes")},
		"20260105090000_a.sql": {Data: []byte("-- +goose Up\nSELECT 1;\n-- +goose Down\nSELECT 1;\n")},
	}
	if err := ValidateFS(fsys); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 2, 3, 4, 5, 6, 0, time.UTC)

	path, err := createAt(dir, "Add Cart Owner!", now)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if filepath.Base(path) != "20260203040506_add_cart_owner.sql" {
		t.Fatalf("unexpected path %s", path)
	}
	if err := ValidateDir(dir); err != nil {
		t.Fatalf("created migration should validate: %v", err)
	}

	if _, err := createAt(dir, "add cart owner", now); err == nil {
		t.Fatal("expected an existing file to be kept")
	}
	if _, err := createAt(dir, "!!!", now); err == nil {
		t.Fatal("expected empty slug error")
	}
}

func TestSlug(t *testing.T) {
	for in, want := range map[string]string{
		"Add Cart Owner!":        "add_cart_owner",
		"  cart--snapshots  v2 ": "cart_snapshots_v2",
		"Index: expires_at":      "index_expires_at",
	} {
		if got := Slug(in); got != want {
			t.Errorf("Slug(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestRunUpOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := conn.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := Run(context.Background(), sqlDB, config.DBDriverSQLite, "up"); err != nil {
		t.Fatalf("goose up: %v", err)
	}
	if !conn.Migrator().HasTable("cart_snapshots") {
		t.Fatal("expected cart_snapshots table")
	}
}

func TestDialect(t *testing.T) {
	if d, _ := Dialect(config.DBDriverSQLite); d != "sqlite3" {
		t.Fatalf("unexpected sqlite dialect %q", d)
	}
	if d, _ := Dialect(""); d != "postgres" {
		t.Fatalf("unexpected default dialect %q", d)
	}
	if _, err := Dialect("mysql"); err == nil {
		t.Fatal("expected unsupported driver error")
	}
}

func TestMaybeRunDevOnlyMigratesInDev(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:autorun_test?mode=memory&cache=shared"), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	client := db.NewWithConn(conn, config.DBDriverSQLite)
	t.Cleanup(func() { _ = client.Close() })

	cfg := &config.Config{
		App:          config.AppConfig{Env: config.AppEnvProd},
		FeatureFlags: config.FeatureFlagsConfig{AutoMigrate: true},
	}
	if err := MaybeRunDev(context.Background(), cfg, logger.Nop(), client); err != nil {
		t.Fatalf("prod autorun: %v", err)
	}
	if conn.Migrator().HasTable("cart_snapshots") {
		t.Fatal("autorun must not touch non-dev databases")
	}

	cfg.App.Env = config.AppEnvDev
	if err := MaybeRunDev(context.Background(), cfg, logger.Nop(), client); err != nil {
		t.Fatalf("dev autorun: %v", err)
	}
	if !conn.Migrator().HasTable("cart_snapshots") {
		t.Fatal("expected cart_snapshots table after dev autorun")
	}
}
