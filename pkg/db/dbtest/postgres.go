package dbtest

import (
	"context"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/Kai120789/marketplace/pkg/config"
	"github.com/Kai120789/marketplace/pkg/db"
	"github.com/Kai120789/marketplace/pkg/env"
	"github.com/Kai120789/marketplace/pkg/migrate"
)

// EnvTestDSN points Postgres-only tests at a disposable database.
const EnvTestDSN = "MARKETPLACE_TEST_DB_DSN"

// Postgres connects to the database named by MARKETPLACE_TEST_DB_DSN and
// applies the goose migrations. The test is skipped when the variable is unset.
func Postgres(t testing.TB) *db.Client {
	t.Helper()

	dsn := env.Get(EnvTestDSN, "")
	if dsn == "" {
		t.Skipf("%s not set; skipping postgres test", EnvTestDSN)
	}

	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{DSN: dsn, MaxOpenConns: 4}, false, nil)
	if err != nil {
		t.Fatalf("connect postgres: %v", err)
	}
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.DB().DB()
	if err != nil {
		t.Fatalf("sql handle: %v", err)
	}
	if err := migrate.Run(ctx, sqlDB, migrationsDir(), "up"); err != nil {
		t.Fatalf("migrate up: %v", err)
	}
	return client
}

func migrationsDir() string {
	_, file, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(file), "..", "..", "migrate", "migrations")
}
