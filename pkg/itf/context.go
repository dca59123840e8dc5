package itf

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/greenweave/greenweave/pkg/application"
	"github.com/greenweave/greenweave/pkg/composables"
)

// TestEnvironment is a ready-to-use postgres-backed test harness: a fresh
// database with migrations applied and a context carrying the pool.
type TestEnvironment struct {
	Ctx  context.Context
	Pool *pgxpool.Pool
	App  application.Application
}

type TestContext struct {
	modules []application.Module
	dbName  string
}

func NewTestContext() *TestContext {
	return &TestContext{}
}

func (tc *TestContext) WithModules(modules ...application.Module) *TestContext {
	tc.modules = append(tc.modules, modules...)
	return tc
}

func (tc *TestContext) WithDBName(name string) *TestContext {
	tc.dbName = name
	return tc
}

// Build provisions the database and application. The test is skipped when no
// postgres server is reachable, so unit runs stay green without one.
func (tc *TestContext) Build(tb testing.TB) *TestEnvironment {
	tb.Helper()

	if err := PingDatabase(); err != nil {
		tb.Skipf("postgres not available: %v", err)
	}

	if tc.dbName == "" {
		tc.dbName = tb.Name()
	}
	if err := CreateDB(tc.dbName); err != nil {
		tb.Fatal(err)
	}
	pool := NewPool(DbOpts(tc.dbName))

	app, err := SetupApplication(pool, tc.modules...)
	if err != nil {
		pool.Close()
		tb.Fatal(err)
	}

	tb.Cleanup(pool.Close)

	ctx := composables.WithPool(context.Background(), pool)
	ctx = composables.WithParams(ctx, DefaultParams())

	return &TestEnvironment{
		Ctx:  ctx,
		Pool: pool,
		App:  app,
	}
}
