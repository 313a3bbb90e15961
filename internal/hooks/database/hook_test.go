package database

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
	"gorm.io/gorm"
	"gorm.io/plugin/dbresolver"

	"yqhp/hookserver/common/config"
	"yqhp/hookserver/internal/hook"
)

func sqliteConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Database.Enabled = true
	cfg.Database.Driver = DriverSQLite
	cfg.Database.Path = filepath.Join(t.TempDir(), "hooks.db")
	cfg.Database.ConnectRetries = 0
	return cfg
}

func TestDSN(t *testing.T) {
	cfg := config.DefaultConfig().Database
	cfg.Username = "root"
	cfg.Password = "secret"
	cfg.Database = "yqhp"

	dsn, err := DSN(cfg)
	require.NoError(t, err)
	assert.Equal(t, "root:secret@tcp(127.0.0.1:3306)/yqhp?charset=utf8mb4&parseTime=True&loc=Local", dsn)

	cfg.Driver = DriverPostgres
	cfg.Port = 5432
	dsn, err = DSN(cfg)
	require.NoError(t, err)
	assert.Equal(t, "host=127.0.0.1 port=5432 user=root password=secret dbname=yqhp sslmode=disable", dsn)

	cfg.Driver = "oracle"
	_, err = DSN(cfg)
	assert.ErrorContains(t, err, "unsupported database driver")
}

func TestFactory(t *testing.T) {
	cfg := config.DefaultConfig()
	v, err := Factory(cfg)
	require.NoError(t, err)
	h, ok := v.(*Hook)
	require.True(t, ok)
	assert.False(t, h.Enabled())

	cfg.Database.Enabled = true
	cfg.Database.Driver = "oracle"
	_, err = Factory(cfg)
	assert.Error(t, err)
}

func TestHook_Lifecycle(t *testing.T) {
	cfg := sqliteConfig(t)
	o := hook.New(cfg, hook.WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	require.NoError(t, o.InitHooks(ctx, hook.Candidates{Name: hook.Factory(Factory)}))

	db, err := hook.Lookup[*gorm.DB](o, ResourceKey)
	require.NoError(t, err)
	require.NoError(t, db.Exec("CREATE TABLE notes (id INTEGER PRIMARY KEY, body TEXT)").Error)
	require.NoError(t, db.Exec("INSERT INTO notes (body) VALUES (?)", "hello").Error)

	info, err := o.PublicInfo(ctx)
	require.NoError(t, err)
	section, ok := info["database"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, DriverSQLite, section["driver"])
	assert.Equal(t, 0, section["replicas"])

	// reset reopens the same file with a fresh pool
	require.NoError(t, o.ResetHooks(ctx))
	reopened, err := hook.Lookup[*gorm.DB](o, ResourceKey)
	require.NoError(t, err)
	assert.NotSame(t, db, reopened)

	var count int64
	require.NoError(t, reopened.Table("notes").Count(&count).Error)
	assert.Equal(t, int64(1), count)

	require.NoError(t, o.KillHooks(ctx))
	_, ok = o.Resource(ResourceKey)
	assert.False(t, ok)

	sqlDB, err := reopened.DB()
	require.NoError(t, err)
	assert.Error(t, sqlDB.Ping())
}

func TestHook_Replicas(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.Replicas = []string{filepath.Join(t.TempDir(), "replica.db")}

	h := New(cfg.Database)
	o := hook.New(cfg)
	ctx := context.Background()
	require.NoError(t, h.Init(ctx, o))
	defer func() { _ = h.Destroy(ctx, o) }()

	info, err := h.Info(ctx, o)
	require.NoError(t, err)
	assert.Equal(t, 1, info["database"].(map[string]any)["replicas"])
}

func TestClose_ReleasesReplicaPools(t *testing.T) {
	cfg := sqliteConfig(t).Database
	cfg.Replicas = []string{filepath.Join(t.TempDir(), "replica.db")}
	ctx := context.Background()

	db, err := Open(ctx, cfg, zaptest.NewLogger(t))
	require.NoError(t, err)

	var n int
	require.NoError(t, db.Clauses(dbresolver.Read).Raw("SELECT 1").Scan(&n).Error)
	require.NoError(t, db.Clauses(dbresolver.Write).Raw("SELECT 1").Scan(&n).Error)

	require.NoError(t, Close(db))

	assert.Error(t, db.Clauses(dbresolver.Read).Raw("SELECT 1").Scan(&n).Error, "replica pool still open")
	assert.Error(t, db.Clauses(dbresolver.Write).Raw("SELECT 1").Scan(&n).Error, "primary pool still open")

	dr, ok := db.Config.Plugins[resolverName].(*dbresolver.DBResolver)
	require.True(t, ok)
	pools := 0
	require.NoError(t, dr.Call(func(pool gorm.ConnPool) error {
		pools++
		if p, ok := pool.(interface{ PingContext(context.Context) error }); ok {
			assert.Error(t, p.PingContext(ctx))
		}
		return nil
	}))
	assert.Equal(t, 2, pools)
}

func TestHook_ResetClosesReplicaPools(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.Replicas = []string{filepath.Join(t.TempDir(), "replica.db")}
	o := hook.New(cfg, hook.WithLogger(zaptest.NewLogger(t)))
	ctx := context.Background()

	require.NoError(t, o.InitHooks(ctx, hook.Candidates{Name: hook.Factory(Factory)}))
	first, err := hook.Lookup[*gorm.DB](o, ResourceKey)
	require.NoError(t, err)

	require.NoError(t, o.ResetHooks(ctx))
	var n int
	assert.Error(t, first.Clauses(dbresolver.Read).Raw("SELECT 1").Scan(&n).Error)

	second, err := hook.Lookup[*gorm.DB](o, ResourceKey)
	require.NoError(t, err)
	require.NoError(t, second.Clauses(dbresolver.Read).Raw("SELECT 1").Scan(&n).Error)

	require.NoError(t, o.KillHooks(ctx))
	assert.Error(t, second.Clauses(dbresolver.Read).Raw("SELECT 1").Scan(&n).Error)
}

func TestHook_Disabled(t *testing.T) {
	cfg := config.DefaultConfig()
	o := hook.New(cfg)
	require.NoError(t, o.InitHooks(context.Background(), hook.Candidates{Name: hook.Factory(Factory)}))
	assert.Equal(t, 0, o.Registry().Len())
}

func TestHook_InitFailure(t *testing.T) {
	cfg := sqliteConfig(t)
	cfg.Database.Path = filepath.Join(t.TempDir(), "missing", "dir", "hooks.db")

	o := hook.New(cfg)
	err := o.InitHooks(context.Background(), hook.Candidates{Name: hook.Factory(Factory)})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "open sqlite database")
	assert.Equal(t, hook.StateFailed, o.State())

	// nothing was connected, so cleanup is a no-op
	require.NoError(t, o.KillHooks(context.Background()))
}

func TestHook_InfoWithoutConnection(t *testing.T) {
	h := New(config.DefaultConfig().Database)
	_, err := h.Info(context.Background(), hook.New(nil))
	assert.Error(t, err)
}
