package appcontext

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/RoyceAzure/lab/laptop_store/internal/config"
	"github.com/RoyceAzure/lab/laptop_store/internal/constants"
	"github.com/RoyceAzure/lab/laptop_store/internal/infra/producer"
	"github.com/RoyceAzure/lab/laptop_store/pkg/ratelimit"
	"github.com/alicebob/miniredis/v2"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func newConfig(t *testing.T) *config.Config {
	t.Helper()
	cf, err := config.LoadConfig("")
	require.NoError(t, err)
	return cf
}

func newApp(t *testing.T, cf *config.Config) *ApplicationContext {
	t.Helper()
	logger := zerolog.Nop()
	app, err := NewApplicationContext(context.Background(), cf, &logger)
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, app.Shutdown(context.Background()))
	})
	return app
}

func TestNewApplicationContext_Memory(t *testing.T) {
	app := newApp(t, newConfig(t))

	require.True(t, app.Storefront.IsInitialized())
	require.IsType(t, producer.NopPublisher{}, app.Publisher)
	require.IsType(t, &ratelimit.TokenBucket{}, app.Limiter)
	require.Nil(t, app.RedisClient)
	require.Equal(t, 30, app.CatalogRepo.Len())

	_, err := app.CatalogService.AddToCart(context.Background(), "apple-1", "")
	require.NoError(t, err)
	require.Equal(t, 1, app.Storefront.ItemCount())
}

func TestNewApplicationContext_SQLite(t *testing.T) {
	cf := newConfig(t)
	cf.StoreDriver = constants.StoreDriverSQLite
	cf.SQLitePath = filepath.Join(t.TempDir(), "store.db")
	ctx := context.Background()

	app := newApp(t, cf)
	_, err := app.CatalogService.AddToCart(ctx, "dell-2", "gold")
	require.NoError(t, err)

	// 重新啟動後狀態仍在
	reopened := newApp(t, cf)
	cart := reopened.Storefront.Cart()
	require.Len(t, cart, 1)
	require.Equal(t, "dell-2-gold", cart[0].ID)
}

func TestNewApplicationContext_Redis(t *testing.T) {
	mr := miniredis.RunT(t)
	cf := newConfig(t)
	cf.StoreDriver = constants.StoreDriverRedis
	cf.RedisAddr = mr.Addr()

	app := newApp(t, cf)
	require.NotNil(t, app.RedisClient)
	require.IsType(t, &ratelimit.RedisTokenBucket{}, app.Limiter)

	_, err := app.CatalogService.AddToCart(context.Background(), "hp-1", "")
	require.NoError(t, err)
	require.True(t, mr.Exists("laptop_store:cart"))
}

func TestNewApplicationContext_Errors(t *testing.T) {
	_, err := NewApplicationContext(context.Background(), nil, nil)
	require.Error(t, err)

	mr := miniredis.RunT(t)
	addr := mr.Addr()
	mr.Close()

	cf := newConfig(t)
	cf.StoreDriver = constants.StoreDriverRedis
	cf.RedisAddr = addr
	logger := zerolog.Nop()
	_, err = NewApplicationContext(context.Background(), cf, &logger)
	require.Error(t, err)
}

func TestApplyConfig(t *testing.T) {
	defer zerolog.SetGlobalLevel(zerolog.TraceLevel)

	cf := newConfig(t)
	cf.RateCapacity = 0
	app := newApp(t, cf)
	require.Nil(t, app.Limiter)

	next := *cf
	next.TaxRate = "0.2"
	next.LogLevel = "debug"
	app.ApplyConfig(&next)

	require.True(t, decimal.RequireFromString("0.2").Equal(app.Storefront.TaxRate()))
	require.Equal(t, zerolog.DebugLevel, zerolog.GlobalLevel())
}
