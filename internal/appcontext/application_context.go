package appcontext

import (
	"context"
	"errors"
	"fmt"

	"github.com/RoyceAzure/lab/laptop_store/internal/config"
	"github.com/RoyceAzure/lab/laptop_store/internal/constants"
	"github.com/RoyceAzure/lab/laptop_store/internal/infra/producer"
	"github.com/RoyceAzure/lab/laptop_store/internal/infra/repository/catalog"
	"github.com/RoyceAzure/lab/laptop_store/internal/infra/repository/slot"
	"github.com/RoyceAzure/lab/laptop_store/internal/service"
	"github.com/RoyceAzure/lab/laptop_store/internal/util"
	"github.com/RoyceAzure/lab/laptop_store/pkg/kvstore"
	"github.com/RoyceAzure/lab/laptop_store/pkg/kvstore/memory"
	redisstore "github.com/RoyceAzure/lab/laptop_store/pkg/kvstore/redis"
	"github.com/RoyceAzure/lab/laptop_store/pkg/kvstore/sqlstore"
	"github.com/RoyceAzure/lab/laptop_store/pkg/ratelimit"
	"github.com/RoyceAzure/lab/laptop_store/pkg/redis_client"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type ApplicationContext struct {
	Cf                 *config.Config
	Logger             *zerolog.Logger
	LogSink            *producer.LogWriter
	Store              kvstore.Store
	RedisClient        *redis.Client
	SlotRepo           *slot.Repo
	CatalogRepo        *catalog.Repo
	Publisher          producer.Publisher
	Limiter            ratelimit.Limiter
	Storefront         *service.Storefront
	CatalogService     *service.CatalogService
	CheckoutService    *service.CheckoutService
	FulfillmentService *service.FulfillmentService
}

// NewApplicationContext 依設定建立所有元件並載入 storefront 狀態
// logger 為 nil 時依 cf 建立
func NewApplicationContext(ctx context.Context, cf *config.Config, logger *zerolog.Logger) (*ApplicationContext, error) {
	if cf == nil {
		return nil, errors.New("config cannot be nil")
	}
	app := ApplicationContext{
		Cf:     cf,
		Logger: logger,
	}
	if err := app.Init(ctx); err != nil {
		app.Shutdown(context.WithoutCancel(ctx))
		return nil, err
	}
	return &app, nil
}

func (app *ApplicationContext) Init(ctx context.Context) error {
	app.setUpLogger()
	app.Logger.Info().
		Str("store_driver", app.Cf.StoreDriver).
		Str("server_port", app.Cf.ServerPort).
		Strs("kafka_brokers", app.Cf.Brokers()).
		Str("tax_rate", app.Cf.TaxRate).
		Msg("loaded config")

	steps := []func(context.Context) error{
		app.setUpStore,
		app.setUpSlotRepo,
		app.setUpCatalog,
		app.setUpPublisher,
		app.setUpLimiter,
		app.setUpServices,
		app.loadState,
	}
	for _, step := range steps {
		if err := step(ctx); err != nil {
			return err
		}
	}
	return nil
}

// setUpLogger 有設定 LOG_KAFKA_TOPIC 時 log 也送到 kafka
func (app *ApplicationContext) setUpLogger() {
	util.ApplyGlobalLevel(app.Cf.LogLevel)
	if app.Logger != nil {
		return
	}
	brokers := app.Cf.Brokers()
	if app.Cf.LogKafkaTopic == "" || len(brokers) == 0 {
		app.Logger = util.NewLogger("trace", app.Cf.LogPretty)
		return
	}
	app.LogSink = producer.NewLogWriter(producer.NewKafkaLogWriter(brokers, app.Cf.LogKafkaTopic))
	app.Logger = util.NewTeeLogger("trace", app.Cf.LogPretty, app.LogSink)
}

func (app *ApplicationContext) setUpStore(ctx context.Context) error {
	app.Logger.Info().Msg("Start setup store")
	switch app.Cf.StoreDriver {
	case constants.StoreDriverRedis:
		client, err := redis_client.GetRedisClient(ctx, app.Cf.RedisAddr,
			redis_client.WithPassword(app.Cf.RedisPassword),
			redis_client.WithDB(app.Cf.RedisDB),
		)
		if err != nil {
			return err
		}
		app.RedisClient = client
		app.Store = redisstore.NewRedisStore(client, app.Cf.RedisPrefix)
	case constants.StoreDriverPostgres:
		db, err := sqlstore.OpenPostgres(sqlstore.PostgresDSN(app.Cf.DbName, app.Cf.DbHost, app.Cf.DbPort, app.Cf.DbUser, app.Cf.DbPas))
		if err != nil {
			return fmt.Errorf("open postgres: %w", err)
		}
		store, err := sqlstore.NewSQLStore(db)
		if err != nil {
			return err
		}
		app.Store = store
	case constants.StoreDriverSQLite:
		db, err := sqlstore.OpenSQLite(app.Cf.SQLitePath)
		if err != nil {
			return fmt.Errorf("open sqlite %s: %w", app.Cf.SQLitePath, err)
		}
		store, err := sqlstore.NewSQLStore(db)
		if err != nil {
			return err
		}
		app.Store = store
	default:
		app.Store = memory.NewMemoryStore()
	}
	app.Logger.Info().Str("driver", app.Cf.StoreDriver).Msg("Finish setup store")
	return nil
}

func (app *ApplicationContext) setUpSlotRepo(ctx context.Context) error {
	app.Logger.Info().Msg("Start setup slot repository")
	app.SlotRepo = slot.NewRepo(app.Store, app.Logger)
	if err := app.SlotRepo.Ping(ctx); err != nil {
		return fmt.Errorf("ping store: %w", err)
	}
	app.Logger.Info().Msg("Finish setup slot repository")
	return nil
}

func (app *ApplicationContext) setUpCatalog(context.Context) error {
	app.Logger.Info().Msg("Start setup catalog")
	repo, err := catalog.NewRepo()
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	app.CatalogRepo = repo
	app.Logger.Info().Int("laptops", repo.Len()).Msg("Finish setup catalog")
	return nil
}

// setUpPublisher 沒有設定 broker 時不發事件
func (app *ApplicationContext) setUpPublisher(context.Context) error {
	app.Logger.Info().Msg("Start setup event publisher")
	brokers := app.Cf.Brokers()
	if len(brokers) == 0 {
		app.Publisher = producer.NopPublisher{}
		app.Logger.Info().Msg("Finish setup event publisher (disabled)")
		return nil
	}
	app.Publisher = producer.NewEventProducer(producer.NewKafkaWriter(brokers, app.Cf.KafkaTopic), app.Logger)
	app.Logger.Info().Str("topic", app.Cf.KafkaTopic).Msg("Finish setup event publisher")
	return nil
}

// setUpLimiter 有 redis 時多個 instance 共用 bucket
func (app *ApplicationContext) setUpLimiter(context.Context) error {
	if app.Cf.RateCapacity == 0 {
		app.Logger.Info().Msg("rate limit disabled")
		return nil
	}
	cfg := ratelimit.Config{Capacity: app.Cf.RateCapacity, RatePS: app.Cf.RatePS}
	if app.RedisClient != nil {
		app.Limiter = ratelimit.NewRedisTokenBucket(app.RedisClient, app.Cf.RedisPrefix, cfg, app.Logger)
	} else {
		app.Limiter = ratelimit.NewTokenBucket(cfg)
	}
	return nil
}

func (app *ApplicationContext) setUpServices(context.Context) error {
	app.Logger.Info().Msg("Start setup services")
	rate, err := app.Cf.TaxRateDecimal()
	if err != nil {
		return err
	}
	app.Storefront = service.NewStorefront(app.SlotRepo, app.Publisher, app.Logger, service.WithTaxRate(rate))
	app.CatalogService = service.NewCatalogService(app.CatalogRepo, app.Storefront)
	app.CheckoutService = service.NewCheckoutService(app.Storefront, app.SlotRepo, app.Logger)
	app.FulfillmentService = service.NewFulfillmentService(app.Storefront)
	app.Logger.Info().Msg("Finish setup services")
	return nil
}

func (app *ApplicationContext) loadState(ctx context.Context) error {
	if err := app.Storefront.Init(ctx); err != nil {
		return err
	}
	app.Logger.Info().
		Int("cart_items", app.Storefront.ItemCount()).
		Int("orders", len(app.Storefront.Orders())).
		Int("cancelled_orders", len(app.Storefront.CancelledOrders())).
		Msg("storefront state loaded")
	return nil
}

// ApplyConfig 熱更新, 只套用 TAX_RATE 與 LOG_LEVEL, 其餘需重啟
func (app *ApplicationContext) ApplyConfig(cf *config.Config) {
	lv := util.ApplyGlobalLevel(cf.LogLevel)
	if rate, err := cf.TaxRateDecimal(); err == nil && app.Storefront != nil {
		app.Storefront.SetTaxRate(rate)
	}
	app.Logger.Info().
		Str("log_level", lv.String()).
		Str("tax_rate", cf.TaxRate).
		Msg("config reloaded")
}

func (app *ApplicationContext) Shutdown(_ context.Context) error {
	var errs []error
	if app.Publisher != nil {
		if err := app.Publisher.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close publisher: %w", err))
		}
	}
	if app.Store != nil {
		if err := app.Store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close store: %w", err))
		}
	}
	if app.RedisClient != nil {
		if err := redis_client.ReleaseRedisClient(app.Cf.RedisAddr); err != nil {
			errs = append(errs, fmt.Errorf("release redis client: %w", err))
		}
	}
	if app.Logger != nil {
		app.Logger.Info().Err(errors.Join(errs...)).Msg("application shutdown")
	}
	if app.LogSink != nil {
		if err := app.LogSink.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close log sink: %w", err))
		}
	}
	return errors.Join(errs...)
}
