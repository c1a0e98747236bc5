package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"sync"

	"github.com/RoyceAzure/lab/laptop_store/internal/constants"
	"github.com/fsnotify/fsnotify"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// RATE_LIMIT_CAPACITY 為 0 表示不限流
// LOG_KAFKA_TOPIC 需搭配 KAFKA_BROKERS, 空字串表示 log 只寫 stdout
type Config struct {
	ServerPort    string  `mapstructure:"SERVER_PORT"`
	LogLevel      string  `mapstructure:"LOG_LEVEL"`
	LogPretty     bool    `mapstructure:"LOG_PRETTY"`
	LogKafkaTopic string  `mapstructure:"LOG_KAFKA_TOPIC"`
	StoreDriver   string  `mapstructure:"STORE_DRIVER"`
	RedisAddr     string  `mapstructure:"REDIS_ADDR"`
	RedisPassword string  `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int     `mapstructure:"REDIS_DB"`
	RedisPrefix   string  `mapstructure:"REDIS_PREFIX"`
	DbName        string  `mapstructure:"POSTGRES_DB"`
	DbHost        string  `mapstructure:"POSTGRES_HOST"`
	DbPort        string  `mapstructure:"POSTGRES_PORT"`
	DbUser        string  `mapstructure:"POSTGRES_USER"`
	DbPas         string  `mapstructure:"POSTGRES_PASSWORD"`
	SQLitePath    string  `mapstructure:"SQLITE_PATH"`
	KafkaBrokers  string  `mapstructure:"KAFKA_BROKERS"`
	KafkaTopic    string  `mapstructure:"KAFKA_TOPIC"`
	TaxRate       string  `mapstructure:"TAX_RATE"`
	RateCapacity  int     `mapstructure:"RATE_LIMIT_CAPACITY"`
	RatePS        float64 `mapstructure:"RATE_LIMIT_RPS"`
}

var defaults = map[string]interface{}{
	"SERVER_PORT":         "8080",
	"LOG_LEVEL":           "info",
	"LOG_PRETTY":          false,
	"LOG_KAFKA_TOPIC":     "",
	"STORE_DRIVER":        constants.StoreDriverMemory,
	"REDIS_ADDR":          "localhost:6379",
	"REDIS_PASSWORD":      "",
	"REDIS_DB":            0,
	"REDIS_PREFIX":        "laptop_store",
	"POSTGRES_DB":         "laptop_store",
	"POSTGRES_HOST":       "localhost",
	"POSTGRES_PORT":       "5432",
	"POSTGRES_USER":       "postgres",
	"POSTGRES_PASSWORD":   "",
	"SQLITE_PATH":         "laptop_store.db",
	"KAFKA_BROKERS":       "",
	"KAFKA_TOPIC":         "laptop_store.events",
	"TAX_RATE":            "0.10",
	"RATE_LIMIT_CAPACITY": 100,
	"RATE_LIMIT_RPS":      50,
}

// Brokers 逗號分隔, 空字串表示不發事件
func (c *Config) Brokers() []string {
	var out []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			out = append(out, b)
		}
	}
	return out
}

func (c *Config) TaxRateDecimal() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.TaxRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid TAX_RATE %q: %w", c.TaxRate, err)
	}
	if rate.IsNegative() {
		return decimal.Zero, fmt.Errorf("invalid TAX_RATE %q: must not be negative", c.TaxRate)
	}
	return rate, nil
}

func (c *Config) Validate() error {
	switch c.StoreDriver {
	case constants.StoreDriverMemory, constants.StoreDriverRedis, constants.StoreDriverPostgres, constants.StoreDriverSQLite:
	default:
		return fmt.Errorf("unknown STORE_DRIVER %q", c.StoreDriver)
	}
	if _, err := c.TaxRateDecimal(); err != nil {
		return err
	}
	if c.RateCapacity < 0 || c.RatePS < 0 {
		return fmt.Errorf("invalid rate limit %d/%v: must not be negative", c.RateCapacity, c.RatePS)
	}
	if c.RateCapacity > 0 && c.RatePS == 0 {
		return errors.New("RATE_LIMIT_RPS must be positive when RATE_LIMIT_CAPACITY is set")
	}
	return nil
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	for k, val := range defaults {
		v.SetDefault(k, val)
	}
	if path != "" {
		v.SetConfigFile(path)
		v.SetConfigType("env")
	}
	v.AutomaticEnv()
	return v
}

func readConfig(v *viper.Viper, hasFile bool) (*Config, error) {
	if hasFile {
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}
	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

/*
LoadConfig 讀取 .env 格式設定檔, 環境變數優先
path 為空或檔案不存在時只用環境變數與預設值
單純回傳錯誤, 由外部決定要不要 Fatal
*/
func LoadConfig(path string) (*Config, error) {
	return readConfig(newViper(path), path != "")
}

// Watcher 設定檔變更時重新讀取, 讀取失敗保留舊設定
type Watcher struct {
	mu     sync.RWMutex
	config *Config
	v      *viper.Viper
}

func (w *Watcher) Config() *Config {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.config
}

// Watch onChange 在重新讀取成功後呼叫, onError 在失敗時呼叫, 兩者皆可為 nil
func Watch(path string, onChange func(*Config), onError func(error)) (*Watcher, error) {
	v := newViper(path)
	cf, err := readConfig(v, true)
	if err != nil {
		return nil, err
	}
	w := &Watcher{config: cf, v: v}
	v.OnConfigChange(func(e fsnotify.Event) {
		if !e.Has(fsnotify.Write) && !e.Has(fsnotify.Create) {
			return
		}
		next, err := readConfig(v, true)
		if err != nil {
			if onError != nil {
				onError(err)
			}
			return
		}
		w.mu.Lock()
		w.config = next
		w.mu.Unlock()
		if onChange != nil {
			onChange(next)
		}
	})
	v.WatchConfig()
	return w, nil
}
