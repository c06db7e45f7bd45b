package config

import (
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

// Config stores all operator-facing settings. Values are read by viper from
// a YAML file and environment variables; everything except the server block
// can be changed between polling cycles without a restart, either by editing
// the watched file or through the settings API.
type Config struct {
	LogLevel string `mapstructure:"log_level" json:"log_level"`

	Assets           []string `mapstructure:"assets" json:"assets"`
	QuotePreferences []string `mapstructure:"quote_preferences" json:"quote_preferences"`

	PollInterval   time.Duration `mapstructure:"poll_interval" json:"poll_interval"`
	RequestTimeout time.Duration `mapstructure:"request_timeout" json:"request_timeout"`

	ProfitThresholdPercent float64 `mapstructure:"profit_threshold_percent" json:"profit_threshold_percent"`
	TransferFee            float64 `mapstructure:"transfer_fee" json:"transfer_fee"`
	DefaultTakerFeePercent float64 `mapstructure:"default_taker_fee_percent" json:"default_taker_fee_percent"`

	HistoryFile string `mapstructure:"history_file" json:"history_file"`

	Exchanges map[string]ExchangeConfig `mapstructure:"exchanges" json:"exchanges"`

	Server ServerConfig `mapstructure:"server" json:"server"`
	Notify NotifyConfig `mapstructure:"notify" json:"notify"`
}

// ExchangeConfig defines settings for a single exchange. API credentials
// are only needed for exchanges whose client authenticates (luno); they are
// excluded from JSON so the settings endpoint never echoes them.
type ExchangeConfig struct {
	Enabled         bool    `mapstructure:"enabled" json:"enabled"`
	TakerFeePercent float64 `mapstructure:"taker_fee_percent" json:"taker_fee_percent"`
	ApiKeyId        string  `mapstructure:"api_key_id" json:"-"`
	ApiKeySecret    string  `mapstructure:"api_key_secret" json:"-"`
}

// ServerConfig defines the dashboard HTTP server settings.
type ServerConfig struct {
	Port int `mapstructure:"port" json:"port"`
}

// NotifyConfig defines the alert delivery channels. Credentials come from the
// environment and are never echoed back through the settings API.
type NotifyConfig struct {
	Telegram TelegramConfig `mapstructure:"telegram" json:"telegram"`
	Discord  DiscordConfig  `mapstructure:"discord" json:"discord"`
}

type TelegramConfig struct {
	Enabled  bool   `mapstructure:"enabled" json:"enabled"`
	BotToken string `mapstructure:"bot_token" json:"-"`
	ChatID   string `mapstructure:"chat_id" json:"-"`
}

type DiscordConfig struct {
	Enabled    bool   `mapstructure:"enabled" json:"enabled"`
	WebhookURL string `mapstructure:"webhook_url" json:"-"`
}

// MinPollInterval is the floor for the polling interval; anything shorter
// would hammer public ticker endpoints.
const MinPollInterval = 10 * time.Second

// EnabledExchanges returns the ids of all enabled exchanges, sorted so that
// cycles enumerate exchanges in a stable order.
func (c Config) EnabledExchanges() []string {
	ids := make([]string, 0, len(c.Exchanges))
	for id, ex := range c.Exchanges {
		if ex.Enabled {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// TakerFeePercent returns the taker fee for an exchange: the per-exchange
// override when one is configured, else the global default.
func (c Config) TakerFeePercent(exchange string) float64 {
	if ex, ok := c.Exchanges[exchange]; ok && ex.TakerFeePercent > 0 {
		return ex.TakerFeePercent
	}
	return c.DefaultTakerFeePercent
}

// Validate rejects settings the watcher cannot safely run with. A config
// with no enabled exchanges or no assets still validates; that state only
// refuses cycles, it is not a load error.
func (c Config) Validate() error {
	if c.PollInterval < MinPollInterval {
		return fmt.Errorf("poll_interval %s is below the minimum %s", c.PollInterval, MinPollInterval)
	}
	if c.RequestTimeout <= 0 {
		return fmt.Errorf("request_timeout must be positive, got %s", c.RequestTimeout)
	}
	if c.ProfitThresholdPercent < 0 {
		return fmt.Errorf("profit_threshold_percent must not be negative, got %f", c.ProfitThresholdPercent)
	}
	if c.TransferFee < 0 {
		return fmt.Errorf("transfer_fee must not be negative, got %f", c.TransferFee)
	}
	if c.DefaultTakerFeePercent < 0 {
		return fmt.Errorf("default_taker_fee_percent must not be negative, got %f", c.DefaultTakerFeePercent)
	}
	if c.HistoryFile == "" {
		return fmt.Errorf("history_file must not be empty")
	}
	return nil
}

func (c Config) clone() Config {
	out := c
	out.Assets = append([]string(nil), c.Assets...)
	out.QuotePreferences = append([]string(nil), c.QuotePreferences...)
	out.Exchanges = make(map[string]ExchangeConfig, len(c.Exchanges))
	for id, ex := range c.Exchanges {
		out.Exchanges[id] = ex
	}
	return out
}

// Store holds the current configuration and hands out consistent snapshots.
// The polling loop reads a snapshot at the start of every cycle, so edits
// apply on the next cycle, never mid-cycle.
type Store struct {
	mu  sync.RWMutex
	cfg Config
	v   *viper.Viper
}

// Load reads configuration from config.yaml in the given path (optional; all
// keys have defaults) plus the environment, and returns a Store.
func Load(path string) (*Store, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(path)

	setDefaults(v)

	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Secrets are provided as plain environment variables (.env works via
	// godotenv autoload in main).
	bindings := map[string]string{
		"notify.telegram.bot_token":     "TELEGRAM_BOT_TOKEN",
		"notify.telegram.chat_id":       "TELEGRAM_CHAT_ID",
		"notify.discord.webhook_url":    "DISCORD_WEBHOOK_URL",
		"exchanges.luno.api_key_id":     "LUNO_API_KEY_ID",
		"exchanges.luno.api_key_secret": "LUNO_API_KEY_SECRET",
		"exchanges.hata.api_key_id":     "HATA_API_KEY_ID",
		"exchanges.hata.api_key_secret": "HATA_API_KEY_SECRET",
	}
	for key, env := range bindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("bind %s: %w", env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &Store{cfg: cfg, v: v}, nil
}

// Current returns a snapshot safe to hold for the duration of a cycle.
func (s *Store) Current() Config {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cfg.clone()
}

// Apply mutates a copy of the current settings and installs it if the result
// validates. Used by the settings API between cycles.
func (s *Store) Apply(mutate func(*Config)) (Config, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.cfg.clone()
	mutate(&next)
	if err := next.Validate(); err != nil {
		return Config{}, err
	}
	s.cfg = next
	return next.clone(), nil
}

// WatchFile re-reads the config file whenever it changes on disk. Invalid
// edits are logged and skipped; the previous settings stay in effect.
func (s *Store) WatchFile(log *zap.Logger) {
	s.v.OnConfigChange(func(e fsnotify.Event) {
		var next Config
		if err := s.v.Unmarshal(&next); err != nil {
			log.Error("Config reload failed: " + err.Error())
			return
		}
		if err := next.Validate(); err != nil {
			log.Error("Config reload rejected: " + err.Error())
			return
		}
		s.mu.Lock()
		s.cfg = next
		s.mu.Unlock()
		log.Info("Config reloaded from " + e.Name)
	})
	s.v.WatchConfig()
}

// Default per-exchange taker fees in percent. Placeholders matching each
// exchange's published spot taker tier; operators override per deployment.
var defaultTakerFees = map[string]float64{
	"binance":     0.1,
	"coinbasepro": 0.5,
	"kraken":      0.26,
	"kucoin":      0.1,
	"okx":         0.1,
	"gate":        0.2,
	"bitstamp":    0.5,
	"huobipro":    0.2,
	"bybit":       0.1,
	"luno":        0.1,
	"hata":        0.25,
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log_level", "info")

	v.SetDefault("assets", []string{"ETH"})
	v.SetDefault("quote_preferences", []string{"USDT", "USD", "BTC"})

	v.SetDefault("poll_interval", "60s")
	v.SetDefault("request_timeout", "10s")

	v.SetDefault("profit_threshold_percent", 0.5)
	v.SetDefault("transfer_fee", 5.0)
	v.SetDefault("default_taker_fee_percent", 0.2)

	v.SetDefault("history_file", "arbitrage_history.csv")

	for id, fee := range defaultTakerFees {
		v.SetDefault("exchanges."+id+".enabled", true)
		v.SetDefault("exchanges."+id+".taker_fee_percent", fee)
	}
	// Hata's order book endpoint needs API credentials, so it only joins
	// cycles when an operator enables it explicitly.
	v.SetDefault("exchanges.hata.enabled", false)

	v.SetDefault("server.port", 8080)

	v.SetDefault("notify.telegram.enabled", true)
	v.SetDefault("notify.discord.enabled", false)
}
