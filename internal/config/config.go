package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
	DB        DBConfig        `mapstructure:"db"`
	Cron      CronConfig      `mapstructure:"cron"`
	Gamma     GammaConfig     `mapstructure:"gamma"`
	ClobREST  ClobRESTConfig  `mapstructure:"clob_rest"`
	ClobAuth  ClobAuthConfig  `mapstructure:"clob_auth"`
	ClobWS    ClobWSConfig    `mapstructure:"clob_ws"`
	DataAPI   DataAPIConfig   `mapstructure:"data_api"`
	AI        AIConfig        `mapstructure:"ai"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scanner   ScannerConfig   `mapstructure:"scanner"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	CopyTrade CopyTradeConfig `mapstructure:"copy_trade"`
}

type AppConfig struct {
	Env string `mapstructure:"env"`
}

type ServerConfig struct {
	HTTPAddr string `mapstructure:"http_addr"`
}

type LogConfig struct {
	Level             string `mapstructure:"level"`
	Encoding          string `mapstructure:"encoding"`
	Development       bool   `mapstructure:"development"`
	Sampling          bool   `mapstructure:"sampling"`
	DisableCaller     bool   `mapstructure:"disable_caller"`
	DisableStacktrace bool   `mapstructure:"disable_stacktrace"`
}

type DBConfig struct {
	DSN             string        `mapstructure:"dsn"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
	Timezone        string        `mapstructure:"timezone"`
}

type CronConfig struct {
	Enabled      bool   `mapstructure:"enabled"`
	Scan         string `mapstructure:"scan"`
	CacheSweep   string `mapstructure:"cache_sweep"`
	HistorySweep string `mapstructure:"history_sweep"`
}

type GammaConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type ClobRESTConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// ClobAuthConfig carries the L2 API credentials used for order placement
// and balance queries. Empty values leave the client read-only.
type ClobAuthConfig struct {
	APIKey        string `mapstructure:"api_key"`
	APISecret     string `mapstructure:"api_secret"`
	APIPassphrase string `mapstructure:"api_passphrase"`
	Address       string `mapstructure:"address"`
}

type ClobWSConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	URL             string        `mapstructure:"url"`
	RefreshInterval time.Duration `mapstructure:"refresh_interval"`
	MaxAssets       int           `mapstructure:"max_assets"`
}

type DataAPIConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

type AIConfig struct {
	APIKey               string        `mapstructure:"api_key"`
	Model                string        `mapstructure:"model"`
	ResearchModel        string        `mapstructure:"research_model"`
	MaxTokens            int           `mapstructure:"max_tokens"`
	RequestsPerMinute    int           `mapstructure:"requests_per_minute"`
	MinRequestDelay      time.Duration `mapstructure:"min_request_delay"`
	AnalysisConcurrency  int           `mapstructure:"analysis_concurrency"`
	ResearchConcurrency  int           `mapstructure:"research_concurrency"`
	FactsConcurrency     int           `mapstructure:"facts_concurrency"`
	GuardResetAfter      time.Duration `mapstructure:"guard_reset_after"`
	WebSearchMaxUses     int           `mapstructure:"web_search_max_uses"`
	ResearchWebSearchMax int           `mapstructure:"research_web_search_max"`
}

type CacheConfig struct {
	Dir string        `mapstructure:"dir"`
	TTL time.Duration `mapstructure:"ttl"`
}

type ScannerConfig struct {
	RiskProfile        string  `mapstructure:"risk_profile"`
	MinProfitPct       float64 `mapstructure:"min_profit_pct"`
	MaxHoursToExpiry   float64 `mapstructure:"max_hours_to_expiry"`
	MinHoursToExpiry   float64 `mapstructure:"min_hours_to_expiry"`
	MaxMarkets         int     `mapstructure:"max_markets"`
	MaxPositionPct     float64 `mapstructure:"max_position_pct"`
	TotalAllocationPct float64 `mapstructure:"total_allocation_pct"`
	SlippageBuffer     float64 `mapstructure:"slippage_buffer"`
	MaxAIAnalyses      int     `mapstructure:"max_ai_analyses"`
	DeepResearchTopN   int     `mapstructure:"deep_research_top_n"`
	EnableAI           bool    `mapstructure:"enable_ai"`
	EnableDeepResearch bool    `mapstructure:"enable_deep_research"`
	EnableFacts        bool    `mapstructure:"enable_facts"`
	RetentionHours     int     `mapstructure:"retention_hours"`
}

type MonitorConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	UseStream bool          `mapstructure:"use_stream"`
}

type CopyTradeConfig struct {
	Interval         time.Duration `mapstructure:"interval"`
	ActivityLimit    int           `mapstructure:"activity_limit"`
	DefaultMaxAmount float64       `mapstructure:"default_max_amount"`
	DefaultExtraPct  float64       `mapstructure:"default_extra_pct"`
}

func Load(path string, envOnly bool) (Config, error) {
	v := viper.New()
	v.SetEnvPrefix("SCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	v.SetDefault("app.env", "dev")
	v.SetDefault("server.http_addr", ":8080")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.encoding", "console")
	v.SetDefault("log.development", true)
	v.SetDefault("log.sampling", false)
	v.SetDefault("log.disable_caller", false)
	v.SetDefault("log.disable_stacktrace", false)
	v.SetDefault("db.max_open_conns", 20)
	v.SetDefault("db.max_idle_conns", 5)
	v.SetDefault("db.conn_max_lifetime", "30m")
	v.SetDefault("db.conn_max_idle_time", "5m")
	v.SetDefault("db.timezone", "UTC")
	v.SetDefault("cron.enabled", true)
	v.SetDefault("cron.scan", "")
	v.SetDefault("cron.cache_sweep", "@every 1h")
	v.SetDefault("cron.history_sweep", "@every 6h")
	v.SetDefault("gamma.base_url", "https://gamma-api.polymarket.com")
	v.SetDefault("gamma.timeout", "15s")
	v.SetDefault("clob_rest.base_url", "https://clob.polymarket.com")
	v.SetDefault("clob_rest.timeout", "15s")
	v.SetDefault("clob_ws.enabled", false)
	v.SetDefault("clob_ws.url", "wss://ws-subscriptions-clob.polymarket.com/ws/market")
	v.SetDefault("clob_ws.refresh_interval", "30s")
	v.SetDefault("clob_ws.max_assets", 200)
	v.SetDefault("data_api.base_url", "https://data-api.polymarket.com")
	v.SetDefault("data_api.timeout", "15s")
	v.SetDefault("ai.model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.research_model", "claude-sonnet-4-20250514")
	v.SetDefault("ai.max_tokens", 2000)
	v.SetDefault("ai.requests_per_minute", 8)
	v.SetDefault("ai.min_request_delay", "3s")
	v.SetDefault("ai.analysis_concurrency", 2)
	v.SetDefault("ai.research_concurrency", 1)
	v.SetDefault("ai.facts_concurrency", 1)
	v.SetDefault("ai.guard_reset_after", "5m")
	v.SetDefault("ai.web_search_max_uses", 3)
	v.SetDefault("ai.research_web_search_max", 8)
	v.SetDefault("cache.dir", ".scout_cache")
	v.SetDefault("cache.ttl", "2h")
	v.SetDefault("scanner.risk_profile", "moderate")
	v.SetDefault("scanner.min_profit_pct", 0.02)
	v.SetDefault("scanner.max_hours_to_expiry", 48)
	v.SetDefault("scanner.min_hours_to_expiry", 0.5)
	v.SetDefault("scanner.max_markets", 50)
	v.SetDefault("scanner.max_position_pct", 0.10)
	v.SetDefault("scanner.total_allocation_pct", 0.75)
	v.SetDefault("scanner.slippage_buffer", 0.01)
	v.SetDefault("scanner.max_ai_analyses", 10)
	v.SetDefault("scanner.deep_research_top_n", 10)
	v.SetDefault("scanner.enable_ai", true)
	v.SetDefault("scanner.enable_deep_research", false)
	v.SetDefault("scanner.enable_facts", false)
	v.SetDefault("scanner.retention_hours", 48)
	v.SetDefault("monitor.interval", "60s")
	v.SetDefault("monitor.use_stream", false)
	v.SetDefault("copy_trade.interval", "60s")
	v.SetDefault("copy_trade.activity_limit", 50)
	v.SetDefault("copy_trade.default_max_amount", 5.0)
	v.SetDefault("copy_trade.default_extra_pct", 0.10)

	if !envOnly {
		if err := v.ReadInConfig(); err != nil {
			return Config{}, err
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}
