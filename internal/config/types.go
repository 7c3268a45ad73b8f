package config

// Config 是 perpbot 的主配置载体，进程启动时加载一次，之后只读。
type Config struct {
	App      AppConfig      `yaml:"app"`
	Mode     ModeConfig     `yaml:"mode"`
	Exchange ExchangeConfig `yaml:"exchange"`
	Strategy StrategyConfig `yaml:"strategy"`
	Risk     RiskConfig     `yaml:"risk"`
	Runtime  RuntimeConfig  `yaml:"runtime"`
	Storage  StorageConfig  `yaml:"storage"`
	Notify   NotifyConfig   `yaml:"notify"`
}

type AppConfig struct {
	LogLevel string `yaml:"log_level"`
	LogPath  string `yaml:"log_path"`
}

// ModeConfig 控制实盘/模拟与测试网开关。
type ModeConfig struct {
	Live    bool `yaml:"live"`
	Testnet bool `yaml:"testnet"`
}

type ExchangeConfig struct {
	Symbol     string  `yaml:"symbol"`
	Leverage   int     `yaml:"leverage"`
	MarginMode string  `yaml:"margin_mode"` // "ISOLATED" | "CROSSED"
	FeeRate    float64 `yaml:"fee_rate"`
	PriceTick  float64 `yaml:"price_tick"` // 下单前止损价按此精度取整；0 表示不取整
	APIKey     string  `yaml:"api_key"`
	APISecret  string  `yaml:"api_secret"`
}

type StrategyConfig struct {
	Name               string    `yaml:"strategy_loader"` // 注册表中的策略名
	BaseTF             string    `yaml:"base_tf"`
	HTF                string    `yaml:"htf"`
	EMAFast            int       `yaml:"ema_fast"`
	EMASlow            int       `yaml:"ema_slow"`
	RSILongRange       []float64 `yaml:"rsi_long_range"`
	RSIShortRange      []float64 `yaml:"rsi_short_range"`
	StopTPMode         string    `yaml:"stop_tp_mode"` // "atr" | "percent"
	StopPercent        float64   `yaml:"stop_percent"`
	ATRPeriod          int       `yaml:"atr_period"`
	ATRMult            float64   `yaml:"atr_mult"`
	TakeProfitPercent  float64   `yaml:"take_profit_percent"`
	TradeWindowKST     []string  `yaml:"trade_window_kst"` // ["HH:MM","HH:MM"]，空则不限
	AvoidFundingMinute int       `yaml:"avoid_funding_minutes"`
}

type RiskConfig struct {
	RiskPerTrade float64 `yaml:"risk_per_trade"` // 单笔风险占比，0.01 = 1%
	MaxDailyDD   float64 `yaml:"max_daily_dd"`   // 负数，-0.03 表示日亏 3% 停止
}

type RuntimeConfig struct {
	AlignToCandle bool   `yaml:"align_to_candle"`
	KSTTz         string `yaml:"kst_tz"`
}

type StorageConfig struct {
	StateFile   string `yaml:"state_file"`
	JournalFile string `yaml:"journal_file"` // sqlite 成交日志；空则不记录
}

type NotifyConfig struct {
	Telegram       TelegramConfig `yaml:"telegram"`
	DiscordWebhook string         `yaml:"discord_webhook"`
}

type TelegramConfig struct {
	Enabled  bool   `yaml:"enabled"`
	BotToken string `yaml:"bot_token"`
	ChatID   string `yaml:"chat_id"`
}
