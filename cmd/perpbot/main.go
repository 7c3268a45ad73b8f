package main

import (
	"context"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"perpbot/internal/config"
	"perpbot/internal/gateway/binance"
	"perpbot/internal/gateway/notifier"
	"perpbot/internal/journal"
	"perpbot/internal/logger"
	"perpbot/internal/paper"
	"perpbot/internal/risk"
	"perpbot/internal/strategy"
	"perpbot/internal/trader"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfgPath := os.Getenv("PERPBOT_CONFIG")
	if cfgPath == "" {
		cfgPath = "configs/config.yaml"
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("读取配置失败: %v", err)
	}
	// API 密钥允许从环境变量兜底，只在进程入口读取一次。
	if cfg.Exchange.APIKey == "" {
		cfg.Exchange.APIKey = os.Getenv("BINANCE_KEY")
	}
	if cfg.Exchange.APISecret == "" {
		cfg.Exchange.APISecret = os.Getenv("BINANCE_SECRET")
	}

	logFile, err := setupLogOutput(cfg.App.LogPath)
	if err != nil {
		log.Fatalf("初始化日志文件失败: %v", err)
	}
	if logFile != nil {
		defer logFile.Close()
	}
	logger.SetLevel(cfg.App.LogLevel)
	logger.Infof("✓ 配置加载成功 symbol=%s live=%v testnet=%v", cfg.Exchange.Symbol, cfg.Mode.Live, cfg.Mode.Testnet)

	gen, err := strategy.Lookup(cfg.Strategy.Name)
	if err != nil {
		log.Fatalf("策略加载失败: %v", err)
	}

	client := binance.New(binance.Config{
		APIKey:    cfg.Exchange.APIKey,
		APISecret: cfg.Exchange.APISecret,
		Testnet:   cfg.Mode.Testnet,
		PriceTick: cfg.Exchange.PriceTick,
	})
	var broker trader.Broker
	if cfg.Mode.Live {
		// 模拟盘不碰任何私有接口。
		client.SetupLeverageAndMargin(ctx, cfg.Exchange.Symbol, cfg.Exchange.Leverage, cfg.Exchange.MarginMode)
		broker = client
	}

	store := risk.NewStore(cfg.Storage.StateFile)
	sim := paper.NewSimulator(store, cfg.Exchange.FeeRate)

	var trades *journal.Store
	if cfg.Storage.JournalFile != "" {
		trades, err = journal.Open(cfg.Storage.JournalFile)
		if err != nil {
			log.Fatalf("交易日志库打开失败: %v", err)
		}
		defer trades.Close()
		if count, pnl, err := trades.Summary(ctx); err == nil {
			logger.Infof("journal: 历史记录 %d 条，累计净盈亏 %.2f", count, pnl)
		}
	}

	loop, err := trader.NewLoop(cfg, client, broker, gen, store, sim, trades, buildNotifier(cfg))
	if err != nil {
		log.Fatalf("初始化交易循环失败: %v", err)
	}
	if err := loop.Run(ctx); err != nil {
		log.Fatalf("运行失败: %v", err)
	}
	logger.Infof("loop: 已退出")
}

func buildNotifier(cfg *config.Config) notifier.TextNotifier {
	var out notifier.Fanout
	if cfg.Notify.Telegram.Enabled {
		out = append(out, notifier.NewTelegram(cfg.Notify.Telegram.BotToken, cfg.Notify.Telegram.ChatID))
	}
	if strings.TrimSpace(cfg.Notify.DiscordWebhook) != "" {
		out = append(out, notifier.NewDiscord(cfg.Notify.DiscordWebhook))
	}
	if len(out) == 0 {
		out = append(out, notifier.Console{})
	}
	return out
}

func setupLogOutput(path string) (*os.File, error) {
	trimmed := strings.TrimSpace(path)
	if trimmed == "" {
		return nil, nil
	}
	dir := filepath.Dir(trimmed)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	mw := io.MultiWriter(os.Stdout, file)
	log.SetOutput(mw)
	logger.SetOutput(mw)
	return file, nil
}
