package binance

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2/futures"

	"perpbot/internal/market"
	"perpbot/internal/scheduler"
)

const maxHistoryLimit = 1500

// Client 基于 go-binance SDK 同时充当行情源（market.Source）与
// 下单通道（trader.Broker）。
type Client struct {
	cfg    Config
	client *futures.Client
}

func New(cfg Config) *Client {
	final := cfg.withDefaults()
	futures.UseTestnet = final.Testnet
	client := futures.NewClient(final.APIKey, final.APISecret)
	client.HTTPClient = &http.Client{Timeout: final.HTTPTimeout}
	return &Client{cfg: final, client: client}
}

// FetchCandles 拉取历史 K 线，未收盘的最后一根会被剔除。
func (c *Client) FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]market.Candle, error) {
	if limit <= 0 {
		limit = 100
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}
	symbol = strings.TrimSpace(symbol)
	if symbol == "" {
		return nil, fmt.Errorf("symbol is required")
	}
	interval = strings.ToLower(strings.TrimSpace(interval))
	if interval == "" {
		return nil, fmt.Errorf("interval is required")
	}
	svc := c.client.NewKlinesService().Symbol(symbol).Interval(interval).Limit(limit)
	kls, err := svc.Do(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]market.Candle, 0, len(kls))
	for _, kl := range kls {
		if kl == nil {
			continue
		}
		out = append(out, market.Candle{
			OpenTime:  kl.OpenTime,
			CloseTime: kl.CloseTime,
			Open:      parseFloat(kl.Open),
			High:      parseFloat(kl.High),
			Low:       parseFloat(kl.Low),
			Close:     parseFloat(kl.Close),
			Volume:    parseFloat(kl.Volume),
		})
	}
	if dur, ok := scheduler.ParseIntervalDuration(interval); ok {
		out = scheduler.DropUnclosedKline(out, dur)
	}
	return out, nil
}

func parseFloat(v string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(v), 64)
	return f
}
