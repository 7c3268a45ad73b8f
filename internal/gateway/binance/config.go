package binance

import (
	"strings"
	"time"
)

type Config struct {
	APIKey    string
	APISecret string
	Testnet   bool

	HTTPTimeout time.Duration

	// PriceTick 下单前止损/触发价按该精度取整；0 表示原样提交。
	PriceTick float64
}

func (c *Config) withDefaults() Config {
	out := *c
	out.APIKey = strings.TrimSpace(out.APIKey)
	out.APISecret = strings.TrimSpace(out.APISecret)
	if out.HTTPTimeout <= 0 {
		out.HTTPTimeout = 15 * time.Second
	}
	return out
}
