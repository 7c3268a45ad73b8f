package config

import (
	"fmt"
	"strings"
	"time"
)

// validate 对配置进行基础校验。
func validate(c *Config) error {
	if err := c.Exchange.validate(); err != nil {
		return err
	}
	if err := c.Strategy.validate(); err != nil {
		return err
	}
	if err := c.Risk.validate(); err != nil {
		return err
	}
	if err := c.Runtime.validate(); err != nil {
		return err
	}
	return nil
}

func (e *ExchangeConfig) validate() error {
	if strings.TrimSpace(e.Symbol) == "" {
		return fmt.Errorf("exchange.symbol is required")
	}
	if e.Leverage < 1 || e.Leverage > 125 {
		return fmt.Errorf("exchange.leverage must be in [1,125], got %d", e.Leverage)
	}
	switch strings.ToUpper(e.MarginMode) {
	case "ISOLATED", "CROSSED":
	default:
		return fmt.Errorf("exchange.margin_mode must be ISOLATED or CROSSED, got %q", e.MarginMode)
	}
	return nil
}

func (s *StrategyConfig) validate() error {
	switch s.StopTPMode {
	case "atr", "percent":
	default:
		return fmt.Errorf("strategy.stop_tp_mode must be atr or percent, got %q", s.StopTPMode)
	}
	if s.StopTPMode == "percent" && s.StopPercent < 0 {
		return fmt.Errorf("strategy.stop_percent must be >= 0")
	}
	if s.EMAFast >= s.EMASlow {
		return fmt.Errorf("strategy.ema_fast (%d) must be less than ema_slow (%d)", s.EMAFast, s.EMASlow)
	}
	if len(s.TradeWindowKST) != 0 && len(s.TradeWindowKST) != 2 {
		return fmt.Errorf("strategy.trade_window_kst expects [start, end]")
	}
	for _, hm := range s.TradeWindowKST {
		if _, err := time.Parse("15:04", strings.TrimSpace(hm)); err != nil {
			return fmt.Errorf("strategy.trade_window_kst entry %q is not HH:MM", hm)
		}
	}
	if s.AvoidFundingMinute < 0 {
		return fmt.Errorf("strategy.avoid_funding_minutes must be >= 0")
	}
	return nil
}

func (r *RiskConfig) validate() error {
	if r.RiskPerTrade <= 0 || r.RiskPerTrade > 0.5 {
		return fmt.Errorf("risk.risk_per_trade must be in (0, 0.5], got %v", r.RiskPerTrade)
	}
	if r.MaxDailyDD >= 0 {
		return fmt.Errorf("risk.max_daily_dd must be negative (e.g. -0.03), got %v", r.MaxDailyDD)
	}
	return nil
}

func (r *RuntimeConfig) validate() error {
	if _, err := time.LoadLocation(r.KSTTz); err != nil {
		return fmt.Errorf("runtime.kst_tz %q is not a valid timezone: %w", r.KSTTz, err)
	}
	return nil
}
