package config

func (c *Config) applyDefaults() {
	if c.App.LogLevel == "" {
		c.App.LogLevel = "info"
	}
	if c.Exchange.MarginMode == "" {
		c.Exchange.MarginMode = "ISOLATED"
	}
	if c.Exchange.Leverage <= 0 {
		c.Exchange.Leverage = 1
	}
	if c.Exchange.FeeRate <= 0 {
		c.Exchange.FeeRate = 0.0005
	}
	if c.Strategy.Name == "" {
		c.Strategy.Name = "ema_cross"
	}
	if c.Strategy.BaseTF == "" {
		c.Strategy.BaseTF = "15m"
	}
	if c.Strategy.HTF == "" {
		c.Strategy.HTF = "1h"
	}
	if c.Strategy.EMAFast <= 0 {
		c.Strategy.EMAFast = 12
	}
	if c.Strategy.EMASlow <= 0 {
		c.Strategy.EMASlow = 26
	}
	if len(c.Strategy.RSILongRange) != 2 {
		c.Strategy.RSILongRange = []float64{50, 70}
	}
	if len(c.Strategy.RSIShortRange) != 2 {
		c.Strategy.RSIShortRange = []float64{30, 50}
	}
	if c.Strategy.StopTPMode == "" {
		c.Strategy.StopTPMode = "atr"
	}
	if c.Strategy.ATRPeriod <= 0 {
		c.Strategy.ATRPeriod = 14
	}
	if c.Strategy.ATRMult <= 0 {
		c.Strategy.ATRMult = 1.5
	}
	if c.Strategy.TakeProfitPercent <= 0 {
		c.Strategy.TakeProfitPercent = 0.04
	}
	if c.Risk.RiskPerTrade <= 0 {
		c.Risk.RiskPerTrade = 0.01
	}
	if c.Risk.MaxDailyDD == 0 {
		c.Risk.MaxDailyDD = -0.03
	}
	if c.Runtime.KSTTz == "" {
		c.Runtime.KSTTz = "Asia/Seoul"
	}
	if c.Storage.StateFile == "" {
		c.Storage.StateFile = "data/state.json"
	}
}
