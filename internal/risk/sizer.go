package risk

import (
	"math"

	"github.com/shopspring/decimal"

	"perpbot/internal/config"
	"perpbot/internal/market"
	"perpbot/internal/strategy"
)

var stopDistEps = decimal.NewFromFloat(1e-8)

// SizingResult 是风险仓位计算的输出。Quantity 为 0 表示本轮不开仓
// （参数退化或波动率不可用），不是错误。
type SizingResult struct {
	Quantity  float64
	StopPrice float64
}

// CalcQtyByRisk 把入场价、方向和配置换算成下单数量与止损价。
// 两种互斥的止损距离模式：
//   - percent：止损距离 = 入场价 * stop_percent
//   - atr（缺省）：止损距离 = atr_mult * ATR(atr_period)
//
// 数量满足 线性风险平价：止损触发的亏损 ≈ equity * risk_per_trade，
// 与波动率环境无关。
func CalcQtyByRisk(candles []market.Candle, cfg *config.Config, entryPrice float64, side Side, equity float64) SizingResult {
	sc := cfg.Strategy
	entry := decimal.NewFromFloat(entryPrice)

	var stopDist decimal.Decimal
	switch sc.StopTPMode {
	case "percent":
		if sc.StopPercent <= 0 {
			return SizingResult{Quantity: 0, StopPrice: entryPrice}
		}
		stopDist = entry.Mul(decimal.NewFromFloat(sc.StopPercent))
	default: // atr
		atr := strategy.ATRLast(candles, sc.ATRPeriod)
		if math.IsNaN(atr) || atr <= 0 {
			return SizingResult{Quantity: 0, StopPrice: entryPrice}
		}
		stopDist = decimal.NewFromFloat(sc.ATRMult).Mul(decimal.NewFromFloat(atr))
	}
	if stopDist.Sign() <= 0 {
		return SizingResult{Quantity: 0, StopPrice: entryPrice}
	}

	var stop decimal.Decimal
	if side == SideLong {
		stop = entry.Sub(stopDist)
	} else {
		stop = entry.Add(stopDist)
	}

	divisor := stopDist
	if divisor.Cmp(stopDistEps) < 0 {
		divisor = stopDistEps
	}
	riskBudget := decimal.NewFromFloat(equity).Mul(decimal.NewFromFloat(cfg.Risk.RiskPerTrade))
	qty := riskBudget.Div(divisor)
	if qty.Sign() < 0 {
		qty = decimal.Zero
	}

	qtyF, _ := qty.Float64()
	stopF, _ := stop.Float64()
	return SizingResult{Quantity: qtyF, StopPrice: stopF}
}
