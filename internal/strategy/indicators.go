package strategy

import (
	"math"

	talib "github.com/markcheno/go-talib"

	"perpbot/internal/market"
)

// 指标计算统一走 go-talib。历史不足时返回 NaN，由调用方按
// “无信号/不下单”处理，不视为错误。

// EMALast 返回收盘价 EMA 的最新值。
func EMALast(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period {
		return math.NaN()
	}
	return lastOf(talib.Ema(closes, period))
}

// EMAPrev 返回倒数第二根的 EMA 值，用于判断交叉。
func EMAPrev(closes []float64, period int) float64 {
	if period <= 0 || len(closes) < period+1 {
		return math.NaN()
	}
	series := talib.Ema(closes, period)
	return series[len(series)-2]
}

// RSILast 返回 Wilder RSI 的最新值。
func RSILast(closes []float64, period int) float64 {
	if period <= 0 || len(closes) <= period {
		return math.NaN()
	}
	return lastOf(talib.Rsi(closes, period))
}

// ATRLast 基于真实波幅均值返回最新 ATR。
func ATRLast(candles []market.Candle, period int) float64 {
	if period <= 0 || len(candles) <= period {
		return math.NaN()
	}
	series := talib.Atr(market.Highs(candles), market.Lows(candles), market.Closes(candles), period)
	return lastOf(series)
}

func lastOf(series []float64) float64 {
	if len(series) == 0 {
		return math.NaN()
	}
	return series[len(series)-1]
}
