package strategy

import (
	"fmt"
	"math"
	"time"

	"perpbot/internal/config"
	"perpbot/internal/market"
)

const htfTrendPeriod = 50

func init() {
	Register("ema_cross", func() Generator { return &EMACross{} })
}

// EMACross 是缺省策略：基础周期 EMA 金叉/死叉，叠加 RSI 区间、
// 高周期 EMA50 趋势过滤和当日高低点突破确认。
type EMACross struct{}

func (s *EMACross) Name() string { return "ema_cross" }

func (s *EMACross) Generate(base, htf []market.Candle, cfg *config.Config) (Signal, error) {
	sc := cfg.Strategy
	need := sc.EMASlow + 1
	if len(base) < need || len(base) < 16 {
		return SignalNone, fmt.Errorf("ema_cross: insufficient base candles (%d)", len(base))
	}
	if len(htf) < htfTrendPeriod {
		return SignalNone, fmt.Errorf("ema_cross: insufficient htf candles (%d)", len(htf))
	}

	closes := market.Closes(base)
	lastClose := closes[len(closes)-1]

	emaFastLast := EMALast(closes, sc.EMAFast)
	emaSlowLast := EMALast(closes, sc.EMASlow)
	emaFastPrev := EMAPrev(closes, sc.EMAFast)
	emaSlowPrev := EMAPrev(closes, sc.EMASlow)
	rsi := RSILast(closes, 14)
	htfTrend := EMALast(market.Closes(htf), htfTrendPeriod)
	if anyNaN(emaFastLast, emaSlowLast, emaFastPrev, emaSlowPrev, rsi, htfTrend) {
		return SignalNone, fmt.Errorf("ema_cross: indicators not warmed up")
	}

	crossUp := emaFastPrev <= emaSlowPrev && emaFastLast > emaSlowLast
	crossDn := emaFastPrev >= emaSlowPrev && emaFastLast < emaSlowLast

	longOK := lastClose > htfTrend && rsi >= sc.RSILongRange[0] && rsi <= sc.RSILongRange[1]
	shortOK := lastClose < htfTrend && rsi >= sc.RSIShortRange[0] && rsi <= sc.RSIShortRange[1]

	loc, err := time.LoadLocation(cfg.Runtime.KSTTz)
	if err != nil {
		return SignalNone, fmt.Errorf("ema_cross: load tz: %w", err)
	}
	// 当日高低点不含最新一根，否则收盘价永远突破不了自身最高价。
	dayHigh, dayLow, ok := intradayHighLow(base[:len(base)-1], base[len(base)-1], loc)

	if crossUp && longOK && ok && lastClose > dayHigh {
		return SignalLong, nil
	}
	if crossDn && shortOK && ok && lastClose < dayLow {
		return SignalShort, nil
	}
	return SignalNone, nil
}

// intradayHighLow 取与 ref 同一交易日（loc 时区日历日）K 线的最高/最低价。
func intradayHighLow(candles []market.Candle, ref market.Candle, loc *time.Location) (high, low float64, ok bool) {
	refDay := ref.OpenAt().In(loc)
	y, m, d := refDay.Date()
	high = math.Inf(-1)
	low = math.Inf(1)
	for _, c := range candles {
		cy, cm, cd := c.OpenAt().In(loc).Date()
		if cy != y || cm != m || cd != d {
			continue
		}
		if c.High > high {
			high = c.High
		}
		if c.Low < low {
			low = c.Low
		}
		ok = true
	}
	return high, low, ok
}

func anyNaN(vals ...float64) bool {
	for _, v := range vals {
		if math.IsNaN(v) {
			return true
		}
	}
	return false
}
