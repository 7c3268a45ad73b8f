package scheduler

import (
	"time"

	"perpbot/internal/market"
)

const DefaultKlineGrace = 10 * time.Second

// DropUnclosedKline drops the last candle if it is still in-progress.
// Binance style: the last kline may be the current, not-yet-closed candle.
//
// Candle times are expected to be in milliseconds since epoch.
func DropUnclosedKline(candles []market.Candle, interval time.Duration) []market.Candle {
	return dropUnclosedKlineAt(candles, interval, time.Now().UTC(), DefaultKlineGrace)
}

func dropUnclosedKlineAt(candles []market.Candle, interval time.Duration, now time.Time, grace time.Duration) []market.Candle {
	if len(candles) == 0 {
		return candles
	}
	if interval <= 0 {
		return candles
	}
	if grace < 0 {
		grace = 0
	}
	last := candles[len(candles)-1]
	if last.OpenTime <= 0 {
		return candles
	}
	closeTimeMs := last.OpenTime + interval.Milliseconds()
	cutoffMs := closeTimeMs + grace.Milliseconds()
	if now.UnixMilli() < cutoffMs {
		return candles[:len(candles)-1]
	}
	return candles
}
