package strategy

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpbot/internal/config"
	"perpbot/internal/market"
)

func testConfig() *config.Config {
	return &config.Config{
		Strategy: config.StrategyConfig{
			Name:          "ema_cross",
			EMAFast:       12,
			EMASlow:       26,
			RSILongRange:  []float64{0, 100},
			RSIShortRange: []float64{0, 100},
		},
		Runtime: config.RuntimeConfig{KSTTz: "Asia/Seoul"},
	}
}

// candleSeries 从 2025-03-10 00:00 KST 起按 15 分钟一根生成 K 线，
// 全部落在同一个首尔交易日内。
func candleSeries(closes []float64) []market.Candle {
	start := time.Date(2025, 3, 9, 15, 0, 0, 0, time.UTC) // 00:00 KST
	out := make([]market.Candle, 0, len(closes))
	for i, c := range closes {
		open := start.Add(time.Duration(i) * 15 * time.Minute)
		out = append(out, market.Candle{
			OpenTime:  open.UnixMilli(),
			CloseTime: open.Add(15 * time.Minute).UnixMilli() - 1,
			Open:      c,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
		})
	}
	return out
}

func repeat(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func TestRegistry(t *testing.T) {
	t.Run("ema_cross is registered", func(t *testing.T) {
		gen, err := Lookup("ema_cross")
		require.NoError(t, err)
		assert.Equal(t, "ema_cross", gen.Name())
	})

	t.Run("unknown strategy is a startup error", func(t *testing.T) {
		_, err := Lookup("does_not_exist")
		assert.Error(t, err)
		assert.Contains(t, err.Error(), "ema_cross")
	})
}

func TestIndicators(t *testing.T) {
	t.Run("ema of constant series", func(t *testing.T) {
		assert.InDelta(t, 100.0, EMALast(repeat(100, 40), 12), 1e-9)
	})

	t.Run("insufficient history returns NaN", func(t *testing.T) {
		assert.True(t, math.IsNaN(EMALast(repeat(100, 5), 12)))
		assert.True(t, math.IsNaN(RSILast(repeat(100, 10), 14)))
		assert.True(t, math.IsNaN(ATRLast(candleSeries(repeat(100, 5)), 14)))
	})

	t.Run("atr of constant amplitude candles", func(t *testing.T) {
		// 每根高低差恒为 2。
		assert.InDelta(t, 2.0, ATRLast(candleSeries(repeat(100, 40)), 14), 1e-9)
	})
}

func TestEMACrossGenerate(t *testing.T) {
	cfg := testConfig()
	gen := &EMACross{}
	htfBull := candleSeries(repeat(90, 60))  // 1h EMA50 = 90，多头趋势
	htfBear := candleSeries(repeat(150, 60)) // 空头趋势

	t.Run("long on cross up with breakout", func(t *testing.T) {
		closes := append(append(repeat(100, 60), repeat(95, 10)...), 115)
		sig, err := gen.Generate(candleSeries(closes), htfBull, cfg)
		require.NoError(t, err)
		assert.Equal(t, SignalLong, sig)
	})

	t.Run("no long against htf trend", func(t *testing.T) {
		closes := append(append(repeat(100, 60), repeat(95, 10)...), 115)
		sig, err := gen.Generate(candleSeries(closes), htfBear, cfg)
		require.NoError(t, err)
		assert.Equal(t, SignalNone, sig)
	})

	t.Run("short on cross down with breakdown", func(t *testing.T) {
		closes := append(append(repeat(100, 60), repeat(105, 10)...), 85)
		sig, err := gen.Generate(candleSeries(closes), htfBear, cfg)
		require.NoError(t, err)
		assert.Equal(t, SignalShort, sig)
	})

	t.Run("flat series yields no signal", func(t *testing.T) {
		sig, err := gen.Generate(candleSeries(repeat(100, 80)), htfBull, cfg)
		require.NoError(t, err)
		assert.Equal(t, SignalNone, sig)
	})

	t.Run("insufficient candles is an error", func(t *testing.T) {
		_, err := gen.Generate(candleSeries(repeat(100, 10)), htfBull, cfg)
		assert.Error(t, err)
	})

	t.Run("rsi band filters entries", func(t *testing.T) {
		narrow := testConfig()
		narrow.Strategy.RSILongRange = []float64{0, 1} // 不可能满足
		closes := append(append(repeat(100, 60), repeat(95, 10)...), 115)
		sig, err := gen.Generate(candleSeries(closes), htfBull, narrow)
		require.NoError(t, err)
		assert.Equal(t, SignalNone, sig)
	})
}
