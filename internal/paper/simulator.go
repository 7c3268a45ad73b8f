package paper

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"perpbot/internal/risk"
)

// Simulator 维护模拟盘的单一持仓槽位：开仓、逐轮对最新价做
// 止损/止盈触发检查、按触发价平仓并计算扣费后的已实现盈亏。
// 无滑点、无部分成交、不加仓。
type Simulator struct {
	store   *risk.Store
	feeRate float64
}

// CloseResult 描述一次模拟平仓。
type CloseResult struct {
	Side       risk.Side
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64
	Fees       float64
	NetPnL     float64
	Reason     string // "stop" | "take_profit"
	OpenedAt   time.Time
	ClosedAt   time.Time
}

func NewSimulator(store *risk.Store, feeRate float64) *Simulator {
	return &Simulator{store: store, feeRate: feeRate}
}

// Open 在空仓时建立模拟持仓并落盘。止盈价按入场价的固定百分比：
// LONG = entry*(1+tpPct)，SHORT = entry*(1-tpPct)。
// 已有持仓时返回错误，单槽位不允许加仓。
func (s *Simulator) Open(st risk.State, side risk.Side, entry, stop, qty, tpPct float64, now time.Time) (risk.State, error) {
	if st.Paper != nil {
		return st, fmt.Errorf("paper position already open (%s @ %v)", st.Paper.Side, st.Paper.EntryPrice)
	}
	if qty <= 0 {
		return st, fmt.Errorf("paper open requires qty > 0, got %v", qty)
	}
	entryDec := decimal.NewFromFloat(entry)
	pctDec := decimal.NewFromFloat(tpPct)
	var tp decimal.Decimal
	if side == risk.SideLong {
		tp = entryDec.Mul(decimal.NewFromInt(1).Add(pctDec))
	} else {
		tp = entryDec.Mul(decimal.NewFromInt(1).Sub(pctDec))
	}
	tpF, _ := tp.Float64()
	st.Paper = &risk.PaperPosition{
		Side:            side,
		EntryPrice:      entry,
		StopPrice:       stop,
		TakeProfitPrice: tpF,
		Quantity:        qty,
		OpenedAt:        now.UTC(),
	}
	if err := s.store.Save(st); err != nil {
		return st, err
	}
	return st, nil
}

// CheckExit 用最新价检查触发。先查止损、后查止盈（两者同时满足时
// 以止损为准，保守口径），单轮最多触发一个。触发时以触及价位成交、
// 清空槽位并落盘。无持仓或未触发时返回 nil 结果。
func (s *Simulator) CheckExit(st risk.State, price float64, now time.Time) (risk.State, *CloseResult, error) {
	pos := st.Paper
	if pos == nil {
		return st, nil, nil
	}
	var exit float64
	var reason string
	switch {
	case stopTouched(pos, price):
		exit, reason = pos.StopPrice, "stop"
	case targetTouched(pos, price):
		exit, reason = pos.TakeProfitPrice, "take_profit"
	default:
		return st, nil, nil
	}

	res := &CloseResult{
		Side:       pos.Side,
		EntryPrice: pos.EntryPrice,
		ExitPrice:  exit,
		Quantity:   pos.Quantity,
		Reason:     reason,
		OpenedAt:   pos.OpenedAt,
		ClosedAt:   now.UTC(),
	}
	res.Fees, res.NetPnL = settle(pos, exit, s.feeRate)

	st.Paper = nil
	if err := s.store.Save(st); err != nil {
		return st, nil, err
	}
	return st, res, nil
}

func stopTouched(pos *risk.PaperPosition, price float64) bool {
	if pos.Side == risk.SideLong {
		return decimalLTE(price, pos.StopPrice)
	}
	return decimalGTE(price, pos.StopPrice)
}

func targetTouched(pos *risk.PaperPosition, price float64) bool {
	if pos.Side == risk.SideLong {
		return decimalGTE(price, pos.TakeProfitPrice)
	}
	return decimalLTE(price, pos.TakeProfitPrice)
}

// settle 计算扣除双边手续费后的已实现盈亏。
// 手续费 = (entry*qty + exit*qty) * feeRate。
func settle(pos *risk.PaperPosition, exit, feeRate float64) (fees, net float64) {
	entry := decimal.NewFromFloat(pos.EntryPrice)
	exitDec := decimal.NewFromFloat(exit)
	qty := decimal.NewFromFloat(pos.Quantity)

	var gross decimal.Decimal
	if pos.Side == risk.SideLong {
		gross = exitDec.Sub(entry).Mul(qty)
	} else {
		gross = entry.Sub(exitDec).Mul(qty)
	}
	feeDec := entry.Mul(qty).Add(exitDec.Mul(qty)).Mul(decimal.NewFromFloat(feeRate))
	fees, _ = feeDec.Float64()
	net, _ = gross.Sub(feeDec).Float64()
	return fees, net
}

func decimalLTE(a, b float64) bool {
	return decimal.NewFromFloat(a).Cmp(decimal.NewFromFloat(b)) <= 0
}

func decimalGTE(a, b float64) bool {
	return decimal.NewFromFloat(a).Cmp(decimal.NewFromFloat(b)) >= 0
}
