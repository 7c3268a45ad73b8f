package trader

import (
	"context"
	"fmt"
	"time"

	"perpbot/internal/config"
	"perpbot/internal/gateway/notifier"
	"perpbot/internal/journal"
	"perpbot/internal/logger"
	"perpbot/internal/market"
	"perpbot/internal/paper"
	"perpbot/internal/risk"
	"perpbot/internal/scheduler"
	"perpbot/internal/strategy"
)

// 模拟盘不查询交易所余额，权益固定为该值。
const paperEquity = 10000.0

const candleFetchLimit = 600

// Loop 驱动单品种交易循环：按 15 分钟栅格唤醒，拉取 K 线，依次过
// 日内回撤护栏、信号计算、时间/资金费率闸门、模拟盘离场检查与开仓
// 决策。可恢复的外部失败只影响当轮；状态落盘失败视为致命。
type Loop struct {
	cfg    *config.Config
	source market.Source
	broker Broker // 模拟盘为 nil
	gen    strategy.Generator
	store  *risk.Store
	sim    *paper.Simulator
	trades *journal.Store // 可选
	notify notifier.TextNotifier
	loc    *time.Location

	state risk.State
	nowFn func() time.Time
}

func NewLoop(cfg *config.Config, source market.Source, broker Broker, gen strategy.Generator,
	store *risk.Store, sim *paper.Simulator, trades *journal.Store, n notifier.TextNotifier) (*Loop, error) {
	if cfg.Mode.Live && broker == nil {
		return nil, fmt.Errorf("live mode requires a broker")
	}
	loc, err := time.LoadLocation(cfg.Runtime.KSTTz)
	if err != nil {
		return nil, fmt.Errorf("loading trading timezone failed: %w", err)
	}
	state, err := store.Load()
	if err != nil {
		return nil, err
	}
	return &Loop{
		cfg:    cfg,
		source: source,
		broker: broker,
		gen:    gen,
		store:  store,
		sim:    sim,
		trades: trades,
		notify: n,
		loc:    loc,
		state:  state,
		nowFn:  time.Now,
	}, nil
}

// Run 阻塞执行交易循环，直到 ctx 结束或状态持久化失败。
func (l *Loop) Run(ctx context.Context) error {
	logger.Infof("loop: started symbol=%s live=%v strategy=%s", l.cfg.Exchange.Symbol, l.cfg.Mode.Live, l.gen.Name())
	for {
		if ctx.Err() != nil {
			return nil
		}
		now := l.nowFn().UTC()
		if l.cfg.Runtime.AlignToCandle && now.Minute()%15 != 0 {
			if !scheduler.WaitUntil(ctx, scheduler.NextQuarterMinute(now), l.nowFn) {
				return nil
			}
			continue
		}
		if err := l.runCycle(ctx, now); err != nil {
			return err
		}
		if !scheduler.WaitUntil(ctx, scheduler.NextQuarterMinute(l.nowFn().UTC()), l.nowFn) {
			return nil
		}
	}
}

// runCycle 执行一轮评估。返回非 nil 仅代表致命错误（状态落盘失败）。
func (l *Loop) runCycle(ctx context.Context, now time.Time) error {
	sc := l.cfg.Strategy
	symbol := l.cfg.Exchange.Symbol

	base, err := l.source.FetchCandles(ctx, symbol, sc.BaseTF, candleFetchLimit)
	if err != nil {
		l.send(fmt.Sprintf("[ERR] K线拉取失败: %v", err))
		return nil
	}
	htf, err := l.source.FetchCandles(ctx, symbol, sc.HTF, candleFetchLimit)
	if err != nil {
		l.send(fmt.Sprintf("[ERR] K线拉取失败: %v", err))
		return nil
	}
	if len(base) == 0 {
		l.send("[ERR] K线为空，跳过本轮")
		return nil
	}
	price := market.LastClose(base)

	equity := paperEquity
	if l.cfg.Mode.Live {
		equity, err = l.broker.Equity(ctx)
		if err != nil {
			l.send(fmt.Sprintf("[ERR] 余额查询失败: %v", err))
			return nil
		}
	}

	// 日内基准每个交易日只刷新一次；落盘失败直接终止，
	// 静默吞掉会让回撤护栏形同虚设。
	if next, changed := risk.EnsureDailyBaseline(l.state, equity, l.loc, now); changed {
		if err := l.store.Save(next); err != nil {
			return fmt.Errorf("persisting daily baseline failed: %w", err)
		}
		l.state = next
		logger.Infof("loop: 日内基准已刷新 date=%s baseline=%.2f", next.LastResetDate, equity)
	}

	allowed, dd := risk.DailyDrawdownOK(l.state, equity, l.cfg.Risk.MaxDailyDD)

	var sig strategy.Signal
	if allowed {
		sig, err = l.gen.Generate(base, htf, l.cfg)
		if err != nil {
			// 信号失败降级为“本轮无信号”，循环继续。
			l.send(fmt.Sprintf("[ERR] 信号计算失败: %v", err))
			sig = strategy.SignalNone
		}
	}

	// 离场检查先于任何开仓评估；护栏只拦新开仓，不拦减风险的平仓。
	if !l.cfg.Mode.Live {
		next, closed, err := l.sim.CheckExit(l.state, price, now)
		if err != nil {
			return fmt.Errorf("persisting paper close failed: %w", err)
		}
		l.state = next
		if closed != nil {
			l.send(fmt.Sprintf("[模拟平仓] %s %s 进场=%.2f 出场=%.2f 数量=%.6f 净盈亏=%.2f (%s)",
				symbol, closed.Side, closed.EntryPrice, closed.ExitPrice, closed.Quantity, closed.NetPnL, closed.Reason))
			l.record(ctx, journal.Entry{
				Symbol:     symbol,
				Mode:       "paper",
				Side:       string(closed.Side),
				EntryPrice: closed.EntryPrice,
				ExitPrice:  closed.ExitPrice,
				Quantity:   closed.Quantity,
				Fees:       closed.Fees,
				NetPnL:     closed.NetPnL,
				Reason:     closed.Reason,
				OpenedAt:   closed.OpenedAt,
				ClosedAt:   closed.ClosedAt,
			})
			// 平仓轮不再开新仓。
			return nil
		}
	}

	if !allowed {
		l.send(fmt.Sprintf("[风控] 触及日亏上限(%.2f%%)，今日停止开仓。", dd*100))
		return nil
	}

	qtyOpen, posSide := 0.0, "flat"
	_ = qtyOpen
	if l.cfg.Mode.Live {
		qtyOpen, posSide, err = l.broker.OpenPosition(ctx, symbol)
		if err != nil {
			l.send(fmt.Sprintf("[ERR] 持仓查询失败: %v", err))
			return nil
		}
	} else if l.state.Paper != nil {
		qtyOpen = l.state.Paper.Quantity
		if l.state.Paper.Side == risk.SideLong {
			posSide = "long"
		} else {
			posSide = "short"
		}
	}

	ts := now.In(l.loc).Format("2006-01-02 15:04")
	if sig == strategy.SignalNone || posSide != "flat" {
		l.send(fmt.Sprintf("[%s] 信号:%s 持仓:%s 价格:%.2f DD:%.2f%%", ts, signalLabel(sig), posSide, price, dd*100))
		return nil
	}

	// 时间窗与资金费率闸门只拦新开仓。
	if !scheduler.InTradeWindow(now, sc.TradeWindowKST, l.loc) {
		logger.Infof("loop: 不在交易时间窗内，跳过开仓")
		return nil
	}
	if scheduler.NearFundingWindow(now, sc.AvoidFundingMinute) {
		logger.Infof("loop: 临近资金费率结算，跳过开仓")
		return nil
	}

	side := risk.SideLong
	if sig == strategy.SignalShort {
		side = risk.SideShort
	}
	sizing := risk.CalcQtyByRisk(base, l.cfg, price, side, equity)
	if sizing.Quantity <= 0 {
		l.send(fmt.Sprintf("[%s] 信号 %s 出现但数量=0，跳过。", ts, sig))
		return nil
	}

	if !l.cfg.Mode.Live {
		return l.enterPaper(ctx, symbol, side, price, sizing, now)
	}
	l.enterLive(ctx, symbol, side, price, sizing, now)
	return nil
}

func (l *Loop) enterPaper(ctx context.Context, symbol string, side risk.Side, price float64, sizing risk.SizingResult, now time.Time) error {
	next, err := l.sim.Open(l.state, side, price, sizing.StopPrice, sizing.Quantity, l.cfg.Strategy.TakeProfitPercent, now)
	if err != nil {
		return fmt.Errorf("persisting paper open failed: %w", err)
	}
	l.state = next
	l.send(fmt.Sprintf("[模拟] %s %s 数量=%.6f @ %.2f SL=%.2f TP=%.2f",
		symbol, side, sizing.Quantity, price, sizing.StopPrice, next.Paper.TakeProfitPrice))
	return nil
}

func (l *Loop) enterLive(ctx context.Context, symbol string, side risk.Side, price float64, sizing risk.SizingResult, now time.Time) {
	if err := l.broker.PlaceMarketEntry(ctx, symbol, side, sizing.Quantity); err != nil {
		l.send(fmt.Sprintf("[ERR] 进场失败: %v", err))
		return
	}
	if err := l.broker.PlaceReduceOnlyStop(ctx, symbol, side, sizing.Quantity, sizing.StopPrice); err != nil {
		// 止损挂单失败时不留裸仓位，立刻市价平掉。
		l.send(fmt.Sprintf("[ERR] 止损挂单失败: %v，市价平仓回退", err))
		if cerr := l.broker.CloseMarket(ctx, symbol, side, sizing.Quantity); cerr != nil {
			l.send(fmt.Sprintf("[ERR] 回退平仓也失败: %v，需要人工处理", cerr))
		}
		return
	}
	l.send(fmt.Sprintf("[实盘] %s %s 进场 数量=%.6f @~%.2f SL=%.2f", symbol, side, sizing.Quantity, price, sizing.StopPrice))
	l.record(ctx, journal.Entry{
		Symbol:     symbol,
		Mode:       "live",
		Side:       string(side),
		EntryPrice: price,
		Quantity:   sizing.Quantity,
		Reason:     "entry",
		OpenedAt:   now,
		ClosedAt:   now,
	})
}

// send 尽力投递通知；通道失败只记日志，绝不打断循环。
func (l *Loop) send(msg string) {
	logger.Infof("%s", msg)
	if l.notify == nil {
		return
	}
	if err := l.notify.SendText(msg); err != nil {
		logger.Warnf("loop: 通知投递失败: %v", err)
	}
}

func (l *Loop) record(ctx context.Context, e journal.Entry) {
	if l.trades == nil {
		return
	}
	if err := l.trades.Record(ctx, e); err != nil {
		logger.Warnf("loop: 交易日志写入失败: %v", err)
	}
}

func signalLabel(sig strategy.Signal) string {
	if sig == strategy.SignalNone {
		return "无"
	}
	return string(sig)
}
