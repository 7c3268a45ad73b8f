package trader

import (
	"context"

	"perpbot/internal/risk"
)

// Broker 是实盘下单通道的最小接口。模拟盘从不调用它。
type Broker interface {
	Equity(ctx context.Context) (float64, error)
	OpenPosition(ctx context.Context, symbol string) (qty float64, side string, err error)
	PlaceMarketEntry(ctx context.Context, symbol string, side risk.Side, qty float64) error
	PlaceReduceOnlyStop(ctx context.Context, symbol string, posSide risk.Side, qty, stopPrice float64) error
	CloseMarket(ctx context.Context, symbol string, posSide risk.Side, qty float64) error
}
