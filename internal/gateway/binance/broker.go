package binance

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/adshao/go-binance/v2/futures"
	"github.com/shopspring/decimal"

	"perpbot/internal/logger"
	"perpbot/internal/risk"
)

// SetupLeverageAndMargin 设置杠杆与保证金模式。两个调用都可能因
// “已是目标值”之类的原因报错，按告警处理，不阻断启动。
func (c *Client) SetupLeverageAndMargin(ctx context.Context, symbol string, leverage int, marginMode string) {
	marginType := futures.MarginTypeIsolated
	if strings.EqualFold(marginMode, "CROSSED") {
		marginType = futures.MarginTypeCrossed
	}
	if err := c.client.NewChangeMarginTypeService().Symbol(symbol).MarginType(marginType).Do(ctx); err != nil {
		logger.Warnf("binance: 设置保证金模式失败 symbol=%s mode=%s err=%v", symbol, marginMode, err)
	}
	if _, err := c.client.NewChangeLeverageService().Symbol(symbol).Leverage(leverage).Do(ctx); err != nil {
		logger.Warnf("binance: 设置杠杆失败 symbol=%s leverage=%d err=%v", symbol, leverage, err)
	}
}

// Equity 返回 USDT 钱包余额。
func (c *Client) Equity(ctx context.Context) (float64, error) {
	balances, err := c.client.NewGetBalanceService().Do(ctx)
	if err != nil {
		return 0, fmt.Errorf("fetching balance failed: %w", err)
	}
	for _, b := range balances {
		if b != nil && b.Asset == "USDT" {
			return parseFloat(b.Balance), nil
		}
	}
	return 0, nil
}

// OpenPosition 返回当前持仓数量与方向（"long"/"short"/"flat"）。
func (c *Client) OpenPosition(ctx context.Context, symbol string) (float64, string, error) {
	positions, err := c.client.NewGetPositionRiskService().Symbol(symbol).Do(ctx)
	if err != nil {
		return 0, "flat", fmt.Errorf("fetching position failed: %w", err)
	}
	for _, p := range positions {
		if p == nil {
			continue
		}
		qty := parseFloat(p.PositionAmt)
		switch {
		case qty > 0:
			return qty, "long", nil
		case qty < 0:
			return qty, "short", nil
		}
	}
	return 0, "flat", nil
}

// PlaceMarketEntry 按市价进场。side 为交易方向（LONG 买入、SHORT 卖出）。
func (c *Client) PlaceMarketEntry(ctx context.Context, symbol string, side risk.Side, qty float64) error {
	_, err := c.client.NewCreateOrderService().
		Symbol(symbol).
		Side(orderSide(side)).
		Type(futures.OrderTypeMarket).
		Quantity(formatQty(qty)).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("placing market entry failed: %w", err)
	}
	return nil
}

// PlaceReduceOnlyStop 挂只减仓的止损市价单，触发价按 PriceTick 取整。
func (c *Client) PlaceReduceOnlyStop(ctx context.Context, symbol string, posSide risk.Side, qty, stopPrice float64) error {
	_, err := c.client.NewCreateOrderService().
		Symbol(symbol).
		Side(closeSide(posSide)).
		Type(futures.OrderTypeStopMarket).
		Quantity(formatQty(qty)).
		StopPrice(c.formatPrice(stopPrice)).
		ReduceOnly(true).
		TimeInForce(futures.TimeInForceTypeGTC).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("placing reduce-only stop failed: %w", err)
	}
	return nil
}

// CloseMarket 市价平掉现有仓位（只减仓）。
func (c *Client) CloseMarket(ctx context.Context, symbol string, posSide risk.Side, qty float64) error {
	if qty < 0 {
		qty = -qty
	}
	_, err := c.client.NewCreateOrderService().
		Symbol(symbol).
		Side(closeSide(posSide)).
		Type(futures.OrderTypeMarket).
		Quantity(formatQty(qty)).
		ReduceOnly(true).
		Do(ctx)
	if err != nil {
		return fmt.Errorf("closing position failed: %w", err)
	}
	return nil
}

func orderSide(side risk.Side) futures.SideType {
	if side == risk.SideLong {
		return futures.SideTypeBuy
	}
	return futures.SideTypeSell
}

func closeSide(posSide risk.Side) futures.SideType {
	if posSide == risk.SideLong {
		return futures.SideTypeSell
	}
	return futures.SideTypeBuy
}

func formatQty(qty float64) string {
	return strconv.FormatFloat(qty, 'f', -1, 64)
}

// formatPrice 把价格对齐到交易对最小报价步长。
func (c *Client) formatPrice(price float64) string {
	if c.cfg.PriceTick <= 0 {
		return strconv.FormatFloat(price, 'f', -1, 64)
	}
	tick := decimal.NewFromFloat(c.cfg.PriceTick)
	rounded := decimal.NewFromFloat(price).Div(tick).Round(0).Mul(tick)
	return rounded.String()
}
