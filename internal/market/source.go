package market

import "context"

// Source 提供按 symbol+interval 拉取历史 K 线的能力。
// 返回序列按时间升序排列，最新一根在末尾。
type Source interface {
	FetchCandles(ctx context.Context, symbol, interval string, limit int) ([]Candle, error)
}
