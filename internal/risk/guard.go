package risk

import "time"

const dateLayout = "2006-01-02"

// EnsureDailyBaseline 在交易日（按 loc 时区的日历日）首次评估时
// 把当前权益记为当日基准。返回更新后的状态与是否发生变更，
// 变更时由调用方负责持久化。一天只重置一次。
func EnsureDailyBaseline(st State, equityNow float64, loc *time.Location, now time.Time) (State, bool) {
	today := now.In(loc).Format(dateLayout)
	if st.LastResetDate == today && st.BaselineEquity != nil {
		return st, false
	}
	baseline := equityNow
	st.BaselineEquity = &baseline
	st.LastResetDate = today
	return st, true
}

// DailyDrawdownOK 判断当日回撤是否仍允许交易。
// maxDD 为负分数（-0.03 = 日亏 3% 停止）；基准缺失或非正时恒放行。
// 返回值第二项是当前回撤（负值为亏损）。
func DailyDrawdownOK(st State, equityNow, maxDD float64) (bool, float64) {
	if st.BaselineEquity == nil || *st.BaselineEquity <= 0 {
		return true, 0
	}
	dd := (equityNow - *st.BaselineEquity) / *st.BaselineEquity
	return dd >= maxDD, dd
}
