package scheduler

import (
	"strings"
	"time"
)

// 资金费率每 8 小时结算（00:00 / 08:00 / 16:00 UTC）。
// 线上判定把小时折到 3 小时轮盘后取环形分钟距离，这里保持同一口径，
// 避免实盘与历史行为出现偏差。
const fundingWrapMinutes = 3 * 60

// InTradeWindow 判断 now（换算到 loc 时区后）是否落在 [start, end] 闭区间内。
// window 为空表示不限制。start/end 均为 "HH:MM"。
func InTradeWindow(now time.Time, window []string, loc *time.Location) bool {
	if len(window) != 2 {
		return true
	}
	start, err1 := parseHourMinute(window[0])
	end, err2 := parseHourMinute(window[1])
	if err1 != nil || err2 != nil {
		return true
	}
	local := now.In(loc)
	cur := local.Hour()*60 + local.Minute()
	if start <= end {
		return cur >= start && cur <= end
	}
	// 跨午夜窗口，如 ["21:00","03:00"]
	return cur >= start || cur <= end
}

// NearFundingWindow 判断 UTC 当前时刻是否落在任一结算锚点前后
// tolerance 分钟内。tolerance <= 0 表示不回避。
func NearFundingWindow(nowUTC time.Time, tolerance int) bool {
	if tolerance <= 0 {
		return false
	}
	nowUTC = nowUTC.UTC()
	cur := (nowUTC.Hour()%3)*60 + nowUTC.Minute()
	dist := cur
	if fundingWrapMinutes-cur < dist {
		dist = fundingWrapMinutes - cur
	}
	return dist <= tolerance
}

func parseHourMinute(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, err
	}
	return t.Hour()*60 + t.Minute(), nil
}
