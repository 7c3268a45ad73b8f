package scheduler

import (
	"context"
	"time"
)

// AlignOffset 是对齐点之后的固定延迟，给交易所留出 K 线落盘时间。
const AlignOffset = 5 * time.Second

// MinSleep 防止时钟漂移导致负等待或忙等。
const MinSleep = time.Second

// NextQuarterMinute 返回 now 之后下一个分钟数为 15 倍数的时刻，
// 秒数固定为 AlignOffset。分钟进位到 60 时滚动到下一小时整点。
// 结果严格晚于 now。
func NextQuarterMinute(now time.Time) time.Time {
	now = now.UTC()
	minute := ((now.Minute() / 15) + 1) * 15
	hourStart := time.Date(now.Year(), now.Month(), now.Day(), now.Hour(), 0, 0, 0, time.UTC)
	var next time.Time
	if minute >= 60 {
		next = hourStart.Add(time.Hour)
	} else {
		next = hourStart.Add(time.Duration(minute) * time.Minute)
	}
	return next.Add(AlignOffset)
}

// WaitUntil 睡眠到 target，可被 ctx 取消；返回 false 表示 ctx 已结束。
// 等待时长不小于 MinSleep。
func WaitUntil(ctx context.Context, target time.Time, nowFn func() time.Time) bool {
	if nowFn == nil {
		nowFn = time.Now
	}
	wait := target.Sub(nowFn().UTC())
	if wait < MinSleep {
		wait = MinSleep
	}
	timer := time.NewTimer(wait)
	select {
	case <-ctx.Done():
		timer.Stop()
		return false
	case <-timer.C:
		return true
	}
}
