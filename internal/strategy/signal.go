package strategy

import (
	"fmt"
	"sort"

	"perpbot/internal/config"
	"perpbot/internal/market"
)

// Signal 是策略的方向性输出；空串表示本轮无信号。
type Signal string

const (
	SignalNone  Signal = ""
	SignalLong  Signal = "LONG"
	SignalShort Signal = "SHORT"
)

// Generator 根据基础周期与高周期 K 线给出方向信号。
// 实现必须是无状态的：每轮重新计算，失败只影响当轮。
type Generator interface {
	Name() string
	Generate(base, htf []market.Candle, cfg *config.Config) (Signal, error)
}

var registry = map[string]func() Generator{}

// Register 注册一个命名策略构造器，同名覆盖。
func Register(name string, build func() Generator) {
	if name == "" || build == nil {
		return
	}
	registry[name] = build
}

// Lookup 按配置名取策略；未注册返回错误（启动期致命）。
func Lookup(name string) (Generator, error) {
	build, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("strategy %q is not registered (available: %v)", name, Names())
	}
	return build(), nil
}

// Names 返回已注册策略名（排序后），用于错误提示。
func Names() []string {
	out := make([]string, 0, len(registry))
	for name := range registry {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
