package risk

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Side 表示持仓方向。
type Side string

const (
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

// PaperPosition 是模拟盘的单一持仓槽位。
type PaperPosition struct {
	Side            Side      `json:"side"`
	EntryPrice      float64   `json:"entry_price"`
	StopPrice       float64   `json:"stop_price"`
	TakeProfitPrice float64   `json:"take_profit_price"`
	Quantity        float64   `json:"quantity"`
	OpenedAt        time.Time `json:"opened_at"`
}

// State 是跨进程持久化的风控记录。
// 不变式：BaselineEquity 非空当且仅当 LastResetDate 等于当前交易日。
type State struct {
	BaselineEquity *float64       `json:"baseline_equity"`
	LastResetDate  string         `json:"last_reset_date,omitempty"`
	Paper          *PaperPosition `json:"paper_position,omitempty"`
}

// Store 负责 State 的文件持久化。单进程单写者，无需加锁；
// 写入走临时文件再 rename，进程中途崩溃不会留下半截文件。
type Store struct {
	path string
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// Load 读取持久化状态；文件不存在返回零值状态。
func (s *Store) Load() (State, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return State{}, nil
	}
	if err != nil {
		return State{}, fmt.Errorf("reading state file failed (%s): %w", s.path, err)
	}
	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		return State{}, fmt.Errorf("parsing state file failed (%s): %w", s.path, err)
	}
	return st, nil
}

// Save 全量落盘。失败必须向上冒泡：静默丢掉日内基准会让回撤护栏失效。
func (s *Store) Save(st State) error {
	dir := filepath.Dir(s.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("creating state dir failed: %w", err)
		}
	}
	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("encoding state failed: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("writing state tmp file failed: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replacing state file failed: %w", err)
	}
	return nil
}
