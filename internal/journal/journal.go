package journal

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Entry 记录一笔已结束（模拟平仓）或已提交（实盘进场）的交易。
type Entry struct {
	ID         string
	Symbol     string
	Mode       string // "paper" | "live"
	Side       string
	EntryPrice float64
	ExitPrice  float64
	Quantity   float64
	Fees       float64
	NetPnL     float64
	Reason     string
	OpenedAt   time.Time
	ClosedAt   time.Time
}

// Store wraps a sqlite database for trade entries.
type Store struct {
	mu   sync.Mutex
	db   *sql.DB
	path string
}

// Open opens or creates the sqlite database.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("journal path 不能为空")
	}
	dsn := fmt.Sprintf("file:%s?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&cache=shared", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if err := ensureSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db, path: path}, nil
}

// Close closes the underlying db.
func (s *Store) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

// Record 落一条交易记录；ID 为空时自动生成。
func (s *Store) Record(ctx context.Context, e Entry) error {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return fmt.Errorf("journal 未初始化")
	}
	if strings.TrimSpace(e.ID) == "" {
		e.ID = uuid.NewString()
	}
	closedAt := e.ClosedAt
	if closedAt.IsZero() {
		closedAt = time.Now()
	}
	_, err := db.ExecContext(ctx, `
		INSERT INTO trades(id, symbol, mode, side, entry_price, exit_price, quantity,
			fees, net_pnl, reason, opened_at, closed_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?);
	`, e.ID, e.Symbol, e.Mode, e.Side, e.EntryPrice, nullIfZero(e.ExitPrice), e.Quantity,
		e.Fees, e.NetPnL, nullIfEmpty(e.Reason), e.OpenedAt.UnixMilli(), closedAt.UnixMilli())
	return err
}

// Summary 返回记录总数与累计净盈亏，启动时用于打一行概要日志。
func (s *Store) Summary(ctx context.Context) (count int, netPnL float64, err error) {
	s.mu.Lock()
	db := s.db
	s.mu.Unlock()
	if db == nil {
		return 0, 0, fmt.Errorf("journal 未初始化")
	}
	row := db.QueryRowContext(ctx, `SELECT COUNT(*), COALESCE(SUM(net_pnl), 0) FROM trades`)
	if err := row.Scan(&count, &netPnL); err != nil {
		return 0, 0, err
	}
	return count, netPnL, nil
}

func ensureSchema(db *sql.DB) error {
	stmt := `
	CREATE TABLE IF NOT EXISTS trades (
		id TEXT PRIMARY KEY,
		symbol TEXT NOT NULL,
		mode TEXT NOT NULL,
		side TEXT NOT NULL,
		entry_price REAL NOT NULL,
		exit_price REAL,
		quantity REAL NOT NULL,
		fees REAL NOT NULL DEFAULT 0,
		net_pnl REAL NOT NULL DEFAULT 0,
		reason TEXT,
		opened_at INTEGER NOT NULL,
		closed_at INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_trades_symbol ON trades(symbol);
	CREATE INDEX IF NOT EXISTS idx_trades_closed_at ON trades(closed_at);
	`
	_, err := db.Exec(stmt)
	return err
}

func nullIfZero(val float64) interface{} {
	if val == 0 {
		return nil
	}
	return val
}

func nullIfEmpty(s string) interface{} {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return s
}
