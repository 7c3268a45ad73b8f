package paper

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"perpbot/internal/risk"
)

const feeRate = 0.0005

func newTestSim(t *testing.T) (*Simulator, *risk.Store) {
	t.Helper()
	store := risk.NewStore(filepath.Join(t.TempDir(), "state.json"))
	return NewSimulator(store, feeRate), store
}

func openedLong(t *testing.T, sim *Simulator) risk.State {
	t.Helper()
	st, err := sim.Open(risk.State{}, risk.SideLong, 100, 98, 10, 0.04, time.Unix(1700000000, 0))
	require.NoError(t, err)
	return st
}

func TestSimulatorOpen(t *testing.T) {
	sim, store := newTestSim(t)

	st := openedLong(t, sim)
	require.NotNil(t, st.Paper)
	assert.Equal(t, risk.SideLong, st.Paper.Side)
	assert.InDelta(t, 104.0, st.Paper.TakeProfitPrice, 1e-9)

	// 已落盘。
	persisted, err := store.Load()
	require.NoError(t, err)
	require.NotNil(t, persisted.Paper)
	assert.InDelta(t, 104.0, persisted.Paper.TakeProfitPrice, 1e-9)

	t.Run("second open rejected while slot is occupied", func(t *testing.T) {
		_, err := sim.Open(st, risk.SideShort, 100, 102, 5, 0.04, time.Now())
		assert.Error(t, err)
	})

	t.Run("short take profit below entry", func(t *testing.T) {
		sim2, _ := newTestSim(t)
		st2, err := sim2.Open(risk.State{}, risk.SideShort, 100, 102, 5, 0.04, time.Now())
		require.NoError(t, err)
		assert.InDelta(t, 96.0, st2.Paper.TakeProfitPrice, 1e-9)
	})
}

func TestSimulatorCheckExit(t *testing.T) {
	t.Run("stop touch closes at stop level", func(t *testing.T) {
		sim, store := newTestSim(t)
		st := openedLong(t, sim)

		st, closed, err := sim.CheckExit(st, 97.5, time.Unix(1700003600, 0))
		require.NoError(t, err)
		require.NotNil(t, closed)
		assert.Equal(t, "stop", closed.Reason)
		assert.InDelta(t, 98.0, closed.ExitPrice, 1e-9)
		// 毛亏 -20，双边手续费 (100*10+98*10)*0.0005 = 0.99
		assert.InDelta(t, 0.99, closed.Fees, 1e-9)
		assert.InDelta(t, -20.99, closed.NetPnL, 1e-9)
		assert.Nil(t, st.Paper)

		persisted, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, persisted.Paper)
	})

	t.Run("target touch closes at target level", func(t *testing.T) {
		sim, _ := newTestSim(t)
		st := openedLong(t, sim)

		st, closed, err := sim.CheckExit(st, 105, time.Now())
		require.NoError(t, err)
		require.NotNil(t, closed)
		assert.Equal(t, "take_profit", closed.Reason)
		assert.InDelta(t, 104.0, closed.ExitPrice, 1e-9)
		assert.InDelta(t, 40.0-(100*10+104*10)*feeRate, closed.NetPnL, 1e-9)
		assert.Nil(t, st.Paper)
	})

	t.Run("no touch leaves position open", func(t *testing.T) {
		sim, _ := newTestSim(t)
		st := openedLong(t, sim)

		st, closed, err := sim.CheckExit(st, 101, time.Now())
		require.NoError(t, err)
		assert.Nil(t, closed)
		assert.NotNil(t, st.Paper)
	})

	t.Run("flat state is a no-op", func(t *testing.T) {
		sim, _ := newTestSim(t)
		st, closed, err := sim.CheckExit(risk.State{}, 100, time.Now())
		require.NoError(t, err)
		assert.Nil(t, closed)
		assert.Nil(t, st.Paper)
	})

	t.Run("stop wins when both levels are touched", func(t *testing.T) {
		// 退化参数下止损价与止盈价可能重合，此时按保守口径走止损。
		sim, store := newTestSim(t)
		st, err := sim.Open(risk.State{}, risk.SideLong, 100, 100, 10, 0, time.Now())
		require.NoError(t, err)

		st, closed, err := sim.CheckExit(st, 100, time.Now())
		require.NoError(t, err)
		require.NotNil(t, closed)
		assert.Equal(t, "stop", closed.Reason)

		persisted, err := store.Load()
		require.NoError(t, err)
		assert.Nil(t, persisted.Paper)
		_ = st
	})

	t.Run("short side touch directions", func(t *testing.T) {
		sim, _ := newTestSim(t)
		st, err := sim.Open(risk.State{}, risk.SideShort, 100, 102, 5, 0.04, time.Now())
		require.NoError(t, err)

		st, closed, err := sim.CheckExit(st, 102.5, time.Now())
		require.NoError(t, err)
		require.NotNil(t, closed)
		assert.Equal(t, "stop", closed.Reason)
		assert.InDelta(t, 102.0, closed.ExitPrice, 1e-9)
		// 空头止损为亏损：(100-102)*5 = -10 再扣手续费
		assert.InDelta(t, -10-(100*5+102*5)*feeRate, closed.NetPnL, 1e-9)
	})
}
