package risk

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStoreLoadMissingFile(t *testing.T) {
	store := NewStore(filepath.Join(t.TempDir(), "nope", "state.json"))
	st, err := store.Load()
	require.NoError(t, err)
	assert.Nil(t, st.BaselineEquity)
	assert.Empty(t, st.LastResetDate)
	assert.Nil(t, st.Paper)
}

func TestStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "state.json")
	store := NewStore(path)

	baseline := 10234.56
	want := State{
		BaselineEquity: &baseline,
		LastResetDate:  "2025-03-10",
		Paper: &PaperPosition{
			Side:            SideShort,
			EntryPrice:      100,
			StopPrice:       102,
			TakeProfitPrice: 96,
			Quantity:        0.5,
			OpenedAt:        time.Date(2025, 3, 10, 9, 15, 5, 0, time.UTC),
		},
	}
	require.NoError(t, store.Save(want))

	got, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, want, got)

	// 重复保存-加载等价（序列化幂等）。
	require.NoError(t, store.Save(got))
	again, err := store.Load()
	require.NoError(t, err)
	assert.Equal(t, got, again)
}

func TestStoreSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "state.json")
	store := NewStore(path)
	require.NoError(t, store.Save(State{}))

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "state.json", entries[0].Name())
}

func TestStoreLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))
	_, err := NewStore(path).Load()
	assert.Error(t, err)
}
