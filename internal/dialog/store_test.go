package dialog

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fieldops/internal/state"
)

// recordingKV captures the expirations passed to Set.
type recordingKV struct {
	state.KVStore
	ttls []time.Duration
}

func (r *recordingKV) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	r.ttls = append(r.ttls, ttl)
	return r.KVStore.Set(ctx, key, value, ttl)
}

func TestStore_RoundTrip(t *testing.T) {
	store := NewStore(state.NewMemoryKVStore())
	ctx := context.Background()

	partner := "Иван"
	draft := &Draft{
		Flow:            FlowReport,
		Step:            StepReportQuantity,
		Date:            "2026-03-14",
		PartnerName:     &partner,
		SelectedTypeIDs: []int64{3, 5},
		Tasks:           []TaskDraft{{WorkTypeID: 3, Quantity: 7}},
		QuantityIndex:   1,
	}
	require.NoError(t, store.Save(ctx, 100, draft))

	loaded, err := store.Get(ctx, 100)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, FlowReport, loaded.Flow)
	assert.Equal(t, StepReportQuantity, loaded.Step)
	require.NotNil(t, loaded.PartnerName)
	assert.Equal(t, "Иван", *loaded.PartnerName)
	assert.Equal(t, []int64{3, 5}, loaded.SelectedTypeIDs)
	assert.Equal(t, 1, loaded.QuantityIndex)
}

func TestStore_SaveWithoutExpiry(t *testing.T) {
	kv := &recordingKV{KVStore: state.NewMemoryKVStore()}
	store := NewStore(kv)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 100, &Draft{Flow: FlowReport, Step: StepReportDate}))

	// A draft stays until committed, cancelled or replaced.
	require.Len(t, kv.ttls, 1)
	assert.Equal(t, time.Duration(0), kv.ttls[0])
}

func TestStore_IdleChat(t *testing.T) {
	store := NewStore(state.NewMemoryKVStore())

	draft, err := store.Get(context.Background(), 100)
	require.NoError(t, err)
	assert.Nil(t, draft)
}

func TestStore_Clear(t *testing.T) {
	store := NewStore(state.NewMemoryKVStore())
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, 100, &Draft{Flow: FlowProblem, Step: StepProblemType}))
	require.NoError(t, store.Clear(ctx, 100))

	draft, err := store.Get(ctx, 100)
	require.NoError(t, err)
	assert.Nil(t, draft)

	// clearing an idle chat is a no-op
	require.NoError(t, store.Clear(ctx, 200))
}
