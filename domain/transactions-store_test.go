package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTransactionsStorePushWindowReplacesVisibleList(t *testing.T) {
	syncAPI := newFakeSyncAPI()
	syncAPI.txPage = TransactionPage{
		Transactions: []Transaction{
			{ID: "t1", Type: TransactionTypeBuy, Status: TransactionStatusExecuted},
			{ID: "t2", Type: TransactionTypeSell, Status: TransactionStatusPending},
		},
		HasMore: false,
	}
	streamAPI := newFakeStreamAPI()

	store := NewTransactionsStore(syncAPI, streamAPI, 50)
	require.NoError(t, store.Init(context.Background()))
	defer store.Stop()

	snap := store.Snapshot()
	require.Len(t, snap.Payload.Transactions, 2)
	assert.False(t, snap.Payload.HasMore)

	streamAPI.txCh <- &TransactionWindow{
		Transactions: []Transaction{
			{ID: "t3", Type: TransactionTypeDCABuy, Status: TransactionStatusExecuted},
		},
		Timestamp: time.Now().Unix(),
	}

	assert.Eventually(t, func() bool {
		return len(store.Snapshot().Payload.Transactions) == 1
	}, time.Second, 5*time.Millisecond)

	snap = store.Snapshot()
	assert.Equal(t, "t3", snap.Payload.Transactions[0].ID)
	// a pushed window is bounded, so older history stays fetchable
	assert.True(t, snap.Payload.HasMore)
	assert.Equal(t, ProvenancePushed, snap.Provenance)
}

func TestTransactionsStoreDerivedViews(t *testing.T) {
	syncAPI := newFakeSyncAPI()
	syncAPI.txPage = TransactionPage{
		Transactions: []Transaction{
			{ID: "t1", Type: TransactionTypeBuy, Status: TransactionStatusExecuted},
			{ID: "t2", Type: TransactionTypeSell, Status: TransactionStatusPending},
			{ID: "t3", Type: TransactionTypeDCABuy, Status: TransactionStatusExecuted},
			{ID: "t4", Type: TransactionTypeDCASell, Status: TransactionStatusFailed},
		},
	}
	streamAPI := newFakeStreamAPI()

	store := NewTransactionsStore(syncAPI, streamAPI, 50)
	require.NoError(t, store.Init(context.Background()))
	defer store.Stop()

	pending := store.Pending()
	require.Len(t, pending, 1)
	assert.Equal(t, "t2", pending[0].ID)

	executed := store.Executed()
	require.Len(t, executed, 2)

	dca := store.DCAOnly()
	require.Len(t, dca, 2)
	assert.Equal(t, "t3", dca[0].ID)
	assert.Equal(t, "t4", dca[1].ID)
}

func TestTransactionsStoreUsesConfiguredPageLimit(t *testing.T) {
	store := NewTransactionsStore(newFakeSyncAPI(), newFakeStreamAPI(), 0)
	assert.Equal(t, 50, store.limit)

	store = NewTransactionsStore(newFakeSyncAPI(), newFakeStreamAPI(), 25)
	assert.Equal(t, 25, store.limit)
}
