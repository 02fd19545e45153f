package connection

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/alephcore/engine/erralph"
	"github.com/alephcore/engine/model"
	"github.com/alephcore/engine/record"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSafeReadReturnsRecordsFromDriver(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	drv.seed("orders", record.Record{record.FieldID: "a", record.FieldT: int64(1), "qty": 2.0})

	c := New("test", drv)
	rs, ok := c.SafeRead(ctx, "orders", ReadArgs{})
	require.True(t, ok)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, "a", rs.At(0).ID())
}

func TestSafeReadOpensDriverOnDemand(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	drv.seed("orders", record.Record{record.FieldID: "a", record.FieldT: int64(1)})
	c := New("test", drv)

	assert.False(t, drv.IsOpen())
	_, ok := c.SafeRead(ctx, "orders", ReadArgs{})
	assert.True(t, ok)
	assert.True(t, drv.IsOpen())
}

func TestSafeReadReportsErrorOnDriverFailure(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	drv.setOpenFailure(true)

	var gotErr *erralph.Error
	c := New("test", drv, WithCallbacks(Callbacks{
		OnError: func(err *erralph.Error) { gotErr = err },
	}))

	_, ok := c.SafeRead(ctx, "orders", ReadArgs{})
	assert.False(t, ok)
	require.NotNil(t, gotErr)
}

func TestSafeWriteOnEmptyInputIsNoop(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()

	c := New("test", drv, WithStoreAndForward(true))

	err := c.SafeWrite(ctx, "orders", []record.Record{})
	require.NoError(t, err)

	assert.False(t, drv.IsOpen(), "an empty write must not open the backend as a side effect")
	opens, _, writes := drv.stats()
	assert.Zero(t, opens)
	assert.Zero(t, writes)
}

func TestSafeWriteValidatesAgainstBoundModel(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	m := model.New("order", model.Field{Name: "qty", Kind: model.KindInt, Required: true})

	c := New("test", drv, WithModels(map[string]*model.Model{"orders": m}))

	err := c.SafeWrite(ctx, "orders", []record.Record{{"qty": "5"}})
	require.NoError(t, err)

	rs, ok := c.SafeRead(ctx, "orders", ReadArgs{})
	require.True(t, ok)
	require.Equal(t, 1, rs.Len())
	assert.Equal(t, int64(5), rs.At(0)["qty"])
}

func TestSafeWriteRejectsInvalidRecordWithoutBuffering(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	m := model.New("order", model.Field{Name: "qty", Kind: model.KindInt, Required: true})

	c := New("test", drv, WithModels(map[string]*model.Model{"orders": m}), WithStoreAndForward(true))

	err := c.SafeWrite(ctx, "orders", []record.Record{{"wrong_field": 1}})
	assert.Error(t, err)

	opens, _, writes := drv.stats()
	assert.Zero(t, opens)
	assert.Zero(t, writes)
}

func TestSafeWriteBuffersOnDriverFailureAndReplaysOnReconnect(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	drv.setWriteFailure(true)

	c := New("test", drv, WithStoreAndForward(true))
	require.NoError(t, drv.Open(ctx))

	err := c.SafeWrite(ctx, "orders", []record.Record{{record.FieldID: "a", record.FieldT: int64(1), "qty": 1.0}})
	assert.Error(t, err)

	_, _, writesBefore := drv.stats()
	assert.Equal(t, 1, writesBefore)

	drv.setWriteFailure(false)
	c.flushOnConnect(ctx)

	rs, ok := c.SafeRead(ctx, "orders", ReadArgs{})
	require.True(t, ok)
	require.Equal(t, 1, rs.Len())
}

func TestSafeWriteSuppressesUnchangedFieldsUnderReportByException(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	c := New("test", drv, WithReportByException(true))

	require.NoError(t, c.SafeWrite(ctx, "sensors", []record.Record{
		{record.FieldID: "s1", record.FieldT: int64(1), "temp": 20.0},
	}))
	require.NoError(t, c.SafeWrite(ctx, "sensors", []record.Record{
		{record.FieldID: "s1", record.FieldT: int64(2), "temp": 20.0},
	}))

	_, _, writes := drv.stats()
	assert.Equal(t, 1, writes, "the second identical observation should be suppressed before reaching the driver")
}

func TestOpenAsyncFiresConnectCallback(t *testing.T) {
	drv := newFakeDriver()
	var mu sync.Mutex
	connected := 0

	c := New("test", drv, WithTimeStep(5*time.Millisecond), WithCallbacks(Callbacks{
		OnConnect: func() { mu.Lock(); connected++; mu.Unlock() },
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.OpenAsync(ctx)

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return connected > 0
	}, time.Second, 5*time.Millisecond)
}

func TestSubscribeAsyncFiresOnNewData(t *testing.T) {
	drv := newFakeDriver()
	drv.seed("orders", record.Record{record.FieldID: "a", record.FieldT: int64(1)})

	var mu sync.Mutex
	var gotKey string
	c := New("test", drv, WithTimeStep(5*time.Millisecond), WithCallbacks(Callbacks{
		OnNewData: func(key string, rs *record.RecordSet) { mu.Lock(); gotKey = key; mu.Unlock() },
	}))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c.SubscribeAsync(ctx, "orders")

	require.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return gotKey == "orders"
	}, time.Second, 5*time.Millisecond)

	c.Unsubscribe("orders")
}

func TestUnsubscribeIsIdempotent(t *testing.T) {
	drv := newFakeDriver()
	c := New("test", drv, WithTimeStep(time.Hour))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	c.SubscribeAsync(ctx, "orders")
	c.Unsubscribe("orders")
	c.Unsubscribe("orders")
}

func TestWriteAsyncDispatchesToDriver(t *testing.T) {
	ctx := context.Background()
	drv := newFakeDriver()
	c := New("test", drv)

	c.WriteAsync(ctx, "orders", []record.Record{{record.FieldID: "a", record.FieldT: int64(1)}})

	require.Eventually(t, func() bool {
		_, _, writes := drv.stats()
		return writes == 1
	}, time.Second, 5*time.Millisecond)
}
