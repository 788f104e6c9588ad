package events

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublisher_Sync(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store)
	defer p.Close()
	ctx := context.Background()

	require.NoError(t, p.Emit(ctx, Event{Topic: TopicMint, To: "user1", Amount: 100}))
	require.NoError(t, p.Emit(ctx, Event{Topic: TopicBurn, From: "user1", Amount: 40}))

	minted, err := p.List(ctx, TopicMint)
	require.NoError(t, err)
	require.Len(t, minted, 1)
	assert.Equal(t, "user1", minted[0].To)
	assert.False(t, minted[0].Timestamp.IsZero(), "emit stamps events without a timestamp")

	burned, err := p.List(ctx, TopicBurn)
	require.NoError(t, err)
	assert.Len(t, burned, 1)
}

func TestPublisher_TimestampPreserved(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store)
	defer p.Close()

	stamp := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, p.Emit(context.Background(), Event{Topic: TopicPause, Timestamp: stamp}))

	got, err := p.List(context.Background(), TopicPause)
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, stamp, got[0].Timestamp)
}

func TestPublisher_AsyncDrainsOnClose(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, WithAsyncBuffer(16))
	ctx := context.Background()

	for i := range 10 {
		require.NoError(t, p.Emit(ctx, Event{Topic: TopicTransfer, Amount: int64(i + 5)}))
	}
	p.Close()

	got, err := store.ListByTopic(ctx, TopicTransfer)
	require.NoError(t, err)
	assert.Len(t, got, 10, "close flushes the buffer before returning")
}

func TestPublisher_AsyncFullBufferFallsBackToSync(t *testing.T) {
	store := NewInMemoryStore()
	p := NewPublisher(store, WithAsyncBuffer(1))
	ctx := context.Background()

	// With capacity one, overfilling forces the synchronous path; nothing may
	// be dropped either way.
	for range 20 {
		require.NoError(t, p.Emit(ctx, Event{Topic: TopicMint, Amount: 5}))
	}
	p.Close()

	got, err := store.ListByTopic(ctx, TopicMint)
	require.NoError(t, err)
	assert.Len(t, got, 20)
}

func TestPublisher_CloseIsIdempotent(t *testing.T) {
	p := NewPublisher(NewInMemoryStore(), WithAsyncBuffer(4))
	p.Close()
	p.Close()
}

func TestInMemoryStore_TopicIsolation(t *testing.T) {
	store := NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Append(ctx, Event{Topic: TopicMint, Amount: 5}))
	require.NoError(t, store.Append(ctx, Event{Topic: TopicMint, Amount: 6}))
	require.NoError(t, store.Append(ctx, Event{Topic: TopicBurn, Amount: 5}))

	minted, err := store.ListByTopic(ctx, TopicMint)
	require.NoError(t, err)
	require.Len(t, minted, 2)
	assert.Equal(t, int64(5), minted[0].Amount, "events are listed oldest first")

	all, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}
