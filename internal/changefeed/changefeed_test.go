package changefeed

import (
	"context"
	"testing"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNotifierPublishesThroughFeed(t *testing.T) {
	logger := zap.NewNop().Sugar()
	feed := NewMemoryFeed()

	n := NewNotifier(logger, feed, "node-a")
	n.now = func() time.Time { return time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC) }

	require.NoError(t, n.ContentChanged(context.Background(), "index"))
	require.NoError(t, n.ContentChanged(context.Background(), "collection_blog"))
	require.NoError(t, feed.Close(context.Background()))

	var got []Event
	Consume(context.Background(), logger, feed, func(ev Event) { got = append(got, ev) })

	require.Len(t, got, 2)
	assert.Equal(t, "index", got[0].Key)
	assert.Equal(t, "collection_blog", got[1].Key)
	assert.Equal(t, "node-a", got[0].Source)
	assert.NotEqual(t, got[0].ID, got[1].ID)

	_, err := ulid.Parse(got[0].ID)
	assert.NoError(t, err)
}

func TestPublishAfterClose(t *testing.T) {
	feed := NewMemoryFeed()
	require.NoError(t, feed.Close(context.Background()))
	require.NoError(t, feed.Close(context.Background()))

	assert.ErrorIs(t, feed.Publish(context.Background(), Event{Key: "index"}), ErrClosed)
}

func TestConsumeStopsOnContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})

	go func() {
		Consume(ctx, zap.NewNop().Sugar(), NewMemoryFeed(), func(Event) {})
		close(done)
	}()

	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("consumer did not stop")
	}
}
