package socketio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dagstream/internal/observer"
)

type emitted struct {
	event   string
	payload map[string]any
}

func TestPublisher(t *testing.T) {
	var got []emitted
	closed := 0
	p := newPublisher(
		func(event string, payload map[string]any) {
			got = append(got, emitted{event, payload})
		},
		func() { closed++ },
	)
	ctx := context.Background()

	p.NodeStarted(ctx, observer.Event{RunID: "r1", NodeID: "sum", DisplayName: "sum", Worker: 2})
	p.NodeFinished(ctx, observer.Event{RunID: "r1", NodeID: "sum", DisplayName: "sum", Worker: 2, Elapsed: 1500 * time.Millisecond})
	p.NodeFinished(ctx, observer.Event{RunID: "r1", NodeID: "offset", Err: errors.New("boom")})

	require.Len(t, got, 3)
	assert.Equal(t, EventNodeStarted, got[0].event)
	assert.Equal(t, "running", got[0].payload["status"])
	assert.Equal(t, 2, got[0].payload["worker"])

	assert.Equal(t, EventNodeFinished, got[1].event)
	assert.Equal(t, "completed", got[1].payload["status"])
	assert.Equal(t, int64(1500), got[1].payload["elapsed_ms"])
	assert.NotContains(t, got[1].payload, "error")

	assert.Equal(t, "failed", got[2].payload["status"])
	assert.Equal(t, "boom", got[2].payload["error"])

	require.NoError(t, p.Close())
	require.NoError(t, p.Close())
	assert.Equal(t, 1, closed)

	p.NodeStarted(ctx, observer.Event{NodeID: "late"})
	assert.Len(t, got, 3, "events after Close are dropped")
}

func TestDialRejectsBadURL(t *testing.T) {
	for _, u := range []string{"://missing-scheme", "localhost:3000", ""} {
		_, err := Dial(context.Background(), Config{URL: u})
		assert.Error(t, err, u)
	}
}

func TestConnectResultKeepsFirstOutcome(t *testing.T) {
	res := newConnectResult()
	first := errors.New("connect_error")

	reported := make(chan struct{})
	go func() {
		res.report(first)
		res.report(nil)
		res.report(errors.New("again"))
		close(reported)
	}()

	select {
	case <-reported:
	case <-time.After(time.Second):
		t.Fatal("report blocked after the first outcome")
	}
	assert.Equal(t, first, <-res)
	assert.Empty(t, res)
}
