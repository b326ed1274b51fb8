package observer

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/vk/dagstream/internal/ctxlog"
	"github.com/vk/dagstream/internal/testutil"
)

type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) NodeStarted(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "start:"+ev.NodeID)
}

func (r *recorder) NodeFinished(_ context.Context, ev Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, "finish:"+ev.NodeID)
}

func TestLogger(t *testing.T) {
	buf := &testutil.SafeBuffer{}
	logger := slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	ctx := ctxlog.WithLogger(context.Background(), logger)

	var o Logger
	o.NodeStarted(ctx, Event{RunID: "r1", NodeID: "sum"})
	o.NodeFinished(ctx, Event{RunID: "r1", NodeID: "sum"})
	o.NodeFinished(ctx, Event{RunID: "r1", NodeID: "offset", Err: errors.New("boom")})

	out := buf.String()
	assert.Contains(t, out, `msg="Node started." runID=r1 nodeID=sum`)
	assert.Contains(t, out, `msg="Node finished."`)
	assert.Contains(t, out, `level=ERROR msg="Node failed."`)
	assert.Contains(t, out, "error=boom")
}

func TestMulti(t *testing.T) {
	a, b := &recorder{}, &recorder{}
	o := Multi(a, Nop{}, b)
	ctx := context.Background()

	o.NodeStarted(ctx, Event{NodeID: "x"})
	o.NodeFinished(ctx, Event{NodeID: "x"})

	want := []string{"start:x", "finish:x"}
	assert.Equal(t, want, a.events)
	assert.Equal(t, want, b.events)
}
