package inmemorystore

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vk/dagstream/internal/node"
)

func TestStatus(t *testing.T) {
	s := New()
	ctx := context.Background()

	status, err := s.GetStatus(ctx, "offset")
	require.NoError(t, err)
	assert.Equal(t, node.StatusPending, status)

	require.NoError(t, s.SetStatus(ctx, "offset", node.StatusRunning))
	status, err = s.GetStatus(ctx, "offset")
	require.NoError(t, err)
	assert.Equal(t, node.StatusRunning, status)

	assert.Equal(t, map[string]node.Status{"offset": node.StatusRunning}, s.Snapshot())
}

func TestOutput(t *testing.T) {
	s := New()
	ctx := context.Background()

	output, err := s.GetOutput(ctx, "sum")
	require.NoError(t, err)
	assert.Nil(t, output)

	require.NoError(t, s.SetOutput(ctx, "sum", []int{4, 5}))
	output, err = s.GetOutput(ctx, "sum")
	require.NoError(t, err)
	assert.Equal(t, []int{4, 5}, output)
}

func TestError(t *testing.T) {
	s := New()
	ctx := context.Background()

	nodeErr, err := s.GetError(ctx, "sum")
	require.NoError(t, err)
	assert.Nil(t, nodeErr)

	want := errors.New("division by zero")
	require.NoError(t, s.SetError(ctx, "sum", want))
	nodeErr, err = s.GetError(ctx, "sum")
	require.NoError(t, err)
	assert.Equal(t, want, nodeErr)
}

// TestConcurrentAccess checks that parallel writers to distinct ids never
// lose updates.
func TestConcurrentAccess(t *testing.T) {
	s := New()
	ctx := context.Background()
	const workers = 100
	var wg sync.WaitGroup

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("node_%d", i)
			_ = s.SetStatus(ctx, id, node.StatusCompleted)
			_ = s.SetOutput(ctx, id, i)
			_ = s.SetError(ctx, id, fmt.Errorf("error for node %d", i))
		}(i)
	}
	wg.Wait()

	wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func(i int) {
			defer wg.Done()
			id := fmt.Sprintf("node_%d", i)

			status, err := s.GetStatus(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, node.StatusCompleted, status)

			output, err := s.GetOutput(ctx, id)
			assert.NoError(t, err)
			assert.Equal(t, i, output)

			nodeErr, err := s.GetError(ctx, id)
			assert.NoError(t, err)
			assert.EqualError(t, nodeErr, fmt.Sprintf("error for node %d", i))
		}(i)
	}
	wg.Wait()
	assert.Len(t, s.Snapshot(), workers)
}
