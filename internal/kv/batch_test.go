package kv

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExecutePipeline(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testClient(t, mr)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	cmds, err := ExecutePipeline(ctx, c, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, "a", "1", 0)
		pipe.Set(ctx, "b", "2", 0)
		pipe.Get(ctx, "a")
		return nil
	})
	require.NoError(t, err)
	require.Len(t, cmds, 3)

	// Each command carries its own result and error, in issuance order.
	get, ok := cmds[2].(*redis.StringCmd)
	require.True(t, ok)
	assert.Equal(t, "1", get.Val())
	assert.NoError(t, get.Err())

	got, err := mr.Get("b")
	require.NoError(t, err)
	assert.Equal(t, "2", got)
}

func TestExecutePipelineEmptyIsNotNil(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testClient(t, mr)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	cmds, err := ExecutePipeline(ctx, c, func(pipe redis.Pipeliner) error {
		return nil
	})
	require.NoError(t, err)
	assert.NotNil(t, cmds)
	assert.Empty(t, cmds)
}

func TestExecutePipelineBeforeConnect(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testClient(t, mr)

	_, err := ExecutePipeline(context.Background(), c, func(pipe redis.Pipeliner) error {
		return nil
	})
	assert.ErrorIs(t, err, ErrNotInitialized)
}

func TestExecutePipelineKeepsCommandErrors(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testClient(t, mr)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	cmds, err := ExecutePipeline(ctx, c, func(pipe redis.Pipeliner) error {
		pipe.Get(ctx, "missing")
		pipe.Set(ctx, "present", "v", 0)
		return nil
	})
	require.NoError(t, err)
	require.Len(t, cmds, 2)
	assert.ErrorIs(t, cmds[0].Err(), redis.Nil)
	assert.NoError(t, cmds[1].Err())
}

func TestExecutePipelineTransportFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testClient(t, mr)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	// Take the server down; exec now fails before any command gets an
	// individual answer.
	mr.Close()

	_, err := ExecutePipeline(ctx, c, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, "a", "1", 0)
		pipe.Get(ctx, "a")
		return nil
	})
	require.Error(t, err)
	var pipeErr *PipelineError
	require.ErrorAs(t, err, &pipeErr)
}

func TestExecuteTransaction(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testClient(t, mr)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	cmds, err := ExecuteTransaction(ctx, c, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, "x", "1", time.Minute)
		pipe.Incr(ctx, "counter")
		return nil
	})
	require.NoError(t, err)
	require.Len(t, cmds, 2)

	got, err := mr.Get("x")
	require.NoError(t, err)
	assert.Equal(t, "1", got)

	incr, ok := cmds[1].(*redis.IntCmd)
	require.True(t, ok)
	assert.Equal(t, int64(1), incr.Val())
}

func TestExecuteTransactionEmptyIsNotNil(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testClient(t, mr)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	cmds, err := ExecuteTransaction(ctx, c, func(pipe redis.Pipeliner) error {
		return nil
	})
	require.NoError(t, err)
	assert.NotNil(t, cmds)
	assert.Empty(t, cmds)
}

func TestExecuteTransactionTransportFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testClient(t, mr)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	mr.Close()

	_, err := ExecuteTransaction(ctx, c, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, "counter")
		return nil
	})
	require.Error(t, err)
	var txErr *TxError
	require.ErrorAs(t, err, &txErr)
}

func TestExecuteTransactionBuildFailure(t *testing.T) {
	mr := miniredis.RunT(t)
	c := testClient(t, mr)
	ctx := context.Background()
	require.NoError(t, c.Connect(ctx))

	_, err := ExecuteTransaction(ctx, c, func(pipe redis.Pipeliner) error {
		return assert.AnError
	})
	require.Error(t, err)
	var txErr *TxError
	require.ErrorAs(t, err, &txErr)
}
