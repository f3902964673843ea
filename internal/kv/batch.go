package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// BuildFunc enqueues commands on the buffer without executing them
// individually; execution happens once, in Execute*.
type BuildFunc func(pipe redis.Pipeliner) error

// ExecutePipeline runs the enqueued commands as one best-effort pipeline
// and returns the ordered commands, each carrying its own result and
// error. The slice is empty, never nil, when the store returns nothing.
// Individual command failures live on the commands; a transport failure,
// where no command got an answer of its own, is returned wrapped in
// *PipelineError.
func ExecutePipeline(ctx context.Context, c *Client, build BuildFunc) ([]redis.Cmder, error) {
	pipe, err := c.Pipeline()
	if err != nil {
		return nil, err
	}
	if err := build(pipe); err != nil {
		return nil, &PipelineError{Err: err}
	}

	cmds, execErr := pipe.Exec(ctx)
	if execErr != nil && execErr != redis.Nil && transportFailed(cmds, execErr) {
		c.log.Error("pipeline execution failed", "error", execErr.Error())
		return nil, &PipelineError{Err: execErr}
	}
	if cmds == nil {
		cmds = []redis.Cmder{}
	}
	c.log.Debug("pipeline executed", "commands", len(cmds))
	return cmds, nil
}

// ExecuteTransaction runs the enqueued commands atomically (MULTI/EXEC):
// all of them execute or none do. Result shape matches ExecutePipeline;
// transport failures are wrapped in *TxError.
func ExecuteTransaction(ctx context.Context, c *Client, build BuildFunc) ([]redis.Cmder, error) {
	rdb, err := c.Redis()
	if err != nil {
		return nil, err
	}

	cmds, execErr := rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		return build(pipe)
	})
	if execErr != nil && execErr != redis.Nil && transportFailed(cmds, execErr) {
		c.log.Error("transaction execution failed", "error", execErr.Error())
		return nil, &TxError{Err: execErr}
	}
	if cmds == nil {
		cmds = []redis.Cmder{}
	}
	c.log.Debug("transaction executed", "commands", len(cmds))
	return cmds, nil
}

// transportFailed reports whether exec failed outright: nothing came back,
// or the exec error was stamped onto every command instead of any command
// getting an individual answer.
func transportFailed(cmds []redis.Cmder, execErr error) bool {
	if len(cmds) == 0 {
		return true
	}
	for _, cmd := range cmds {
		if !errors.Is(cmd.Err(), execErr) {
			return false
		}
	}
	return true
}
