package mq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"vkinder/pkg/logger"

	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
)

// MessageReader is the part of *kafka.Reader the consumer needs.
type MessageReader interface {
	FetchMessage(ctx context.Context) (kafka.Message, error)
	CommitMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// RedisRetryConsumer replays failed cache writes from Kafka.
// A task that fails again is re-published with RetryCount+1 until MaxRetries is reached, then dropped.
type RedisRetryConsumer struct {
	reader      MessageReader
	redisClient *redis.Client
	requeue     func(ctx context.Context, task RedisTask) error
	backoff     time.Duration
}

// NewRedisRetryConsumer builds a consumer; requeue defaults to SendRedisTask.
func NewRedisRetryConsumer(reader MessageReader, redisClient *redis.Client) *RedisRetryConsumer {
	return &RedisRetryConsumer{
		reader:      reader,
		redisClient: redisClient,
		requeue:     SendRedisTask,
		backoff:     500 * time.Millisecond,
	}
}

// Run consumes until ctx is cancelled.
func (c *RedisRetryConsumer) Run(ctx context.Context) error {
	for {
		msg, err := c.reader.FetchMessage(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			logger.Warn(ctx, "redis retry fetch failed", logger.ErrorField("error", err))
			select {
			case <-ctx.Done():
				return nil
			case <-time.After(c.backoff):
			}
			continue
		}

		c.handle(ctx, msg)

		if err := c.reader.CommitMessages(ctx, msg); err != nil && ctx.Err() == nil {
			logger.Warn(ctx, "redis retry commit failed", logger.ErrorField("error", err))
		}
	}
}

// Close closes the underlying reader.
func (c *RedisRetryConsumer) Close() error {
	return c.reader.Close()
}

func (c *RedisRetryConsumer) handle(ctx context.Context, msg kafka.Message) {
	var task RedisTask
	if err := json.Unmarshal(msg.Value, &task); err != nil {
		logger.Error(ctx, "redis retry task malformed, dropped",
			logger.ErrorField("error", err),
			logger.Int64("offset", msg.Offset),
		)
		return
	}

	taskCtx := logger.WithTraceID(ctx, task.TraceID)

	err := ExecuteRedisTask(taskCtx, c.redisClient, task)
	if err == nil {
		logger.Debug(taskCtx, "redis retry task applied",
			logger.String("source", task.Source),
			logger.Int("retry_count", task.RetryCount),
		)
		return
	}

	task.RetryCount++
	task.OriginalErr = err.Error()
	if task.RetryCount >= task.MaxRetries {
		logger.Error(taskCtx, "redis retry task exhausted, dropped",
			logger.ErrorField("error", err),
			logger.String("source", task.Source),
			logger.Int("retry_count", task.RetryCount),
		)
		return
	}

	if rqErr := c.requeue(taskCtx, task); rqErr != nil {
		logger.Error(taskCtx, "redis retry requeue failed",
			logger.ErrorField("error", rqErr),
			logger.String("source", task.Source),
		)
	}
}

// ErrUnknownTaskType is returned for a task type the executor does not understand.
var ErrUnknownTaskType = errors.New("unknown redis task type")

// ExecuteRedisTask applies task against client.
func ExecuteRedisTask(ctx context.Context, client *redis.Client, task RedisTask) error {
	if client == nil {
		return errors.New("redis client is nil")
	}

	switch task.Type {
	case CmdSimple:
		return client.Do(ctx, commandArgs(task.Command, task.Args)...).Err()
	case CmdPipeline:
		pipe := client.TxPipeline()
		for _, cmd := range task.PipelineCmds {
			pipe.Do(ctx, commandArgs(cmd.Command, cmd.Args)...)
		}
		_, err := pipe.Exec(ctx)
		return err
	default:
		return fmt.Errorf("%w: %q", ErrUnknownTaskType, task.Type)
	}
}

// commandArgs flattens a command; JSON turns integers into float64, which redis would reject for TTLs.
func commandArgs(command string, args []interface{}) []interface{} {
	out := make([]interface{}, 0, len(args)+1)
	out = append(out, strings.ToLower(command))
	for _, a := range args {
		if f, ok := a.(float64); ok && f == float64(int64(f)) {
			out = append(out, int64(f))
			continue
		}
		out = append(out, a)
	}
	return out
}
