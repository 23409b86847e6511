package repository

import (
	"context"
	"errors"
	"fmt"

	"vkinder/apps/bot/mq"
	"vkinder/pkg/logger"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// ==================== Repository errors ====================

var (
	// ErrRecordNotFound record does not exist
	ErrRecordNotFound = errors.New("record not found")

	// ErrDatabase generic database failure
	ErrDatabase = errors.New("database error")

	// ErrRedisNil redis key does not exist
	ErrRedisNil = errors.New("redis: key not found")

	// ErrRedis generic redis failure
	ErrRedis = errors.New("redis error")

	// ErrInvalidState a write carried a state outside the closed set
	ErrInvalidState = errors.New("invalid bot state")
)

// ==================== Wrapping ====================

// wrapError maps err through rules, falling back to defaultErr.
func wrapError(err error, rules map[error]error, defaultErr error) error {
	if err == nil {
		return nil
	}

	for source, target := range rules {
		if errors.Is(err, source) {
			return target
		}
	}

	// keep the original text for logs
	return fmt.Errorf("%w: %v", defaultErr, err)
}

var (
	dbErrorRules = map[error]error{
		gorm.ErrRecordNotFound: ErrRecordNotFound,
	}

	redisErrorRules = map[error]error{
		redis.Nil: ErrRedisNil,
	}
)

// WrapDBError wraps a gorm error.
func WrapDBError(err error) error {
	return wrapError(err, dbErrorRules, ErrDatabase)
}

// WrapRedisError wraps a go-redis error.
func WrapRedisError(err error) error {
	return wrapError(err, redisErrorRules, ErrRedis)
}

// LogRedisError logs a redis failure the caller degrades from.
func LogRedisError(ctx context.Context, err error) {
	logger.Error(ctx, "redis operation failed", logger.ErrorField("error", err))
}

// LogAndRetryRedisError logs a failed cache write and ships it to the Kafka retry queue.
func LogAndRetryRedisError(ctx context.Context, task mq.RedisTask, err error) {
	// 1. log
	logger.Warn(ctx, "redis write failed, sending to retry queue",
		logger.ErrorField("error", err),
		logger.String("task_type", string(task.Type)),
		logger.String("command", task.Command),
		logger.String("source", task.Source),
	)

	// 2. attach trace and error
	task = task.WithContext(ctx).WithError(err)

	// 3. publish; give up when Kafka is down too
	if kafkaErr := mq.SendRedisTask(ctx, task); kafkaErr != nil {
		logger.Error(ctx, "redis retry task not published, giving up",
			logger.ErrorField("kafka_error", kafkaErr),
			logger.ErrorField("original_error", err),
			logger.String("task_type", string(task.Type)),
		)
	}
}
