package mq

import (
	"context"
	"time"

	"vkinder/pkg/logger"
)

// ==================== Redis task ====================

type CommandType string

const (
	CmdSimple   CommandType = "simple"   // DEL, SADD, SREM...
	CmdPipeline CommandType = "pipeline" // several commands sent together
)

// DefaultMaxRetries is the retry budget of a freshly built task.
const DefaultMaxRetries = 3

// RedisTask is the Kafka payload describing a failed cache write to replay.
type RedisTask struct {
	Type CommandType `json:"type"`

	// simple command, e.g. DEL key
	Command string        `json:"command,omitempty"`
	Args    []interface{} `json:"args,omitempty"`

	// pipeline
	PipelineCmds []RedisCmd `json:"pipeline_cmds,omitempty"`

	// tracing and retry control
	TraceID     string    `json:"trace_id,omitempty"`
	UserID      int64     `json:"user_id,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
	RetryCount  int       `json:"retry_count"`
	MaxRetries  int       `json:"max_retries"`
	OriginalErr string    `json:"original_err"`
	Source      string    `json:"source,omitempty"`
}

type RedisCmd struct {
	Command string        `json:"command"`
	Args    []interface{} `json:"args"`
}

// ==================== Builders ====================

// BuildDelTask builds a DEL task.
func BuildDelTask(key string) RedisTask {
	return RedisTask{
		Type:       CmdSimple,
		Command:    "del",
		Args:       []interface{}{key},
		Timestamp:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// BuildSAddTask builds an SADD task.
func BuildSAddTask(key string, members ...interface{}) RedisTask {
	args := []interface{}{key}
	args = append(args, members...)
	return RedisTask{
		Type:       CmdSimple,
		Command:    "sadd",
		Args:       args,
		Timestamp:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// BuildSRemTask builds an SREM task.
func BuildSRemTask(key string, members ...interface{}) RedisTask {
	args := []interface{}{key}
	args = append(args, members...)
	return RedisTask{
		Type:       CmdSimple,
		Command:    "srem",
		Args:       args,
		Timestamp:  time.Now(),
		MaxRetries: DefaultMaxRetries,
	}
}

// BuildPipelineTask builds a pipeline task.
func BuildPipelineTask(cmds []RedisCmd) RedisTask {
	return RedisTask{
		Type:         CmdPipeline,
		PipelineCmds: cmds,
		Timestamp:    time.Now(),
		MaxRetries:   DefaultMaxRetries,
	}
}

// ==================== Chain methods ====================

// WithContext copies the trace id of ctx onto the task.
func (t RedisTask) WithContext(ctx context.Context) RedisTask {
	if traceID := logger.TraceID(ctx); traceID != "" {
		t.TraceID = traceID
	}
	return t
}

// WithUser tags the task with the owner it belongs to.
func (t RedisTask) WithUser(userID int64) RedisTask {
	t.UserID = userID
	return t
}

// WithError records the failure that produced the task.
func (t RedisTask) WithError(err error) RedisTask {
	if err != nil {
		t.OriginalErr = err.Error()
	}
	return t
}

// WithSource records the repository method that produced the task.
func (t RedisTask) WithSource(source string) RedisTask {
	t.Source = source
	return t
}

// WithMaxRetries overrides the retry budget.
func (t RedisTask) WithMaxRetries(maxRetries int) RedisTask {
	t.MaxRetries = maxRetries
	return t
}

// partitionKey keeps tasks of one owner ordered on a single partition.
func (t RedisTask) partitionKey() []byte {
	if t.UserID != 0 {
		return []byte(formatInt(t.UserID))
	}
	if t.Command != "" && len(t.Args) > 0 {
		if k, ok := t.Args[0].(string); ok {
			return []byte(k)
		}
	}
	return nil
}
