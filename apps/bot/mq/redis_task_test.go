package mq

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkinder/pkg/logger"
)

type fakeSender struct {
	mu   sync.Mutex
	keys [][]byte
	msgs [][]byte
	err  error
}

func (f *fakeSender) Send(_ context.Context, key, value []byte) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	f.msgs = append(f.msgs, value)
	return f.err
}

type fakeReader struct {
	msgs      []kafka.Message
	committed int
}

func (f *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(f.msgs) == 0 {
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := f.msgs[0]
	f.msgs = f.msgs[1:]
	return m, nil
}

func (f *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	f.committed += len(msgs)
	return nil
}

func (f *fakeReader) Close() error { return nil }

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestSendRedisTaskWithoutProducer(t *testing.T) {
	SetGlobalProducer(nil)
	assert.ErrorIs(t, SendRedisTask(context.Background(), BuildDelTask("k")), ErrProducerNotSet)
}

func TestSendRedisTaskPublishesJSON(t *testing.T) {
	sender := &fakeSender{}
	SetGlobalProducer(sender)
	defer SetGlobalProducer(nil)

	ctx := logger.WithTraceID(context.Background(), "trace-mq")
	task := BuildSAddTask("vkinder:blacklist:7", "100").WithUser(7).WithContext(ctx).WithSource("test")
	require.NoError(t, SendRedisTask(ctx, task))

	require.Len(t, sender.msgs, 1)
	assert.Equal(t, []byte("7"), sender.keys[0])

	var decoded RedisTask
	require.NoError(t, json.Unmarshal(sender.msgs[0], &decoded))
	assert.Equal(t, "trace-mq", decoded.TraceID)
	assert.Equal(t, "sadd", decoded.Command)
	assert.Equal(t, DefaultMaxRetries, decoded.MaxRetries)
}

func TestExecuteRedisTaskPipeline(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()

	task := BuildPipelineTask([]RedisCmd{
		{Command: "del", Args: []interface{}{"set"}},
		{Command: "sadd", Args: []interface{}{"set", "1", "2"}},
		{Command: "expire", Args: []interface{}{"set", 60}},
	})

	// go through JSON the way the consumer does
	raw, err := json.Marshal(task)
	require.NoError(t, err)
	var decoded RedisTask
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.NoError(t, ExecuteRedisTask(ctx, client, decoded))
	members, err := mr.Members("set")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"1", "2"}, members)
	assert.Equal(t, 60*time.Second, mr.TTL("set"))
}

func TestExecuteRedisTaskUnknownType(t *testing.T) {
	_, client := newTestRedis(t)
	err := ExecuteRedisTask(context.Background(), client, RedisTask{Type: "lua"})
	assert.ErrorIs(t, err, ErrUnknownTaskType)
}

func TestConsumerAppliesAndRequeues(t *testing.T) {
	mr, client := newTestRedis(t)

	okTask, _ := json.Marshal(BuildSAddTask("ok", "1"))
	// WRONGTYPE: "str" holds a string, SADD fails
	require.NoError(t, mr.Set("str", "x"))
	badTask, _ := json.Marshal(BuildSAddTask("str", "1"))
	lastTask, _ := json.Marshal(BuildSAddTask("str", "1").WithMaxRetries(1))

	reader := &fakeReader{msgs: []kafka.Message{
		{Value: okTask}, {Value: badTask}, {Value: lastTask}, {Value: []byte("{broken")},
	}}
	consumer := NewRedisRetryConsumer(reader, client)

	var requeued []RedisTask
	consumer.requeue = func(_ context.Context, task RedisTask) error {
		requeued = append(requeued, task)
		return nil
	}

	ctx, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
	defer cancel()
	require.NoError(t, consumer.Run(ctx))

	assert.Equal(t, 4, reader.committed)
	assert.True(t, mr.Exists("ok"))
	require.Len(t, requeued, 1)
	assert.Equal(t, 1, requeued[0].RetryCount)
	assert.NotEmpty(t, requeued[0].OriginalErr)
}

func TestSendRedisTaskPropagatesSenderError(t *testing.T) {
	SetGlobalProducer(&fakeSender{err: io.ErrClosedPipe})
	defer SetGlobalProducer(nil)
	err := SendRedisTask(context.Background(), BuildDelTask("k"))
	assert.True(t, errors.Is(err, io.ErrClosedPipe))
}
