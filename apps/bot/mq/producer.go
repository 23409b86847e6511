package mq

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"sync"
)

// ErrProducerNotSet is returned when no retry producer was installed (Kafka disabled).
var ErrProducerNotSet = errors.New("redis retry producer not set")

// Sender publishes one keyed message; *kafka.Producer satisfies it.
type Sender interface {
	Send(ctx context.Context, key, value []byte) error
}

var (
	producerMu     sync.RWMutex
	globalProducer Sender
)

// SetGlobalProducer installs the producer used by SendRedisTask. nil disables retries.
func SetGlobalProducer(p Sender) {
	producerMu.Lock()
	defer producerMu.Unlock()
	globalProducer = p
}

// SendRedisTask publishes task to the retry topic.
func SendRedisTask(ctx context.Context, task RedisTask) error {
	producerMu.RLock()
	p := globalProducer
	producerMu.RUnlock()

	if p == nil {
		return ErrProducerNotSet
	}

	payload, err := json.Marshal(task)
	if err != nil {
		return err
	}
	return p.Send(ctx, task.partitionKey(), payload)
}

func formatInt(v int64) string {
	return strconv.FormatInt(v, 10)
}
