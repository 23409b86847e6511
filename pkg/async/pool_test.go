package async

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkinder/config"
	"vkinder/pkg/logger"
)

func TestRunSafePropagatesTraceAndRecovers(t *testing.T) {
	require.NoError(t, Init(config.DefaultAsyncConfig()))
	defer func() { require.NoError(t, Release()) }()

	var wg sync.WaitGroup
	wg.Add(2)

	var gotTrace string
	parent := logger.WithTraceID(context.Background(), "trace-async")
	parentCtx, cancelParent := context.WithCancel(parent)

	RunSafe(parentCtx, func(ctx context.Context) {
		defer wg.Done()
		cancelParent() // parent cancellation must not reach the task
		gotTrace = logger.TraceID(ctx)
		assert.NoError(t, ctx.Err())
	}, time.Second)

	RunSafe(context.Background(), func(ctx context.Context) {
		defer wg.Done()
		panic("boom")
	}, time.Second)

	wg.Wait()
	assert.Equal(t, "trace-async", gotTrace)
}

func TestSubmitBeforeInit(t *testing.T) {
	require.NoError(t, Release())
	assert.ErrorIs(t, Submit(func() {}), ErrNotInitialized)
}
