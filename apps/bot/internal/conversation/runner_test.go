package conversation

import (
	"context"
	"io"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vkinder/apps/bot/internal/vkapi"
)

// scriptedSource replays poll results in order, then cancels the run.
type scriptedSource struct {
	mu      sync.Mutex
	results []pollResult
	cancel  context.CancelFunc
	resets  int
}

type pollResult struct {
	events []vkapi.Event
	err    error
}

func (s *scriptedSource) Poll(ctx context.Context) ([]vkapi.Event, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.results) == 0 {
		s.cancel()
		return nil, ctx.Err()
	}
	next := s.results[0]
	s.results = s.results[1:]
	return next.events, next.err
}

func (s *scriptedSource) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.resets++
}

type recordingHandler struct {
	handled []vkapi.Message
	errFn   func(msg vkapi.Message) error
}

func (h *recordingHandler) HandleMessage(_ context.Context, msg vkapi.Message) error {
	h.handled = append(h.handled, msg)
	if h.errFn != nil {
		return h.errFn(msg)
	}
	return nil
}

func messageEvent(peerID int64, text string) vkapi.Event {
	return vkapi.Event{
		Type:    vkapi.EventMessageNew,
		Message: &vkapi.Message{FromID: peerID, PeerID: peerID, Text: text},
	}
}

func runScript(t *testing.T, handler *recordingHandler, results ...pollResult) *scriptedSource {
	t.Helper()
	initConvTestLogger()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	source := &scriptedSource{results: results, cancel: cancel}

	done := make(chan error, 1)
	go func() { done <- NewRunner(source, handler, time.Millisecond).Run(ctx) }()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop")
	}
	return source
}

func TestRunnerHandlesPrivateMessagesInOrder(t *testing.T) {
	handler := &recordingHandler{}

	runScript(t, handler,
		pollResult{events: []vkapi.Event{
			messageEvent(1, "первый"),
			{Type: "message_reply", Message: &vkapi.Message{FromID: 1, PeerID: 1}},
			messageEvent(2000000001, "в беседе"),
			{Type: vkapi.EventMessageNew},
			messageEvent(2, "второй"),
		}},
		pollResult{events: []vkapi.Event{messageEvent(1, "третий")}},
	)

	require.Len(t, handler.handled, 3)
	assert.Equal(t, "первый", handler.handled[0].Text)
	assert.Equal(t, "второй", handler.handled[1].Text)
	assert.Equal(t, "третий", handler.handled[2].Text)
}

func TestRunnerSurvivesPollFailures(t *testing.T) {
	handler := &recordingHandler{}
	connErr := &url.Error{Op: "Get", URL: "https://lp.vk.com", Err: io.EOF}

	source := runScript(t, handler,
		pollResult{err: connErr},
		pollResult{err: assert.AnError},
		pollResult{events: []vkapi.Event{messageEvent(1, "после сбоя")}},
	)

	// only the connection failure rebuilds the session
	assert.Equal(t, 1, source.resets)
	require.Len(t, handler.handled, 1)
	assert.Equal(t, "после сбоя", handler.handled[0].Text)
}

func TestRunnerResetsAfterHandlerConnectionError(t *testing.T) {
	handler := &recordingHandler{errFn: func(msg vkapi.Message) error {
		if msg.Text == "обрыв" {
			return &url.Error{Op: "Post", URL: "https://api.vk.com", Err: io.ErrUnexpectedEOF}
		}
		return assert.AnError
	}}

	source := runScript(t, handler,
		pollResult{events: []vkapi.Event{messageEvent(1, "ошибка"), messageEvent(1, "обрыв"), messageEvent(2, "дальше")}},
	)

	assert.Equal(t, 1, source.resets)
	assert.Len(t, handler.handled, 3)
}

func TestRunnerStopsOnCancelledContext(t *testing.T) {
	initConvTestLogger()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	source := &scriptedSource{cancel: cancel}
	require.NoError(t, NewRunner(source, &recordingHandler{}, 0).Run(ctx))
}

// ==================== session store ====================

func TestSessionStore(t *testing.T) {
	store := NewSessionStore(2, time.Hour)

	_, ok := store.Peek(1)
	assert.False(t, ok)

	store.Get(1).Favorites = []int64{10}
	sess, ok := store.Peek(1)
	require.True(t, ok)
	assert.Equal(t, []int64{10}, sess.Favorites)

	// bounded: the least recently used entry goes first
	store.Get(2)
	store.Get(3)
	assert.Equal(t, 2, store.Len())
	_, ok = store.Peek(1)
	assert.False(t, ok)

	store.Drop(2)
	_, ok = store.Peek(2)
	assert.False(t, ok)
}

func TestSessionStoreExpires(t *testing.T) {
	store := NewSessionStore(10, 20*time.Millisecond)
	store.Get(1).Favorites = []int64{10}

	assert.Eventually(t, func() bool {
		_, ok := store.Peek(1)
		return !ok
	}, time.Second, 10*time.Millisecond)
}
