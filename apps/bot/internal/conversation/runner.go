package conversation

import (
	"context"
	"time"

	"vkinder/apps/bot/internal/vkapi"
	"vkinder/pkg/logger"
)

// chatPeerOffset is where VK starts numbering group chat peers.
const chatPeerOffset = 2000000000

// EventSource yields incoming events; Reset drops the upstream session so the next poll rebuilds it.
type EventSource interface {
	Poll(ctx context.Context) ([]vkapi.Event, error)
	Reset()
}

// MessageHandler handles one private message.
type MessageHandler interface {
	HandleMessage(ctx context.Context, msg vkapi.Message) error
}

// Runner feeds events to the handler one at a time, in arrival order.
type Runner struct {
	source         EventSource
	handler        MessageHandler
	reconnectDelay time.Duration
}

// NewRunner builds a runner; reconnectDelay is the pause after a failed poll.
func NewRunner(source EventSource, handler MessageHandler, reconnectDelay time.Duration) *Runner {
	if reconnectDelay <= 0 {
		reconnectDelay = time.Second
	}
	return &Runner{source: source, handler: handler, reconnectDelay: reconnectDelay}
}

// Run polls until ctx is cancelled. Poll and handler failures never stop the loop;
// connection failures additionally reset the upstream session.
func (r *Runner) Run(ctx context.Context) error {
	logger.Info(ctx, "bot is listening for messages")

	for {
		if ctx.Err() != nil {
			return nil
		}

		events, err := r.source.Poll(ctx)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			if vkapi.IsLongPollExpired(err) {
				continue
			}
			logger.Warn(ctx, "long poll failed", logger.ErrorField("error", err))
			if vkapi.IsConnectionError(err) {
				r.source.Reset()
			}
			if !sleepCtx(ctx, r.reconnectDelay) {
				return nil
			}
			continue
		}

		for _, ev := range events {
			if ev.Type != vkapi.EventMessageNew || ev.Message == nil {
				continue
			}
			if ev.Message.PeerID >= chatPeerOffset {
				// group chats are not served
				continue
			}
			if err := r.handler.HandleMessage(ctx, *ev.Message); err != nil && vkapi.IsConnectionError(err) {
				logger.Warn(ctx, "connection lost while handling, resetting session", logger.ErrorField("error", err))
				r.source.Reset()
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
