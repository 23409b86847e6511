package vkapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"

	"vkinder/config"
	"vkinder/pkg/logger"

	"github.com/bwmarrin/snowflake"
)

// Event types delivered by the Bots Long Poll API.
const (
	EventMessageNew = "message_new"
)

// Message is an incoming private message.
type Message struct {
	ID     int64  `json:"id"`
	Date   int64  `json:"date"`
	FromID int64  `json:"from_id"`
	PeerID int64  `json:"peer_id"`
	Text   string `json:"text"`
}

// Event is one long poll update.
type Event struct {
	Type    string
	GroupID int64
	Message *Message
}

// GroupSession talks to VK on behalf of the community: it sends messages and polls events.
// Poll is not safe for concurrent use; SendMessage is.
type GroupSession struct {
	api     *Client
	groupID int64
	wait    int
	lp      *http.Client
	ids     *snowflake.Node

	mu     sync.Mutex
	server string
	key    string
	ts     string
}

// NewGroupSession builds a session over the community token.
func NewGroupSession(cfg config.VKConfig, api *Client, node *snowflake.Node) *GroupSession {
	wait := cfg.LongPollWait
	if wait <= 0 {
		wait = 25
	}
	return &GroupSession{
		api:     api,
		groupID: cfg.GroupID,
		wait:    wait,
		lp:      &http.Client{Timeout: time.Duration(wait+10) * time.Second},
		ids:     node,
	}
}

// SendMessage delivers text to peerID with an optional keyboard and attachment references.
func (s *GroupSession) SendMessage(ctx context.Context, peerID int64, text string, keyboard *Keyboard, attachments []string) error {
	params := url.Values{}
	params.Set("peer_id", strconv.FormatInt(peerID, 10))
	params.Set("message", text)
	// random_id is an int32 on the VK side
	params.Set("random_id", strconv.FormatInt(s.ids.Generate().Int64()&0x7fffffff, 10))
	if keyboard != nil {
		raw, err := keyboard.JSON()
		if err != nil {
			return err
		}
		params.Set("keyboard", raw)
	}
	if len(attachments) > 0 {
		params.Set("attachment", strings.Join(attachments, ","))
	}
	return s.api.Call(ctx, "messages.send", params, nil)
}

// Reset drops the long poll server so the next Poll requests a fresh one.
func (s *GroupSession) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.server, s.key, s.ts = "", "", ""
}

type longPollResponse struct {
	TS      json.RawMessage   `json:"ts"`
	Updates []json.RawMessage `json:"updates"`
	Failed  int               `json:"failed"`
}

type rawUpdate struct {
	Type    string          `json:"type"`
	GroupID int64           `json:"group_id"`
	Object  json.RawMessage `json:"object"`
}

var errLongPollExpired = errors.New("long poll key expired")

// Poll blocks for one long poll round and returns its events.
func (s *GroupSession) Poll(ctx context.Context) ([]Event, error) {
	if err := s.ensureServer(ctx); err != nil {
		return nil, err
	}

	s.mu.Lock()
	server, key, ts := s.server, s.key, s.ts
	s.mu.Unlock()

	q := url.Values{}
	q.Set("act", "a_check")
	q.Set("key", key)
	q.Set("ts", ts)
	q.Set("wait", strconv.Itoa(s.wait))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, server+"?"+q.Encode(), nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.lp.Do(req)
	if err != nil {
		return nil, fmt.Errorf("long poll: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("long poll: http status %d", resp.StatusCode)
	}

	var lpResp longPollResponse
	if err := json.NewDecoder(resp.Body).Decode(&lpResp); err != nil {
		return nil, fmt.Errorf("long poll decode: %w", err)
	}

	switch lpResp.Failed {
	case 0:
	case 1:
		// history is outdated: continue from the returned ts
		s.setTS(lpResp.TS)
		return nil, nil
	default:
		// 2: key expired, 3: information lost
		s.Reset()
		logger.Info(ctx, "long poll server expired", logger.Int("failed", lpResp.Failed))
		return nil, errLongPollExpired
	}

	s.setTS(lpResp.TS)

	events := make([]Event, 0, len(lpResp.Updates))
	for _, raw := range lpResp.Updates {
		var u rawUpdate
		if err := json.Unmarshal(raw, &u); err != nil {
			continue
		}
		ev := Event{Type: u.Type, GroupID: u.GroupID}
		if u.Type == EventMessageNew {
			var obj struct {
				Message Message `json:"message"`
			}
			if err := json.Unmarshal(u.Object, &obj); err != nil {
				continue
			}
			ev.Message = &obj.Message
		}
		events = append(events, ev)
	}
	return events, nil
}

// IsLongPollExpired reports whether Poll gave up because the server must be re-requested.
func IsLongPollExpired(err error) bool {
	return errors.Is(err, errLongPollExpired)
}

func (s *GroupSession) ensureServer(ctx context.Context) error {
	s.mu.Lock()
	ready := s.server != ""
	s.mu.Unlock()
	if ready {
		return nil
	}

	params := url.Values{}
	params.Set("group_id", strconv.FormatInt(s.groupID, 10))

	var resp struct {
		Key    string          `json:"key"`
		Server string          `json:"server"`
		TS     json.RawMessage `json:"ts"`
	}
	if err := s.api.Call(ctx, "groups.getLongPollServer", params, &resp); err != nil {
		return err
	}

	s.mu.Lock()
	s.server, s.key = resp.Server, resp.Key
	s.mu.Unlock()
	s.setTS(resp.TS)
	return nil
}

// setTS accepts ts as a JSON string or number.
func (s *GroupSession) setTS(raw json.RawMessage) {
	if len(raw) == 0 {
		return
	}
	ts := strings.Trim(string(raw), `"`)
	s.mu.Lock()
	s.ts = ts
	s.mu.Unlock()
}
