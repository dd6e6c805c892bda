// Package bus fans finished strokes out to other processes over Redis
// pub/sub. A translation engine subscribes, reads the stroke and the
// rolling outline, and does its own dictionary work.
package bus

import (
	"context"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"stenod/internal/outline"
	"stenod/internal/stroke"
)

// DefaultChannel is the pub/sub channel used when none is configured.
const DefaultChannel = "stenod:strokes"

// ErrNoChannel is returned when a client is built without a channel name.
var ErrNoChannel = errors.New("bus: channel name cannot be empty")

// Message is one published stroke.
type Message struct {
	SessionID   string          `json:"session_id"`
	Seq         uint64          `json:"seq"`
	TimestampNs int64           `json:"timestamp_ns"`
	Stroke      stroke.Stroke   `json:"stroke"`
	Outline     outline.Outline `json:"outline"`
	Key         string          `json:"key"`
}

// NewMessage builds a message for s with window as the rolling outline.
// Key is the hex dictionary key of window.
func NewMessage(sessionID string, seq uint64, ts int64, s stroke.Stroke, window outline.Outline) Message {
	return Message{
		SessionID:   sessionID,
		Seq:         seq,
		TimestampNs: ts,
		Stroke:      s,
		Outline:     window,
		Key:         hex.EncodeToString(window.Key()),
	}
}

// Client publishes and subscribes on one channel.
// It is safe for concurrent use.
type Client struct {
	rdb     *redis.Client
	channel string
}

// NewClient connects to Redis with opts and uses channel for messages.
func NewClient(opts *redis.Options, channel string) (*Client, error) {
	if channel == "" {
		return nil, ErrNoChannel
	}
	return &Client{
		rdb:     redis.NewClient(opts),
		channel: channel,
	}, nil
}

// Channel returns the pub/sub channel name.
func (c *Client) Channel() string {
	return c.channel
}

// Ping verifies Redis connectivity.
func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

// Close closes the Redis connection.
func (c *Client) Close() error {
	return c.rdb.Close()
}

// Publish sends m to every subscriber and returns how many received it.
func (c *Client) Publish(ctx context.Context, m Message) (int64, error) {
	data, err := json.Marshal(m)
	if err != nil {
		return 0, fmt.Errorf("marshal message: %w", err)
	}
	n, err := c.rdb.Publish(ctx, c.channel, data).Result()
	if err != nil {
		return 0, fmt.Errorf("publish stroke: %w", err)
	}
	return n, nil
}

// Subscription delivers messages from the channel.
type Subscription struct {
	ps     *redis.PubSub
	msgs   chan Message
	errors chan error
}

// Subscribe starts listening on the channel. It returns once Redis has
// confirmed the subscription. Messages that fail to decode are reported on
// Errors and skipped.
func (c *Client) Subscribe(ctx context.Context) (*Subscription, error) {
	ps := c.rdb.Subscribe(ctx, c.channel)
	if _, err := ps.Receive(ctx); err != nil {
		ps.Close()
		return nil, fmt.Errorf("subscribe %s: %w", c.channel, err)
	}

	sub := &Subscription{
		ps:     ps,
		msgs:   make(chan Message, 64),
		errors: make(chan error, 1),
	}
	go sub.loop(ctx)
	return sub, nil
}

func (s *Subscription) loop(ctx context.Context) {
	defer close(s.msgs)
	ch := s.ps.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case raw, ok := <-ch:
			if !ok {
				return
			}
			var m Message
			if err := json.Unmarshal([]byte(raw.Payload), &m); err != nil {
				select {
				case s.errors <- fmt.Errorf("decode message: %w", err):
				default:
				}
				continue
			}
			select {
			case s.msgs <- m:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Messages returns the delivery channel. It closes when the subscription
// ends.
func (s *Subscription) Messages() <-chan Message {
	return s.msgs
}

// Errors returns decode failures.
func (s *Subscription) Errors() <-chan error {
	return s.errors
}

// Close ends the subscription.
func (s *Subscription) Close() error {
	return s.ps.Close()
}
