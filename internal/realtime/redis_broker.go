package realtime

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"
	"time"

	"go-placement-backend/internal/domain"
	"go-placement-backend/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const (
	userChannelPrefix = "user:"
	chatChannelPrefix = "chat:"
	brokerOpTimeout   = 3 * time.Second
)

// wireEvent keeps Data as raw JSON so re-encoding to clients is verbatim.
type wireEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data,omitempty"`
}

// RedisBroker is the Pusher for multi-instance deployments. Pushes are
// published on user:<id> and chat:<id>; every instance subscribes to the
// channels of its local users and joined rooms and delivers through its Hub.
type RedisBroker struct {
	client *redis.Client
	hub    *Hub
	pubsub *redis.PubSub
	ctx    context.Context

	mu         sync.Mutex
	subscribed map[string]bool
}

// NewRedisBroker attaches itself to hub as its presence listener.
func NewRedisBroker(ctx context.Context, client *redis.Client, hub *Hub) *RedisBroker {
	b := &RedisBroker{
		client:     client,
		hub:        hub,
		pubsub:     client.Subscribe(ctx),
		ctx:        ctx,
		subscribed: make(map[string]bool),
	}
	hub.SetListener(b)
	return b
}

// Run delivers published events to local sessions until ctx is done.
func (b *RedisBroker) Run(ctx context.Context) {
	ch := b.pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			b.dispatch(msg)
		}
	}
}

func (b *RedisBroker) dispatch(msg *redis.Message) {
	var wire wireEvent
	if err := json.Unmarshal([]byte(msg.Payload), &wire); err != nil {
		logger.Log.Warn("Dropping malformed realtime event", "channel", msg.Channel, "error", err)
		return
	}
	ev := domain.Event{Type: wire.Type}
	if len(wire.Data) > 0 {
		ev.Data = wire.Data
	}

	switch {
	case strings.HasPrefix(msg.Channel, userChannelPrefix):
		b.hub.deliverToUser(strings.TrimPrefix(msg.Channel, userChannelPrefix), ev)
	case strings.HasPrefix(msg.Channel, chatChannelPrefix):
		chatID, err := strconv.ParseInt(strings.TrimPrefix(msg.Channel, chatChannelPrefix), 10, 64)
		if err != nil {
			return
		}
		b.hub.deliverToRoom(chatID, ev)
	}
}

// PushToUser reports true when at least one instance holds the channel.
func (b *RedisBroker) PushToUser(ctx context.Context, userID string, ev domain.Event) bool {
	delivered := b.publish(ctx, userChannelPrefix+userID, ev)
	observePush("user", delivered)
	return delivered
}

func (b *RedisBroker) BroadcastToChat(ctx context.Context, chatID int64, ev domain.Event) bool {
	delivered := b.publish(ctx, chatChannel(chatID), ev)
	observePush("chat", delivered)
	return delivered
}

func (b *RedisBroker) publish(ctx context.Context, channel string, ev domain.Event) bool {
	payload, err := json.Marshal(ev)
	if err != nil {
		logger.Log.Error("Failed to encode realtime event", "type", ev.Type, "error", err)
		return false
	}
	receivers, err := b.client.Publish(ctx, channel, payload).Result()
	if err != nil {
		logger.Log.Warn("Realtime publish failed", "channel", channel, "error", err)
		return false
	}
	return receivers > 0
}

func (b *RedisBroker) UserPresenceChanged(userID string) {
	b.reconcile(userChannelPrefix+userID, func() bool { return b.hub.HasUser(userID) })
}

func (b *RedisBroker) RoomPresenceChanged(chatID int64) {
	b.reconcile(chatChannel(chatID), func() bool { return b.hub.HasRoom(chatID) })
}

// reconcile brings the subscription of channel in line with the hub. The
// hub is read under the broker lock so racing presence changes converge.
func (b *RedisBroker) reconcile(channel string, present func() bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	wanted := present()
	if b.subscribed[channel] == wanted {
		return
	}
	ctx, cancel := context.WithTimeout(b.ctx, brokerOpTimeout)
	defer cancel()

	var err error
	if wanted {
		err = b.pubsub.Subscribe(ctx, channel)
	} else {
		err = b.pubsub.Unsubscribe(ctx, channel)
	}
	if err != nil {
		logger.Log.Warn("Realtime subscription change failed", "channel", channel, "subscribe", wanted, "error", err)
		return
	}
	if wanted {
		b.subscribed[channel] = true
	} else {
		delete(b.subscribed, channel)
	}
}

func (b *RedisBroker) Close() error {
	return b.pubsub.Close()
}

func chatChannel(chatID int64) string {
	return chatChannelPrefix + strconv.FormatInt(chatID, 10)
}
