package chathub

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"learnhub/backend/internal/logging"
	"learnhub/backend/internal/models"

	"github.com/redis/go-redis/v9"
)

const roomChannelPrefix = "chat:room:"

// relayEnvelope is the Redis payload; the event travels in its wire form.
type relayEnvelope struct {
	RoomID uint             `json:"room_id"`
	Event  models.ChatEvent `json:"event"`
}

// RedisRelay publishes room events on Redis so every server instance can deliver them
// to its own connections.
type RedisRelay struct {
	hub   *ManagerService
	redis *redis.Client
	log   logging.Logger
}

var _ Broadcaster = (*RedisRelay)(nil)

func NewRedisRelay(hub *ManagerService, rdb *redis.Client, log logging.Logger) *RedisRelay {
	return &RedisRelay{hub: hub, redis: rdb, log: log}
}

func RoomChannel(roomID uint) string {
	return roomChannelPrefix + strconv.FormatUint(uint64(roomID), 10)
}

func (r *RedisRelay) Publish(ctx context.Context, roomID uint, ev models.ChatEvent) error {
	payload, err := json.Marshal(relayEnvelope{RoomID: roomID, Event: ev})
	if err != nil {
		return fmt.Errorf("chathub: encode relay payload: %w", err)
	}
	if err := r.redis.Publish(ctx, RoomChannel(roomID), payload).Err(); err != nil {
		return fmt.Errorf("chathub: publish to redis: %w", err)
	}
	return nil
}

// Run listens on every room channel and hands events to the local hub until ctx ends.
func (r *RedisRelay) Run(ctx context.Context) error {
	pubsub := r.redis.PSubscribe(ctx, roomChannelPrefix+"*")
	defer pubsub.Close()

	if _, err := pubsub.Receive(ctx); err != nil {
		return fmt.Errorf("chathub: subscribe to room channels: %w", err)
	}

	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			r.dispatch(msg.Channel, msg.Payload)
		}
	}
}

func (r *RedisRelay) dispatch(channel, payload string) {
	var env relayEnvelope
	if err := json.Unmarshal([]byte(payload), &env); err != nil {
		r.log.Warn("chathub: bad relay payload on %s: %v", channel, err)
		return
	}
	if want := RoomChannel(env.RoomID); !strings.EqualFold(want, channel) {
		r.log.Warn("chathub: relay payload for chatroom %d arrived on %s", env.RoomID, channel)
		return
	}
	env.Event.RoomID = env.RoomID
	r.hub.Broadcast(env.RoomID, env.Event)
}
