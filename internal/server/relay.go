package server

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"wavespace/internal/session"
)

// relay fans committed changes out to other server instances over Redis
// pub/sub. Each instance re-broadcasts to its own observers.
type relay struct {
	rdb     *redis.Client
	pubsub  *redis.PubSub
	channel string
	origin  string
	log     *zap.Logger
	ctx     context.Context
	cancel  context.CancelFunc
}

type relayMessage struct {
	Origin string         `json:"origin"`
	Change session.Change `json:"change"`
}

func newRelay(ctx context.Context, url, channel string, log *zap.Logger) (*relay, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	runCtx, cancel := context.WithCancel(context.Background())
	pubsub := rdb.Subscribe(runCtx, channel)
	if _, err := pubsub.Receive(ctx); err != nil {
		cancel()
		_ = pubsub.Close()
		_ = rdb.Close()
		return nil, fmt.Errorf("subscribe %s: %w", channel, err)
	}
	log.Info("relay subscribed", zap.String("channel", channel))
	return &relay{
		rdb:     rdb,
		pubsub:  pubsub,
		channel: channel,
		origin:  uuid.NewString(),
		log:     log,
		ctx:     runCtx,
		cancel:  cancel,
	}, nil
}

func (r *relay) publish(change session.Change) {
	payload, err := json.Marshal(relayMessage{Origin: r.origin, Change: change})
	if err != nil {
		return
	}
	go func() {
		if err := r.rdb.Publish(r.ctx, r.channel, payload).Err(); err != nil {
			r.log.Warn("relay publish failed", zap.String("quiz_id", change.QuizID), zap.Error(err))
		}
	}()
}

// run delivers changes published by other instances until stop closes.
func (r *relay) run(stop <-chan struct{}, deliver func(session.Change)) {
	ch := r.pubsub.Channel()
	for {
		select {
		case <-stop:
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			var decoded relayMessage
			if err := json.Unmarshal([]byte(msg.Payload), &decoded); err != nil {
				r.log.Warn("relay message dropped", zap.Error(err))
				continue
			}
			if decoded.Origin == r.origin || decoded.Change.QuizID == "" {
				continue
			}
			deliver(decoded.Change)
		}
	}
}

func (r *relay) close() {
	r.cancel()
	_ = r.pubsub.Close()
	_ = r.rdb.Close()
}
