package cart

import (
	"context"
	"errors"

	"github.com/google/uuid"
	json "github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ChangeChannel carries one message per slot write.
const ChangeChannel = "storefront:slots"

type changeMessage struct {
	Slot   string `json:"slot"`
	Origin string `json:"origin"`
}

// RedisSlot stores values in Redis and announces every write on
// ChangeChannel so other instances can refresh.
type RedisSlot struct {
	client   *redis.Client
	prefix   string
	instance string
	log      *zap.Logger
}

// NewRedisSlot wraps client. Keys are stored under prefix.
func NewRedisSlot(client *redis.Client, prefix string, log *zap.Logger) *RedisSlot {
	if log == nil {
		log = zap.NewNop()
	}
	return &RedisSlot{client: client, prefix: prefix, instance: uuid.NewString(), log: log}
}

// ParseRedisURL builds a client the way REDIS_URL is written.
func ParseRedisURL(redisURL string) (*redis.Client, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, err
	}
	return redis.NewClient(opt), nil
}

func (r *RedisSlot) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.client.Get(ctx, r.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *RedisSlot) Set(ctx context.Context, key string, value []byte) error {
	if err := r.client.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return err
	}
	r.announce(ctx, key)
	return nil
}

func (r *RedisSlot) Remove(ctx context.Context, key string) error {
	if err := r.client.Del(ctx, r.prefix+key).Err(); err != nil {
		return err
	}
	r.announce(ctx, key)
	return nil
}

// announce is best effort: the value is already stored.
func (r *RedisSlot) announce(ctx context.Context, key string) {
	msg, _ := json.Marshal(changeMessage{Slot: key, Origin: r.instance})
	if err := r.client.Publish(ctx, ChangeChannel, msg).Err(); err != nil {
		r.log.Warn("could not announce slot change", zap.String("slot", key), zap.Error(err))
	}
}

// Watch subscribes to ChangeChannel and reports writes from other
// instances. It returns when ctx is done.
func (r *RedisSlot) Watch(ctx context.Context, fn func(key string)) error {
	sub := r.client.Subscribe(ctx, ChangeChannel)
	defer sub.Close()
	if _, err := sub.Receive(ctx); err != nil {
		return err
	}

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case m, ok := <-ch:
			if !ok {
				return nil
			}
			var msg changeMessage
			if err := json.Unmarshal([]byte(m.Payload), &msg); err != nil {
				r.log.Warn("ignoring malformed slot change", zap.String("payload", m.Payload))
				continue
			}
			if msg.Origin == r.instance {
				continue
			}
			fn(msg.Slot)
		}
	}
}
