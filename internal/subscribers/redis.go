package subscribers

import (
	"context"

	"github.com/redis/go-redis/v9"

	"marketbot/internal/config"
	"marketbot/internal/transport"
	"marketbot/pkg/logx"
)

// redisStore keeps membership in a shared Redis set, so several processes
// (the polling bot and one-shot broadcast runs) see the same subscribers.
type redisStore struct {
	client *redis.Client
	key    string
	log    logx.Logger
}

var _ Store = (*redisStore)(nil)

func openRedis(cfg config.SubscribersConfig, log logx.Logger) (Store, error) {
	opt, err := redis.ParseURL(cfg.RedisURL)
	if err != nil {
		return nil, err
	}
	key := cfg.RedisKey
	if key == "" {
		key = config.DefaultRedisKey
	}
	return &redisStore{client: redis.NewClient(opt), key: key, log: log}, nil
}

func (s *redisStore) Add(ctx context.Context, id transport.Recipient) error {
	if err := s.client.SAdd(ctx, s.key, string(id)).Err(); err != nil {
		return unavailable("redis sadd", err)
	}
	return nil
}

func (s *redisStore) Remove(ctx context.Context, id transport.Recipient) error {
	// SREM on an absent member is a no-op, which matches the contract.
	if err := s.client.SRem(ctx, s.key, string(id)).Err(); err != nil {
		return unavailable("redis srem", err)
	}
	return nil
}

func (s *redisStore) ListAll(ctx context.Context) ([]transport.Recipient, error) {
	members, err := s.client.SMembers(ctx, s.key).Result()
	if err != nil {
		return nil, unavailable("redis smembers", err)
	}
	out := make([]transport.Recipient, 0, len(members))
	for _, m := range members {
		out = append(out, transport.Recipient(m))
	}
	return out, nil
}

func (s *redisStore) Close() error {
	return s.client.Close()
}
