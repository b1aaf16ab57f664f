package phone

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"farmgate/pkg/platform/sentinel"
)

const codeKeyPrefix = "otp:"

// incrementAttemptsScript bumps the attempt counter only while the code
// still exists, so a late guess cannot resurrect an expired key.
var incrementAttemptsScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
  return -1
end
return redis.call('HINCRBY', KEYS[1], 'attempts', 1)
`)

// RedisCodeStore keeps each pending code in a hash that expires with the code.
type RedisCodeStore struct {
	client redis.UniversalClient
}

func NewRedisCodeStore(client redis.UniversalClient) *RedisCodeStore {
	return &RedisCodeStore{client: client}
}

func codeKey(phone string) string { return codeKeyPrefix + phone }

func (s *RedisCodeStore) Save(ctx context.Context, phone string, code Code) error {
	key := codeKey(phone)
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key,
			"code", code.Value,
			"expires_at", code.ExpiresAt.UnixMilli(),
			"attempts", code.Attempts,
		)
		pipe.PExpireAt(ctx, key, code.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("save otp code: %w", err)
	}
	return nil
}

func (s *RedisCodeStore) Get(ctx context.Context, phone string) (*Code, error) {
	fields, err := s.client.HGetAll(ctx, codeKey(phone)).Result()
	if err != nil {
		return nil, fmt.Errorf("get otp code: %w", err)
	}
	if len(fields) == 0 {
		return nil, sentinel.ErrNotFound
	}
	expiresMs, err := strconv.ParseInt(fields["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("parse otp expiry: %w", err)
	}
	attempts, err := strconv.Atoi(fields["attempts"])
	if err != nil {
		return nil, fmt.Errorf("parse otp attempts: %w", err)
	}
	return &Code{
		Value:     fields["code"],
		ExpiresAt: time.UnixMilli(expiresMs),
		Attempts:  attempts,
	}, nil
}

func (s *RedisCodeStore) IncrementAttempts(ctx context.Context, phone string) (int, error) {
	n, err := incrementAttemptsScript.Run(ctx, s.client, []string{codeKey(phone)}).Int()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, sentinel.ErrNotFound
		}
		return 0, fmt.Errorf("increment otp attempts: %w", err)
	}
	if n < 0 {
		return 0, sentinel.ErrNotFound
	}
	return n, nil
}

func (s *RedisCodeStore) Delete(ctx context.Context, phone string) error {
	if err := s.client.Del(ctx, codeKey(phone)).Err(); err != nil {
		return fmt.Errorf("delete otp code: %w", err)
	}
	return nil
}
