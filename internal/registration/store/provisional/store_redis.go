package provisional

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"farmgate/internal/registration/models"
	vmodels "farmgate/internal/verification/models"
	"farmgate/pkg/platform/sentinel"
)

const (
	recordKeyPrefix   = "provisional:"
	attemptsKeySuffix = ":attempts"

	// records linger past expiresAt so readers report expiry rather than
	// absence; the TTL is housekeeping only
	retentionGrace = time.Hour
)

// RedisStore keeps provisional registrations as JSON documents. The attempt
// counter is a separate key so it can be incremented atomically.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func recordKey(tempID string) string   { return recordKeyPrefix + tempID }
func attemptsKey(tempID string) string { return recordKeyPrefix + tempID + attemptsKeySuffix }

func (s *RedisStore) Create(ctx context.Context, reg *models.ProvisionalRegistration) error {
	payload, err := json.Marshal(reg)
	if err != nil {
		return fmt.Errorf("marshal provisional registration: %w", err)
	}
	ok, err := s.client.SetNX(ctx, recordKey(reg.TempID), payload, time.Until(reg.ExpiresAt.Add(retentionGrace))).Result()
	if err != nil {
		return fmt.Errorf("store provisional registration: %w", err)
	}
	if !ok {
		return sentinel.ErrConflict
	}
	return nil
}

func (s *RedisStore) Get(ctx context.Context, tempID string) (*models.ProvisionalRegistration, error) {
	pipe := s.client.Pipeline()
	recCmd := pipe.Get(ctx, recordKey(tempID))
	attCmd := pipe.Get(ctx, attemptsKey(tempID))
	if _, err := pipe.Exec(ctx); err != nil && !errors.Is(err, redis.Nil) {
		return nil, fmt.Errorf("load provisional registration: %w", err)
	}

	raw, err := recCmd.Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("load provisional registration: %w", err)
	}

	var reg models.ProvisionalRegistration
	if err := json.Unmarshal(raw, &reg); err != nil {
		return nil, fmt.Errorf("decode provisional registration: %w", err)
	}
	if attempts, err := attCmd.Int(); err == nil {
		reg.AttemptsUsed = attempts
	}
	return &reg, nil
}

func (s *RedisStore) AttachVerification(ctx context.Context, tempID string, outcome vmodels.VerificationOutcome, evidence vmodels.Evidence) error {
	return s.update(ctx, tempID, func(reg *models.ProvisionalRegistration) {
		reg.IDVerified = outcome.Verified
		reg.VerificationData = &outcome
		reg.Evidence = &evidence
	})
}

func (s *RedisStore) SetIdentity(ctx context.Context, tempID, identityUID string) error {
	return s.update(ctx, tempID, func(reg *models.ProvisionalRegistration) {
		reg.IdentityUID = identityUID
	})
}

func (s *RedisStore) RecordAttempt(ctx context.Context, tempID string) (int, error) {
	ttl, err := s.client.PTTL(ctx, recordKey(tempID)).Result()
	if err != nil {
		return 0, fmt.Errorf("record attempt: %w", err)
	}
	// go-redis reports a missing key as -2
	if ttl == time.Duration(-2) {
		return 0, sentinel.ErrNotFound
	}

	pipe := s.client.TxPipeline()
	incr := pipe.Incr(ctx, attemptsKey(tempID))
	if ttl > 0 {
		pipe.PExpire(ctx, attemptsKey(tempID), ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return 0, fmt.Errorf("record attempt: %w", err)
	}
	return int(incr.Val()), nil
}

// releaseAttemptScript decrements the attempt counter without going below
// zero. Returns -1 when the registration itself is gone.
// KEYS[1]=record key, KEYS[2]=attempts key
var releaseAttemptScript = redis.NewScript(`
if redis.call('EXISTS', KEYS[1]) == 0 then
	return -1
end
local n = tonumber(redis.call('GET', KEYS[2]) or '0')
if n > 0 then
	return redis.call('DECR', KEYS[2])
end
return 0
`)

func (s *RedisStore) ReleaseAttempt(ctx context.Context, tempID string) error {
	n, err := releaseAttemptScript.Run(ctx, s.client, []string{recordKey(tempID), attemptsKey(tempID)}).Int()
	if err != nil {
		return fmt.Errorf("release attempt: %w", err)
	}
	if n < 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, tempID string) error {
	if err := s.client.Del(ctx, recordKey(tempID), attemptsKey(tempID)).Err(); err != nil {
		return fmt.Errorf("delete provisional registration: %w", err)
	}
	return nil
}

// update applies fn under optimistic locking, keeping the key's TTL.
func (s *RedisStore) update(ctx context.Context, tempID string, fn func(*models.ProvisionalRegistration)) error {
	key := recordKey(tempID)
	txf := func(tx *redis.Tx) error {
		raw, err := tx.Get(ctx, key).Bytes()
		if errors.Is(err, redis.Nil) {
			return sentinel.ErrNotFound
		}
		if err != nil {
			return err
		}
		var reg models.ProvisionalRegistration
		if err := json.Unmarshal(raw, &reg); err != nil {
			return fmt.Errorf("decode provisional registration: %w", err)
		}
		fn(&reg)
		payload, err := json.Marshal(&reg)
		if err != nil {
			return fmt.Errorf("marshal provisional registration: %w", err)
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.SetArgs(ctx, key, payload, redis.SetArgs{KeepTTL: true})
			return nil
		})
		return err
	}

	for range 3 {
		err := s.client.Watch(ctx, txf, key)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		if err != nil && !errors.Is(err, sentinel.ErrNotFound) {
			return fmt.Errorf("update provisional registration: %w", err)
		}
		return err
	}
	return fmt.Errorf("update provisional registration: %w", sentinel.ErrConflict)
}
