//go:build integration

package phone_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"

	"farmgate/internal/registration/phone"
	"farmgate/pkg/platform/sentinel"
	"farmgate/pkg/testutil/containers"
)

type RedisCodeStoreSuite struct {
	suite.Suite
	redis *containers.RedisContainer
	store *phone.RedisCodeStore
}

func TestRedisCodeStoreSuite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}
	suite.Run(t, new(RedisCodeStoreSuite))
}

func (s *RedisCodeStoreSuite) SetupSuite() {
	s.redis = containers.GetManager().GetRedis(s.T())
	s.store = phone.NewRedisCodeStore(s.redis.Client)
}

func (s *RedisCodeStoreSuite) SetupTest() {
	s.Require().NoError(s.redis.FlushAll(context.Background()))
}

func (s *RedisCodeStoreSuite) TestRoundTrip() {
	ctx := context.Background()
	expires := time.Now().Add(time.Minute).Truncate(time.Millisecond)
	s.Require().NoError(s.store.Save(ctx, "+639171234567", phone.Code{Value: "123456", ExpiresAt: expires}))

	got, err := s.store.Get(ctx, "+639171234567")
	s.Require().NoError(err)
	s.Equal("123456", got.Value)
	s.True(expires.Equal(got.ExpiresAt))

	n, err := s.store.IncrementAttempts(ctx, "+639171234567")
	s.Require().NoError(err)
	s.Equal(1, n)

	s.Require().NoError(s.store.Save(ctx, "+639171234567", phone.Code{Value: "654321", ExpiresAt: expires}))
	got, err = s.store.Get(ctx, "+639171234567")
	s.Require().NoError(err)
	s.Equal(0, got.Attempts)

	s.Require().NoError(s.store.Delete(ctx, "+639171234567"))
	_, err = s.store.Get(ctx, "+639171234567")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCodeStoreSuite) TestIncrementMissingCode() {
	_, err := s.store.IncrementAttempts(context.Background(), "+639000000000")
	s.ErrorIs(err, sentinel.ErrNotFound)
}

func (s *RedisCodeStoreSuite) TestCodeExpiresWithKey() {
	ctx := context.Background()
	s.Require().NoError(s.store.Save(ctx, "+639171234567", phone.Code{Value: "123456", ExpiresAt: time.Now().Add(200 * time.Millisecond)}))
	s.Eventually(func() bool {
		_, err := s.store.Get(ctx, "+639171234567")
		return err != nil
	}, 3*time.Second, 50*time.Millisecond)
}
