package budget

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"farmgate/internal/verification/models"
)

const (
	dayKeyPrefix   = "budget:face:day:"
	monthKeyPrefix = "budget:face:month:"

	// keys outlive their window briefly so a read straddling midnight still
	// sees the closing count
	expiryGrace = time.Hour
)

// incrementScript charges both windows only when both have room.
// KEYS[1]=day key, KEYS[2]=month key
// ARGV[1]=daily limit, ARGV[2]=monthly limit, ARGV[3]=day expiry ms, ARGV[4]=month expiry ms
// Returns {day, month, allowed}
var incrementScript = redis.NewScript(`
local day = tonumber(redis.call('GET', KEYS[1]) or '0')
local month = tonumber(redis.call('GET', KEYS[2]) or '0')
if day >= tonumber(ARGV[1]) or month >= tonumber(ARGV[2]) then
	return {day, month, 0}
end
day = redis.call('INCR', KEYS[1])
month = redis.call('INCR', KEYS[2])
redis.call('PEXPIREAT', KEYS[1], ARGV[3])
redis.call('PEXPIREAT', KEYS[2], ARGV[4])
return {day, month, 1}
`)

// RedisStore shares the counters across instances. Keys embed the local
// date so rollover needs no reset.
type RedisStore struct {
	client redis.UniversalClient
}

func NewRedis(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Usage(ctx context.Context, window models.BudgetWindow) (models.BudgetUsage, error) {
	vals, err := s.client.MGet(ctx, dayKey(window), monthKey(window)).Result()
	if err != nil {
		return models.BudgetUsage{}, fmt.Errorf("read budget counters: %w", err)
	}
	day, err := parseCount(vals[0])
	if err != nil {
		return models.BudgetUsage{}, err
	}
	month, err := parseCount(vals[1])
	if err != nil {
		return models.BudgetUsage{}, err
	}
	return models.BudgetUsage{Daily: day, Monthly: month}, nil
}

func (s *RedisStore) Increment(ctx context.Context, window models.BudgetWindow, limits models.BudgetLimits) (models.BudgetUsage, bool, error) {
	res, err := incrementScript.Run(ctx, s.client,
		[]string{dayKey(window), monthKey(window)},
		limits.Daily,
		limits.Monthly,
		window.DayEnd.Add(expiryGrace).UnixMilli(),
		window.MonthEnd.Add(expiryGrace).UnixMilli(),
	).Int64Slice()
	if err != nil {
		return models.BudgetUsage{}, false, fmt.Errorf("increment budget counters: %w", err)
	}
	if len(res) != 3 {
		return models.BudgetUsage{}, false, fmt.Errorf("increment budget counters: unexpected reply %v", res)
	}
	usage := models.BudgetUsage{Daily: int(res[0]), Monthly: int(res[1])}
	return usage, res[2] == 1, nil
}

func dayKey(window models.BudgetWindow) string {
	return dayKeyPrefix + window.Day
}

func monthKey(window models.BudgetWindow) string {
	return monthKeyPrefix + window.Month
}

func parseCount(v any) (int, error) {
	if v == nil {
		return 0, nil
	}
	str, ok := v.(string)
	if !ok {
		return 0, fmt.Errorf("budget counter has unexpected type %T", v)
	}
	n, err := strconv.Atoi(str)
	if err != nil {
		return 0, fmt.Errorf("parse budget counter: %w", err)
	}
	return n, nil
}
