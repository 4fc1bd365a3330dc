package middlewares

import (
	"net/http"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketLua keeps {tokens, ts} in a hash and refills on read using the
// server clock. Returns {allowed, floor(tokens), retry_ms}.
var tokenBucketLua = redis.NewScript(`
local rate = tonumber(ARGV[1])
local cap = tonumber(ARGV[2])
local t = redis.call('TIME')
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)

local st = redis.call('HMGET', KEYS[1], 'tokens', 'ts')
local tokens = tonumber(st[1]) or cap
local ts = tonumber(st[2]) or now
if now > ts then
  tokens = math.min(cap, tokens + (now - ts) * rate / 1000)
end

local ok, wait = 0, 0
if tokens >= 1 then
  tokens = tokens - 1
  ok = 1
else
  wait = math.ceil((1 - tokens) * 1000 / rate)
end
redis.call('HSET', KEYS[1], 'tokens', tokens, 'ts', now)
redis.call('PEXPIRE', KEYS[1], math.ceil(cap * 1000 / rate))
return {ok, math.floor(tokens), wait}
`)

// RedisTokenBucket allows short bursts up to Burst and a steady Rate per
// second afterwards. Without Redis, or on Redis errors, it lets traffic through.
type RedisTokenBucket struct {
	rdb   *redis.Client
	key   KeyFunc
	rate  float64
	burst int
}

func NewRedisTokenBucket(rdb *redis.Client, ratePerSecond float64, burst int, key KeyFunc) *RedisTokenBucket {
	return &RedisTokenBucket{rdb: rdb, key: key, rate: ratePerSecond, burst: burst}
}

func (tb *RedisTokenBucket) take(r *http.Request, key string) (verdict, error) {
	res, err := tokenBucketLua.Run(r.Context(), tb.rdb, []string{key},
		strconv.FormatFloat(tb.rate, 'f', -1, 64), tb.burst).Int64Slice()
	if err != nil {
		return verdict{}, err
	}
	if len(res) != 3 {
		return verdict{}, redis.Nil
	}
	return verdict{
		allowed:    res[0] == 1,
		remaining:  res[1],
		retryAfter: time.Duration(res[2]) * time.Millisecond,
	}, nil
}

func (tb *RedisTokenBucket) Middleware(next http.Handler) http.Handler {
	if tb == nil || tb.rdb == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := tb.key(r)
		v, err := tb.take(r, key)
		if err != nil {
			Logger(r).Warn().Err(err).Msg("token bucket unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if applyVerdict(w, r, "token-bucket", tb.burst, key, v) {
			next.ServeHTTP(w, r)
		}
	})
}
