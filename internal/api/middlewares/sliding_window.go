package middlewares

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"
)

// slidingWindowLua trims the log to the window, then admits and records the
// request only while under the limit, so refused requests do not extend the
// ban. Returns {allowed, remaining, retry_ms}.
var slidingWindowLua = redis.NewScript(`
local window = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local t = redis.call('TIME')
local now = tonumber(t[1]) * 1000 + math.floor(tonumber(t[2]) / 1000)

redis.call('ZREMRANGEBYSCORE', KEYS[1], '-inf', now - window)
local n = redis.call('ZCARD', KEYS[1])
if n >= limit then
  local oldest = redis.call('ZRANGE', KEYS[1], 0, 0, 'WITHSCORES')
  local wait = window
  if oldest[2] then
    wait = tonumber(oldest[2]) + window - now
  end
  return {0, 0, wait}
end
redis.call('ZADD', KEYS[1], now, ARGV[3])
redis.call('PEXPIRE', KEYS[1], window)
return {1, limit - n - 1, 0}
`)

// RedisSlidingWindow caps requests per rolling window. Like the token bucket
// it fails open.
type RedisSlidingWindow struct {
	rdb    *redis.Client
	key    KeyFunc
	limit  int
	window time.Duration
}

func NewRedisSlidingWindow(rdb *redis.Client, limit int, window time.Duration, key KeyFunc) *RedisSlidingWindow {
	return &RedisSlidingWindow{rdb: rdb, key: key, limit: limit, window: window}
}

func (sw *RedisSlidingWindow) hit(r *http.Request, key string) (verdict, error) {
	var b [8]byte
	_, _ = rand.Read(b[:])
	res, err := slidingWindowLua.Run(r.Context(), sw.rdb, []string{key},
		sw.window.Milliseconds(), sw.limit, hex.EncodeToString(b[:])).Int64Slice()
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

func (sw *RedisSlidingWindow) Middleware(next http.Handler) http.Handler {
	if sw == nil || sw.rdb == nil {
		return next
	}
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := sw.key(r)
		v, err := sw.hit(r, key)
		if err != nil {
			Logger(r).Warn().Err(err).Msg("sliding window unavailable, allowing request")
			next.ServeHTTP(w, r)
			return
		}
		if applyVerdict(w, r, "sliding-window", sw.limit, key, v) {
			next.ServeHTTP(w, r)
		}
	})
}
