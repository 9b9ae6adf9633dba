package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/cqle/dba-virtual/backend/internal/config"
)

// Decision is the outcome of one admission check.
type Decision struct {
	Allowed   bool
	Remaining int
	Bypassed  bool
}

// Limiter admits or denies requests per client identity.
type Limiter interface {
	Admit(ctx context.Context, identity string) (Decision, error)
	Mode() string
}

// Bypass admits everything. It is used when no counter store is configured.
type Bypass struct{}

func (Bypass) Admit(context.Context, string) (Decision, error) {
	return Decision{Allowed: true, Bypassed: true}, nil
}

func (Bypass) Mode() string { return "bypass" }

// Policy is the sliding window: at most MaxRequests per identity within Window.
type Policy struct {
	MaxRequests int
	Window      time.Duration
	Prefix      string
}

// admitScript trims the window, then adds a member only when below the limit,
// so denied requests consume nothing.
var admitScript = redis.NewScript(`
local key = KEYS[1]
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local limit = tonumber(ARGV[3])
redis.call('ZREMRANGEBYSCORE', key, '-inf', now - window)
local count = redis.call('ZCARD', key)
if count < limit then
  redis.call('ZADD', key, now, ARGV[4])
  redis.call('PEXPIRE', key, window)
  return {1, limit - count - 1}
end
return {0, 0}
`)

// RedisLimiter keeps one sorted set per identity in a shared redis.
type RedisLimiter struct {
	client *redis.Client
	policy Policy
	now    func() time.Time
}

// NewRedisLimiter wraps an existing client.
func NewRedisLimiter(client *redis.Client, policy Policy) *RedisLimiter {
	if policy.Prefix == "" {
		policy.Prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, policy: policy, now: time.Now}
}

// Admit consumes one unit of quota for identity when available.
func (l *RedisLimiter) Admit(ctx context.Context, identity string) (Decision, error) {
	now := l.now().UnixMilli()
	member := fmt.Sprintf("%d-%s", now, uuid.NewString())

	res, err := admitScript.Run(ctx, l.client, []string{l.key(identity)},
		now, l.policy.Window.Milliseconds(), l.policy.MaxRequests, member).Int64Slice()
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit check failed: %w", err)
	}
	if len(res) != 2 {
		return Decision{}, fmt.Errorf("rate limit check returned %d values", len(res))
	}

	return Decision{Allowed: res[0] == 1, Remaining: int(res[1])}, nil
}

func (l *RedisLimiter) Mode() string { return "enabled" }

// Close releases the underlying client.
func (l *RedisLimiter) Close() error {
	return l.client.Close()
}

func (l *RedisLimiter) key(identity string) string {
	return l.policy.Prefix + ":" + identity
}

// New returns a redis backed limiter, or Bypass when cfg has no redis url.
func New(ctx context.Context, cfg config.RateLimitConfig) (Limiter, error) {
	if !cfg.Enabled() {
		return Bypass{}, nil
	}

	client, err := Connect(ctx, cfg.RedisURL)
	if err != nil {
		return nil, err
	}

	return NewRedisLimiter(client, Policy{
		MaxRequests: cfg.MaxRequests,
		Window:      cfg.Window,
		Prefix:      cfg.Prefix,
	}), nil
}

// Connect accepts either a redis:// (rediss:// for TLS) URL or a bare host:port.
func Connect(ctx context.Context, rawURL string) (*redis.Client, error) {
	var opts *redis.Options
	if strings.Contains(rawURL, "://") {
		parsed, err := redis.ParseURL(rawURL)
		if err != nil {
			return nil, fmt.Errorf("invalid redis url: %w", err)
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: rawURL}
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return client, nil
}
