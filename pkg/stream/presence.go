package stream

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// Presence records which users hold a live connection on some instance.
type Presence interface {
	Register(ctx context.Context, userID uuid.UUID) error
	Unregister(ctx context.Context, userID uuid.UUID) error
	Refresh(ctx context.Context, userIDs []uuid.UUID) error
	IsOnline(ctx context.Context, userID uuid.UUID) (bool, error)
}

type noPresence struct{}

func (noPresence) Register(context.Context, uuid.UUID) error         { return nil }
func (noPresence) Unregister(context.Context, uuid.UUID) error       { return nil }
func (noPresence) Refresh(context.Context, []uuid.UUID) error        { return nil }
func (noPresence) IsOnline(context.Context, uuid.UUID) (bool, error) { return false, nil }

// Keys are owned by the instance that wrote them; only the owner may delete
// or extend them.
var (
	releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)
	extendScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
end
return 0
`)
)

// RedisPresence stores presence:<user id> = <instance id> with a TTL.
type RedisPresence struct {
	client     redis.UniversalClient
	instanceID string
	ttl        time.Duration
	prefix     string
}

// NewRedisPresence creates a presence store owned by instanceID. An empty
// instanceID gets a random one.
func NewRedisPresence(client redis.UniversalClient, instanceID string, ttl time.Duration) *RedisPresence {
	if instanceID == "" {
		instanceID = uuid.NewString()
	}
	if ttl <= 0 {
		ttl = 90 * time.Second
	}
	return &RedisPresence{client: client, instanceID: instanceID, ttl: ttl, prefix: "presence:"}
}

// InstanceID returns the owner id written to presence keys.
func (p *RedisPresence) InstanceID() string { return p.instanceID }

func (p *RedisPresence) key(userID uuid.UUID) string {
	return p.prefix + userID.String()
}

func (p *RedisPresence) Register(ctx context.Context, userID uuid.UUID) error {
	if err := p.client.Set(ctx, p.key(userID), p.instanceID, p.ttl).Err(); err != nil {
		return fmt.Errorf("presence register: %w", err)
	}
	return nil
}

func (p *RedisPresence) Unregister(ctx context.Context, userID uuid.UUID) error {
	if err := releaseScript.Run(ctx, p.client, []string{p.key(userID)}, p.instanceID).Err(); err != nil {
		return fmt.Errorf("presence unregister: %w", err)
	}
	return nil
}

func (p *RedisPresence) Refresh(ctx context.Context, userIDs []uuid.UUID) error {
	var errs []error
	for _, id := range userIDs {
		err := extendScript.Run(ctx, p.client, []string{p.key(id)}, p.instanceID, p.ttl.Milliseconds()).Err()
		if err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("presence refresh: %w", errors.Join(errs...))
	}
	return nil
}

func (p *RedisPresence) IsOnline(ctx context.Context, userID uuid.UUID) (bool, error) {
	n, err := p.client.Exists(ctx, p.key(userID)).Result()
	if err != nil {
		return false, fmt.Errorf("presence lookup: %w", err)
	}
	return n > 0, nil
}
