package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	defaultDialTimeout  = 5 * time.Second
	defaultReadTimeout  = 3 * time.Second
	defaultWriteTimeout = 3 * time.Second
)

// NewClient returns a configured go-redis client and validates the connection with PING.
func NewClient(addr, password string) (*redis.Client, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return nil, errors.New("redis: addr is empty")
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		Password:     password,
		DialTimeout:  defaultDialTimeout,
		ReadTimeout:  defaultReadTimeout,
		WriteTimeout: defaultWriteTimeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), defaultDialTimeout)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, err
	}

	return client, nil
}

// StatusStore reads live connector statuses published by the station-facing
// subsystem. This service never writes the keys.
type StatusStore struct {
	client *redis.Client
}

// NewStatusStore returns a redis-backed status store.
func NewStatusStore(client *redis.Client) *StatusStore {
	return &StatusStore{client: client}
}

func (s *StatusStore) key(chargeBoxID string, connectorID int) string {
	return fmt.Sprintf("connector:status:%s:%d", chargeBoxID, connectorID)
}

// Get returns the published status for a connector, or "" when none is present.
func (s *StatusStore) Get(ctx context.Context, chargeBoxID string, connectorID int) (string, error) {
	status, err := s.client.Get(ctx, s.key(chargeBoxID, connectorID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	return status, nil
}
