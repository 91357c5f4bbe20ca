package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/valkey-io/valkey-go"
)

// ValkeyCache stores entries in a Valkey server.
type ValkeyCache struct {
	client valkey.Client
	prefix string
}

// NewValkeyCache connects to the Valkey server at addr.
func NewValkeyCache(addr, prefix string) (*ValkeyCache, error) {
	client, err := valkey.NewClient(valkey.ClientOption{
		InitAddress: []string{addr},
	})
	if err != nil {
		return nil, fmt.Errorf("valkey connect %s: %w", addr, err)
	}
	return &ValkeyCache{client: client, prefix: prefix}, nil
}

// Get retrieves a value. A nil reply is reported as a miss.
func (c *ValkeyCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	resp := c.client.Do(ctx, c.client.B().Get().Key(c.prefix+key).Build())
	if err := resp.Error(); err != nil {
		if valkey.IsValkeyNil(err) {
			return nil, false, nil
		}
		return nil, false, err
	}
	data, err := resp.AsBytes()
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set stores a value with the given TTL (0 = no expiry).
func (c *ValkeyCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	set := c.client.B().Set().Key(c.prefix + key).Value(valkey.BinaryString(data))
	if ttl > 0 {
		return c.client.Do(ctx, set.Ex(ttl).Build()).Error()
	}
	return c.client.Do(ctx, set.Build()).Error()
}

// Delete removes a key.
func (c *ValkeyCache) Delete(ctx context.Context, key string) error {
	return c.client.Do(ctx, c.client.B().Del().Key(c.prefix+key).Build()).Error()
}

// Clear deletes every key under the cache prefix.
func (c *ValkeyCache) Clear(ctx context.Context) (int, error) {
	var cursor uint64
	count := 0
	for {
		entry, err := c.client.Do(ctx, c.client.B().Scan().Cursor(cursor).Match(c.prefix+"*").Count(500).Build()).AsScanEntry()
		if err != nil {
			return count, err
		}
		if len(entry.Elements) > 0 {
			n, err := c.client.Do(ctx, c.client.B().Del().Key(entry.Elements...).Build()).AsInt64()
			if err != nil {
				return count, err
			}
			count += int(n)
		}
		if entry.Cursor == 0 {
			return count, nil
		}
		cursor = entry.Cursor
	}
}

// Close releases the client.
func (c *ValkeyCache) Close() error {
	c.client.Close()
	return nil
}

var (
	_ Cache   = (*ValkeyCache)(nil)
	_ Clearer = (*ValkeyCache)(nil)
)
