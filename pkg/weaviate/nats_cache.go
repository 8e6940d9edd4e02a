package weaviate

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/gmanninglive/weaviate-client/internal/constants"
	"github.com/nats-io/nats.go"
)

// NATSKVConfig configures the NATS JetStream key-value cache.
type NATSKVConfig struct {
	// URL of the NATS server, e.g. nats://localhost:4222. Ignored when Conn is set.
	URL string

	// Conn reuses an existing connection. The cache does not close it.
	Conn *nats.Conn

	// Bucket name. Created when missing.
	Bucket string

	// TTL applied to the bucket on creation.
	TTL time.Duration

	Options []nats.Option
}

// NATSKVCache is a Cache backed by a NATS JetStream key-value bucket, shared by every
// client connected to the same bucket.
type NATSKVCache struct {
	conn     *nats.Conn
	ownsConn bool
	kv       nats.KeyValue
}

// NewNATSKVCache connects to NATS and opens (or creates) the bucket.
func NewNATSKVCache(config *NATSKVConfig) (*NATSKVCache, error) {
	if config == nil {
		return nil, ErrNATSConfigRequired
	}

	bucket := config.Bucket
	if bucket == "" {
		bucket = constants.DefaultNATSBucket
	}

	conn := config.Conn
	ownsConn := false

	if conn == nil {
		url := config.URL
		if url == "" {
			url = nats.DefaultURL
		}

		var err error

		conn, err = nats.Connect(url, config.Options...)
		if err != nil {
			return nil, fmt.Errorf("connecting to NATS: %w", err)
		}

		ownsConn = true
	}

	kv, err := openBucket(conn, bucket, config.TTL)
	if err != nil {
		if ownsConn {
			conn.Close()
		}

		return nil, err
	}

	return &NATSKVCache{conn: conn, ownsConn: ownsConn, kv: kv}, nil
}

func openBucket(conn *nats.Conn, bucket string, ttl time.Duration) (nats.KeyValue, error) {
	js, err := conn.JetStream()
	if err != nil {
		return nil, fmt.Errorf("opening JetStream context: %w", err)
	}

	kv, err := js.KeyValue(bucket)
	if err == nil {
		return kv, nil
	}

	if !errors.Is(err, nats.ErrBucketNotFound) {
		return nil, fmt.Errorf("opening bucket %s: %w", bucket, err)
	}

	kv, err = js.CreateKeyValue(&nats.KeyValueConfig{
		Bucket: bucket,
		TTL:    ttl,
	})
	if err != nil {
		return nil, fmt.Errorf("creating bucket %s: %w", bucket, err)
	}

	return kv, nil
}

// Get returns the entry for key, or ErrCacheMiss.
func (c *NATSKVCache) Get(ctx context.Context, key string) (*CacheEntry, error) {
	item, err := c.kv.Get(natsKey(key))
	if err != nil {
		if errors.Is(err, nats.ErrKeyNotFound) {
			return nil, ErrCacheMiss
		}

		return nil, fmt.Errorf("reading %s: %w", key, err)
	}

	var entry CacheEntry

	err = json.Unmarshal(item.Value(), &entry)
	if err != nil {
		return nil, fmt.Errorf("decoding cache entry %s: %w", key, err)
	}

	if entry.Expired() {
		return nil, ErrCacheMiss
	}

	return &entry, nil
}

// Set stores entry under key.
func (c *NATSKVCache) Set(ctx context.Context, key string, entry *CacheEntry) error {
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("encoding cache entry %s: %w", key, err)
	}

	_, err = c.kv.Put(natsKey(key), data)
	if err != nil {
		return fmt.Errorf("writing %s: %w", key, err)
	}

	return nil
}

// Delete removes key.
func (c *NATSKVCache) Delete(ctx context.Context, key string) error {
	err := c.kv.Delete(natsKey(key))
	if err != nil && !errors.Is(err, nats.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s: %w", key, err)
	}

	return nil
}

// Clear removes every key in the bucket.
func (c *NATSKVCache) Clear(ctx context.Context) error {
	keys, err := c.kv.Keys()
	if err != nil {
		if errors.Is(err, nats.ErrNoKeysFound) {
			return nil
		}

		return fmt.Errorf("listing keys: %w", err)
	}

	for _, key := range keys {
		err = c.kv.Delete(key)
		if err != nil {
			return fmt.Errorf("deleting %s: %w", key, err)
		}
	}

	return nil
}

// Has reports whether an unexpired entry exists for key.
func (c *NATSKVCache) Has(ctx context.Context, key string) bool {
	_, err := c.Get(ctx, key)

	return err == nil
}

// Close closes the NATS connection if the cache opened it.
func (c *NATSKVCache) Close() {
	if c.ownsConn {
		c.conn.Close()
	}
}

// natsKey encodes key into the character set allowed for KV keys.
func natsKey(key string) string {
	return base64.RawURLEncoding.EncodeToString([]byte(key))
}
