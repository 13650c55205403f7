package llm

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"log"
)

// ResponseCache stores revised text by request fingerprint.
type ResponseCache interface {
	Get(key string) (string, bool, error)
	Put(key, value string) error
}

type cachedClient struct {
	inner Client
	cache ResponseCache
	salt  string
}

// NewCached wraps inner so identical paragraphs are answered from cache.
// salt must capture every setting that changes the reply (model,
// temperature, instruction).
func NewCached(inner Client, cache ResponseCache, salt string) Client {
	if cache == nil {
		return inner
	}
	return &cachedClient{inner: inner, cache: cache, salt: salt}
}

func (c *cachedClient) Name() string {
	return c.inner.Name()
}

func (c *cachedClient) Revise(ctx context.Context, paragraph string) (string, error) {
	key := fingerprint(c.salt, paragraph)
	if text, ok, err := c.cache.Get(key); err != nil {
		log.Printf("[llm] cache read failed: %v", err)
	} else if ok {
		return text, nil
	}
	text, err := c.inner.Revise(ctx, paragraph)
	if err != nil {
		return "", err
	}
	if err := c.cache.Put(key, text); err != nil {
		log.Printf("[llm] cache write failed: %v", err)
	}
	return text, nil
}

func fingerprint(salt, paragraph string) string {
	sum := sha1.Sum([]byte(salt + "\x00" + paragraph))
	return hex.EncodeToString(sum[:])
}
