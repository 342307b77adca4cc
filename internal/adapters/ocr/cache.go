package ocr

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachingExtractor remembers results by image content so re-uploading the
// same receipt does not call the backend again. Failures are not cached.
type CachingExtractor struct {
	next  Extractor
	cache *lru.Cache[string, Result]
}

// NewCachingExtractor wraps next with a least-recently-used cache of limit
// entries. limit must be positive.
func NewCachingExtractor(next Extractor, limit int) (*CachingExtractor, error) {
	cache, err := lru.New[string, Result](limit)
	if err != nil {
		return nil, fmt.Errorf("ocr cache: %w", err)
	}
	return &CachingExtractor{next: next, cache: cache}, nil
}

// Extract returns a cached result or delegates to the wrapped extractor
func (c *CachingExtractor) Extract(ctx context.Context, img Image) (*Result, error) {
	if len(img.Data) == 0 {
		return nil, ErrEmptyImage
	}

	key := contentKey(img.Data)
	if res, ok := c.cache.Get(key); ok {
		return &res, nil
	}

	res, err := c.next.Extract(ctx, img)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, *res)
	return res, nil
}

// Size returns the number of cached entries
func (c *CachingExtractor) Size() int {
	return c.cache.Len()
}

// contentKey is the hex sha256 of the image bytes.
func contentKey(data []byte) string {
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])
}
