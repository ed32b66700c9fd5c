package oracle

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/themescore-backend/internal/platform/logger"
)

type cachedEmbedder struct {
	next Embedder
	rdb  goredis.UniversalClient
	ttl  time.Duration
	log  *logger.Logger
}

// NewCachedEmbedder serves repeated texts from Redis. Keys are scoped by
// model so switching models never returns stale vectors. Cache failures are
// logged and fall through to next.
func NewCachedEmbedder(next Embedder, rdb goredis.UniversalClient, ttl time.Duration, log *logger.Logger) Embedder {
	return &cachedEmbedder{next: next, rdb: rdb, ttl: ttl, log: log.With("service", "EmbedCache")}
}

func (c *cachedEmbedder) Model() string { return c.next.Model() }

func (c *cachedEmbedder) key(text string) string {
	h := sha256.Sum256([]byte(c.next.Model() + "\n" + text))
	return "themescore:emb:" + hex.EncodeToString(h[:])
}

func (c *cachedEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return [][]float32{}, nil
	}
	keys := make([]string, len(texts))
	for i, t := range texts {
		keys[i] = c.key(t)
	}

	out := make([][]float32, len(texts))
	vals, err := c.rdb.MGet(ctx, keys...).Result()
	if err != nil && !errors.Is(err, goredis.Nil) {
		c.log.Warn("embedding cache read failed", "error", err)
		vals = nil
	}
	var missIdx []int
	var missTexts []string
	for i := range texts {
		if i < len(vals) {
			if s, ok := vals[i].(string); ok {
				if v, ok := decodeVector(s); ok {
					out[i] = v
					continue
				}
			}
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, texts[i])
	}
	if len(missTexts) == 0 {
		return out, nil
	}

	fresh, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("embeddings: got %d vectors for %d inputs", len(fresh), len(missTexts))
	}
	pipe := c.rdb.Pipeline()
	for j, i := range missIdx {
		out[i] = fresh[j]
		pipe.Set(ctx, keys[i], encodeVector(fresh[j]), c.ttl)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		c.log.Warn("embedding cache write failed", "error", err, "count", len(missIdx))
	}
	return out, nil
}

func encodeVector(v []float32) string {
	buf := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(f))
	}
	return string(buf)
}

func decodeVector(s string) ([]float32, bool) {
	if len(s) == 0 || len(s)%4 != 0 {
		return nil, false
	}
	v := make([]float32, len(s)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32([]byte(s[4*i : 4*i+4])))
	}
	return v, true
}
