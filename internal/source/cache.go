package source

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/gyeh/rvustats/internal/normalize"
)

// Cache memoizes parsed tables by source identity: file content hash plus
// sheet and query. Sources are treated as immutable snapshots, so entries
// are never invalidated. A Cache belongs to one caller and is not safe for
// concurrent use.
type Cache struct {
	log     zerolog.Logger
	entries map[string]*Table
	Hits    int
	Misses  int
}

// NewCache returns an empty cache.
func NewCache(log zerolog.Logger) *Cache {
	return &Cache{log: log, entries: make(map[string]*Table)}
}

// Identity returns the cache key for ref and the file's SHA-256.
func Identity(ref Ref) (key, sha string, err error) {
	sha, err = normalize.FileHash(ref.Path)
	if err != nil {
		return "", "", &SourceError{Ref: ref, Err: err}
	}
	return fmt.Sprintf("%s|%s|%s", sha, ref.Sheet, ref.Query), sha, nil
}

// Open returns the cached table for ref, reading it on first use. The
// table's SHA256 is filled in. Callers must not modify the returned Table.
func (c *Cache) Open(ctx context.Context, ref Ref) (*Table, error) {
	key, sha, err := Identity(ref)
	if err != nil {
		return nil, err
	}
	if t, ok := c.entries[key]; ok {
		c.Hits++
		c.log.Debug().Str("source", ref.String()).Msg("source cache hit")
		return t, nil
	}

	t, err := Open(ctx, ref)
	if err != nil {
		return nil, err
	}
	t.SHA256 = sha
	c.Misses++
	c.entries[key] = t
	c.log.Debug().
		Str("source", ref.String()).
		Int("rows", len(t.Rows)).
		Msg("source cached")
	return t, nil
}

// Len reports the number of cached tables.
func (c *Cache) Len() int {
	return len(c.entries)
}
