package driver

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cockroachdb/errors"
	"github.com/vmihailenco/msgpack/v5"

	"hdrgen/internal/emit"
	"hdrgen/internal/version"
)

// Current schema version - increment when CachedHeader changes.
const headerCacheSchema uint16 = 1

// Digest is a SHA-256 content key.
type Digest [32]byte

// CacheKey hashes everything a header depends on: the graph bytes, the
// options and the generator version.
func CacheKey(graph []byte, opts emit.Options) Digest {
	h := sha256.New()
	_, _ = fmt.Fprintf(h, "hdrgen/%d/%s\x00", headerCacheSchema, version.Version)
	_, _ = fmt.Fprintf(h, "%+v\x00", opts)
	_, _ = h.Write(graph)
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// HeaderCache stores rendered headers on disk by CacheKey. Safe for
// concurrent use.
type HeaderCache struct {
	mu  sync.RWMutex
	dir string
}

// CachedHeader is the payload stored per key.
type CachedHeader struct {
	Schema       uint16
	Input        string
	Header       string
	Declarations int
	Forwards     int
}

// OpenHeaderCache opens the cache under $XDG_CACHE_HOME/<app>.
func OpenHeaderCache(app string) (*HeaderCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "locate cache directory")
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenHeaderCacheAt(filepath.Join(base, app))
}

// OpenHeaderCacheAt opens a cache rooted at dir.
func OpenHeaderCacheAt(dir string) (*HeaderCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create cache %s", dir)
	}
	return &HeaderCache{dir: dir}, nil
}

func (c *HeaderCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "headers", hex.EncodeToString(key[:])+".mp")
}

// Put stores payload under key.
func (c *HeaderCache) Put(key Digest, payload *CachedHeader) error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	payload.Schema = headerCacheSchema
	data, err := msgpack.Marshal(payload)
	if err != nil {
		return errors.Wrap(err, "encode cached header")
	}
	_, err = WriteAtomic(c.pathFor(key), data)
	return err
}

// Get loads the payload under key. A missing entry or one written by
// another schema is a miss.
func (c *HeaderCache) Get(key Digest) (*CachedHeader, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, errors.Wrap(err, "read cached header")
	}
	var out CachedHeader
	if err := msgpack.Unmarshal(data, &out); err != nil {
		return nil, false, errors.Wrap(err, "decode cached header")
	}
	if out.Schema != headerCacheSchema {
		return nil, false, nil
	}
	return &out, true, nil
}

// DropAll removes every cached header.
func (c *HeaderCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return os.RemoveAll(filepath.Join(c.dir, "headers"))
}
