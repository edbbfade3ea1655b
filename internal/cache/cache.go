// Package cache stores converted token streams on disk, keyed by a digest of
// the document content and every option that changes the output.
package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"

	"mwconv/internal/diag"
	"mwconv/internal/errors"
	"mwconv/internal/token"
)

// Current schema version - increment when Payload format changes
const schemaVersion uint16 = 1

// Digest identifies one cache entry.
type Digest [32]byte

func (d Digest) String() string { return hex.EncodeToString(d[:]) }

// IsZero reports whether d was never computed.
func (d Digest) IsZero() bool { return d == Digest{} }

// Key combines a content hash with the option strings that shape the output:
// H(content || len(p1) p1 || len(p2) p2 ...).
func Key(content [32]byte, parts ...string) Digest {
	h := sha256.New()
	_, _ = h.Write(content[:])
	for _, p := range parts {
		var n [8]byte
		for i, l := 0, uint64(len(p)); i < 8; i++ {
			n[i] = byte(l >> (8 * i))
		}
		_, _ = h.Write(n[:])
		_, _ = h.Write([]byte(p))
	}
	var out Digest
	copy(out[:], h.Sum(nil))
	return out
}

// Payload is one converted document. Spans refer to the file the entry was
// written for; callers rebind them to the current FileID.
type Payload struct {
	Schema      uint16
	Path        string
	Tokens      []token.Token
	Diagnostics []diag.Diagnostic
	Written     time.Time
}

// DiskCache is a directory of msgpack payloads. Safe for concurrent use.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// Open returns the cache under $XDG_CACHE_HOME/app (or ~/.cache/app).
func Open(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, errors.Wrap(err, "locating cache directory")
		}
		base = filepath.Join(home, ".cache")
	}
	return OpenAt(filepath.Join(base, app))
}

// OpenAt returns a cache rooted at dir, creating it if needed.
func OpenAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "creating cache directory %s", dir)
	}
	return &DiskCache{dir: dir}, nil
}

// Dir reports the cache root.
func (c *DiskCache) Dir() string {
	if c == nil {
		return ""
	}
	return c.dir
}

func (c *DiskCache) pathFor(key Digest) string {
	return filepath.Join(c.dir, "docs", key.String()+".mp")
}

// Put writes payload under key, replacing the entry atomically.
func (c *DiskCache) Put(key Digest, payload *Payload) (err error) {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(key)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	f, err := os.CreateTemp(filepath.Dir(p), "tmp-*")
	if err != nil {
		return err
	}
	defer func() {
		if rmErr := os.Remove(f.Name()); rmErr != nil && !os.IsNotExist(rmErr) && err == nil {
			err = rmErr
		}
	}()

	payload.Schema = schemaVersion
	if payload.Written.IsZero() {
		payload.Written = time.Now().UTC()
	}
	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		_ = f.Close()
		return errors.Wrap(err, "encoding cache entry")
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads the entry for key into out. A missing entry or one written with
// another schema is a miss, not an error.
func (c *DiskCache) Get(key Digest, out *Payload) (bool, error) {
	if c == nil {
		return false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := os.Open(c.pathFor(key))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, err
	}
	defer f.Close()

	if err := msgpack.NewDecoder(f).Decode(out); err != nil {
		return false, errors.Wrapf(err, "decoding cache entry %s", key)
	}
	if out.Schema != schemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll removes every entry.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	old := c.dir + ".old-" + time.Now().Format("20060102150405")
	if err := os.Rename(c.dir, old); err != nil {
		return err
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return err
	}
	return os.RemoveAll(old)
}
