package workspace

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"github.com/vmihailenco/msgpack/v5"

	"fglsense/internal/symbols"
)

// Current schema version - increment when cachePayload format changes
const cacheSchemaVersion uint16 = 1

// ExportCache хранит экспорты модулей на диске, ключ - хеш содержимого.
// A nil *ExportCache is a valid cache that stores nothing.
type ExportCache struct {
	mu  sync.RWMutex
	fs  afero.Fs
	dir string
}

type cachePayload struct {
	Schema  uint16                 `msgpack:"schema"`
	Exports *symbols.ModuleExports `msgpack:"exports"`
}

// OpenExportCache prepares a cache rooted at dir.
func OpenExportCache(fs afero.Fs, dir string) (*ExportCache, error) {
	if err := fs.MkdirAll(filepath.Join(dir, "exports"), 0o755); err != nil {
		return nil, fmt.Errorf("open export cache: %w", err)
	}
	return &ExportCache{fs: fs, dir: dir}, nil
}

// cacheKey combines the project, the file path and its content hash.
func cacheKey(project, path string, hash [32]byte) string {
	h := sha256.New()
	_, _ = h.Write([]byte(project))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(path))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write(hash[:])
	return hex.EncodeToString(h.Sum(nil))
}

func (c *ExportCache) pathFor(key string) string {
	return filepath.Join(c.dir, "exports", key+".mp")
}

// Put serializes and writes the exports of one module.
func (c *ExportCache) Put(ex *symbols.ModuleExports) error {
	if c == nil || ex == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	p := c.pathFor(cacheKey(ex.Project, ex.Path, ex.Hash))
	f, err := afero.TempFile(c.fs, filepath.Dir(p), "tmp-")
	if err != nil {
		return err
	}
	tmp := f.Name()
	if err := msgpack.NewEncoder(f).Encode(&cachePayload{Schema: cacheSchemaVersion, Exports: ex}); err != nil {
		_ = f.Close()
		_ = c.fs.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = c.fs.Remove(tmp)
		return err
	}
	// Атомарная замена
	return c.fs.Rename(tmp, p)
}

// Get returns the cached exports of path when its content hash matches.
// Entries written by another schema version count as missing.
func (c *ExportCache) Get(project, path string, hash [32]byte) (*symbols.ModuleExports, bool, error) {
	if c == nil {
		return nil, false, nil
	}
	c.mu.RLock()
	defer c.mu.RUnlock()

	f, err := c.fs.Open(c.pathFor(cacheKey(project, path, hash)))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, err
	}
	defer f.Close()

	var payload cachePayload
	if err := msgpack.NewDecoder(f).Decode(&payload); err != nil {
		return nil, false, fmt.Errorf("decode cached exports of %s: %w", path, err)
	}
	if payload.Schema != cacheSchemaVersion || payload.Exports == nil {
		return nil, false, nil
	}
	return payload.Exports, true, nil
}

// DropAll invalidates the cache.
func (c *ExportCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.fs.RemoveAll(filepath.Join(c.dir, "exports")); err != nil {
		return err
	}
	return c.fs.MkdirAll(filepath.Join(c.dir, "exports"), 0o755)
}
