package cache

import (
	"crypto/sha256"
	"encoding/hex"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/afero"
	"golang.org/x/xerrors"
)

// Cache provides local file-based storage for short-lived credentials.
// Entries older than TTL are treated as missing.
type Cache struct {
	Dir string
	TTL time.Duration
	fs  afero.Fs
}

// DefaultTTL is the default cache time-to-live
const DefaultTTL = 30 * time.Minute

// New creates a cache under the user cache directory for appName
func New(appName string, ttl time.Duration) (*Cache, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return nil, xerrors.Errorf("failed to resolve cache dir: %w", err)
	}
	return NewWithFs(afero.NewOsFs(), filepath.Join(cacheDir, appName), ttl)
}

// NewWithFs creates a cache rooted at dir on the given filesystem
func NewWithFs(fs afero.Fs, dir string, ttl time.Duration) (*Cache, error) {
	if err := fs.MkdirAll(dir, 0700); err != nil {
		return nil, xerrors.Errorf("failed to create cache dir: %w", err)
	}

	if ttl == 0 {
		ttl = DefaultTTL
	}

	return &Cache{
		Dir: dir,
		TTL: ttl,
		fs:  fs,
	}, nil
}

// keyToFilename converts a key to a safe filename
func (c *Cache) keyToFilename(key string) string {
	hash := sha256.Sum256([]byte(key))
	return hex.EncodeToString(hash[:16]) + ".json"
}

// Path returns the full path to the cache file for a key
func (c *Cache) Path(key string) string {
	return filepath.Join(c.Dir, c.keyToFilename(key))
}

// Get retrieves data from cache if it exists and is not expired
func (c *Cache) Get(key string) ([]byte, bool) {
	path := c.Path(key)

	info, err := c.fs.Stat(path)
	if err != nil {
		return nil, false
	}

	if time.Since(info.ModTime()) > c.TTL {
		return nil, false
	}

	data, err := afero.ReadFile(c.fs, path)
	if err != nil {
		return nil, false
	}

	return data, true
}

// Set stores data in the cache. Files are readable by the owner only.
func (c *Cache) Set(key string, data []byte) error {
	return afero.WriteFile(c.fs, c.Path(key), data, 0600)
}

// Delete removes the entry for key, if any
func (c *Cache) Delete(key string) error {
	err := c.fs.Remove(c.Path(key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Clear removes all cached files
func (c *Cache) Clear() error {
	entries, err := afero.ReadDir(c.fs, c.Dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if !entry.IsDir() {
			c.fs.Remove(filepath.Join(c.Dir, entry.Name()))
		}
	}
	return nil
}
