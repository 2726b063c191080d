package cache

// Durable tier: one JSON envelope file per entry under <dir>/cache/.
// Writes are atomic (.part then rename); expired files are swept
// opportunistically, throttled to once per interval

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const cleanupEvery = 10 * time.Minute

// ensureNamespace creates and returns the cache namespace dir under root
func ensureNamespace(root string) (string, error) {
	dir := filepath.Join(root, "cache")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	return dir, nil
}

// entryPath hashes the key into a stable filename
func entryPath(dir, key string) string {
	sum := sha256.Sum256([]byte(key))
	return filepath.Join(dir, hex.EncodeToString(sum[:16])+".json")
}

// writeEntry saves the envelope atomically
func writeEntry(dir string, e Entry) error {
	path := entryPath(dir, e.Key)
	tmp := path + ".part"

	f, err := os.Create(tmp)
	if err != nil {
		return err
	}
	if err := json.NewEncoder(f).Encode(e); err != nil {
		_ = f.Close()
		_ = os.Remove(tmp)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	return os.Rename(tmp, path)
}

// readEntry loads one envelope file
func readEntry(path string) (Entry, error) {
	var e Entry
	f, err := os.Open(path)
	if err != nil {
		return e, err
	}
	defer func() { _ = f.Close() }()
	if err := json.NewDecoder(f).Decode(&e); err != nil {
		return Entry{}, err
	}
	return e, nil
}

func (c *Cache) removeDurable(key string) {
	_ = os.Remove(entryPath(c.dir, key))
}

// invalidateDurable removes entry files whose stored key contains substr.
// Filenames are hashes, so each envelope is opened to match
func (c *Cache) invalidateDurable(substr string) {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return
	}
	for _, de := range entries {
		if !isEntryFile(de.Name()) {
			continue
		}
		full := filepath.Join(c.dir, de.Name())
		e, err := readEntry(full)
		if err != nil {
			continue
		}
		if substr == "" || strings.Contains(e.Key, substr) {
			_ = os.Remove(full)
		}
	}
}

// removeAllEntries drops every entry file, keeping the namespace dir
func removeAllEntries(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	var firstErr error
	for _, de := range entries {
		if !isEntryFile(de.Name()) {
			continue
		}
		if err := os.Remove(filepath.Join(dir, de.Name())); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func isEntryFile(name string) bool {
	return strings.HasSuffix(name, ".json") && !strings.HasSuffix(name, ".part")
}

// maybeCleanup throttles the expired-file sweep to once per interval
func (c *Cache) maybeCleanup() {
	now := c.now().Unix()
	last := c.lastCleanupUnix.Load()
	if last != 0 && now-last < int64(cleanupEvery/time.Second) {
		return
	}
	if !c.lastCleanupUnix.CompareAndSwap(last, now) {
		return
	}
	_ = c.cleanupOnce()
}

// cleanupOnce removes every expired entry file
func (c *Cache) cleanupOnce() error {
	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return err
	}
	now := c.now()
	for _, de := range entries {
		if !isEntryFile(de.Name()) {
			continue
		}
		full := filepath.Join(c.dir, de.Name())
		e, err := readEntry(full)
		if err != nil {
			// unreadable envelope: drop it rather than sweep it forever
			_ = os.Remove(full)
			continue
		}
		if !e.Valid(now) {
			_ = os.Remove(full)
		}
	}
	return nil
}
