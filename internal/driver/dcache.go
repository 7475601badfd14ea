package driver

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/vmihailenco/msgpack/v5"

	"vigil/internal/diag"
)

// Bump when DiskPayload changes shape or the generator's output format
// changes; stale entries must never replay old output.
const diskCacheSchemaVersion uint16 = 1

// Digest identifies one package's analysis input.
type Digest [sha256.Size]byte

// DiskCache memoizes per-package generation results keyed by input
// digest, so unchanged packages skip the pipeline entirely.
// Thread-safe for concurrent access.
type DiskCache struct {
	mu  sync.RWMutex
	dir string
}

// DiskPayload is everything needed to replay one package's run without
// re-analyzing it: the generated text plus the diagnostics it produced.
type DiskPayload struct {
	Schema  uint16
	PkgPath string
	Output  string
	Diags   []diag.Diagnostic
}

// OpenDiskCache initializes the cache at the standard user location.
func OpenDiskCache(app string) (*DiskCache, error) {
	base := os.Getenv("XDG_CACHE_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return nil, err
		}
		base = filepath.Join(home, ".cache")
	}
	dir := filepath.Join(base, app)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

// OpenDiskCacheAt is OpenDiskCache with an explicit root, for tests.
func OpenDiskCacheAt(dir string) (*DiskCache, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, err
	}
	return &DiskCache{dir: dir}, nil
}

func (c *DiskCache) pathFor(key Digest) string {
	// Subdirectory keeps the cache root listable and easy to clear.
	return filepath.Join(c.dir, "pkgs", hex.EncodeToString(key[:])+".mp")
}

// Put atomically writes a payload. A nil cache is a no-op.
func (c *DiskCache) Put(key Digest, payload *DiskPayload) error {
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
	defer os.Remove(f.Name())

	if err := msgpack.NewEncoder(f).Encode(payload); err != nil {
		f.Close()
		return err
	}
	if err := f.Close(); err != nil {
		return err
	}
	return os.Rename(f.Name(), p)
}

// Get reads a payload; ok is false on miss or schema mismatch.
func (c *DiskCache) Get(key Digest, out *DiskPayload) (bool, error) {
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
		return false, err
	}
	if out.Schema != diskCacheSchemaVersion {
		return false, nil
	}
	return true, nil
}

// DropAll discards every entry, for format changes and --no-cache runs.
func (c *DiskCache) DropAll() error {
	if c == nil {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := os.RemoveAll(filepath.Join(c.dir, "pkgs")); err != nil {
		return err
	}
	return nil
}

// packageDigest hashes everything that can change a package's output:
// the schema, the package path, and every compiled file's path and
// content. The previously generated file is excluded so rewriting it
// does not invalidate the entry that produced it.
func packageDigest(pkgPath string, files []string, exclude string) (Digest, error) {
	h := sha256.New()
	var schema [2]byte
	binary.LittleEndian.PutUint16(schema[:], diskCacheSchemaVersion)
	h.Write(schema[:])
	h.Write([]byte(pkgPath))

	sorted := make([]string, 0, len(files))
	for _, f := range files {
		if filepath.Base(f) == exclude {
			continue
		}
		sorted = append(sorted, f)
	}
	sort.Strings(sorted)

	for _, f := range sorted {
		data, err := os.ReadFile(f)
		if err != nil {
			return Digest{}, err
		}
		h.Write([]byte(f))
		var size [8]byte
		binary.LittleEndian.PutUint64(size[:], uint64(len(data)))
		h.Write(size[:])
		h.Write(data)
	}

	var d Digest
	h.Sum(d[:0])
	return d, nil
}
