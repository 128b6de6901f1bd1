// Package envfile persists the managed service's runtime environment as a
// KEY=value file. The file holds credentials, so it is owner-read/write only
// and is never observable at a more permissive mode, even mid-write.
package envfile

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Mode is the only permission the secret store may carry on disk.
const Mode = os.FileMode(0o600)

// File is an ordered set of environment entries. Insertion order is kept so
// the on-disk file stays readable for a human operator; it has no bearing on
// correctness.
type File struct {
	keys   []string
	values map[string]string
}

func New() *File {
	return &File{values: map[string]string{}}
}

// Load reads an env file from disk. A missing file yields an empty store so
// the first configure run works against a fresh host.
func Load(path string) (*File, error) {
	f := New()

	handle, err := os.Open(path)
	if os.IsNotExist(err) {
		return f, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open env file: %w", err)
	}
	defer handle.Close()

	scanner := bufio.NewScanner(handle)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if strings.HasPrefix(line, "export ") {
			line = strings.TrimSpace(strings.TrimPrefix(line, "export "))
		}
		idx := strings.IndexByte(line, '=')
		if idx <= 0 {
			continue
		}
		key := strings.TrimSpace(line[:idx])
		value := strings.TrimSpace(line[idx+1:])
		if len(value) >= 2 {
			if (value[0] == '\'' && value[len(value)-1] == '\'') || (value[0] == '"' && value[len(value)-1] == '"') {
				value = value[1 : len(value)-1]
			}
		}
		f.Set(key, value)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read env file: %w", err)
	}
	return f, nil
}

// Set adds or overwrites a single entry. New keys append; existing keys keep
// their position. Control characters are stripped from the value: the store
// is line-oriented, and a raw newline would smuggle extra entries into the
// next Load.
func (f *File) Set(key, value string) {
	value = strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f {
			return -1
		}
		return r
	}, value)
	if _, ok := f.values[key]; !ok {
		f.keys = append(f.keys, key)
	}
	f.values[key] = value
}

// Get returns the value for key and whether it is present.
func (f *File) Get(key string) (string, bool) {
	v, ok := f.values[key]
	return v, ok
}

// Keys returns the entry keys in file order.
func (f *File) Keys() []string {
	out := make([]string, len(f.keys))
	copy(out, f.keys)
	return out
}

// Len returns the number of entries.
func (f *File) Len() int { return len(f.keys) }

// Merge applies entries on top of the current contents: untouched keys
// survive, touched keys are overwritten, new keys are appended in the order
// given. Configure runs are incremental; re-running must not erase
// integrations that were not touched this run.
func (f *File) Merge(keys []string, entries map[string]string) {
	for _, k := range keys {
		if v, ok := entries[k]; ok {
			f.Set(k, v)
		}
	}
}

// Save writes the store to path atomically. The temp file is created in the
// destination directory, restricted to owner-read/write before any content is
// written, then renamed over the destination. A crash between those points
// leaves at worst a 0600 temp file behind, never a world-readable store.
func (f *File) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create env dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".env-*")
	if err != nil {
		return fmt.Errorf("create temp env file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after successful rename

	if err := tmp.Chmod(Mode); err != nil {
		tmp.Close()
		return fmt.Errorf("restrict temp env file: %w", err)
	}

	var b strings.Builder
	for _, k := range f.keys {
		fmt.Fprintf(&b, "%s=%s\n", k, f.values[k])
	}
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close()
		return fmt.Errorf("write env file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync env file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close env file: %w", err)
	}

	if err := os.Rename(tmpName, path); err != nil {
		return fmt.Errorf("replace env file: %w", err)
	}
	return nil
}

// CheckMode verifies the on-disk store is still owner-read/write only.
func CheckMode(path string) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if perm := info.Mode().Perm(); perm != Mode {
		return fmt.Errorf("env file %s has mode %o, want %o", path, perm, Mode)
	}
	return nil
}
