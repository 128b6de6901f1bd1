package envfile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileYieldsEmptyStore(t *testing.T) {
	f, err := Load(filepath.Join(t.TempDir(), "absent.env"))
	require.NoError(t, err)
	assert.Equal(t, 0, f.Len())
}

func TestLoadParsesCommentsExportsAndQuotes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.env")
	content := "# managed by clawup\n\nexport TELEGRAM_BOT_TOKEN=\"123:abc\"\nOUTLINE_API_KEY='ol_key'\nBROKEN_LINE\nANTHROPIC_API_KEY=sk-ant-1\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	f, err := Load(path)
	require.NoError(t, err)

	v, ok := f.Get("TELEGRAM_BOT_TOKEN")
	require.True(t, ok)
	assert.Equal(t, "123:abc", v)
	v, _ = f.Get("OUTLINE_API_KEY")
	assert.Equal(t, "ol_key", v)
	assert.Equal(t, []string{"TELEGRAM_BOT_TOKEN", "OUTLINE_API_KEY", "ANTHROPIC_API_KEY"}, f.Keys())
}

func TestMergePreservesUntouchedKeys(t *testing.T) {
	f := New()
	f.Set("A", "1")
	f.Set("B", "2")

	f.Merge([]string{"B", "C"}, map[string]string{"B": "3", "C": "4"})

	a, _ := f.Get("A")
	b, _ := f.Get("B")
	c, _ := f.Get("C")
	assert.Equal(t, "1", a, "untouched key must survive")
	assert.Equal(t, "3", b, "touched key must be overwritten")
	assert.Equal(t, "4", c, "new key must be added")
	assert.Equal(t, []string{"A", "B", "C"}, f.Keys())
}

func TestSaveIsOwnerOnlyAndRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.env")

	f := New()
	f.Set("OPENCLAW_GATEWAY_TOKEN", "tok123")
	f.Set("OPENCLAW_KEYRING_PASSWORD", "pw456")
	require.NoError(t, f.Save(path))

	require.NoError(t, CheckMode(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	tok, _ := loaded.Get("OPENCLAW_GATEWAY_TOKEN")
	assert.Equal(t, "tok123", tok)
	assert.Equal(t, 2, loaded.Len())
}

func TestSaveOverwritesAtomically(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.env")

	f := New()
	f.Set("A", "1")
	require.NoError(t, f.Save(path))

	f.Set("A", "2")
	require.NoError(t, f.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	a, _ := loaded.Get("A")
	assert.Equal(t, "2", a)

	// no stray temp files once the rename has happened
	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	for _, e := range entries {
		assert.False(t, strings.HasPrefix(e.Name(), ".env-"), "temp file left behind: %s", e.Name())
	}
}

func TestSetStripsControlCharacters(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gateway.env")

	f := New()
	f.Set("A", "safe")
	f.Set("B", "pasted\nINJECTED=evil\r")
	require.NoError(t, f.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 2, loaded.Len(), "a newline in a value must not become an extra entry")
	b, _ := loaded.Get("B")
	assert.Equal(t, "pastedINJECTED=evil", b)
	_, ok := loaded.Get("INJECTED")
	assert.False(t, ok)
}

func TestCrashBeforeRenameLeavesDestinationUntouched(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "gateway.env")

	prior := New()
	prior.Set("A", "1")
	require.NoError(t, prior.Save(path))

	// Simulate a writer that died after creating its temp file but before the
	// rename: the destination must be unchanged and still 0600.
	tmp, err := os.CreateTemp(dir, ".env-*")
	require.NoError(t, err)
	require.NoError(t, tmp.Chmod(Mode))
	_, err = tmp.WriteString("A=99\n")
	require.NoError(t, err)
	require.NoError(t, tmp.Close())

	require.NoError(t, CheckMode(path))
	loaded, err := Load(path)
	require.NoError(t, err)
	a, _ := loaded.Get("A")
	assert.Equal(t, "1", a, "prior store contents must be unchanged")

	info, err := os.Stat(tmp.Name())
	require.NoError(t, err)
	assert.Equal(t, Mode, info.Mode().Perm(), "even the orphaned temp file is never world-readable")
}
