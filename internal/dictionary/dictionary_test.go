package dictionary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadLayersOverrides(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "first.yaml")
	second := filepath.Join(dir, "second.yaml")
	require.NoError(t, os.WriteFile(first, []byte(`
slang:
  gercep: gerak cepat
synonyms:
  promo: [diskon, potongan]
keywords:
  veryNegative: [hancur, zonk]
`), 0o644))
	require.NoError(t, os.WriteFile(second, []byte(`
slang:
  gercep: sigap
neutralCues:
  positive: [ciamik]
`), 0o644))

	set, err := Load(first, "", second)
	require.NoError(t, err)

	v, ok := set.Slang.Lookup("GERCEP")
	require.True(t, ok)
	assert.Equal(t, "sigap", v)
	_, ok = set.Slang.Lookup("yg")
	assert.True(t, ok, "defaults kept")

	assert.Equal(t, []string{"diskon", "potongan"}, set.Synonyms["promo"])
	assert.NotEmpty(t, set.Synonyms["bagus"])
	assert.Equal(t, []string{"hancur", "zonk"}, set.Keywords.VeryNegative)
	assert.NotEmpty(t, set.Keywords.Positive)
	assert.Equal(t, []string{"ciamik"}, set.NeutralCues.Positive)
	assert.NotEmpty(t, set.NeutralCues.Negative)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	require.NoError(t, os.WriteFile(path, []byte("slang: [unclosed"), 0o644))
	_, err := Load(path)
	assert.Error(t, err)
}

func TestLoadExampleDictionary(t *testing.T) {
	set, err := Load(filepath.Join("..", "..", "configs", "dictionary.yaml"))
	require.NoError(t, err)

	v, ok := set.Slang.Lookup("mager")
	require.True(t, ok)
	assert.Equal(t, "malas gerak", v)
	assert.Equal(t, []string{"ojek online", "ojek daring"}, set.Synonyms["ojol"])
	assert.Equal(t, Defaults().Keywords.Negative, set.Keywords.Negative, "empty lists keep defaults")
}
